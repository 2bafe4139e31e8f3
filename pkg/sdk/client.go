package trace

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/text/language"

	"github.com/lucasveenman/trace/internal/db"
	dbRedis "github.com/lucasveenman/trace/internal/db/redis"
	domcat "github.com/lucasveenman/trace/internal/domain/catalog"
	"github.com/lucasveenman/trace/internal/domain/scope"
	"github.com/lucasveenman/trace/internal/domain/search/order"
	"github.com/lucasveenman/trace/internal/domain/search/request"
	"github.com/lucasveenman/trace/internal/domain/search/result"
	catalogrepo "github.com/lucasveenman/trace/internal/repository/catalog"
	searchuc "github.com/lucasveenman/trace/internal/usecase/search"
)

const defaultReadinessTimeout = 10 * time.Second

// Internal interfaces so tests can substitute the search service.
type searchUseCase interface {
	Search(ctx context.Context, req *request.Request) result.Page
	Counts(ctx context.Context, req *request.Request) result.Counts
}

// Client is the embedded trace search entry point. It is safe for
// concurrent use; the catalog is read once at construction.
type Client struct {
	store     db.Store
	catalog   *domcat.Catalog
	searchSvc searchUseCase
	obs       *observer
}

// New loads the catalog and creates a Client. Exactly one of
// WithCatalogFile and WithRedis is required. The provided context bounds
// the readiness check and the snapshot read.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	cfg := &clientConfig{language: language.Und}
	for _, o := range opts {
		o.apply(cfg)
	}

	switch {
	case cfg.catalogPath == "" && len(cfg.addrs) == 0:
		return nil, errors.New("trace: catalog source required (use WithCatalogFile or WithRedis)")
	case cfg.catalogPath != "" && len(cfg.addrs) > 0:
		return nil, errors.New("trace: WithCatalogFile and WithRedis are mutually exclusive")
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		return nil, err
	}

	var (
		src   catalogrepo.Source = catalogrepo.FileSource{Path: cfg.catalogPath}
		store db.Store
	)
	if len(cfg.addrs) > 0 {
		s, err := dbRedis.NewStore(dbRedis.Config{Addrs: cfg.addrs, Password: cfg.password})
		if err != nil {
			return nil, fmt.Errorf("trace: create redis store: %w", err)
		}
		if err := s.WaitForReady(ctx, defaultReadinessTimeout); err != nil {
			s.Close()
			return nil, fmt.Errorf("trace: database not ready: %w", err)
		}
		store = s
		src = catalogrepo.New(s, cfg.catalogKey)
	}

	cat, err := loadCatalog(ctx, src)
	if err != nil {
		if store != nil {
			store.Close()
		}
		return nil, err
	}
	obs.catalogLoaded(cat.Len(), len(cat.Entities()))

	return &Client{
		store:     store,
		catalog:   cat,
		searchSvc: searchuc.New(cat).WithLanguage(cfg.language),
		obs:       obs,
	}, nil
}

func loadCatalog(ctx context.Context, src catalogrepo.Source) (*domcat.Catalog, error) {
	doc, err := src.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("trace: load catalog: %w", err)
	}
	cat, err := catalogrepo.Build(doc)
	if err != nil {
		return nil, fmt.Errorf("trace: %w", err)
	}
	return &cat, nil
}

// Close releases the database connection, if any.
func (c *Client) Close() {
	if c.store != nil {
		c.store.Close()
	}
}

// Ping checks database connectivity. File-backed clients always succeed.
func (c *Client) Ping(ctx context.Context) (err error) {
	start := time.Now()
	defer func() { c.obs.observe("ping", start, err) }()

	if c.store == nil {
		return nil
	}
	if err = c.store.Ping(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// Len returns the number of searchable records.
func (c *Client) Len() int { return c.catalog.Len() }

// Search ranks the catalog against q. It only fails when ctx is done.
func (c *Client) Search(ctx context.Context, q Query) (res Results, err error) {
	start := time.Now()
	defer func() { c.obs.observe("search", start, err, "query", q.Text, "total", res.Total) }()

	if err = ctx.Err(); err != nil {
		return Results{}, fmt.Errorf("search: %w", err)
	}

	req := request.New(q.Text, scope.ParseFilter(q.Scope), q.Role, order.Parse(q.Sort), q.Page, q.PageSize)
	page := c.searchSvc.Search(ctx, &req)
	counts := c.searchSvc.Counts(ctx, &req)

	res = Results{
		Hits:       make([]Hit, len(page.Hits)),
		Total:      page.Total,
		TotalPages: page.TotalPages,
		Page:       page.Page,
		Counts:     make(map[string]int, len(counts)),
	}
	for i := range page.Hits {
		res.Hits[i] = hitFromResult(&page.Hits[i])
	}
	for f, n := range counts {
		res.Counts[string(f)] = n
	}
	return res, nil
}

// Entity returns an entity profile by id.
func (c *Client) Entity(ctx context.Context, id string) (_ Entity, err error) {
	start := time.Now()
	defer func() { c.obs.observe("entity", start, err, "id", id) }()

	e, err := c.catalog.Entity(id)
	if err != nil {
		return Entity{}, fmt.Errorf("entity: %w", err)
	}
	p := e.Profile()
	return Entity{
		ID:          e.ID(),
		Name:        e.Name(),
		Type:        string(e.Type()),
		Verified:    e.Verified(),
		Subtitle:    e.Subtitle(),
		Description: p.Description,
		LogoURL:     p.LogoURL,
	}, nil
}
