package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/lucasveenman/trace/internal/db"
	"github.com/lucasveenman/trace/internal/domain"
)

// DefaultKey is the store key of the catalog snapshot.
const DefaultKey = "trace:catalog:v1"

// Source loads a catalog document.
type Source interface {
	Load(ctx context.Context) (*Document, error)
}

// FileSource reads a catalog document from a YAML (or JSON) file.
type FileSource struct {
	Path string
}

// Load reads and decodes the file.
func (f FileSource) Load(_ context.Context) (*Document, error) {
	data, err := os.ReadFile(f.Path)
	if err != nil {
		return nil, fmt.Errorf("read catalog file: %w", err)
	}
	doc, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("catalog file %s: %w", f.Path, err)
	}
	return doc, nil
}

// Decode parses a YAML catalog document. JSON input is accepted as YAML.
func Decode(data []byte) (*Document, error) {
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidCatalog, err)
	}
	return &doc, nil
}

// store is the consumer interface for catalog snapshots (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
}

// Repo keeps the catalog as a JSON snapshot under a single key.
type Repo struct {
	store store
	key   string
}

// New creates a snapshot repository. An empty key uses DefaultKey.
func New(s store, key string) *Repo {
	if key == "" {
		key = DefaultKey
	}
	return &Repo{store: s, key: key}
}

// Load reads the snapshot.
func (r *Repo) Load(ctx context.Context) (*Document, error) {
	data, err := r.store.Get(ctx, r.key)
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return nil, fmt.Errorf("catalog snapshot %q: %w", r.key, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get catalog snapshot: %w", err)
	}
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode catalog snapshot: %w: %w", domain.ErrInvalidCatalog, err)
	}
	return &doc, nil
}

// Save replaces the snapshot.
func (r *Repo) Save(ctx context.Context, doc *Document) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode catalog snapshot: %w", err)
	}
	if err := r.store.Set(ctx, r.key, data); err != nil {
		return fmt.Errorf("set catalog snapshot: %w", err)
	}
	return nil
}
