package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
	"golang.org/x/text/language"

	"github.com/lucasveenman/trace/internal/config"
	"github.com/lucasveenman/trace/internal/db"
	dbRedis "github.com/lucasveenman/trace/internal/db/redis"
	domcat "github.com/lucasveenman/trace/internal/domain/catalog"
	logpkg "github.com/lucasveenman/trace/internal/logger"
	"github.com/lucasveenman/trace/internal/metrics"
	catalogrepo "github.com/lucasveenman/trace/internal/repository/catalog"
	"github.com/lucasveenman/trace/internal/transport/backend"
	chiTransport "github.com/lucasveenman/trace/internal/transport/chi"
	"github.com/lucasveenman/trace/internal/transport/session"
	healthuc "github.com/lucasveenman/trace/internal/usecase/health"
	searchuc "github.com/lucasveenman/trace/internal/usecase/search"
	tokenuc "github.com/lucasveenman/trace/internal/usecase/token"
	"github.com/lucasveenman/trace/internal/version"
)

func main() {
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting trace API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("catalog_source", cfg.Catalog.Source),
		zap.Bool("backend_configured", cfg.Backend.BaseURL != ""),
	)

	// Register metrics explicitly (no init())
	metrics.RegisterSearchMetrics()
	metrics.RegisterBackendMetrics()

	ctx := context.Background()

	cat, store, err := loadCatalog(ctx, &cfg, logger)
	if err != nil {
		logger.Fatal("Failed to load catalog", zap.Error(err))
	}
	if store != nil {
		defer store.Close()
	}
	metrics.CatalogRecords.Set(float64(cat.Len()))
	logger.Info("Catalog loaded",
		zap.Int("records", cat.Len()),
		zap.Int("entities", len(cat.Entities())),
	)

	lang, err := language.Parse(cfg.Search.Language)
	if err != nil {
		logger.Warn("Unknown search language, using root collation",
			zap.String("language", cfg.Search.Language), zap.Error(err))
		lang = language.Und
	}
	searchSvc := searchuc.New(&cat).WithLanguage(lang)

	verifier := session.NewVerifier(cfg.Auth.Session.Secret, cfg.Auth.Session.Cookie)
	if cfg.Auth.Session.Secret == "" {
		logger.Warn("auth.session.secret is empty, every request is anonymous")
	}

	issuer := tokenuc.NewIssuer(tokenuc.Config{
		Keys:      cfg.Auth.BackendJWT.Keys,
		ActiveKID: cfg.Auth.BackendJWT.ActiveKID,
		Issuer:    cfg.Auth.BackendJWT.Issuer,
		Audience:  cfg.Auth.BackendJWT.Audience,
		TTL:       time.Duration(cfg.Auth.BackendJWT.TTLSec) * time.Second,

		SessionSecret: cfg.Auth.Session.Secret,
	}, session.ContextReader{}, logger)

	backendClient := backend.NewClient(&backend.Config{
		BaseURL: cfg.Backend.BaseURL,
		Tokens:  issuer,
		Logger:  logger,
	})

	// Pass nil interface (not typed nil pointer) when there is no store.
	var pinger healthuc.DBPinger
	if store != nil {
		pinger = store
	}
	healthSvc := healthuc.New(&cat, pinger)

	server := chiTransport.NewServer(searchSvc, &cat, backendClient, healthSvc, logger, chiTransport.PageLimits{
		Default: cfg.Search.DefaultPageSize,
		Max:     cfg.Search.MaxPageSize,
	})

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORS.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           cfg.CORS.MaxAgeSec,
	}))
	r.Use(metrics.Middleware())
	r.Use(chiTransport.SessionMiddleware(verifier))
	r.Use(chiTransport.ProtectedPrefixesMiddleware(cfg.Auth.ProtectedPrefixes, cfg.Auth.SignInPath))
	server.Routes(r)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

// loadCatalog reads the dataset from the configured source. The returned
// store is nil for file catalogs; otherwise the caller closes it.
func loadCatalog(ctx context.Context, cfg *config.Config, logger *zap.Logger) (domcat.Catalog, db.Store, error) {
	var (
		src   catalogrepo.Source
		store db.Store
	)
	switch cfg.Catalog.Source {
	case config.CatalogSourceRedis:
		s, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.Database.Addrs,
			Username: cfg.Database.Username,
			Password: cfg.Database.Password,
			DB:       cfg.Database.DB,
		})
		if err != nil {
			return domcat.Catalog{}, nil, fmt.Errorf("create database store: %w", err)
		}
		if err := s.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
			s.Close()
			return domcat.Catalog{}, nil, fmt.Errorf("database not ready: %w", err)
		}
		logger.Info("Connected to database", zap.Strings("db_addrs", cfg.Database.Addrs))
		store = s
		src = catalogrepo.New(s, cfg.Catalog.Key)
	default:
		src = catalogrepo.FileSource{Path: cfg.Catalog.Path}
	}

	doc, err := src.Load(ctx)
	if err != nil {
		closeStore(store)
		return domcat.Catalog{}, nil, err
	}
	cat, err := catalogrepo.Build(doc)
	if err != nil {
		closeStore(store)
		return domcat.Catalog{}, nil, err
	}
	return cat, store, nil
}

func closeStore(s db.Store) {
	if s != nil {
		s.Close()
	}
}

// jsonRecoverer is a recovery middleware that returns JSON instead of a plain text stacktrace.
func jsonRecoverer(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rvr := recover(); rvr != nil {
					if rvr == http.ErrAbortHandler {
						panic(rvr)
					}
					logger.Error("panic recovered",
						zap.Any("panic", rvr),
						zap.String("path", r.URL.Path),
						zap.Stack("stacktrace"),
					)
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_ = json.NewEncoder(w).Encode(map[string]string{
						"code":    "internal_error",
						"message": "internal error",
					})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// wideEventMiddleware emits a canonical log line per request and propagates X-Request-ID.
func wideEventMiddleware(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// chi.middleware.RequestID already placed request_id in context
			requestID := chiMiddleware.GetReqID(r.Context())
			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			reqLogger := logger.With(zap.String("request_id", requestID))
			ctx := logpkg.ContextWithLogger(r.Context(), reqLogger)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			// Canonical log line, one per request
			reqLogger.Info("http_request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.String("query", r.URL.RawQuery),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", r.RemoteAddr),
				zap.String("user_agent", r.UserAgent()),
				zap.Int("response_bytes", ww.BytesWritten()),
			)
		})
	}
}
