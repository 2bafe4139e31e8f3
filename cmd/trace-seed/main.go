// Command trace-seed validates a catalog file and stores it as the JSON
// snapshot the API server reads when catalog.source is redis.
package main

import (
	"context"
	"flag"
	"time"

	"go.uber.org/zap"

	"github.com/lucasveenman/trace/internal/config"
	dbRedis "github.com/lucasveenman/trace/internal/db/redis"
	logpkg "github.com/lucasveenman/trace/internal/logger"
	catalogrepo "github.com/lucasveenman/trace/internal/repository/catalog"
)

func main() {
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	path := flag.String("file", cfg.Catalog.Path, "catalog YAML file")
	key := flag.String("key", cfg.Catalog.Key, "snapshot key")
	flag.Parse()

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	ctx := context.Background()

	doc, err := catalogrepo.FileSource{Path: *path}.Load(ctx)
	if err != nil {
		logger.Fatal("Failed to read catalog", zap.String("path", *path), zap.Error(err))
	}
	cat, err := catalogrepo.Build(doc)
	if err != nil {
		logger.Fatal("Catalog is invalid", zap.String("path", *path), zap.Error(err))
	}

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.Database.Addrs,
		Username: cfg.Database.Username,
		Password: cfg.Database.Password,
		DB:       cfg.Database.DB,
	})
	if err != nil {
		logger.Fatal("Failed to create database store", zap.Error(err))
	}
	defer store.Close()

	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Database not ready", zap.Error(err))
	}

	if err := catalogrepo.New(store, *key).Save(ctx, doc); err != nil {
		logger.Fatal("Failed to save catalog", zap.Error(err))
	}

	logger.Info("Catalog seeded",
		zap.String("key", *key),
		zap.Int("records", cat.Len()),
		zap.Int("entities", len(cat.Entities())),
	)
}
