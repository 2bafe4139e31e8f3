package trace

import (
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/text/language"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	catalogPath string

	addrs      []string
	password   string
	catalogKey string

	language language.Tag

	logger     *slog.Logger
	metricsReg prometheus.Registerer
}

// WithCatalogFile loads the catalog from a YAML file.
func WithCatalogFile(path string) Option {
	return optionFunc(func(c *clientConfig) {
		c.catalogPath = path
	})
}

// WithRedis loads the catalog snapshot from a Redis or Valkey instance.
func WithRedis(addr, password string) Option {
	return optionFunc(func(c *clientConfig) {
		c.addrs = []string{addr}
		c.password = password
	})
}

// WithCatalogKey overrides the snapshot key read by WithRedis.
// Default: trace:catalog:v1.
func WithCatalogKey(key string) Option {
	return optionFunc(func(c *clientConfig) {
		c.catalogKey = key
	})
}

// WithLanguage sets the collation used by the a-z sort.
func WithLanguage(tag language.Tag) Option {
	return optionFunc(func(c *clientConfig) {
		c.language = tag
	})
}

// WithLogger enables structured logging for client operations.
// Pass nil to disable (default). Uses standard library slog.
func WithLogger(l *slog.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}

// WithPrometheus registers client metrics (operation counts and durations)
// on the given registerer. Pass nil to disable (default).
func WithPrometheus(reg prometheus.Registerer) Option {
	return optionFunc(func(c *clientConfig) {
		c.metricsReg = reg
	})
}
