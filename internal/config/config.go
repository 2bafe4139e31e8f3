package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"
)

// Catalog sources.
const (
	CatalogSourceFile  = "file"
	CatalogSourceRedis = "redis"
)

// Config holds the trace gateway configuration.
type Config struct {
	HTTP     HTTPConfig     `yaml:"http"`
	Logging  LoggingConfig  `yaml:"logging"`
	Catalog  CatalogConfig  `yaml:"catalog"`
	Database DatabaseConfig `yaml:"database"`
	Search   SearchConfig   `yaml:"search"`
	Auth     AuthConfig     `yaml:"auth"`
	Backend  BackendConfig  `yaml:"backend"`
	CORS     CORSConfig     `yaml:"cors"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// CatalogConfig selects where the search dataset is loaded from.
type CatalogConfig struct {
	Source string `yaml:"source"` // file (default), redis
	Path   string `yaml:"path"`
	Key    string `yaml:"key"`
}

// DatabaseConfig holds Redis/Valkey connection settings for the redis catalog source.
type DatabaseConfig struct {
	Addrs            []string `yaml:"addrs"`
	Username         string   `yaml:"username"`
	Password         string   `yaml:"password"`
	DB               int      `yaml:"db"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// SearchConfig holds pagination and collation settings.
type SearchConfig struct {
	DefaultPageSize int    `yaml:"default_page_size"`
	MaxPageSize     int    `yaml:"max_page_size"`
	Language        string `yaml:"language"` // BCP 47 tag for a-z ordering, default "und"
}

// AuthConfig holds session verification and backend token settings.
type AuthConfig struct {
	Session           SessionConfig    `yaml:"session"`
	BackendJWT        BackendJWTConfig `yaml:"backend_jwt"`
	ProtectedPrefixes []string         `yaml:"protected_prefixes"`
	SignInPath        string           `yaml:"sign_in_path"`
}

// SessionConfig configures verification of the user session token.
type SessionConfig struct {
	Secret string `yaml:"secret"`
	Cookie string `yaml:"cookie"`
}

// BackendJWTConfig configures the service tokens sent to the backend.
// Keys is a JSON object {"kid": "secret"}.
type BackendJWTConfig struct {
	Keys      string `yaml:"keys"`
	ActiveKID string `yaml:"active_kid"`
	Issuer    string `yaml:"issuer"`
	Audience  string `yaml:"audience"`
	TTLSec    int    `yaml:"ttl_sec"`
}

// BackendConfig holds the backend API location. An empty BaseURL disables backend routes.
type BackendConfig struct {
	BaseURL string `yaml:"base_url"`
}

// CORSConfig holds cross-origin settings for the web front end.
type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
	MaxAgeSec      int      `yaml:"max_age_sec"`
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	// Substitute env variables of the form ${VAR}
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// MustLoad loads configuration or panics.
func MustLoad(env string) Config {
	cfg, err := Load(env)
	if err != nil {
		panic(err)
	}
	return cfg
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 10
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Catalog.Source == "" {
		c.Catalog.Source = CatalogSourceFile
	}
	if c.Catalog.Key == "" {
		c.Catalog.Key = "trace:catalog:v1"
	}
	if c.Database.ReadinessTimeout <= 0 {
		c.Database.ReadinessTimeout = 10
	}
	if c.Search.DefaultPageSize <= 0 {
		c.Search.DefaultPageSize = 24
	}
	if c.Search.MaxPageSize <= 0 {
		c.Search.MaxPageSize = 100
	}
	if c.Search.Language == "" {
		c.Search.Language = "und"
	}
	if c.Auth.Session.Cookie == "" {
		c.Auth.Session.Cookie = "trace.session-token"
	}
	if c.Auth.BackendJWT.Issuer == "" {
		c.Auth.BackendJWT.Issuer = "trace-nextjs"
	}
	if c.Auth.BackendJWT.Audience == "" {
		c.Auth.BackendJWT.Audience = "trace-api"
	}
	if c.Auth.BackendJWT.TTLSec <= 0 {
		c.Auth.BackendJWT.TTLSec = 300
	}
	if c.Auth.ProtectedPrefixes == nil {
		c.Auth.ProtectedPrefixes = []string{"/settings", "/account", "/me", "/org/new", "/repo/new"}
	}
	if c.Auth.SignInPath == "" {
		c.Auth.SignInPath = "/sign-in"
	}
	if c.CORS.MaxAgeSec <= 0 {
		c.CORS.MaxAgeSec = 300
	}
}

// Validate checks the configuration for correctness.
// A broken backend key ring is not an error here: signing degrades to anonymous at startup.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	switch c.Catalog.Source {
	case CatalogSourceFile:
		if c.Catalog.Path == "" {
			return fmt.Errorf("catalog.path is required for source %q", CatalogSourceFile)
		}
	case CatalogSourceRedis:
		if len(c.Database.Addrs) == 0 {
			return fmt.Errorf("database.addrs is required for catalog source %q", CatalogSourceRedis)
		}
	default:
		return fmt.Errorf("catalog.source must be %q or %q, got %q", CatalogSourceFile, CatalogSourceRedis, c.Catalog.Source)
	}
	if c.Search.MaxPageSize > 100 {
		return fmt.Errorf("search.max_page_size must be at most 100, got %d", c.Search.MaxPageSize)
	}
	if c.Search.DefaultPageSize > c.Search.MaxPageSize {
		return fmt.Errorf("search.default_page_size (%d) exceeds search.max_page_size (%d)",
			c.Search.DefaultPageSize, c.Search.MaxPageSize)
	}
	if kid := backendKeySharingSessionSecret(c.Auth); kid != "" {
		return fmt.Errorf("auth.backend_jwt.keys[%q] must not reuse auth.session.secret", kid)
	}
	return nil
}

// backendKeySharingSessionSecret returns the id of a backend key whose secret
// equals the session secret, or "" when the two sets are disjoint.
func backendKeySharingSessionSecret(a AuthConfig) string {
	if a.Session.Secret == "" || a.BackendJWT.Keys == "" {
		return ""
	}
	var keys map[string]string
	if err := json.Unmarshal([]byte(a.BackendJWT.Keys), &keys); err != nil {
		return ""
	}
	for kid, secret := range keys {
		if secret == a.Session.Secret {
			return kid
		}
	}
	return ""
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
