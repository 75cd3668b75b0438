package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config is the userdesk configuration shared by the server and the screen front ends.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Screen   ScreenConfig   `yaml:"screen"`
	Logging  LoggingConfig  `yaml:"logging"`
}

type ServerConfig struct {
	Addr string `yaml:"addr"`
	// Latency delays every API response; useful to watch overlapping requests.
	Latency         string `yaml:"latency"`
	WasmDir         string `yaml:"wasm_dir"`
	PublicURL       string `yaml:"public_url"`
	ShutdownTimeout string `yaml:"shutdown_timeout"`
}

type DatabaseConfig struct {
	Path          string `yaml:"path"`
	MigrationsDir string `yaml:"migrations_dir"` // empty: embedded migrations
}

type ScreenConfig struct {
	APIURL         string `yaml:"api_url"`
	PageSize       int    `yaml:"page_size"`
	SearchDelay    string `yaml:"search_delay"`
	RequestTimeout string `yaml:"request_timeout"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text, json
}

const (
	maxPageSize = 100
)

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:            ":8080",
			Latency:         "0s",
			WasmDir:         "web/wasm",
			PublicURL:       "http://localhost:8080",
			ShutdownTimeout: "10s",
		},
		Database: DatabaseConfig{
			Path: "userdesk.db",
		},
		Screen: ScreenConfig{
			APIURL:         "http://localhost:8080/api",
			PageSize:       5,
			SearchDelay:    "300ms",
			RequestTimeout: "15s",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// LoadDotEnv loads KEY=VALUE files into the process environment without overriding
// variables that are already set. Missing files are skipped.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("load %s: %w", f, err)
		}
	}
	return nil
}

// Load reads the YAML file at path (defaults when it does not exist), applies environment
// overrides and validates the result.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config: %w", err)
			}
		}
	}

	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the configuration as YAML.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

func (c *Config) applyEnvOverrides() error {
	if v := os.Getenv("APP_ADDR"); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		c.Database.Path = v
	}
	if v := os.Getenv("USERDESK_LATENCY"); v != "" {
		c.Server.Latency = v
	}
	if v := os.Getenv("USERDESK_WASM_DIR"); v != "" {
		c.Server.WasmDir = v
	}
	if v := os.Getenv("USERDESK_PUBLIC_URL"); v != "" {
		c.Server.PublicURL = v
	}
	if v := os.Getenv("USERDESK_API_URL"); v != "" {
		c.Screen.APIURL = v
	}
	if v := os.Getenv("USERDESK_PAGE_SIZE"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("USERDESK_PAGE_SIZE: %w", err)
		}
		c.Screen.PageSize = n
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		c.Logging.Format = v
	}
	return nil
}

// Validate checks values that would otherwise fail late at startup.
func (c *Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.Server.Addr) == "" {
		errs = append(errs, errors.New("server.addr is required"))
	}
	if strings.TrimSpace(c.Database.Path) == "" {
		errs = append(errs, errors.New("database.path is required"))
	}
	if c.Screen.PageSize < 1 || c.Screen.PageSize > maxPageSize {
		errs = append(errs, fmt.Errorf("screen.page_size must be between 1 and %d, got %d", maxPageSize, c.Screen.PageSize))
	}
	for name, value := range map[string]string{
		"server.latency":          c.Server.Latency,
		"server.shutdown_timeout": c.Server.ShutdownTimeout,
		"screen.search_delay":     c.Screen.SearchDelay,
		"screen.request_timeout":  c.Screen.RequestTimeout,
	} {
		if value == "" {
			continue
		}
		if d, err := time.ParseDuration(value); err != nil || d < 0 {
			errs = append(errs, fmt.Errorf("%s: invalid duration %q", name, value))
		}
	}
	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("logging.level: unknown level %q", c.Logging.Level))
	}
	switch strings.ToLower(c.Logging.Format) {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("logging.format: unknown format %q", c.Logging.Format))
	}
	return errors.Join(errs...)
}

func (c *Config) GetLatency() time.Duration {
	return parseDuration(c.Server.Latency, 0)
}

func (c *Config) GetShutdownTimeout() time.Duration {
	return parseDuration(c.Server.ShutdownTimeout, 10*time.Second)
}

func (c *Config) GetSearchDelay() time.Duration {
	return parseDuration(c.Screen.SearchDelay, 300*time.Millisecond)
}

func (c *Config) GetRequestTimeout() time.Duration {
	return parseDuration(c.Screen.RequestTimeout, 15*time.Second)
}

func parseDuration(value string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(value)
	if err != nil || d < 0 {
		return fallback
	}
	return d
}
