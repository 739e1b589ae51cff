package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

const (
	DefaultLanguage   = "en"
	DefaultStore      = ".db"
	DefaultMaxDepth   = 5
	DefaultOpenQuote  = "【"
	DefaultCloseQuote = "】"
)

type Config struct {
	Listen          string        `json:"listen" yaml:"listen" env:"MDX_LISTEN" env-default:":8080"`
	ReadTimeout     Duration      `json:"read_timeout" yaml:"read_timeout" env:"MDX_READ_TIMEOUT" env-default:"5s"`
	WriteTimeout    Duration      `json:"write_timeout" yaml:"write_timeout" env:"MDX_WRITE_TIMEOUT" env-default:"30s"`
	ShutdownTimeout Duration      `json:"shutdown_timeout" yaml:"shutdown_timeout" env:"MDX_SHUTDOWN_TIMEOUT" env-default:"10s"`
	StaticDir       string        `json:"static_dir" yaml:"static_dir" env:"MDX_STATIC_DIR"`
	Log             LogConfig     `json:"log" yaml:"log"`
	Index           IndexConfig   `json:"index" yaml:"index"`
	Query           QueryConfig   `json:"query" yaml:"query"`
	Dictionaries    []DictConfig  `json:"dictionaries" yaml:"dictionaries"`
}

type LogConfig struct {
	Level string `json:"level" yaml:"level" env:"MDX_LOG_LEVEL" env-default:"info"`
}

// IndexConfig controls how dictionary stores are built at startup.
type IndexConfig struct {
	StoreSuffix string `json:"store_suffix" yaml:"store_suffix" env:"MDX_STORE_SUFFIX" env-default:".db"`
	Reindex     bool   `json:"reindex" yaml:"reindex" env:"MDX_REINDEX"`
}

type QueryConfig struct {
	DefaultLanguage string   `json:"default_language" yaml:"default_language" env:"MDX_DEFAULT_LANGUAGE" env-default:"en"`
	MaxRedirects    int      `json:"max_redirects" yaml:"max_redirects" env:"MDX_MAX_REDIRECTS"`
	CacheSize       int      `json:"cache_size" yaml:"cache_size" env:"MDX_CACHE_SIZE" env-default:"1024"`
	CacheTTL        Duration `json:"cache_ttl" yaml:"cache_ttl" env:"MDX_CACHE_TTL" env-default:"5m"`
	RateLimit       float64  `json:"rate_limit" yaml:"rate_limit" env:"MDX_RATE_LIMIT"`
	RateBurst       int      `json:"rate_burst" yaml:"rate_burst" env:"MDX_RATE_BURST" env-default:"20"`
}

// DictConfig describes one dictionary file. An empty Language means the
// default query language.
type DictConfig struct {
	ID           string `json:"id" yaml:"id"`
	Name         string `json:"name" yaml:"name"`
	Type         string `json:"type" yaml:"type"`
	Path         string `json:"path" yaml:"path"`
	Enabled      *bool  `json:"enabled" yaml:"enabled"`
	Language     string `json:"language" yaml:"language"`
	Delimiter    string `json:"delimiter" yaml:"delimiter"`
	PatternOpen  string `json:"pattern_open" yaml:"pattern_open"`
	PatternClose string `json:"pattern_close" yaml:"pattern_close"`
}

// IsEnabled reports whether the dictionary takes part in indexing and
// queries. Dictionaries are enabled unless explicitly switched off.
func (d DictConfig) IsEnabled() bool {
	return d.Enabled == nil || *d.Enabled
}

// Lang returns the configured language or def when none is set.
func (d DictConfig) Lang(def string) string {
	if l := strings.TrimSpace(d.Language); l != "" {
		return l
	}
	return def
}

// Pattern returns the bracket pair used for pattern fallback lookups.
func (d DictConfig) Pattern() (open, closing string) {
	open, closing = d.PatternOpen, d.PatternClose
	if open == "" && closing == "" {
		return DefaultOpenQuote, DefaultCloseQuote
	}
	return open, closing
}

func Default() Config {
	return Config{
		Listen:          ":8080",
		ReadTimeout:     Duration(5 * time.Second),
		WriteTimeout:    Duration(30 * time.Second),
		ShutdownTimeout: Duration(10 * time.Second),
		Log: LogConfig{
			Level: "info",
		},
		Index: IndexConfig{
			StoreSuffix: DefaultStore,
		},
		Query: QueryConfig{
			DefaultLanguage: DefaultLanguage,
			MaxRedirects:    DefaultMaxDepth,
			CacheSize:       1024,
			CacheTTL:        Duration(5 * time.Minute),
			RateBurst:       20,
		},
	}
}

// Load reads a JSON or YAML config file, applies MDX_* environment
// overrides and validates the result. Keys missing from the file keep the
// values of Default, so an explicit max_redirects of 0 disables redirects.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, errors.New("config path is required")
	}
	if _, err := os.Stat(path); err != nil {
		return cfg, fmt.Errorf("config: file %s: %w", path, err)
	}
	if err := cleanenv.ReadConfig(path, &cfg); err != nil {
		return cfg, fmt.Errorf("config: read %s: %w", path, err)
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config: validate: %w", err)
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Listen == "" {
		c.Listen = ":8080"
	}
	if c.ReadTimeout == 0 {
		c.ReadTimeout = Duration(5 * time.Second)
	}
	if c.WriteTimeout == 0 {
		c.WriteTimeout = Duration(30 * time.Second)
	}
	if c.ShutdownTimeout == 0 {
		c.ShutdownTimeout = Duration(10 * time.Second)
	}
	if c.Index.StoreSuffix == "" {
		c.Index.StoreSuffix = DefaultStore
	}
	if c.Query.DefaultLanguage == "" {
		c.Query.DefaultLanguage = DefaultLanguage
	}
	for i := range c.Dictionaries {
		if c.Dictionaries[i].ID == "" {
			base := filepath.Base(c.Dictionaries[i].Path)
			c.Dictionaries[i].ID = strings.TrimSuffix(base, filepath.Ext(base))
		}
		if c.Dictionaries[i].Name == "" {
			c.Dictionaries[i].Name = c.Dictionaries[i].ID
		}
	}
}

// Validate checks rules that cleanenv tags cannot express.
func (c *Config) Validate() error {
	if c.Query.MaxRedirects < 0 {
		return fmt.Errorf("query.max_redirects must be >= 0 (got %d)", c.Query.MaxRedirects)
	}
	if c.Query.RateLimit < 0 {
		return fmt.Errorf("query.rate_limit must be >= 0 (got %v)", c.Query.RateLimit)
	}
	seen := make(map[string]bool, len(c.Dictionaries))
	for i, d := range c.Dictionaries {
		if strings.TrimSpace(d.Path) == "" {
			return fmt.Errorf("dictionaries[%d]: missing path", i)
		}
		if seen[d.ID] {
			return fmt.Errorf("dictionaries[%d]: duplicate id %q", i, d.ID)
		}
		seen[d.ID] = true
		if (d.PatternOpen == "") != (d.PatternClose == "") {
			return fmt.Errorf("dictionaries[%d]: pattern_open and pattern_close must be set together", i)
		}
	}
	return nil
}

// StorePath returns where the index store for a dictionary file lives.
func (c Config) StorePath(d DictConfig) string {
	return d.Path + c.Index.StoreSuffix
}
