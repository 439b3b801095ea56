package config

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var DefaultConfigYAML []byte

type Config struct {
	Database   Database   `yaml:"database" toml:"database"`
	Server     Server     `yaml:"server" toml:"server"`
	API        API        `yaml:"api" toml:"api"`
	Enrichment Enrichment `yaml:"enrichment" toml:"enrichment"`
	Graph      Graph      `yaml:"graph" toml:"graph"`
	Logging    Logging    `yaml:"logging" toml:"logging"`
}

type Database struct {
	Driver string `yaml:"driver" toml:"driver"` // "sqlite" or "postgres"
	Path   string `yaml:"path" toml:"path"`
	URL    string `yaml:"url" toml:"url"`
}

type Server struct {
	Host           string   `yaml:"host" toml:"host"`
	Port           int      `yaml:"port" toml:"port"`
	RequestTimeout Duration `yaml:"request_timeout" toml:"request_timeout"`
}

type API struct {
	StrictDates      bool `yaml:"strict_dates" toml:"strict_dates"`
	DefaultFeedLimit int  `yaml:"default_feed_limit" toml:"default_feed_limit"`
}

type Enrichment struct {
	Enabled        bool     `yaml:"enabled" toml:"enabled"`
	Timeout        Duration `yaml:"timeout" toml:"timeout"`
	CacheTTL       Duration `yaml:"cache_ttl" toml:"cache_ttl"`
	MaxConcurrency int      `yaml:"max_concurrency" toml:"max_concurrency"`
	MaxRedirects   int      `yaml:"max_redirects" toml:"max_redirects"`
	UserAgent      string   `yaml:"user_agent" toml:"user_agent"`
	WarmSchedule   string   `yaml:"warm_schedule" toml:"warm_schedule"`
}

type Graph struct {
	Backend  string `yaml:"backend" toml:"backend"` // "sql" or "neo4j"
	MaxDepth int    `yaml:"max_depth" toml:"max_depth"`
	URI      string `yaml:"uri" toml:"uri"`
	User     string `yaml:"user" toml:"user"`
	Password string `yaml:"password" toml:"password"`
}

type Logging struct {
	Level      string `yaml:"level" toml:"level"`
	File       string `yaml:"file" toml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb" toml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups" toml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days" toml:"max_age_days"`
}

// Duration is a time.Duration that decodes from strings like "5s".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(strings.TrimSpace(string(text)))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", text, err)
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// ConfigDir returns the XDG config directory for contextapi.
func ConfigDir() string {
	return filepath.Join(homeDir(), ".config", "contextapi")
}

// DataDir returns the XDG data directory for contextapi.
func DataDir() string {
	return filepath.Join(homeDir(), ".local", "share", "contextapi")
}

// ResolveConfigPath finds the config file following priority:
// explicit path > ~/.config/contextapi/config.yaml > ./config.yaml
// An empty path with a nil error means no file exists and defaults apply.
func ResolveConfigPath(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", fmt.Errorf("config file not found: %s", explicit)
		}
		return explicit, nil
	}

	xdgConfig := filepath.Join(ConfigDir(), "config.yaml")
	if _, err := os.Stat(xdgConfig); err == nil {
		return xdgConfig, nil
	}

	cwdConfig := "config.yaml"
	if _, err := os.Stat(cwdConfig); err == nil {
		return cwdConfig, nil
	}

	return "", nil
}

// Load reads a config file (YAML, or TOML by extension), applies defaults
// and environment overrides. An empty path yields the defaults.
func Load(path string) (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	if path == "" {
		cfg, err := parse(nil, formatYAML)
		if err != nil {
			return nil, err
		}
		cfg.applyEnv()
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	format := formatYAML
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		format = formatTOML
	}
	cfg, err := parse(data, format)
	if err != nil {
		return nil, err
	}
	cfg.applyEnv()
	return cfg, nil
}

type fileFormat int

const (
	formatYAML fileFormat = iota
	formatTOML
)

// Defaults returns the built-in configuration.
func Defaults() *Config {
	return &Config{
		Database: Database{Driver: "sqlite"},
		Server: Server{
			Host:           "127.0.0.1",
			Port:           8000,
			RequestTimeout: Duration{15 * time.Second},
		},
		API: API{DefaultFeedLimit: 20},
		Enrichment: Enrichment{
			Enabled:        true,
			Timeout:        Duration{5 * time.Second},
			CacheTTL:       Duration{time.Hour},
			MaxConcurrency: 16,
			MaxRedirects:   10,
			UserAgent:      "ContextAPI/1.0 (news aggregator)",
		},
		Graph:   Graph{Backend: "sql", MaxDepth: 10},
		Logging: Logging{Level: "INFO", MaxSizeMB: 10, MaxBackups: 5, MaxAgeDays: 30},
	}
}

// parse decodes config bytes over the defaults.
func parse(data []byte, format fileFormat) (*Config, error) {
	cfg := Defaults()
	if len(data) == 0 {
		return cfg, nil
	}

	switch format {
	case formatTOML:
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config: %w", err)
		}
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config: %w", err)
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Database.Driver {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("unknown database driver %q", c.Database.Driver)
	}
	switch c.Graph.Backend {
	case "sql", "neo4j":
	default:
		return fmt.Errorf("unknown graph backend %q", c.Graph.Backend)
	}
	if c.Graph.MaxDepth < 1 {
		return fmt.Errorf("graph.max_depth must be positive, got %d", c.Graph.MaxDepth)
	}
	return nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("CONTEXTAPI_DATABASE_DRIVER"); v != "" {
		c.Database.Driver = v
	}
	if v := os.Getenv("CONTEXTAPI_DATABASE_URL"); v != "" {
		c.Database.URL = v
	}
	if v := os.Getenv("CONTEXTAPI_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.Server.Port = port
		}
	}
	if v := os.Getenv("CONTEXTAPI_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("MEMGRAPH_URI"); v != "" {
		c.Graph.URI = v
	}
	if v := os.Getenv("MEMGRAPH_USER"); v != "" {
		c.Graph.User = v
	}
	if v := os.Getenv("MEMGRAPH_PASSWORD"); v != "" {
		c.Graph.Password = v
	}
}

// GetDatabasePath returns the effective SQLite path from config or XDG default.
func (c *Config) GetDatabasePath() string {
	if c.Database.Path != "" {
		return c.Database.Path
	}
	return filepath.Join(DataDir(), "contextapi.db")
}

func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
