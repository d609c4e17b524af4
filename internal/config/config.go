// ABOUTME: Configuration loading and parsing for script-gateway
// ABOUTME: Supports YAML files with environment variable expansion and duration parsing

package config

import (
	"fmt"
	"os"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the complete script-gateway configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Scripts  ScriptsConfig  `yaml:"scripts"`
	History  HistoryConfig  `yaml:"history"`
	Auth     AuthConfig     `yaml:"auth"`
	Logging  LoggingConfig  `yaml:"logging"`
	Metrics  MetricsConfig  `yaml:"metrics"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	HTTPAddr        string        `yaml:"http_addr"`
	ShutdownTimeout time.Duration `yaml:"-"`

	// Raw string value for YAML unmarshaling
	ShutdownTimeoutRaw string `yaml:"shutdown_timeout"`
}

// DatabaseConfig holds the history database configuration.
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// ScriptsConfig holds script execution configuration.
type ScriptsConfig struct {
	// OutputDir is where scripts drop report/chart files; served under /static/.
	OutputDir string `yaml:"output_dir"`
	// DefaultLang is used when a request omits the language code.
	DefaultLang string `yaml:"default_lang"`
}

// HistoryConfig holds execution-history configuration.
type HistoryConfig struct {
	// DefaultLimit caps history listings when the client doesn't pass ?limit.
	DefaultLimit int `yaml:"default_limit"`
}

// AuthConfig holds authentication configuration. An empty secret disables auth.
type AuthConfig struct {
	JWTSecret string `yaml:"jwt_secret"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// MetricsConfig holds metrics endpoint configuration.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// Load reads a configuration file from the given path and returns a parsed
// Config. Environment variables in the format ${VAR_NAME} are expanded.
// Duration strings are parsed into time.Duration values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	// Expand environment variables in the raw YAML content
	expandedData := expandEnvVars(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expandedData), &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	if err := parseDurations(&cfg); err != nil {
		return nil, fmt.Errorf("parsing durations: %w", err)
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

// expandEnvVars replaces ${VAR_NAME} patterns with the corresponding
// environment variable values. Unset variables become empty strings.
func expandEnvVars(s string) string {
	re := regexp.MustCompile(`\$\{([^}]+)\}`)

	return re.ReplaceAllStringFunc(s, func(match string) string {
		varName := re.FindStringSubmatch(match)[1]
		return os.Getenv(varName)
	})
}

// applyDefaults fills in optional fields left empty by the YAML file.
func (c *Config) applyDefaults() {
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = 10 * time.Second
	}
	if c.Scripts.DefaultLang == "" {
		c.Scripts.DefaultLang = "en"
	}
	if c.History.DefaultLimit == 0 {
		c.History.DefaultLimit = 20
	}
	if c.Metrics.Path == "" {
		c.Metrics.Path = "/metrics"
	}
}

// Validate checks that all required configuration fields are present.
// Returns an error describing the first validation failure encountered.
func (c *Config) Validate() error {
	if c.Server.HTTPAddr == "" {
		return fmt.Errorf("server.http_addr is required")
	}
	if c.Database.Path == "" {
		return fmt.Errorf("database.path is required")
	}
	return nil
}

// parseDurations converts the raw duration strings into time.Duration values.
func parseDurations(cfg *Config) error {
	if cfg.Server.ShutdownTimeoutRaw != "" {
		d, err := time.ParseDuration(cfg.Server.ShutdownTimeoutRaw)
		if err != nil {
			return fmt.Errorf("invalid server.shutdown_timeout: %w", err)
		}
		cfg.Server.ShutdownTimeout = d
	}
	return nil
}
