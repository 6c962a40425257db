package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// AppName names the XDG config and data directories.
const AppName = "lexreport"

//go:embed default.yaml
var DefaultConfigYAML []byte

// Environment variables that override config values.
const (
	EnvBaseURL   = "LEXREPORT_BASE_URL"
	EnvOutputDir = "LEXREPORT_OUTPUT_DIR"
	EnvDBPath    = "LEXREPORT_DB_PATH"
)

// Source kinds.
const (
	SourceHTTP   = "http"
	SourceSQLite = "sqlite"
	SourceFeed   = "feed"
	SourceFile   = "file"
)

// Logging levels. Progress lines are written at info; error keeps only
// failures, which are returned rather than logged.
const (
	LevelDebug = "debug"
	LevelInfo  = "info"
	LevelError = "error"
)

var (
	// ErrUnknownSource is returned for a source kind lexreport cannot read from.
	ErrUnknownSource = errors.New("unknown source kind")

	// ErrMissingSourceLocation is returned when the chosen source has no
	// URL or path configured.
	ErrMissingSourceLocation = errors.New("source location not configured")

	// ErrUnknownLogLevel is returned for a logging.level lexreport does not know.
	ErrUnknownLogLevel = errors.New("unknown log level")
)

type Config struct {
	Source   Source   `yaml:"source"`
	Output   Output   `yaml:"output"`
	Database Database `yaml:"database"`
	Logging  Logging  `yaml:"logging"`
}

type Source struct {
	Kind        string        `yaml:"kind"`
	BaseURL     string        `yaml:"base_url"`
	Timeout     time.Duration `yaml:"timeout"`
	File        string        `yaml:"file"`
	FeedURL     string        `yaml:"feed_url"`
	SkipUnknown bool          `yaml:"skip_unknown"`
	Category    string        `yaml:"category"`
	Author      string        `yaml:"author"`
}

type Output struct {
	Dir     string   `yaml:"dir"`
	Prefix  string   `yaml:"prefix"`
	Formats []string `yaml:"formats"`
}

type Database struct {
	Path string `yaml:"path"`
}

type Logging struct {
	Level string `yaml:"level"`
}

// LogLevel returns the normalized level; an empty level means info.
func (l Logging) LogLevel() (string, error) {
	level := strings.ToLower(strings.TrimSpace(l.Level))
	switch level {
	case "", LevelInfo:
		return LevelInfo, nil
	case LevelDebug, LevelError:
		return level, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownLogLevel, l.Level)
}

// ConfigDir returns the XDG config directory for lexreport.
func ConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// DataDir returns the XDG data directory for lexreport.
func DataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// ResolveConfigPath finds the config file following priority:
// explicit path > XDG config dir > ./config.yaml.
// It returns "" without error when no file exists and none was requested;
// the built-in defaults are used then.
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

// Load reads and parses a config YAML file. An empty path yields the
// defaults. A .env file in the working directory is loaded first and
// environment overrides are applied last.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	var data []byte
	if path != "" {
		var err error
		data, err = os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	cfg, err := parse(data)
	if err != nil {
		return nil, err
	}
	cfg.applyEnv(os.Getenv)
	if _, err := cfg.Logging.LogLevel(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// parse parses YAML bytes into a Config, applying defaults.
func parse(data []byte) (*Config, error) {
	cfg := &Config{
		Source: Source{
			Kind:    SourceHTTP,
			BaseURL: "http://localhost:3000",
			Timeout: 30 * time.Second,
		},
		Output: Output{
			Dir:     ".",
			Prefix:  "relatório",
			Formats: []string{"csv"},
		},
		Logging: Logging{Level: LevelInfo},
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	return cfg, nil
}

func (c *Config) applyEnv(getenv func(string) string) {
	if v := getenv(EnvBaseURL); v != "" {
		c.Source.BaseURL = v
	}
	if v := getenv(EnvOutputDir); v != "" {
		c.Output.Dir = v
	}
	if v := getenv(EnvDBPath); v != "" {
		c.Database.Path = v
	}
}

// Validate checks that the selected source can be built.
func (c *Config) Validate() error {
	switch strings.ToLower(c.Source.Kind) {
	case SourceHTTP:
		if c.Source.BaseURL == "" {
			return fmt.Errorf("%w: source.base_url", ErrMissingSourceLocation)
		}
	case SourceFile:
		if c.Source.File == "" {
			return fmt.Errorf("%w: source.file", ErrMissingSourceLocation)
		}
	case SourceFeed:
		if c.Source.FeedURL == "" {
			return fmt.Errorf("%w: source.feed_url", ErrMissingSourceLocation)
		}
	case SourceSQLite:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownSource, c.Source.Kind)
	}
	return nil
}

// GetDBPath returns the effective article store path from config or the
// XDG default.
func (c *Config) GetDBPath() string {
	if c.Database.Path != "" {
		return c.Database.Path
	}
	return filepath.Join(DataDir(), "articles.db")
}
