package clientconfig

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

const (
	BackendFile  = "file"
	BackendRedis = "redis"

	// DefaultFileName is looked up under the data dir when no path is given.
	DefaultFileName = "config.yaml"
)

// Config drives the terminal client. Values come from defaults, then the
// YAML file, then SECOSHA_CLIENT_* environment variables.
type Config struct {
	APIBaseURL string        `yaml:"api_base_url" envconfig:"SECOSHA_CLIENT_API_BASE_URL"`
	Timeout    time.Duration `yaml:"timeout" envconfig:"SECOSHA_CLIENT_TIMEOUT"`
	DataDir    string        `yaml:"data_dir" envconfig:"SECOSHA_CLIENT_DATA_DIR"`
	LogLevel   string        `yaml:"log_level" envconfig:"SECOSHA_CLIENT_LOG_LEVEL"`
	LogFile    string        `yaml:"log_file" envconfig:"SECOSHA_CLIENT_LOG_FILE"`

	Store   StoreConfig   `yaml:"store"`
	Browse  BrowseConfig  `yaml:"browse"`
	Breaker BreakerConfig `yaml:"breaker"`
}

type StoreConfig struct {
	Backend  string `yaml:"backend" envconfig:"SECOSHA_CLIENT_STORE_BACKEND"`
	RedisURL string `yaml:"redis_url" envconfig:"SECOSHA_CLIENT_REDIS_URL"`
}

type BrowseConfig struct {
	Debounce      time.Duration `yaml:"debounce" envconfig:"SECOSHA_CLIENT_SEARCH_DEBOUNCE"`
	SearchTimeout time.Duration `yaml:"search_timeout" envconfig:"SECOSHA_CLIENT_SEARCH_TIMEOUT"`
}

type BreakerConfig struct {
	MaxFailures uint32        `yaml:"max_failures" envconfig:"SECOSHA_CLIENT_BREAKER_MAX_FAILURES"`
	OpenTimeout time.Duration `yaml:"open_timeout" envconfig:"SECOSHA_CLIENT_BREAKER_OPEN_TIMEOUT"`
}

// Defaults returns the built-in configuration.
func Defaults() Config {
	return Config{
		APIBaseURL: "http://localhost:8080",
		Timeout:    15 * time.Second,
		DataDir:    defaultDataDir(),
		LogLevel:   "warn",
		Store:      StoreConfig{Backend: BackendFile},
		Browse: BrowseConfig{
			Debounce:      300 * time.Millisecond,
			SearchTimeout: 8 * time.Second,
		},
		Breaker: BreakerConfig{
			MaxFailures: 5,
			OpenTimeout: 30 * time.Second,
		},
	}
}

func defaultDataDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "secosha")
	}
	return ".secosha"
}

// Load layers the YAML file at path (optional) and the environment over Defaults.
// An empty path looks for config.yaml under the data dir; a missing file is not an error.
func Load(path string) (Config, error) {
	cfg := Defaults()
	if env := os.Getenv("SECOSHA_CLIENT_DATA_DIR"); env != "" {
		cfg.DataDir = env
	}

	explicit := path != ""
	if !explicit {
		path = filepath.Join(cfg.DataDir, DefaultFileName)
	}
	raw, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("parsing %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist) && !explicit:
	default:
		return Config{}, fmt.Errorf("reading %s: %w", path, err)
	}

	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing client env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.APIBaseURL) == "" {
		return fmt.Errorf("api_base_url is required")
	}
	if c.DataDir == "" {
		return fmt.Errorf("data_dir is required")
	}
	switch c.Store.Backend {
	case BackendFile:
	case BackendRedis:
		if c.Store.RedisURL == "" {
			return fmt.Errorf("store.redis_url is required for the redis backend")
		}
	default:
		return fmt.Errorf("unknown store backend %q", c.Store.Backend)
	}
	return nil
}
