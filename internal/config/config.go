// Package config loads the collection run configuration from YAML with
// environment overrides.
package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for a collection run.
type Config struct {
	Graph      GraphConfig      `yaml:"graph"`
	Collection CollectionConfig `yaml:"collection"`
	Redis      RedisConfig      `yaml:"redis"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// GraphConfig holds Graph API endpoint and credential settings.
type GraphConfig struct {
	BaseURL        string `yaml:"base_url"`
	AccessToken    string `yaml:"access_token"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
	MaxRetries     int    `yaml:"max_retries"`
}

// ItemConfig is one configured item: a bare id, or an id with its own
// access token for multi-tenant runs.
type ItemConfig struct {
	ID    string `yaml:"id"`
	Token string `yaml:"token"`
}

// UnmarshalYAML accepts both `- 12345` and `- {id: 12345, token: ...}`
// item entries.
func (i *ItemConfig) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode {
		i.ID = value.Value
		return nil
	}
	type plain ItemConfig
	var p plain
	if err := value.Decode(&p); err != nil {
		return err
	}
	*i = ItemConfig(p)
	return nil
}

// CollectionConfig describes what to collect.
type CollectionConfig struct {
	ItemType      string       `yaml:"item_type"` // "page" or "app"
	Items         []ItemConfig `yaml:"items"`
	PastDays      int          `yaml:"past_days"` // 0 = unbounded lookback
	MaxSpanDays   int          `yaml:"max_span_days"`
	Period        string       `yaml:"period"`
	Metrics       []string     `yaml:"metrics"`
	Events        []string     `yaml:"events"`
	Breakdowns    []string     `yaml:"breakdowns"`
	Aggregate     bool         `yaml:"aggregate"`
	IgnoreMissing bool         `yaml:"ignore_missing"`
	SkipCodes     []int        `yaml:"skip_codes"`
	RetryAttempts int          `yaml:"retry_attempts"`
}

// RedisConfig enables the resolved-name cache.
type RedisConfig struct {
	Enabled  bool   `yaml:"enabled"`
	URL      string `yaml:"url"`
	TTLHours int    `yaml:"ttl_hours"`
}

// LoggingConfig holds logger settings.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// Load reads the YAML config file and applies defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	// Set defaults
	if cfg.Graph.TimeoutSeconds == 0 {
		cfg.Graph.TimeoutSeconds = 60
	}
	if cfg.Graph.MaxRetries == 0 {
		cfg.Graph.MaxRetries = 3
	}
	if cfg.Collection.ItemType == "" {
		cfg.Collection.ItemType = "page"
	}
	if cfg.Collection.Period == "" {
		cfg.Collection.Period = "day"
	}
	if cfg.Collection.MaxSpanDays == 0 {
		cfg.Collection.MaxSpanDays = 90
	}
	if cfg.Redis.TTLHours == 0 {
		cfg.Redis.TTLHours = 24
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadFromEnv loads config with .env support and environment overrides.
func LoadFromEnv(path string) (*Config, error) {
	// Load .env file if present (ignore errors, it's optional)
	_ = godotenv.Load()

	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}

	if token := os.Getenv("FB_ACCESS_TOKEN"); token != "" {
		cfg.Graph.AccessToken = token
	}
	if redisURL := os.Getenv("INSIGHT_REDIS_URL"); redisURL != "" {
		cfg.Redis.URL = redisURL
		cfg.Redis.Enabled = true
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.Collection.ItemType != "page" && c.Collection.ItemType != "app" {
		return fmt.Errorf("config: item_type must be \"page\" or \"app\", got %q", c.Collection.ItemType)
	}
	if len(c.Collection.Items) == 0 {
		return fmt.Errorf("config: at least one item is required")
	}
	if len(c.Collection.Metrics) == 0 {
		return fmt.Errorf("config: at least one metric is required")
	}
	for _, item := range c.Collection.Items {
		if item.ID == "" {
			return fmt.Errorf("config: item entry with empty id")
		}
	}
	return nil
}
