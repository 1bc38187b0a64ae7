package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"DealPull/pkg/util"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Environment string `yaml:"environment"`
	Server      struct {
		Port            int           `yaml:"port"`
		ReadTimeout     time.Duration `yaml:"read_timeout"`
		WriteTimeout    time.Duration `yaml:"write_timeout"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	} `yaml:"server"`
	Logging struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
		Output string `yaml:"output"`
	} `yaml:"logging"`
	Metrics struct {
		Enabled bool   `yaml:"enabled"`
		Path    string `yaml:"path"`
	} `yaml:"metrics"`
	RateLimit struct {
		Quota  int           `yaml:"quota"`
		Window time.Duration `yaml:"window"`
	} `yaml:"ratelimit"`
	Cache struct {
		Backend     string        `yaml:"backend"` // memory, redis or layered
		SnapshotTTL time.Duration `yaml:"snapshot_ttl"`
		Redis       struct {
			Host     string `yaml:"host"`
			Port     int    `yaml:"port"`
			Password string `yaml:"password"`
			DB       int    `yaml:"db"`
			Prefix   string `yaml:"prefix"`
		} `yaml:"redis"`
	} `yaml:"cache"`
	Sources struct {
		DefaultZip   string        `yaml:"default_zip"`
		FetchTimeout time.Duration `yaml:"fetch_timeout"`
		MaxRPS       float64       `yaml:"max_rps"`
		Burst        int           `yaml:"burst"`
		UserAgent    string        `yaml:"user_agent"`
		FeedURL      string        `yaml:"feed_url"`
		CategoryURL  string        `yaml:"category_url"`
		Catalogs     struct {
			Amazon  string `yaml:"amazon"`
			Walmart string `yaml:"walmart"`
			Target  string `yaml:"target"`
		} `yaml:"catalogs"`
	} `yaml:"sources"`
	Kafka struct {
		Enabled     bool          `yaml:"enabled"`
		Brokers     []string      `yaml:"brokers"`
		WarmupTopic string        `yaml:"warmup_topic"`
		EventTopic  string        `yaml:"event_topic"`
		GroupID     string        `yaml:"group_id"`
		MinBytes    int           `yaml:"min_bytes"`
		MaxBytes    int           `yaml:"max_bytes"`
		BatchBytes  int           `yaml:"batch_bytes"`
		WriteTO     time.Duration `yaml:"write_timeout"`
	} `yaml:"kafka"`
}

// Load reads and parses a YAML configuration file.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &c, nil
}

// LoadWithEnv loads config from YAML and overrides with environment variables.
func LoadWithEnv(path string) (*Config, error) {
	c, err := Load(path)
	if err != nil {
		return nil, err
	}

	if v := os.Getenv("DEALPULL_DEFAULT_ZIP"); v != "" {
		c.Sources.DefaultZip = v
	}
	if v := os.Getenv("DEALPULL_CACHE_BACKEND"); v != "" {
		c.Cache.Backend = v
	}
	if v := os.Getenv("REDIS_HOST"); v != "" {
		c.Cache.Redis.Host = v
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = strings.Split(v, ",")
	}
	c.RateLimit.Quota = util.ParseIntDefault(os.Getenv("DEALPULL_RATE_QUOTA"), c.RateLimit.Quota)

	return c, nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Environment == "" {
		return fmt.Errorf("environment is required")
	}
	switch c.Cache.Backend {
	case "memory", "redis", "layered":
	default:
		return fmt.Errorf("cache.backend must be 'memory', 'redis' or 'layered', got '%s'", c.Cache.Backend)
	}
	if len(c.Sources.DefaultZip) != 5 {
		return fmt.Errorf("sources.default_zip must be a 5-digit zip")
	}
	if c.RateLimit.Quota <= 0 {
		return fmt.Errorf("ratelimit.quota must be positive")
	}
	if c.RateLimit.Window <= 0 {
		return fmt.Errorf("ratelimit.window must be positive")
	}
	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("kafka.brokers cannot be empty when kafka is enabled")
	}
	return nil
}
