// Package config loads runtime configuration from a YAML file and
// NEWSCRAWLER_-prefixed environment variables.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the full runtime configuration tree.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Crawler   CrawlerConfig   `mapstructure:"crawler"`
	Store     StoreConfig     `mapstructure:"store"`
	Snapshot  SnapshotConfig  `mapstructure:"snapshot"`
	Publisher PublisherConfig `mapstructure:"publisher"`
}

// ServerConfig configures the HTTP API server.
type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// LoggingConfig selects the logger profile.
type LoggingConfig struct {
	Development bool `mapstructure:"development"`
}

// CrawlerConfig configures fetching behavior shared by all sites.
type CrawlerConfig struct {
	UserAgent     string `mapstructure:"user_agent"`
	RespectRobots bool   `mapstructure:"respect_robots"`
	CacheDir      string `mapstructure:"cache_dir"`
}

// StoreConfig selects and configures the record store backend.
type StoreConfig struct {
	Provider string `mapstructure:"provider"`
	DataDir  string `mapstructure:"data_dir"`
	DSN      string `mapstructure:"dsn"`
}

// SnapshotConfig selects and configures the raw page snapshot backend.
type SnapshotConfig struct {
	Provider string `mapstructure:"provider"`
	Dir      string `mapstructure:"dir"`
	Bucket   string `mapstructure:"bucket"`
}

// PublisherConfig selects and configures the completion event backend.
type PublisherConfig struct {
	Provider string `mapstructure:"provider"`
	Project  string `mapstructure:"project"`
	Topic    string `mapstructure:"topic"`
}

// Load reads configuration from the optional file path, then environment.
// Every key has a working default, so an empty environment still yields a
// usable local configuration.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("NEWSCRAWLER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
	v.SetDefault("logging.development", false)
	v.SetDefault("crawler.user_agent",
		"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")
	v.SetDefault("crawler.respect_robots", true)
	v.SetDefault("crawler.cache_dir", "")
	v.SetDefault("store.provider", "fs")
	v.SetDefault("store.data_dir", "data")
	v.SetDefault("store.dsn", "")
	v.SetDefault("snapshot.provider", "noop")
	v.SetDefault("snapshot.dir", "snapshots")
	v.SetDefault("snapshot.bucket", "")
	v.SetDefault("publisher.provider", "noop")
	v.SetDefault("publisher.project", "")
	v.SetDefault("publisher.topic", "")
}

// Validate rejects configurations the application cannot start with.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port %d", c.Server.Port)
	}
	switch c.Store.Provider {
	case "fs":
		if c.Store.DataDir == "" {
			return fmt.Errorf("store provider %q requires store.data_dir", c.Store.Provider)
		}
	case "postgres":
		if c.Store.DSN == "" {
			return fmt.Errorf("store provider %q requires store.dsn", c.Store.Provider)
		}
	default:
		return fmt.Errorf("unknown store provider %q", c.Store.Provider)
	}
	switch c.Snapshot.Provider {
	case "noop":
	case "local":
		if c.Snapshot.Dir == "" {
			return fmt.Errorf("snapshot provider %q requires snapshot.dir", c.Snapshot.Provider)
		}
	case "gcs":
		if c.Snapshot.Bucket == "" {
			return fmt.Errorf("snapshot provider %q requires snapshot.bucket", c.Snapshot.Provider)
		}
	default:
		return fmt.Errorf("unknown snapshot provider %q", c.Snapshot.Provider)
	}
	switch c.Publisher.Provider {
	case "noop", "memory":
	case "pubsub":
		if c.Publisher.Project == "" || c.Publisher.Topic == "" {
			return fmt.Errorf("publisher provider %q requires publisher.project and publisher.topic", c.Publisher.Provider)
		}
	default:
		return fmt.Errorf("unknown publisher provider %q", c.Publisher.Provider)
	}
	if c.Crawler.UserAgent == "" {
		return fmt.Errorf("crawler.user_agent must not be empty")
	}
	return nil
}
