// Package config loads and validates service configuration via Viper.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config captures all service configuration knobs loaded via Viper.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	DB       DBConfig       `mapstructure:"db"`
	YouTube  YouTubeConfig  `mapstructure:"youtube"`
	Browser  BrowserConfig  `mapstructure:"browser"`
	Search   SearchConfig   `mapstructure:"search"`
	Notifier NotifierConfig `mapstructure:"notifier"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// ServerConfig controls HTTP server behavior.
type ServerConfig struct {
	Port int `mapstructure:"port"`
}

// DBConfig controls access to the relational database.
type DBConfig struct {
	DSN                  string `mapstructure:"dsn"`
	Table                string `mapstructure:"table"`
	MaxConns             int32  `mapstructure:"max_conns"`
	MinConns             int32  `mapstructure:"min_conns"`
	InitRetries          int    `mapstructure:"init_retries"`
	InitRetryDelaySecond int    `mapstructure:"init_retry_delay_seconds"`
}

// YouTubeConfig configures the Data API metadata client.
type YouTubeConfig struct {
	APIKey         string  `mapstructure:"api_key"`
	BaseURL        string  `mapstructure:"base_url"`
	TimeoutSeconds int     `mapstructure:"timeout_seconds"`
	QPS            float64 `mapstructure:"qps"`
}

// BrowserConfig configures the headless search fetcher.
type BrowserConfig struct {
	UserAgent          string `mapstructure:"user_agent"`
	NavTimeoutSeconds  int    `mapstructure:"nav_timeout_seconds"`
	SettleSeconds      int    `mapstructure:"settle_seconds"`
	ScrollCount        int    `mapstructure:"scroll_count"`
	ScrollPauseSeconds int    `mapstructure:"scroll_pause_seconds"`
	MaxSessions        int    `mapstructure:"max_sessions"`
}

// SearchConfig governs the two pipeline variants.
type SearchConfig struct {
	MaxResults         int `mapstructure:"max_results"`
	MaxRetries         int `mapstructure:"max_retries"`
	MinSurvivors       int `mapstructure:"min_survivors"`
	TopN               int `mapstructure:"top_n"`
	StandardMaxResults int `mapstructure:"standard_max_results"`
}

// NotifierConfig sets the downstream notification endpoint.
type NotifierConfig struct {
	BaseURL        string `mapstructure:"base_url"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool `mapstructure:"development"`
}

// Load builds a Config from disk/environment.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("SHORTSRADAR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 5001)
	v.SetDefault("db.table", "shorts")
	v.SetDefault("db.max_conns", 8)
	v.SetDefault("db.min_conns", 1)
	v.SetDefault("db.init_retries", 5)
	v.SetDefault("db.init_retry_delay_seconds", 5)
	v.SetDefault("youtube.timeout_seconds", 5)
	v.SetDefault("youtube.qps", 5.0)
	v.SetDefault("browser.user_agent", "shorts-radar/0.1")
	v.SetDefault("browser.nav_timeout_seconds", 45)
	v.SetDefault("browser.settle_seconds", 5)
	v.SetDefault("browser.scroll_count", 3)
	v.SetDefault("browser.scroll_pause_seconds", 2)
	v.SetDefault("browser.max_sessions", 4)
	v.SetDefault("search.max_results", 50)
	v.SetDefault("search.max_retries", 3)
	v.SetDefault("search.min_survivors", 3)
	v.SetDefault("search.top_n", 3)
	v.SetDefault("search.standard_max_results", 10)
	v.SetDefault("notifier.base_url", "https://dotblossom.today")
	v.SetDefault("notifier.timeout_seconds", 15)
	v.SetDefault("logging.development", true)
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	if c.Server.Port <= 0 {
		return fmt.Errorf("server.port must be > 0")
	}
	if c.DB.DSN == "" {
		return fmt.Errorf("db.dsn is required")
	}
	if c.YouTube.APIKey == "" {
		return fmt.Errorf("youtube.api_key is required")
	}
	if c.Search.MaxResults <= 0 {
		return fmt.Errorf("search.max_results must be > 0")
	}
	if c.Search.MaxRetries < 0 {
		return fmt.Errorf("search.max_retries must be >= 0")
	}
	if c.Browser.MaxSessions < 0 {
		return fmt.Errorf("browser.max_sessions must be >= 0")
	}
	return nil
}

// InitRetryDelay converts the configured delay into a duration.
func (c DBConfig) InitRetryDelay() time.Duration {
	return time.Duration(c.InitRetryDelaySecond) * time.Second
}
