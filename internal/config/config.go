// Package config loads service settings from a YAML file and environment
// variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all service settings.
type Config struct {
	Server    ServerConfig     `mapstructure:"server"`
	Logging   LoggingConfig    `mapstructure:"logging"`
	NWS       NWSConfig        `mapstructure:"nws"`
	Weather   WeatherConfig    `mapstructure:"weather"`
	Kafka     KafkaConfig      `mapstructure:"kafka"`
	Alerts    AlertsConfig     `mapstructure:"alerts"`
	Locations []LocationConfig `mapstructure:"locations"`
}

// ServerConfig defines the HTTP listener settings.
type ServerConfig struct {
	Addr            string        `mapstructure:"addr"`
	APIKey          string        `mapstructure:"api_key"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// LoggingConfig defines logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// NWSConfig defines National Weather Service API client settings.
type NWSConfig struct {
	UserAgent string        `mapstructure:"user_agent"`
	Timeout   time.Duration `mapstructure:"timeout"`
	CacheSize int           `mapstructure:"cache_size"`
}

// WeatherConfig defines weather snapshot settings.
type WeatherConfig struct {
	CacheTTL time.Duration `mapstructure:"cache_ttl"`
}

// KafkaConfig defines the alert stream consumer settings.
type KafkaConfig struct {
	Enabled    bool     `mapstructure:"enabled"`
	Brokers    []string `mapstructure:"brokers"`
	AlertTopic string   `mapstructure:"alert_topic"`
	GroupID    string   `mapstructure:"group_id"`
}

// AlertsConfig defines alert rule and dispatch settings.
type AlertsConfig struct {
	RulesPath      string        `mapstructure:"rules_path"`
	WebhookTimeout time.Duration `mapstructure:"webhook_timeout"`
}

// LocationConfig is a named place the service answers queries about. The
// first entry is the default location.
type LocationConfig struct {
	Name string  `mapstructure:"name"`
	Lat  float64 `mapstructure:"lat"`
	Lon  float64 `mapstructure:"lon"`
}

// Load reads configuration from a file and environment variables, applying
// defaults where unset.
func Load(cfgFile string) (*Config, error) {
	v := viper.New()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.AddConfigPath("/etc/weather-outlook")
		v.AddConfigPath(".")
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	// Defaults
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.shutdown_timeout", "10s")
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("nws.user_agent", "weather-outlook (github.com/couchcryptid/weather-outlook)")
	v.SetDefault("nws.timeout", "10s")
	v.SetDefault("nws.cache_size", 1000)
	v.SetDefault("weather.cache_ttl", "5m")
	v.SetDefault("kafka.enabled", false)
	v.SetDefault("kafka.brokers", []string{"localhost:9092"})
	v.SetDefault("kafka.alert_topic", "weather-alerts")
	v.SetDefault("kafka.group_id", "weather-outlook")
	v.SetDefault("alerts.webhook_timeout", "10s")

	// Environment variables
	v.SetEnvPrefix("OUTLOOK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config file (ignore if not found)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Server.APIKey == "" {
		return errors.New("server.api_key is required")
	}
	if c.Kafka.Enabled {
		if len(c.Kafka.Brokers) == 0 {
			return errors.New("kafka.brokers is required when kafka is enabled")
		}
		if c.Kafka.AlertTopic == "" {
			return errors.New("kafka.alert_topic is required when kafka is enabled")
		}
	}
	for i, loc := range c.Locations {
		if loc.Name == "" {
			return fmt.Errorf("locations[%d].name is required", i)
		}
	}
	return nil
}

// RulesData reads the alert rules file. Returns nil bytes when no rules file
// is configured, which leaves the rule engine with an empty config.
func (c *Config) RulesData() ([]byte, error) {
	if c.Alerts.RulesPath == "" {
		return nil, nil
	}
	data, err := os.ReadFile(c.Alerts.RulesPath)
	if err != nil {
		return nil, fmt.Errorf("read rules file: %w", err)
	}
	return data, nil
}
