// Package config loads runtime settings from a JSON file via viper and
// exposes typed accessors. Defaults cover every key, so a minimal config file
// only names what it overrides.
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// MapConfig holds the map surface settings.
type MapConfig struct {
	CenterLat   float64 `json:"centerLat" mapstructure:"centerLat"`
	CenterLng   float64 `json:"centerLng" mapstructure:"centerLng"`
	MinZoom     float64 `json:"minZoom" mapstructure:"minZoom"`
	MaxZoom     float64 `json:"maxZoom" mapstructure:"maxZoom"`
	InitialZoom float64 `json:"initialZoom" mapstructure:"initialZoom"`
}

// WidgetConfig holds the widget-availability polling settings.
type WidgetConfig struct {
	PollInterval time.Duration `json:"pollInterval" mapstructure:"pollInterval"`
	MaxRetries   int           `json:"maxRetries" mapstructure:"maxRetries"`
}

// TrackerConfig holds the live-position tracker settings.
type TrackerConfig struct {
	Enabled bool          `json:"enabled" mapstructure:"enabled"`
	MaxAge  time.Duration `json:"maxAge" mapstructure:"maxAge"`
	Timeout time.Duration `json:"timeout" mapstructure:"timeout"`
}

// DBConfig holds postgres connection settings for the station feed.
type DBConfig struct {
	Host     string `json:"host" mapstructure:"host"`
	Port     string `json:"port" mapstructure:"port"`
	Username string `json:"username" mapstructure:"username"`
	Password string `json:"password" mapstructure:"password"`
	Database string `json:"database" mapstructure:"database"`
}

// FeedConfig holds the station-source settings.
type FeedConfig struct {
	Type            string        `json:"type" mapstructure:"type"`
	RefreshInterval time.Duration `json:"refreshInterval" mapstructure:"refreshInterval"`
	SQLitePath      string        `json:"sqlitePath" mapstructure:"sqlitePath"`
	DB              DBConfig      `json:"db" mapstructure:"db"`
}

// Load reads configuration from the JSON file and sets default values.
// configDir is the directory containing the config file.
func Load(configDir string) error {
	viper.SetDefault("logLevel", "info")
	viper.SetDefault("logsDir", "./logs")

	viper.SetDefault("map.centerLat", 37.5665)
	viper.SetDefault("map.centerLng", 126.9780)
	viper.SetDefault("map.minZoom", 8)
	viper.SetDefault("map.maxZoom", 19)
	viper.SetDefault("map.initialZoom", 13)

	viper.SetDefault("widget.pollInterval", "100ms")
	viper.SetDefault("widget.maxRetries", 0)

	viper.SetDefault("feed.type", "memory")
	viper.SetDefault("feed.refreshInterval", "30s")
	viper.SetDefault("feed.sqlitePath", "./stations.db")
	viper.SetDefault("feed.db.host", "localhost")
	viper.SetDefault("feed.db.port", "5432")
	viper.SetDefault("feed.db.username", "postgres")
	viper.SetDefault("feed.db.password", "postgres")
	viper.SetDefault("feed.db.database", "stationmap")

	viper.SetDefault("tracker.enabled", true)
	viper.SetDefault("tracker.maxAge", "5s")
	viper.SetDefault("tracker.timeout", "10s")

	viper.SetDefault("influx.enabled", false)
	viper.SetDefault("influx.host", "localhost")
	viper.SetDefault("influx.port", "8086")
	viper.SetDefault("influx.protocol", "http")
	viper.SetDefault("influx.token", "")
	viper.SetDefault("influx.org", "stationmap-metrics")

	viper.SetDefault("graylog.enabled", false)
	viper.SetDefault("graylog.address", "localhost:12201")

	viper.SetDefault("otel.enabled", false)
	viper.SetDefault("otel.serviceName", "stationmap")
	viper.SetDefault("otel.batchTimeout", "5s")
	viper.SetDefault("otel.endpoint", "")
	viper.SetDefault("otel.insecure", true)

	viper.SetConfigName("stationmap.cfg.json")
	viper.AddConfigPath(configDir)
	viper.SetConfigType("json")

	err := viper.ReadInConfig()
	if err != nil {
		return fmt.Errorf("error reading config file: %v", err)
	}

	return nil
}

// GetString returns a string config value.
func GetString(key string) string {
	return viper.GetString(key)
}

// GetInt returns an int config value.
func GetInt(key string) int {
	return viper.GetInt(key)
}

// GetBool returns a bool config value.
func GetBool(key string) bool {
	return viper.GetBool(key)
}

// GetDuration returns a duration config value.
func GetDuration(key string) time.Duration {
	return viper.GetDuration(key)
}

// GetMapConfig returns the map surface settings.
func GetMapConfig() MapConfig {
	return MapConfig{
		CenterLat:   viper.GetFloat64("map.centerLat"),
		CenterLng:   viper.GetFloat64("map.centerLng"),
		MinZoom:     viper.GetFloat64("map.minZoom"),
		MaxZoom:     viper.GetFloat64("map.maxZoom"),
		InitialZoom: viper.GetFloat64("map.initialZoom"),
	}
}

// GetWidgetConfig returns the widget polling settings.
func GetWidgetConfig() WidgetConfig {
	return WidgetConfig{
		PollInterval: viper.GetDuration("widget.pollInterval"),
		MaxRetries:   viper.GetInt("widget.maxRetries"),
	}
}

// GetTrackerConfig returns the live-position tracker settings.
func GetTrackerConfig() TrackerConfig {
	return TrackerConfig{
		Enabled: viper.GetBool("tracker.enabled"),
		MaxAge:  viper.GetDuration("tracker.maxAge"),
		Timeout: viper.GetDuration("tracker.timeout"),
	}
}

// GetFeedConfig returns the station-source settings.
func GetFeedConfig() FeedConfig {
	return FeedConfig{
		Type:            viper.GetString("feed.type"),
		RefreshInterval: viper.GetDuration("feed.refreshInterval"),
		SQLitePath:      viper.GetString("feed.sqlitePath"),
		DB: DBConfig{
			Host:     viper.GetString("feed.db.host"),
			Port:     viper.GetString("feed.db.port"),
			Username: viper.GetString("feed.db.username"),
			Password: viper.GetString("feed.db.password"),
			Database: viper.GetString("feed.db.database"),
		},
	}
}
