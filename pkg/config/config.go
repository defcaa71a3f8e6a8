package config

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/viper"
)

// Config holds the process configuration. It is read once at startup from
// environment variables and never reloaded.
type Config struct {
	InfluxURL       string
	InfluxToken     string
	InfluxOrg       string
	InfluxBucket    string
	IntervalMinutes int
	ServerID        string
	LogLevel        slog.Level
	PostgresDSN     string
}

// FromEnv loads the configuration from environment variables, applying
// defaults for everything except the InfluxDB token and the optional
// settings (server pin, archive DSN).
func FromEnv() (*Config, error) {
	v := viper.New()
	v.SetDefault("INFLUXDB_URL", "http://localhost:8086")
	v.SetDefault("INFLUXDB_TOKEN", "")
	v.SetDefault("INFLUXDB_ORG", "speedmonitor")
	v.SetDefault("INFLUXDB_BUCKET", "speedtest")
	v.SetDefault("TEST_INTERVAL_MINUTES", 60)
	v.SetDefault("SPEEDTEST_SERVER_ID", "")
	v.SetDefault("LOG_LEVEL", "INFO")
	v.SetDefault("POSTGRES_DSN", "")
	v.AutomaticEnv()

	interval := v.GetInt("TEST_INTERVAL_MINUTES")
	if interval <= 0 {
		return nil, fmt.Errorf("TEST_INTERVAL_MINUTES must be a positive integer, got %q",
			v.GetString("TEST_INTERVAL_MINUTES"))
	}

	level, err := ParseLevel(v.GetString("LOG_LEVEL"))
	if err != nil {
		return nil, err
	}

	return &Config{
		InfluxURL:       v.GetString("INFLUXDB_URL"),
		InfluxToken:     v.GetString("INFLUXDB_TOKEN"),
		InfluxOrg:       v.GetString("INFLUXDB_ORG"),
		InfluxBucket:    v.GetString("INFLUXDB_BUCKET"),
		IntervalMinutes: interval,
		ServerID:        v.GetString("SPEEDTEST_SERVER_ID"),
		LogLevel:        level,
		PostgresDSN:     v.GetString("POSTGRES_DSN"),
	}, nil
}

// ParseLevel maps a LOG_LEVEL value to a slog level.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToUpper(s) {
	case "DEBUG":
		return slog.LevelDebug, nil
	case "INFO":
		return slog.LevelInfo, nil
	case "WARNING", "WARN":
		return slog.LevelWarn, nil
	case "ERROR":
		return slog.LevelError, nil
	}
	return 0, fmt.Errorf("unknown log level %q", s)
}
