package config

import "time"

// Config holds runtime settings for the terminal client.
type Config struct {
	ServerURL      string
	StoragePath    string
	SyncInterval   time.Duration
	RequestTimeout time.Duration
	LogLevel       string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerURL = "http://localhost:4000/api"
	c.StoragePath = "cakelibrary.db"
	c.SyncInterval = 2 * time.Second
	c.RequestTimeout = 10 * time.Second
	c.LogLevel = "warn"
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present) and command-line flags (if present). Later sources take
// precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
