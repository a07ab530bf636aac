package config

import "time"

// Config holds runtime settings for the teamdb client.
//
// ServerURL may be empty: the client then works from the local cache and the
// snapshot file only.
type Config struct {
	ServerURL           string
	Email               string
	Token               string
	SnapshotFile        string
	DBFile              string
	RequestTimeout      time.Duration
	StatusCheckInterval time.Duration
	LogLevel            string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerURL = ""
	c.SnapshotFile = "config/database.yaml"
	c.DBFile = "teamdb.sqlite"
	c.RequestTimeout = 10 * time.Second
	c.StatusCheckInterval = 30 * time.Second
	c.LogLevel = "info"
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
