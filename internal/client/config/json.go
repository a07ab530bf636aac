package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/teamdb/internal/flagx"
	"github.com/dmitrijs2005/teamdb/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling.
type JsonConfig struct {
	ServerURL           string         `json:"server_url"`
	Email               string         `json:"teamdb_email"`
	Token               string         `json:"teamdb_token"`
	SnapshotFile        string         `json:"snapshot_file"`
	DBFile              string         `json:"db_file"`
	RequestTimeout      timex.Duration `json:"request_timeout"`
	StatusCheckInterval timex.Duration `json:"status_check_interval"`
	LogLevel            string         `json:"log_level"`
}

func overlay[T comparable](dst *T, v T) {
	var zero T
	if v != zero {
		*dst = v
	}
}

// parseJson overlays Config with the non-empty values of the JSON file named
// by -c/-config. Panics on read or unmarshal errors.
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	var jc JsonConfig

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	overlay(&cfg.ServerURL, jc.ServerURL)
	overlay(&cfg.Email, jc.Email)
	overlay(&cfg.Token, jc.Token)
	overlay(&cfg.SnapshotFile, jc.SnapshotFile)
	overlay(&cfg.DBFile, jc.DBFile)
	overlay(&cfg.RequestTimeout, jc.RequestTimeout.Duration)
	overlay(&cfg.StatusCheckInterval, jc.StatusCheckInterval.Duration)
	overlay(&cfg.LogLevel, jc.LogLevel)
}
