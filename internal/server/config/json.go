package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/teamdb/internal/flagx"
	"github.com/dmitrijs2005/teamdb/internal/timex"
)

// Origins accepts either a JSON list or a comma separated string.
type Origins []string

func (o *Origins) UnmarshalJSON(b []byte) error {
	var list []string
	if err := json.Unmarshal(b, &list); err == nil {
		*o = list
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("allow_origins must be a list or a string: %w", err)
	}
	*o = splitOrigins(s)
	return nil
}

// JsonConfig is a DTO used exclusively for JSON unmarshalling. Durations
// use timex.Duration so both "10s" and integer nanoseconds are accepted.
type JsonConfig struct {
	EndpointAddr    string         `json:"endpoint_addr"`
	DatabaseDSN     string         `json:"database_dsn"`
	MaxBackups      int            `json:"max_backups"`
	AllowOrigins    Origins        `json:"allow_origins"`
	S3Bucket        string         `json:"s3_bucket"`
	S3Region        string         `json:"s3_region"`
	S3Endpoint      string         `json:"s3_endpoint"`
	S3AccessKey     string         `json:"s3_access_key"`
	S3SecretKey     string         `json:"s3_secret_key"`
	TokenIterations int            `json:"token_iterations"`
	LogFile         string         `json:"log_file"`
	LogLevel        string         `json:"log_level"`
	ShutdownTimeout timex.Duration `json:"shutdown_timeout"`
}

func overlay[T comparable](dst *T, v T) {
	var zero T
	if v != zero {
		*dst = v
	}
}

// parseJson overlays Config with the non-empty values of the JSON file named
// by -c/-config. Panics on read or unmarshal errors.
func parseJson(config *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	var c JsonConfig

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(file, &c); err != nil {
		panic(err)
	}

	overlay(&config.EndpointAddr, c.EndpointAddr)
	overlay(&config.DatabaseDSN, c.DatabaseDSN)
	overlay(&config.MaxBackups, c.MaxBackups)
	if c.AllowOrigins != nil {
		config.AllowOrigins = c.AllowOrigins
	}
	overlay(&config.S3Bucket, c.S3Bucket)
	overlay(&config.S3Region, c.S3Region)
	overlay(&config.S3Endpoint, c.S3Endpoint)
	overlay(&config.S3AccessKey, c.S3AccessKey)
	overlay(&config.S3SecretKey, c.S3SecretKey)
	overlay(&config.TokenIterations, c.TokenIterations)
	overlay(&config.LogFile, c.LogFile)
	overlay(&config.LogLevel, c.LogLevel)
	overlay(&config.ShutdownTimeout, c.ShutdownTimeout.Duration)
}
