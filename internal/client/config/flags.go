package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/teamdb/internal/flagx"
)

// parseFlags populates Config fields from command-line flags. Only the flags
// defined here are picked out of os.Args, so other components may define
// their own.
func parseFlags(cfg *Config) {
	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.ServerURL, "s", cfg.ServerURL, "directory server base URL")
	fs.StringVar(&cfg.Email, "e", cfg.Email, "e-mail for X-TeamDB-Email")
	fs.StringVar(&cfg.Token, "t", cfg.Token, "API token for X-TeamDB-Token")
	fs.StringVar(&cfg.SnapshotFile, "f", cfg.SnapshotFile, "fallback snapshot file")
	fs.StringVar(&cfg.DBFile, "d", cfg.DBFile, "sqlite cache file")
	fs.DurationVar(&cfg.RequestTimeout, "r", cfg.RequestTimeout, "request timeout")
	statusInterval := fs.Int("i", int(cfg.StatusCheckInterval.Seconds()), "server status check interval (in seconds)")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level")

	if err := flagx.ParseKnown(fs, os.Args[1:]); err != nil {
		panic(err)
	}

	cfg.StatusCheckInterval = time.Duration(*statusInterval) * time.Second
}
