package config

import (
	"flag"
	"os"
	"strings"

	"github.com/dmitrijs2005/teamdb/internal/flagx"
)

// parseFlags populates selected server Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string     HTTP bind address (e.g., "127.0.0.1:8765")
//	-d string     PostgreSQL DSN
//	-m int        number of backups kept
//	-o string     comma separated CORS origins
//	-b string     S3 bucket, empty disables the backup mirror
//	-g string     S3 region
//	-e string     S3 endpoint (e.g., "http://127.0.0.1:9000/")
//	-u string     S3 access key
//	-p string     S3 secret key
//	-n int        pbkdf2 iterations for new tokens
//	-f string     log file
//	-l string     log level
//	-w duration   shutdown timeout
//
// Only the flags defined here are picked out of os.Args, so -c/-config and
// flags of other components pass through untouched.
func parseFlags(config *Config) {
	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddr, "a", config.EndpointAddr, "address and port to run server")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.IntVar(&config.MaxBackups, "m", config.MaxBackups, "number of backups kept")
	origins := fs.String("o", strings.Join(config.AllowOrigins, ","), "comma separated CORS origins")
	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 bucket")
	fs.StringVar(&config.S3Region, "g", config.S3Region, "S3 region")
	fs.StringVar(&config.S3Endpoint, "e", config.S3Endpoint, "S3 endpoint")
	fs.StringVar(&config.S3AccessKey, "u", config.S3AccessKey, "S3 access key")
	fs.StringVar(&config.S3SecretKey, "p", config.S3SecretKey, "S3 secret key")
	fs.IntVar(&config.TokenIterations, "n", config.TokenIterations, "pbkdf2 iterations for new tokens")
	fs.StringVar(&config.LogFile, "f", config.LogFile, "log file")
	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level")
	fs.DurationVar(&config.ShutdownTimeout, "w", config.ShutdownTimeout, "shutdown timeout")

	if err := flagx.ParseKnown(fs, os.Args[1:]); err != nil {
		panic(err)
	}

	config.AllowOrigins = splitOrigins(*origins)
}
