// Package config loads runtime configuration for the teamdb client.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file selected via -c or -config.
//  3. Command-line flags, which override earlier values.
//
// Supported flags
//
//	-s string   directory server base URL, e.g. http://127.0.0.1:8765
//	-e string   e-mail sent in X-TeamDB-Email
//	-t string   API token sent in X-TeamDB-Token
//	-f string   on-disk snapshot file used as the last fallback
//	-d string   sqlite cache file
//	-r duration request timeout
//	-i int      server status check interval (seconds)
//	-l string   log level (debug, info, warn, error)
//
// # JSON schema
//
//	{
//	  "server_url": "http://127.0.0.1:8765",
//	  "teamdb_email": "me@example.com",
//	  "teamdb_token": "...",
//	  "snapshot_file": "config/database.yaml",
//	  "db_file": "teamdb.sqlite",
//	  "request_timeout": "10s",
//	  "status_check_interval": "30s",
//	  "log_level": "info"
//	}
//
// Keys missing from the file keep their default. The server URL and the
// credentials are also persisted in the local cache once set; values given
// here seed it.
package config
