// Package config loads runtime configuration for the moodkeeper CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. MK_CLIENT_* environment variables.
//  3. Optional JSON file selected via -c or -config.
//  4. Command-line flags, which override earlier values.
//
// Supported flags
//
//	-a string   base URL of the REST API
//	-g string   gRPC health endpoint address
//	-f string   local SQLite database file
//	-i value    online status check interval (seconds or "5s")
//	-t value    request timeout (seconds or "30s")
//	-l string   log level
//
// # JSON schema
//
//	{
//	  "server_url": "http://127.0.0.1:3000",
//	  "health_addr": "127.0.0.1:50051",
//	  "database_path": "moodkeeper.db",
//	  "online_check_interval": "3s",
//	  "request_timeout": "30s",
//	  "log_level": "warn"
//	}
package config
