// Package config loads runtime configuration for the SCAMS CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file (see parseJson) selected via flags: -c or -config.
//  3. Command-line flags (see parseFlags), which override earlier values.
//
// Supported flags
//
//	-a string   base URL of the SCAMS HTTP API
//	-d string   path of the local SQLite file that keeps the session token
//	-t int      request timeout (seconds)
//
// # JSON schema
//
//	{
//	  "server_url": "http://localhost:5000",
//	  "database_path": ".scams/scams.db",
//	  "request_timeout": "10s"
//	}
package config
