// Package config loads runtime configuration for the cardkeeper CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. CARDKEEPER_* environment variables, optionally from a .env file.
//  3. Optional JSON file selected with -c or -config.
//  4. Command-line flags, which override earlier values.
//
// # JSON schema
//
// Durations use timex.Duration, so they may be strings like "5s" or integer
// nanoseconds:
//
//	{
//	  "database_dsn": "cardkeeper.db",
//	  "render_timeout": "5s",
//	  "s3": {"endpoint": "http://localhost:9000", "bucket": "cards"}
//	}
package config
