// Package config loads runtime configuration for the actionkeeper CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional config file (see parseFile), JSON or YAML by extension.
//  3. ACTIONKEEPER_* environment variables (see parseEnv).
//  4. Command-line flags, applied by the caller on top of LoadConfig.
//
// # File schema
//
//	{
//	  "database_path": "/home/me/.config/actionkeeper/actions.db",
//	  "key_store": "file",
//	  "key_path": "/home/me/.config/actionkeeper/device.key",
//	  "log_level": "info"
//	}
//
// The same keys are used in YAML. The key passphrase is never read from a
// file; set ACTIONKEEPER_PASSPHRASE or let the CLI prompt for it.
package config
