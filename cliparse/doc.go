// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration.

# Configuration

ParseFlags returns a Config struct with all settings:

	cfg, err := cliparse.ParseFlags(os.Args[1:])

# Config Fields

  - Port: Server listen port (default: 3318)
  - DatabaseURL: Connection string or sqlite file path (required)
  - DatabaseType: "sqlite" (default) or "postgres"
  - TokenSalt: Secret for access token HMAC (required)
  - IPHashSalt: Secret for hashing voter IPs (required)

# CLI Flags

	-p            Server port
	-d            Database URL
	-t            Database type
	-token-salt   Access token salt
	-ip-salt      IP hash salt

# Environment Variables

Flags fall back to environment variables:

	PORT          → -p
	DATABASE_URL  → -d
	DATABASE_TYPE → -t
	TOKEN_SALT    → -token-salt
	IP_HASH_SALT  → -ip-salt

CLI flags take precedence over environment variables. main loads a .env
file first, so its values behave like regular environment variables.

# Validation

ParseFlags returns an error if required values are missing, the port is
outside 1..65535, or the database type is unknown.

# Example

	cfg, err := cliparse.ParseFlags(os.Args[1:])
	if err != nil {
		log.Fatal(err)
	}

	conn, err := sql.Open(cfg.DriverName(), cfg.DatabaseURL)
	// ...
	mux := router.NewRouter(conn, cfg)
*/
package cliparse
