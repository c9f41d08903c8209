// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration.

# Configuration

An optional .env file is loaded first, then ParseFlags builds the Config:

	if err := cliparse.LoadEnvFile(".env"); err != nil {
		log.Fatal(err)
	}
	cfg, err := cliparse.ParseFlags(os.Args[1:])

# Flags and Environment

	-p              PORT           Server port (default: 3318)
	-d              DATABASE_URL   Database DSN (required)
	-t              DATABASE_TYPE  sqlite or postgres (default: sqlite)
	-secret         SECRET_KEY     Session cookie signing key (required)
	-page-size      PAGE_SIZE      Reviews per page on /home/ (default: 10)
	-session-ttl    SESSION_TTL    Session lifetime (default: 336h)
	-cookie-secure  COOKIE_SECURE  Send the session cookie over HTTPS only
	-log-level      LOG_LEVEL      debug, info, warn or error (default: info)

CLI flags take precedence over environment variables, which take precedence
over values from the .env file.
*/
package cliparse
