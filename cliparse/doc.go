// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration.

# Configuration

ParseFlags returns a Config struct with all settings:

	cfg, err := cliparse.ParseFlags(os.Args[1:])

Environment variables are read first (struct tags, via caarlos0/env), then
CLI flags override them. main loads an optional .env file before calling
ParseFlags.

# Config Fields

  - Port: Server listen port (default: 3318)
  - DatabaseURL: Postgres connection string or SQLite path (required)
  - DatabaseType: postgres (default) or sqlite
  - SessionSecret: HMAC key for session tokens (required)
  - SessionTTL: Session lifetime (default: 720h)
  - SMTPHost, SMTPPort, SMTPUser, SMTPPassword, EmailFrom: outgoing mail
  - OTPCleanupInterval: sweep interval for expired codes (default: 1h)
  - Seed: load demo data on startup

# CLI Flags

	-p                Server port
	-d                Database URL
	-t                Database type
	--base-url        Public base URL
	--session-secret  Session signing secret
	--session-ttl     Session lifetime
	--smtp-host       SMTP host
	--smtp-port       SMTP port
	--otp-cleanup     Code sweep interval
	--seed            Load demo data

# Environment Variables

	PORT, DATABASE_URL, DATABASE_TYPE, BASE_URL, SESSION_SECRET,
	SESSION_TTL, SMTP_HOST, SMTP_PORT, SMTP_USER, SMTP_PASSWORD,
	EMAIL_FROM, OTP_CLEANUP_INTERVAL, SEED

When SMTP_HOST or SMTP_USER is empty, verification codes are written to the
log instead of being mailed.
*/
package cliparse
