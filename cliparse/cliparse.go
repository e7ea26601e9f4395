// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package cliparse

import (
	"errors"
	"flag"
	"fmt"
	"net/netip"
	"net/url"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

const (
	DatabasePostgres = "postgres"
	DatabaseSQLite   = "sqlite"
)

type Config struct {
	Port         int    `env:"PORT" envDefault:"3318"`
	DatabaseURL  string `env:"DATABASE_URL"`
	DatabaseType string `env:"DATABASE_TYPE" envDefault:"postgres"`
	BaseURL      string `env:"BASE_URL" envDefault:"http://localhost:3318"`

	// CORSOrigins may send credentialed cross-origin requests. Empty means
	// the origin of BaseURL.
	CORSOrigins []string `env:"CORS_ORIGINS" envSeparator:","`
	// TrustedProxies are addresses or CIDR ranges whose forwarding headers
	// name the client.
	TrustedProxies []string `env:"TRUSTED_PROXIES" envSeparator:","`

	SessionSecret string        `env:"SESSION_SECRET"`
	SessionTTL    time.Duration `env:"SESSION_TTL" envDefault:"720h"`

	SMTPHost     string `env:"SMTP_HOST"`
	SMTPPort     int    `env:"SMTP_PORT" envDefault:"587"`
	SMTPUser     string `env:"SMTP_USER"`
	SMTPPassword string `env:"SMTP_PASSWORD"`
	EmailFrom    string `env:"EMAIL_FROM" envDefault:"\"Community Forum\" <noreply@community.dev>"`

	OTPCleanupInterval time.Duration `env:"OTP_CLEANUP_INTERVAL" envDefault:"1h"`

	Seed bool `env:"SEED"`
}

// SMTPConfigured reports whether outgoing mail should go through SMTP.
func (c Config) SMTPConfigured() bool {
	return c.SMTPHost != "" && c.SMTPUser != ""
}

// AllowedOrigins returns CORSOrigins, or the origin of BaseURL when none are
// configured.
func (c Config) AllowedOrigins() []string {
	if len(c.CORSOrigins) > 0 {
		return c.CORSOrigins
	}
	u, err := url.Parse(c.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil
	}
	return []string{u.Scheme + "://" + u.Host}
}

// ParseFlags reads the environment, then lets CLI flags override it.
func ParseFlags(args []string) (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	fs := flag.NewFlagSet("community-forum", flag.ContinueOnError)

	// Network config (can be CLI args or env)
	fs.IntVar(&cfg.Port, "p", cfg.Port, "Server port")
	fs.StringVar(&cfg.DatabaseURL, "d", cfg.DatabaseURL, "Database URL")
	fs.StringVar(&cfg.DatabaseType, "t", cfg.DatabaseType, "Database type (sqlite or postgres)")
	fs.StringVar(&cfg.BaseURL, "base-url", cfg.BaseURL, "Public base URL")
	fs.Func("cors-origins", "Comma-separated origins allowed to make credentialed requests", func(v string) error {
		cfg.CORSOrigins = splitList(v)
		return nil
	})
	fs.Func("trusted-proxies", "Comma-separated proxy addresses or CIDR ranges", func(v string) error {
		cfg.TrustedProxies = splitList(v)
		return nil
	})

	// Secrets (prefer env variables, but allow CLI for dev)
	fs.StringVar(&cfg.SessionSecret, "session-secret", cfg.SessionSecret, "Session signing secret (prefer env)")
	fs.DurationVar(&cfg.SessionTTL, "session-ttl", cfg.SessionTTL, "Session lifetime")

	fs.StringVar(&cfg.SMTPHost, "smtp-host", cfg.SMTPHost, "SMTP host")
	fs.IntVar(&cfg.SMTPPort, "smtp-port", cfg.SMTPPort, "SMTP port")
	fs.DurationVar(&cfg.OTPCleanupInterval, "otp-cleanup", cfg.OTPCleanupInterval, "Interval between expired code sweeps")
	fs.BoolVar(&cfg.Seed, "seed", cfg.Seed, "Load demo data on startup")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	if cfg.Port <= 0 || cfg.Port > 65535 {
		return Config{}, errors.New("invalid port")
	}
	if cfg.DatabaseURL == "" {
		return Config{}, errors.New("database URL required (use -d or DATABASE_URL env)")
	}
	if cfg.DatabaseType != DatabasePostgres && cfg.DatabaseType != DatabaseSQLite {
		return Config{}, fmt.Errorf("unsupported database type %q", cfg.DatabaseType)
	}

	// Secrets - MUST be provided
	if cfg.SessionSecret == "" {
		return Config{}, errors.New("SESSION_SECRET required")
	}
	if cfg.SessionTTL <= 0 {
		return Config{}, errors.New("session TTL must be positive")
	}
	if cfg.OTPCleanupInterval <= 0 {
		return Config{}, errors.New("OTP cleanup interval must be positive")
	}
	for _, p := range cfg.TrustedProxies {
		if !validProxy(p) {
			return Config{}, fmt.Errorf("invalid trusted proxy %q", p)
		}
	}

	return cfg, nil
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func validProxy(s string) bool {
	s = strings.TrimSpace(s)
	if _, err := netip.ParsePrefix(s); err == nil {
		return true
	}
	_, err := netip.ParseAddr(s)
	return err == nil
}
