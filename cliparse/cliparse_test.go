// cliparse/cliparse_test.go
package cliparse

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://test")
	t.Setenv("SESSION_SECRET", "test-secret")
}

func TestParseFlags_EnvVars(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("PORT", "9000")
	t.Setenv("DATABASE_TYPE", "sqlite")
	t.Setenv("SESSION_TTL", "2h")

	cfg, err := ParseFlags([]string{})
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Port)
	assert.Equal(t, "postgres://test", cfg.DatabaseURL)
	assert.Equal(t, DatabaseSQLite, cfg.DatabaseType)
	assert.Equal(t, 2*time.Hour, cfg.SessionTTL)
}

func TestParseFlags_Defaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := ParseFlags(nil)
	require.NoError(t, err)

	assert.Equal(t, 3318, cfg.Port)
	assert.Equal(t, DatabasePostgres, cfg.DatabaseType)
	assert.Equal(t, 720*time.Hour, cfg.SessionTTL)
	assert.Equal(t, 587, cfg.SMTPPort)
	assert.Equal(t, time.Hour, cfg.OTPCleanupInterval)
	assert.False(t, cfg.SMTPConfigured())
}

func TestParseFlags_CLIOverridesEnv(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("PORT", "9000")

	cfg, err := ParseFlags([]string{"-p", "8080", "-d", "file:test.db", "-t", "sqlite", "-session-secret", "s1", "-seed"})
	require.NoError(t, err)

	// CLI should override env
	if cfg.Port != 8080 {
		t.Errorf("CLI should override env: expected 8080, got %d", cfg.Port)
	}
	assert.Equal(t, "file:test.db", cfg.DatabaseURL)
	assert.Equal(t, "s1", cfg.SessionSecret)
	assert.True(t, cfg.Seed)
}

func TestParseFlags_MissingRequired(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		args []string
	}{
		{"no database url", map[string]string{"SESSION_SECRET": "s"}, nil},
		{"no session secret", map[string]string{"DATABASE_URL": "postgres://x"}, nil},
		{"bad database type", map[string]string{"DATABASE_URL": "x", "SESSION_SECRET": "s"}, []string{"-t", "mysql"}},
		{"bad port", map[string]string{"DATABASE_URL": "x", "SESSION_SECRET": "s"}, []string{"-p", "70000"}},
		{"bad trusted proxy", map[string]string{"DATABASE_URL": "x", "SESSION_SECRET": "s", "TRUSTED_PROXIES": "10.0.0.0/8,proxy.local"}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("DATABASE_URL", "")
			t.Setenv("SESSION_SECRET", "")
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := ParseFlags(tt.args)
			assert.Error(t, err)
		})
	}
}

func TestSMTPConfigured(t *testing.T) {
	cfg := Config{SMTPHost: "smtp.example.com", SMTPUser: "mailer"}
	assert.True(t, cfg.SMTPConfigured())

	cfg.SMTPUser = ""
	assert.False(t, cfg.SMTPConfigured())
}

func TestParseFlags_Lists(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("TRUSTED_PROXIES", "10.0.0.0/8,192.168.1.1")
	t.Setenv("CORS_ORIGINS", "https://forum.example.com")

	cfg, err := ParseFlags(nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"10.0.0.0/8", "192.168.1.1"}, cfg.TrustedProxies)
	assert.Equal(t, []string{"https://forum.example.com"}, cfg.AllowedOrigins())

	cfg, err = ParseFlags([]string{"-cors-origins", "http://a.test, http://b.test", "-trusted-proxies", "::1"})
	require.NoError(t, err)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORSOrigins)
	assert.Equal(t, []string{"::1"}, cfg.TrustedProxies)
}

func TestAllowedOrigins_DefaultsToBaseURL(t *testing.T) {
	cfg := Config{BaseURL: "https://forum.example.com/community/"}
	assert.Equal(t, []string{"https://forum.example.com"}, cfg.AllowedOrigins())

	cfg.BaseURL = "not a url"
	assert.Empty(t, cfg.AllowedOrigins())
}
