package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "s")
	t.Setenv("DB_DRIVER", "")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("JWT_TTL", "")
	t.Setenv("REQUEST_TIMEOUT", "")
	t.Setenv("CORS_ORIGINS", "")
	t.Setenv("PORT", "")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "8080", cfg.Port)
	require.Equal(t, "sqlite3", cfg.DB.Driver)
	require.Equal(t, "./data/blog.db", cfg.DB.URL)
	require.Equal(t, 7*24*time.Hour, cfg.JWT.TTL)
	require.Equal(t, 10*time.Second, cfg.RequestTimeout)
	require.Equal(t, []string{"*"}, cfg.CORSOrigins)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{name: "missing secret", env: map[string]string{"JWT_SECRET": ""}},
		{name: "unknown driver", env: map[string]string{"JWT_SECRET": "s", "DB_DRIVER": "mysql"}},
		{name: "pgx without url", env: map[string]string{"JWT_SECRET": "s", "DB_DRIVER": "pgx", "DATABASE_URL": ""}},
		{name: "bad ttl", env: map[string]string{"JWT_SECRET": "s", "DB_DRIVER": "memory", "JWT_TTL": "soon"}},
		{name: "negative timeout", env: map[string]string{"JWT_SECRET": "s", "DB_DRIVER": "memory", "REQUEST_TIMEOUT": "-1s"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("JWT_TTL", "")
			t.Setenv("REQUEST_TIMEOUT", "")
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			require.Error(t, err)
		})
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "s")
	t.Setenv("DB_DRIVER", "pgx")
	t.Setenv("DATABASE_URL", "postgres://u:p@localhost:5432/blog")
	t.Setenv("JWT_TTL", "1h")
	t.Setenv("REQUEST_TIMEOUT", "")
	t.Setenv("CORS_ORIGINS", "http://a.test/, http://b.test")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "pgx", cfg.DB.Driver)
	require.Equal(t, time.Hour, cfg.JWT.TTL)
	require.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORSOrigins)
}

func TestLoadStorage_SecretOptional(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	t.Setenv("DB_DRIVER", "")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("JWT_TTL", "")
	t.Setenv("REQUEST_TIMEOUT", "")

	_, err := Load()
	require.ErrorIs(t, err, ErrMissingSecret)

	cfg, err := LoadStorage()
	require.NoError(t, err)
	require.Equal(t, "sqlite3", cfg.DB.Driver)
	require.Equal(t, "./data/blog.db", cfg.DB.URL)

	t.Setenv("DB_DRIVER", "mysql")
	_, err = LoadStorage()
	require.Error(t, err)
}
