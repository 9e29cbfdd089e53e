package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:3001", cfg.Server.Address())
	assert.Equal(t, time.Duration(0), cfg.Server.WriteTimeout)
	assert.Equal(t, "./drive_files", cfg.Storage.Root)
	assert.True(t, cfg.Storage.UseSubDirs)
	assert.False(t, cfg.Storage.CreateSymlink)
	assert.Equal(t, 30, cfg.Upload.MaxFiles)
	assert.Equal(t, int64(32<<20), cfg.Upload.MaxMultipartMemory)
	assert.Empty(t, cfg.Auth.AccessTokenSecret)
	assert.Equal(t, []string{"*"}, cfg.CORS.AllowedOrigins)
	assert.False(t, cfg.Journal.Enabled)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("MEDIAVAULT_PORT", "9090")
	t.Setenv("SERVER_DIR", "/srv/media")
	t.Setenv("USE_SUB_DIR", "no")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example ,")
	t.Setenv("IMAGE_MAX_BYTES", "1048576")
	t.Setenv("MEDIAVAULT_WRITE_TIMEOUT", "30s")
	t.Setenv("POSTGRES_SSL_MODE", "REQUIRE")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "/srv/media", cfg.Storage.Root)
	assert.False(t, cfg.Storage.UseSubDirs)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORS.AllowedOrigins)
	assert.Equal(t, int64(1<<20), cfg.Upload.ImageMaxBytes)
	assert.Equal(t, 30*time.Second, cfg.Server.WriteTimeout)
	assert.Equal(t, "require", cfg.Postgres.SSLMode)
}

func TestLoadIgnoresMalformedNumbers(t *testing.T) {
	t.Setenv("MAX_FILES_PER_UPLOAD", "lots")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 30, cfg.Upload.MaxFiles)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	t.Setenv("SERVER_DIR", "  ")
	_, err := Load()
	require.Error(t, err)
}

func TestPostgresDSN(t *testing.T) {
	p := PostgresConfig{Host: "db", Port: 5432, User: "u", Password: "p", Database: "media", SSLMode: "disable"}
	assert.Equal(t, "postgres://u:p@db:5432/media?sslmode=disable", p.DSN())
}
