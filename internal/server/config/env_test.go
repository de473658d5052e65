package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEnv(t *testing.T) {
	clearEnv(t)

	t.Setenv("PORT", "4100")
	t.Setenv("STORAGE", "postgres")
	t.Setenv("MONGODB_URI", "mongodb://db:27017")
	t.Setenv("MONGODB_DATABASE", "cakes")
	t.Setenv("DATABASE_DSN", "postgres://x")
	t.Setenv("JWT_SECRET", "s3cr3t")
	t.Setenv("TOKEN_TTL", "30m")
	t.Setenv("PASSWORD_SCHEME", "argon2id")
	t.Setenv("BCRYPT_COST", "12")
	t.Setenv("SHUTDOWN_TIMEOUT", "3s")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "text")

	c := &Config{}
	c.LoadDefaults()
	parseEnv(c)

	assert.Equal(t, &Config{
		Port:            4100,
		Storage:         StoragePostgres,
		MongoURI:        "mongodb://db:27017",
		MongoDatabase:   "cakes",
		DatabaseDSN:     "postgres://x",
		SecretKey:       "s3cr3t",
		TokenTTL:        30 * time.Minute,
		PasswordScheme:  "argon2id",
		BcryptCost:      12,
		ShutdownTimeout: 3 * time.Second,
		LogLevel:        "debug",
		LogFormat:       "text",
	}, c)
}

func TestParseEnv_UnsetKeepsDefaults(t *testing.T) {
	clearEnv(t)

	c := &Config{}
	c.LoadDefaults()
	want := *c

	parseEnv(c)
	assert.Equal(t, want, *c)
}

func TestParseEnv_InvalidValuesPanic(t *testing.T) {
	clearEnv(t)

	t.Setenv("PORT", "not-a-number")
	require.Panics(t, func() { parseEnv(&Config{}) })

	t.Setenv("PORT", "")
	t.Setenv("TOKEN_TTL", "forever")
	require.Panics(t, func() { parseEnv(&Config{}) })
}

func TestParseEnv_DotEnvFile(t *testing.T) {
	clearEnv(t)
	os.Unsetenv("JWT_SECRET")
	os.Unsetenv("MONGODB_DATABASE")

	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("JWT_SECRET=from-file\nMONGODB_DATABASE=filedb\n"), 0o600))

	orig := dotEnvFiles
	dotEnvFiles = []string{path}
	t.Cleanup(func() {
		dotEnvFiles = orig
		os.Unsetenv("JWT_SECRET")
		os.Unsetenv("MONGODB_DATABASE")
	})

	c := &Config{}
	c.LoadDefaults()
	parseEnv(c)

	assert.Equal(t, "from-file", c.SecretKey)
	assert.Equal(t, "filedb", c.MongoDatabase)
}

func TestParseEnv_ProcessEnvWinsOverDotEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("JWT_SECRET", "from-process")

	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("JWT_SECRET=from-file\n"), 0o600))

	orig := dotEnvFiles
	dotEnvFiles = []string{path}
	t.Cleanup(func() { dotEnvFiles = orig })

	c := &Config{}
	parseEnv(c)
	assert.Equal(t, "from-process", c.SecretKey)
}
