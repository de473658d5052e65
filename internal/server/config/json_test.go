package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempJSON(t *testing.T, dir, name string, data map[string]any) string {
	t.Helper()
	if dir == "" {
		dir = t.TempDir()
	}
	if name == "" {
		name = "cfg.json"
	}
	path := filepath.Join(dir, name)
	b, err := json.Marshal(data)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, b, 0o600))
	return path
}

func Test_parseJson_SourcesAndPrecedence(t *testing.T) {
	t.Setenv("CONFIG", "")
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	dir := t.TempDir()
	pathFlag := writeTempJSON(t, dir, "flag.json", map[string]any{
		"port":             8080,
		"storage":          "postgres",
		"mongodb_uri":      "mongodb://mongo:27017",
		"mongodb_database": "cakes",
		"database_dsn":     "postgres://db",
		"secret_key":       "my_secret_key",
		"token_ttl":        "2h",
		"password_scheme":  "argon2id",
		"bcrypt_cost":      11,
		"shutdown_timeout": "5s",
		"log_level":        "warn",
		"log_format":       "text",
	})

	t.Run("loads from json", func(t *testing.T) {
		os.Args = []string{"testbin", "-config", pathFlag}

		cfg := &Config{}
		parseJson(cfg)

		assert.Equal(t, 8080, cfg.Port)
		assert.Equal(t, StoragePostgres, cfg.Storage)
		assert.Equal(t, "mongodb://mongo:27017", cfg.MongoURI)
		assert.Equal(t, "cakes", cfg.MongoDatabase)
		assert.Equal(t, "postgres://db", cfg.DatabaseDSN)
		assert.Equal(t, "my_secret_key", cfg.SecretKey)
		assert.Equal(t, 2*time.Hour, cfg.TokenTTL)
		assert.Equal(t, "argon2id", cfg.PasswordScheme)
		assert.Equal(t, 11, cfg.BcryptCost)
		assert.Equal(t, 5*time.Second, cfg.ShutdownTimeout)
		assert.Equal(t, "warn", cfg.LogLevel)
		assert.Equal(t, "text", cfg.LogFormat)
	})

	t.Run("CONFIG env is used without a flag", func(t *testing.T) {
		os.Args = []string{"testbin"}
		t.Setenv("CONFIG", pathFlag)

		cfg := &Config{}
		parseJson(cfg)
		assert.Equal(t, 8080, cfg.Port)
	})

	t.Run("partial file keeps other values", func(t *testing.T) {
		partial := writeTempJSON(t, dir, "partial.json", map[string]any{"secret_key": "only"})
		os.Args = []string{"testbin", "-c", partial}

		cfg := &Config{}
		cfg.LoadDefaults()
		parseJson(cfg)

		assert.Equal(t, "only", cfg.SecretKey)
		assert.Equal(t, 4000, cfg.Port)
		assert.Equal(t, time.Hour, cfg.TokenTTL)
	})

	t.Run("no CONFIG and no flags → no changes", func(t *testing.T) {
		os.Args = []string{"testbin"}

		cfg := &Config{}
		cfg.LoadDefaults()
		want := *cfg
		parseJson(cfg)

		assert.Equal(t, want, *cfg)
	})

	t.Run("invalid JSON → panics", func(t *testing.T) {
		bad := filepath.Join(dir, "bad.json")
		require.NoError(t, os.WriteFile(bad, []byte(`{ this is not valid json`), 0o600))

		os.Args = []string{"testbin", "-config", bad}

		cfg := &Config{}
		require.Panics(t, func() { parseJson(cfg) })
	})

	t.Run("missing file → panics", func(t *testing.T) {
		os.Args = []string{"testbin", "-c", filepath.Join(dir, "nope.json")}
		require.Panics(t, func() { parseJson(&Config{}) })
	})
}
