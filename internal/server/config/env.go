package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// dotEnvFiles are loaded before the environment is read. Variables already set
// in the process environment win over the file.
var dotEnvFiles = []string{".env"}

// parseEnv overlays Config with environment variables:
//
//	PORT, STORAGE, MONGODB_URI, MONGODB_DATABASE, DATABASE_DSN, JWT_SECRET,
//	TOKEN_TTL, PASSWORD_SCHEME, BCRYPT_COST, SHUTDOWN_TIMEOUT, LOG_LEVEL,
//	LOG_FORMAT
//
// Unset variables leave the current value in place.
func parseEnv(config *Config) {
	for _, f := range dotEnvFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			panic(fmt.Errorf("load %s: %w", f, err))
		}
	}

	envInt("PORT", &config.Port)
	envString("STORAGE", &config.Storage)
	envString("MONGODB_URI", &config.MongoURI)
	envString("MONGODB_DATABASE", &config.MongoDatabase)
	envString("DATABASE_DSN", &config.DatabaseDSN)
	envString("JWT_SECRET", &config.SecretKey)
	envDuration("TOKEN_TTL", &config.TokenTTL)
	envString("PASSWORD_SCHEME", &config.PasswordScheme)
	envInt("BCRYPT_COST", &config.BcryptCost)
	envDuration("SHUTDOWN_TIMEOUT", &config.ShutdownTimeout)
	envString("LOG_LEVEL", &config.LogLevel)
	envString("LOG_FORMAT", &config.LogFormat)
}

func envString(key string, dst *string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
}

func envInt(key string, dst *int) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		panic(fmt.Errorf("%s: %w", key, err))
	}
	*dst = n
}

func envDuration(key string, dst *time.Duration) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		panic(fmt.Errorf("%s: %w", key, err))
	}
	*dst = d
}
