package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/cakelibrary/internal/flagx"
	"github.com/dmitrijs2005/cakelibrary/internal/timex"
)

// JsonConfig is the on-disk shape of the server config file. Durations accept
// "1h"-style strings or integer nanoseconds. Absent fields leave the current
// value untouched.
type JsonConfig struct {
	Port            int            `json:"port"`
	Storage         string         `json:"storage"`
	MongoURI        string         `json:"mongodb_uri"`
	MongoDatabase   string         `json:"mongodb_database"`
	DatabaseDSN     string         `json:"database_dsn"`
	SecretKey       string         `json:"secret_key"`
	TokenTTL        timex.Duration `json:"token_ttl"`
	PasswordScheme  string         `json:"password_scheme"`
	BcryptCost      int            `json:"bcrypt_cost"`
	ShutdownTimeout timex.Duration `json:"shutdown_timeout"`
	LogLevel        string         `json:"log_level"`
	LogFormat       string         `json:"log_format"`
}

// parseJson loads configuration values from the JSON file named by -c/-config
// (or the CONFIG environment variable). No path means nothing to load. An
// unreadable file or invalid JSON panics.
func parseJson(config *Config) {

	jsonConfigFile := flagx.ConfigFile(os.Args[1:])

	// nothing to load
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	err = json.Unmarshal(file, c)
	if err != nil {
		panic(err)
	}

	setString(&config.Storage, c.Storage)
	setString(&config.MongoURI, c.MongoURI)
	setString(&config.MongoDatabase, c.MongoDatabase)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.SecretKey, c.SecretKey)
	setString(&config.PasswordScheme, c.PasswordScheme)
	setString(&config.LogLevel, c.LogLevel)
	setString(&config.LogFormat, c.LogFormat)

	if c.Port != 0 {
		config.Port = c.Port
	}
	if c.BcryptCost != 0 {
		config.BcryptCost = c.BcryptCost
	}
	if c.TokenTTL.Duration != 0 {
		config.TokenTTL = c.TokenTTL.Duration
	}
	if c.ShutdownTimeout.Duration != 0 {
		config.ShutdownTimeout = c.ShutdownTimeout.Duration
	}
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
