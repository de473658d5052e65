package config

import (
	"flag"
	"os"

	"github.com/dmitrijs2005/cakelibrary/internal/flagx"
)

var serverFlags = []string{"-p", "-s", "-m", "-n", "-d", "-k", "-t", "-x", "-b", "-g", "-l", "-f"}

// parseFlags populates server Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-p int       HTTP port
//	-s string    storage backend: mongo, postgres or memory
//	-m string    MongoDB URI
//	-n string    MongoDB database name
//	-d string    PostgreSQL DSN
//	-k string    JWT HMAC secret key
//	-t duration  token lifetime (e.g. "1h")
//	-x string    password scheme for new digests: bcrypt or argon2id
//	-b int       bcrypt cost
//	-g duration  graceful shutdown timeout
//	-l string    log level
//	-f string    log format: json or text
//
// os.Args is filtered with flagx.FilterArgs first so the -c/-config flag
// consumed by parseJson does not trip the parser.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], serverFlags)

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.IntVar(&config.Port, "p", config.Port, "HTTP port")
	fs.StringVar(&config.Storage, "s", config.Storage, "storage backend (mongo|postgres|memory)")
	fs.StringVar(&config.MongoURI, "m", config.MongoURI, "MongoDB URI")
	fs.StringVar(&config.MongoDatabase, "n", config.MongoDatabase, "MongoDB database")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "PostgreSQL DSN")
	fs.StringVar(&config.SecretKey, "k", config.SecretKey, "JWT secret key")
	fs.DurationVar(&config.TokenTTL, "t", config.TokenTTL, "token lifetime")
	fs.StringVar(&config.PasswordScheme, "x", config.PasswordScheme, "password scheme (bcrypt|argon2id)")
	fs.IntVar(&config.BcryptCost, "b", config.BcryptCost, "bcrypt cost")
	fs.DurationVar(&config.ShutdownTimeout, "g", config.ShutdownTimeout, "graceful shutdown timeout")
	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level")
	fs.StringVar(&config.LogFormat, "f", config.LogFormat, "log format (json|text)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}
}
