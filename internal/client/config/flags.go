package config

import (
	"flag"
	"os"

	"github.com/dmitrijs2005/cakelibrary/internal/flagx"
)

// parseFlags populates Config fields from command-line flags. os.Args is
// filtered with flagx.FilterArgs first so unrelated flags are ignored.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-s", "-i", "-t", "-l"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.ServerURL, "a", cfg.ServerURL, "API base URL")
	fs.StringVar(&cfg.StoragePath, "s", cfg.StoragePath, "session database path")
	fs.DurationVar(&cfg.SyncInterval, "i", cfg.SyncInterval, "session sync interval")
	fs.DurationVar(&cfg.RequestTimeout, "t", cfg.RequestTimeout, "request timeout")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}
}
