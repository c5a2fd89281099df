package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/gophvault/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-d string   vault database file
//	-k string   key file
//	-t int      command timeout in seconds
//	-l string   log level
//
// os.Args is filtered with flagx.FilterArgs first so -c / -config do not
// trip this parser.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-d", "-k", "-t", "-l"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.DatabaseDSN, "d", cfg.DatabaseDSN, "vault database file")
	fs.StringVar(&cfg.KeyFile, "k", cfg.KeyFile, "key file")
	commandTimeout := fs.Int("t", int(cfg.CommandTimeout.Seconds()), "command timeout (in seconds)")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level: debug, info, warn, error")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	// -t overrides only when given; its int default would truncate sub-second values.
	fs.Visit(func(f *flag.Flag) {
		if f.Name == "t" {
			cfg.CommandTimeout = time.Duration(*commandTimeout) * time.Second
		}
	})
}
