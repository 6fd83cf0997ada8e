package config

import (
	"flag"
	"time"

	"github.com/dmitrijs2005/yama/internal/flagx"
)

// parseFlags populates Config fields from command-line flags.
//
//	-a string   backend API base URL
//	-s string   storage backend: sqlite, bolt or file
//	-d string   storage path
//	-l string   log file
//	-t int      request timeout in seconds (0 = none)
//
// Only these flags are looked at; the rest of args is filtered out with
// flagx.FilterArgs so -c and friends do not fail the parse.
func parseFlags(cfg *Config, args []string) {
	args = flagx.FilterArgs(args, []string{"-a", "-s", "-d", "-l", "-t"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.APIBaseURL, "a", cfg.APIBaseURL, "backend API base URL")
	fs.StringVar(&cfg.StorageBackend, "s", cfg.StorageBackend, "token storage backend (sqlite, bolt, file)")
	fs.StringVar(&cfg.DataPath, "d", cfg.DataPath, "token storage path")
	fs.StringVar(&cfg.LogFile, "l", cfg.LogFile, "log file (empty logs to stderr)")
	timeout := fs.Int("t", int(cfg.RequestTimeout.Seconds()), "request timeout (in seconds)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	// only when given, so a sub-second value from file or env survives
	fs.Visit(func(f *flag.Flag) {
		if f.Name == "t" {
			cfg.RequestTimeout = time.Duration(*timeout) * time.Second
		}
	})
}
