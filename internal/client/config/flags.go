package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/moodkeeper/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   base URL of the REST API
//	-g string   address of the gRPC health endpoint
//	-f string   path of the local SQLite database
//	-i value    online check interval, seconds or a Go duration
//	-t value    request timeout, seconds or a Go duration
//	-l string   log level
//
// os.Args is filtered with flagx.FilterArgs first, so -c/-config and
// unknown flags do not break parsing.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-g", "-f", "-i", "-t", "-l"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.ServerURL, "a", cfg.ServerURL, "base URL of the server API")
	fs.StringVar(&cfg.HealthAddr, "g", cfg.HealthAddr, "address and port of the health endpoint")
	fs.StringVar(&cfg.DatabasePath, "f", cfg.DatabasePath, "local database file")
	fs.Var(flagx.NewDuration(&cfg.OnlineCheckInterval, time.Second), "i", "online check interval (in seconds)")
	fs.Var(flagx.NewDuration(&cfg.RequestTimeout, time.Second), "t", "request timeout (in seconds)")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level (debug, info, warn, error)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}
}
