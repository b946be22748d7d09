// Package flagx contains command-line helpers shared by the server and
// client configuration loaders.
package flagx

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// FilterArgs returns the subset of args that belongs to allowedFlags,
// keeping flag values that follow as separate arguments.
//
// Supported formats:
//  1. Flag and value as separate arguments:  -c conf.json
//  2. Flag and value combined with '=':      --config=conf.json
//
// The result is never nil, so it can be handed to flag.FlagSet.Parse as is.
func FilterArgs(args []string, allowedFlags []string) []string {
	allowed := make(map[string]struct{}, len(allowedFlags))
	for _, f := range allowedFlags {
		allowed[f] = struct{}{}
	}

	filtered := make([]string, 0, len(args))

	for i := 0; i < len(args); i++ {
		arg := args[i]

		if strings.HasPrefix(arg, "-") && strings.Contains(arg, "=") {
			name := strings.SplitN(arg, "=", 2)[0]
			if _, ok := allowed[name]; ok {
				filtered = append(filtered, arg)
			}
			continue
		}

		if _, ok := allowed[arg]; ok {
			filtered = append(filtered, arg)
			// a following token that is not a flag is this flag's value
			if i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
				filtered = append(filtered, args[i+1])
				i++
			}
		}
	}

	return filtered
}

// ConfigPath extracts the JSON config file path given via -c or -config.
// The last occurrence wins. An empty string means no file was requested.
func ConfigPath(args []string) string {
	var config string

	fs := flag.NewFlagSet("json", flag.ContinueOnError)
	fs.StringVar(&config, "config", "", "Path to config file")
	fs.StringVar(&config, "c", "", "Path to config file (short)")
	_ = fs.Parse(FilterArgs(args, []string{"-c", "-config"}))

	return config
}

// JsonConfigFlags is ConfigPath applied to os.Args.
func JsonConfigFlags() string {
	return ConfigPath(os.Args[1:])
}

// Duration is a flag.Value for time.Duration that also accepts a bare
// integer, interpreted in Unit. This keeps "-t 168" (hours) working next to
// "-t 168h".
type Duration struct {
	Target *time.Duration
	Unit   time.Duration
}

// NewDuration binds a Duration flag value to target.
func NewDuration(target *time.Duration, unit time.Duration) *Duration {
	return &Duration{Target: target, Unit: unit}
}

func (d *Duration) String() string {
	if d == nil || d.Target == nil {
		return ""
	}
	return d.Target.String()
}

func (d *Duration) Set(s string) error {
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		*d.Target = time.Duration(n) * d.Unit
		return nil
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q", s)
	}
	*d.Target = v
	return nil
}
