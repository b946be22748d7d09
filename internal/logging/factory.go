package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
)

const (
	BackendSlog = "slog"
	BackendZap  = "zap"
)

const (
	FormatJSON = "json"
	FormatText = "text"
)

// Options selects and configures a Logger backend.
type Options struct {
	Backend string // slog (default) or zap
	Level   string
	Format  string // slog only: json (default) or text
	Output  io.Writer

	// File enables the rotating JSON sink of the zap backend.
	File string
}

// New builds a Logger from opts.
func New(opts Options) (Logger, error) {
	switch opts.Backend {
	case "", BackendSlog:
		out := opts.Output
		if out == nil {
			out = os.Stdout
		}
		ho := &slog.HandlerOptions{Level: ParseSlogLevel(opts.Level)}

		var h slog.Handler
		if opts.Format == FormatText {
			h = slog.NewTextHandler(out, ho)
		} else {
			h = slog.NewJSONHandler(out, ho)
		}
		return NewSlogLogger(slog.New(h)), nil

	case BackendZap:
		level := opts.Level
		if level == "" {
			level = "info"
		}
		var file *RotatingFile
		if opts.File != "" {
			file = &RotatingFile{Filename: opts.File, MaxSizeMB: 100, MaxBackups: 30, MaxAgeDays: 90}
		}
		z, err := buildZap(level, file)
		if err != nil {
			return nil, err
		}
		return NewZapLogger(z), nil
	}

	return nil, fmt.Errorf("unknown log backend %q", opts.Backend)
}
