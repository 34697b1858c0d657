package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/lmittmann/tint"
	"github.com/mattn/go-isatty"
)

// newLogger builds the process logger. Logs never go to stdout because the
// stdio transport owns it. With a debug file every record is written there
// at debug level, truncating the file on each run.
func newLogger(cfg *ServerConfig) (*slog.Logger, func(), error) {
	level, err := cfg.slogLevel()
	if err != nil {
		return nil, nil, err
	}

	var w io.Writer = os.Stderr
	color := isatty.IsTerminal(os.Stderr.Fd())
	closer := func() {}
	if cfg.Debug != "" {
		f, err := os.Create(cfg.Debug)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open log file: %w", err)
		}
		w = f
		color = false
		level = slog.LevelDebug
		closer = func() { _ = f.Close() }
	}

	var h slog.Handler
	if cfg.LogFormat == logFormatJSON {
		h = slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})
	} else {
		h = tint.NewHandler(w, &tint.Options{
			Level:      level,
			TimeFormat: "15:04:05.000",
			NoColor:    !color,
		})
	}
	return slog.New(h), closer, nil
}

type loggerKey struct{}

func withLogger(ctx context.Context, l *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, l)
}

func loggerFrom(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok {
		return l
	}
	return slog.Default()
}
