package cmd

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/golang-cz/devslog"
	"github.com/mattn/go-isatty"
)

var ErrInvalidLogLevel = errors.New("invalid log level")

var logLevels = map[string]slog.Level{
	"debug": slog.LevelDebug,
	"info":  slog.LevelInfo,
	"warn":  slog.LevelWarn,
	"error": slog.LevelError,
}

func parseLevel(level string) (slog.Level, error) {
	parsed, ok := logLevels[level]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrInvalidLogLevel, level)
	}
	return parsed, nil
}

// newHandler picks devslog for terminals and JSON for everything else.
func newHandler(w io.Writer, terminal bool, level slog.Level) slog.Handler {
	opts := &slog.HandlerOptions{Level: level}

	if terminal {
		return devslog.NewHandler(w, &devslog.Options{HandlerOptions: opts})
	}
	return slog.NewJSONHandler(w, opts)
}

func initLogger(level string) error {
	parsedLevel, err := parseLevel(level)
	if err != nil {
		return err
	}

	terminal := isatty.IsTerminal(os.Stdout.Fd())
	logger := slog.New(newHandler(os.Stdout, terminal, parsedLevel)).With("app", appName)
	slog.SetDefault(logger)

	return nil
}
