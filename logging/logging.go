package logging

import (
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/lmittmann/tint"
)

// Setup configures the default slog logger. The level comes from the
// -v/-vv flags (default LevelWarn); the handler is JSON on stdout
// unless LOG_FORMAT=console, which switches to a colored tint handler
// for local runs.
func Setup(verbose, veryVerbose bool) {
	level := slog.LevelWarn
	if veryVerbose {
		level = slog.LevelDebug
	} else if verbose {
		level = slog.LevelInfo
	}

	var handler slog.Handler
	if strings.EqualFold(os.Getenv("LOG_FORMAT"), "console") {
		handler = tint.NewHandler(os.Stderr, &tint.Options{
			Level:      level,
			TimeFormat: time.Kitchen,
		})
	} else {
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: level,
		})
	}
	slog.SetDefault(slog.New(handler))

	slog.Debug("logging: Log level set to", "level", level.String())
}
