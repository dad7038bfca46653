package malloc

import (
	"io"
	"log/slog"
	"os"
)

// logEnv enables debug logging to stderr when no Logger is configured.
const logEnv = "MALLOC_LOG"

func defaultLogger() *slog.Logger {
	if os.Getenv(logEnv) != "" {
		return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
