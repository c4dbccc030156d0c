// Package log builds the zerolog logger of the rendergraph binaries and
// bridges it to logr and slog.
package log

import (
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/go-logr/logr"
	"github.com/go-logr/zerologr"
	"github.com/rs/zerolog"
)

// New creates a logger at level. Inside Kubernetes it writes JSON to
// stderr, elsewhere a console format to w.
func New(w io.Writer, level string) (*zerolog.Logger, error) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return nil, err
	}

	var output io.Writer
	if os.Getenv("KUBERNETES_SERVICE_HOST") != "" {
		output = os.Stderr
	} else {
		output = zerolog.ConsoleWriter{Out: w, TimeFormat: "2006-01-02T15:04:05.999Z07:00"}
	}

	zerolog.TimeFieldFormat = time.RFC3339Nano
	zerologr.NameFieldName = "logger"
	zerologr.NameSeparator = "/"

	logger := zerolog.New(output).Level(lvl).With().Timestamp().Logger()
	return &logger, nil
}

// Logr wraps l as a logr.Logger.
func Logr(l *zerolog.Logger) logr.Logger {
	return zerologr.New(l)
}

// Slog wraps l as a slog.Logger.
func Slog(l *zerolog.Logger) *slog.Logger {
	return slog.New(logr.ToSlogHandler(Logr(l)))
}
