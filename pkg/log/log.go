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

// New returns a console logger at level, or a JSON logger on stderr when
// running inside Kubernetes.
func New(level zerolog.Level) *zerolog.Logger {
	var output io.Writer
	if os.Getenv("KUBERNETES_SERVICE_HOST") != "" {
		output = os.Stderr
	} else {
		output = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: "2006-01-02T15:04:05.999Z07:00"}
	}
	return newLogger(output, level)
}

func newLogger(output io.Writer, level zerolog.Level) *zerolog.Logger {
	zerolog.TimeFieldFormat = time.RFC3339Nano
	zerologr.NameFieldName = "logger"
	zerologr.NameSeparator = "/"

	logger := zerolog.New(output).Level(level).With().Timestamp().Logger()
	return &logger
}

// Slog bridges zl into the slog API the library packages log through.
func Slog(zl *zerolog.Logger) *slog.Logger {
	return slog.New(logr.ToSlogHandler(zerologr.New(zl)))
}

// ParseLevel accepts zerolog level names; "" means info.
func ParseLevel(s string) (zerolog.Level, error) {
	if s == "" {
		return zerolog.InfoLevel, nil
	}
	return zerolog.ParseLevel(s)
}
