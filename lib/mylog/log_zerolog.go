package mylog

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/MarcGrol/fpsgateway/lib/mycontext"
)

type zeroLogger struct {
	componentName string
	logger        zerolog.Logger
}

// New returns a logger for the named component. On Google Cloud the output is JSON using the
// field names Cloud Logging understands, elsewhere it is human-readable.
func New(componentName string) Logger {
	if os.Getenv("GOOGLE_CLOUD_PROJECT") != "" {
		return NewWithWriter(componentName, os.Stdout, true)
	}
	return NewWithWriter(componentName, zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}, false)
}

func NewWithWriter(componentName string, out io.Writer, cloud bool) Logger {
	if cloud {
		// A timestamp is added when shipping logs to Cloud Logging.
		zerolog.LevelFieldName = "severity"
		zerolog.MessageFieldName = "message"
		zerolog.LevelFieldMarshalFunc = cloudSeverity
		return zeroLogger{
			componentName: componentName,
			logger:        zerolog.New(out).With().Str("component", componentName).Logger(),
		}
	}

	return zeroLogger{
		componentName: componentName,
		logger:        zerolog.New(out).With().Timestamp().Str("component", componentName).Logger(),
	}
}

func (l zeroLogger) Log(ctx context.Context, traceLabel string, severity Severity, format string, a ...any) {
	event := l.logger.WithLevel(toLevel(severity))
	if traceLabel != "" {
		event = event.Dict("labels", zerolog.Dict().Str("aggregate", traceLabel))
	}
	if trace := mycontext.TraceFromContext(ctx); trace != "" {
		event = event.Str("logging.googleapis.com/trace", trace)
	}
	event.Msg(l.componentName + ":" + fmt.Sprintf(format, a...))
}

func toLevel(severity Severity) zerolog.Level {
	switch severity {
	case SeverityDebug:
		return zerolog.DebugLevel
	case SeverityWarn:
		return zerolog.WarnLevel
	case SeverityError:
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// cloudSeverity spells levels the way Cloud Logging names its severities
func cloudSeverity(level zerolog.Level) string {
	switch level {
	case zerolog.DebugLevel:
		return "DEBUG"
	case zerolog.WarnLevel:
		return "WARNING"
	case zerolog.ErrorLevel:
		return "ERROR"
	default:
		return "INFO"
	}
}
