// Package logging abstracts over the underlying structured logger.
package logging

import (
	"io"
	"os"
	"regexp"

	"github.com/rs/zerolog"
)

//nolint:gochecknoglobals // Global log level of the application
var LogLevel = LogLevelInfo

type logLevel int

const (
	LogLevelTrace logLevel = iota
	LogLevelDebug
	LogLevelInfo
	LogLevelError
	LogLevelFatal
)

// tokenPattern matches a Telegram bot token anywhere it appears in a log line or its fields.
var tokenPattern = regexp.MustCompile(`\d{6,}:[A-Za-z0-9_-]{28,}`)

//nolint:gochecknoglobals // Shared redacting writer wrapping stderr, the default sink.
var base = zerolog.New(redactingWriter{out: os.Stderr}).With().Timestamp().Logger()

// SetOutput replaces the underlying writer, still passing every line through redaction.
func SetOutput(w io.Writer) {
	base = zerolog.New(redactingWriter{out: w}).With().Timestamp().Logger()
}

// redactingWriter scrubs bot tokens from every line before it reaches the real sink, satisfying
// the no-token-in-logs requirement regardless of which level or field produced the line.
type redactingWriter struct {
	out io.Writer
}

func (w redactingWriter) Write(p []byte) (int, error) {
	redacted := tokenPattern.ReplaceAll(p, []byte("<redacted>"))
	if _, err := w.out.Write(redacted); err != nil {
		return 0, err
	}

	return len(p), nil
}

type Loggable interface {
	Log() string
}

func Tracef(fmtStr string, v ...any) {
	if LogLevel <= LogLevelTrace {
		base.Trace().Msgf(fmtStr, v...)
	}
}

func Debugf(fmtStr string, v ...any) {
	if LogLevel <= LogLevelDebug {
		base.Debug().Msgf(fmtStr, v...)
	}
}

func Infof(fmtStr string, v ...any) {
	if LogLevel <= LogLevelInfo {
		base.Info().Msgf(fmtStr, v...)
	}
}

func Errorf(fmtStr string, v ...any) {
	if LogLevel <= LogLevelError {
		base.Error().Msgf(fmtStr, v...)
	}
}

func Fatalf(fmtStr string, v ...any) {
	if LogLevel <= LogLevelFatal {
		base.Fatal().Msgf(fmtStr, v...)
	}
}

// RequestFailure logs a failed Bot API call with structured fields, per spec: method name, HTTP
// status, and Telegram description. Token redaction happens at the writer, not here.
func RequestFailure(method string, httpStatus int, description string, retryInSec int) {
	ev := base.Error().
		Str("method", method).
		Int("http_status", httpStatus).
		Str("description", description)

	if retryInSec > 0 {
		ev = ev.Int("retry_after", retryInSec)
	}

	ev.Msg("telegram API call failed")
}

