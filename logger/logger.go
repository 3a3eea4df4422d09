package logger

import (
	"context"
	"io"
	"os"
	"runtime"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"

	"github.com/rowstream/rowstream-go/driverctx"
)

var Log = zerolog.New(os.Stderr).With().Timestamp().Logger()

// enable pretty printing for interactive terminals and json for production.
func init() {
	// for tty terminal enable pretty logs
	if isatty.IsTerminal(os.Stdout.Fd()) && runtime.GOOS != "windows" {
		Log = Log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	} else {
		// UNIX Time is faster and smaller than most timestamps
		// If you set zerolog.TimeFieldFormat to an empty string,
		// logs will write with UNIX time.
		zerolog.TimeFieldFormat = ""
	}
	// by default only log warnings and errors
	SetLogLevel(zerolog.WarnLevel)
}

func SetLogLevel(l zerolog.Level) {
	Log = Log.Level(l)
}

func SetLogOutput(w io.Writer) {
	Log = Log.Output(w)
}

// WithContext returns a logger annotated with the corrId, connId and queryId
// fields found in ctx. Empty ids are omitted.
func WithContext(ctx context.Context) *zerolog.Logger {
	lc := Log.With()
	if corrId := driverctx.CorrelationIdFromContext(ctx); corrId != "" {
		lc = lc.Str("corrId", corrId)
	}
	if connId := driverctx.ConnIdFromContext(ctx); connId != "" {
		lc = lc.Str("connId", connId)
	}
	if queryId := driverctx.QueryIdFromContext(ctx); queryId != "" {
		lc = lc.Str("queryId", queryId)
	}
	l := lc.Logger()
	return &l
}
