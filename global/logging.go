package global

import (
	"io"
	"os"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
)

// global Log
var Logger log.Logger

func init() {
	Logger = newLogger(os.Stderr, "debug")
}

func newLogger(w io.Writer, mode string) log.Logger {
	l := log.NewLogfmtLogger(log.NewSyncWriter(w))
	l = log.With(l, "ts", log.DefaultTimestampUTC, "caller", log.DefaultCaller)
	// debug lines only in debug mode
	if mode == "debug" {
		return level.NewFilter(l, level.AllowDebug())
	}
	return level.NewFilter(l, level.AllowInfo())
}

// ConfigureLogger rebuilds Logger for the configured server mode
func ConfigureLogger(mode string) {
	Logger = newLogger(os.Stderr, mode)
}
