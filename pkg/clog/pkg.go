package clog

import (
	"io"
	"os"

	"github.com/apex/log"
)

var clogger = NewContextLogger(os.Stdout)

// Setup points both apex/log's default logger and the global context
// logger at w and sets their level from a string such as "debug".
func Setup(w io.Writer, level string) error {
	log.SetHandler(NewHandler(w))
	clogger.GlobalLogger.Handler = NewHandler(w)

	if level == "" {
		return nil
	}

	lvl, err := log.ParseLevel(level)
	if err != nil {
		return err
	}
	log.SetLevel(lvl)

	return clogger.SetLevelFromString(GlobalLoggerCtx, level)
}

func AddLoggingContext(ctx string, w io.Writer) {
	clogger.AddLoggingContext(ctx, w)
}

func RemoveLoggingContext(ctx string) {
	clogger.RemoveLoggingContext(ctx)
}

func SetLevelFromString(ctx, s string) error {
	return clogger.SetLevelFromString(ctx, s)
}

func SetOutput(ctx string, w io.Writer) {
	clogger.SetOutput(ctx, w)
}

func Level(ctx string) log.Level {
	return clogger.Level(ctx)
}

func UsingCtx(ctx string) *log.Entry {
	return clogger.UsingCtx(ctx)
}

func Global() *log.Entry {
	return clogger.Global()
}
