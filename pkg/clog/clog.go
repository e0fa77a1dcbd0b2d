package clog

import (
	"io"
	"sync"

	"github.com/apex/log"
)

const GlobalLoggerCtx = "global"

// ContextLogger hands out loggers by context name ("api", "lot", "registry").
// A context without its own writer logs through the global logger.
type ContextLogger struct {
	GlobalLogger   *log.Logger
	ContextLoggers sync.Map
}

func NewContextLogger(w io.Writer) *ContextLogger {
	return &ContextLogger{
		GlobalLogger: &log.Logger{Handler: NewHandler(w), Level: log.InfoLevel},
	}
}

func (l *ContextLogger) AddLoggingContext(ctx string, w io.Writer) {
	logger := &log.Logger{Handler: NewHandler(w), Level: l.GlobalLogger.Level}
	if old, loaded := l.ContextLoggers.Swap(ctx, logger); loaded {
		closeLogger(old.(*log.Logger))
	}
}

func (l *ContextLogger) RemoveLoggingContext(ctx string) {
	if logger, ok := l.ContextLoggers.LoadAndDelete(ctx); ok {
		closeLogger(logger.(*log.Logger))
	}
}

func closeLogger(logger *log.Logger) {
	if h, ok := logger.Handler.(*Handler); ok {
		h.Close()
	}
}

// SetOutput sends ctx's entries to w. For a context without its own logger
// one is created.
func (l *ContextLogger) SetOutput(ctx string, w io.Writer) {
	if ctx != GlobalLoggerCtx {
		l.AddLoggingContext(ctx, w)
		return
	}

	if h, ok := l.GlobalLogger.Handler.(*Handler); ok {
		h.SetOutput(w)
		return
	}
	l.GlobalLogger.Handler = NewHandler(w)
}

// Level is the level ctx currently logs at.
func (l *ContextLogger) Level(ctx string) log.Level {
	if logger := l.contextLogger(ctx); logger != nil {
		return logger.Level
	}
	return l.GlobalLogger.Level
}

func (l *ContextLogger) SetLevel(ctx string, level log.Level) {
	if ctx == GlobalLoggerCtx {
		l.GlobalLogger.Level = level
		return
	}

	if logger := l.contextLogger(ctx); logger != nil {
		logger.Level = level
	}
}

func (l *ContextLogger) SetLevelFromString(ctx, s string) error {
	level, err := log.ParseLevel(s)
	if err != nil {
		return err
	}

	l.SetLevel(ctx, level)
	return nil
}

func (l *ContextLogger) UsingCtx(ctx string) *log.Entry {
	if logger := l.contextLogger(ctx); logger != nil {
		return logger.WithField("ctx", ctx)
	}
	return l.GlobalLogger.WithField("ctx", ctx)
}

func (l *ContextLogger) Global() *log.Entry {
	return l.UsingCtx(GlobalLoggerCtx)
}

func (l *ContextLogger) contextLogger(ctx string) *log.Logger {
	logger, ok := l.ContextLoggers.Load(ctx)
	if !ok {
		return nil
	}
	return logger.(*log.Logger)
}
