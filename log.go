package main

import (
	"log/slog"
	"os"
)

func (a *autoPost) initLog() {
	a.initLogOnce.Do(func() {
		a.logLevel = new(slog.LevelVar)
		a.logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: a.logLevel,
		}))
	})
}

func (a *autoPost) updateLogLevel() {
	a.initLog()
	if a.cfg.Debug {
		a.logLevel.Set(slog.LevelDebug)
	}
}

func (a *autoPost) debug(msg string, args ...any) {
	a.initLog()
	a.logger.Debug(msg, args...)
}

func (a *autoPost) info(msg string, args ...any) {
	a.initLog()
	a.logger.Info(msg, args...)
}

func (a *autoPost) warn(msg string, args ...any) {
	a.initLog()
	a.logger.Warn(msg, args...)
}

func (a *autoPost) error(msg string, args ...any) {
	a.initLog()
	a.logger.Error(msg, args...)
}

func (a *autoPost) fatal(msg string, args ...any) {
	a.initLog()
	a.error(msg, args...)
	os.Exit(1)
}
