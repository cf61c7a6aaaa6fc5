package main

import (
	"log/slog"
	"net/http"
	"sync"
	"time"

	shutdowner "git.jlel.se/jlelse/go-shutdowner"
	rotatelogs "github.com/lestrrat-go/file-rotatelogs"
)

type autoPost struct {
	// Config
	cfg *config
	// Database
	db *database
	// Datetime
	loc *time.Location
	// Hooks
	hourlyHooks []hourlyHookFunc
	// HTTP Client
	httpClient *http.Client
	// HTTP Routers
	d http.Handler
	// LinkedIn
	liProfileInit   sync.Once
	liProfileClient *http.Client
	// Logs
	logf        *rotatelogs.RotateLogs
	logger      *slog.Logger
	logLevel    *slog.LevelVar
	initLogOnce sync.Once
	// Post store
	storeInit sync.Once
	store     postStore
	// Scheduler
	schedulerMu       sync.Mutex
	schedulerState    schedulerState
	schedulerStop     chan struct{}
	schedulerStopped  chan struct{}
	schedulerTrigger  chan struct{}
	schedulerLastTick time.Time
	schedulerLastErr  error
	// Shutdown
	shutdown shutdowner.Shutdowner
}
