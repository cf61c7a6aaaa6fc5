package main

import (
	"flag"
	"os"
)

func main() {
	// Command line flags
	configfile := flag.String("config", "", "use a specific config file")
	flag.Parse()

	app := &autoPost{
		httpClient: newHttpClient(),
	}

	// Initialize config
	if err := app.loadConfigFile(*configfile); err != nil {
		app.logErrAndQuit("Failed to load config file", "err", err)
		return
	}
	if err := app.initConfig(); err != nil {
		app.logErrAndQuit("Failed to init config", "err", err)
		return
	}
	app.updateLogLevel()

	// Healthcheck tool
	if len(os.Args) >= 2 && os.Args[1] == "healthcheck" {
		// Connect to the public address and exit with 0 on success
		health := app.healthcheckExitCode()
		app.shutdown.ShutdownAndWait()
		os.Exit(health)
		return
	}

	// Start pprof server
	app.startPprofServer()

	// Execute pre-start hooks
	app.preStartHooks()

	// Initialize components
	app.initComponents()

	// Start cron hooks
	app.startHourlyHooks()

	// Start the posts scheduler
	if app.cfg.Scheduler.Enabled {
		app.startPostsScheduler()
	}

	// Start the server
	if err := app.startServer(); err != nil {
		app.logErrAndQuit("Failed to start server", "err", err)
		return
	}

	// Wait till everything is shutdown
	app.shutdown.Wait()
}

func (app *autoPost) initComponents() {
	app.info("Initialize components")

	if err := app.initDatabase(true); err != nil {
		app.logErrAndQuit("Failed to init database", "err", err)
		return
	}
	if err := app.initHTTPLog(); err != nil {
		app.logErrAndQuit("Failed to init HTTP logging", "err", err)
		return
	}
	app.initPostStore()
	if _, err := app.postStorage(); err != nil {
		app.logErrAndQuit("Failed to init post store", "err", err)
		return
	}

	app.info("Initialized components")
}

func (a *autoPost) logErrAndQuit(msg string, args ...any) {
	a.error(msg, args...)
	a.shutdown.ShutdownAndWait()
	os.Exit(1)
}
