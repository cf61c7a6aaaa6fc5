package main

import (
	"context"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/justinas/alice"
	"go.autopost.app/app/pkgs/bodylimit"
	"go.autopost.app/app/pkgs/httpcompress"
)

const (
	pingPath  = "/ping"
	mediaPath = "/media"
)

func (a *autoPost) startServer() error {
	// Build the final handler
	chain := alice.New(a.securityHeaders, httpcompress.CompressMiddleware)
	if a.cfg.Server.Logging {
		chain = chain.Append(a.logMiddleware)
	}
	a.d = chain.Then(a.buildRouter())
	// Start the server
	s := &http.Server{
		Addr:              ":" + strconv.Itoa(a.cfg.Server.Port),
		Handler:           a.d,
		ReadHeaderTimeout: 1 * time.Minute,
		ReadTimeout:       5 * time.Minute,
		WriteTimeout:      5 * time.Minute,
	}
	a.shutdown.Add(a.shutdownServer(s, "http server"))
	a.info("Starting HTTP server", "addr", s.Addr)
	if err := s.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (a *autoPost) shutdownServer(s *http.Server, name string) func() {
	return func() {
		toc, c := context.WithTimeout(context.Background(), 5*time.Second)
		defer c()
		if err := s.Shutdown(toc); err != nil {
			a.error("Failed to shutdown server", "name", name, "err", err)
			return
		}
		a.info("Stopped server", "name", name)
	}
}

func (a *autoPost) buildRouter() http.Handler {
	r := chi.NewRouter()

	// Basic middleware
	r.Use(middleware.Recoverer)
	r.Use(middleware.CleanPath)
	r.Use(middleware.RedirectSlashes)
	r.Use(middleware.GetHead)
	r.Use(middleware.NoCache)

	// Healthcheck
	r.Get(pingPath, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, "pong")
	})

	// Posts
	r.Route("/posts", func(r chi.Router) {
		r.Use(a.authMiddleware)
		r.Get("/", a.serveGetPosts)
		r.With(bodylimit.BodyLimit(bodylimit.MB)).Post("/", a.serveCreatePost)
	})

	// Scheduler
	r.Route("/scheduler", func(r chi.Router) {
		r.Use(a.authMiddleware)
		r.Get("/", a.serveSchedulerStatus)
		r.Post("/start", a.serveSchedulerStart)
		r.Post("/stop", a.serveSchedulerStop)
		r.Post("/trigger", a.serveSchedulerTrigger)
	})

	// Notifications
	r.Route("/notifications", func(r chi.Router) {
		r.Use(a.authMiddleware)
		r.Get("/", a.serveNotifications)
	})

	// Media files
	r.Route(mediaPath, func(r chi.Router) {
		r.Use(a.authMiddleware)
		r.With(bodylimit.BodyLimit(30*bodylimit.MB)).Post("/", a.serveMediaUpload)
		r.Get("/{file}", a.serveMediaFile)
	})

	// Dashboard
	r.With(a.authMiddleware).Get("/", a.serveDashboard)

	// Everything else
	r.NotFound(a.serve404)
	r.MethodNotAllowed(a.serveNotAllowed)

	return r
}

func (a *autoPost) authMiddleware(next http.Handler) http.Handler {
	return middleware.BasicAuth("AutoPost", map[string]string{
		a.cfg.User.Nick: a.cfg.User.Password,
	})(next)
}

func (a *autoPost) securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Referrer-Policy", "no-referrer")
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("X-Robots-Tag", "noindex")
		next.ServeHTTP(w, r)
	})
}
