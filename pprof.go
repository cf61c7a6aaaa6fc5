package main

import (
	"cmp"
	"net"
	"net/http"
	"net/http/pprof"
	"time"
)

func (a *autoPost) startPprofServer() {
	cfg := a.cfg.Pprof
	if cfg == nil || !cfg.Enabled {
		return
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/debug/pprof/", http.StatusFound)
	})
	mux.HandleFunc("/debug/pprof/", pprof.Index)
	mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
	mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	mux.HandleFunc("/debug/pprof/trace", pprof.Trace)
	go func() {
		listener, err := net.Listen("tcp", cmp.Or(cfg.Address, "localhost:0"))
		if err != nil {
			a.fatal("Failed to start pprof server", "err", err)
			return
		}
		a.info("Pprof server listening", "addr", listener.Addr().String())
		server := &http.Server{
			Handler:           mux,
			ReadHeaderTimeout: 1 * time.Minute,
		}
		if err := server.Serve(listener); err != nil {
			a.fatal("Failed to start pprof server", "err", err)
		}
	}()
}
