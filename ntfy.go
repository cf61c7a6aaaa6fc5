package main

import (
	"context"
	"net/http"
	"strings"

	"github.com/carlmjohnson/requests"
)

const defaultNtfyServer = "https://ntfy.sh"

func (ntfy *configNtfy) enabled() bool {
	if ntfy == nil || !ntfy.Enabled || ntfy.Topic == "" {
		return false
	}
	return true
}

func (a *autoPost) sendNtfy(cfg *configNtfy, msg string) error {
	if !cfg.enabled() {
		return nil
	}
	builder := requests.
		URL(defaultIfEmpty(cfg.Server, defaultNtfyServer) + "/" + cfg.Topic).
		Client(a.httpClient).
		UserAgent(appUserAgent).
		Method(http.MethodPost).
		BodyReader(strings.NewReader(msg))
	if cfg.User != "" {
		builder.BasicAuth(cfg.User, cfg.Pass)
	}
	return builder.Fetch(context.Background())
}
