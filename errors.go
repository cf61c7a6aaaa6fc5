package main

import (
	"fmt"
	"net/http"
	"strings"

	"go.autopost.app/app/pkgs/contenttype"
	"go.autopost.app/app/pkgs/htmlbuilder"
)

func (a *autoPost) serve404(w http.ResponseWriter, r *http.Request) {
	a.serveError(w, r, fmt.Sprintf("%s was not found", r.RequestURI), http.StatusNotFound)
}

func (a *autoPost) serveNotAllowed(w http.ResponseWriter, r *http.Request) {
	a.serveError(w, r, "", http.StatusMethodNotAllowed)
}

// serveError answers with plain text unless the client accepts HTML,
// then it gets a small error page.
func (a *autoPost) serveError(w http.ResponseWriter, r *http.Request, message string, status int) {
	if message == "" {
		message = http.StatusText(status)
	}
	if !strings.Contains(r.Header.Get("Accept"), contenttype.HTML) {
		http.Error(w, message, status)
		return
	}
	w.Header().Set(contentType, contenttype.HTMLUTF8)
	w.WriteHeader(status)
	title := fmt.Sprintf("%d %s", status, http.StatusText(status))
	hb := htmlbuilder.NewHtmlBuilder(w)
	hb.WriteUnescaped("<!doctype html>")
	hb.WriteElementsOpen("html", "head")
	hb.WriteElementOpen("title")
	hb.WriteEscaped(title)
	hb.WriteElementsClose("title", "head")
	hb.WriteElementOpen("body")
	hb.WriteElementOpen("h1")
	hb.WriteEscaped(title)
	hb.WriteElementClose("h1")
	hb.WriteElementOpen("p")
	hb.WriteEscaped(message)
	hb.WriteElementClose("p")
	hb.WriteElementsClose("body", "html")
}
