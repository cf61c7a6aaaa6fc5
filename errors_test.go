package main

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.autopost.app/app/pkgs/contenttype"
)

func Test_errors(t *testing.T) {
	app := &autoPost{
		cfg: createDefaultTestConfig(t),
	}

	testCases := []struct {
		name         string
		handler      http.HandlerFunc
		accept       string
		wantStatus   int
		wantBody     string
		wantHTMLBody bool
	}{
		{
			name:       "404 plain",
			handler:    app.serve404,
			accept:     contenttype.JSON,
			wantStatus: http.StatusNotFound,
			wantBody:   "not found",
		},
		{
			name:         "404 HTML",
			handler:      app.serve404,
			accept:       contenttype.HTML,
			wantStatus:   http.StatusNotFound,
			wantBody:     "not found",
			wantHTMLBody: true,
		},
		{
			name:       "method not allowed plain",
			handler:    app.serveNotAllowed,
			accept:     contenttype.JSON,
			wantStatus: http.StatusMethodNotAllowed,
			wantBody:   "Method Not Allowed",
		},
		{
			name:         "method not allowed HTML",
			handler:      app.serveNotAllowed,
			accept:       contenttype.HTML,
			wantStatus:   http.StatusMethodNotAllowed,
			wantBody:     "Method Not Allowed",
			wantHTMLBody: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/abc", nil)
			req.Header.Set("Accept", tc.accept)
			rec := httptest.NewRecorder()

			tc.handler(rec, req)

			res := rec.Result()
			body, _ := io.ReadAll(res.Body)
			_ = res.Body.Close()

			assert.Equal(t, tc.wantStatus, res.StatusCode)
			assert.Contains(t, string(body), tc.wantBody)
			if tc.wantHTMLBody {
				assert.Contains(t, res.Header.Get("Content-Type"), contenttype.HTML)
				assert.Contains(t, string(body), "<!doctype html>")
			} else {
				assert.Contains(t, res.Header.Get("Content-Type"), "text/plain")
			}
		})
	}
}
