package main

import (
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_httpLogs(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "access.log")

	app := &autoPost{
		cfg: createDefaultTestConfig(t),
	}
	app.cfg.Server.Logging = true
	app.cfg.Server.LogFile = logFile
	require.NoError(t, app.initConfig())
	require.NoError(t, app.initHTTPLog())

	handler := app.logMiddleware(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, "pong")
	}))

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.RemoteAddr = "203.0.113.7:55000"
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "pong", rec.Body.String())

	logBytes, err := os.ReadFile(logFile)
	require.NoError(t, err)
	logString := string(logBytes)

	assert.Contains(t, logString, "GET /ping")
	// The remote address is stripped before logging
	assert.NotContains(t, logString, "203.0.113.7")
}

func Test_httpLogs_disabled(t *testing.T) {
	app := &autoPost{
		cfg: createDefaultTestConfig(t),
	}
	require.NoError(t, app.initConfig())

	assert.False(t, app.cfg.Server.Logging)
	require.NoError(t, app.initHTTPLog())
	assert.Nil(t, app.logf)
}
