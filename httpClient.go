package main

import (
	"net"
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/carlmjohnson/requests"
	"github.com/klauspost/compress/gzhttp"
)

func newHttpClient() *http.Client {
	return &http.Client{
		Timeout:   time.Minute,
		Transport: newHttpTransport(),
	}
}

func newHttpTransport() http.RoundTripper {
	return newAddUserAgentTransport(
		gzhttp.Transport(
			&http.Transport{
				// Default
				Proxy:                 http.ProxyFromEnvironment,
				ForceAttemptHTTP2:     true,
				MaxIdleConns:          100,
				IdleConnTimeout:       90 * time.Second,
				TLSHandshakeTimeout:   10 * time.Second,
				ExpectContinueTimeout: 1 * time.Second,
				DialContext: (&net.Dialer{
					Timeout:   30 * time.Second,
					KeepAlive: 30 * time.Second,
				}).DialContext,
				// Custom
				DisableKeepAlives: true,
			},
		),
	)
}

type addUserAgentTransport struct {
	parent http.RoundTripper
}

func (t *addUserAgentTransport) RoundTrip(r *http.Request) (*http.Response, error) {
	r.Header.Set(userAgent, appUserAgent)
	return t.parent.RoundTrip(r)
}

func newAddUserAgentTransport(parent http.RoundTripper) *addUserAgentTransport {
	return &addUserAgentTransport{parent}
}

// newHandlerClient creates a http.Client that serves every request
// directly through the given handler, without opening connections.
func newHandlerClient(handler http.Handler) *http.Client {
	return &http.Client{Transport: newHandlerTransport(handler)}
}

func newHandlerTransport(handler http.Handler) http.RoundTripper {
	return requests.RoundTripFunc(func(req *http.Request) (*http.Response, error) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec.Result(), nil
	})
}
