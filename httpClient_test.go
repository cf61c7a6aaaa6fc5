package main

import (
	"net/http"
	"net/http/httptest"
	"sync"
)

// fakeHttpClient hands outgoing requests to a local handler and
// records the last request and response pair.
type fakeHttpClient struct {
	*http.Client
	mu      sync.Mutex
	handler http.Handler
	req     *http.Request
	res     *http.Response
}

func newFakeHttpClient() *fakeHttpClient {
	fc := &fakeHttpClient{}
	fc.Client = &http.Client{Transport: fc}
	return fc
}

// RoundTrip implements http.RoundTripper.
func (c *fakeHttpClient) RoundTrip(req *http.Request) (*http.Response, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.req = req
	rec := httptest.NewRecorder()
	if c.handler != nil {
		c.handler.ServeHTTP(rec, req)
	}
	c.res = rec.Result()
	return c.res, nil
}

func (c *fakeHttpClient) clean() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.req = nil
	c.res = nil
	c.handler = nil
}

func (c *fakeHttpClient) setHandler(handler http.Handler) {
	c.clean()
	c.mu.Lock()
	defer c.mu.Unlock()
	c.handler = handler
}

func (c *fakeHttpClient) setFakeResponse(statusCode int, body string) {
	c.setHandler(http.HandlerFunc(func(rw http.ResponseWriter, _ *http.Request) {
		rw.WriteHeader(statusCode)
		_, _ = rw.Write([]byte(body))
	}))
}
