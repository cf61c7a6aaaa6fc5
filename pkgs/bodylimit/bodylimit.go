// Package bodylimit provides a HTTP middleware that caps the request body size.
package bodylimit

import "net/http"

const (
	KB int64 = 1000
	MB       = 1000 * KB
	GB       = 1000 * MB

	KiB int64 = 1024
	MiB       = 1024 * KiB
	GiB       = 1024 * MiB
)

func BodyLimit(n int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if n > 0 {
				r.Body = http.MaxBytesReader(w, r.Body, n)
			}
			next.ServeHTTP(w, r)
		})
	}
}
