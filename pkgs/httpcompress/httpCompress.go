// Package httpcompress compresses HTTP responses with zstd or gzip,
// depending on what the client accepts. Only textual content types
// are compressed.
package httpcompress

import (
	"bufio"
	"io"
	"net"
	"net/http"
	"strings"
	"sync"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"go.autopost.app/app/pkgs/contenttype"
)

const (
	encodingZstd = "zstd"
	encodingGzip = "gzip"
)

var compressibleTypes = []string{
	contenttype.HTML,
	contenttype.JSON,
	contenttype.Text,
	contenttype.WWWForm,
}

func compressible(contentType string) bool {
	for _, t := range compressibleTypes {
		if strings.HasPrefix(contentType, t) {
			return true
		}
	}
	return false
}

var (
	zstdPool = sync.Pool{New: func() any {
		w, _ := zstd.NewWriter(nil, zstd.WithEncoderConcurrency(1))
		return w
	}}
	gzipPool = sync.Pool{New: func() any {
		w, _ := gzip.NewWriterLevel(nil, gzip.DefaultCompression)
		return w
	}}
)

// CompressMiddleware wraps next and compresses its responses when the
// request carries a matching Accept-Encoding. zstd wins over gzip when
// the client accepts both.
func CompressMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		accepted := r.Header.Get("Accept-Encoding")
		encoding := ""
		if strings.Contains(accepted, encodingZstd) {
			encoding = encodingZstd
		} else if strings.Contains(accepted, encodingGzip) {
			encoding = encodingGzip
		}
		if encoding == "" {
			next.ServeHTTP(w, r)
			return
		}
		cw := &compressWriter{ResponseWriter: w, encoding: encoding}
		defer cw.close()
		next.ServeHTTP(cw, r)
	})
}

// compressWriter delays the encoder decision until the first write,
// when the Content-Type of the response is known.
type compressWriter struct {
	http.ResponseWriter
	encoding      string
	writer        io.Writer
	headerWritten bool
}

func (cw *compressWriter) WriteHeader(statusCode int) {
	if cw.headerWritten {
		return
	}
	cw.selectWriter()
	cw.ResponseWriter.WriteHeader(statusCode)
	cw.headerWritten = true
}

func (cw *compressWriter) Write(p []byte) (int, error) {
	if !cw.headerWritten {
		cw.WriteHeader(http.StatusOK)
	}
	return cw.writer.Write(p)
}

func (cw *compressWriter) selectWriter() {
	if cw.writer != nil {
		return
	}
	if !compressible(cw.Header().Get("Content-Type")) {
		cw.writer = cw.ResponseWriter
		return
	}
	switch cw.encoding {
	case encodingZstd:
		zw := zstdPool.Get().(*zstd.Encoder)
		zw.Reset(cw.ResponseWriter)
		cw.writer = zw
	case encodingGzip:
		gw := gzipPool.Get().(*gzip.Writer)
		gw.Reset(cw.ResponseWriter)
		cw.writer = gw
	default:
		cw.writer = cw.ResponseWriter
		return
	}
	cw.Header().Set("Content-Encoding", cw.encoding)
	cw.Header().Add("Vary", "Accept-Encoding")
	cw.Header().Del("Content-Length")
}

func (cw *compressWriter) close() {
	switch w := cw.writer.(type) {
	case *zstd.Encoder:
		_ = w.Close()
		w.Reset(nil)
		zstdPool.Put(w)
	case *gzip.Writer:
		_ = w.Close()
		w.Reset(io.Discard)
		gzipPool.Put(w)
	}
	cw.writer = nil
}

// Flush implements the http.Flusher interface.
func (cw *compressWriter) Flush() {
	if !cw.headerWritten {
		cw.WriteHeader(http.StatusOK)
	}
	if gw, ok := cw.writer.(*gzip.Writer); ok {
		_ = gw.Flush()
	}
	if f, ok := cw.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// Hijack implements the http.Hijacker interface.
func (cw *compressWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	if hj, ok := cw.ResponseWriter.(http.Hijacker); ok {
		return hj.Hijack()
	}
	return nil, nil, http.ErrNotSupported
}
