// Package bufferpool pools bytes.Buffers for reuse between
// render passes and message building.
package bufferpool

import (
	"bytes"
	"sync"
)

var pool = sync.Pool{
	New: func() any {
		return new(bytes.Buffer)
	},
}

func Get() *bytes.Buffer {
	return pool.Get().(*bytes.Buffer)
}

func Put(bufs ...*bytes.Buffer) {
	for _, buf := range bufs {
		buf.Reset()
		pool.Put(buf)
	}
}
