package util

import (
	"bytes"
	"sync"
)

var bytesBuffer = sync.Pool{
	New: func() interface{} { return &bytes.Buffer{} },
}

// WithBuffer runs fn with an empty pooled buffer. The buffer goes back to the
// pool when fn returns, so fn must not retain it or its bytes.
func WithBuffer(fn func(buf *bytes.Buffer) error) error {
	buf := bytesBuffer.Get().(*bytes.Buffer)
	buf.Reset()
	defer bytesBuffer.Put(buf)
	return fn(buf)
}
