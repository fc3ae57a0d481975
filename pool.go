package explorer

import (
	"bytes"
	"sync"
)

// Buffer pools for the decode hot path. Band decodes run concurrently
// and each needs a scratch payload buffer of tileSize*tileSize*2 bytes;
// pooling them keeps GC pressure flat when many areas are explored in
// a row.

type byteSlicePool struct {
	// Small buffers (up to 64KB) - single strips
	small sync.Pool
	// Medium buffers (up to 256KB) - full 256x256 16-bit payloads
	medium sync.Pool
	// Large buffers (up to 1MB) - oversized tiles
	large sync.Pool
}

const (
	smallBufferSize  = 64 * 1024
	mediumBufferSize = 256 * 1024
	largeBufferSize  = 1024 * 1024
)

var bufferPool = &byteSlicePool{
	small: sync.Pool{
		New: func() interface{} {
			buf := make([]byte, smallBufferSize)
			return &buf
		},
	},
	medium: sync.Pool{
		New: func() interface{} {
			buf := make([]byte, mediumBufferSize)
			return &buf
		},
	},
	large: sync.Pool{
		New: func() interface{} {
			buf := make([]byte, largeBufferSize)
			return &buf
		},
	},
}

// GetBuffer returns a zeroed byte slice of the requested size from the
// pool. Call PutBuffer when done to return it.
func GetBuffer(size int) []byte {
	var buf []byte
	switch {
	case size <= smallBufferSize:
		buf = (*bufferPool.small.Get().(*[]byte))[:size]
	case size <= mediumBufferSize:
		buf = (*bufferPool.medium.Get().(*[]byte))[:size]
	case size <= largeBufferSize:
		buf = (*bufferPool.large.Get().(*[]byte))[:size]
	default:
		// Very large buffers are allocated directly (and arrive zeroed).
		return make([]byte, size)
	}
	// Pooled buffers carry stale bytes from their previous use; decode
	// paths rely on zero-fill semantics, so clear before handing out.
	for i := range buf {
		buf[i] = 0
	}
	return buf
}

// PutBuffer returns a buffer to the pool. The buffer must not be used
// after calling this function.
func PutBuffer(buf []byte) {
	c := cap(buf)
	if c == 0 {
		return
	}
	buf = buf[:c]

	switch c {
	case smallBufferSize:
		bufferPool.small.Put(&buf)
	case mediumBufferSize:
		bufferPool.medium.Put(&buf)
	case largeBufferSize:
		bufferPool.large.Put(&buf)
	}
	// Non-standard sizes are dropped for the GC to collect.
}

// bytesBufferPool pools bytes.Buffer instances for request bodies and
// encoder scratch space.
var bytesBufferPool = sync.Pool{
	New: func() interface{} {
		return new(bytes.Buffer)
	},
}

// GetBytesBuffer returns a reset bytes.Buffer from the pool.
func GetBytesBuffer() *bytes.Buffer {
	buf := bytesBufferPool.Get().(*bytes.Buffer)
	buf.Reset()
	return buf
}

// PutBytesBuffer returns a bytes.Buffer to the pool.
func PutBytesBuffer(buf *bytes.Buffer) {
	if buf == nil || buf.Cap() > largeBufferSize {
		return
	}
	bytesBufferPool.Put(buf)
}
