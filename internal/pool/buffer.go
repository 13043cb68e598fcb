// Package pool provides reusable chunk buffers for download operations.
//
// Sequential chunked downloads read one fixed-size window at a time; pooling
// the window buffer keeps steady-state allocation at a single chunk.
package pool

import (
	"sync"
)

// ChunkPool manages reusable byte buffers of a fixed capacity.
type ChunkPool struct {
	size int64
	pool *sync.Pool
}

// NewChunkPool creates a pool handing out buffers with capacity size.
func NewChunkPool(size int64) *ChunkPool {
	return &ChunkPool{
		size: size,
		pool: &sync.Pool{
			New: func() interface{} {
				buf := make([]byte, 0, size)
				return &buf
			},
		},
	}
}

// Get returns a zero-length buffer with the pool's capacity.
// The caller is responsible for calling Put to return it.
func (p *ChunkPool) Get() []byte {
	bufPtr := p.pool.Get().(*[]byte)
	return (*bufPtr)[:0]
}

// Put returns a buffer to the pool. Buffers whose capacity no longer matches
// the pool (callers may have grown them) are dropped.
func (p *ChunkPool) Put(buf []byte) {
	if int64(cap(buf)) != p.size {
		return
	}
	buf = buf[:0]
	p.pool.Put(&buf)
}

// Size returns the buffer capacity this pool hands out.
func (p *ChunkPool) Size() int64 {
	return p.size
}
