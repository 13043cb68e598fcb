package pool

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestChunkPool(t *testing.T) {
	t.Run("buffers start empty with the configured capacity", func(t *testing.T) {
		p := NewChunkPool(64)

		buf := p.Get()
		assert.Len(t, buf, 0)
		assert.Equal(t, 64, cap(buf))
		assert.Equal(t, int64(64), p.Size())
	})

	t.Run("reused buffers come back empty", func(t *testing.T) {
		p := NewChunkPool(8)

		buf := p.Get()
		buf = append(buf, 1, 2, 3)
		p.Put(buf)

		got := p.Get()
		assert.Len(t, got, 0)
	})

	t.Run("drops buffers of the wrong capacity", func(t *testing.T) {
		p := NewChunkPool(16)

		// Must not panic or poison the pool.
		p.Put(make([]byte, 0, 4))
		p.Put(nil)

		buf := p.Get()
		assert.Equal(t, 16, cap(buf))
	})
}
