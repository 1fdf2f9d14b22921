package encryption

import (
	"sync"
)

// bufferPool recycles chunk-sized buffers within a single box/unbox call.
type bufferPool struct {
	size int
	pool sync.Pool
}

func newBufferPool(size int) *bufferPool {
	p := &bufferPool{size: size}
	p.pool.New = func() any {
		return make([]byte, size)
	}

	return p
}

// get returns a buffer of length n, which must not exceed the pool's chunk size.
func (p *bufferPool) get(n int) []byte {
	buf, _ := p.pool.Get().([]byte)

	return buf[:n]
}

func (p *bufferPool) put(buf []byte) {
	if cap(buf) != p.size {
		return
	}

	clear(buf[:cap(buf)])
	p.pool.Put(buf[:cap(buf)]) //nolint:staticcheck
}
