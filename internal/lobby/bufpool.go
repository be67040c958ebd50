package lobby

import (
	"fmt"
	"sync"

	"github.com/udisondev/partylobby/internal/crypto"
	"github.com/udisondev/partylobby/internal/protocol"
)

// BytePool is a pool of reusable []byte buffers.
type BytePool struct {
	pool sync.Pool
}

// NewBytePool creates a buffer pool with the specified default capacity for new slices.
func NewBytePool(defaultCap int) *BytePool {
	p := &BytePool{}
	p.pool.New = func() any {
		return make([]byte, 0, defaultCap)
	}
	return p
}

// Get returns a zeroed slice of length size, preferably from the pool.
func (p *BytePool) Get(size int) []byte {
	b := p.pool.Get().([]byte)
	if cap(b) < size {
		p.pool.Put(b)
		return make([]byte, size)
	}
	b = b[:size]
	clear(b)
	return b
}

// Put returns the slice to the pool for reuse.
func (p *BytePool) Put(b []byte) {
	if b == nil {
		return
	}
	p.pool.Put(b[:0])
}

// EncryptToPooled copies payload into a pooled buffer, frames and encrypts it.
// The returned slice is owned by the caller and goes back via Put.
func (p *BytePool) EncryptToPooled(enc *crypto.SessionCipher, payload []byte) ([]byte, error) {
	buf := p.Get(protocol.HeaderSize + len(payload) + protocol.BufferPadding)
	copy(buf[protocol.HeaderSize:], payload)

	n, err := protocol.EncryptInPlace(enc, buf, len(payload))
	if err != nil {
		p.Put(buf)
		return nil, fmt.Errorf("encrypting to pooled buffer: %w", err)
	}
	return buf[:n], nil
}
