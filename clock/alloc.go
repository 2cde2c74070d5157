package clock

import "fmt"

// BufferAllocator provides draw buffer memory.
type BufferAllocator interface {
	Alloc(n int) ([]byte, error)
	Free(buf []byte)
}

// HeapAllocator allocates draw buffers from the Go heap.
type HeapAllocator struct{}

func (HeapAllocator) Alloc(n int) ([]byte, error) {
	if n <= 0 {
		return nil, fmt.Errorf("invalid buffer size %d", n)
	}
	return make([]byte, n), nil
}

func (HeapAllocator) Free([]byte) {}
