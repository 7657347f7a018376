package mempool

import (
	"math"
	"unsafe"
)

// AllocBytes reserves n bytes and returns them zeroed together with the handle.
func AllocBytes(p *Pool, n int) (Handle, []byte, bool) {
	h, ok := p.Alloc(n)
	if !ok {
		return Handle{}, nil, false
	}
	b, _ := p.Bytes(h)
	clear(b)
	return h, b, true
}

// AllocCopy reserves len(src) bytes and copies src into them.
func AllocCopy(p *Pool, src []byte) (Handle, []byte, bool) {
	h, ok := p.Alloc(len(src))
	if !ok {
		return Handle{}, nil, false
	}
	b, _ := p.Bytes(h)
	copy(b, src)
	return h, b, true
}

// AllocSlice reserves room for n zeroed values of type T. Pools make no
// alignment promise beyond their buffer, so it fails, releasing the
// reservation, when the placed segment is not aligned for T. T must not
// contain pointers: pool memory is invisible to the garbage collector.
func AllocSlice[T any](p *Pool, n int) (Handle, []T, bool) {
	var zero T
	elemSize := int(unsafe.Sizeof(zero))
	if n <= 0 || elemSize == 0 || n > math.MaxInt/elemSize {
		return Handle{}, nil, false
	}
	h, b, ok := AllocBytes(p, elemSize*n)
	if !ok {
		return Handle{}, nil, false
	}
	if uintptr(unsafe.Pointer(&b[0]))%unsafe.Alignof(zero) != 0 {
		_ = p.Free(h)
		return Handle{}, nil, false
	}
	return h, unsafe.Slice((*T)(unsafe.Pointer(&b[0])), n), true
}
