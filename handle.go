package mempool

import "fmt"

// Handle identifies one allocation. It must be passed back unchanged to
// Free or Bytes on the pool that issued it. The zero Handle is never valid.
type Handle struct {
	pool uint64
	slot int32
	gen  uint32
}

// IsZero reports whether h is the zero Handle.
func (h Handle) IsZero() bool { return h == Handle{} }

func (h Handle) String() string {
	if h.IsZero() {
		return "Handle(nil)"
	}
	return fmt.Sprintf("Handle(pool=%d slot=%d gen=%d)", h.pool, h.slot, h.gen)
}
