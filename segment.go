package mempool

import (
	"math"

	"github.com/cockroachdb/errors"
)

// nilSlot terminates the address-ordered list.
const nilSlot int32 = -1

// headSlot always holds the segment at offset 0: it has no predecessor,
// so coalescing never retires it.
const headSlot int32 = 0

// segment is one slot of a pool's node heap. A used slot describes a
// contiguous byte range [offset, offset+size) of the pool buffer.
type segment struct {
	offset    int
	size      int
	allocated bool
	used      bool
	prev      int32
	next      int32
	gen       uint32 // bumped on every allocation of this slot
}

// nodeHeap is the growable array of segments plus a stack of unused slots.
type nodeHeap struct {
	nodes     []segment
	freeSlots []int32 // unused slots, lowest index on top
	used      int
	fill      float64
	expand    int
	max       int
}

func newNodeHeap(initCap int, fill float64, expand, max int) nodeHeap {
	h := nodeHeap{fill: fill, expand: expand, max: max}
	h.nodes = make([]segment, 0, initCap)
	h.extend(initCap)
	return h
}

// extend appends n unused slots.
func (h *nodeHeap) extend(n int) {
	first := len(h.nodes)
	for i := 0; i < n; i++ {
		h.nodes = append(h.nodes, segment{prev: nilSlot, next: nilSlot})
	}
	// Push in reverse so the lowest new slot is taken first.
	for i := first + n - 1; i >= first; i-- {
		h.freeSlots = append(h.freeSlots, int32(i))
	}
}

func (h *nodeHeap) capacity() int { return len(h.nodes) }

// needsGrow reports whether the fill ratio is above the threshold or no
// unused slot is left for a split.
func (h *nodeHeap) needsGrow() bool {
	return float64(h.used)/float64(len(h.nodes)) > h.fill || len(h.freeSlots) == 0
}

// grow expands the heap by the expand factor. It leaves the heap untouched
// and returns ErrAllocationFailed when the cap would be exceeded.
func (h *nodeHeap) grow() error {
	cur := len(h.nodes)
	target := cur * h.expand
	if target > math.MaxInt32 {
		target = math.MaxInt32
	}
	if h.max > 0 && target > h.max {
		target = h.max
	}
	if target <= cur {
		return errors.Wrapf(ErrAllocationFailed, "node heap at capacity %d", cur)
	}
	grown := make([]segment, cur, target)
	copy(grown, h.nodes)
	h.nodes = grown
	h.extend(target - cur)
	return nil
}

// activate takes an unused slot and initializes it as a free segment.
func (h *nodeHeap) activate(offset, size int) int32 {
	n := len(h.freeSlots)
	if n == 0 {
		panic("mempool: node heap has no unused slot")
	}
	slot := h.freeSlots[n-1]
	h.freeSlots = h.freeSlots[:n-1]
	s := &h.nodes[slot]
	gen := s.gen
	*s = segment{offset: offset, size: size, used: true, prev: nilSlot, next: nilSlot, gen: gen}
	h.used++
	return slot
}

// retire unlinks a slot from the address list and marks it unused.
func (h *nodeHeap) retire(slot int32) {
	s := &h.nodes[slot]
	if s.prev != nilSlot {
		h.nodes[s.prev].next = s.next
	}
	if s.next != nilSlot {
		h.nodes[s.next].prev = s.prev
	}
	gen := s.gen
	*s = segment{prev: nilSlot, next: nilSlot, gen: gen}
	h.used--
	h.freeSlots = append(h.freeSlots, slot)
}

// linkAfter splices slot into the list right after at.
func (h *nodeHeap) linkAfter(at, slot int32) {
	a := &h.nodes[at]
	s := &h.nodes[slot]
	s.prev = at
	s.next = a.next
	if a.next != nilSlot {
		h.nodes[a.next].prev = slot
	}
	a.next = slot
}
