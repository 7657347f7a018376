package mempool

import "github.com/cockroachdb/errors"

// Validate walks the pool's bookkeeping and reports the first broken
// invariant: segments must tile the buffer in address order, no two
// neighbors may both be free, the gap index must hold exactly the free
// segments in (size, offset) order, and the counters must match.
func (p *Pool) Validate() error {
	if p.closed {
		return nil
	}
	nodes := p.heap.nodes
	total := len(p.buf)

	var (
		offset, allocSize, allocs, gaps, used int
		prevFree                              bool
		prev                                  = nilSlot
	)
	for i := headSlot; i != nilSlot; i = nodes[i].next {
		if used > len(nodes) {
			return errors.New("segment list contains a cycle")
		}
		s := &nodes[i]
		if !s.used {
			return errors.Newf("slot %d is linked but unused", i)
		}
		if s.prev != prev {
			return errors.Newf("slot %d has prev %d, expected %d", i, s.prev, prev)
		}
		if s.offset != offset {
			return errors.Newf("slot %d starts at %d, expected %d", i, s.offset, offset)
		}
		if s.size <= 0 {
			return errors.Newf("slot %d has size %d", i, s.size)
		}
		if s.allocated {
			allocs++
			allocSize += s.size
		} else {
			if prevFree {
				return errors.Newf("slot %d at offset %d is a gap next to another gap", i, s.offset)
			}
			gaps++
		}
		prevFree = !s.allocated
		offset += s.size
		used++
		prev = i
	}
	if offset != total {
		return errors.Newf("segments cover %d bytes of a %d byte pool", offset, total)
	}
	if used != p.heap.used {
		return errors.Newf("%d segments linked, but %d slots marked used", used, p.heap.used)
	}
	inUse := 0
	for i := range nodes {
		if nodes[i].used {
			inUse++
		}
	}
	if inUse != used {
		return errors.Newf("%d slots marked used, but %d are linked", inUse, used)
	}
	if used+len(p.heap.freeSlots) != len(nodes) {
		return errors.Newf("%d used + %d unused slots != capacity %d", used, len(p.heap.freeSlots), len(nodes))
	}
	if allocs != p.numAllocs {
		return errors.Newf("counted %d allocations, pool records %d", allocs, p.numAllocs)
	}
	if allocSize != p.allocSize {
		return errors.Newf("counted %d allocated bytes, pool records %d", allocSize, p.allocSize)
	}
	if allocSize > total {
		return errors.Newf("allocated %d bytes of a %d byte pool", allocSize, total)
	}
	if gaps != p.gaps.n {
		return errors.Newf("counted %d gaps, gap index holds %d", gaps, p.gaps.n)
	}
	return p.validateGapIndex()
}

func (p *Pool) validateGapIndex() error {
	nodes := p.heap.nodes
	seen := make(map[int32]bool, p.gaps.n)
	live := p.gaps.live()
	for i, e := range live {
		if e.size <= 0 {
			return errors.Newf("gap index entry %d has size %d", i, e.size)
		}
		if e.slot < 0 || int(e.slot) >= len(nodes) {
			return errors.Newf("gap index entry %d references slot %d out of range", i, e.slot)
		}
		s := &nodes[e.slot]
		if !s.used || s.allocated {
			return errors.Newf("gap index entry %d references slot %d which is not a gap", i, e.slot)
		}
		if s.size != e.size {
			return errors.Newf("gap index entry %d records size %d, slot %d has %d", i, e.size, e.slot, s.size)
		}
		if seen[e.slot] {
			return errors.Newf("slot %d indexed twice", e.slot)
		}
		seen[e.slot] = true
		if i > 0 && gapLess(e, live[i-1], nodes) {
			return errors.Newf("gap index out of order at entry %d", i)
		}
	}
	for i := p.gaps.n; i < len(p.gaps.entries); i++ {
		if p.gaps.entries[i] != (gapEntry{}) {
			return errors.Newf("gap index trailing entry %d is not cleared", i)
		}
	}
	return nil
}
