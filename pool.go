package mempool

import (
	"log/slog"

	"github.com/cockroachdb/errors"
)

// Pool is one fixed-size arena carved into allocated segments and gaps.
// Not goroutine-safe; use SafePool for concurrent access.
type Pool struct {
	id     uint64
	reg    *Registry
	buf    []byte
	src    BackingSource
	policy Policy

	allocSize int
	numAllocs int

	heap nodeHeap
	gaps gapIndex

	closed bool
	check  bool
	log    *slog.Logger
}

// newPool builds a pool whose single gap spans the whole buffer.
func newPool(reg *Registry, id uint64, totalSize int, policy Policy, cfg Config) (*Pool, error) {
	if totalSize <= 0 {
		return nil, errors.Wrapf(ErrAllocationFailed, "pool size %d must be positive", totalSize)
	}
	if !policy.valid() {
		return nil, errors.Wrapf(ErrAllocationFailed, "unknown policy %d", policy)
	}

	src := cfg.source()
	buf, err := src.Alloc(totalSize)
	if err != nil {
		if errors.Is(err, ErrAllocationFailed) {
			return nil, err
		}
		return nil, errors.WithSecondaryError(
			errors.Wrapf(ErrAllocationFailed, "backing buffer of %d bytes", totalSize), err)
	}
	if len(buf) != totalSize {
		_ = src.Release(buf)
		return nil, errors.Wrapf(ErrAllocationFailed, "backing returned %d bytes, want %d", len(buf), totalSize)
	}

	p := &Pool{
		id:     id,
		reg:    reg,
		buf:    buf,
		src:    src,
		policy: policy,
		heap:   newNodeHeap(cfg.NodeHeapInitCapacity, cfg.NodeHeapFillFactor, cfg.NodeHeapExpandFactor, cfg.MaxSegments),
		gaps:   newGapIndex(cfg.GapIndexInitCapacity, cfg.GapIndexFillFactor, cfg.GapIndexExpandFactor),
		check:  cfg.CheckInvariants,
		log:    cfg.logger().With("pool", id),
	}
	whole := p.heap.activate(0, totalSize)
	p.gaps.insert(totalSize, whole, p.heap.nodes)
	p.log.Debug("pool opened", "size", totalSize, "policy", policy.String())
	return p, nil
}

// Close releases the pool. It fails with ErrNotFreed, leaving the pool
// untouched, unless every allocation has been freed.
func (p *Pool) Close() error {
	if p.closed {
		return errors.Wrapf(ErrInvalidHandle, "pool %d already closed", p.id)
	}
	if p.gaps.n != 1 || p.numAllocs != 0 {
		return errors.Wrapf(ErrNotFreed, "pool %d has %d allocations and %d gaps",
			p.id, p.numAllocs, p.gaps.n)
	}
	if err := p.src.Release(p.buf); err != nil {
		return err
	}
	p.buf = nil
	p.heap = nodeHeap{}
	p.gaps = gapIndex{}
	p.closed = true
	if p.reg != nil {
		p.reg.unregister(p)
		p.reg = nil
	}
	p.log.Debug("pool closed")
	return nil
}

// Closed reports whether Close has succeeded.
func (p *Pool) Closed() bool { return p.closed }

// ID returns the registry-assigned identifier of the pool.
func (p *Pool) ID() uint64 { return p.id }

// Policy returns the placement policy fixed at open.
func (p *Pool) Policy() Policy { return p.policy }

// Alloc reserves size bytes. It returns false, without changing the pool,
// when no gap can hold the request. A request must be strictly smaller
// than both the pool and the bytes not yet allocated.
func (p *Pool) Alloc(size int) (Handle, bool) {
	if p.closed || size <= 0 || p.gaps.n == 0 {
		return Handle{}, false
	}
	total := len(p.buf)
	if size >= total || size >= total-p.allocSize {
		return Handle{}, false
	}

	if p.heap.needsGrow() {
		before := p.heap.capacity()
		if err := p.heap.grow(); err != nil {
			if len(p.heap.freeSlots) == 0 {
				p.log.Debug("node heap exhausted", "capacity", before, "err", err)
				return Handle{}, false
			}
		} else {
			p.log.Debug("node heap grown", "from", before, "to", p.heap.capacity())
		}
	}

	slot, ok := p.findGap(size)
	if !ok {
		return Handle{}, false
	}

	p.gaps.remove(slot)
	s := &p.heap.nodes[slot]
	residual := s.size - size
	s.size = size
	s.allocated = true
	s.gen++
	p.numAllocs++
	p.allocSize += size
	h := Handle{pool: p.id, slot: slot, gen: s.gen}

	if residual > 0 {
		rest := p.heap.activate(s.offset+size, residual)
		p.heap.linkAfter(slot, rest)
		p.indexGap(rest)
	}

	p.checkInvariants("alloc")
	return h, true
}

// findGap picks the free segment for a request according to the policy.
func (p *Pool) findGap(size int) (int32, bool) {
	if p.policy == BestFit {
		return p.gaps.bestFit(size)
	}
	nodes := p.heap.nodes
	for i := headSlot; i != nilSlot; i = nodes[i].next {
		s := &nodes[i]
		if s.used && !s.allocated && s.size >= size {
			return i, true
		}
	}
	return nilSlot, false
}

func (p *Pool) indexGap(slot int32) {
	before := p.gaps.capacity()
	if p.gaps.insert(p.heap.nodes[slot].size, slot, p.heap.nodes) {
		p.log.Debug("gap index grown", "from", before, "to", p.gaps.capacity())
	}
}

// Free returns an allocation to the pool and merges it with free
// neighbors. It fails with ErrInvalidHandle for handles that do not name a
// live allocation of this pool, including a second Free of the same handle.
func (p *Pool) Free(h Handle) error {
	slot, err := p.lookup(h)
	if err != nil {
		return err
	}

	nodes := p.heap.nodes
	s := &nodes[slot]
	s.allocated = false
	p.numAllocs--
	p.allocSize -= s.size

	if next := s.next; next != nilSlot && !nodes[next].allocated {
		p.gaps.remove(next)
		s.size += nodes[next].size
		p.heap.retire(next)
	}

	if prev := s.prev; prev != nilSlot && !nodes[prev].allocated {
		p.gaps.remove(prev)
		nodes[prev].size += s.size
		p.heap.retire(slot)
		p.indexGap(prev)
	} else {
		p.indexGap(slot)
	}

	p.checkInvariants("free")
	return nil
}

// Bytes returns the payload of a live allocation. The slice is capped at
// the allocation size and stays valid until the handle is freed.
func (p *Pool) Bytes(h Handle) ([]byte, error) {
	slot, err := p.lookup(h)
	if err != nil {
		return nil, err
	}
	s := p.heap.nodes[slot]
	return p.buf[s.offset : s.offset+s.size : s.offset+s.size], nil
}

// Offset returns the byte offset of a live allocation within the pool.
func (p *Pool) Offset(h Handle) (int, error) {
	slot, err := p.lookup(h)
	if err != nil {
		return 0, err
	}
	return p.heap.nodes[slot].offset, nil
}

// lookup resolves a handle to its slot, rejecting anything that is not a
// live allocation issued by this pool.
func (p *Pool) lookup(h Handle) (int32, error) {
	if p.closed {
		return nilSlot, errors.Wrapf(ErrInvalidHandle, "pool %d is closed", p.id)
	}
	if h.pool != p.id {
		return nilSlot, errors.Wrapf(ErrInvalidHandle, "%s does not belong to pool %d", h, p.id)
	}
	if h.slot < 0 || int(h.slot) >= len(p.heap.nodes) {
		return nilSlot, errors.Wrapf(ErrInvalidHandle, "%s is out of range", h)
	}
	s := &p.heap.nodes[h.slot]
	if !s.used || !s.allocated || s.gen != h.gen {
		return nilSlot, errors.Wrapf(ErrInvalidHandle, "%s is not a live allocation", h)
	}
	return h.slot, nil
}

// Inspect returns every segment in address order. It returns nil for a
// closed pool.
func (p *Pool) Inspect() []SegmentInfo {
	if p.closed {
		return nil
	}
	nodes := p.heap.nodes
	out := make([]SegmentInfo, 0, p.heap.used)
	for i := headSlot; i != nilSlot; i = nodes[i].next {
		s := &nodes[i]
		out = append(out, SegmentInfo{Offset: s.offset, Size: s.size, Allocated: s.allocated})
	}
	return out
}

func (p *Pool) checkInvariants(op string) {
	if !p.check {
		return
	}
	if err := p.Validate(); err != nil {
		panic(errors.Wrapf(err, "mempool: invariant violated after %s", op))
	}
}
