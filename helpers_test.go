package mempool

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// newTestRegistry returns an initialized registry with invariant checking
// enabled, shut down when the test ends.
func newTestRegistry(t testing.TB, mutate ...func(*Config)) *Registry {
	t.Helper()
	cfg := DefaultConfig()
	cfg.CheckInvariants = true
	for _, m := range mutate {
		m(&cfg)
	}
	r := NewRegistry(cfg)
	require.NoError(t, r.Init())
	t.Cleanup(func() {
		if r.Initialized() {
			_ = r.Shutdown()
		}
	})
	return r
}

func newTestPool(t testing.TB, size int, policy Policy, mutate ...func(*Config)) *Pool {
	t.Helper()
	p, err := newTestRegistry(t, mutate...).Open(size, policy)
	require.NoError(t, err)
	return p
}

func mustAlloc(t testing.TB, p *Pool, size int) Handle {
	t.Helper()
	h, ok := p.Alloc(size)
	require.True(t, ok, "Alloc(%d) failed on %v", size, p.Inspect())
	return h
}

func mustOffset(t testing.TB, p *Pool, h Handle) int {
	t.Helper()
	off, err := p.Offset(h)
	require.NoError(t, err)
	return off
}

// assertInvariants fails the test if the pool's bookkeeping is inconsistent.
func assertInvariants(t testing.TB, p *Pool) {
	t.Helper()
	require.NoError(t, p.Validate())
}

// seg is shorthand for building expected layouts.
func seg(offset, size int, allocated bool) SegmentInfo {
	return SegmentInfo{Offset: offset, Size: size, Allocated: allocated}
}

// gapSizes returns the sizes held by the gap index in index order.
func gapSizes(p *Pool) []int {
	var out []int
	for _, e := range p.gaps.live() {
		out = append(out, e.size)
	}
	return out
}
