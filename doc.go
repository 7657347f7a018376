// Package mempool implements pool-scoped memory management with
// first-fit and best-fit placement.
//
// # Overview
//
// A Pool is a fixed-size byte arena. Every byte of it belongs to exactly
// one segment, and a segment is either allocated or a free gap. Allocation
// carves the requested bytes out of the front of a gap; freeing merges the
// segment back with any free neighbor, so two gaps are never adjacent.
// This gives deterministic, pool-local memory management for software that
// does not want to go through a general-purpose heap:
//
//   - Fixed memory budgets per subsystem
//   - Predictable placement and fragmentation behavior
//   - Explicit, checkable lifetime of every allocation
//
// # Basic Usage
//
//	reg := mempool.NewRegistry(mempool.DefaultConfig())
//	if err := reg.Init(); err != nil {
//	    return err
//	}
//	defer reg.Shutdown()
//
//	pool, err := reg.Open(1<<20, mempool.BestFit)
//	if err != nil {
//	    return err
//	}
//
//	h, ok := pool.Alloc(256)
//	if !ok {
//	    // no gap large enough
//	}
//	buf, _ := pool.Bytes(h)
//	copy(buf, payload)
//
//	_ = pool.Free(h)
//	_ = pool.Close() // fails with ErrNotFreed while allocations are live
//
// # Placement Policies
//
// FirstFit walks the segments in address order and takes the first gap
// that is large enough. BestFit consults the gap index, kept sorted by
// (size, offset), and takes the smallest gap that is large enough.
//
// A request is only admitted when it is strictly smaller than the pool and
// strictly smaller than the bytes not yet allocated, so an allocation can
// never fill a pool completely.
//
// # Registry
//
// A Registry is an explicit context object rather than process-wide state.
// Init and Shutdown bracket its lifetime. Shutdown does not close pools
// that are still open; closing them stays the caller's job.
//
// # Handles
//
// Alloc returns a Handle that carries the pool identity, the node heap slot
// and a generation number. Free and Bytes reject handles from other pools,
// handles that were already freed, and handles whose slot has since been
// reused, with ErrInvalidHandle.
//
// # Thread Safety
//
// Registry and Pool are not thread-safe. For concurrent access, use
// SafeRegistry, whose Open returns a SafePool:
//
//	reg := mempool.NewSafeRegistry(mempool.DefaultConfig())
//	_ = reg.Init()
//	pool, _ := reg.Open(4096, mempool.FirstFit)
//	h, ok := pool.Alloc(64) // safe from any goroutine
//
// # Backing Memory
//
// Pool buffers come from the Go heap by default. Setting Config.Backing to
// "mmap" maps anonymous memory outside the Go heap on unix systems; a
// custom BackingSource can be supplied through Config.Source.
//
// # Metrics and Validation
//
//	m := pool.Metrics()
//	fmt.Printf("Utilization: %.2f%%\n", m.Utilization*100)
//	fmt.Printf("Largest gap: %d bytes\n", m.LargestGap)
//
//	if err := pool.Validate(); err != nil {
//	    // bookkeeping is corrupt
//	}
//
// Building with the prometheus tag adds NewCollector, which exports the
// metrics of every pool in a SafeRegistry.
//
// With Config.CheckInvariants set, every Alloc and Free validates the pool
// afterwards and panics on the first violation.
package mempool
