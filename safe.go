package mempool

import "sync"

// SafeRegistry is a mutex-protected wrapper around Registry for concurrent access.
type SafeRegistry struct {
	mu    sync.Mutex
	r     *Registry
	pools map[*Pool]*SafePool
}

// NewSafeRegistry creates an uninitialized thread-safe registry.
func NewSafeRegistry(cfg Config) *SafeRegistry {
	return &SafeRegistry{r: NewRegistry(cfg), pools: make(map[*Pool]*SafePool)}
}

// Init thread-safely initializes the registry.
func (s *SafeRegistry) Init() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.r.Init()
}

// Shutdown thread-safely shuts the registry down without closing open pools.
func (s *SafeRegistry) Shutdown() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.r.Shutdown(); err != nil {
		return err
	}
	clear(s.pools)
	return nil
}

// Open thread-safely opens a pool and wraps it in a SafePool.
func (s *SafeRegistry) Open(totalSize int, policy Policy) (*SafePool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, err := s.r.Open(totalSize, policy)
	if err != nil {
		return nil, err
	}
	sp := &SafePool{p: p, reg: s}
	s.pools[p] = sp
	return sp, nil
}

// Len thread-safely returns the number of open pools.
func (s *SafeRegistry) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.r.Len()
}

// Metrics thread-safely returns registry statistics. Pool counters are
// read under each pool's own lock after the registry lock is released, so
// the sums are not one atomic snapshot.
func (s *SafeRegistry) Metrics() RegistryMetrics {
	m, open := s.snapshot()
	for _, sp := range open {
		pm := sp.Metrics()
		m.TotalSize += pm.TotalSize
		m.AllocSize += pm.AllocSize
		m.NumAllocs += pm.NumAllocs
	}
	return m
}

// PoolStats pairs an open pool's identity with its metrics.
type PoolStats struct {
	ID      uint64      `json:"id"`
	Policy  Policy      `json:"policy"`
	Metrics PoolMetrics `json:"metrics"`
}

// Stats thread-safely returns per-pool statistics in slot order.
func (s *SafeRegistry) Stats() []PoolStats {
	_, open := s.snapshot()
	out := make([]PoolStats, 0, len(open))
	for _, sp := range open {
		sp.mu.Lock()
		if !sp.p.Closed() {
			out = append(out, PoolStats{ID: sp.p.ID(), Policy: sp.p.Policy(), Metrics: sp.p.Metrics()})
		}
		sp.mu.Unlock()
	}
	return out
}

// snapshot returns the registry counters and the open pools, taken under
// the registry lock only.
func (s *SafeRegistry) snapshot() (RegistryMetrics, []*SafePool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m := RegistryMetrics{OpenPools: s.r.Len(), Capacity: s.r.Capacity()}
	open := make([]*SafePool, 0, len(s.pools))
	for _, p := range s.r.Pools() {
		open = append(open, s.pools[p])
	}
	return m, open
}

// SafePool is a mutex-protected wrapper around Pool for concurrent access.
// Payload slices returned by Bytes are not protected.
type SafePool struct {
	mu  sync.Mutex
	p   *Pool
	reg *SafeRegistry
}

// Alloc thread-safely reserves size bytes.
func (s *SafePool) Alloc(size int) (Handle, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.p.Alloc(size)
}

// Free thread-safely releases an allocation.
func (s *SafePool) Free(h Handle) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.p.Free(h)
}

// Bytes thread-safely resolves the payload of an allocation.
func (s *SafePool) Bytes(h Handle) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.p.Bytes(h)
}

// Inspect thread-safely snapshots the segment layout.
func (s *SafePool) Inspect() []SegmentInfo {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.p.Inspect()
}

// Validate thread-safely checks the pool's invariants.
func (s *SafePool) Validate() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.p.Validate()
}

// Metrics thread-safely returns a snapshot of pool statistics.
func (s *SafePool) Metrics() PoolMetrics {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.p.Metrics()
}

// Close thread-safely closes the pool. The pool lock is taken before the
// registry lock.
func (s *SafePool) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reg.mu.Lock()
	defer s.reg.mu.Unlock()
	if err := s.p.Close(); err != nil {
		return err
	}
	delete(s.reg.pools, s.p)
	return nil
}
