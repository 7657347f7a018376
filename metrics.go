package mempool

// TotalSize returns the size of the pool buffer in bytes.
func (p *Pool) TotalSize() int {
	return len(p.buf)
}

// AllocSize returns the number of bytes currently allocated.
func (p *Pool) AllocSize() int {
	return p.allocSize
}

// NumAllocs returns the number of live allocations.
func (p *Pool) NumAllocs() int {
	return p.numAllocs
}

// NumGaps returns the number of free segments.
func (p *Pool) NumGaps() int {
	return p.gaps.n
}

// LargestGap returns the size of the biggest free segment.
func (p *Pool) LargestGap() int {
	return p.gaps.largest()
}

// Utilization returns the ratio of allocated bytes to pool size (0.0 to 1.0).
// Returns 0.0 for a closed pool.
func (p *Pool) Utilization() float64 {
	total := p.TotalSize()
	if total == 0 {
		return 0
	}
	return float64(p.allocSize) / float64(total)
}

// Fragmentation returns 1 - largest gap / free bytes: 0 when all free
// space is one gap, approaching 1 as it splinters.
func (p *Pool) Fragmentation() float64 {
	free := p.TotalSize() - p.allocSize
	if free == 0 {
		return 0
	}
	return 1 - float64(p.LargestGap())/float64(free)
}

// Metrics returns a snapshot of pool statistics.
func (p *Pool) Metrics() PoolMetrics {
	return PoolMetrics{
		TotalSize:        p.TotalSize(),
		AllocSize:        p.allocSize,
		FreeSize:         p.TotalSize() - p.allocSize,
		NumAllocs:        p.numAllocs,
		NumGaps:          p.gaps.n,
		Segments:         p.heap.used,
		NodeCapacity:     p.heap.capacity(),
		GapIndexCapacity: p.gaps.capacity(),
		LargestGap:       p.LargestGap(),
		Utilization:      p.Utilization(),
		Fragmentation:    p.Fragmentation(),
	}
}

// PoolMetrics contains statistical information about a pool.
type PoolMetrics struct {
	TotalSize        int     `json:"total_size"`         // Pool buffer size
	AllocSize        int     `json:"alloc_size"`         // Bytes in live allocations
	FreeSize         int     `json:"free_size"`          // Bytes in gaps
	NumAllocs        int     `json:"num_allocs"`         // Live allocations
	NumGaps          int     `json:"num_gaps"`           // Free segments
	Segments         int     `json:"segments"`           // Active node heap slots
	NodeCapacity     int     `json:"node_capacity"`      // Node heap slots
	GapIndexCapacity int     `json:"gap_index_capacity"` // Gap index slots
	LargestGap       int     `json:"largest_gap"`        // Biggest free segment
	Utilization      float64 `json:"utilization"`        // AllocSize / TotalSize
	Fragmentation    float64 `json:"fragmentation"`      // 1 - LargestGap / FreeSize
}

// Metrics returns a snapshot of registry statistics.
func (r *Registry) Metrics() RegistryMetrics {
	m := RegistryMetrics{
		OpenPools: r.live,
		Capacity:  len(r.slots),
	}
	for _, p := range r.slots {
		if p == nil {
			continue
		}
		m.TotalSize += p.TotalSize()
		m.AllocSize += p.allocSize
		m.NumAllocs += p.numAllocs
	}
	return m
}

// RegistryMetrics aggregates the pools currently registered.
type RegistryMetrics struct {
	OpenPools int `json:"open_pools"`
	Capacity  int `json:"capacity"`
	TotalSize int `json:"total_size"`
	AllocSize int `json:"alloc_size"`
	NumAllocs int `json:"num_allocs"`
}
