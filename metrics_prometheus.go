//go:build prometheus

package mempool

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

// Collector implements prometheus.Collector over a SafeRegistry. Every
// scrape reads the registry and each open pool under their own locks.
//
//	reg := mempool.NewSafeRegistry(mempool.DefaultConfig())
//	prometheus.MustRegister(mempool.NewCollector(reg, "myapp"))
type Collector struct {
	reg *SafeRegistry

	openPools *prometheus.Desc
	capacity  *prometheus.Desc

	poolTotal         *prometheus.Desc
	poolAlloc         *prometheus.Desc
	poolFree          *prometheus.Desc
	poolAllocs        *prometheus.Desc
	poolGaps          *prometheus.Desc
	poolLargestGap    *prometheus.Desc
	poolSegments      *prometheus.Desc
	poolFragmentation *prometheus.Desc
}

// NewCollector creates a collector whose metrics live under namespace,
// subsystem "mempool".
func NewCollector(reg *SafeRegistry, namespace string) *Collector {
	const subsystem = "mempool"
	labels := []string{"pool", "policy"}
	desc := func(name, help string, labels []string) *prometheus.Desc {
		return prometheus.NewDesc(prometheus.BuildFQName(namespace, subsystem, name), help, labels, nil)
	}
	return &Collector{
		reg:       reg,
		openPools: desc("open_pools", "Number of open pools in the registry", nil),
		capacity:  desc("registry_capacity", "Number of registry slots", nil),

		poolTotal:         desc("pool_size_bytes", "Pool buffer size", labels),
		poolAlloc:         desc("pool_allocated_bytes", "Bytes in live allocations", labels),
		poolFree:          desc("pool_free_bytes", "Bytes in gaps", labels),
		poolAllocs:        desc("pool_allocations", "Live allocations", labels),
		poolGaps:          desc("pool_gaps", "Free segments", labels),
		poolLargestGap:    desc("pool_largest_gap_bytes", "Size of the biggest free segment", labels),
		poolSegments:      desc("pool_segments", "Active node heap slots", labels),
		poolFragmentation: desc("pool_fragmentation", "1 - largest gap / free bytes (0-1)", labels),
	}
}

// Describe implements prometheus.Collector
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	for _, d := range []*prometheus.Desc{
		c.openPools, c.capacity,
		c.poolTotal, c.poolAlloc, c.poolFree, c.poolAllocs,
		c.poolGaps, c.poolLargestGap, c.poolSegments, c.poolFragmentation,
	} {
		ch <- d
	}
}

// Collect implements prometheus.Collector
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	m := c.reg.Metrics()
	ch <- prometheus.MustNewConstMetric(c.openPools, prometheus.GaugeValue, float64(m.OpenPools))
	ch <- prometheus.MustNewConstMetric(c.capacity, prometheus.GaugeValue, float64(m.Capacity))

	for _, ps := range c.reg.Stats() {
		id, policy := strconv.FormatUint(ps.ID, 10), ps.Policy.String()
		gauge := func(d *prometheus.Desc, v float64) {
			ch <- prometheus.MustNewConstMetric(d, prometheus.GaugeValue, v, id, policy)
		}
		pm := ps.Metrics
		gauge(c.poolTotal, float64(pm.TotalSize))
		gauge(c.poolAlloc, float64(pm.AllocSize))
		gauge(c.poolFree, float64(pm.FreeSize))
		gauge(c.poolAllocs, float64(pm.NumAllocs))
		gauge(c.poolGaps, float64(pm.NumGaps))
		gauge(c.poolLargestGap, float64(pm.LargestGap))
		gauge(c.poolSegments, float64(pm.Segments))
		gauge(c.poolFragmentation, pm.Fragmentation)
	}
}
