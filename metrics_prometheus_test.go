//go:build prometheus

package mempool

import (
	"strconv"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollector(t *testing.T) {
	reg := NewSafeRegistry(DefaultConfig())
	require.NoError(t, reg.Init())
	defer reg.Shutdown()

	p, err := reg.Open(1024, BestFit)
	require.NoError(t, err)
	h, ok := p.Alloc(100)
	require.True(t, ok)

	c := NewCollector(reg, "test")
	_, err = testutil.CollectAndLint(c)
	require.NoError(t, err)
	// 2 registry gauges + 8 per pool.
	assert.Equal(t, 10, testutil.CollectAndCount(c))

	promReg := prometheus.NewPedanticRegistry()
	require.NoError(t, promReg.Register(c))

	id := strconv.FormatUint(p.p.ID(), 10)
	expected := `
# HELP test_mempool_open_pools Number of open pools in the registry
# TYPE test_mempool_open_pools gauge
test_mempool_open_pools 1
# HELP test_mempool_pool_allocated_bytes Bytes in live allocations
# TYPE test_mempool_pool_allocated_bytes gauge
test_mempool_pool_allocated_bytes{policy="best-fit",pool="` + id + `"} 100
# HELP test_mempool_pool_free_bytes Bytes in gaps
# TYPE test_mempool_pool_free_bytes gauge
test_mempool_pool_free_bytes{policy="best-fit",pool="` + id + `"} 924
`
	require.NoError(t, testutil.GatherAndCompare(promReg, strings.NewReader(expected),
		"test_mempool_open_pools", "test_mempool_pool_allocated_bytes", "test_mempool_pool_free_bytes"))

	require.NoError(t, p.Free(h))
	require.NoError(t, p.Close())
	assert.Equal(t, 2, testutil.CollectAndCount(c))
}
