package script

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pavanmanishd/mempool"
)

func newTestRunner(t *testing.T) (*mempool.Registry, *Runner) {
	t.Helper()
	cfg := mempool.DefaultConfig()
	cfg.CheckInvariants = true
	reg := mempool.NewRegistry(cfg)
	require.NoError(t, reg.Init())
	t.Cleanup(func() { _ = reg.Shutdown() })
	return reg, NewRunner(reg, nil)
}

func run(t *testing.T, r *Runner, src string) []Result {
	t.Helper()
	cmds, err := ParseString(src)
	require.NoError(t, err)
	res, err := r.Run(cmds)
	require.NoError(t, err)
	return res
}

func offsets(results []Result) []int {
	var out []int
	for _, r := range results {
		if r.Offset != nil {
			out = append(out, *r.Offset)
		}
	}
	return out
}

func TestRunnerFirstFit(t *testing.T) {
	reg, r := newTestRunner(t)
	res := run(t, r, `
open ff 1024 first-fit
alloc ff a 100
alloc ff b 200
alloc ff c 300
free ff b
inspect ff
`)
	require.Len(t, res, 6)
	for _, x := range res {
		assert.True(t, x.OK, x.String())
	}
	assert.Equal(t, []int{0, 100, 300}, offsets(res))

	insp := res[5]
	assert.Equal(t, []mempool.SegmentInfo{
		{Offset: 0, Size: 100, Allocated: true},
		{Offset: 100, Size: 200},
		{Offset: 300, Size: 300, Allocated: true},
		{Offset: 600, Size: 424},
	}, insp.Segments)
	require.NotNil(t, insp.Metrics)
	assert.Equal(t, 2, insp.Metrics.NumGaps)
	assert.Equal(t, "7: inspect ff -> [0+100 alloc] [100+200 gap] [300+300 alloc] [600+424 gap]", insp.String())

	assert.Equal(t, []string{"ff"}, r.Open())
	require.NoError(t, r.Release())
	assert.Empty(t, r.Open())
	assert.Equal(t, 0, reg.Len())
}

func TestRunnerFailedAllocIsNotAnError(t *testing.T) {
	_, r := newTestRunner(t)
	r.StopOnError = true
	res := run(t, r, `
open p 100 best-fit
alloc p big 100
alloc p small 10
`)
	require.Len(t, res, 3)
	assert.False(t, res[1].OK)
	assert.Empty(t, res[1].Error)
	assert.Equal(t, "3: alloc p big 100 -> no fit", res[1].String())
	assert.True(t, res[2].OK)
	assert.Equal(t, "4: alloc p small 10 -> offset 0", res[2].String())
	require.NoError(t, r.Release())
}

func TestRunnerErrors(t *testing.T) {
	tests := []struct {
		name   string
		script string
		want   string
	}{
		{"unknown pool", "alloc nope a 10", `pool "nope"`},
		{"unknown label", "open p 64 first-fit\nfree p ghost", `label "ghost"`},
		{"duplicate pool", "open p 64 first-fit\nopen p 64 best-fit", "already open"},
		{"duplicate label", "open p 64 first-fit\nalloc p a 8\nalloc p a 8", "already allocated"},
		{"close with live allocations", "open p 64 first-fit\nalloc p a 8\nclose p", "pool not freed"},
		{"zero sized pool", "open p 0 first-fit", "allocation failed"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, r := newTestRunner(t)
			res := run(t, r, tt.script)
			last := res[len(res)-1]
			assert.False(t, last.OK)
			assert.Contains(t, last.Error, tt.want)
			require.NoError(t, r.Release())
		})
	}
}

func TestRunnerStopOnError(t *testing.T) {
	_, r := newTestRunner(t)
	r.StopOnError = true
	cmds, err := ParseString("open p 64 first-fit\nfree p ghost\nclose p")
	require.NoError(t, err)

	res, err := r.Run(cmds)
	require.ErrorIs(t, err, ErrUnknownName)
	assert.Contains(t, err.Error(), "line 2")
	assert.Len(t, res, 2)
	assert.Equal(t, []string{"p"}, r.Open())
	require.NoError(t, r.Release())
}

func TestRunnerContinuesWithoutStopOnError(t *testing.T) {
	reg, r := newTestRunner(t)
	res := run(t, r, "open p 64 first-fit\nfree p ghost\nclose p")
	require.Len(t, res, 3)
	assert.False(t, res[1].OK)
	assert.True(t, res[2].OK)
	assert.Equal(t, 0, reg.Len())
}

func TestScenarios(t *testing.T) {
	scenarios, err := Scenarios()
	require.NoError(t, err)

	var names []string
	for _, s := range scenarios {
		names = append(names, s.Name)
	}
	assert.Equal(t, []string{"best-fit", "coalesce", "first-fit"}, names)

	for _, s := range scenarios {
		t.Run(s.Name, func(t *testing.T) {
			reg, r := newTestRunner(t)
			r.StopOnError = true
			res := run(t, r, s.Source)
			for _, x := range res {
				assert.True(t, x.OK, x.String())
			}
			assert.Empty(t, r.Open(), "scenario leaves pools open")
			assert.Equal(t, 0, reg.Len())
		})
	}
}

func TestBestFitScenarioLayout(t *testing.T) {
	scenarios, err := Scenarios()
	require.NoError(t, err)
	_, r := newTestRunner(t)
	res := run(t, r, scenarios[0].Source)

	var insp Result
	for _, x := range res {
		if x.Segments != nil {
			insp = x
		}
	}
	assert.Equal(t, []mempool.SegmentInfo{
		{Offset: 0, Size: 50, Allocated: true},
		{Offset: 50, Size: 50},
		{Offset: 100, Size: 100, Allocated: true},
		{Offset: 200, Size: 300},
	}, insp.Segments)
}
