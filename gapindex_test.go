package mempool

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeNodes builds a node slice whose slot i sits at offsets[i].
func fakeNodes(offsets ...int) []segment {
	nodes := make([]segment, len(offsets))
	for i, off := range offsets {
		nodes[i] = segment{offset: off, used: true, prev: nilSlot, next: nilSlot}
	}
	return nodes
}

func TestGapIndexInsertKeepsOrder(t *testing.T) {
	nodes := fakeNodes(0, 100, 200, 300, 400)
	g := newGapIndex(8, DefaultFillFactor, DefaultExpandFactor)

	g.insert(50, 3, nodes)
	g.insert(10, 1, nodes)
	g.insert(50, 0, nodes)
	g.insert(70, 2, nodes)
	g.insert(50, 4, nodes)

	assert.Equal(t, []gapEntry{
		{size: 10, slot: 1},
		{size: 50, slot: 0},
		{size: 50, slot: 3},
		{size: 50, slot: 4},
		{size: 70, slot: 2},
	}, g.live())
	for i := g.n; i < g.capacity(); i++ {
		assert.Equal(t, gapEntry{}, g.entries[i], "trailing entry %d", i)
	}
}

func TestGapIndexRemove(t *testing.T) {
	nodes := fakeNodes(0, 100, 200, 300)
	g := newGapIndex(4, 0.9, DefaultExpandFactor)
	for slot, size := range []int{40, 10, 30, 20} {
		g.insert(size, int32(slot), nodes)
	}
	require.Equal(t, 4, g.n)

	assert.True(t, g.remove(3))
	assert.Equal(t, []gapEntry{{10, 1}, {30, 2}, {40, 0}}, g.live())
	assert.Equal(t, gapEntry{}, g.entries[3])

	assert.False(t, g.remove(3), "removing an absent slot")
	assert.Equal(t, 3, g.n)

	assert.True(t, g.remove(0))
	assert.True(t, g.remove(1))
	assert.True(t, g.remove(2))
	assert.Equal(t, 0, g.n)
	assert.Equal(t, 0, g.largest())
	for _, e := range g.entries {
		assert.Equal(t, gapEntry{}, e)
	}
}

func TestGapIndexBestFit(t *testing.T) {
	nodes := fakeNodes(0, 100, 200, 300)
	g := newGapIndex(8, DefaultFillFactor, DefaultExpandFactor)
	g.insert(30, 0, nodes)
	g.insert(10, 1, nodes)
	g.insert(30, 2, nodes)
	g.insert(90, 3, nodes)

	tests := []struct {
		size int
		slot int32
		ok   bool
	}{
		{1, 1, true},
		{10, 1, true},
		{11, 0, true},
		{30, 0, true},
		{31, 3, true},
		{90, 3, true},
		{91, nilSlot, false},
	}
	for _, tt := range tests {
		slot, ok := g.bestFit(tt.size)
		assert.Equal(t, tt.ok, ok, "bestFit(%d)", tt.size)
		assert.Equal(t, tt.slot, slot, "bestFit(%d)", tt.size)
	}
	assert.Equal(t, 90, g.largest())
}

func TestGapIndexGrowth(t *testing.T) {
	offsets := make([]int, 20)
	for i := range offsets {
		offsets[i] = i * 10
	}
	nodes := fakeNodes(offsets...)
	g := newGapIndex(4, DefaultFillFactor, DefaultExpandFactor)

	var grew []int
	for i := 19; i >= 0; i-- {
		if g.insert(i+1, int32(i), nodes) {
			grew = append(grew, g.capacity())
		}
	}
	assert.Equal(t, []int{8, 16, 32}, grew)
	assert.Equal(t, 20, g.n)
	for i, e := range g.live() {
		assert.Equal(t, i+1, e.size)
	}
}

func TestGapLess(t *testing.T) {
	nodes := fakeNodes(0, 100)
	empty := gapEntry{}

	assert.True(t, gapLess(gapEntry{5, 0}, empty, nodes), "occupied sorts before empty")
	assert.False(t, gapLess(empty, gapEntry{5, 0}, nodes))
	assert.False(t, gapLess(empty, empty, nodes))
	assert.True(t, gapLess(gapEntry{5, 1}, gapEntry{6, 0}, nodes))
	assert.True(t, gapLess(gapEntry{5, 0}, gapEntry{5, 1}, nodes))
	assert.False(t, gapLess(gapEntry{5, 1}, gapEntry{5, 0}, nodes))
}
