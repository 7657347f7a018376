package mempool

import "sort"

// gapEntry indexes one free segment. slot is a weak reference into the
// node heap; size 0 marks an unoccupied trailing entry.
type gapEntry struct {
	size int
	slot int32
}

// gapIndex keeps the free segments of a pool sorted by (size, offset).
// Entries [0,n) are live; entries [n,len) are zero-cleared.
type gapIndex struct {
	entries []gapEntry
	n       int
	fill    float64
	expand  int
}

func newGapIndex(initCap int, fill float64, expand int) gapIndex {
	return gapIndex{
		entries: make([]gapEntry, initCap),
		fill:    fill,
		expand:  expand,
	}
}

func (g *gapIndex) capacity() int { return len(g.entries) }

// maybeGrow expands the array when the fill ratio is above the threshold
// or no trailing slot is left, and reports whether it did.
func (g *gapIndex) maybeGrow() bool {
	if float64(g.n)/float64(len(g.entries)) <= g.fill && g.n < len(g.entries) {
		return false
	}
	grown := make([]gapEntry, len(g.entries)*g.expand)
	copy(grown, g.entries[:g.n])
	g.entries = grown
	return true
}

// insert appends an entry and bubbles it toward the front until the
// (size, offset) order holds again.
func (g *gapIndex) insert(size int, slot int32, nodes []segment) bool {
	grew := g.maybeGrow()
	g.entries[g.n] = gapEntry{size: size, slot: slot}
	g.n++
	for i := g.n - 1; i > 0; i-- {
		cur, prev := g.entries[i], g.entries[i-1]
		if !gapLess(cur, prev, nodes) {
			break
		}
		g.entries[i-1], g.entries[i] = cur, prev
	}
	return grew
}

// gapLess orders unoccupied entries first, then by size, then by offset.
func gapLess(a, b gapEntry, nodes []segment) bool {
	if a.size == 0 {
		return false
	}
	if b.size == 0 {
		return true
	}
	if a.size != b.size {
		return a.size < b.size
	}
	return nodes[a.slot].offset < nodes[b.slot].offset
}

// remove deletes the entry for slot, keeping the rest in order. It
// reports false when slot is not indexed.
func (g *gapIndex) remove(slot int32) bool {
	at := -1
	for i := 0; i < g.n; i++ {
		if g.entries[i].slot == slot {
			at = i
			break
		}
	}
	if at < 0 {
		return false
	}
	copy(g.entries[at:g.n-1], g.entries[at+1:g.n])
	g.n--
	g.entries[g.n] = gapEntry{}
	return true
}

// bestFit returns the slot of the smallest gap of at least size bytes.
func (g *gapIndex) bestFit(size int) (int32, bool) {
	i := sort.Search(g.n, func(i int) bool { return g.entries[i].size >= size })
	if i == g.n {
		return nilSlot, false
	}
	return g.entries[i].slot, true
}

// largest returns the size of the biggest gap, or 0 when there is none.
func (g *gapIndex) largest() int {
	if g.n == 0 {
		return 0
	}
	return g.entries[g.n-1].size
}

func (g *gapIndex) live() []gapEntry { return g.entries[:g.n] }
