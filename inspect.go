package mempool

import "fmt"

// SegmentInfo describes one segment of a pool as reported by Inspect.
type SegmentInfo struct {
	Offset    int  `json:"offset"`
	Size      int  `json:"size"`
	Allocated bool `json:"allocated"`
}

func (s SegmentInfo) String() string {
	state := "gap"
	if s.Allocated {
		state = "alloc"
	}
	return fmt.Sprintf("[%d+%d %s]", s.Offset, s.Size, state)
}
