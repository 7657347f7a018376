package mempool

import (
	"strings"

	"github.com/cockroachdb/errors"
)

// Policy selects where a new allocation is placed inside a pool.
type Policy uint8

const (
	// FirstFit takes the first sufficiently large gap in address order.
	FirstFit Policy = iota
	// BestFit takes the smallest sufficiently large gap.
	BestFit
)

var policyNames = map[Policy]string{
	FirstFit: "first-fit",
	BestFit:  "best-fit",
}

func (p Policy) String() string {
	name, ok := policyNames[p]
	if !ok {
		return "unknown Policy"
	}
	return name
}

func (p Policy) valid() bool {
	_, ok := policyNames[p]
	return ok
}

// ParsePolicy accepts "first-fit", "best-fit" and their underscore or
// unseparated spellings, case-insensitively.
func ParsePolicy(s string) (Policy, error) {
	norm := strings.NewReplacer("_", "", "-", "", " ", "").Replace(strings.ToLower(s))
	switch norm {
	case "firstfit", "first":
		return FirstFit, nil
	case "bestfit", "best":
		return BestFit, nil
	}
	return 0, errors.Newf("mempool: unknown policy %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (p Policy) MarshalText() ([]byte, error) {
	if !p.valid() {
		return nil, errors.Newf("mempool: unknown policy %d", p)
	}
	return []byte(p.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *Policy) UnmarshalText(text []byte) error {
	v, err := ParsePolicy(string(text))
	if err != nil {
		return err
	}
	*p = v
	return nil
}
