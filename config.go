package mempool

import (
	"encoding/json"
	"io"
	"log/slog"

	"github.com/cockroachdb/errors"
)

// Default sizing for the registry slot array, the per-pool node heap and
// the per-pool gap index.
const (
	DefaultRegistryInitCapacity = 20
	DefaultNodeHeapInitCapacity = 40
	DefaultGapIndexInitCapacity = 40
	DefaultFillFactor           = 0.75
	DefaultExpandFactor         = 2
)

// Backing names accepted by Config.Backing.
const (
	BackingHeap = "heap"
	BackingMmap = "mmap"
)

// Config controls growth of the registry and of every pool opened from it.
type Config struct {
	RegistryInitCapacity int     `json:"registry_init_capacity"`
	RegistryFillFactor   float64 `json:"registry_fill_factor"`
	RegistryExpandFactor int     `json:"registry_expand_factor"`

	NodeHeapInitCapacity int     `json:"node_heap_init_capacity"`
	NodeHeapFillFactor   float64 `json:"node_heap_fill_factor"`
	NodeHeapExpandFactor int     `json:"node_heap_expand_factor"`

	GapIndexInitCapacity int     `json:"gap_index_init_capacity"`
	GapIndexFillFactor   float64 `json:"gap_index_fill_factor"`
	GapIndexExpandFactor int     `json:"gap_index_expand_factor"`

	// MaxSegments caps the node heap of each pool. 0 means unlimited.
	MaxSegments int `json:"max_segments"`

	// Backing selects where pool buffers come from: "heap" or "mmap".
	Backing string `json:"backing"`

	// CheckInvariants validates a pool after every mutating call and panics
	// on the first violation.
	CheckInvariants bool `json:"check_invariants"`

	// Source overrides Backing when set.
	Source BackingSource `json:"-"`

	// Logger receives debug and warning events. nil discards them.
	Logger *slog.Logger `json:"-"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		RegistryInitCapacity: DefaultRegistryInitCapacity,
		RegistryFillFactor:   DefaultFillFactor,
		RegistryExpandFactor: DefaultExpandFactor,
		NodeHeapInitCapacity: DefaultNodeHeapInitCapacity,
		NodeHeapFillFactor:   DefaultFillFactor,
		NodeHeapExpandFactor: DefaultExpandFactor,
		GapIndexInitCapacity: DefaultGapIndexInitCapacity,
		GapIndexFillFactor:   DefaultFillFactor,
		GapIndexExpandFactor: DefaultExpandFactor,
		Backing:              BackingHeap,
	}
}

// LoadConfig decodes a JSON document over DefaultConfig and validates the result.
func LoadConfig(r io.Reader) (Config, error) {
	cfg := DefaultConfig()
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, errors.Wrap(err, "mempool: decode config")
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports the first out-of-range setting.
func (c Config) Validate() error {
	checks := []struct {
		name   string
		init   int
		fill   float64
		expand int
	}{
		{"registry", c.RegistryInitCapacity, c.RegistryFillFactor, c.RegistryExpandFactor},
		{"node heap", c.NodeHeapInitCapacity, c.NodeHeapFillFactor, c.NodeHeapExpandFactor},
		{"gap index", c.GapIndexInitCapacity, c.GapIndexFillFactor, c.GapIndexExpandFactor},
	}
	for _, ck := range checks {
		if ck.init < 1 {
			return errors.Wrapf(ErrInvalidConfig, "%s initial capacity %d < 1", ck.name, ck.init)
		}
		if ck.fill <= 0 || ck.fill >= 1 {
			return errors.Wrapf(ErrInvalidConfig, "%s fill factor %v outside (0,1)", ck.name, ck.fill)
		}
		if ck.expand < 2 {
			return errors.Wrapf(ErrInvalidConfig, "%s expand factor %d < 2", ck.name, ck.expand)
		}
	}
	if c.MaxSegments < 0 {
		return errors.Wrapf(ErrInvalidConfig, "max segments %d < 0", c.MaxSegments)
	}
	if c.MaxSegments > 0 && c.MaxSegments < c.NodeHeapInitCapacity {
		return errors.Wrapf(ErrInvalidConfig, "max segments %d below node heap initial capacity %d",
			c.MaxSegments, c.NodeHeapInitCapacity)
	}
	if c.Source == nil {
		switch c.Backing {
		case "", BackingHeap, BackingMmap:
		default:
			return errors.Wrapf(ErrInvalidConfig, "unknown backing %q", c.Backing)
		}
	}
	return nil
}

func (c Config) source() BackingSource {
	if c.Source != nil {
		return c.Source
	}
	if c.Backing == BackingMmap {
		return mmapSource{}
	}
	return heapSource{}
}

func (c Config) logger() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
