package mempool

import (
	"log/slog"
	"sync/atomic"

	"github.com/cockroachdb/errors"
)

// poolIDs numbers pools process-wide, so a handle never matches a pool
// of another registry.
var poolIDs atomic.Uint64

// Registry tracks the open pools of one host application. It must be
// initialized before pools are opened from it. Not goroutine-safe; use
// SafeRegistry for concurrent access.
type Registry struct {
	cfg         Config
	log         *slog.Logger
	slots       []*Pool // nil entries are free; never shrinks while initialized
	live        int
	initialized bool
}

// NewRegistry returns an uninitialized registry using cfg for itself and
// for every pool it opens.
func NewRegistry(cfg Config) *Registry {
	return &Registry{cfg: cfg, log: cfg.logger()}
}

// Init allocates the slot array. Calling it twice without Shutdown in
// between fails with ErrAlreadyInitialized.
func (r *Registry) Init() error {
	if r.initialized {
		return ErrAlreadyInitialized
	}
	if err := r.cfg.Validate(); err != nil {
		return err
	}
	r.slots = make([]*Pool, r.cfg.RegistryInitCapacity)
	r.live = 0
	r.initialized = true
	r.log.Debug("registry initialized", "capacity", len(r.slots))
	return nil
}

// Shutdown releases the slot array. Pools still open are not closed: they
// stay usable and the caller remains responsible for closing them.
func (r *Registry) Shutdown() error {
	if !r.initialized {
		return ErrNotInitialized
	}
	if r.live > 0 {
		r.log.Warn("registry shut down with open pools", "open", r.live)
	}
	for _, p := range r.slots {
		if p != nil {
			p.reg = nil
		}
	}
	r.slots = nil
	r.live = 0
	r.initialized = false
	r.log.Debug("registry shut down")
	return nil
}

// Initialized reports whether Init has succeeded and Shutdown has not.
func (r *Registry) Initialized() bool { return r.initialized }

// Open creates a pool of totalSize bytes and registers it.
func (r *Registry) Open(totalSize int, policy Policy) (*Pool, error) {
	if !r.initialized {
		return nil, ErrNotInitialized
	}
	p, err := newPool(r, poolIDs.Add(1), totalSize, policy, r.cfg)
	if err != nil {
		return nil, err
	}
	r.register(p)
	return p, nil
}

// register stores p in the first free slot, growing the slot array first
// when the fill ratio is above the threshold.
func (r *Registry) register(p *Pool) int {
	if float64(r.live)/float64(len(r.slots)) > r.cfg.RegistryFillFactor || r.live == len(r.slots) {
		grown := make([]*Pool, len(r.slots)*r.cfg.RegistryExpandFactor)
		copy(grown, r.slots)
		r.log.Debug("registry grown", "from", len(r.slots), "to", len(grown))
		r.slots = grown
	}
	for i, s := range r.slots {
		if s == nil {
			r.slots[i] = p
			r.live++
			return i
		}
	}
	panic(errors.AssertionFailedf("mempool: registry full after growth (%d slots)", len(r.slots)))
}

// unregister clears the slot holding p, if any.
func (r *Registry) unregister(p *Pool) {
	for i, s := range r.slots {
		if s == p {
			r.slots[i] = nil
			r.live--
			return
		}
	}
}

// Pools returns the open pools in slot order.
func (r *Registry) Pools() []*Pool {
	out := make([]*Pool, 0, r.live)
	for _, p := range r.slots {
		if p != nil {
			out = append(out, p)
		}
	}
	return out
}

// Len returns the number of open pools.
func (r *Registry) Len() int { return r.live }

// Capacity returns the current number of slots.
func (r *Registry) Capacity() int { return len(r.slots) }
