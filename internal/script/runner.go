package script

import (
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/pavanmanishd/mempool"
)

// ErrUnknownName is reported for pool names and labels the script never bound.
var ErrUnknownName = errors.New("script: unknown name")

// Result records the outcome of one command. A failed allocation is a
// normal result with OK false and no Error.
type Result struct {
	Line     int                   `json:"line"`
	Command  string                `json:"command"`
	OK       bool                  `json:"ok"`
	Offset   *int                  `json:"offset,omitempty"`
	Segments []mempool.SegmentInfo `json:"segments,omitempty"`
	Metrics  *mempool.PoolMetrics  `json:"metrics,omitempty"`
	Error    string                `json:"error,omitempty"`
}

func (r Result) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d: %s -> ", r.Line, r.Command)
	switch {
	case r.Error != "":
		b.WriteString("error: " + r.Error)
	case r.Offset != nil:
		fmt.Fprintf(&b, "offset %d", *r.Offset)
	case r.Segments != nil:
		for i, s := range r.Segments {
			if i > 0 {
				b.WriteByte(' ')
			}
			b.WriteString(s.String())
		}
	case !r.OK:
		b.WriteString("no fit")
	default:
		b.WriteString("ok")
	}
	return b.String()
}

type boundPool struct {
	pool    *mempool.Pool
	handles map[string]mempool.Handle
}

// Runner executes commands against one registry. Pool names and
// allocation labels are scoped to the runner.
type Runner struct {
	// StopOnError ends Run at the first command that reports an error.
	StopOnError bool

	reg   *mempool.Registry
	log   *slog.Logger
	pools map[string]*boundPool
}

// NewRunner returns a runner over an initialized registry. A nil logger
// discards events.
func NewRunner(reg *mempool.Registry, log *slog.Logger) *Runner {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Runner{reg: reg, log: log, pools: make(map[string]*boundPool)}
}

// Run executes cmds in order. It returns a non-nil error only when
// StopOnError is set and a command failed; the results up to and including
// that command are returned either way.
func (r *Runner) Run(cmds []Command) ([]Result, error) {
	results := make([]Result, 0, len(cmds))
	for _, cmd := range cmds {
		res, err := r.exec(cmd)
		res.Line, res.Command = cmd.Line, cmd.String()
		if err != nil {
			res.OK, res.Error = false, err.Error()
			r.log.Debug("script command failed", "line", cmd.Line, "command", res.Command, "err", err)
		}
		results = append(results, res)
		if err != nil && r.StopOnError {
			return results, errors.Wrapf(err, "line %d", cmd.Line)
		}
	}
	return results, nil
}

func (r *Runner) exec(cmd Command) (Result, error) {
	if cmd.Op == OpOpen {
		return r.open(cmd)
	}
	bp, ok := r.pools[cmd.Pool]
	if !ok {
		return Result{}, errors.Wrapf(ErrUnknownName, "pool %q", cmd.Pool)
	}

	switch cmd.Op {
	case OpAlloc:
		if _, dup := bp.handles[cmd.Label]; dup {
			return Result{}, errors.Newf("label %q already allocated in pool %q", cmd.Label, cmd.Pool)
		}
		h, ok := bp.pool.Alloc(cmd.Size)
		if !ok {
			return Result{}, nil
		}
		off, err := bp.pool.Offset(h)
		if err != nil {
			return Result{}, err
		}
		bp.handles[cmd.Label] = h
		return Result{OK: true, Offset: &off}, nil

	case OpFree:
		h, ok := bp.handles[cmd.Label]
		if !ok {
			return Result{}, errors.Wrapf(ErrUnknownName, "label %q in pool %q", cmd.Label, cmd.Pool)
		}
		if err := bp.pool.Free(h); err != nil {
			return Result{}, err
		}
		delete(bp.handles, cmd.Label)
		return Result{OK: true}, nil

	case OpInspect:
		m := bp.pool.Metrics()
		return Result{OK: true, Segments: bp.pool.Inspect(), Metrics: &m}, nil

	case OpValidate:
		if err := bp.pool.Validate(); err != nil {
			return Result{}, err
		}
		return Result{OK: true}, nil

	case OpClose:
		if err := bp.pool.Close(); err != nil {
			return Result{}, err
		}
		delete(r.pools, cmd.Pool)
		return Result{OK: true}, nil
	}
	return Result{}, errors.AssertionFailedf("unhandled op %v", cmd.Op)
}

func (r *Runner) open(cmd Command) (Result, error) {
	if _, dup := r.pools[cmd.Pool]; dup {
		return Result{}, errors.Newf("pool %q already open", cmd.Pool)
	}
	p, err := r.reg.Open(cmd.Size, cmd.Policy)
	if err != nil {
		return Result{}, err
	}
	r.pools[cmd.Pool] = &boundPool{pool: p, handles: make(map[string]mempool.Handle)}
	r.log.Debug("script pool opened", "name", cmd.Pool, "id", p.ID())
	return Result{OK: true}, nil
}

// Release frees every allocation the script left behind and closes its
// pools, returning the combined errors.
func (r *Runner) Release() error {
	var errs error
	for name, bp := range r.pools {
		for label, h := range bp.handles {
			if err := bp.pool.Free(h); err != nil {
				errs = errors.CombineErrors(errs, errors.Wrapf(err, "free %s/%s", name, label))
			}
		}
		if err := bp.pool.Close(); err != nil {
			errs = errors.CombineErrors(errs, errors.Wrapf(err, "close %s", name))
			continue
		}
		delete(r.pools, name)
	}
	return errs
}

// Open returns the names of the pools the script still holds open.
func (r *Runner) Open() []string {
	names := make([]string, 0, len(r.pools))
	for name := range r.pools {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
