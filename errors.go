package mempool

import "github.com/cockroachdb/errors"

var (
	// ErrAlreadyInitialized is returned by Init on a registry that is already initialized.
	ErrAlreadyInitialized = errors.New("mempool: registry already initialized")

	// ErrNotInitialized is returned when the registry has not been initialized
	// (or has been shut down).
	ErrNotInitialized = errors.New("mempool: registry not initialized")

	// ErrAllocationFailed indicates that backing storage for a pool, or one of
	// its bookkeeping arrays, could not be obtained.
	ErrAllocationFailed = errors.New("mempool: allocation failed")

	// ErrNotFreed is returned by Close when the pool still has live
	// allocations or is split into more than one gap.
	ErrNotFreed = errors.New("mempool: pool not freed")

	// ErrInvalidHandle indicates a handle or pool that does not refer to a
	// live allocation (foreign pool, stale generation, double free, closed pool).
	ErrInvalidHandle = errors.New("mempool: invalid handle")

	// ErrInvalidConfig indicates a Config that failed validation.
	ErrInvalidConfig = errors.New("mempool: invalid config")
)
