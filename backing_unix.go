//go:build unix

package mempool

import (
	"github.com/cockroachdb/errors"
	"golang.org/x/sys/unix"
)

// mmapSource maps anonymous private memory outside the Go heap.
type mmapSource struct{}

func (mmapSource) Alloc(size int) ([]byte, error) {
	buf, err := unix.Mmap(-1, 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_ANON|unix.MAP_PRIVATE)
	if err != nil {
		return nil, errors.Wrapf(ErrAllocationFailed, "mmap %d bytes: %v", size, err)
	}
	return buf, nil
}

func (mmapSource) Release(buf []byte) error {
	if err := unix.Munmap(buf); err != nil {
		return errors.Wrap(err, "mempool: munmap")
	}
	return nil
}
