//go:build !unix

package mempool

// mmapSource falls back to heap memory where mmap is unavailable.
type mmapSource struct{ heapSource }
