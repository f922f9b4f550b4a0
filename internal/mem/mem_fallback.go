//go:build !unix

package mem

import (
	"errors"
	"os"
)

var errBadSize = errors.New("mem: reservation size must be positive")

func pageSize() int {
	return os.Getpagesize()
}

func reserve(size int) ([]byte, error) {
	pg := os.Getpagesize()
	size = (size + pg - 1) &^ (pg - 1)
	return make([]byte, size), nil
}

func release(span []byte) error {
	// Heap-backed spans are reclaimed by the garbage collector.
	return nil
}
