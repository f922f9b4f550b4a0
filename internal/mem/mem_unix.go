//go:build unix

package mem

import (
	"errors"

	"golang.org/x/sys/unix"
)

var errBadSize = errors.New("mem: reservation size must be positive")

func pageSize() int {
	return unix.Getpagesize()
}

func reserve(size int) ([]byte, error) {
	pg := unix.Getpagesize()
	size = (size + pg - 1) &^ (pg - 1)
	span, err := unix.Mmap(-1, 0, size,
		unix.PROT_READ|unix.PROT_WRITE,
		unix.MAP_PRIVATE|unix.MAP_ANON)
	if err != nil {
		return nil, err
	}
	return span, nil
}

func release(span []byte) error {
	err := unix.Munmap(span[:cap(span)])
	if errors.Is(err, unix.EINVAL) {
		// Treat double-release as no-op for callers.
		return nil
	}
	return err
}
