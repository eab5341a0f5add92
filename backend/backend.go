// Package backend implements the byte-access layer every other component
// reads through: random access into a PDF file by offset and length,
// without requiring the whole file be materialized in memory up front.
package backend

import (
	"fmt"
	"io"
)

// Backend provides random access to a PDF file's bytes.
type Backend struct {
	ra   io.ReaderAt
	size int64
}

// New wraps ra, a random-access source of size bytes (typically an
// *os.File or a bytes.Reader).
func New(ra io.ReaderAt, size int64) *Backend {
	return &Backend{ra: ra, size: size}
}

// Size returns the total byte length of the file.
func (b *Backend) Size() int64 { return b.size }

// ReadAt reads exactly length bytes starting at offset. It is an error
// for the requested range to run past the end of the file.
func (b *Backend) ReadAt(offset, length int64) ([]byte, error) {
	if offset < 0 || length < 0 || offset+length > b.size {
		return nil, fmt.Errorf("backend: range [%d,%d) out of bounds for size %d", offset, offset+length, b.size)
	}
	buf := make([]byte, length)
	n, err := b.ra.ReadAt(buf, offset)
	if err != nil && err != io.EOF {
		return nil, fmt.Errorf("backend: read at %d: %w", offset, err)
	}
	return buf[:n], nil
}

// ReadFrom reads from offset to the end of the file.
func (b *Backend) ReadFrom(offset int64) ([]byte, error) {
	if offset < 0 || offset > b.size {
		return nil, fmt.Errorf("backend: offset %d out of bounds for size %d", offset, b.size)
	}
	return b.ReadAt(offset, b.size-offset)
}

// Tail reads the last n bytes of the file (or the whole file if it is
// smaller than n), used to locate "startxref" without scanning from the
// beginning.
func (b *Backend) Tail(n int64) ([]byte, error) {
	if n > b.size {
		n = b.size
	}
	return b.ReadAt(b.size-n, n)
}

// All materializes the entire file.
func (b *Backend) All() ([]byte, error) {
	return b.ReadAt(0, b.size)
}
