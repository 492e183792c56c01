// Package mapped provides a read-only, memory-mapped view of a file's
// on-disk bytes, used as the "original" backing buffer for a piece tree.
//
// A Source is either backed by an mmap'd region (an existing file was
// opened) or is empty (a new, unnamed document). Re-seating a Source after
// a save (remap onto the freshly written file) is supported via Remap.
package mapped

import (
	"errors"
	"os"

	"golang.org/x/sys/unix"
)

// ErrFileTooBig is returned when a file exceeds the maximum size a piece
// can address (piece lengths are packed into 31 bits).
var ErrFileTooBig = errors.New("mapped: file too big")

// MaxSize is the largest file Source will map, constrained by the piece
// tree's packed 31-bit length field.
const MaxSize = 1<<31 - 1

// Source is a read-only, memory-mapped byte span.
//
// The zero value is a valid, empty Source (no file backing it).
type Source struct {
	data []byte
	f    *os.File
}

// Open memory-maps path for reading. If path does not exist, Open returns
// an empty Source and no error (the caller is creating a new document).
func Open(path string) (*Source, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Source{}, nil
		}
		return nil, err
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}

	size := info.Size()
	if size == 0 {
		f.Close()
		return &Source{}, nil
	}
	if size > MaxSize {
		f.Close()
		return nil, ErrFileTooBig
	}

	data, err := unix.Mmap(int(f.Fd()), 0, int(size), unix.PROT_READ, unix.MAP_SHARED)
	if err != nil {
		f.Close()
		return nil, err
	}

	return &Source{data: data, f: f}, nil
}

// Bytes returns the mapped byte span. The returned slice is read-only and
// valid until Close or Remap is called.
func (s *Source) Bytes() []byte {
	if s == nil {
		return nil
	}
	return s.data
}

// Len returns the number of mapped bytes.
func (s *Source) Len() int {
	if s == nil {
		return 0
	}
	return len(s.data)
}

// Close unmaps the region and closes the underlying file descriptor.
// Close is a no-op on an empty Source.
func (s *Source) Close() error {
	if s == nil || s.data == nil {
		return nil
	}
	err := unix.Munmap(s.data)
	s.data = nil
	if s.f != nil {
		if cerr := s.f.Close(); err == nil {
			err = cerr
		}
		s.f = nil
	}
	return err
}

// Remap unmaps the current region (if any) and maps path in its place.
// It is used after a save completes: the document's pieces referring to
// the "original" buffer must be re-seated onto the newly written file.
func (s *Source) Remap(path string) error {
	if err := s.Close(); err != nil {
		return err
	}
	fresh, err := Open(path)
	if err != nil {
		return err
	}
	*s = *fresh
	return nil
}
