package display

import (
	"fmt"
	"io"
	"unsafe"

	"golang.org/x/sys/unix"
)

// RampBuffer is the memory shared with the compositor for one output's gamma
// table: three consecutive planes of rampSize 16-bit levels backed by a
// sealed-size memfd. The engine overwrites the whole table before every
// submit, so the compositor never observes a partial update.
type RampBuffer struct {
	fd       int
	mem      []byte
	table    []uint16
	rampSize uint32
}

// NewRampBuffer allocates shared memory for a gamma table of rampSize levels
// per channel
func NewRampBuffer(rampSize uint32) (*RampBuffer, error) {
	if rampSize == 0 {
		return nil, fmt.Errorf("ramp size must be at least 1")
	}
	size := int(rampSize) * 3 * 2

	fd, err := unix.MemfdCreate("sundial-gamma", unix.MFD_CLOEXEC)
	if err != nil {
		return nil, fmt.Errorf("failed to create gamma table memory: %w", err)
	}
	if err := unix.Ftruncate(fd, int64(size)); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("failed to size gamma table memory: %w", err)
	}
	mem, err := unix.Mmap(fd, 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("failed to map gamma table memory: %w", err)
	}

	return &RampBuffer{
		fd:  fd,
		mem: mem,
		// The compositor reads native-endian uint16 levels straight out of
		// this mapping, so expose it as such.
		table:    unsafe.Slice((*uint16)(unsafe.Pointer(&mem[0])), int(rampSize)*3),
		rampSize: rampSize,
	}, nil
}

// RampSize returns the number of levels per channel
func (b *RampBuffer) RampSize() uint32 {
	return b.rampSize
}

// Table returns the full R, G, B table as one slice of 3*RampSize levels
func (b *RampBuffer) Table() []uint16 {
	return b.table
}

// rewind resets the read cursor the compositor consumes the table through
func (b *RampBuffer) rewind() error {
	if _, err := unix.Seek(b.fd, 0, io.SeekStart); err != nil {
		return fmt.Errorf("failed to rewind gamma table: %w", err)
	}
	return nil
}

// Close unmaps and releases the shared memory
func (b *RampBuffer) Close() error {
	if b.mem != nil {
		if err := unix.Munmap(b.mem); err != nil {
			return err
		}
		b.mem = nil
		b.table = nil
	}
	if b.fd >= 0 {
		if err := unix.Close(b.fd); err != nil {
			return err
		}
		b.fd = -1
	}
	return nil
}
