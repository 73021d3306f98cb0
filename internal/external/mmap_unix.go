//go:build unix

package external

import (
	"os"

	"github.com/jchantrell/modelbundle/internal/status"
	"golang.org/x/sys/unix"
)

func mapFile(f *os.File, size int64) ([]byte, func() error, error) {
	return mapRange(f.Fd(), 0, size)
}

// mapRange maps length bytes at offset of fd read-only. The offset need not be
// page aligned; the returned slice starts exactly at offset.
func mapRange(fd uintptr, offset, length int64) ([]byte, func() error, error) {
	var st unix.Stat_t
	if err := unix.Fstat(int(fd), &st); err != nil {
		return nil, nil, status.Wrap(status.ReadFailure, err, "stat of fd %d", fd)
	}

	if offset > st.Size {
		return nil, nil, status.Errorf(status.InvalidArgument,
			"offset %d exceeds file size %d", offset, st.Size)
	}
	if length == 0 {
		length = st.Size - offset
	}
	if length < 0 || length > st.Size-offset {
		return nil, nil, status.Errorf(status.InvalidArgument,
			"range offset=%d length=%d exceeds file size %d", offset, length, st.Size)
	}
	if length == 0 {
		return []byte{}, nil, nil
	}

	pageSize := int64(unix.Getpagesize())
	aligned := offset - offset%pageSize
	delta := offset - aligned

	region, err := unix.Mmap(int(fd), aligned, int(length+delta), unix.PROT_READ, unix.MAP_SHARED)
	if err != nil {
		return nil, nil, status.Wrap(status.ReadFailure, err, "mapping fd %d", fd)
	}

	return region[delta : delta+length], func() error { return unix.Munmap(region) }, nil
}
