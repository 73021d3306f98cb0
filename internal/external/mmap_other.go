//go:build !unix

package external

import (
	"io"
	"os"

	"github.com/jchantrell/modelbundle/internal/status"
)

func mapFile(f *os.File, size int64) ([]byte, func() error, error) {
	data := make([]byte, size)
	if _, err := io.ReadFull(f, data); err != nil {
		return nil, nil, status.Wrap(status.ReadFailure, err, "reading %s", f.Name())
	}
	return data, nil, nil
}

func mapRange(fd uintptr, offset, length int64) ([]byte, func() error, error) {
	return nil, nil, status.Errorf(status.InvalidArgument, "file handles are not supported on this platform")
}
