// Package external resolves file descriptors into readable byte buffers.
package external

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"unsafe"

	"github.com/jchantrell/modelbundle/internal/resource"
	"github.com/jchantrell/modelbundle/internal/status"
)

// Handler owns the bytes behind a Descriptor. The slice returned by Content
// is read-only and stays valid until Close.
type Handler struct {
	data    []byte
	release func() error
}

// Validate checks that d is populated and well formed without touching the filesystem
func Validate(d Descriptor) error {
	switch d := d.(type) {
	case nil:
		return status.Errorf(status.InvalidArgument, "external file descriptor cannot be nil")
	case FilePath:
		if d.Path == "" {
			return status.Errorf(status.InvalidArgument, "external file path cannot be empty")
		}
	case FileContent:
		if d.Data == nil {
			return status.Errorf(status.InvalidArgument, "external file content cannot be nil")
		}
	case FileHandle:
		if d.Offset < 0 || d.Length < 0 {
			return status.Errorf(status.InvalidArgument, "invalid file handle range: offset=%d length=%d", d.Offset, d.Length)
		}
	case FilePointer:
		if d.Address == nil || d.Length <= 0 {
			return status.Errorf(status.InvalidArgument, "invalid file pointer: address=%p length=%d", d.Address, d.Length)
		}
	default:
		return status.Errorf(status.InvalidArgument, "unsupported external file descriptor %T", d)
	}
	return nil
}

// ResolvePath rewrites a relative FilePath into the absolute path found by
// locator. Other descriptors are returned unchanged.
func ResolvePath(d Descriptor, locator resource.Locator) (Descriptor, error) {
	fp, ok := d.(FilePath)
	if !ok || filepath.IsAbs(fp.Path) {
		return d, nil
	}
	if locator == nil {
		return nil, status.Errorf(status.NotFound, "no resource locator to resolve relative path %s", fp.Path)
	}

	abs, err := locator.Locate(fp.Path)
	if err != nil {
		if status.KindOf(err) == status.Unknown {
			return nil, status.Wrap(status.NotFound, err, "locating %s", fp.Path)
		}
		return nil, err
	}
	return FilePath{Path: abs}, nil
}

// Open resolves d into a Handler. Relative paths go through locator first.
func Open(d Descriptor, locator resource.Locator) (*Handler, error) {
	if err := Validate(d); err != nil {
		return nil, err
	}

	d, err := ResolvePath(d, locator)
	if err != nil {
		return nil, err
	}

	switch d := d.(type) {
	case FilePath:
		return openPath(d.Path)
	case FileContent:
		return &Handler{data: d.Data}, nil
	case FileHandle:
		data, release, err := mapRange(d.Fd, d.Offset, d.Length)
		if err != nil {
			return nil, err
		}
		return &Handler{data: data, release: release}, nil
	case FilePointer:
		return &Handler{data: unsafe.Slice((*byte)(d.Address), d.Length)}, nil
	}

	// unreachable, Validate rejects everything else
	return nil, status.Errorf(status.InvalidArgument, "unsupported external file descriptor %T", d)
}

func openPath(path string) (*Handler, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, status.Wrap(status.NotFound, err, "file %s does not exist", path)
		}
		return nil, status.Wrap(status.ReadFailure, err, "opening %s", path)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, status.Wrap(status.ReadFailure, err, "checking %s", path)
	}
	if info.IsDir() {
		return nil, status.Errorf(status.ReadFailure, "%s is a directory", path)
	}

	data, release, err := mapFile(f, info.Size())
	if err != nil {
		return nil, err
	}

	slog.Debug("Opened external file", "path", path, "size", len(data))

	return &Handler{data: data, release: release}, nil
}

// Content returns the resolved bytes
func (h *Handler) Content() []byte {
	return h.data
}

// Size returns the number of resolved bytes
func (h *Handler) Size() int {
	return len(h.data)
}

// Close releases any mapping. Content must not be used afterwards.
func (h *Handler) Close() error {
	release := h.release
	h.release = nil
	h.data = nil

	if release == nil {
		return nil
	}
	if err := release(); err != nil {
		return status.Wrap(status.ReadFailure, err, "releasing mapped file")
	}
	return nil
}
