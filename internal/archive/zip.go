package archive

import (
	"bytes"
	"errors"
	"hash/crc32"
	"io"

	"github.com/jchantrell/modelbundle/internal/status"
	"github.com/klauspost/compress/zip"
	"github.com/klauspost/compress/zstd"
)

var (
	localHeaderSignature = []byte("PK\x03\x04")

	// largest capacity reserved up front for a decompressed entry
	maxPrealloc uint64 = 64 << 20
)

// Zip extracts every file entry of a zip archive. Directory entries are skipped
// and a name appearing twice is rejected.
type Zip struct{}

func (Zip) Extract(data []byte) (map[string][]byte, error) {
	r, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, classifyOpenError(data, err)
	}

	r.RegisterDecompressor(zstd.ZipMethodWinZip, zstd.ZipDecompressor())
	r.RegisterDecompressor(zstd.ZipMethodPKWare, zstd.ZipDecompressor())

	entries := make(map[string][]byte, len(r.File))
	for _, f := range r.File {
		if f.FileInfo().IsDir() {
			continue
		}

		if _, exists := entries[f.Name]; exists {
			return nil, status.Errorf(status.InvalidArgument, "duplicate entry %s in archive", f.Name)
		}

		content, err := readEntry(data, f)
		if err != nil {
			return nil, err
		}
		entries[f.Name] = content
	}

	return entries, nil
}

func readEntry(data []byte, f *zip.File) ([]byte, error) {
	offset, err := f.DataOffset()
	if err != nil {
		return nil, classifyEntryError(f.Name, err)
	}

	end := offset + int64(f.CompressedSize64)
	if offset < 0 || end < offset || end > int64(len(data)) {
		return nil, status.Errorf(status.TruncatedEntry,
			"entry %s needs bytes [%d, %d) but archive has %d", f.Name, offset, end, len(data))
	}

	if f.Method == zip.Store {
		if f.CompressedSize64 != f.UncompressedSize64 {
			return nil, status.Errorf(status.CorruptArchive,
				"stored entry %s has compressed size %d and uncompressed size %d", f.Name, f.CompressedSize64, f.UncompressedSize64)
		}
		view := data[offset:end:end]
		if crc32.ChecksumIEEE(view) != f.CRC32 {
			return nil, status.Errorf(status.CorruptArchive, "checksum mismatch in entry %s", f.Name)
		}
		return view, nil
	}

	rc, err := f.Open()
	if err != nil {
		return nil, classifyEntryError(f.Name, err)
	}
	defer rc.Close()

	var buf bytes.Buffer
	buf.Grow(int(min(f.UncompressedSize64, maxPrealloc)))
	if _, err := io.Copy(&buf, rc); err != nil {
		return nil, classifyEntryError(f.Name, err)
	}

	return buf.Bytes(), nil
}

func classifyOpenError(data []byte, err error) error {
	switch {
	case errors.Is(err, io.ErrUnexpectedEOF):
		return status.Wrap(status.TruncatedEntry, err, "archive directory is truncated")
	case errors.Is(err, zip.ErrFormat) && bytes.HasPrefix(data, localHeaderSignature):
		return status.Wrap(status.TruncatedEntry, err, "archive ends before its central directory")
	case errors.Is(err, zip.ErrAlgorithm):
		return status.Wrap(status.UnsupportedCompression, err, "opening archive")
	default:
		return status.Wrap(status.CorruptArchive, err, "opening archive")
	}
}

func classifyEntryError(name string, err error) error {
	switch {
	case errors.Is(err, zip.ErrAlgorithm):
		return status.Wrap(status.UnsupportedCompression, err, "entry %s", name)
	case errors.Is(err, io.ErrUnexpectedEOF), errors.Is(err, io.EOF):
		return status.Wrap(status.TruncatedEntry, err, "entry %s", name)
	case errors.Is(err, zip.ErrChecksum):
		return status.Wrap(status.CorruptArchive, err, "checksum mismatch in entry %s", name)
	default:
		return status.Wrap(status.CorruptArchive, err, "entry %s", name)
	}
}
