// Package archive extracts named entries from bundle containers.
//
// A bundle is a zip archive, optionally wrapped in an Oodle block container.
// Entries stored without compression are returned as views into the input
// buffer; compressed entries are decompressed into owned slices.
package archive

import (
	"log/slog"
)

// Extractor turns a container buffer into a mapping of entry name to bytes.
// Returned slices may alias data.
type Extractor interface {
	Extract(data []byte) (map[string][]byte, error)
}

// ExtractorFunc adapts a function to Extractor
type ExtractorFunc func(data []byte) (map[string][]byte, error)

func (f ExtractorFunc) Extract(data []byte) (map[string][]byte, error) {
	return f(data)
}

// Auto walks zip archives and first unwraps Oodle block containers
type Auto struct {
	Zip Zip
}

// Default returns the extractor used when none is configured
func Default() Extractor {
	return Auto{}
}

func (a Auto) Extract(data []byte) (map[string][]byte, error) {
	if !IsBlockContainer(data) {
		return a.Zip.Extract(data)
	}

	blocks, err := OpenBlocks(data)
	if err != nil {
		return nil, err
	}

	inner, err := blocks.Read()
	if err != nil {
		return nil, err
	}

	slog.Debug("Unwrapped block container", "compressed_size", len(data), "size", len(inner), "blocks", len(blocks.blocks))

	return a.Zip.Extract(inner)
}
