package export

import (
	"fmt"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// FileLoader defines the interface for loading entries from a bundle
type FileLoader interface {
	GetFile(name string) ([]byte, error)
	ListFiles() []string
}

// Exporter writes bundle entries to disk
type Exporter struct {
	loader    FileLoader
	outputDir string
	flatten   bool
}

// NewExporter creates a new entry exporter
func NewExporter(loader FileLoader, outputDir string) *Exporter {
	return &Exporter{
		loader:    loader,
		outputDir: outputDir,
	}
}

// SetFlatten writes every entry directly into the output directory,
// replacing slashes in entry names with @
func (e *Exporter) SetFlatten(flatten bool) {
	e.flatten = flatten
}

// ProgressCallback is called to report export progress
type ProgressCallback func(current int, total int, description string)

// ExportFiles writes the named entries, or every entry when names is empty,
// and returns the paths written
func (e *Exporter) ExportFiles(names []string, progressCallback ProgressCallback) ([]string, error) {
	if len(names) == 0 {
		names = e.loader.ListFiles()
	}

	if err := os.MkdirAll(e.outputDir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	written := make([]string, 0, len(names))
	for i, name := range names {
		outputPath, err := e.OutputPath(name)
		if err != nil {
			return written, err
		}

		data, err := e.loader.GetFile(name)
		if err != nil {
			return written, fmt.Errorf("loading entry %s: %w", name, err)
		}

		if err := os.MkdirAll(filepath.Dir(outputPath), 0755); err != nil {
			return written, fmt.Errorf("creating directory for %s: %w", name, err)
		}

		if err := os.WriteFile(outputPath, data, 0644); err != nil {
			return written, fmt.Errorf("writing file %s: %w", outputPath, err)
		}

		slog.Debug("Exported entry", "name", name, "output", outputPath, "size", len(data))

		written = append(written, outputPath)
		if progressCallback != nil {
			progressCallback(i+1, len(names), name)
		}
	}

	return written, nil
}

// OutputPath returns where an entry is written. Entry names that would
// escape the output directory are rejected.
func (e *Exporter) OutputPath(name string) (string, error) {
	if e.flatten {
		flat := sanitizePath(name)
		if flat == "" || flat == "." || flat == ".." || strings.Contains(flat, "\\") {
			return "", fmt.Errorf("refusing to export entry with unsafe name %q", name)
		}
		return filepath.Join(e.outputDir, flat), nil
	}

	clean := path.Clean("/" + name)
	if name == "" || strings.HasSuffix(name, "/") || clean != "/"+name || strings.Contains(name, "\\") {
		return "", fmt.Errorf("refusing to export entry with unsafe name %q", name)
	}

	return filepath.Join(e.outputDir, filepath.FromSlash(clean[1:])), nil
}

// sanitizePath sanitizes a file path for use as a filename
// Replaces forward slashes with @ symbols
func sanitizePath(path string) string {
	return strings.ReplaceAll(path, "/", "@")
}
