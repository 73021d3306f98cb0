// Package resource locates bundle files referenced by relative path.
package resource

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/jchantrell/modelbundle/internal/status"
)

// EnvResourceDir names an extra directory searched before the defaults
const EnvResourceDir = "MODELBUNDLE_RESOURCE_DIR"

// Locator turns a relative resource name into an absolute, readable path
type Locator interface {
	Locate(name string) (string, error)
}

// LocatorFunc adapts a function to Locator
type LocatorFunc func(name string) (string, error)

func (f LocatorFunc) Locate(name string) (string, error) {
	return f(name)
}

// SearchPath looks for resources in an ordered list of directories
type SearchPath struct {
	dirs []string
}

// NewSearchPath creates a search path over dirs, in order. Empty entries are
// dropped and a leading ~ is expanded.
func NewSearchPath(dirs ...string) *SearchPath {
	sp := &SearchPath{}
	for _, dir := range dirs {
		if dir == "" {
			continue
		}
		sp.dirs = append(sp.dirs, expandTilde(dir))
	}
	return sp
}

// DefaultSearchPath searches $MODELBUNDLE_RESOURCE_DIR, the working directory
// and the user asset directory, in that order
func DefaultSearchPath() *SearchPath {
	return NewSearchPath(os.Getenv(EnvResourceDir), ".", DefaultAssetDir())
}

// DefaultAssetDir returns the per-user asset directory
func DefaultAssetDir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".modelbundle", "assets")
	}
	return filepath.Join(homeDir, ".modelbundle", "assets")
}

// Dirs returns a copy of the directories searched
func (s *SearchPath) Dirs() []string {
	dirs := make([]string, len(s.dirs))
	copy(dirs, s.dirs)
	return dirs
}

// Locate returns the absolute path of the first regular file named name under
// one of the search directories. Absolute names are checked in place.
func (s *SearchPath) Locate(name string) (string, error) {
	if name == "" {
		return "", status.Errorf(status.InvalidArgument, "resource name cannot be empty")
	}

	if filepath.IsAbs(name) {
		if err := checkFile(name); err != nil {
			return "", err
		}
		return name, nil
	}

	for _, dir := range s.dirs {
		candidate := filepath.Join(dir, name)
		err := checkFile(candidate)
		if err == nil {
			abs, err := filepath.Abs(candidate)
			if err != nil {
				return "", status.Wrap(status.ReadFailure, err, "resolving absolute path of %s", candidate)
			}
			slog.Debug("Located resource", "name", name, "path", abs)
			return abs, nil
		}
		if !errors.Is(err, status.NotFound) {
			return "", err
		}
	}

	return "", status.Errorf(status.NotFound, "resource %s not found in search path [%s]", name, strings.Join(s.dirs, ", "))
}

func checkFile(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return status.Wrap(status.NotFound, err, "file %s does not exist", path)
		}
		return status.Wrap(status.ReadFailure, err, "checking %s", path)
	}
	if info.IsDir() {
		return status.Errorf(status.NotFound, "%s is a directory", path)
	}
	return nil
}

func expandTilde(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}
	return path
}
