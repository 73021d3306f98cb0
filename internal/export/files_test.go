package export

import (
	"errors"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mapLoader map[string][]byte

func (m mapLoader) GetFile(name string) ([]byte, error) {
	data, ok := m[name]
	if !ok {
		return nil, errors.New("missing " + name)
	}
	return data, nil
}

func (m mapLoader) ListFiles() []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func TestExportFiles_All(t *testing.T) {
	out := t.TempDir()
	loader := mapLoader{
		"labels.txt":                    []byte("cat\ndog"),
		"detector/hand_detector.tflite": {0, 1},
	}

	var progress []int
	written, err := NewExporter(loader, out).ExportFiles(nil, func(current, total int, _ string) {
		assert.Equal(t, 2, total)
		progress = append(progress, current)
	})
	require.NoError(t, err)

	assert.Equal(t, []int{1, 2}, progress)
	assert.Equal(t, []string{
		filepath.Join(out, "detector", "hand_detector.tflite"),
		filepath.Join(out, "labels.txt"),
	}, written)

	got, err := os.ReadFile(filepath.Join(out, "detector", "hand_detector.tflite"))
	require.NoError(t, err)
	assert.Equal(t, []byte{0, 1}, got)
}

func TestExportFiles_SelectedAndFlattened(t *testing.T) {
	out := t.TempDir()
	loader := mapLoader{"a/b/c.bin": []byte("c"), "d.bin": []byte("d")}

	e := NewExporter(loader, out)
	e.SetFlatten(true)

	written, err := e.ExportFiles([]string{"a/b/c.bin"}, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(out, "a@b@c.bin")}, written)

	_, err = os.Stat(filepath.Join(out, "d.bin"))
	assert.True(t, os.IsNotExist(err))
}

func TestExportFiles_MissingEntry(t *testing.T) {
	_, err := NewExporter(mapLoader{}, t.TempDir()).ExportFiles([]string{"nope.bin"}, nil)
	assert.ErrorContains(t, err, "loading entry nope.bin")
}

func TestOutputPath_RejectsEscapes(t *testing.T) {
	e := NewExporter(mapLoader{}, "/out")

	for _, name := range []string{"../evil", "a/../../evil", "/etc/passwd", "a//b", "dir/", "", `a\..\b`} {
		_, err := e.OutputPath(name)
		assert.Error(t, err, name)
	}

	got, err := e.OutputPath("models/pose.tflite")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/out", "models", "pose.tflite"), got)
}

func TestOutputPath_FlattenRejectsDotNames(t *testing.T) {
	e := NewExporter(mapLoader{}, "/out")
	e.SetFlatten(true)

	for _, name := range []string{"..", ".", ""} {
		_, err := e.OutputPath(name)
		assert.Error(t, err, name)
	}
}
