package external

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"unsafe"

	"github.com/jchantrell/modelbundle/internal/resource"
	"github.com/jchantrell/modelbundle/internal/status"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	buf := []byte{1}
	tests := []struct {
		name  string
		desc  Descriptor
		valid bool
	}{
		{"nil", nil, false},
		{"empty path", FilePath{}, false},
		{"path", FilePath{Path: "a.task"}, true},
		{"nil content", FileContent{}, false},
		{"empty content", FileContent{Data: []byte{}}, true},
		{"negative offset", FileHandle{Fd: 3, Offset: -1}, false},
		{"handle", FileHandle{Fd: 3}, true},
		{"nil pointer", FilePointer{Length: 4}, false},
		{"zero length pointer", FilePointer{Address: unsafe.Pointer(&buf[0])}, false},
		{"pointer", FilePointer{Address: unsafe.Pointer(&buf[0]), Length: 1}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.desc)
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.True(t, errors.Is(err, status.InvalidArgument), "got %v", err)
			}
		})
	}
}

func TestOpen_Content(t *testing.T) {
	data := []byte("PK\x05\x06")
	h, err := Open(FileContent{Data: data}, nil)
	require.NoError(t, err)
	defer h.Close()

	assert.Equal(t, data, h.Content())
	assert.Equal(t, 4, h.Size())
	assert.Same(t, &data[0], &h.Content()[0])
}

func TestOpen_Pointer(t *testing.T) {
	data := []byte("weights")
	h, err := Open(FilePointer{Address: unsafe.Pointer(&data[0]), Length: len(data)}, nil)
	require.NoError(t, err)

	assert.Equal(t, "weights", string(h.Content()))
	assert.NoError(t, h.Close())
	assert.Nil(t, h.Content())
}

func TestOpen_AbsolutePath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.task")
	require.NoError(t, os.WriteFile(path, []byte("bundle bytes"), 0644))

	h, err := Open(FilePath{Path: path}, nil)
	require.NoError(t, err)

	assert.Equal(t, "bundle bytes", string(h.Content()))
	assert.NoError(t, h.Close())
	assert.NoError(t, h.Close())
}

func TestOpen_EmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.task")
	require.NoError(t, os.WriteFile(path, nil, 0644))

	h, err := Open(FilePath{Path: path}, nil)
	require.NoError(t, err)
	defer h.Close()

	assert.Equal(t, 0, h.Size())
}

func TestOpen_MissingPath(t *testing.T) {
	_, err := Open(FilePath{Path: filepath.Join(t.TempDir(), "gone.task")}, nil)
	assert.True(t, errors.Is(err, status.NotFound))
}

func TestOpen_Directory(t *testing.T) {
	_, err := Open(FilePath{Path: t.TempDir()}, nil)
	assert.True(t, errors.Is(err, status.ReadFailure))
}

func TestOpen_RelativePathUsesLocator(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "face.task"), []byte("face"), 0644))

	h, err := Open(FilePath{Path: "face.task"}, resource.NewSearchPath(dir))
	require.NoError(t, err)
	defer h.Close()

	assert.Equal(t, "face", string(h.Content()))
}

func TestResolvePath(t *testing.T) {
	locator := resource.LocatorFunc(func(name string) (string, error) {
		if name == "known.task" {
			return "/assets/known.task", nil
		}
		return "", errors.New("nope")
	})

	got, err := ResolvePath(FilePath{Path: "known.task"}, locator)
	require.NoError(t, err)
	assert.Equal(t, FilePath{Path: "/assets/known.task"}, got)

	got, err = ResolvePath(FilePath{Path: "/abs/x.task"}, locator)
	require.NoError(t, err)
	assert.Equal(t, FilePath{Path: "/abs/x.task"}, got)

	content := FileContent{Data: []byte{1}}
	got, err = ResolvePath(content, locator)
	require.NoError(t, err)
	assert.Equal(t, content, got)

	_, err = ResolvePath(FilePath{Path: "other.task"}, locator)
	assert.True(t, errors.Is(err, status.NotFound))

	_, err = ResolvePath(FilePath{Path: "other.task"}, nil)
	assert.True(t, errors.Is(err, status.NotFound))
}

func TestDescriptor_String(t *testing.T) {
	assert.Equal(t, "file_path(a.task)", FilePath{Path: "a.task"}.String())
	assert.Equal(t, "file_content(3 bytes)", FileContent{Data: []byte("abc")}.String())
	assert.Equal(t, "file_handle(fd=5, offset=10, length=20)", FileHandle{Fd: 5, Offset: 10, Length: 20}.String())
}
