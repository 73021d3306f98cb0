//go:build unix

package external

import (
	"bytes"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/jchantrell/modelbundle/internal/status"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen_FileHandleRange(t *testing.T) {
	payload := bytes.Repeat([]byte("0123456789"), 1000)
	path := filepath.Join(t.TempDir(), "packed.bin")
	require.NoError(t, os.WriteFile(path, payload, 0644))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	// unaligned offset inside the second page
	h, err := Open(FileHandle{Fd: f.Fd(), Offset: 4099, Length: 25}, nil)
	require.NoError(t, err)
	assert.Equal(t, payload[4099:4124], h.Content())
	require.NoError(t, h.Close())

	h, err = Open(FileHandle{Fd: f.Fd(), Offset: 9990}, nil)
	require.NoError(t, err)
	assert.Equal(t, payload[9990:], h.Content())
	require.NoError(t, h.Close())

	// the handler never closes the caller's descriptor
	_, err = f.Stat()
	assert.NoError(t, err)
}

func TestOpen_FileHandleOutOfRange(t *testing.T) {
	path := filepath.Join(t.TempDir(), "small.bin")
	require.NoError(t, os.WriteFile(path, []byte("abc"), 0644))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	for _, d := range []FileHandle{
		{Fd: f.Fd(), Offset: 2, Length: 10},
		{Fd: f.Fd(), Offset: 2, Length: math.MaxInt64},
		{Fd: f.Fd(), Offset: math.MaxInt64, Length: math.MaxInt64},
		{Fd: f.Fd(), Offset: 4},
	} {
		h, err := Open(d, nil)
		assert.Nil(t, h, d.String())
		assert.True(t, errors.Is(err, status.InvalidArgument), "%s: got %v", d, err)
	}
}
