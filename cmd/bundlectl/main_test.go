package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/zip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeBundle(t *testing.T, dir, name string, files map[string]string) string {
	t.Helper()

	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for entry, content := range files {
		fw, err := w.Create(entry)
		require.NoError(t, err)
		_, err = fw.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0644))
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	return runWithDatabase(t, filepath.Join(t.TempDir(), "catalog.db"), args...)
}

func runWithDatabase(t *testing.T, db string, args ...string) (string, error) {
	t.Helper()

	cfgPath := filepath.Join(t.TempDir(), "modelbundle.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("log_level: error\ndatabase: "+db+"\n"), 0644))

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(append([]string{"--config", cfgPath, "--no-progress"}, args...))
	err := rootCmd.Execute()
	return out.String(), err
}

func TestBundleTag(t *testing.T) {
	assert.Equal(t, "hand_landmarker", bundleTag("/models/hand_landmarker.task"))
	assert.Equal(t, "pose", bundleTag("pose"))
	assert.Equal(t, "stdin", bundleTag("-"))
}

func TestListAndGet(t *testing.T) {
	dir := t.TempDir()
	path := writeBundle(t, dir, "gesture.task", map[string]string{
		"model.tflite": "\x00\x01",
		"labels.txt":   "cat\ndog",
	})

	out, err := run(t, "list", path)
	require.NoError(t, err)
	assert.Equal(t, "labels.txt\nmodel.tflite\n", out)

	out, err = run(t, "get", path, "labels.txt")
	require.NoError(t, err)
	assert.Equal(t, "cat\ndog", out)

	_, err = run(t, "get", path, "missing.bin")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "labels.txt, model.tflite")
}

func TestListRelativeBundleFromResourceDir(t *testing.T) {
	dir := t.TempDir()
	writeBundle(t, dir, "face.task", map[string]string{"face.tflite": "f"})

	out, err := run(t, "--resource-dir", dir, "list", "face.task")
	require.NoError(t, err)
	assert.Equal(t, "face.tflite\n", out)
}

func TestExtract(t *testing.T) {
	dir := t.TempDir()
	path := writeBundle(t, dir, "pose.task", map[string]string{
		"pose_detector.tflite": "d",
		"nested/landmarks.bin": "l",
	})
	outDir := filepath.Join(dir, "out")

	out, err := run(t, "extract", path, "-o", outDir)
	require.NoError(t, err)
	assert.Contains(t, out, "Files extracted: 2")

	got, err := os.ReadFile(filepath.Join(outDir, "nested", "landmarks.bin"))
	require.NoError(t, err)
	assert.Equal(t, "l", string(got))
}

func TestCatalogAndQuery(t *testing.T) {
	dir := t.TempDir()
	db := filepath.Join(dir, "catalog.db")
	path := writeBundle(t, dir, "gesture.task", map[string]string{
		"model.tflite": "\x00\x01",
		"labels.txt":   "cat\ndog",
	})

	_, err := runWithDatabase(t, db, "query", "--bundles")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "is empty")

	_, err = runWithDatabase(t, db, "catalog", path)
	require.NoError(t, err)

	out, err := runWithDatabase(t, db, "query", "--bundles")
	require.NoError(t, err)
	assert.Contains(t, out, "gesture")
}
