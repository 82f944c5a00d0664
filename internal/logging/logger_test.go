package logging

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_WritesAtLevel(t *testing.T) {
	var buf bytes.Buffer
	log, err := New(&buf, "warn")
	require.NoError(t, err)

	log.Info().Msg("hidden")
	log.Warn().Str("file", "a.txt").Msg("read failed")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "read failed")
	assert.Contains(t, out, "file=a.txt")
}

func TestNew_BadLevel(t *testing.T) {
	_, err := New(&bytes.Buffer{}, "loud")
	assert.Error(t, err)
}

func TestNew_NilWriterDiscards(t *testing.T) {
	log, err := New(nil, "debug")
	require.NoError(t, err)
	log.Error().Msg("nowhere")
}

func TestOpenFile_Appends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cf-upload.log")
	f, err := OpenFile(path)
	require.NoError(t, err)
	log, err := New(f, "")
	require.NoError(t, err)
	log.Info().Msg("hello")
	require.NoError(t, f.Close())
	assert.FileExists(t, path)
}
