package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBlobStore(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "audio")
	b, err := NewBlobStore(dir)
	require.NoError(t, err)

	t.Run("write and reference", func(t *testing.T) {
		require.NoError(t, b.Write("ep1.wav", []byte("RIFF")))
		assert.Equal(t, "/audio/ep1.wav", b.URLFor("ep1.wav"))

		raw, err := os.ReadFile(filepath.Join(dir, "ep1.wav"))
		require.NoError(t, err)
		assert.Equal(t, []byte("RIFF"), raw)
	})

	t.Run("path components are stripped from names", func(t *testing.T) {
		require.NoError(t, b.Write("../escape.wav", []byte("x")))
		_, err := os.Stat(filepath.Join(dir, "escape.wav"))
		assert.NoError(t, err, "file lands inside the audio dir")
		assert.Equal(t, "/audio/escape.wav", b.URLFor("../escape.wav"))
	})

	t.Run("remove deletes local references", func(t *testing.T) {
		require.NoError(t, b.Write("gone.wav", []byte("x")))
		b.Remove("/audio/gone.wav")
		_, err := os.Stat(filepath.Join(dir, "gone.wav"))
		assert.True(t, os.IsNotExist(err))
	})

	t.Run("remove ignores foreign and missing references", func(t *testing.T) {
		b.Remove("https://cdn.example.com/audio/other.wav")
		b.Remove("/audio/never-existed.wav")
		b.Remove("")
	})
}
