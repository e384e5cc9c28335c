package tokenstore

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemory(t *testing.T) {
	m := NewMemory()

	_, ok, err := m.Load()
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, m.Save("first"))
	require.NoError(t, m.Save("second"))
	token, ok, err := m.Load()
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "second", token)

	require.NoError(t, m.Clear())
	_, ok, _ = m.Load()
	assert.False(t, ok)
}

func TestFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "token")
	f := NewFile(path)

	t.Run("missing file is an empty slot", func(t *testing.T) {
		_, ok, err := f.Load()
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("save creates the file owner-only", func(t *testing.T) {
		require.NoError(t, f.Save("a.b.c"))
		token, ok, err := f.Load()
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, "a.b.c", token)

		if runtime.GOOS != "windows" {
			info, err := os.Stat(path)
			require.NoError(t, err)
			assert.Equal(t, os.FileMode(fileMode), info.Mode().Perm())
		}
	})

	t.Run("last writer wins and no temp files remain", func(t *testing.T) {
		require.NoError(t, f.Save("x.y.z"))
		token, _, err := f.Load()
		require.NoError(t, err)
		assert.Equal(t, "x.y.z", token)

		entries, err := os.ReadDir(filepath.Dir(path))
		require.NoError(t, err)
		assert.Len(t, entries, 1)
	})

	t.Run("clear is idempotent", func(t *testing.T) {
		require.NoError(t, f.Clear())
		require.NoError(t, f.Clear())
		_, ok, err := f.Load()
		require.NoError(t, err)
		assert.False(t, ok)
	})
}
