package fsutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindFilesByExtension(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.hcl", "a.hcl", "notes.txt", "sub/c.hcl"} {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte("x"), 0644))
	}

	t.Run("walks directories and sorts results", func(t *testing.T) {
		files, err := FindFilesByExtension(dir, ".hcl")
		require.NoError(t, err)
		assert.Equal(t, []string{
			filepath.Join(dir, "a.hcl"),
			filepath.Join(dir, "b.hcl"),
			filepath.Join(dir, "sub", "c.hcl"),
		}, files)
	})

	t.Run("accepts a single file", func(t *testing.T) {
		files, err := FindFilesByExtension(filepath.Join(dir, "a.hcl"), ".hcl")
		require.NoError(t, err)
		assert.Equal(t, []string{filepath.Join(dir, "a.hcl")}, files)
	})

	t.Run("single file with wrong extension yields nothing", func(t *testing.T) {
		files, err := FindFilesByExtension(filepath.Join(dir, "notes.txt"), ".hcl")
		require.NoError(t, err)
		assert.Empty(t, files)
	})

	t.Run("missing path errors", func(t *testing.T) {
		_, err := FindFilesByExtension(filepath.Join(dir, "missing"), ".hcl")
		assert.Error(t, err)
	})
}
