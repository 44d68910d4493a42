package driver

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/zip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeZip(t *testing.T, path string, files map[string]string) {
	t.Helper()
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	w := zip.NewWriter(f)
	for name, content := range files {
		fw, err := w.Create(name)
		require.NoError(t, err)
		_, err = fw.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
}

func TestArchiveDriver_ExtractMember(t *testing.T) {
	root := t.TempDir()
	writeZip(t, filepath.Join(root, "fb2-000001.zip"), map[string]string{
		"1.fb2": "<FictionBook>azazel</FictionBook>",
	})
	require.NoError(t, os.WriteFile(filepath.Join(root, "plain.zip"), []byte("not a zip"), 0o600))

	d := NewArchiveDriver(root)

	t.Run("extracts member", func(t *testing.T) {
		dest := t.TempDir()
		path, err := d.ExtractMember("fb2-000001.zip", "1.fb2", dest)
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(dest, "1.fb2"), path)
		content, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, "<FictionBook>azazel</FictionBook>", string(content))
	})

	t.Run("directory parts of archive name are ignored", func(t *testing.T) {
		_, err := d.ExtractMember("../../elsewhere/fb2-000001.zip", "1.fb2", t.TempDir())
		require.NoError(t, err)
	})

	t.Run("missing archive", func(t *testing.T) {
		_, err := d.ExtractMember("nope.zip", "1.fb2", t.TempDir())
		assert.ErrorIs(t, err, ErrArchiveNotFound)
	})

	t.Run("not a zip", func(t *testing.T) {
		_, err := d.ExtractMember("plain.zip", "1.fb2", t.TempDir())
		assert.ErrorIs(t, err, ErrArchiveInvalid)
	})

	t.Run("missing member", func(t *testing.T) {
		_, err := d.ExtractMember("fb2-000001.zip", "2.fb2", t.TempDir())
		assert.ErrorIs(t, err, ErrMemberNotFound)
	})

	for _, member := range []string{"../1.fb2", "/etc/passwd", "books/../../1.fb2", ""} {
		t.Run("member name escapes "+member, func(t *testing.T) {
			dest := t.TempDir()
			_, err := d.ExtractMember("fb2-000001.zip", member, dest)
			assert.ErrorIs(t, err, ErrMemberInvalid)
			var driverErr *DriverError
			assert.False(t, errors.As(err, &driverErr))

			entries, err := os.ReadDir(dest)
			require.NoError(t, err)
			assert.Empty(t, entries)
		})
	}
}
