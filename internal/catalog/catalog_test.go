package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListMissingDir(t *testing.T) {
	files, err := New(t.TempDir()).List()
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestList(t *testing.T) {
	dataDir := t.TempDir()
	c := New(dataDir)
	require.NoError(t, os.MkdirAll(c.Dir(), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(c.Dir(), "roads.json"), make([]byte, 2048), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(c.Dir(), "fields.geojson"), []byte(`{}`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(c.Dir(), "notes.txt"), []byte("x"), 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(c.Dir(), "nested.geojson"), 0o755))

	files, err := c.List()
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Equal(t, "fields.geojson", files[0].Name)
	assert.Equal(t, "/sources/fields.geojson", files[0].URL)
	assert.Equal(t, "2 B", files[0].Size)
	assert.Equal(t, "roads.json", files[1].Name)
	assert.Equal(t, "2.0 KB", files[1].Size)
}
