package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func exerciseStore(t *testing.T, s LayerStore) {
	t.Helper()
	ctx := context.Background()

	_, ok, err := s.Visibility(ctx, "farm/Fields")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.SetVisibility(ctx, "farm/Fields", false))
	v, ok, err := s.Visibility(ctx, "farm/Fields")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.False(t, v)

	require.NoError(t, s.SetVisibility(ctx, "farm/Fields", true))
	v, _, err = s.Visibility(ctx, "farm/Fields")
	require.NoError(t, err)
	assert.True(t, v)

	require.NoError(t, s.SetVisibility(ctx, "basin/Wells", false))
	entries, err := s.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []Entry{
		{Key: "basin/Wells", Visible: false},
		{Key: "farm/Fields", Visible: true},
	}, entries)
}

func TestMemory(t *testing.T) {
	exerciseStore(t, NewMemory())
}

func TestDuckDB(t *testing.T) {
	db, err := Open(Config{})
	require.NoError(t, err)
	s, err := NewDuckDB(context.Background(), db)
	require.NoError(t, err)
	defer s.Close()

	exerciseStore(t, s)
}

func TestDuckDBFile(t *testing.T) {
	dir := t.TempDir()
	db, err := Open(Config{DataDir: dir, DBName: "test"})
	require.NoError(t, err)
	s, err := NewDuckDB(context.Background(), db)
	require.NoError(t, err)
	require.NoError(t, s.SetVisibility(context.Background(), "k", true))
	require.NoError(t, s.Close())

	db, err = Open(Config{DataDir: dir, DBName: "test"})
	require.NoError(t, err)
	s, err = NewDuckDB(context.Background(), db)
	require.NoError(t, err)
	defer s.Close()
	v, ok, err := s.Visibility(context.Background(), "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.True(t, v)
}
