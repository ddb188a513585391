package data

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewStack_File(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "lab-1.csv"), labCSV)

	stack, err := NewStack(Options{Path: dir}, zerolog.Nop())
	require.NoError(t, err)
	defer stack.Close()

	require.NotNil(t, stack.Cached)

	for i := 0; i < 2; i++ {
		candidates, err := stack.Repository.GetCandidates(context.Background(), "lab-1", firstWindow)
		require.NoError(t, err)
		assert.Equal(t, []string{"c1", "c2"}, ids(candidates))
	}

	hits, misses := stack.Cached.Stats()
	assert.Equal(t, int64(1), hits)
	assert.Equal(t, int64(1), misses)
}

func TestNewStack_NoCache(t *testing.T) {
	stack, err := NewStack(Options{Path: t.TempDir(), DisableCache: true}, zerolog.Nop())
	require.NoError(t, err)

	assert.Nil(t, stack.Cached)
	assert.IsType(t, &FileRepository{}, stack.Repository)
	assert.NoError(t, stack.Close())
}

func TestNewStack_InvalidSource(t *testing.T) {
	_, err := NewStack(Options{}, zerolog.Nop())
	assert.Error(t, err)

	_, err = NewStack(Options{Path: "x.csv", DatabaseDSN: "postgres://localhost/db"}, zerolog.Nop())
	assert.Error(t, err)
}
