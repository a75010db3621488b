package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProcessedRepository_AddContainsRemove(t *testing.T) {
	repo := NewProcessedRepository()
	ctx := context.Background()

	seen, err := repo.Contains(ctx, "li-1")
	require.NoError(t, err)
	assert.False(t, seen)

	require.NoError(t, repo.Add(ctx, "li-1"))
	require.NoError(t, repo.Add(ctx, "li-1")) // duplicate add is harmless

	seen, err = repo.Contains(ctx, "li-1")
	require.NoError(t, err)
	assert.True(t, seen)
	assert.Equal(t, 1, repo.Count())

	require.NoError(t, repo.Remove(ctx, "li-1"))
	seen, err = repo.Contains(ctx, "li-1")
	require.NoError(t, err)
	assert.False(t, seen)
}

func TestProcessedRepository_Reset(t *testing.T) {
	repo := NewProcessedRepository()
	ctx := context.Background()

	require.NoError(t, repo.Add(ctx, "li-1"))
	require.NoError(t, repo.Add(ctx, "li-2"))
	require.Equal(t, 2, repo.Count())

	require.NoError(t, repo.Reset(ctx))
	assert.Equal(t, 0, repo.Count())
}
