package history

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppendAndQuery(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "history.sqlite3")
	s, err := Open(ctx, path)
	require.NoError(t, err)

	require.NoError(t, s.Append(ctx, Report{Stage: 1, Batch: 2, P1Wins: 3, Draws: 1, P2Wins: 6, Moves: 71, GamesPerSec: 1500}))
	require.NoError(t, s.Append(ctx, Report{Stage: 1, Batch: 1, P1Wins: 5, Draws: 2, P2Wins: 3, Moves: 70}))
	require.NoError(t, s.Append(ctx, Report{Stage: 2, Batch: 1, P1Wins: 9}))
	require.NoError(t, s.Close())

	// reopen to make sure the rows were persisted
	s, err = Open(ctx, path)
	require.NoError(t, err)
	defer s.Close()

	got, err := s.Stage(ctx, 1)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, 1, got[0].Batch)
	assert.Equal(t, 5, got[0].P1Wins)
	assert.Equal(t, 2, got[1].Batch)
	assert.Equal(t, 71, got[1].Moves)
	assert.Equal(t, 1500.0, got[1].GamesPerSec)
	assert.False(t, got[0].At.IsZero())

	other, err := s.Stage(ctx, 3)
	require.NoError(t, err)
	assert.Empty(t, other)
}
