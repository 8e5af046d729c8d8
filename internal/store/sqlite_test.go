package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "chat.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close(context.Background()) })
	return s
}

func TestSQLiteStore(t *testing.T) {
	runStoreContract(t, func(t *testing.T) Store {
		return newTestSQLiteStore(t)
	})
}

func TestSQLiteStoreSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chat.db")
	ctx := context.Background()

	s, err := NewSQLiteStore(path)
	require.NoError(t, err)
	user, err := s.CreateUser(ctx, "carol", "hash")
	require.NoError(t, err)
	require.NoError(t, s.AppendExchange(ctx, user.ID, Exchange{User: "hi", Bot: "hey"}))
	require.NoError(t, s.Close(ctx))

	reopened, err := NewSQLiteStore(path)
	require.NoError(t, err)
	defer reopened.Close(ctx)

	got, err := reopened.GetUserByUsername(ctx, "carol")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)

	transcript, err := reopened.GetTranscript(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, transcript.Messages, 1)
	assert.Equal(t, "hey", transcript.Messages[0].Bot)
}
