package store

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// runStoreContract exercises the behaviour every driver must share.
func runStoreContract(t *testing.T, newStore func(t *testing.T) Store) {
	t.Run("create and fetch user", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		created, err := s.CreateUser(ctx, "alice", "hash-1")
		require.NoError(t, err)
		assert.NotEmpty(t, created.ID)
		assert.Equal(t, "alice", created.Username)

		byName, err := s.GetUserByUsername(ctx, "alice")
		require.NoError(t, err)
		assert.Equal(t, created.ID, byName.ID)
		assert.Equal(t, "hash-1", byName.PasswordHash)

		byID, err := s.GetUserByID(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, "alice", byID.Username)
	})

	t.Run("duplicate username", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		_, err := s.CreateUser(ctx, "bob", "hash")
		require.NoError(t, err)
		_, err = s.CreateUser(ctx, "bob", "other")
		assert.ErrorIs(t, err, ErrDuplicateUsername)
	})

	t.Run("unknown user", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		_, err := s.GetUserByUsername(ctx, "nobody")
		assert.ErrorIs(t, err, ErrNotFound)
		_, err = s.GetUserByID(ctx, "not-an-id")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("transcript not found before first append", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		_, err := s.GetTranscript(ctx, "user-1")
		assert.ErrorIs(t, err, ErrNotFound)

		require.NoError(t, s.AppendExchange(ctx, "user-1", Exchange{User: "hi", Bot: "hello"}))

		transcript, err := s.GetTranscript(ctx, "user-1")
		require.NoError(t, err)
		assert.Equal(t, "user-1", transcript.UserID)
		require.Len(t, transcript.Messages, 1)
		assert.Equal(t, "hi", transcript.Messages[0].User)
		assert.Equal(t, "hello", transcript.Messages[0].Bot)
		assert.False(t, transcript.Messages[0].Timestamp.IsZero())
	})

	t.Run("append preserves order and grows by one", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		for i := 0; i < 3; i++ {
			require.NoError(t, s.AppendExchange(ctx, "user-2", Exchange{
				User: fmt.Sprintf("q%d", i),
				Bot:  fmt.Sprintf("a%d", i),
			}))
		}
		before, err := s.GetTranscript(ctx, "user-2")
		require.NoError(t, err)

		last := Exchange{User: "q3", Bot: "a3"}
		require.NoError(t, s.AppendExchange(ctx, "user-2", last))

		after, err := s.GetTranscript(ctx, "user-2")
		require.NoError(t, err)
		require.Len(t, after.Messages, len(before.Messages)+1)
		for i, ex := range after.Messages {
			assert.Equal(t, fmt.Sprintf("q%d", i), ex.User)
		}
		assert.Equal(t, last.User, after.Messages[3].User)
		assert.Equal(t, last.Bot, after.Messages[3].Bot)
	})

	t.Run("transcripts are per user", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		require.NoError(t, s.AppendExchange(ctx, "user-a", Exchange{User: "a", Bot: "b"}))
		_, err := s.GetTranscript(ctx, "user-b")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("concurrent appends are not lost", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		require.NoError(t, s.AppendExchange(ctx, "user-c", Exchange{User: "seed", Bot: "seed"}))

		const n = 25
		var wg sync.WaitGroup
		errs := make(chan error, n)
		for i := 0; i < n; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				errs <- s.AppendExchange(ctx, "user-c", Exchange{
					User: fmt.Sprintf("m%d", i),
					Bot:  "ok",
				})
			}(i)
		}
		wg.Wait()
		close(errs)
		for err := range errs {
			require.NoError(t, err)
		}

		transcript, err := s.GetTranscript(ctx, "user-c")
		require.NoError(t, err)
		assert.Len(t, transcript.Messages, n+1)
	})
}
