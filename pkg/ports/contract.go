package ports

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/pdasim/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunSnapshotStoreContract runs a suite of tests to verify that a SnapshotStore implementation
// adheres to the defined interface contract.
func RunSnapshotStoreContract(t *testing.T, store SnapshotStore) {
	ctx := context.Background()
	sessionID := "contract-test-session-" + time.Now().Format("20060102150405")
	bp := domain.Blueprint{
		ID:       "anbn",
		Rules:    []string{"d(q0,a,Z0)=(q0,AZ0)", "d(q0,b,A)=(q1,ε)"},
		Final:    []string{"q1"},
		Examples: []domain.Example{{Input: "ab", Expect: domain.ExpectAccept}},
	}

	t.Run("Save and Load", func(t *testing.T) {
		snap := domain.NewSnapshot(sessionID, bp, "ab")
		snap.Steps = 2
		snap.Status = domain.StatusExploring
		snap.Output = "           │\n┌──────────┴─────────┐\n"

		err := store.Save(ctx, sessionID, snap)
		require.NoError(t, err, "Save should not return error")

		loaded, err := store.Load(ctx, sessionID)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, sessionID, loaded.SessionID)
		assert.Equal(t, bp, loaded.Blueprint)
		assert.Equal(t, "ab", loaded.Input)
		assert.Equal(t, 2, loaded.Steps)
		assert.Equal(t, domain.StatusExploring, loaded.Status)
		assert.Equal(t, snap.Output, loaded.Output)
		assert.WithinDuration(t, snap.UpdatedAt, loaded.UpdatedAt, time.Second)
	})

	t.Run("Loaded Copy Is Detached", func(t *testing.T) {
		loaded, err := store.Load(ctx, sessionID)
		require.NoError(t, err)
		loaded.Steps = 99
		loaded.Blueprint.Rules[0] = "changed"

		again, err := store.Load(ctx, sessionID)
		require.NoError(t, err)
		assert.Equal(t, 2, again.Steps)
		assert.Equal(t, bp.Rules[0], again.Blueprint.Rules[0])
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+sessionID)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		err := store.Save(ctx, sessionID, domain.NewSnapshot(sessionID, bp, "a"))
		require.NoError(t, err)

		err = store.Delete(ctx, sessionID)
		require.NoError(t, err, "Delete should not return error")

		_, err = store.Load(ctx, sessionID)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound, "Load after Delete should return ErrSessionNotFound")

		assert.NoError(t, store.Delete(ctx, sessionID), "deleting twice is not an error")
	})

	t.Run("List", func(t *testing.T) {
		id1 := sessionID + "-1"
		id2 := sessionID + "-2"
		require.NoError(t, store.Save(ctx, id1, domain.NewSnapshot(id1, bp, "a")))
		require.NoError(t, store.Save(ctx, id2, domain.NewSnapshot(id2, bp, "b")))

		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		sessions, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, sessions, id1)
		assert.Contains(t, sessions, id2)
	})
}
