package file_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/aretw0/pdasim/pkg/adapters/file"
	"github.com/aretw0/pdasim/pkg/domain"
	"github.com/aretw0/pdasim/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ ports.SnapshotStore = (*file.Store)(nil)

func TestFileStore_Contract(t *testing.T) {
	ports.RunSnapshotStoreContract(t, file.NewStore(t.TempDir()))
}

func TestFileStore_NoTempFilesLeft(t *testing.T) {
	dir := t.TempDir()
	store := file.NewStore(dir)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		snap := domain.NewSnapshot("s1", domain.Blueprint{ID: "x"}, "ab")
		snap.Steps = i
		require.NoError(t, store.Save(ctx, "s1", snap))
	}

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "s1.json", entries[0].Name())

	loaded, err := store.Load(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, 2, loaded.Steps)
}

func TestFileStore_RejectsUnsafeIDs(t *testing.T) {
	store := file.NewStore(t.TempDir())
	ctx := context.Background()
	snap := domain.NewSnapshot("x", domain.Blueprint{}, "")

	assert.Error(t, store.Save(ctx, "", snap))
	assert.Error(t, store.Save(ctx, "../escape", snap))
	_, err := store.Load(ctx, "a/b")
	assert.Error(t, err)
}

func TestFileStore_ListMissingDir(t *testing.T) {
	store := file.NewStore(filepath.Join(t.TempDir(), "missing"))
	ids, err := store.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, ids)
}
