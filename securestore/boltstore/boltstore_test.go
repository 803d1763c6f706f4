package boltstore_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/nommy-app/employee-session/securestore/boltstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "store.db")

	store, err := boltstore.Open(path, "hunter2")
	require.NoError(t, err)
	defer store.Close()

	require.NoError(t, store.Set(ctx, "auth-token", "tok-123"))

	got, err := store.Get(ctx, "auth-token")
	require.NoError(t, err)
	assert.Equal(t, "tok-123", got)

	// Absent keys are empty, not an error.
	got, err = store.Get(ctx, "never-set")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "store.db")

	store, err := boltstore.Open(path, "hunter2")
	require.NoError(t, err)
	defer store.Close()

	require.NoError(t, store.Set(ctx, "user-id", "42"))
	require.NoError(t, store.Delete(ctx, "user-id"))

	got, err := store.Get(ctx, "user-id")
	require.NoError(t, err)
	assert.Empty(t, got)

	// Deleting an absent key is a no-op.
	require.NoError(t, store.Delete(ctx, "user-id"))
}

func TestPersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "store.db")

	store, err := boltstore.Open(path, "hunter2")
	require.NoError(t, err)
	require.NoError(t, store.Set(ctx, "last-email", "ana.martinez@nommy.app"))
	require.NoError(t, store.Close())

	reopened, err := boltstore.Open(path, "hunter2")
	require.NoError(t, err)
	defer reopened.Close()

	got, err := reopened.Get(ctx, "last-email")
	require.NoError(t, err)
	assert.Equal(t, "ana.martinez@nommy.app", got)
}

func TestWrongPassphrase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.db")

	store, err := boltstore.Open(path, "correct")
	require.NoError(t, err)
	require.NoError(t, store.Close())

	_, err = boltstore.Open(path, "incorrect")
	require.ErrorIs(t, err, boltstore.ErrWrongPassphrase)
}

func TestEmptyPassphraseRejected(t *testing.T) {
	_, err := boltstore.Open(filepath.Join(t.TempDir(), "store.db"), "")
	require.Error(t, err)
}

func TestCancelledContext(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.db")
	store, err := boltstore.Open(path, "hunter2")
	require.NoError(t, err)
	defer store.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = store.Get(ctx, "auth-token")
	require.ErrorIs(t, err, context.Canceled)
	require.ErrorIs(t, store.Set(ctx, "auth-token", "x"), context.Canceled)
}
