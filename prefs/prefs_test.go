package prefs_test

import (
	"context"
	"testing"

	"github.com/nommy-app/employee-session/prefs"
	"github.com/nommy-app/employee-session/securestore"
	"github.com/nommy-app/employee-session/securestore/storefake"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testEmail = "jose.vargas@intelamexico.com.mx"

func TestLoadDefaultsWhenUnset(t *testing.T) {
	store := storefake.New()

	rec, err := prefs.Load(context.Background(), store, testEmail)
	require.NoError(t, err)

	assert.Equal(t, prefs.ChoiceUnset, rec.BiometricChoice)
	assert.False(t, rec.BiometricEnabled)
	assert.True(t, rec.RememberPassword, "remember-password defaults on")
	assert.Empty(t, rec.SavedPassword)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := storefake.New()

	rec := prefs.Default()
	rec.BiometricChoice = prefs.ChoiceAccepted
	rec.BiometricEnabled = true
	rec.SavedPassword = "s3cret"
	require.NoError(t, prefs.Save(ctx, store, testEmail, rec))

	loaded, err := prefs.Load(ctx, store, testEmail)
	require.NoError(t, err)
	assert.Equal(t, prefs.ChoiceAccepted, loaded.BiometricChoice)
	assert.True(t, loaded.BiometricEnabled)
	assert.True(t, loaded.RememberPassword)
	assert.Equal(t, "s3cret", loaded.SavedPassword)
}

func TestRecordsAreScopedByEmail(t *testing.T) {
	ctx := context.Background()
	store := storefake.New()

	rec := prefs.Default()
	rec.SavedPassword = "s3cret"
	require.NoError(t, prefs.Save(ctx, store, testEmail, rec))

	other, err := prefs.Load(ctx, store, "ana.martinez@nommy.app")
	require.NoError(t, err)
	assert.Empty(t, other.SavedPassword)
}

func TestLegacyKeyMigration(t *testing.T) {
	ctx := context.Background()
	store := storefake.New()

	store.Seed(securestore.LegacyBiometricChoiceKey(testEmail), "accepted")
	store.Seed(securestore.LegacyBiometricKey(testEmail), "true")
	store.Seed(securestore.LegacyRememberKey(testEmail), "false")
	store.Seed(securestore.LegacyPasswordKey(testEmail), "legacy-pass")

	rec, err := prefs.Load(ctx, store, testEmail)
	require.NoError(t, err)
	assert.Equal(t, prefs.ChoiceAccepted, rec.BiometricChoice)
	assert.True(t, rec.BiometricEnabled)
	assert.False(t, rec.RememberPassword)
	assert.Equal(t, "legacy-pass", rec.SavedPassword)

	// The consolidated record was written back.
	assert.True(t, store.Has(securestore.PrefsKey(testEmail)))
}

func TestLoadStorageError(t *testing.T) {
	store := storefake.New()
	store.GetErr = assert.AnError

	rec, err := prefs.Load(context.Background(), store, testEmail)
	require.ErrorIs(t, err, assert.AnError)

	// Callers that swallow the error still get usable defaults.
	assert.True(t, rec.RememberPassword)
	assert.Empty(t, rec.SavedPassword)
}
