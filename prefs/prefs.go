// Package prefs persists the per-email Credential Preference Record: the
// remembered biometric choice, the biometric-enabled flag, the
// remember-password flag and the saved password. One versioned JSON record
// per email replaces the scattered legacy per-email keys, which are still
// read and migrated on first load.
package prefs

import (
	"context"
	"encoding/json"

	"github.com/pkg/errors"

	"github.com/nommy-app/employee-session/securestore"
)

// BiometricChoice is the answer the user gave to the one-time
// "save biometric credentials?" prompt. It is permanent per email.
type BiometricChoice string

const (
	ChoiceUnset    BiometricChoice = ""
	ChoiceAccepted BiometricChoice = "accepted"
	ChoiceRejected BiometricChoice = "rejected"
)

const recordVersion = 1

// Record is the durable credential preference state for one email.
type Record struct {
	Version          int             `json:"version"`
	BiometricChoice  BiometricChoice `json:"biometricChoice,omitempty"`
	BiometricEnabled bool            `json:"biometricEnabled"`
	RememberPassword bool            `json:"rememberPassword"`
	SavedPassword    string          `json:"savedPassword,omitempty"`
}

// Default is the record for an email that has never signed in:
// remember-password starts on, everything else off.
func Default() Record {
	return Record{Version: recordVersion, RememberPassword: true}
}

// Load reads the record for email. A missing record falls back to the legacy
// per-email keys; if any of those are present the consolidated record is
// written back so the next load skips the legacy path.
func Load(ctx context.Context, store securestore.Store, email string) (Record, error) {
	raw, err := store.Get(ctx, securestore.PrefsKey(email))
	if err != nil {
		return Default(), errors.Wrap(err, "[prefs.Load] store.Get")
	}
	if raw != "" {
		var rec Record
		if err := json.Unmarshal([]byte(raw), &rec); err != nil {
			return Default(), errors.Wrap(err, "[prefs.Load] unmarshal record")
		}
		return rec, nil
	}

	rec, found, err := loadLegacy(ctx, store, email)
	if err != nil {
		return Default(), err
	}
	if !found {
		return Default(), nil
	}
	if err := Save(ctx, store, email, rec); err != nil {
		return rec, errors.Wrap(err, "[prefs.Load] migrate legacy record")
	}
	return rec, nil
}

// Save writes the record for email.
func Save(ctx context.Context, store securestore.Store, email string, rec Record) error {
	rec.Version = recordVersion
	raw, err := json.Marshal(rec)
	if err != nil {
		return errors.Wrap(err, "[prefs.Save] marshal record")
	}
	return errors.Wrap(store.Set(ctx, securestore.PrefsKey(email), string(raw)), "[prefs.Save] store.Set")
}

func loadLegacy(ctx context.Context, store securestore.Store, email string) (Record, bool, error) {
	rec := Default()
	found := false

	choice, err := store.Get(ctx, securestore.LegacyBiometricChoiceKey(email))
	if err != nil {
		return rec, false, errors.Wrap(err, "[prefs.loadLegacy] biometric choice")
	}
	switch BiometricChoice(choice) {
	case ChoiceAccepted, ChoiceRejected:
		rec.BiometricChoice = BiometricChoice(choice)
		found = true
	}

	enabled, err := store.Get(ctx, securestore.LegacyBiometricKey(email))
	if err != nil {
		return rec, false, errors.Wrap(err, "[prefs.loadLegacy] biometric flag")
	}
	if enabled != "" {
		rec.BiometricEnabled = enabled == "true"
		found = true
	}

	remember, err := store.Get(ctx, securestore.LegacyRememberKey(email))
	if err != nil {
		return rec, false, errors.Wrap(err, "[prefs.loadLegacy] remember flag")
	}
	if remember != "" {
		rec.RememberPassword = remember != "false"
		found = true
	}

	password, err := store.Get(ctx, securestore.LegacyPasswordKey(email))
	if err != nil {
		return rec, false, errors.Wrap(err, "[prefs.loadLegacy] password")
	}
	if password != "" {
		rec.SavedPassword = password
		found = true
	}

	return rec, found, nil
}
