// Package session owns the client-side authentication state of the employee
// app: token acquisition, biometric-gated re-authentication, per-account
// credential preferences and multi-tenant employee selection. Screens read
// state through Snapshot/Subscribe and mutate it only through Manager
// actions; the navigation guard consumes the same snapshots.
package session

import "github.com/nommy-app/employee-session/users"

// Snapshot is a value copy of the session state at one commit. CurrentUser
// is deep-copied, so holding a snapshot across later actions is safe.
type Snapshot struct {
	CurrentUser     *users.User
	IsAuthenticated bool

	// IsLoading is true from construction until Rehydrate completes and
	// during an in-flight sign-in. The navigation guard renders neutral
	// while it is set.
	IsLoading bool

	// NeedsEmployeeSelection is true when a signed-in user still has to
	// pick (or re-pick) the employee record to work under.
	NeedsEmployeeSelection bool

	// Per-account login screen preferences, loaded by email before sign-in.
	BiometricEnabled  bool
	RememberPassword  bool
	ShowPasswordInput bool
	SavedPassword     string

	// BiometricChoicePending is set after the first successful sign-in for
	// an email that has never answered the "save biometric credentials?"
	// prompt. The UI presents the choice and calls RecordBiometricChoice.
	BiometricChoicePending bool

	LastEmail string
}

func (s Snapshot) clone() Snapshot {
	clone := s
	clone.CurrentUser = s.CurrentUser.Clone()
	return clone
}

func signedOutState() Snapshot {
	return Snapshot{
		RememberPassword:  true,
		ShowPasswordInput: true,
	}
}

func initialState() Snapshot {
	state := signedOutState()
	state.IsLoading = true
	return state
}
