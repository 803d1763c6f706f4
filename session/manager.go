package session

import (
	"context"
	"encoding/json"
	"strconv"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/nommy-app/employee-session/authapi"
	"github.com/nommy-app/employee-session/biometric"
	"github.com/nommy-app/employee-session/prefs"
	"github.com/nommy-app/employee-session/securestore"
	"github.com/nommy-app/employee-session/users"
)

// Collaborators holds the external dependencies of the Manager.
type Collaborators struct {
	API       authapi.Client    // Remote auth API
	Store     securestore.Store // Durable encrypted key-value storage
	Biometric biometric.Prompt  // Device biometric capability
}

// Manager mediates between the UI, the secure credential store, the
// biometric prompt and the remote auth API. One Manager per process; state
// commits are serialized internally so Snapshot and Subscribe are safe from
// any goroutine, but overlapping mutating actions (two concurrent SignIn
// calls) are a caller error: disable the submit control while IsLoading.
type Manager struct {
	deps    Collaborators
	log     zerolog.Logger
	nowTime func() time.Time // injectable for testing

	mu    sync.Mutex
	state Snapshot

	// lastPassword is the effective password of the most recent successful
	// sign-in, retained only for the post-sign-in preference flow and
	// RecordBiometricChoice. Cleared on logout.
	lastPassword string

	subscribers      map[int]func(Snapshot)
	nextSubscriberID int

	// cleanup tracks background logout deletions so a following sign-in can
	// wait for them before persisting fresh credentials.
	cleanup sync.WaitGroup
}

// Option modifies a Manager at construction time.
type Option func(*Manager)

// WithLogger sets the logger used for swallowed storage and preference
// errors.
func WithLogger(log zerolog.Logger) Option {
	return func(m *Manager) { m.log = log }
}

// WithNowTime sets the now time function (primarily for testing).
func WithNowTime(nowFunc func() time.Time) Option {
	return func(m *Manager) { m.nowTime = nowFunc }
}

// NewManager initializes a Manager with required collaborators. The session
// starts loading; call Rehydrate before consulting the navigation guard.
func NewManager(deps Collaborators, options ...Option) (*Manager, error) {
	if deps.API == nil {
		return nil, errors.New("[NewManager] API client is required")
	}
	if deps.Store == nil {
		return nil, errors.New("[NewManager] Store is required")
	}
	if deps.Biometric == nil {
		return nil, errors.New("[NewManager] Biometric prompt is required")
	}

	manager := &Manager{
		deps:        deps,
		log:         zerolog.Nop(),
		nowTime:     time.Now,
		state:       initialState(),
		subscribers: make(map[int]func(Snapshot)),
	}
	for _, opt := range options {
		opt(manager)
	}
	return manager, nil
}

// Snapshot returns a copy of the current session state.
func (m *Manager) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.clone()
}

// Subscribe registers fn to receive a snapshot after every committed state
// change. The returned function unsubscribes.
func (m *Manager) Subscribe(fn func(Snapshot)) func() {
	m.mu.Lock()
	id := m.nextSubscriberID
	m.nextSubscriberID++
	m.subscribers[id] = fn
	m.mu.Unlock()

	return func() {
		m.mu.Lock()
		delete(m.subscribers, id)
		m.mu.Unlock()
	}
}

// commit applies mutate to the state and notifies subscribers outside the
// lock, in subscription order not guaranteed.
func (m *Manager) commit(mutate func(*Snapshot)) {
	m.mu.Lock()
	mutate(&m.state)
	snapshot := m.state.clone()
	notify := make([]func(Snapshot), 0, len(m.subscribers))
	for _, fn := range m.subscribers {
		notify = append(notify, fn)
	}
	m.mu.Unlock()

	for _, fn := range notify {
		fn(snapshot)
	}
}

// SignIn authenticates email against the remote API. When biometric sign-in
// is armed (enabled, password field hidden, password saved) the challenge
// runs first and the saved password substitutes for the supplied one; a
// failed or unavailable challenge reveals the password field and aborts
// without touching the network.
//
// Failure modes: ErrMissingCredentials, ErrBiometricUnavailable,
// ErrBiometricFailed, ErrNoEligibleEmployees, and pass-throughs of
// authapi.ErrInvalidCredentials, authapi.ErrNetwork and *authapi.APIError.
// On any failure the session stays signed out and IsLoading returns to
// false.
func (m *Manager) SignIn(ctx context.Context, email, password string) error {
	if email == "" {
		return ErrMissingCredentials
	}

	m.mu.Lock()
	useBiometric := m.state.BiometricEnabled && !m.state.ShowPasswordInput && m.state.SavedPassword != ""
	savedPassword := m.state.SavedPassword
	m.mu.Unlock()

	// The password field is hidden while biometric sign-in is armed, so an
	// empty password is only a caller error on the password path.
	if !useBiometric && password == "" {
		return ErrMissingCredentials
	}

	if useBiometric {
		if !m.biometricAvailable(ctx) {
			m.commit(func(s *Snapshot) { s.ShowPasswordInput = true })
			return ErrBiometricUnavailable
		}
		if !m.biometricChallenge(ctx) {
			m.commit(func(s *Snapshot) { s.ShowPasswordInput = true })
			return ErrBiometricFailed
		}
		password = savedPassword
	}

	m.commit(func(s *Snapshot) { s.IsLoading = true })

	resp, err := m.deps.API.SignIn(ctx, email, password)
	if err != nil {
		m.commit(func(s *Snapshot) { s.IsLoading = false })
		return errors.Wrap(err, "[Manager.SignIn] api.SignIn")
	}

	if len(resp.User.Employees) == 0 {
		m.commit(func(s *Snapshot) { s.IsLoading = false })
		return ErrNoEligibleEmployees
	}

	// A logout's background deletion may still be running; let it finish so
	// it cannot erase the credentials persisted below.
	m.cleanup.Wait()

	if err := m.deps.Store.Set(ctx, securestore.KeyAuthToken, resp.Token); err != nil {
		m.log.Warn().Err(err).Msg("persisting auth token")
	}
	if err := m.deps.Store.Set(ctx, securestore.KeyUserID, strconv.Itoa(resp.User.ID)); err != nil {
		m.log.Warn().Err(err).Msg("persisting user id")
	}

	user := resp.User
	needsSelection := m.resolveSelection(ctx, user)

	m.mu.Lock()
	m.lastPassword = password
	m.mu.Unlock()

	m.commit(func(s *Snapshot) {
		s.CurrentUser = user
		s.IsAuthenticated = true
		s.IsLoading = false
		s.NeedsEmployeeSelection = needsSelection
		s.LastEmail = email
	})

	m.runPostSignInFlow(ctx, email, password)
	return nil
}

// resolveSelection decides the active employee for a freshly loaded user.
// A single-record list is selected outright; longer lists auto-select only
// when a previously confirmed choice for this user is still present.
// Returns whether the selection screen is needed.
func (m *Manager) resolveSelection(ctx context.Context, user *users.User) bool {
	if len(user.Employees) == 1 {
		user.SelectedEmployee = &user.Employees[0]
		m.persistSelection(ctx, user.ID, user.Employees[0].ID)
		return false
	}

	saved, err := m.deps.Store.Get(ctx, securestore.SelectedEmployeeKey(user.ID))
	if err != nil {
		m.log.Warn().Err(err).Msg("reading saved employee selection")
	}
	if saved != "" {
		if id, convErr := strconv.Atoi(saved); convErr == nil {
			if found := user.EmployeeByID(id); found != nil {
				user.SelectedEmployee = found
				m.persistEmployeeID(ctx, found.ID)
				return false
			}
		}
	}

	user.SelectedEmployee = nil
	return true
}

func (m *Manager) persistSelection(ctx context.Context, userID, employeeID int) {
	key := securestore.SelectedEmployeeKey(userID)
	if err := m.deps.Store.Set(ctx, key, strconv.Itoa(employeeID)); err != nil {
		m.log.Warn().Err(err).Str("key", key).Msg("persisting employee selection")
	}
	m.persistEmployeeID(ctx, employeeID)
}

func (m *Manager) persistEmployeeID(ctx context.Context, employeeID int) {
	if err := m.deps.Store.Set(ctx, securestore.KeyEmployeeID, strconv.Itoa(employeeID)); err != nil {
		m.log.Warn().Err(err).Msg("persisting employee id")
	}
}

// runPostSignInFlow persists the last-used email and applies the stored
// biometric choice for it. Storage failures here are logged, never
// surfaced. A broken preference write must not undo a successful sign-in.
func (m *Manager) runPostSignInFlow(ctx context.Context, email, password string) {
	if err := m.deps.Store.Set(ctx, securestore.KeyLastEmail, email); err != nil {
		m.log.Warn().Err(err).Msg("persisting last email")
	}

	rec, err := prefs.Load(ctx, m.deps.Store, email)
	if err != nil {
		m.log.Warn().Err(err).Msg("loading credential preferences after sign-in")
	}

	m.mu.Lock()
	remember := m.state.RememberPassword
	m.mu.Unlock()

	switch rec.BiometricChoice {
	case prefs.ChoiceAccepted:
		rec.BiometricEnabled = true
		rec.SavedPassword = password
		rec.RememberPassword = remember
		if err := prefs.Save(ctx, m.deps.Store, email, rec); err != nil {
			m.log.Warn().Err(err).Msg("saving credential preferences")
		}
		m.commit(func(s *Snapshot) {
			s.BiometricEnabled = true
			s.SavedPassword = password
		})
	case prefs.ChoiceRejected:
		rec.BiometricEnabled = false
		rec.RememberPassword = remember
		if remember {
			rec.SavedPassword = password
		} else {
			rec.SavedPassword = ""
		}
		if err := prefs.Save(ctx, m.deps.Store, email, rec); err != nil {
			m.log.Warn().Err(err).Msg("saving credential preferences")
		}
		m.commit(func(s *Snapshot) {
			s.BiometricEnabled = false
			s.SavedPassword = rec.SavedPassword
		})
	default:
		// First sign-in for this email: the UI owns the prompt, the state
		// transition happens in RecordBiometricChoice.
		m.commit(func(s *Snapshot) { s.BiometricChoicePending = true })
	}
}

// RecordBiometricChoice stores the user's answer to the one-time "save
// biometric credentials?" prompt for email and applies the matching branch.
// The choice is permanent per email; there is no action to reset it.
func (m *Manager) RecordBiometricChoice(ctx context.Context, email string, accepted bool) error {
	rec, err := prefs.Load(ctx, m.deps.Store, email)
	if err != nil {
		m.log.Warn().Err(err).Msg("loading credential preferences")
		rec = prefs.Default()
	}

	m.mu.Lock()
	password := m.lastPassword
	remember := m.state.RememberPassword
	userID := 0
	if m.state.CurrentUser != nil {
		userID = m.state.CurrentUser.ID
	}
	m.mu.Unlock()

	if accepted {
		rec.BiometricChoice = prefs.ChoiceAccepted
		rec.BiometricEnabled = true
		if password != "" {
			rec.SavedPassword = password
		}
		m.persistBiometricCredentials(ctx, userID)
	} else {
		rec.BiometricChoice = prefs.ChoiceRejected
		rec.BiometricEnabled = false
		if remember && password != "" {
			rec.SavedPassword = password
		} else if !remember {
			rec.SavedPassword = ""
		}
		if err := m.deps.Store.Delete(ctx, securestore.KeyBiometricCredentials); err != nil {
			m.log.Warn().Err(err).Msg("clearing biometric credentials marker")
		}
	}
	rec.RememberPassword = remember

	m.commit(func(s *Snapshot) {
		s.BiometricChoicePending = false
		s.BiometricEnabled = rec.BiometricEnabled
		s.SavedPassword = rec.SavedPassword
		if accepted {
			s.ShowPasswordInput = false
		}
	})

	return errors.Wrap(prefs.Save(ctx, m.deps.Store, email, rec), "[Manager.RecordBiometricChoice] prefs.Save")
}

// persistBiometricCredentials writes the biometric_credentials marker the
// mobile shell reads to offer the biometric login button.
func (m *Manager) persistBiometricCredentials(ctx context.Context, userID int) {
	marker, err := json.Marshal(struct {
		UserID  int  `json:"userId"`
		Enabled bool `json:"enabled"`
	}{UserID: userID, Enabled: true})
	if err != nil {
		m.log.Warn().Err(err).Msg("encoding biometric credentials marker")
		return
	}
	if err := m.deps.Store.Set(ctx, securestore.KeyBiometricCredentials, string(marker)); err != nil {
		m.log.Warn().Err(err).Msg("persisting biometric credentials marker")
	}
}

// SelectEmployee makes employee the active tenant context and persists the
// choice for this user on this device. Selecting the current employee again
// is a no-op. Requires an authenticated session.
func (m *Manager) SelectEmployee(ctx context.Context, employee users.Employee) error {
	m.mu.Lock()
	authenticated := m.state.IsAuthenticated && m.state.CurrentUser != nil
	var userID int
	var found *users.Employee
	alreadySelected := false
	if authenticated {
		userID = m.state.CurrentUser.ID
		found = m.state.CurrentUser.EmployeeByID(employee.ID)
		alreadySelected = m.state.CurrentUser.SelectedEmployee != nil &&
			m.state.CurrentUser.SelectedEmployee.ID == employee.ID &&
			!m.state.NeedsEmployeeSelection
	}
	m.mu.Unlock()

	if !authenticated {
		return ErrNotAuthenticated
	}
	if found == nil {
		return ErrEmployeeNotFound
	}
	if alreadySelected {
		return nil
	}

	m.persistSelection(ctx, userID, employee.ID)

	m.commit(func(s *Snapshot) {
		s.CurrentUser.SelectedEmployee = s.CurrentUser.EmployeeByID(employee.ID)
		s.NeedsEmployeeSelection = false
	})
	return nil
}

// ChangeEmployee re-opens the selection screen while keeping the current
// choice as fallback.
func (m *Manager) ChangeEmployee() {
	m.commit(func(s *Snapshot) { s.NeedsEmployeeSelection = true })
}

// Logout clears the session synchronously so the navigation guard redirects
// immediately, then deletes the persisted credentials in the background.
// Storage failures are logged and swallowed; logout never fails.
func (m *Manager) Logout(ctx context.Context) {
	m.mu.Lock()
	m.lastPassword = ""
	m.mu.Unlock()

	m.commit(func(s *Snapshot) { *s = signedOutState() })

	cleanupCtx := context.WithoutCancel(ctx)
	m.cleanup.Add(1)
	go func() {
		defer m.cleanup.Done()
		for _, key := range []string{
			securestore.KeyAuthToken,
			securestore.KeyUserID,
			securestore.KeyEmployeeID,
			securestore.KeyBiometricCredentials,
		} {
			if err := m.deps.Store.Delete(cleanupCtx, key); err != nil {
				m.log.Warn().Err(err).Str("key", key).Msg("logout storage cleanup")
			}
		}
	}()
}

// AuthenticateWithBiometric runs the device challenge when hardware is
// present and enrolled. Returns false without showing a prompt otherwise.
// Never returns an error; internal failures count as false.
func (m *Manager) AuthenticateWithBiometric(ctx context.Context) bool {
	if !m.biometricAvailable(ctx) {
		return false
	}
	return m.biometricChallenge(ctx)
}

func (m *Manager) biometricAvailable(ctx context.Context) bool {
	available, err := m.deps.Biometric.Available(ctx)
	if err != nil {
		m.log.Warn().Err(err).Msg("biometric capability check")
		return false
	}
	return available
}

func (m *Manager) biometricChallenge(ctx context.Context) bool {
	ok, err := m.deps.Biometric.Authenticate(ctx, "Inicia sesión con tu huella o rostro")
	if err != nil {
		m.log.Warn().Err(err).Msg("biometric challenge")
		return false
	}
	return ok
}

// LoadEmailPreferences loads the Credential Preference Record for email and
// recomputes the login screen flags. The password field is hidden only when
// biometric sign-in can succeed without it. Invoke on screen mount with the
// last-used email and whenever the email field settles on a new value.
func (m *Manager) LoadEmailPreferences(ctx context.Context, email string) {
	rec, err := prefs.Load(ctx, m.deps.Store, email)
	if err != nil {
		m.log.Warn().Err(err).Str("email", email).Msg("loading email preferences")
		rec = prefs.Default()
	}

	m.commit(func(s *Snapshot) {
		s.BiometricEnabled = rec.BiometricEnabled
		s.RememberPassword = rec.RememberPassword
		s.SavedPassword = rec.SavedPassword
		s.ShowPasswordInput = !(rec.BiometricEnabled && rec.SavedPassword != "")
	})
}

// LastUsedEmail returns the email of the most recent successful sign-in on
// this device, or "" when none is stored.
func (m *Manager) LastUsedEmail(ctx context.Context) string {
	email, err := m.deps.Store.Get(ctx, securestore.KeyLastEmail)
	if err != nil {
		m.log.Warn().Err(err).Msg("reading last email")
		return ""
	}
	return email
}

// ToggleRememberPassword flips the remember-password flag in memory only;
// storage is written on the next successful sign-in.
func (m *Manager) ToggleRememberPassword() {
	m.commit(func(s *Snapshot) { s.RememberPassword = !s.RememberPassword })
}

// Rehydrate restores the session from the secure store at startup. It must
// complete before the navigation guard makes its first redirect decision;
// IsLoading stays true until it does. A locally expired token gets one
// best-effort refresh; any failure from there lands in a clean signed-out
// state rather than an error.
func (m *Manager) Rehydrate(ctx context.Context) {
	token, err := m.deps.Store.Get(ctx, securestore.KeyAuthToken)
	if err != nil {
		m.log.Warn().Err(err).Msg("reading persisted token")
	}
	if token == "" {
		m.commit(func(s *Snapshot) { *s = signedOutState() })
		return
	}

	if authapi.TokenExpired(token, m.nowTime()) {
		fresh, err := m.deps.API.Refresh(ctx, token)
		if err != nil {
			m.log.Info().Err(err).Msg("token refresh failed, starting signed out")
			m.commit(func(s *Snapshot) { *s = signedOutState() })
			return
		}
		token = fresh
		if err := m.deps.Store.Set(ctx, securestore.KeyAuthToken, token); err != nil {
			m.log.Warn().Err(err).Msg("persisting refreshed token")
		}
	}

	user, err := m.deps.API.Me(ctx, token)
	if err != nil {
		m.log.Info().Err(err).Msg("restoring session failed, starting signed out")
		m.commit(func(s *Snapshot) { *s = signedOutState() })
		return
	}

	needsSelection := m.resolveSelection(ctx, user)
	m.commit(func(s *Snapshot) {
		s.CurrentUser = user
		s.IsAuthenticated = true
		s.IsLoading = false
		s.NeedsEmployeeSelection = needsSelection
	})
}
