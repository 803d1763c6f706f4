package authapifake

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/nommy-app/employee-session/authapi"
	"github.com/nommy-app/employee-session/users"
)

var _ authapi.Client = (*FakeClient)(nil)

// FakeClient implements the auth API against an in-memory account table.
// Setting NetworkErr makes every call fail as a transport error.
type FakeClient struct {
	NetworkErr error

	lock        sync.Mutex
	passwords   map[string]string     // email -> password
	accounts    map[string]users.User // email -> user record
	tokens      map[string]string     // token -> email
	signInCalls int
}

func New() *FakeClient {
	return &FakeClient{
		passwords: make(map[string]string),
		accounts:  make(map[string]users.User),
		tokens:    make(map[string]string),
	}
}

// AddAccount registers a server-side account the fake will authenticate.
func (fc *FakeClient) AddAccount(password string, user users.User) {
	fc.lock.Lock()
	defer fc.lock.Unlock()
	fc.passwords[user.Email] = password
	fc.accounts[user.Email] = user
}

func (fc *FakeClient) SignIn(_ context.Context, email, password string) (*authapi.SignInResponse, error) {
	if fc.NetworkErr != nil {
		return nil, errors.Wrap(authapi.ErrNetwork, fc.NetworkErr.Error())
	}

	fc.lock.Lock()
	defer fc.lock.Unlock()
	fc.signInCalls++

	stored, ok := fc.passwords[email]
	if !ok || stored != password {
		return nil, authapi.ErrInvalidCredentials
	}

	token := uuid.New().String()
	fc.tokens[token] = email
	user := fc.accounts[email]
	return &authapi.SignInResponse{Token: token, User: user.Clone()}, nil
}

func (fc *FakeClient) Me(_ context.Context, token string) (*users.User, error) {
	if fc.NetworkErr != nil {
		return nil, errors.Wrap(authapi.ErrNetwork, fc.NetworkErr.Error())
	}

	fc.lock.Lock()
	defer fc.lock.Unlock()

	email, ok := fc.tokens[token]
	if !ok {
		return nil, authapi.ErrInvalidCredentials
	}
	user := fc.accounts[email]
	return user.Clone(), nil
}

func (fc *FakeClient) Refresh(_ context.Context, token string) (string, error) {
	if fc.NetworkErr != nil {
		return "", errors.Wrap(authapi.ErrNetwork, fc.NetworkErr.Error())
	}

	fc.lock.Lock()
	defer fc.lock.Unlock()

	email, ok := fc.tokens[token]
	if !ok {
		return "", authapi.ErrInvalidCredentials
	}
	delete(fc.tokens, token)
	fresh := uuid.New().String()
	fc.tokens[fresh] = email
	return fresh, nil
}

// RevokeToken invalidates a previously issued token.
func (fc *FakeClient) RevokeToken(token string) {
	fc.lock.Lock()
	defer fc.lock.Unlock()
	delete(fc.tokens, token)
}

// IssueToken mints a valid token for email without a sign-in round trip,
// for seeding rehydration tests.
func (fc *FakeClient) IssueToken(email string) string {
	token := uuid.New().String()
	fc.RegisterToken(token, email)
	return token
}

// RegisterToken marks an arbitrary token string as valid for email.
func (fc *FakeClient) RegisterToken(token, email string) {
	fc.lock.Lock()
	defer fc.lock.Unlock()
	fc.tokens[token] = email
}

// SignInCalls reports how many sign-in attempts reached the fake.
func (fc *FakeClient) SignInCalls() int {
	fc.lock.Lock()
	defer fc.lock.Unlock()
	return fc.signInCalls
}
