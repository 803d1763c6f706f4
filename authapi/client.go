// Package authapi is the client for the remote HR auth API: sign-in,
// current-user and refresh-token endpoints. Responses are decoded into the
// strongly-typed users model at this boundary; shape violations fail fast as
// *APIError instead of leaking partially-populated users into the session.
package authapi

import (
	"context"

	"github.com/nommy-app/employee-session/users"
)

// SignInResponse is the validated result of a successful sign-in call.
type SignInResponse struct {
	Token string
	User  *users.User
}

// Client is the remote auth API collaborator consumed by the session manager.
type Client interface {
	// SignIn exchanges credentials for a token and the account's user record.
	SignIn(ctx context.Context, email, password string) (*SignInResponse, error)

	// Me returns the user record for a previously issued token.
	Me(ctx context.Context, token string) (*users.User, error)

	// Refresh exchanges a token for a fresh one.
	Refresh(ctx context.Context, token string) (string, error)
}
