// Package biometric abstracts the platform biometric capability. The real
// implementation lives in the mobile shell; this module only consumes the
// interface and ships a scriptable fake for tests.
package biometric

import "context"

// Prompt is the device biometric collaborator. Available reports whether the
// hardware exists and at least one biometric is enrolled; Authenticate runs
// the one-shot challenge. Neither call ever exposes raw biometric data.
type Prompt interface {
	Available(ctx context.Context) (bool, error)
	Authenticate(ctx context.Context, reason string) (bool, error)
}
