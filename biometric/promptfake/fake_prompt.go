package promptfake

import (
	"context"
	"sync"

	"github.com/nommy-app/employee-session/biometric"
)

var _ biometric.Prompt = (*FakePrompt)(nil)

// FakePrompt scripts the device biometric collaborator for tests.
type FakePrompt struct {
	HasHardware bool
	Enrolled    bool
	Result      bool
	AuthErr     error

	lock              sync.Mutex
	authenticateCalls int
}

// New returns a prompt with hardware present, enrolled, succeeding challenges.
func New() *FakePrompt {
	return &FakePrompt{HasHardware: true, Enrolled: true, Result: true}
}

func (fp *FakePrompt) Available(context.Context) (bool, error) {
	return fp.HasHardware && fp.Enrolled, nil
}

func (fp *FakePrompt) Authenticate(context.Context, string) (bool, error) {
	fp.lock.Lock()
	fp.authenticateCalls++
	fp.lock.Unlock()
	if fp.AuthErr != nil {
		return false, fp.AuthErr
	}
	return fp.Result, nil
}

// AuthenticateCalls reports how many times the challenge was shown.
func (fp *FakePrompt) AuthenticateCalls() int {
	fp.lock.Lock()
	defer fp.lock.Unlock()
	return fp.authenticateCalls
}
