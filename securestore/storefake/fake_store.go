package storefake

import (
	"context"
	"sync"

	"github.com/nommy-app/employee-session/securestore"
)

var _ securestore.Store = (*FakeStore)(nil)

// FakeStore is an in-memory Store for tests. Error fields, when set, are
// returned by the corresponding operation so storage failure paths can be
// exercised.
type FakeStore struct {
	GetErr    error
	SetErr    error
	DeleteErr error

	lock   sync.RWMutex
	values map[string]string
}

func New() *FakeStore {
	return &FakeStore{values: make(map[string]string)}
}

func (fs *FakeStore) Get(_ context.Context, key string) (string, error) {
	if fs.GetErr != nil {
		return "", fs.GetErr
	}
	fs.lock.RLock()
	defer fs.lock.RUnlock()
	return fs.values[key], nil
}

func (fs *FakeStore) Set(_ context.Context, key, value string) error {
	if fs.SetErr != nil {
		return fs.SetErr
	}
	fs.lock.Lock()
	defer fs.lock.Unlock()
	fs.values[key] = value
	return nil
}

func (fs *FakeStore) Delete(_ context.Context, key string) error {
	if fs.DeleteErr != nil {
		return fs.DeleteErr
	}
	fs.lock.Lock()
	defer fs.lock.Unlock()
	delete(fs.values, key)
	return nil
}

// Has reports whether a key currently holds a value.
func (fs *FakeStore) Has(key string) bool {
	fs.lock.RLock()
	defer fs.lock.RUnlock()
	_, ok := fs.values[key]
	return ok
}

// Seed writes a value directly, bypassing error injection.
func (fs *FakeStore) Seed(key, value string) {
	fs.lock.Lock()
	defer fs.lock.Unlock()
	fs.values[key] = value
}
