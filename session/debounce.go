package session

import (
	"context"
	"sync"
	"time"
)

// DefaultEmailDebounce is how long the email field must settle before its
// preferences are loaded.
const DefaultEmailDebounce = 400 * time.Millisecond

// EmailWatcher debounces email field changes into LoadEmailPreferences
// calls: only the final value after a quiet period triggers a storage read,
// not every keystroke.
type EmailWatcher struct {
	manager *Manager
	delay   time.Duration

	lock  sync.Mutex
	timer *time.Timer
	last  string
}

// NewEmailWatcher creates a watcher over manager. A delay of zero uses
// DefaultEmailDebounce.
func NewEmailWatcher(manager *Manager, delay time.Duration) *EmailWatcher {
	if delay <= 0 {
		delay = DefaultEmailDebounce
	}
	return &EmailWatcher{manager: manager, delay: delay}
}

// Update records the field's current value. Repeats of the last loaded value
// are ignored; a changed value (re)starts the debounce window.
func (w *EmailWatcher) Update(email string) {
	w.lock.Lock()
	defer w.lock.Unlock()

	if email == w.last {
		return
	}
	w.last = email

	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.delay, func() {
		w.manager.LoadEmailPreferences(context.Background(), email)
	})
}

// Stop cancels any pending load, for screen unmount.
func (w *EmailWatcher) Stop() {
	w.lock.Lock()
	defer w.lock.Unlock()
	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}
}
