// Package navguard turns session state into routing decisions: login,
// employee selection, or the main app. It never routes while the session is
// loading; rehydration must finish before the first redirect.
package navguard

import (
	"sync"

	"github.com/nommy-app/employee-session/session"
)

type Route int

const (
	// RouteNone means render nothing/neutral: the session is still loading.
	RouteNone Route = iota
	RouteLogin
	RouteSelectEmployee
	RouteMain
)

func (r Route) String() string {
	switch r {
	case RouteLogin:
		return "login"
	case RouteSelectEmployee:
		return "select-employee"
	case RouteMain:
		return "main"
	default:
		return "none"
	}
}

// Decide maps a session snapshot to the screen group it belongs on.
func Decide(s session.Snapshot) Route {
	if s.IsLoading {
		return RouteNone
	}
	if !s.IsAuthenticated {
		return RouteLogin
	}
	if s.NeedsEmployeeSelection {
		return RouteSelectEmployee
	}
	return RouteMain
}

// Guard subscribes to a session manager and invokes redirect whenever the
// decided route changes. RouteNone never triggers a redirect.
type Guard struct {
	redirect func(Route)

	lock sync.Mutex
	last Route
}

func New(redirect func(Route)) *Guard {
	return &Guard{redirect: redirect, last: RouteNone}
}

// Attach subscribes the guard to manager and immediately evaluates the
// current state. The returned function detaches it.
func (g *Guard) Attach(manager *session.Manager) func() {
	unsubscribe := manager.Subscribe(g.observe)
	g.observe(manager.Snapshot())
	return unsubscribe
}

func (g *Guard) observe(s session.Snapshot) {
	route := Decide(s)
	if route == RouteNone {
		return
	}

	g.lock.Lock()
	changed := route != g.last
	if changed {
		g.last = route
	}
	g.lock.Unlock()

	if changed {
		g.redirect(route)
	}
}
