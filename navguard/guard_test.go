package navguard_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nommy-app/employee-session/authapi/authapifake"
	"github.com/nommy-app/employee-session/biometric/promptfake"
	"github.com/nommy-app/employee-session/navguard"
	"github.com/nommy-app/employee-session/securestore/storefake"
	"github.com/nommy-app/employee-session/session"
	"github.com/nommy-app/employee-session/users"
)

func TestDecide(t *testing.T) {
	tests := []struct {
		name     string
		state    session.Snapshot
		expected navguard.Route
	}{
		{
			name:     "loading renders neutral",
			state:    session.Snapshot{IsLoading: true},
			expected: navguard.RouteNone,
		},
		{
			name:     "loading wins even when authenticated",
			state:    session.Snapshot{IsLoading: true, IsAuthenticated: true},
			expected: navguard.RouteNone,
		},
		{
			name:     "signed out goes to login",
			state:    session.Snapshot{},
			expected: navguard.RouteLogin,
		},
		{
			name:     "authenticated needing selection",
			state:    session.Snapshot{IsAuthenticated: true, NeedsEmployeeSelection: true},
			expected: navguard.RouteSelectEmployee,
		},
		{
			name:     "authenticated with selection",
			state:    session.Snapshot{IsAuthenticated: true},
			expected: navguard.RouteMain,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, navguard.Decide(tt.state))
		})
	}
}

func TestGuardFollowsSessionLifecycle(t *testing.T) {
	ctx := context.Background()

	api := authapifake.New()
	employees := []users.Employee{
		{ID: 101, Name: "Ana", Tenant: users.Tenant{ID: 1, Name: "Nommy"}},
		{ID: 102, Name: "Ana", Tenant: users.Tenant{ID: 2, Name: "Nommy Norte"}},
	}
	api.AddAccount("pw", users.User{ID: 4, Email: "ana.martinez@nommy.app", Employees: employees})

	manager, err := session.NewManager(session.Collaborators{
		API:       api,
		Store:     storefake.New(),
		Biometric: promptfake.New(),
	})
	require.NoError(t, err)

	var routes []navguard.Route
	guard := navguard.New(func(r navguard.Route) { routes = append(routes, r) })
	detach := guard.Attach(manager)
	defer detach()

	assert.Empty(t, routes, "no redirect while loading")

	manager.Rehydrate(ctx)
	require.Equal(t, []navguard.Route{navguard.RouteLogin}, routes)

	require.NoError(t, manager.SignIn(ctx, "ana.martinez@nommy.app", "pw"))
	require.Equal(t, navguard.RouteSelectEmployee, routes[len(routes)-1])

	require.NoError(t, manager.SelectEmployee(ctx, employees[0]))
	require.Equal(t, navguard.RouteMain, routes[len(routes)-1])

	manager.ChangeEmployee()
	require.Equal(t, navguard.RouteSelectEmployee, routes[len(routes)-1])

	require.NoError(t, manager.SelectEmployee(ctx, employees[1]))
	require.Equal(t, navguard.RouteMain, routes[len(routes)-1])

	manager.Logout(ctx)
	require.Equal(t, navguard.RouteLogin, routes[len(routes)-1])

	// Route only changes on transitions, not on every commit.
	expected := []navguard.Route{
		navguard.RouteLogin,
		navguard.RouteSelectEmployee,
		navguard.RouteMain,
		navguard.RouteSelectEmployee,
		navguard.RouteMain,
		navguard.RouteLogin,
	}
	assert.Equal(t, expected, routes)
}
