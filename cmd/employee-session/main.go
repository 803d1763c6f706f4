// Command employee-session is a terminal harness around the session core:
// it wires the real HTTP client, the encrypted credential store and a
// stdin-backed biometric prompt, then drives the login / employee-selection
// flow the way the mobile screens do.
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"runtime/debug"
	"strconv"
	"strings"

	"github.com/common-nighthawk/go-figure"
	"github.com/rs/zerolog"

	"github.com/nommy-app/employee-session/authapi"
	"github.com/nommy-app/employee-session/internal/config"
	"github.com/nommy-app/employee-session/navguard"
	"github.com/nommy-app/employee-session/securestore/boltstore"
	"github.com/nommy-app/employee-session/session"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

func run() (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			fmt.Printf("Recovered from panic: %v\n", r)
			debug.PrintStack()
			returnError = errors.New("panic recovered")
		}
	}()

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	displayAppName(cfg.AppName)

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(level).With().Timestamp().Logger()

	store, err := boltstore.Open(cfg.StorePath, cfg.StorePassphrase)
	if err != nil {
		return err
	}
	defer store.Close()

	stdin := bufio.NewReader(os.Stdin)

	api := authapi.NewHTTPClient(cfg.APIBaseURL,
		authapi.WithHTTPClient(&http.Client{Timeout: cfg.HTTPTimeout}),
		authapi.WithStore(store),
		authapi.WithLogger(logger),
	)

	manager, err := session.NewManager(session.Collaborators{
		API:       api,
		Store:     store,
		Biometric: &terminalPrompt{in: stdin},
	}, session.WithLogger(logger))
	if err != nil {
		return err
	}

	guard := navguard.New(func(route navguard.Route) {
		fmt.Printf("→ %s\n", route)
	})
	detach := guard.Attach(manager)
	defer detach()

	ctx := context.Background()
	manager.Rehydrate(ctx)
	if email := manager.LastUsedEmail(ctx); email != "" {
		manager.LoadEmailPreferences(ctx, email)
		fmt.Printf("Last signed in as %s\n", email)
	}

	return commandLoop(ctx, manager, stdin)
}

func commandLoop(ctx context.Context, manager *session.Manager, stdin *bufio.Reader) error {
	fmt.Println("Commands: login <email> <password> | select <employee-id> | change | remember | choice <y|n> | whoami | logout | quit")
	for {
		fmt.Print("> ")
		line, err := stdin.ReadString('\n')
		if err != nil {
			return nil // EOF ends the session
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}

		switch fields[0] {
		case "login":
			if len(fields) < 3 {
				fmt.Println("usage: login <email> <password>")
				continue
			}
			manager.LoadEmailPreferences(ctx, fields[1])
			if err := manager.SignIn(ctx, fields[1], fields[2]); err != nil {
				fmt.Printf("Sign-in failed: %s\n", signInMessage(err))
				continue
			}
			afterSignIn(ctx, manager, stdin, fields[1])
		case "select":
			if len(fields) < 2 {
				fmt.Println("usage: select <employee-id>")
				continue
			}
			selectEmployee(ctx, manager, fields[1])
		case "change":
			manager.ChangeEmployee()
			listEmployees(manager)
		case "remember":
			manager.ToggleRememberPassword()
			fmt.Printf("Remember password: %v\n", manager.Snapshot().RememberPassword)
		case "choice":
			if len(fields) < 2 {
				fmt.Println("usage: choice <y|n>")
				continue
			}
			state := manager.Snapshot()
			if err := manager.RecordBiometricChoice(ctx, state.LastEmail, fields[1] == "y"); err != nil {
				fmt.Printf("Could not save choice: %s\n", err)
			}
		case "whoami":
			printSession(manager)
		case "logout":
			manager.Logout(ctx)
		case "quit", "exit":
			return nil
		default:
			fmt.Printf("Unknown command %q\n", fields[0])
		}
	}
}

func afterSignIn(ctx context.Context, manager *session.Manager, stdin *bufio.Reader, email string) {
	state := manager.Snapshot()
	fmt.Printf("Welcome, %s\n", state.CurrentUser.DisplayName())

	if state.BiometricChoicePending {
		fmt.Print("Save biometric credentials for faster sign-in? [y/n] ")
		answer, _ := stdin.ReadString('\n')
		accepted := strings.TrimSpace(answer) == "y"
		if err := manager.RecordBiometricChoice(ctx, email, accepted); err != nil {
			fmt.Printf("Could not save choice: %s\n", err)
		}
	}

	if manager.Snapshot().NeedsEmployeeSelection {
		listEmployees(manager)
	}
}

func selectEmployee(ctx context.Context, manager *session.Manager, rawID string) {
	id, err := strconv.Atoi(rawID)
	if err != nil {
		fmt.Println("employee id must be a number")
		return
	}
	state := manager.Snapshot()
	if state.CurrentUser == nil {
		fmt.Println("sign in first")
		return
	}
	employee := state.CurrentUser.EmployeeByID(id)
	if employee == nil {
		fmt.Printf("no employee record %d\n", id)
		return
	}
	if err := manager.SelectEmployee(ctx, *employee); err != nil {
		fmt.Printf("Selection failed: %s\n", err)
		return
	}
	fmt.Printf("Working as %s (%s)\n", employee.FullName(), employee.Tenant.Name)
}

func listEmployees(manager *session.Manager) {
	state := manager.Snapshot()
	if state.CurrentUser == nil {
		return
	}
	fmt.Println("Select your profile:")
	for _, e := range state.CurrentUser.Employees {
		line := fmt.Sprintf("  [%d] %s - %s", e.ID, e.FullName(), e.Tenant.Name)
		if e.Client != nil {
			line += " / " + e.Client.BusinessName
		}
		if e.Balance != nil {
			line += fmt.Sprintf(" (vacation balance: %.1f)", *e.Balance)
		}
		fmt.Println(line)
	}
}

func printSession(manager *session.Manager) {
	state := manager.Snapshot()
	if !state.IsAuthenticated {
		fmt.Println("Not signed in")
		return
	}
	fmt.Printf("Signed in as %s (%s)\n", state.CurrentUser.DisplayName(), state.CurrentUser.Email)
	if selected := state.CurrentUser.SelectedEmployee; selected != nil {
		fmt.Printf("Active profile: %s - %s\n", selected.FullName(), selected.Tenant.Name)
	} else {
		fmt.Println("No employee profile selected")
	}
}

func signInMessage(err error) string {
	var apiErr *authapi.APIError
	switch {
	case errors.Is(err, authapi.ErrInvalidCredentials):
		return "invalid email or password"
	case errors.Is(err, session.ErrNoEligibleEmployees):
		return "access is limited to active employees"
	case errors.Is(err, authapi.ErrNetwork):
		return "could not reach the server, check your connection"
	case errors.Is(err, session.ErrBiometricUnavailable):
		return "biometric sign-in unavailable, enter your password"
	case errors.Is(err, session.ErrBiometricFailed):
		return "biometric authentication failed, enter your password"
	case errors.As(err, &apiErr):
		return apiErr.Message
	default:
		return err.Error()
	}
}

func displayAppName(appName string) {
	myFigure := figure.NewFigure(appName, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
