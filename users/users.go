package users

import "strings"

// Role is display-only information about the account returned by the auth API.
type Role struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// Tenant identifies the organization an employee record belongs to.
type Tenant struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Client is the optional end-client an employee is assigned to within a tenant.
type Client struct {
	ID           int    `json:"id"`
	BusinessName string `json:"businessName"`
}

// Employee is one tenant-scoped identity record belonging to a User.
type Employee struct {
	ID             int      `json:"id"`
	Name           string   `json:"name"`
	FirstLastName  string   `json:"firstLastName,omitempty"`
	SecondLastName string   `json:"secondLastName,omitempty"`
	Tenant         Tenant   `json:"tenant"`
	Client         *Client  `json:"client,omitempty"`
	Balance        *float64 `json:"balance,omitempty"`
	ProfilePicture string   `json:"profilePicture,omitempty"`
}

// FullName joins the non-empty name parts in display order.
func (e Employee) FullName() string {
	parts := make([]string, 0, 3)
	for _, p := range []string{e.Name, e.FirstLastName, e.SecondLastName} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, " ")
}

// User is an authenticated account. Employees holds the server-provided
// order and must contain at least one element for sign-in to succeed.
// SelectedEmployee is the active tenant context, nil until resolved.
type User struct {
	ID               int        `json:"id"`
	Username         string     `json:"username"`
	Email            string     `json:"email"`
	Role             *Role      `json:"role,omitempty"`
	ProfilePicture   string     `json:"profilePicture,omitempty"`
	Employees        []Employee `json:"employees"`
	SelectedEmployee *Employee  `json:"-"`
}

// DisplayName prefers the username, falling back to the email address.
func (u *User) DisplayName() string {
	if u.Username != "" {
		return u.Username
	}
	return u.Email
}

// EmployeeByID returns the employee record with the given id, or nil.
func (u *User) EmployeeByID(id int) *Employee {
	for i := range u.Employees {
		if u.Employees[i].ID == id {
			return &u.Employees[i]
		}
	}
	return nil
}

// Clone returns a deep enough copy for handing out in state snapshots:
// the employee slice is copied, so appends on either side stay private.
func (u *User) Clone() *User {
	if u == nil {
		return nil
	}
	clone := *u
	clone.Employees = append([]Employee(nil), u.Employees...)
	if u.SelectedEmployee != nil {
		selected := *u.SelectedEmployee
		clone.SelectedEmployee = &selected
	}
	return &clone
}
