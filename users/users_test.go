package users_test

import (
	"testing"

	"github.com/nommy-app/employee-session/users"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmployeeFullName(t *testing.T) {
	tests := []struct {
		name     string
		employee users.Employee
		expected string
	}{
		{
			name:     "all name parts",
			employee: users.Employee{Name: "José", FirstLastName: "Vargas", SecondLastName: "Montes"},
			expected: "José Vargas Montes",
		},
		{
			name:     "missing second last name",
			employee: users.Employee{Name: "Ana", FirstLastName: "Martínez"},
			expected: "Ana Martínez",
		},
		{
			name:     "only first name",
			employee: users.Employee{Name: "Carlos"},
			expected: "Carlos",
		},
		{
			name:     "empty",
			employee: users.Employee{},
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.employee.FullName())
		})
	}
}

func TestUserDisplayName(t *testing.T) {
	u := &users.User{Username: "jvargas", Email: "jose.vargas@intelamexico.com.mx"}
	assert.Equal(t, "jvargas", u.DisplayName())

	u.Username = ""
	assert.Equal(t, "jose.vargas@intelamexico.com.mx", u.DisplayName())
}

func TestEmployeeByID(t *testing.T) {
	u := &users.User{
		Employees: []users.Employee{{ID: 10, Name: "A"}, {ID: 20, Name: "B"}},
	}

	found := u.EmployeeByID(20)
	require.NotNil(t, found)
	assert.Equal(t, "B", found.Name)

	assert.Nil(t, u.EmployeeByID(99))
}

func TestUserClone(t *testing.T) {
	u := &users.User{
		ID:        1,
		Employees: []users.Employee{{ID: 10}, {ID: 20}},
	}
	u.SelectedEmployee = &u.Employees[0]

	clone := u.Clone()
	require.NotNil(t, clone)

	clone.Employees[0].ID = 99
	clone.SelectedEmployee.ID = 99
	assert.Equal(t, 10, u.Employees[0].ID)
	assert.Equal(t, 10, u.SelectedEmployee.ID)

	var nilUser *users.User
	assert.Nil(t, nilUser.Clone())
}
