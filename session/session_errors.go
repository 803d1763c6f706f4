package session

import "errors"

var (
	// ErrMissingCredentials is returned by SignIn when either field is empty.
	ErrMissingCredentials = errors.New("email and password are required")

	// ErrNoEligibleEmployees is returned when sign-in succeeds but the
	// account has no employee records. Access is restricted to active
	// employees; no token is persisted in this case.
	ErrNoEligibleEmployees = errors.New("no eligible employee records")

	// ErrNotAuthenticated is returned by actions that require a signed-in
	// session.
	ErrNotAuthenticated = errors.New("not authenticated")

	// ErrEmployeeNotFound is returned by SelectEmployee when the employee
	// does not belong to the current user.
	ErrEmployeeNotFound = errors.New("employee not found for current user")

	// ErrBiometricUnavailable is returned by the biometric sign-in path when
	// the device has no usable biometric capability. The caller should fall
	// back to the password field.
	ErrBiometricUnavailable = errors.New("biometric authentication unavailable")

	// ErrBiometricFailed is returned when the biometric challenge itself was
	// shown and not passed.
	ErrBiometricFailed = errors.New("biometric authentication failed")
)
