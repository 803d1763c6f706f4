package securestore

import "strconv"

// Fixed keys. These names are shared with the mobile app's historical key
// space, so renaming any of them orphans data already on devices.
const (
	KeyAuthToken            = "auth-token"
	KeyUserID               = "user-id"
	KeyEmployeeID           = "employee-id"
	KeyLastEmail            = "last-email"
	KeyBiometricCredentials = "biometric_credentials"
)

// SelectedEmployeeKey holds the employee id a user confirmed on this device.
func SelectedEmployeeKey(userID int) string {
	return "selectedEmployee_" + strconv.Itoa(userID)
}

// PrefsKey holds the versioned credential preference record for an email.
func PrefsKey(email string) string {
	return "credential-prefs:" + email
}

// Legacy per-email keys, superseded by the versioned preference record but
// still read (and migrated) so existing installs keep their settings.
func LegacyBiometricChoiceKey(email string) string { return "biometric-choice-" + email }
func LegacyBiometricKey(email string) string       { return "biometric-" + email }
func LegacyRememberKey(email string) string        { return "remember-" + email }
func LegacyPasswordKey(email string) string        { return "password-" + email }
