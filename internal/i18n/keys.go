// internal/i18n/keys.go
package i18n

// Translation keys constants
const (
	// Common
	KeyNotFound      = "common.not_found"
	KeyInternalError = "common.internal_error"
	KeyRateLimited   = "common.rate_limited"
	KeyAccessDenied  = "common.access_denied"

	// Authentication
	KeyAuthRequired           = "auth.required"
	KeyAuthInvalidToken       = "auth.invalid_token"
	KeyAuthInvalidFormat      = "auth.invalid_format"
	KeyAuthInvalidCredentials = "auth.invalid_credentials"
	KeyAuthUserExists         = "auth.user_exists"
	KeyAuthRoleRequired       = "auth.role_required"

	// User Management
	KeyUserNotFound  = "user.not_found"
	KeyUserSuspended = "user.suspended"

	// Validation
	KeyValidationInvalid = "validation.invalid"
	KeyValidationBody    = "validation.invalid_body"
	KeyValidationID      = "validation.invalid_id"
)
