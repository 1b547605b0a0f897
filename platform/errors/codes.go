// Package errors provides structured error handling for the SkillDeck client.
package errors

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// Auth errors
	CodeInvalidCredentials Code = "AUTH_INVALID_CREDENTIALS"
	CodeMalformedResponse  Code = "AUTH_MALFORMED_RESPONSE"
	CodeRoleNotFound       Code = "AUTH_ROLE_NOT_FOUND"
	CodeUnknownRole        Code = "AUTH_UNKNOWN_ROLE"
	CodeSignupFailed       Code = "AUTH_SIGNUP_FAILED"

	// Session errors
	CodeUnauthenticated Code = "SESSION_UNAUTHENTICATED"

	// Catalog errors
	CodeFetchFailed Code = "CATALOG_FETCH_FAILED"

	// Enrollment errors
	CodeUnknownCourse    Code = "ENROLLMENT_UNKNOWN_COURSE"
	CodeAlreadyEnrolled  Code = "ENROLLMENT_ALREADY_ENROLLED"
	CodeEnrollmentFailed Code = "ENROLLMENT_FAILED"

	// Transport errors
	CodeNetworkUnavailable Code = "NETWORK_UNAVAILABLE"
)
