package apperrors

import "fmt"

// Code classifies every failure the service layer can return.
type Code string

const (
	CodeNotFound    Code = "not_found"
	CodeValidation  Code = "validation"
	CodeGeneration  Code = "generation"
	CodePersistence Code = "persistence"
	CodeAuth        Code = "auth"
)

// AuthCode is the typed reason for an auth failure. Handlers map these to
// user-facing messages with an exhaustive switch instead of matching on
// provider error text.
type AuthCode string

const (
	AuthInvalidCredentials AuthCode = "invalid_credentials"
	AuthEmailInUse         AuthCode = "email_in_use"
	AuthWeakPassword       AuthCode = "weak_password"
	AuthUserNotFound       AuthCode = "user_not_found"
	AuthUserDisabled       AuthCode = "user_disabled"
	AuthTooManyRequests    AuthCode = "too_many_requests"
	AuthNetworkFailed      AuthCode = "network_failed"
)

// Error is the single error type crossing the service boundary.
type Error struct {
	Code     Code
	AuthCode AuthCode
	Message  string
	// Fields holds per-field validation messages so the UI can show
	// them all at once.
	Fields map[string]string
	Err    error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func NotFound(message string) *Error {
	return &Error{Code: CodeNotFound, Message: message}
}

func Validation(message string, fields map[string]string) *Error {
	return &Error{Code: CodeValidation, Message: message, Fields: fields}
}

func Generation(message string, err error) *Error {
	return &Error{Code: CodeGeneration, Message: message, Err: err}
}

func Persistence(message string, err error) *Error {
	return &Error{Code: CodePersistence, Message: message, Err: err}
}

func Auth(code AuthCode) *Error {
	return &Error{Code: CodeAuth, AuthCode: code, Message: AuthMessage(code)}
}

// AuthMessage maps a typed auth code to its user-facing message.
func AuthMessage(code AuthCode) string {
	switch code {
	case AuthInvalidCredentials:
		return "Email or password is incorrect"
	case AuthEmailInUse:
		return "This email address is already in use"
	case AuthWeakPassword:
		return "Password must be at least 6 characters with a letter and a digit"
	case AuthUserNotFound:
		return "No account found with this email"
	case AuthUserDisabled:
		return "This account has been disabled"
	case AuthTooManyRequests:
		return "Too many attempts, please try again later"
	case AuthNetworkFailed:
		return "Network error, please check your connection"
	default:
		return "Authentication failed"
	}
}

// CodeOf extracts the taxonomy code from any error returned by a service.
func CodeOf(err error) Code {
	if appErr, ok := err.(*Error); ok {
		return appErr.Code
	}
	return CodePersistence
}

// IsNotFound reports whether err is a NotFound error. Callers of the meal
// plan lookup treat this as "trigger creation", not a terminal failure.
func IsNotFound(err error) bool {
	return CodeOf(err) == CodeNotFound
}
