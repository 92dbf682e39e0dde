package identity

import (
	"errors"
	"fmt"
)

type Code string

const (
	CodeInvalidEmail        Code = "invalid-email"
	CodeUserNotFound        Code = "user-not-found"
	CodeWrongPassword       Code = "wrong-password"
	CodeDisabled            Code = "disabled"
	CodeTooManyRequests     Code = "too-many-requests"
	CodeWeakPassword        Code = "weak-password"
	CodeRequiresRecentLogin Code = "requires-recent-login"
	CodeNoSession           Code = "no-session"
	CodeUnknown             Code = "unknown"
)

const (
	OpLogin  = "login"
	OpLogout = "logout"
	OpChange = "change-password"
)

var ErrAccountNotFound = errors.New("account not found")

// SessionError is a classified failure of a session operation.
type SessionError struct {
	Op   string
	Code Code
	Err  error
}

func (e *SessionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Code, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Code)
}

func (e *SessionError) Unwrap() error {
	return e.Err
}

var loginMessages = map[Code]string{
	CodeInvalidEmail:    "Invalid email address.",
	CodeDisabled:        "This account has been disabled.",
	CodeUserNotFound:    "No account found with this email.",
	CodeWrongPassword:   "Incorrect password.",
	CodeTooManyRequests: "Too many failed attempts. Please try again later.",
}

var changeMessages = map[Code]string{
	CodeWrongPassword:       "Current password is incorrect.",
	CodeWeakPassword:        "New password is too weak. Use at least 6 characters.",
	CodeRequiresRecentLogin: "Please log out and log in again before changing password.",
	CodeNoSession:           "No user logged in.",
}

// Message is the text shown to the admin for this failure.
func (e *SessionError) Message() string {
	switch e.Op {
	case OpLogin:
		if msg, ok := loginMessages[e.Code]; ok {
			return msg
		}
		return "Login failed. Please try again."
	case OpChange:
		if msg, ok := changeMessages[e.Code]; ok {
			return msg
		}
		return "Failed to change password."
	default:
		return "Logout failed. Please try again."
	}
}

func sessionErr(op string, code Code, err error) *SessionError {
	return &SessionError{Op: op, Code: code, Err: err}
}

// AsSessionError classifies any error of a session operation; unrecognized
// causes become CodeUnknown.
func AsSessionError(op string, err error) *SessionError {
	if err == nil {
		return nil
	}
	var se *SessionError
	if errors.As(err, &se) {
		return se
	}
	return sessionErr(op, CodeUnknown, err)
}
