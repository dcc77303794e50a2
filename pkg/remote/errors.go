package remote

import (
	"errors"
	"fmt"
	"net/http"
)

// Op names a remote operation.
type Op string

const (
	OpCreateIdentity Op = "create-identity"
	OpFetchForm      Op = "fetch-form"
	OpSubmitForm     Op = "submit-form"
)

// Kind classifies why a remote operation failed.
type Kind int

const (
	// KindServerRejected means the service answered with a non-2xx status.
	KindServerRejected Kind = iota + 1
	// KindUnreachable means no response was received.
	KindUnreachable
	// KindSetup means the request could not be constructed.
	KindSetup
	// KindMalformed means a 2xx response carried an invalid payload.
	KindMalformed
)

func (k Kind) String() string {
	switch k {
	case KindServerRejected:
		return "server-rejected"
	case KindUnreachable:
		return "unreachable"
	case KindSetup:
		return "setup"
	case KindMalformed:
		return "malformed"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Error describes a failed remote operation.
type Error struct {
	Op     Op
	Kind   Kind
	Status int
	// Message is the message field of the error body, when the service sent
	// one.
	Message string
	Err     error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("remote: %s: %s", e.Op, e.Kind)
	if e.Status != 0 {
		msg += fmt.Sprintf(" (status %d)", e.Status)
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf returns the classification of err when it is a remote error.
func KindOf(err error) (Kind, bool) {
	var rerr *Error
	if errors.As(err, &rerr) {
		return rerr.Kind, true
	}
	return 0, false
}

// IsUnauthorized reports whether the service rejected the call with 401.
func IsUnauthorized(err error) bool {
	var rerr *Error
	if !errors.As(err, &rerr) {
		return false
	}
	return rerr.Kind == KindServerRejected && rerr.Status == http.StatusUnauthorized
}

var messages = map[Op]map[Kind]string{
	OpCreateIdentity: {
		KindServerRejected: "Server error occurred. Please try again.",
		KindUnreachable:    msgUnreachable,
		KindSetup:          "An error occurred. Please try again.",
		KindMalformed:      "Invalid response from server. Please try again.",
	},
	OpFetchForm: {
		KindServerRejected: "Failed to load form. Please try again later.",
		KindUnreachable:    msgUnreachable,
		KindSetup:          "An error occurred while loading the form. Please try again.",
		KindMalformed:      "Failed to load form. Please try again later.",
	},
	OpSubmitForm: {
		KindServerRejected: msgSubmitFailed,
		KindUnreachable:    msgUnreachable,
		KindSetup:          msgSubmitFailed,
		KindMalformed:      msgSubmitFailed,
	},
}

const (
	msgUnreachable  = "No response from server. Please check your internet connection."
	msgSubmitFailed = "Failed to submit form. Please try again."
)

// Message returns the text shown to the user when op failed with err. A
// message sent by the service replaces the default for rejections. Errors that
// are not remote errors get the setup message of op.
func Message(op Op, err error) string {
	if err == nil {
		return ""
	}
	byKind, ok := messages[op]
	if !ok {
		return "An error occurred. Please try again."
	}

	var rerr *Error
	if !errors.As(err, &rerr) {
		return byKind[KindSetup]
	}
	if rerr.Kind == KindServerRejected && rerr.Message != "" {
		return rerr.Message
	}
	if msg, ok := byKind[rerr.Kind]; ok {
		return msg
	}
	return byKind[KindSetup]
}
