// Package fault defines the domain failure value carried inside service
// results. Every failure has a machine-readable kind that boundaries map to
// transport status codes through a lookup table, not type switching.
package fault

// Kind is a machine-readable domain failure kind.
type Kind string

const (
	// KindInvalidCredentials covers authentication failures. Unknown
	// usernames and wrong passwords are deliberately indistinguishable.
	KindInvalidCredentials Kind = "INVALID_CREDENTIALS"

	// KindResourceNotFound covers references to users or connections that
	// do not exist.
	KindResourceNotFound Kind = "RESOURCE_NOT_FOUND"

	// KindInvalidOperation covers self-referential requests and actions
	// attempted on a connection that is no longer pending.
	KindInvalidOperation Kind = "INVALID_OPERATION"

	// KindUnauthorized covers actions attempted by a user who is not the
	// party the operation is reserved for.
	KindUnauthorized Kind = "UNAUTHORIZED"

	// KindConflict covers uniqueness violations such as a duplicate
	// relationship edge or a taken username.
	KindConflict Kind = "CONFLICT"
)

// Fault is a domain failure with a kind and an internal message.
type Fault struct {
	Kind    Kind
	Message string
	Cause   error
}

// New creates a fault with a kind and message.
func New(kind Kind, message string) *Fault {
	return &Fault{Kind: kind, Message: message}
}

// Wrap creates a fault that records an underlying cause.
func Wrap(kind Kind, message string, cause error) *Fault {
	return &Fault{Kind: kind, Message: message, Cause: cause}
}

// Error implements the error interface.
func (f *Fault) Error() string {
	return f.Message
}

// Unwrap returns the underlying cause for error chain traversal.
func (f *Fault) Unwrap() error {
	return f.Cause
}

// Is reports whether target matches this fault by kind.
func (f *Fault) Is(target error) bool {
	if t, ok := target.(*Fault); ok {
		return f.Kind == t.Kind
	}
	return false
}
