package annotate

import (
	"fmt"
)

// MissingOwnershipError is returned when an ownership write is attempted
// with a nil descriptor.
type MissingOwnershipError struct{}

// Error returns the error message.
func (e *MissingOwnershipError) Error() string {
	return "every resource deployed via rivet must be assigned an ownership descriptor"
}

// EncodeError reports a descriptor field value that could not be serialized
// to canonical annotation form.
type EncodeError struct {
	// Key is the annotation key the value was destined for.
	Key string

	// Err is the underlying serialization failure.
	Err error
}

// Error returns the error message.
func (e *EncodeError) Error() string {
	return fmt.Sprintf("illegal annotation value for %q: %v", e.Key, e.Err)
}

// Unwrap returns the underlying serialization failure.
func (e *EncodeError) Unwrap() error { return e.Err }

// DecodeError reports a stored annotation value that is not valid canonical
// form for the shape the key schema declares. Malformed data is never
// treated as absent; the error names the offending key so the caller can
// repair it.
type DecodeError struct {
	// Key is the annotation key holding the malformed value.
	Key string

	// Reason describes the malformation.
	Reason string
}

// Error returns the error message.
func (e *DecodeError) Error() string {
	return fmt.Sprintf("illegally annotated resource at %q: %s", e.Key, e.Reason)
}
