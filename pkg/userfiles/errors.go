package userfiles

import "errors"

// Failure kinds reported through *Error.
var (
	ErrProvisioningFailed = errors.New("userfiles: provisioning failed")
	ErrUploadFailed       = errors.New("userfiles: upload failed")
	ErrDeleteFailed       = errors.New("userfiles: delete failed")
	ErrFolderDeleteFailed = errors.New("userfiles: folder delete failed")
)

// Input errors.
var (
	ErrInvalidConfig   = errors.New("userfiles: invalid config")
	ErrInvalidTenant   = errors.New("userfiles: invalid tenant id")
	ErrInvalidCategory = errors.New("userfiles: invalid category")
	ErrInvalidFilename = errors.New("userfiles: invalid filename")
	ErrInvalidPrefix   = errors.New("userfiles: invalid prefix")
)

// Error is a store failure tied to a key, prefix or bucket.
// Its message never includes the cause.
type Error struct {
	Kind   error  // one of the failure kinds above
	Target string // affected key, "bucket/prefix" or bucket name
	Err    error  // underlying cause
}

func (e *Error) Error() string {
	if e.Target == "" {
		return e.Kind.Error()
	}
	return e.Kind.Error() + ": " + e.Target
}

// Unwrap exposes both the kind and the cause to errors.Is and errors.As.
func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

func newError(kind error, target string, cause error) *Error {
	return &Error{Kind: kind, Target: target, Err: cause}
}
