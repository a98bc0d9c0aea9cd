package auth

import "errors"

// ErrCredentialUnavailable matches every CredentialError.
var ErrCredentialUnavailable = errors.New("auth: credential unavailable")

// CredentialError reports a failed refresh. Every caller waiting on the same
// refresh receives the same error; it is never cached.
type CredentialError struct {
	Err error
}

func (e *CredentialError) Error() string {
	if e == nil || e.Err == nil {
		return ErrCredentialUnavailable.Error()
	}
	return ErrCredentialUnavailable.Error() + ": " + e.Err.Error()
}

func (e *CredentialError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func (e *CredentialError) Is(target error) bool {
	return target == ErrCredentialUnavailable
}
