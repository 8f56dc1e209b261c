package vc

import (
	"errors"
	"fmt"
)

// ErrSigning indicates key material or payload state made signing
// impossible. Issuance aborts; nothing is returned or persisted.
var ErrSigning = errors.New("credential signing failed")

// ErrMalformedCredential indicates verification input that is structurally
// invalid, as opposed to a well-formed credential whose signature check
// fails (which is a false result, not an error).
var ErrMalformedCredential = errors.New("malformed credential")

// MissingFieldError names the first required subject attribute found
// absent during credential building.
type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("missing required subject field: %s", e.Field)
}
