package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrIdentityMismatch marks a member identity the mapping rule does not
	// cover. It is the only recoverable error kind: the engine logs the
	// identity, leaves it out of the desired set and keeps going.
	ErrIdentityMismatch = errors.New("identity mismatch")

	// ErrGroupNotFound marks a mapping whose Okta group has no exact
	// display-name match. Fatal to the run.
	ErrGroupNotFound = errors.New("group not found")
)

// ProviderError is a non-success response from the identity provider. Fatal
// to the run.
type ProviderError struct {
	Op         string
	StatusCode int
	Detail     string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("okta %s: status %d: %s", e.Op, e.StatusCode, e.Detail)
}
