// Package identity derives SQL usernames from identity provider identities.
package identity

import (
	"fmt"
	"regexp"

	"vn.io.arda/rolesync/internal/domain"
)

// Mapper turns Okta identities (member emails) into CockroachDB usernames
// through a single regex rule compiled at construction. Derivation is
// deterministic, so two identities that collapse to the same username simply
// merge in the desired membership set.
type Mapper struct {
	pattern     *regexp.Regexp
	replacement string
}

// NewMapper compiles the mapping rule. An invalid pattern is a configuration
// problem and must be rejected before any sync work starts.
func NewMapper(pattern, replacement string) (*Mapper, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("compile identity pattern %q: %w", pattern, err)
	}
	return &Mapper{pattern: re, replacement: replacement}, nil
}

// Derive maps an identity to a SQL username. The pattern must match starting
// at the first byte of the identity; the replacement follows regexp expansion
// syntax ($1, ${name}). Identities the pattern does not cover return an error
// wrapping domain.ErrIdentityMismatch.
func (m *Mapper) Derive(identity string) (string, error) {
	loc := m.pattern.FindStringIndex(identity)
	if loc == nil || loc[0] != 0 {
		return "", fmt.Errorf("identity %q does not match pattern %q: %w",
			identity, m.pattern.String(), domain.ErrIdentityMismatch)
	}
	return m.pattern.ReplaceAllString(identity, m.replacement), nil
}
