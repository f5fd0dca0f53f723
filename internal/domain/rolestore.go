package domain

import "context"

// RoleStore is the port for role membership state in the database. The
// CockroachDB implementation lives in infrastructure/crdb; every method maps
// to a single autocommitted statement so partial progress stays applied when
// a later call fails.
type RoleStore interface {
	// EnsureRole creates the role if it does not already exist.
	EnsureRole(ctx context.Context, role string) error

	// EnsureUser creates the SQL user if it does not already exist.
	EnsureUser(ctx context.Context, user string) error

	// CurrentMembers returns the set of members directly holding role.
	CurrentMembers(ctx context.Context, role string) (map[string]struct{}, error)

	// Grant makes member a direct member of role.
	Grant(ctx context.Context, role, member string) error

	// Revoke removes member's direct membership of role.
	Revoke(ctx context.Context, role, member string) error
}
