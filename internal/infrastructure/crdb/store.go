// Package crdb implements domain.RoleStore on CockroachDB.
package crdb

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Store manages role membership through a pgx connection pool. Role and user
// names cannot be bound as statement parameters in DDL and GRANT/REVOKE, so
// they are interpolated as sanitized identifiers instead. Every method is a
// single autocommitted statement.
type Store struct {
	pool *pgxpool.Pool
}

// New creates a Store on top of an existing pool.
func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// quoteIdent renders name as a quoted SQL identifier, doubling embedded
// quotes so hostile names cannot escape the statement.
func quoteIdent(name string) string {
	return pgx.Identifier{name}.Sanitize()
}

func ensureRoleStmt(role string) string {
	return "CREATE ROLE IF NOT EXISTS " + quoteIdent(role)
}

func ensureUserStmt(user string) string {
	return "CREATE USER IF NOT EXISTS " + quoteIdent(user)
}

func grantStmt(role, member string) string {
	return "GRANT " + quoteIdent(role) + " TO " + quoteIdent(member)
}

func revokeStmt(role, member string) string {
	return "REVOKE " + quoteIdent(role) + " FROM " + quoteIdent(member)
}

// EnsureRole creates role if it does not already exist.
func (s *Store) EnsureRole(ctx context.Context, role string) error {
	if _, err := s.pool.Exec(ctx, ensureRoleStmt(role)); err != nil {
		return fmt.Errorf("create role %q: %w", role, err)
	}
	return nil
}

// EnsureUser creates the SQL user if it does not already exist.
func (s *Store) EnsureUser(ctx context.Context, user string) error {
	if _, err := s.pool.Exec(ctx, ensureUserStmt(user)); err != nil {
		return fmt.Errorf("create user %q: %w", user, err)
	}
	return nil
}

// CurrentMembers returns the direct members of role as recorded in
// crdb_internal.role_members.
func (s *Store) CurrentMembers(ctx context.Context, role string) (map[string]struct{}, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT member FROM crdb_internal.role_members WHERE role = $1`, role)
	if err != nil {
		return nil, fmt.Errorf("list members of role %q: %w", role, err)
	}
	defer rows.Close()

	members := make(map[string]struct{})
	for rows.Next() {
		var member string
		if err := rows.Scan(&member); err != nil {
			return nil, fmt.Errorf("scan member of role %q: %w", role, err)
		}
		members[member] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list members of role %q: %w", role, err)
	}
	return members, nil
}

// Grant makes member a direct member of role.
func (s *Store) Grant(ctx context.Context, role, member string) error {
	if _, err := s.pool.Exec(ctx, grantStmt(role, member)); err != nil {
		return fmt.Errorf("grant %q to %q: %w", role, member, err)
	}
	return nil
}

// Revoke removes member's direct membership of role.
func (s *Store) Revoke(ctx context.Context, role, member string) error {
	if _, err := s.pool.Exec(ctx, revokeStmt(role, member)); err != nil {
		return fmt.Errorf("revoke %q from %q: %w", role, member, err)
	}
	return nil
}
