package application

import "context"

// GroupDirectory resolves groups and their membership at the identity
// provider. The Okta implementation lives in infrastructure/okta.
type GroupDirectory interface {
	// FindGroupIDByName resolves a group display name to the provider's id
	// for it. Returns an error wrapping domain.ErrGroupNotFound when no
	// exact match exists.
	FindGroupIDByName(ctx context.Context, name string) (string, error)

	// ListGroupMemberEmails returns the group members' emails, lower-cased,
	// de-duplicated and sorted.
	ListGroupMemberEmails(ctx context.Context, groupID string) ([]string, error)
}
