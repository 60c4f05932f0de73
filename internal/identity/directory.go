package identity

import (
	"context"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// Directory is the read-only view of the legacy identity store. Lookups
// are the fixed two-step dance the store allows: username to user code,
// then user code to stored secret and role marker.
type Directory interface {
	// LookupUserCode resolves a username; ok is false when unknown.
	LookupUserCode(ctx context.Context, username string) (int64, bool, error)
	// LookupCredential fetches the encrypted secret and role marker for a
	// user code; ok is false when the code has no credential row.
	LookupCredential(ctx context.Context, userCode int64) (domain.Credential, bool, error)
	// ListAdministrators returns every account carrying the admin marker,
	// in the store's iteration order. That order is the assignment
	// tie-break, so implementations must not shuffle it.
	ListAdministrators(ctx context.Context) ([]domain.Administrator, error)
	// ListUsers returns all known accounts, ordered by username.
	ListUsers(ctx context.Context) ([]domain.DirectoryUser, error)
}
