// Package identity carries the authenticated account ID through request
// context. Authentication itself is an external concern: an upstream
// middleware (session, JWT, or gateway header) resolves the caller and
// stores the account ID here; everything downstream only reads it.
package identity

import (
	"context"

	"github.com/google/uuid"
)

type accountIDCtxKey struct{}

// WithAccountID stores the authenticated account ID in the context.
func WithAccountID(ctx context.Context, accountID uuid.UUID) context.Context {
	return context.WithValue(ctx, accountIDCtxKey{}, accountID)
}

// AccountID retrieves the authenticated account ID from the context.
func AccountID(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(accountIDCtxKey{}).(uuid.UUID)
	return id, ok
}
