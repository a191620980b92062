// Package account reads plan assignments. Ownership of the assignment lives
// in the subscription system; this module only exposes the read side the
// quota gate needs.
package account

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/whoamimjg/chef-mike-ai-recipe-manager-sub002/pkg/pg"
	"github.com/whoamimjg/chef-mike-ai-recipe-manager-sub002/pkg/quota"
)

// ErrAccountNotFound is returned when no user row exists for the account ID.
var ErrAccountNotFound = errors.New("account.errors.account_not_found")

// Store reads account rows from Postgres.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore returns a Store over the given pool.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// PlanFor returns the account's active plan ID.
func (s *Store) PlanFor(ctx context.Context, accountID uuid.UUID) (string, error) {
	var planID string
	err := s.pool.QueryRow(ctx,
		`SELECT plan FROM users WHERE id = $1`, accountID,
	).Scan(&planID)
	if err != nil {
		if pg.IsNotFoundError(err) {
			return "", fmt.Errorf("%w: %s", ErrAccountNotFound, accountID)
		}
		return "", err
	}
	return planID, nil
}

// PlanResolver adapts the store to the quota service's resolver contract.
func (s *Store) PlanResolver() quota.PlanResolver {
	return func(ctx context.Context, accountID uuid.UUID) (string, error) {
		return s.PlanFor(ctx, accountID)
	}
}
