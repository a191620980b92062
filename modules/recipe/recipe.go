// Package recipe owns recipe storage and HTTP surface. Creation is
// plan-limited: the store's conditional insert is the authoritative
// enforcement point, the quota gate provides the friendly pre-check.
package recipe

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/whoamimjg/chef-mike-ai-recipe-manager-sub002/pkg/quota"
)

var (
	// ErrNotFound is returned when the recipe does not exist or belongs to
	// another account.
	ErrNotFound = errors.New("recipe.errors.not_found")
)

// Recipe is a stored recipe owned by one account.
type Recipe struct {
	ID           uuid.UUID `json:"id"`
	UserID       uuid.UUID `json:"user_id"`
	Title        string    `json:"title"`
	Description  string    `json:"description,omitempty"`
	Ingredients  []string  `json:"ingredients"`
	Instructions []string  `json:"instructions"`
	Tags         []string  `json:"tags,omitempty"`
	ImageURL     string    `json:"image_url,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Store is the recipe persistence contract.
type Store interface {
	// CountByAccount returns the number of recipes the account owns. Usable
	// directly as a quota.CounterFunc.
	CountByAccount(ctx context.Context, accountID uuid.UUID) (int64, error)

	// CreateUnderLimit inserts r only while the account's recipe count is
	// below the limit, atomically with respect to concurrent creations for
	// the same account. Returns quota.ErrLimitReached when the slot race is
	// lost. This, not the gate's pre-check, is what guarantees the cap.
	CreateUnderLimit(ctx context.Context, r *Recipe, limit quota.Limit) error

	List(ctx context.Context, accountID uuid.UUID) ([]Recipe, error)
	Get(ctx context.Context, accountID, id uuid.UUID) (Recipe, error)
	Delete(ctx context.Context, accountID, id uuid.UUID) error
}
