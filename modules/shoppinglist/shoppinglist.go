// Package shoppinglist owns shopping-list storage and HTTP surface. Creation
// is plan-limited with the same enforcement discipline as recipes.
package shoppinglist

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/whoamimjg/chef-mike-ai-recipe-manager-sub002/pkg/quota"
)

// ErrNotFound is returned when the list does not exist or belongs to another
// account.
var ErrNotFound = errors.New("shoppinglist.errors.not_found")

// Item is one entry on a shopping list.
type Item struct {
	Name     string `json:"name"`
	Quantity string `json:"quantity,omitempty"`
	Checked  bool   `json:"checked"`
}

// List is a stored shopping list owned by one account.
type List struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	Name      string    `json:"name"`
	Items     []Item    `json:"items"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Store is the shopping-list persistence contract.
type Store interface {
	// CountByAccount returns the number of lists the account owns. Usable
	// directly as a quota.CounterFunc.
	CountByAccount(ctx context.Context, accountID uuid.UUID) (int64, error)

	// CreateUnderLimit inserts l only while the account's list count is below
	// the limit, atomically under per-account serialization. Returns
	// quota.ErrLimitReached when the slot race is lost.
	CreateUnderLimit(ctx context.Context, l *List, limit quota.Limit) error

	ListByAccount(ctx context.Context, accountID uuid.UUID) ([]List, error)
	Get(ctx context.Context, accountID, id uuid.UUID) (List, error)
	Delete(ctx context.Context, accountID, id uuid.UUID) error
}
