package shoppinglist

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/whoamimjg/chef-mike-ai-recipe-manager-sub002/pkg/pg"
	"github.com/whoamimjg/chef-mike-ai-recipe-manager-sub002/pkg/quota"
)

type pgStore struct {
	pool *pgxpool.Pool
}

// NewStore returns a Postgres-backed shopping-list store.
func NewStore(pool *pgxpool.Pool) Store {
	return &pgStore{pool: pool}
}

func (s *pgStore) CountByAccount(ctx context.Context, accountID uuid.UUID) (int64, error) {
	var count int64
	err := s.pool.QueryRow(ctx,
		`SELECT count(*) FROM shopping_lists WHERE user_id = $1`, accountID,
	).Scan(&count)
	if err != nil {
		return 0, errors.Join(quota.ErrStoreUnavailable, err)
	}
	return count, nil
}

// CreateUnderLimit mirrors the recipe store: per-account advisory lock plus a
// conditional insert in one transaction is the authoritative cap.
func (s *pgStore) CreateUnderLimit(ctx context.Context, l *List, limit quota.Limit) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	now := time.Now().UTC()
	l.CreatedAt = now
	l.UpdatedAt = now

	if l.Items == nil {
		l.Items = []Item{}
	}
	items, err := json.Marshal(l.Items)
	if err != nil {
		return err
	}

	return pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		if !limit.IsUnlimited() {
			lockKey := quota.SerializedKey(l.UserID, quota.ResourceShoppingLists)
			if _, err := tx.Exec(ctx,
				`SELECT pg_advisory_xact_lock(hashtextextended($1, 0))`, lockKey,
			); err != nil {
				return errors.Join(quota.ErrStoreUnavailable, err)
			}

			tag, err := tx.Exec(ctx, `
				INSERT INTO shopping_lists (id, user_id, name, items, created_at, updated_at)
				SELECT $1, $2, $3, $4, $5, $5
				WHERE (SELECT count(*) FROM shopping_lists WHERE user_id = $2) < $6`,
				l.ID, l.UserID, l.Name, items, now, limit.Cap(),
			)
			if err != nil {
				return errors.Join(quota.ErrStoreUnavailable, err)
			}
			if tag.RowsAffected() == 0 {
				return fmt.Errorf("%w: shopping_lists cap %d", quota.ErrLimitReached, limit.Cap())
			}
			return nil
		}

		if _, err := tx.Exec(ctx, `
			INSERT INTO shopping_lists (id, user_id, name, items, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $5)`,
			l.ID, l.UserID, l.Name, items, now,
		); err != nil {
			return errors.Join(quota.ErrStoreUnavailable, err)
		}
		return nil
	})
}

func (s *pgStore) ListByAccount(ctx context.Context, accountID uuid.UUID) ([]List, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, user_id, name, items, created_at, updated_at
		FROM shopping_lists WHERE user_id = $1 ORDER BY created_at DESC`, accountID)
	if err != nil {
		return nil, errors.Join(quota.ErrStoreUnavailable, err)
	}
	defer rows.Close()

	var lists []List
	for rows.Next() {
		l, err := scanList(rows)
		if err != nil {
			return nil, err
		}
		lists = append(lists, l)
	}
	return lists, rows.Err()
}

func (s *pgStore) Get(ctx context.Context, accountID, id uuid.UUID) (List, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT id, user_id, name, items, created_at, updated_at
		FROM shopping_lists WHERE user_id = $1 AND id = $2`, accountID, id)

	l, err := scanList(row)
	if err != nil {
		if pg.IsNotFoundError(err) {
			return List{}, ErrNotFound
		}
		return List{}, err
	}
	return l, nil
}

func (s *pgStore) Delete(ctx context.Context, accountID, id uuid.UUID) error {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM shopping_lists WHERE user_id = $1 AND id = $2`, accountID, id)
	if err != nil {
		return errors.Join(quota.ErrStoreUnavailable, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanList(row pgx.Row) (List, error) {
	var (
		l     List
		items []byte
	)
	if err := row.Scan(&l.ID, &l.UserID, &l.Name, &items, &l.CreatedAt, &l.UpdatedAt); err != nil {
		return List{}, err
	}
	if err := json.Unmarshal(items, &l.Items); err != nil {
		return List{}, err
	}
	return l, nil
}
