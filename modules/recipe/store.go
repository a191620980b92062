package recipe

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

// pgStore implements Store over a pgx pool.
type pgStore struct {
	pool *pgxpool.Pool
}

// NewStore returns a Postgres-backed recipe store.
func NewStore(pool *pgxpool.Pool) Store {
	return &pgStore{pool: pool}
}

func (s *pgStore) CountByAccount(ctx context.Context, accountID uuid.UUID) (int64, error) {
	var count int64
	err := s.pool.QueryRow(ctx,
		`SELECT count(*) FROM recipes WHERE user_id = $1`, accountID,
	).Scan(&count)
	if err != nil {
		return 0, errors.Join(quota.ErrStoreUnavailable, err)
	}
	return count, nil
}

// CreateUnderLimit runs the count check and the insert in one transaction,
// serialized per account via an advisory transaction lock. Concurrent
// creations for the same account queue on the lock, so at most cap rows can
// ever be admitted regardless of how many requests race.
func (s *pgStore) CreateUnderLimit(ctx context.Context, r *Recipe, limit quota.Limit) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	now := time.Now().UTC()
	r.CreatedAt = now
	r.UpdatedAt = now

	ingredients, err := jsonArray(r.Ingredients)
	if err != nil {
		return err
	}
	instructions, err := jsonArray(r.Instructions)
	if err != nil {
		return err
	}
	tags, err := jsonArray(r.Tags)
	if err != nil {
		return err
	}

	return pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		if !limit.IsUnlimited() {
			lockKey := quota.SerializedKey(r.UserID, quota.ResourceRecipes)
			if _, err := tx.Exec(ctx,
				`SELECT pg_advisory_xact_lock(hashtextextended($1, 0))`, lockKey,
			); err != nil {
				return errors.Join(quota.ErrStoreUnavailable, err)
			}

			tag, err := tx.Exec(ctx, `
				INSERT INTO recipes (id, user_id, title, description, ingredients, instructions, tags, image_url, created_at, updated_at)
				SELECT $1, $2, $3, $4, $5, $6, $7, $8, $9, $9
				WHERE (SELECT count(*) FROM recipes WHERE user_id = $2) < $10`,
				r.ID, r.UserID, r.Title, r.Description, ingredients, instructions, tags, r.ImageURL, now, limit.Cap(),
			)
			if err != nil {
				return errors.Join(quota.ErrStoreUnavailable, err)
			}
			if tag.RowsAffected() == 0 {
				return fmt.Errorf("%w: recipes cap %d", quota.ErrLimitReached, limit.Cap())
			}
			return nil
		}

		if _, err := tx.Exec(ctx, `
			INSERT INTO recipes (id, user_id, title, description, ingredients, instructions, tags, image_url, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $9)`,
			r.ID, r.UserID, r.Title, r.Description, ingredients, instructions, tags, r.ImageURL, now,
		); err != nil {
			return errors.Join(quota.ErrStoreUnavailable, err)
		}
		return nil
	})
}

func (s *pgStore) List(ctx context.Context, accountID uuid.UUID) ([]Recipe, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, user_id, title, description, ingredients, instructions, tags, image_url, created_at, updated_at
		FROM recipes WHERE user_id = $1 ORDER BY created_at DESC`, accountID)
	if err != nil {
		return nil, errors.Join(quota.ErrStoreUnavailable, err)
	}
	defer rows.Close()

	var recipes []Recipe
	for rows.Next() {
		r, err := scanRecipe(rows)
		if err != nil {
			return nil, err
		}
		recipes = append(recipes, r)
	}
	return recipes, rows.Err()
}

func (s *pgStore) Get(ctx context.Context, accountID, id uuid.UUID) (Recipe, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT id, user_id, title, description, ingredients, instructions, tags, image_url, created_at, updated_at
		FROM recipes WHERE user_id = $1 AND id = $2`, accountID, id)

	r, err := scanRecipe(row)
	if err != nil {
		if pg.IsNotFoundError(err) {
			return Recipe{}, ErrNotFound
		}
		return Recipe{}, err
	}
	return r, nil
}

func (s *pgStore) Delete(ctx context.Context, accountID, id uuid.UUID) error {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM recipes WHERE user_id = $1 AND id = $2`, accountID, id)
	if err != nil {
		return errors.Join(quota.ErrStoreUnavailable, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanRecipe(row pgx.Row) (Recipe, error) {
	var (
		r            Recipe
		ingredients  []byte
		instructions []byte
		tags         []byte
	)
	if err := row.Scan(&r.ID, &r.UserID, &r.Title, &r.Description,
		&ingredients, &instructions, &tags, &r.ImageURL,
		&r.CreatedAt, &r.UpdatedAt); err != nil {
		return Recipe{}, err
	}
	if err := json.Unmarshal(ingredients, &r.Ingredients); err != nil {
		return Recipe{}, err
	}
	if err := json.Unmarshal(instructions, &r.Instructions); err != nil {
		return Recipe{}, err
	}
	if err := json.Unmarshal(tags, &r.Tags); err != nil {
		return Recipe{}, err
	}
	return r, nil
}

// jsonArray encodes a string slice for a JSONB column, never as JSON null.
func jsonArray(ss []string) ([]byte, error) {
	if ss == nil {
		ss = []string{}
	}
	return json.Marshal(ss)
}
