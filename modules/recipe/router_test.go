package recipe_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/whoamimjg/chef-mike-ai-recipe-manager-sub002/modules/recipe"
	"github.com/whoamimjg/chef-mike-ai-recipe-manager-sub002/pkg/identity"
	"github.com/whoamimjg/chef-mike-ai-recipe-manager-sub002/pkg/quota"
)

// memStore is an in-memory recipe.Store with the same conditional-insert
// contract as the postgres implementation.
type memStore struct {
	mu      sync.Mutex
	recipes map[uuid.UUID]recipe.Recipe
	failing bool
}

func newMemStore() *memStore {
	return &memStore{recipes: make(map[uuid.UUID]recipe.Recipe)}
}

func (s *memStore) CountByAccount(ctx context.Context, accountID uuid.UUID) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failing {
		return 0, errors.New("store down")
	}
	var n int64
	for _, r := range s.recipes {
		if r.UserID == accountID {
			n++
		}
	}
	return n, nil
}

func (s *memStore) CreateUnderLimit(ctx context.Context, r *recipe.Recipe, limit quota.Limit) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failing {
		return errors.New("store down")
	}
	var n int64
	for _, existing := range s.recipes {
		if existing.UserID == r.UserID {
			n++
		}
	}
	if !limit.Allows(n) {
		return fmt.Errorf("%w: recipes", quota.ErrLimitReached)
	}
	r.ID = uuid.New()
	s.recipes[r.ID] = *r
	return nil
}

func (s *memStore) List(ctx context.Context, accountID uuid.UUID) ([]recipe.Recipe, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failing {
		return nil, errors.New("store down")
	}
	var out []recipe.Recipe
	for _, r := range s.recipes {
		if r.UserID == accountID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *memStore) Get(ctx context.Context, accountID, id uuid.UUID) (recipe.Recipe, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.recipes[id]
	if !ok || r.UserID != accountID {
		return recipe.Recipe{}, recipe.ErrNotFound
	}
	return r, nil
}

func (s *memStore) Delete(ctx context.Context, accountID, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.recipes[id]
	if !ok || r.UserID != accountID {
		return recipe.ErrNotFound
	}
	delete(s.recipes, id)
	return nil
}

// raceStore passes counting through but always loses the insert race,
// simulating a concurrent creation that took the last slot after the
// pre-check.
type raceStore struct {
	*memStore
}

func (s *raceStore) CreateUnderLimit(ctx context.Context, r *recipe.Recipe, limit quota.Limit) error {
	return fmt.Errorf("%w: recipes", quota.ErrLimitReached)
}

func testGate(t *testing.T, store *memStore, planID string, cap int64) quota.Service {
	t.Helper()

	limit := quota.Unlimited
	if cap >= 0 {
		limit = quota.LimitOf(cap)
	}
	plans := map[string]quota.Plan{
		planID: {
			ID:     planID,
			Name:   planID,
			Limits: map[quota.Resource]quota.Limit{quota.ResourceRecipes: limit},
		},
	}
	catalog, err := quota.NewCatalog(context.Background(), quota.NewInMemSource(plans))
	require.NoError(t, err)

	counters := quota.NewRegistry()
	counters.Register(quota.ResourceRecipes, store.CountByAccount)

	resolver := func(ctx context.Context, _ uuid.UUID) (string, error) { return planID, nil }
	return quota.NewService(catalog, counters, resolver, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func doRequest(handler http.Handler, method, target string, accountID uuid.UUID, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set(identity.HeaderAccountID, accountID.String())
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func newRecipeBody(title string) map[string]any {
	return map[string]any{
		"title":        title,
		"ingredients":  []string{"2 eggs", "100g flour"},
		"instructions": []string{"mix", "bake"},
	}
}

func TestRecipeRouter(t *testing.T) {
	t.Parallel()

	t.Run("create under limit", func(t *testing.T) {
		t.Parallel()

		store := newMemStore()
		handler := identity.Middleware(recipe.Router(store, testGate(t, store, "free", 3), slog.New(slog.NewTextHandler(io.Discard, nil))))
		accountID := uuid.New()

		rec := doRequest(handler, http.MethodPost, "/", accountID, newRecipeBody("Pancakes"))
		require.Equal(t, http.StatusCreated, rec.Code)

		var created recipe.Recipe
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
		assert.NotEqual(t, uuid.Nil, created.ID)
		assert.Equal(t, accountID, created.UserID)
		assert.Equal(t, "Pancakes", created.Title)
	})

	t.Run("create denied at limit", func(t *testing.T) {
		t.Parallel()

		store := newMemStore()
		handler := identity.Middleware(recipe.Router(store, testGate(t, store, "free", 2), slog.New(slog.NewTextHandler(io.Discard, nil))))
		accountID := uuid.New()

		for i := 0; i < 2; i++ {
			rec := doRequest(handler, http.MethodPost, "/", accountID, newRecipeBody(fmt.Sprintf("Recipe %d", i)))
			require.Equal(t, http.StatusCreated, rec.Code)
		}

		rec := doRequest(handler, http.MethodPost, "/", accountID, newRecipeBody("One too many"))
		require.Equal(t, http.StatusForbidden, rec.Code)

		var body map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "limit_reached", body["error"])
		assert.Equal(t, "recipes", body["resource"])
		assert.EqualValues(t, 2, body["current"])
		assert.EqualValues(t, 2, body["limit"])
	})

	t.Run("race loser is denied without a fabricated count", func(t *testing.T) {
		t.Parallel()

		store := newMemStore()
		gate := testGate(t, store, "free", 3)
		handler := identity.Middleware(recipe.Router(&raceStore{memStore: store}, gate, slog.New(slog.NewTextHandler(io.Discard, nil))))

		rec := doRequest(handler, http.MethodPost, "/", uuid.New(), newRecipeBody("Pancakes"))
		require.Equal(t, http.StatusForbidden, rec.Code)

		var body map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "limit_reached", body["error"])
		assert.EqualValues(t, 3, body["limit"])
		assert.NotContains(t, body, "current")
	})

	t.Run("limit is per account", func(t *testing.T) {
		t.Parallel()

		store := newMemStore()
		handler := identity.Middleware(recipe.Router(store, testGate(t, store, "free", 1), slog.New(slog.NewTextHandler(io.Discard, nil))))

		first := uuid.New()
		require.Equal(t, http.StatusCreated, doRequest(handler, http.MethodPost, "/", first, newRecipeBody("A")).Code)
		require.Equal(t, http.StatusForbidden, doRequest(handler, http.MethodPost, "/", first, newRecipeBody("B")).Code)

		second := uuid.New()
		assert.Equal(t, http.StatusCreated, doRequest(handler, http.MethodPost, "/", second, newRecipeBody("C")).Code)
	})

	t.Run("unlimited plan", func(t *testing.T) {
		t.Parallel()

		store := newMemStore()
		handler := identity.Middleware(recipe.Router(store, testGate(t, store, "pro", -1), slog.New(slog.NewTextHandler(io.Discard, nil))))
		accountID := uuid.New()

		for i := 0; i < 10; i++ {
			rec := doRequest(handler, http.MethodPost, "/", accountID, newRecipeBody(fmt.Sprintf("Recipe %d", i)))
			require.Equal(t, http.StatusCreated, rec.Code)
		}
	})

	t.Run("store outage denies creation", func(t *testing.T) {
		t.Parallel()

		store := newMemStore()
		store.failing = true
		handler := identity.Middleware(recipe.Router(store, testGate(t, store, "free", 3), slog.New(slog.NewTextHandler(io.Discard, nil))))

		rec := doRequest(handler, http.MethodPost, "/", uuid.New(), newRecipeBody("Pancakes"))
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})

	t.Run("missing title", func(t *testing.T) {
		t.Parallel()

		store := newMemStore()
		handler := identity.Middleware(recipe.Router(store, testGate(t, store, "free", 3), slog.New(slog.NewTextHandler(io.Discard, nil))))

		rec := doRequest(handler, http.MethodPost, "/", uuid.New(), map[string]any{"description": "no title"})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("unauthenticated", func(t *testing.T) {
		t.Parallel()

		store := newMemStore()
		handler := identity.Middleware(recipe.Router(store, testGate(t, store, "free", 3), slog.New(slog.NewTextHandler(io.Discard, nil))))

		req := httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString("{}"))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("list get delete", func(t *testing.T) {
		t.Parallel()

		store := newMemStore()
		handler := identity.Middleware(recipe.Router(store, testGate(t, store, "free", 5), slog.New(slog.NewTextHandler(io.Discard, nil))))
		accountID := uuid.New()

		created := doRequest(handler, http.MethodPost, "/", accountID, newRecipeBody("Pancakes"))
		require.Equal(t, http.StatusCreated, created.Code)
		var rec recipe.Recipe
		require.NoError(t, json.Unmarshal(created.Body.Bytes(), &rec))

		list := doRequest(handler, http.MethodGet, "/", accountID, nil)
		require.Equal(t, http.StatusOK, list.Code)
		var recipes []recipe.Recipe
		require.NoError(t, json.Unmarshal(list.Body.Bytes(), &recipes))
		require.Len(t, recipes, 1)

		got := doRequest(handler, http.MethodGet, "/"+rec.ID.String(), accountID, nil)
		assert.Equal(t, http.StatusOK, got.Code)

		// Another account cannot see it.
		other := doRequest(handler, http.MethodGet, "/"+rec.ID.String(), uuid.New(), nil)
		assert.Equal(t, http.StatusNotFound, other.Code)

		del := doRequest(handler, http.MethodDelete, "/"+rec.ID.String(), accountID, nil)
		assert.Equal(t, http.StatusNoContent, del.Code)

		gone := doRequest(handler, http.MethodGet, "/"+rec.ID.String(), accountID, nil)
		assert.Equal(t, http.StatusNotFound, gone.Code)
	})

	t.Run("empty list is a JSON array", func(t *testing.T) {
		t.Parallel()

		store := newMemStore()
		handler := identity.Middleware(recipe.Router(store, testGate(t, store, "free", 5), slog.New(slog.NewTextHandler(io.Discard, nil))))

		list := doRequest(handler, http.MethodGet, "/", uuid.New(), nil)
		require.Equal(t, http.StatusOK, list.Code)
		assert.JSONEq(t, "[]", list.Body.String())
	})
}
