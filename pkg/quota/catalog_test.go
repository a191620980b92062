package quota_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/whoamimjg/chef-mike-ai-recipe-manager-sub002/pkg/quota"
)

type failingSource struct {
	err error
}

func (s *failingSource) Load(ctx context.Context) (map[string]quota.Plan, error) {
	return nil, s.err
}

func TestNewCatalog(t *testing.T) {
	t.Parallel()

	t.Run("loads default plans", func(t *testing.T) {
		t.Parallel()

		catalog, err := quota.NewCatalog(context.Background(), quota.NewInMemSource(quota.DefaultPlans()))
		require.NoError(t, err)
		assert.Equal(t, []string{"family", "free", "pro"}, catalog.PlanIDs())
	})

	t.Run("source failure", func(t *testing.T) {
		t.Parallel()

		loadErr := errors.New("boom")
		_, err := quota.NewCatalog(context.Background(), &failingSource{err: loadErr})
		assert.ErrorIs(t, err, quota.ErrFailedToLoadPlans)
		assert.ErrorIs(t, err, loadErr)
	})

	t.Run("rejects mismatched plan IDs", func(t *testing.T) {
		t.Parallel()

		_, err := quota.NewCatalog(context.Background(), quota.NewInMemSource(map[string]quota.Plan{
			"free": {ID: "pro"},
		}))
		assert.ErrorIs(t, err, quota.ErrInvalidPlanConfiguration)
	})

	t.Run("rejects empty plan ID", func(t *testing.T) {
		t.Parallel()

		_, err := quota.NewCatalog(context.Background(), quota.NewInMemSource(map[string]quota.Plan{
			"": {Name: "Anonymous"},
		}))
		assert.ErrorIs(t, err, quota.ErrInvalidPlanConfiguration)
	})
}

func TestCatalogLookups(t *testing.T) {
	t.Parallel()

	catalog, err := quota.NewCatalog(context.Background(), quota.NewInMemSource(quota.DefaultPlans()))
	require.NoError(t, err)

	t.Run("known plan", func(t *testing.T) {
		t.Parallel()

		plan, err := catalog.Plan("free")
		require.NoError(t, err)
		assert.Equal(t, "free", plan.ID)
		assert.Equal(t, quota.LimitOf(50), plan.Limits[quota.ResourceRecipes])
		assert.Equal(t, quota.LimitOf(5), plan.Limits[quota.ResourceShoppingLists])
	})

	t.Run("unknown plan is a configuration error", func(t *testing.T) {
		t.Parallel()

		_, err := catalog.Plan("enterprise-legacy")
		assert.ErrorIs(t, err, quota.ErrPlanNotFound)

		_, err = catalog.LimitsFor("enterprise-legacy")
		assert.ErrorIs(t, err, quota.ErrPlanNotFound)

		_, err = catalog.FeaturesFor("enterprise-legacy")
		assert.ErrorIs(t, err, quota.ErrPlanNotFound)
	})

	t.Run("limits are copies", func(t *testing.T) {
		t.Parallel()

		limits, err := catalog.LimitsFor("free")
		require.NoError(t, err)
		limits[quota.ResourceRecipes] = quota.Unlimited

		fresh, err := catalog.LimitsFor("free")
		require.NoError(t, err)
		assert.Equal(t, quota.LimitOf(50), fresh[quota.ResourceRecipes])
	})

	t.Run("feature membership", func(t *testing.T) {
		t.Parallel()

		assert.True(t, catalog.HasFeature("pro", quota.FeatureAIRecommendations))
		assert.False(t, catalog.HasFeature("free", quota.FeatureAIRecommendations))
		assert.False(t, catalog.HasFeature("enterprise-legacy", quota.FeatureAIRecommendations))
	})
}

func TestInMemSourceIsolation(t *testing.T) {
	t.Parallel()

	plans := map[string]quota.Plan{
		"free": {ID: "free", Limits: map[quota.Resource]quota.Limit{
			quota.ResourceRecipes: quota.LimitOf(50),
		}},
	}
	src := quota.NewInMemSource(plans)

	// Mutating the input after construction must not leak into the source.
	plans["free"].Limits[quota.ResourceRecipes] = quota.Unlimited

	loaded, err := src.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, quota.LimitOf(50), loaded["free"].Limits[quota.ResourceRecipes])
}
