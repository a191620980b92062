package respond_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/whoamimjg/chef-mike-ai-recipe-manager-sub002/modules/respond"
	"github.com/whoamimjg/chef-mike-ai-recipe-manager-sub002/pkg/quota"
)

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestJSON(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	respond.JSON(rec, http.StatusCreated, map[string]string{"id": "abc"})

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "application/json; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"id":"abc"}`, rec.Body.String())
}

func TestDenial(t *testing.T) {
	t.Parallel()

	t.Run("limit reached", func(t *testing.T) {
		t.Parallel()

		rec := httptest.NewRecorder()
		respond.Denial(rec, quota.Decision{
			Reason:   quota.ReasonLimitReached,
			Resource: quota.ResourceRecipes,
			Limit:    quota.LimitOf(50),
			Current:  50,
		})

		assert.Equal(t, http.StatusForbidden, rec.Code)
		body := decodeBody(t, rec)
		assert.Equal(t, "limit_reached", body["error"])
		assert.Equal(t, "recipes", body["resource"])
		assert.EqualValues(t, 50, body["current"])
		assert.EqualValues(t, 50, body["limit"])
		assert.NotEmpty(t, body["message"])
	})

	t.Run("limit reached with unknown count omits current", func(t *testing.T) {
		t.Parallel()

		rec := httptest.NewRecorder()
		respond.Denial(rec, quota.Decision{
			Reason:   quota.ReasonLimitReached,
			Resource: quota.ResourceRecipes,
			Limit:    quota.LimitOf(50),
			Current:  -1,
		})

		assert.Equal(t, http.StatusForbidden, rec.Code)
		body := decodeBody(t, rec)
		assert.Equal(t, "limit_reached", body["error"])
		assert.EqualValues(t, 50, body["limit"])
		assert.NotContains(t, body, "current")
	})

	t.Run("feature missing", func(t *testing.T) {
		t.Parallel()

		rec := httptest.NewRecorder()
		respond.Denial(rec, quota.Decision{
			Reason:  quota.ReasonFeatureMissing,
			Feature: quota.FeatureAIRecommendations,
		})

		assert.Equal(t, http.StatusForbidden, rec.Code)
		body := decodeBody(t, rec)
		assert.Equal(t, "feature_missing", body["error"])
		assert.Equal(t, "ai_recommendations", body["feature"])
		assert.NotContains(t, body, "current")
		assert.NotContains(t, body, "limit")
	})

	t.Run("service unavailable", func(t *testing.T) {
		t.Parallel()

		rec := httptest.NewRecorder()
		respond.Denial(rec, quota.Decision{Reason: quota.ReasonServiceUnavailable})

		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
		assert.Equal(t, "service_unavailable", decodeBody(t, rec)["error"])
	})

	t.Run("configuration error hides detail", func(t *testing.T) {
		t.Parallel()

		rec := httptest.NewRecorder()
		respond.Denial(rec, quota.Decision{Reason: quota.ReasonConfigurationError})

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		body := decodeBody(t, rec)
		assert.Equal(t, "configuration_error", body["error"])
		assert.Equal(t, "Internal error.", body["message"])
	})
}
