package quota_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/whoamimjg/chef-mike-ai-recipe-manager-sub002/pkg/quota"
)

func TestLimitAllows(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		limit   quota.Limit
		current int64
		want    bool
	}{
		{"below cap", quota.LimitOf(10), 9, true},
		{"at cap", quota.LimitOf(10), 10, false},
		{"above cap", quota.LimitOf(10), 11, false},
		{"zero cap denies everything", quota.LimitOf(0), 0, false},
		{"unlimited ignores count", quota.Unlimited, 5000, true},
		{"zero value is a zero cap", quota.Limit{}, 0, false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, tt.limit.Allows(tt.current))
		})
	}
}

func TestLimitOfPanicsOnNegative(t *testing.T) {
	t.Parallel()

	assert.Panics(t, func() { quota.LimitOf(-1) })
}

func TestLimitJSON(t *testing.T) {
	t.Parallel()

	t.Run("finite cap round-trips", func(t *testing.T) {
		t.Parallel()

		data, err := json.Marshal(quota.LimitOf(50))
		require.NoError(t, err)
		assert.Equal(t, "50", string(data))

		var l quota.Limit
		require.NoError(t, json.Unmarshal(data, &l))
		assert.False(t, l.IsUnlimited())
		assert.EqualValues(t, 50, l.Cap())
	})

	t.Run("unlimited uses wire sentinel", func(t *testing.T) {
		t.Parallel()

		data, err := json.Marshal(quota.Unlimited)
		require.NoError(t, err)
		assert.Equal(t, "-1", string(data))

		var l quota.Limit
		require.NoError(t, json.Unmarshal(data, &l))
		assert.True(t, l.IsUnlimited())
	})

	t.Run("rejects negative caps other than sentinel", func(t *testing.T) {
		t.Parallel()

		var l quota.Limit
		assert.Error(t, json.Unmarshal([]byte("-2"), &l))
	})
}

func TestSnapshotAtLimit(t *testing.T) {
	t.Parallel()

	assert.False(t, quota.Snapshot{Current: 9, Limit: quota.LimitOf(10)}.AtLimit())
	assert.True(t, quota.Snapshot{Current: 10, Limit: quota.LimitOf(10)}.AtLimit())
	assert.False(t, quota.Snapshot{Current: 5000, Limit: quota.Unlimited}.AtLimit())
}
