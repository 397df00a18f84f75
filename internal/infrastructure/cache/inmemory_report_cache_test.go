package cache

import (
	"context"
	"testing"
	"time"

	appcashier "github.com/hotelops/backend/internal/application/cashier"
	"github.com/hotelops/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestInMemoryReportCache(t *testing.T) {
	ctx := context.Background()
	report := &appcashier.MonthlyReport{Year: 2024, Month: 3, ClosedDays: 2}

	t.Run("miss then hit", func(t *testing.T) {
		c := NewInMemoryReportCache()

		got, ok, err := c.GetMonthly(ctx, 2024, 3)
		require.NoError(t, err)
		assert.False(t, ok)
		assert.Nil(t, got)

		stored, err := c.SetMonthly(ctx, report, 0, time.Minute)
		require.NoError(t, err)
		assert.True(t, stored)
		got, ok, err = c.GetMonthly(ctx, 2024, 3)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Same(t, report, got)

		_, ok, _ = c.GetMonthly(ctx, 2024, 4)
		assert.False(t, ok)
	})

	t.Run("entries expire", func(t *testing.T) {
		c := NewInMemoryReportCache()
		now := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
		c.now = func() time.Time { return now }

		_, err := c.SetMonthly(ctx, report, 0, time.Minute)
		require.NoError(t, err)
		now = now.Add(59 * time.Second)
		_, ok, _ := c.GetMonthly(ctx, 2024, 3)
		assert.True(t, ok)

		now = now.Add(time.Second)
		_, ok, _ = c.GetMonthly(ctx, 2024, 3)
		assert.False(t, ok)
		assert.Equal(t, 0, c.Len())
	})

	t.Run("invalidate drops only that month", func(t *testing.T) {
		c := NewInMemoryReportCache()
		_, err := c.SetMonthly(ctx, report, 0, time.Minute)
		require.NoError(t, err)
		_, err = c.SetMonthly(ctx, &appcashier.MonthlyReport{Year: 2024, Month: 4}, 0, time.Minute)
		require.NoError(t, err)

		require.NoError(t, c.InvalidateMonth(ctx, 2024, 3))

		_, ok, _ := c.GetMonthly(ctx, 2024, 3)
		assert.False(t, ok)
		_, ok, _ = c.GetMonthly(ctx, 2024, 4)
		assert.True(t, ok)
	})

	t.Run("report built before an invalidation is not stored", func(t *testing.T) {
		c := NewInMemoryReportCache()
		gen, err := c.MonthGeneration(ctx, 2024, 3)
		require.NoError(t, err)
		assert.Equal(t, int64(0), gen)

		require.NoError(t, c.InvalidateMonth(ctx, 2024, 3))
		stored, err := c.SetMonthly(ctx, report, gen, time.Minute)
		require.NoError(t, err)
		assert.False(t, stored)
		assert.Equal(t, 0, c.Len())

		gen, err = c.MonthGeneration(ctx, 2024, 3)
		require.NoError(t, err)
		assert.Equal(t, int64(1), gen)
		stored, err = c.SetMonthly(ctx, report, gen, time.Minute)
		require.NoError(t, err)
		assert.True(t, stored)

		other, err := c.MonthGeneration(ctx, 2024, 4)
		require.NoError(t, err)
		assert.Equal(t, int64(0), other, "generations are per month")
	})
}

func TestReportCacheFactory(t *testing.T) {
	t.Run("redis disabled uses in-memory cache", func(t *testing.T) {
		f := NewReportCacheFactory(config.RedisConfig{Enabled: false}, WithLogger(zaptest.NewLogger(t)))
		c, err := f.CreateCache()
		require.NoError(t, err)
		assert.IsType(t, inMemoryCache{}, c)
		assert.NoError(t, c.Ping(context.Background()))
		assert.NoError(t, c.Close())
	})

	unreachable := config.RedisConfig{Enabled: true, Host: "127.0.0.1", Port: 1}

	t.Run("unreachable redis falls back", func(t *testing.T) {
		f := NewReportCacheFactory(unreachable)
		c, err := f.CreateCache()
		require.NoError(t, err)
		assert.IsType(t, inMemoryCache{}, c)
	})

	t.Run("unreachable redis fails without fallback", func(t *testing.T) {
		f := NewReportCacheFactory(unreachable, WithInMemoryFallback(false))
		_, err := f.CreateCache()
		assert.ErrorContains(t, err, "redis required")
	})
}
