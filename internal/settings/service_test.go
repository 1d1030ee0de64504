package settings

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"huparfum-backend/internal/db"
)

type mapCache struct {
	data map[string][]byte
	hits int
}

func newMapCache() *mapCache { return &mapCache{data: make(map[string][]byte)} }

func (c *mapCache) Get(_ context.Context, key string) ([]byte, bool) {
	v, ok := c.data[key]
	if ok {
		c.hits++
	}
	return v, ok
}

func (c *mapCache) Set(_ context.Context, key string, value []byte) {
	c.data[key] = value
}

func (c *mapCache) Invalidate(_ context.Context, key string) {
	delete(c.data, key)
}

func newTestService(t *testing.T) (*Service, *mapCache) {
	t.Helper()
	g, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	store := db.NewStore(g)
	require.NoError(t, store.AutoMigrate())
	cache := newMapCache()
	return NewService(store, cache), cache
}

func TestSettingReadThrough(t *testing.T) {
	svc, cache := newTestService(t)
	ctx := context.Background()

	w := &db.WebsiteSetting{Key: "hero_title", Category: "content", Value: []byte(`"HuParfum"`)}
	require.NoError(t, svc.PutSetting(ctx, w))

	// First read fills the cache, second read hits it.
	got, err := svc.Setting(ctx, "hero_title")
	require.NoError(t, err)
	require.JSONEq(t, `"HuParfum"`, string(got.Value))
	require.Zero(t, cache.hits)

	_, err = svc.Setting(ctx, "hero_title")
	require.NoError(t, err)
	require.Equal(t, 1, cache.hits)
}

func TestPutSettingInvalidates(t *testing.T) {
	svc, cache := newTestService(t)
	ctx := context.Background()

	require.NoError(t, svc.PutSetting(ctx, &db.WebsiteSetting{Key: "k", Category: "content", Value: []byte(`1`)}))
	_, err := svc.Setting(ctx, "k")
	require.NoError(t, err)
	require.Contains(t, cache.data, "setting:k")

	require.NoError(t, svc.PutSetting(ctx, &db.WebsiteSetting{Key: "k", Category: "content", Value: []byte(`2`)}))
	require.NotContains(t, cache.data, "setting:k")

	got, err := svc.Setting(ctx, "k")
	require.NoError(t, err)
	require.JSONEq(t, `2`, string(got.Value))
}

func TestSettingNotFound(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.Setting(context.Background(), "missing")
	require.ErrorIs(t, err, db.ErrNotFound)
}

func TestEmailVerificationRequired(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	// Missing flag means no gate.
	require.False(t, svc.EmailVerificationRequired(ctx))

	require.NoError(t, svc.PutFeatureFlag(ctx, &db.FeatureFlag{
		FeatureName: EmailVerificationFlag, Status: db.FlagOptional,
	}))
	require.False(t, svc.EmailVerificationRequired(ctx))

	require.NoError(t, svc.PutFeatureFlag(ctx, &db.FeatureFlag{
		FeatureName: EmailVerificationFlag, Status: db.FlagRequired,
	}))
	require.True(t, svc.EmailVerificationRequired(ctx))
}
