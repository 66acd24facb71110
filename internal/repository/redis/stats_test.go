package redis

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SpyBeast07/lms-system/internal/domain"
)

func setupTestCache(t *testing.T) (*StatsCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	cache := NewStatsCache(client, 30*time.Second)
	return cache, mr
}

func sampleStats() *domain.SchoolStats {
	return &domain.SchoolStats{
		SchoolID:                "school-1",
		Principals:              1,
		Teachers:                12,
		Students:                340,
		Courses:                 28,
		Materials:               96,
		Submissions:             1205,
		PendingPasswordRequests: 2,
	}
}

func TestStatsCache_Get_Miss(t *testing.T) {
	cache, _ := setupTestCache(t)

	got, err := cache.Get(context.Background(), "school-1")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestStatsCache_SetThenGet(t *testing.T) {
	cache, mr := setupTestCache(t)

	stats := sampleStats()
	require.NoError(t, cache.Set(context.Background(), stats))

	got, err := cache.Get(context.Background(), "school-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, stats, got)

	// Entries carry the configured TTL.
	assert.Equal(t, 30*time.Second, mr.TTL("lms:stats:school:school-1"))
}

func TestStatsCache_Get_ExpiredEntryIsAMiss(t *testing.T) {
	cache, mr := setupTestCache(t)

	require.NoError(t, cache.Set(context.Background(), sampleStats()))
	mr.FastForward(31 * time.Second)

	got, err := cache.Get(context.Background(), "school-1")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestStatsCache_Get_CorruptEntry(t *testing.T) {
	cache, mr := setupTestCache(t)

	require.NoError(t, mr.Set("lms:stats:school:school-1", "{not json"))

	_, err := cache.Get(context.Background(), "school-1")
	assert.Error(t, err)
}

func TestStatsCache_Invalidate(t *testing.T) {
	cache, mr := setupTestCache(t)

	require.NoError(t, cache.Set(context.Background(), sampleStats()))
	require.NoError(t, cache.Invalidate(context.Background(), "school-1"))

	assert.False(t, mr.Exists("lms:stats:school:school-1"))
}

func TestStatsCache_KeysAreSchoolScoped(t *testing.T) {
	cache, _ := setupTestCache(t)

	a := sampleStats()
	b := sampleStats()
	b.SchoolID = "school-2"
	b.Students = 5

	require.NoError(t, cache.Set(context.Background(), a))
	require.NoError(t, cache.Set(context.Background(), b))

	gotA, err := cache.Get(context.Background(), "school-1")
	require.NoError(t, err)
	gotB, err := cache.Get(context.Background(), "school-2")
	require.NoError(t, err)

	assert.Equal(t, 340, gotA.Students)
	assert.Equal(t, 5, gotB.Students)

	raw, err := json.Marshal(gotB)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "school-2")
}
