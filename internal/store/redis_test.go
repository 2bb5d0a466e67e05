package store

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vorsorge/rentenplan/internal/domain"
)

func newTestRedis(t *testing.T, ttl time.Duration) (*RedisRepository, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	repo := NewRedisRepositoryWithClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}), ttl)
	repo.now = fixedClock()
	t.Cleanup(func() { repo.Close() })
	return repo, mr
}

func TestRedisRepository_SaveLoad(t *testing.T) {
	ctx := context.Background()
	repo, mr := newTestRedis(t, time.Hour)

	saved, err := repo.Save(ctx, testDraft("Vergleich"))
	require.NoError(t, err)
	require.True(t, ValidID(saved.ID))
	assert.Equal(t, time.Hour, mr.TTL(redisKey(saved.ID)))

	member, err := mr.IsMember(redisIndexKey, saved.ID)
	require.NoError(t, err)
	assert.True(t, member)

	loaded, err := repo.Load(ctx, saved.ID)
	require.NoError(t, err)
	assert.Equal(t, "Vergleich", loaded.Name)
	assert.True(t, loaded.CreatedAt.Equal(saved.CreatedAt))
	require.Len(t, loaded.Plans, 1)
	assert.True(t, loaded.Plans[0].MonthlyContribution.Equal(saved.Plans[0].MonthlyContribution))
}

func TestRedisRepository_UpdateKeepsCreatedAt(t *testing.T) {
	ctx := context.Background()
	repo, _ := newTestRedis(t, 0)

	first, err := repo.Save(ctx, testDraft("A"))
	require.NoError(t, err)

	update := first
	update.CreatedAt = time.Time{}
	update.Name = "B"
	second, err := repo.Save(ctx, update)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.True(t, second.CreatedAt.Equal(first.CreatedAt))
	assert.True(t, second.UpdatedAt.After(first.UpdatedAt))
}

func TestRedisRepository_NotFound(t *testing.T) {
	ctx := context.Background()
	repo, _ := newTestRedis(t, time.Hour)

	_, err := repo.Load(ctx, NewID())
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, NewID()), ErrNotFound)

	_, err = repo.Save(ctx, domain.PlanDraft{ID: "not-a-uuid"})
	var verr *domain.ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestRedisRepository_Delete(t *testing.T) {
	ctx := context.Background()
	repo, mr := newTestRedis(t, time.Hour)

	saved, err := repo.Save(ctx, testDraft("A"))
	require.NoError(t, err)
	require.NoError(t, repo.Delete(ctx, saved.ID))

	_, err = repo.Load(ctx, saved.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	member, err := mr.IsMember(redisIndexKey, saved.ID)
	require.NoError(t, err)
	assert.False(t, member)
}

func TestRedisRepository_ListDropsExpired(t *testing.T) {
	ctx := context.Background()
	repo, mr := newTestRedis(t, time.Hour)

	older, err := repo.Save(ctx, testDraft("A"))
	require.NoError(t, err)
	newer, err := repo.Save(ctx, testDraft("B"))
	require.NoError(t, err)
	gone, err := repo.Save(ctx, testDraft("C"))
	require.NoError(t, err)
	mr.Del(redisKey(gone.ID))

	list, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, newer.ID, list[0].ID, "most recently updated first")
	assert.Equal(t, older.ID, list[1].ID)

	members, err := mr.Members(redisIndexKey)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{older.ID, newer.ID}, members)

	mr.FastForward(2 * time.Hour)
	list, err = repo.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestNewRedisRepository(t *testing.T) {
	mr := miniredis.RunT(t)

	repo, err := NewRedisRepository("redis://"+mr.Addr(), time.Minute)
	require.NoError(t, err)
	defer repo.Close()
	_, err = repo.Save(context.Background(), testDraft("A"))
	assert.NoError(t, err)

	_, err = NewRedisRepository("", time.Minute)
	assert.Error(t, err)
	_, err = NewRedisRepository("http://localhost", time.Minute)
	assert.Error(t, err)
}
