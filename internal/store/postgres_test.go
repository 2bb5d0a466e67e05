package store

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// the pool connects lazily, so nothing listens on this address
const unreachableDatabase = "postgres://rentenplan@127.0.0.1:1/rentenplan?connect_timeout=1"

func TestNewPostgresRepository(t *testing.T) {
	ctx := context.Background()

	_, err := NewPostgresRepository(ctx, "")
	assert.Error(t, err)
	_, err = NewPostgresRepository(ctx, "postgres://%zz")
	assert.Error(t, err)

	repo, err := NewPostgresRepository(ctx, unreachableDatabase)
	require.NoError(t, err)
	defer repo.Close()

	// malformed IDs never reach the database
	_, err = repo.Load(ctx, "abc")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, "abc"), ErrNotFound)
}

func TestDecodeRow(t *testing.T) {
	created := time.Date(2024, 3, 1, 10, 0, 0, 0, time.FixedZone("CET", 3600))
	updated := created.Add(time.Hour)

	draft, err := decodeRow([]byte(`{"id":"x","name":"A","milestones":[67]}`), created, updated)
	require.NoError(t, err)
	assert.Equal(t, "A", draft.Name)
	assert.Equal(t, []int{67}, draft.Milestones)
	assert.Equal(t, time.UTC, draft.CreatedAt.Location())
	assert.True(t, draft.UpdatedAt.Equal(updated))

	_, err = decodeRow([]byte(`{`), created, updated)
	assert.Error(t, err)
}

// TestPostgresRepository_CRUD runs against a real server when
// RENTENPLAN_TEST_DATABASE_URL is set.
func TestPostgresRepository_CRUD(t *testing.T) {
	url := os.Getenv("RENTENPLAN_TEST_DATABASE_URL")
	if url == "" {
		t.Skip("RENTENPLAN_TEST_DATABASE_URL not set")
	}
	ctx := context.Background()

	repo, err := NewPostgresRepository(ctx, url)
	require.NoError(t, err)
	defer repo.Close()
	require.NoError(t, repo.EnsureSchema(ctx))
	repo.now = fixedClock()

	first, err := repo.Save(ctx, testDraft("A"))
	require.NoError(t, err)
	defer repo.Delete(ctx, first.ID)

	update := first
	update.Name = "B"
	second, err := repo.Save(ctx, update)
	require.NoError(t, err)
	assert.True(t, second.CreatedAt.Equal(first.CreatedAt))

	loaded, err := repo.Load(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, "B", loaded.Name)

	list, err := repo.List(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, list)

	require.NoError(t, repo.Delete(ctx, first.ID))
	assert.ErrorIs(t, repo.Delete(ctx, first.ID), ErrNotFound)
}
