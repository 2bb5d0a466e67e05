package store

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vorsorge/rentenplan/internal/domain"
)

// failingRepository rejects every save
type failingRepository struct {
	*MemoryRepository
}

func (failingRepository) Save(context.Context, domain.PlanDraft) (domain.PlanDraft, error) {
	return domain.PlanDraft{}, errors.New("disk full")
}

func TestSession_SaveAndLoad(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()

	s := NewSession(testDraft("Vergleich"))
	assert.True(t, s.Dirty(), "new draft is unsaved")
	assert.True(t, s.LastSaved().IsZero())

	stored, err := s.Save(ctx, repo)
	require.NoError(t, err)
	assert.False(t, s.Dirty())
	assert.Equal(t, stored.ID, s.Draft().ID)
	assert.Equal(t, stored.UpdatedAt, s.LastSaved())

	s.Update(func(d *domain.PlanDraft) { d.Milestones = []int{70} })
	assert.True(t, s.Dirty())

	other := NewSession(domain.PlanDraft{})
	require.NoError(t, other.Load(ctx, repo, stored.ID))
	assert.False(t, other.Dirty())
	assert.Equal(t, []int{67, 85}, other.Draft().Milestones, "unsaved change is not visible")
}

func TestSession_LoadMissing(t *testing.T) {
	s := NewSession(domain.PlanDraft{})
	err := s.Load(context.Background(), NewMemoryRepository(), NewID())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSession_DraftIsCopy(t *testing.T) {
	s := NewSession(testDraft("A"))
	d := s.Draft()
	d.Plans[0].Name = "changed"
	assert.Equal(t, "ETF", s.Draft().Plans[0].Name)
}

func TestSession_AutoSave(t *testing.T) {
	repo := NewMemoryRepository()
	s := NewSession(testDraft("Auto"))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.AutoSave(ctx, repo, 5*time.Millisecond, nil)
		close(done)
	}()

	require.Eventually(t, func() bool { return !s.Dirty() }, time.Second, 5*time.Millisecond)
	list, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Auto", list[0].Name)

	s.Update(func(d *domain.PlanDraft) { d.Name = "Auto 2" })
	cancel()
	<-done

	assert.False(t, s.Dirty(), "pending change is flushed on shutdown")
	loaded, err := repo.Load(context.Background(), s.Draft().ID)
	require.NoError(t, err)
	assert.Equal(t, "Auto 2", loaded.Name)
}

func TestSession_AutoSaveReportsErrors(t *testing.T) {
	repo := failingRepository{NewMemoryRepository()}
	s := NewSession(testDraft("A"))

	var mu sync.Mutex
	var errs []error
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.AutoSave(ctx, repo, 5*time.Millisecond, func(err error) {
			mu.Lock()
			errs = append(errs, err)
			mu.Unlock()
		})
		close(done)
	}()

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(errs) >= 2
	}, time.Second, 5*time.Millisecond, "failed saves are retried")
	cancel()
	<-done

	assert.True(t, s.Dirty())
	mu.Lock()
	assert.EqualError(t, errs[0], "disk full")
	mu.Unlock()
}

// slowRepository holds every save long enough for callers to overlap
type slowRepository struct {
	*MemoryRepository
}

func (r slowRepository) Save(ctx context.Context, draft domain.PlanDraft) (domain.PlanDraft, error) {
	time.Sleep(20 * time.Millisecond)
	return r.MemoryRepository.Save(ctx, draft)
}

func TestSession_ConcurrentFirstSaveCreatesOneDraft(t *testing.T) {
	repo := slowRepository{NewMemoryRepository()}
	s := NewSession(testDraft("Neu"))

	var wg sync.WaitGroup
	ids := make([]string, 4)
	for i := range ids {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			stored, err := s.Save(context.Background(), repo)
			assert.NoError(t, err)
			ids[i] = stored.ID
		}(i)
	}
	wg.Wait()

	list, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 1)
	for _, id := range ids {
		assert.Equal(t, list[0].ID, id)
	}
	assert.False(t, s.Dirty())
}
