package store

import (
	"context"
	"sync"
	"time"

	"github.com/vorsorge/rentenplan/internal/domain"
)

// MemoryRepository keeps drafts in process memory. Used by tests and the default server setup.
type MemoryRepository struct {
	mu     sync.RWMutex
	drafts map[string]domain.PlanDraft
	now    func() time.Time
}

// NewMemoryRepository creates an empty in-memory repository
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		drafts: make(map[string]domain.PlanDraft),
		now:    time.Now,
	}
}

func (m *MemoryRepository) Save(ctx context.Context, draft domain.PlanDraft) (domain.PlanDraft, error) {
	if err := ctx.Err(); err != nil {
		return domain.PlanDraft{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if existing, ok := m.drafts[draft.ID]; ok && draft.CreatedAt.IsZero() {
		draft.CreatedAt = existing.CreatedAt
	}
	draft, err := prepare(draft, m.now().UTC())
	if err != nil {
		return domain.PlanDraft{}, err
	}
	m.drafts[draft.ID] = cloneDraft(draft)
	return draft, nil
}

func (m *MemoryRepository) Load(ctx context.Context, id string) (domain.PlanDraft, error) {
	if err := ctx.Err(); err != nil {
		return domain.PlanDraft{}, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	draft, ok := m.drafts[id]
	if !ok {
		return domain.PlanDraft{}, ErrNotFound
	}
	return cloneDraft(draft), nil
}

func (m *MemoryRepository) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.drafts[id]; !ok {
		return ErrNotFound
	}
	delete(m.drafts, id)
	return nil
}

func (m *MemoryRepository) List(ctx context.Context) ([]domain.PlanDraft, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	out := make([]domain.PlanDraft, 0, len(m.drafts))
	for _, d := range m.drafts {
		out = append(out, cloneDraft(d))
	}
	m.mu.RUnlock()

	sortByUpdated(out)
	return out, nil
}

func (m *MemoryRepository) Close() error { return nil }

// cloneDraft copies the slices so callers cannot modify stored drafts
func cloneDraft(d domain.PlanDraft) domain.PlanDraft {
	out := d
	out.Plans = make([]domain.SimulationParams, len(d.Plans))
	for i, p := range d.Plans {
		p.MilestoneAges = append([]int(nil), p.MilestoneAges...)
		if p.ExistingPension != nil {
			ep := *p.ExistingPension
			p.ExistingPension = &ep
		}
		out.Plans[i] = p
	}
	out.Milestones = append([]int(nil), d.Milestones...)
	return out
}
