package store

import (
	"context"
	"sync"
	"time"

	"github.com/vorsorge/rentenplan/internal/domain"
)

// Session is the caller-owned editing state of one draft. It is safe for concurrent use.
type Session struct {
	saveMu sync.Mutex // one write at a time, so a new draft gets a single ID

	mu        sync.Mutex
	draft     domain.PlanDraft
	version   uint64 // incremented by every Update
	saved     uint64 // version written by the last successful Save
	lastSaved time.Time
}

// NewSession starts editing the given draft. A draft without ID counts as unsaved.
func NewSession(draft domain.PlanDraft) *Session {
	s := &Session{draft: cloneDraft(draft)}
	if draft.ID == "" {
		s.version = 1
	}
	return s
}

// Draft returns a copy of the current draft
func (s *Session) Draft() domain.PlanDraft {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneDraft(s.draft)
}

// Update applies fn to the draft and marks the session dirty
func (s *Session) Update(fn func(*domain.PlanDraft)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(&s.draft)
	s.version++
}

// Dirty reports whether there are changes not yet written
func (s *Session) Dirty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.version != s.saved
}

// LastSaved returns the time of the last successful save, zero if never saved
func (s *Session) LastSaved() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSaved
}

// Save writes the current draft. Changes made while the write is in flight keep the session dirty.
// Concurrent calls are serialized.
func (s *Session) Save(ctx context.Context, repo Repository) (domain.PlanDraft, error) {
	s.saveMu.Lock()
	defer s.saveMu.Unlock()

	s.mu.Lock()
	snapshot := cloneDraft(s.draft)
	version := s.version
	s.mu.Unlock()

	stored, err := repo.Save(ctx, snapshot)
	if err != nil {
		return domain.PlanDraft{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.draft.ID = stored.ID
	s.draft.Name = stored.Name
	s.draft.CreatedAt = stored.CreatedAt
	s.draft.UpdatedAt = stored.UpdatedAt
	if version > s.saved {
		s.saved = version
	}
	s.lastSaved = stored.UpdatedAt
	return stored, nil
}

// Load replaces the session state with the stored draft
func (s *Session) Load(ctx context.Context, repo Repository, id string) error {
	draft, err := repo.Load(ctx, id)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.draft = draft
	s.version++
	s.saved = s.version
	s.lastSaved = draft.UpdatedAt
	return nil
}

// AutoSave saves the session every interval while it is dirty, until ctx ends.
// A last save is attempted on shutdown. Failures are reported to onError and retried on the next tick.
func (s *Session) AutoSave(ctx context.Context, repo Repository, interval time.Duration, onError func(error)) {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	save := func(ctx context.Context) {
		if !s.Dirty() {
			return
		}
		if _, err := s.Save(ctx, repo); err != nil && onError != nil {
			onError(err)
		}
	}

	for {
		select {
		case <-ctx.Done():
			flushCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
			save(flushCtx)
			cancel()
			return
		case <-ticker.C:
			save(ctx)
		}
	}
}
