// Package store persists plan drafts: the user's inputs, never simulation results.
package store

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/vorsorge/rentenplan/internal/config"
	"github.com/vorsorge/rentenplan/internal/domain"
)

// ErrNotFound is returned when a draft does not exist (or has expired)
var ErrNotFound = errors.New("draft not found")

// Repository stores plan drafts
type Repository interface {
	// Save inserts or replaces a draft and returns the stored version with ID and timestamps set
	Save(ctx context.Context, draft domain.PlanDraft) (domain.PlanDraft, error)
	Load(ctx context.Context, id string) (domain.PlanDraft, error)
	Delete(ctx context.Context, id string) error
	// List returns all drafts, most recently updated first
	List(ctx context.Context) ([]domain.PlanDraft, error)
	Close() error
}

// NewID returns a fresh draft ID
func NewID() string {
	return uuid.New().String()
}

// ValidID reports whether id has the form NewID produces
func ValidID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

// prepare fills ID, name and timestamps before a draft is written
func prepare(draft domain.PlanDraft, now time.Time) (domain.PlanDraft, error) {
	if draft.ID == "" {
		draft.ID = NewID()
	} else if !ValidID(draft.ID) {
		return draft, domain.NewValidationError("id", "invalid draft id %q", draft.ID)
	}
	draft.Name = strings.TrimSpace(draft.Name)
	if draft.Name == "" {
		draft.Name = draft.Profile.Name
	}
	if draft.Name == "" {
		draft.Name = "Entwurf " + now.Format("2006-01-02 15:04")
	}
	if draft.CreatedAt.IsZero() {
		draft.CreatedAt = now
	}
	draft.UpdatedAt = now
	return draft, nil
}

func sortByUpdated(drafts []domain.PlanDraft) {
	sort.SliceStable(drafts, func(i, j int) bool {
		if drafts[i].UpdatedAt.Equal(drafts[j].UpdatedAt) {
			return drafts[i].ID < drafts[j].ID
		}
		return drafts[i].UpdatedAt.After(drafts[j].UpdatedAt)
	})
}

// New opens the repository selected by the server configuration
func New(ctx context.Context, cfg *config.ServerConfig) (Repository, error) {
	switch cfg.StoreBackend {
	case "", config.StoreMemory:
		return NewMemoryRepository(), nil
	case config.StoreRedis:
		return NewRedisRepository(cfg.RedisURL, cfg.DraftTTL)
	case config.StorePostgres:
		repo, err := NewPostgresRepository(ctx, cfg.PostgresURL)
		if err != nil {
			return nil, err
		}
		if err := repo.EnsureSchema(ctx); err != nil {
			repo.Close()
			return nil, err
		}
		return repo, nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
	}
}
