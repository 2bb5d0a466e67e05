package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	json "github.com/goccy/go-json"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/vorsorge/rentenplan/internal/domain"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS plan_drafts (
	id         UUID PRIMARY KEY,
	name       TEXT NOT NULL,
	data       JSONB NOT NULL,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
)`

// PostgresRepository stores drafts as JSONB rows
type PostgresRepository struct {
	pool *pgxpool.Pool
	now  func() time.Time
}

// NewPostgresRepository creates a connection pool for the given DATABASE_URL.
// The pool connects lazily; call EnsureSchema to verify the connection.
func NewPostgresRepository(ctx context.Context, databaseURL string) (*PostgresRepository, error) {
	if databaseURL == "" {
		return nil, fmt.Errorf("database url is required")
	}
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create database pool: %w", err)
	}
	return &PostgresRepository{pool: pool, now: time.Now}, nil
}

// EnsureSchema creates the drafts table if needed
func (p *PostgresRepository) EnsureSchema(ctx context.Context) error {
	if _, err := p.pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

func (p *PostgresRepository) Save(ctx context.Context, draft domain.PlanDraft) (domain.PlanDraft, error) {
	draft, err := prepare(draft, p.now().UTC())
	if err != nil {
		return domain.PlanDraft{}, err
	}
	data, err := json.Marshal(draft)
	if err != nil {
		return domain.PlanDraft{}, fmt.Errorf("failed to encode draft: %w", err)
	}

	// created_at of an existing row wins
	query := `
		INSERT INTO plan_drafts (id, name, data, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id)
		DO UPDATE SET
			name = EXCLUDED.name,
			data = EXCLUDED.data,
			updated_at = EXCLUDED.updated_at
		RETURNING created_at
	`
	var created time.Time
	err = p.pool.QueryRow(ctx, query, draft.ID, draft.Name, data, draft.CreatedAt, draft.UpdatedAt).Scan(&created)
	if err != nil {
		return domain.PlanDraft{}, fmt.Errorf("failed to save draft %s: %w", draft.ID, err)
	}
	draft.CreatedAt = created.UTC()
	return draft, nil
}

func (p *PostgresRepository) Load(ctx context.Context, id string) (domain.PlanDraft, error) {
	if !ValidID(id) {
		return domain.PlanDraft{}, ErrNotFound
	}
	var data []byte
	var created, updated time.Time
	err := p.pool.QueryRow(ctx, `SELECT data, created_at, updated_at FROM plan_drafts WHERE id = $1`, id).
		Scan(&data, &created, &updated)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.PlanDraft{}, ErrNotFound
	}
	if err != nil {
		return domain.PlanDraft{}, fmt.Errorf("failed to load draft %s: %w", id, err)
	}
	return decodeRow(data, created, updated)
}

func (p *PostgresRepository) Delete(ctx context.Context, id string) error {
	if !ValidID(id) {
		return ErrNotFound
	}
	tag, err := p.pool.Exec(ctx, `DELETE FROM plan_drafts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete draft %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (p *PostgresRepository) List(ctx context.Context) ([]domain.PlanDraft, error) {
	rows, err := p.pool.Query(ctx, `SELECT data, created_at, updated_at FROM plan_drafts ORDER BY updated_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list drafts: %w", err)
	}
	defer rows.Close()

	drafts := []domain.PlanDraft{}
	for rows.Next() {
		var data []byte
		var created, updated time.Time
		if err := rows.Scan(&data, &created, &updated); err != nil {
			return nil, fmt.Errorf("failed to scan draft: %w", err)
		}
		draft, err := decodeRow(data, created, updated)
		if err != nil {
			return nil, err
		}
		drafts = append(drafts, draft)
	}
	return drafts, rows.Err()
}

func (p *PostgresRepository) Close() error {
	p.pool.Close()
	return nil
}

func decodeRow(data []byte, created, updated time.Time) (domain.PlanDraft, error) {
	var draft domain.PlanDraft
	if err := json.Unmarshal(data, &draft); err != nil {
		return domain.PlanDraft{}, fmt.Errorf("failed to decode draft: %w", err)
	}
	draft.CreatedAt = created.UTC()
	draft.UpdatedAt = updated.UTC()
	return draft, nil
}
