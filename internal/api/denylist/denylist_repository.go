package denylist

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var _ Repository = (*RepositoryImpl)(nil)

// Repository persists reported place names.
type Repository interface {
	LoadAll(ctx context.Context) ([]string, error)
	Add(ctx context.Context, name string) error
}

// DB is the subset of pgxpool.Pool the repository needs.
type DB interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

type RepositoryImpl struct {
	logger *slog.Logger
	db     DB
}

func NewRepository(db DB, logger *slog.Logger) *RepositoryImpl {
	return &RepositoryImpl{
		logger: logger,
		db:     db,
	}
}

// LoadAll returns every denylisted name, lowercased.
func (r *RepositoryImpl) LoadAll(ctx context.Context) ([]string, error) {
	rows, err := r.db.Query(ctx, `SELECT name FROM poi_denylist`)
	if err != nil {
		return nil, fmt.Errorf("failed to load denylist: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan denylist row: %w", err)
		}
		names = append(names, strings.ToLower(name))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed iterating denylist rows: %w", err)
	}
	return names, nil
}

// Add stores a lowercased name. Inserting an existing name is a no-op.
func (r *RepositoryImpl) Add(ctx context.Context, name string) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO poi_denylist (name) VALUES ($1) ON CONFLICT (name) DO NOTHING`,
		strings.ToLower(strings.TrimSpace(name)),
	)
	if err != nil {
		return fmt.Errorf("failed to add denylist entry: %w", err)
	}
	return nil
}
