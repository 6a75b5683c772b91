package docstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PGStore keeps one JSONB row per document in the table named by its schema.
type PGStore struct {
	pool   *pgxpool.Pool
	schema Schema
}

func NewPG(pool *pgxpool.Pool, schema Schema) (*PGStore, error) {
	if err := schema.validate(); err != nil {
		return nil, err
	}
	return &PGStore{pool: pool, schema: schema}, nil
}

// EnsureTable creates the backing table if it does not exist yet.
func (s *PGStore) EnsureTable(ctx context.Context) error {
	query := fmt.Sprintf(
		`CREATE TABLE IF NOT EXISTS %s (
			%s TEXT PRIMARY KEY,
			doc JSONB NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`, s.schema.Table, s.schema.KeyColumn)
	if _, err := s.pool.Exec(ctx, query); err != nil {
		return fmt.Errorf("ensure table %s: %w", s.schema.Table, err)
	}
	return nil
}

func (s *PGStore) Load(ctx context.Context, key string) ([]byte, error) {
	query := fmt.Sprintf(`SELECT doc FROM %s WHERE %s = $1`, s.schema.Table, s.schema.KeyColumn)

	var doc []byte
	err := s.pool.QueryRow(ctx, query, key).Scan(&doc)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load %s/%s: %w", s.schema.Table, key, err)
	}
	return doc, nil
}

func (s *PGStore) Scan(ctx context.Context) ([][]byte, error) {
	query := fmt.Sprintf(`SELECT doc FROM %s ORDER BY %s`, s.schema.Table, s.schema.KeyColumn)

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", s.schema.Table, err)
	}
	defer rows.Close()

	var docs [][]byte
	for rows.Next() {
		var doc []byte
		if err := rows.Scan(&doc); err != nil {
			return nil, fmt.Errorf("scan %s: %w", s.schema.Table, err)
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("scan %s: %w", s.schema.Table, err)
	}
	return docs, nil
}

func (s *PGStore) Put(ctx context.Context, key string, doc []byte) error {
	query := fmt.Sprintf(
		`INSERT INTO %s (%s, doc) VALUES ($1, $2)
		 ON CONFLICT (%s) DO UPDATE SET doc = EXCLUDED.doc, updated_at = now()`,
		s.schema.Table, s.schema.KeyColumn, s.schema.KeyColumn)
	if _, err := s.pool.Exec(ctx, query, key, doc); err != nil {
		return fmt.Errorf("put %s/%s: %w", s.schema.Table, key, err)
	}
	return nil
}

func (s *PGStore) Delete(ctx context.Context, key string) (bool, error) {
	query := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1`, s.schema.Table, s.schema.KeyColumn)

	tag, err := s.pool.Exec(ctx, query, key)
	if err != nil {
		return false, fmt.Errorf("delete %s/%s: %w", s.schema.Table, key, err)
	}
	return tag.RowsAffected() > 0, nil
}
