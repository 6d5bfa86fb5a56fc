package registry

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	_ "github.com/lib/pq"
	"github.com/modelaudit/trustgate/pkg/meta"
)

const pgSchema = `
CREATE TABLE IF NOT EXISTS artifacts (
    id         TEXT NOT NULL PRIMARY KEY,
    category   TEXT NOT NULL,
    url        TEXT NOT NULL,
    name       TEXT NOT NULL,
    net_score  DOUBLE PRECISION NOT NULL,
    rating     JSONB NOT NULL,
    status     TEXT NOT NULL,
    created_at TIMESTAMPTZ NOT NULL,
    UNIQUE (url, category)
);
CREATE INDEX IF NOT EXISTS artifacts_category_idx ON artifacts (category);
CREATE INDEX IF NOT EXISTS artifacts_status_idx ON artifacts (status);
`

// PostgresStore is the shared-database Store used by the server deployment.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore connects using a lib/pq connection string (or DSN URL)
// and ensures the schema.
func NewPostgresStore(connStr string) (*PostgresStore, error) {
	if connStr == "" {
		return nil, fmt.Errorf("connection string not specified")
	}

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("error opening postgres connection: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("error pinging postgres: %w", err)
	}
	if _, err := db.Exec(pgSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("error creating postgres schema: %w", err)
	}
	slog.Debug("registry schema ensured", "backend", "postgres")

	return &PostgresStore{db: db}, nil
}

func (s *PostgresStore) Save(ctx context.Context, a *Artifact) error {
	var existing string
	err := s.db.QueryRowContext(ctx,
		"SELECT id FROM artifacts WHERE url = $1 AND category = $2",
		a.URL, string(a.Category)).Scan(&existing)
	if err == nil {
		return fmt.Errorf("%w: %s", ErrDuplicate, a.URL)
	}
	if err != sql.ErrNoRows {
		return fmt.Errorf("error checking for duplicate: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO artifacts (id, category, url, name, net_score, rating, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		a.ID, string(a.Category), a.URL, a.Name, a.NetScore, string(a.Rating),
		string(a.Status), a.CreatedAt.UTC())
	if err != nil {
		return fmt.Errorf("error saving artifact %s: %w", a.ID, err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, id string) (*Artifact, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, category, url, name, net_score, rating, status, created_at
		FROM artifacts WHERE id = $1`, id)

	var (
		a        Artifact
		category string
		rating   string
		status   string
	)
	err := row.Scan(&a.ID, &category, &a.URL, &a.Name, &a.NetScore, &rating, &status, &a.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("error scanning artifact row: %w", err)
	}

	a.Category = meta.Category(category)
	a.Rating = []byte(rating)
	a.Status = Status(status)
	return &a, nil
}

func (s *PostgresStore) List(ctx context.Context, q ListQuery) ([]*Artifact, error) {
	query := `SELECT id, category, url, name, net_score, rating, status, created_at
		FROM artifacts WHERE 1=1`
	args := []any{}
	if q.Category != "" {
		args = append(args, string(q.Category))
		query += fmt.Sprintf(" AND category = $%d", len(args))
	}
	if q.Status != "" {
		args = append(args, string(q.Status))
		query += fmt.Sprintf(" AND status = $%d", len(args))
	}
	query += " ORDER BY created_at DESC"
	if q.Limit > 0 {
		args = append(args, q.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing artifacts: %w", err)
	}
	defer rows.Close()

	list := []*Artifact{}
	for rows.Next() {
		var (
			a        Artifact
			category string
			rating   string
			status   string
		)
		if err := rows.Scan(&a.ID, &category, &a.URL, &a.Name, &a.NetScore,
			&rating, &status, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("error scanning artifact row: %w", err)
		}
		a.Category = meta.Category(category)
		a.Rating = []byte(rating)
		a.Status = Status(status)
		list = append(list, &a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating artifacts: %w", err)
	}
	return list, nil
}

func (s *PostgresStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM artifacts WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("error deleting artifact %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("error reading delete result: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}

func (s *PostgresStore) Reset(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM artifacts"); err != nil {
		return fmt.Errorf("error resetting registry: %w", err)
	}
	return nil
}

func (s *PostgresStore) Close() error {
	return s.db.Close()
}
