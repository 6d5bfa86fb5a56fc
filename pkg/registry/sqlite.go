package registry

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"log/slog"
	"time"

	"github.com/modelaudit/trustgate/pkg/meta"
	_ "modernc.org/sqlite"
)

// DataFileName is the default registry database file name.
const DataFileName = "trustgate.db"

//go:embed sql/*
var ddl embed.FS

// SQLiteStore is the single-node file-backed Store.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (creating if needed) the registry database at path
// and ensures the schema.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if path == "" {
		return nil, fmt.Errorf("database path not specified")
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("error opening database %s: %w", path, err)
	}

	b, err := ddl.ReadFile("sql/ddl.sql")
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("error reading schema: %w", err)
	}
	if _, err := db.Exec(string(b)); err != nil {
		db.Close()
		return nil, fmt.Errorf("error creating schema in %s: %w", path, err)
	}
	slog.Debug("registry schema ensured", "path", path)

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Save(ctx context.Context, a *Artifact) error {
	var existing string
	err := s.db.QueryRowContext(ctx,
		"SELECT id FROM artifacts WHERE url = ? AND category = ?",
		a.URL, string(a.Category)).Scan(&existing)
	if err == nil {
		return fmt.Errorf("%w: %s", ErrDuplicate, a.URL)
	}
	if err != sql.ErrNoRows {
		return fmt.Errorf("error checking for duplicate: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO artifacts (id, category, url, name, net_score, rating, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, string(a.Category), a.URL, a.Name, a.NetScore, string(a.Rating),
		string(a.Status), a.CreatedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("error saving artifact %s: %w", a.ID, err)
	}
	return nil
}

func (s *SQLiteStore) Get(ctx context.Context, id string) (*Artifact, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, category, url, name, net_score, rating, status, created_at
		FROM artifacts WHERE id = ?`, id)
	return scanArtifact(row, id)
}

func (s *SQLiteStore) List(ctx context.Context, q ListQuery) ([]*Artifact, error) {
	query := `SELECT id, category, url, name, net_score, rating, status, created_at
		FROM artifacts WHERE 1=1`
	args := []any{}
	if q.Category != "" {
		query += " AND category = ?"
		args = append(args, string(q.Category))
	}
	if q.Status != "" {
		query += " AND status = ?"
		args = append(args, string(q.Status))
	}
	query += " ORDER BY created_at DESC"
	if q.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, q.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing artifacts: %w", err)
	}
	defer rows.Close()

	list := []*Artifact{}
	for rows.Next() {
		a, err := scanArtifactRow(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating artifacts: %w", err)
	}
	return list, nil
}

func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM artifacts WHERE id = ?", id)
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

func (s *SQLiteStore) Reset(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM artifacts"); err != nil {
		return fmt.Errorf("error resetting registry: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanArtifact(row *sql.Row, id string) (*Artifact, error) {
	a, err := scanArtifactRow(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return a, err
}

func scanArtifactRow(row rowScanner) (*Artifact, error) {
	var (
		a        Artifact
		category string
		rating   string
		status   string
		created  string
	)
	err := row.Scan(&a.ID, &category, &a.URL, &a.Name, &a.NetScore, &rating, &status, &created)
	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("error scanning artifact row: %w", err)
	}

	a.Category = meta.Category(category)
	a.Rating = []byte(rating)
	a.Status = Status(status)
	if t, perr := time.Parse(time.RFC3339Nano, created); perr == nil {
		a.CreatedAt = t
	}
	return &a, nil
}
