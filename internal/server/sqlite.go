package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"

	"tasksync/internal/service"
)

const schema = `CREATE TABLE IF NOT EXISTS resource (
	id      INTEGER PRIMARY KEY CHECK (id = 1),
	data    TEXT,
	stored  INTEGER NOT NULL DEFAULT 1,
	version INTEGER NOT NULL
)`

// SQLiteStore keeps the resource in a single-row SQLite table.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens (or creates) the database at path.
// ":memory:" gives a private in-memory database.
func OpenSQLite(path string) (*SQLiteStore, error) {
	connStr := ":memory:"
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
		connStr = fmt.Sprintf("file:%s", path)
	}

	db, err := sql.Open("sqlite3", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// One connection serializes writes and keeps :memory: a single database.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout=5000"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Get(ctx context.Context) (State, error) {
	return get(ctx, s.db)
}

type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func get(ctx context.Context, q queryer) (State, error) {
	var (
		data    sql.NullString
		version int
	)
	err := q.QueryRowContext(ctx, `SELECT data, version FROM resource WHERE id = 1`).Scan(&data, &version)
	if errors.Is(err, sql.ErrNoRows) {
		return State{}, nil
	}
	if err != nil {
		return State{}, fmt.Errorf("failed to read resource: %w", err)
	}
	st := State{Version: version}
	if data.Valid {
		st.Data = &data.String
	}
	return st, nil
}

func (s *SQLiteStore) Put(ctx context.Context, data *string, expected int) (State, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return State{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	cur, err := get(ctx, tx)
	if err != nil {
		return State{}, err
	}
	if expected != service.Overwrite && expected != cur.Version {
		return cur, ErrStale
	}

	next := State{Data: data, Version: cur.Version + 1}
	var value sql.NullString
	if data != nil {
		value = sql.NullString{String: *data, Valid: true}
	}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO resource (id, data, stored, version) VALUES (1, ?, 1, ?)
		 ON CONFLICT(id) DO UPDATE SET data = excluded.data, stored = 1, version = excluded.version`,
		value, next.Version,
	)
	if err != nil {
		return State{}, fmt.Errorf("failed to write resource: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return State{}, fmt.Errorf("failed to commit: %w", err)
	}
	return next, nil
}

func (s *SQLiteStore) Delete(ctx context.Context) (State, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return State{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`UPDATE resource SET data = NULL, stored = 0, version = version + 1 WHERE id = 1 AND stored = 1`)
	if err != nil {
		return State{}, fmt.Errorf("failed to delete resource: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return State{}, fmt.Errorf("failed to delete resource: %w", err)
	}
	cur, err := get(ctx, tx)
	if err != nil {
		return State{}, err
	}
	if n == 0 {
		return cur, ErrNotFound
	}
	if err := tx.Commit(); err != nil {
		return State{}, fmt.Errorf("failed to commit: %w", err)
	}
	return cur, nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
