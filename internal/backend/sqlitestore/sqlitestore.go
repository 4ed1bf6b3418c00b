// Package sqlitestore implements service.RecordStore on SQLite.
package sqlitestore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	_ "modernc.org/sqlite"

	"optitask/internal/service"
)

const schema = `
CREATE TABLE IF NOT EXISTS tasks (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	title      TEXT    NOT NULL,
	completed  INTEGER NOT NULL DEFAULT 0,
	created_at TEXT    NOT NULL,
	updated_at TEXT
)`

// Store is a SQLite-backed Record Store.
type Store struct {
	db *sql.DB

	// Now is the clock used for timestamps.
	Now func() time.Time
}

// Open opens (or creates) the database at path and applies the schema.
// Use ":memory:" for a throwaway database.
func Open(ctx context.Context, path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// One connection keeps ":memory:" databases shared and serializes writers.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &Store{db: db, Now: time.Now}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTask(row scanner) (service.Task, error) {
	var (
		id        int64
		t         service.Task
		created   string
		updated   sql.NullString
		completed int
	)
	if err := row.Scan(&id, &t.Title, &completed, &created, &updated); err != nil {
		return service.Task{}, err
	}
	t.ID = service.ID(strconv.FormatInt(id, 10))
	t.Completed = completed != 0

	var err error
	if t.CreatedAt, err = time.Parse(time.RFC3339Nano, created); err != nil {
		return service.Task{}, fmt.Errorf("task %d: bad created_at: %w", id, err)
	}
	if updated.Valid {
		u, err := time.Parse(time.RFC3339Nano, updated.String)
		if err != nil {
			return service.Task{}, fmt.Errorf("task %d: bad updated_at: %w", id, err)
		}
		t.UpdatedAt = &u
	}
	return t, nil
}

// rowID converts a task ID to its primary key. Anything that is not a
// positive integer, speculative IDs included, cannot exist in the table.
func rowID(id service.ID) (int64, error) {
	n, err := strconv.ParseInt(string(id), 10, 64)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("task %s: %w", id, service.ErrNotFound)
	}
	return n, nil
}

func (s *Store) stamp() string {
	return s.Now().UTC().Format(time.RFC3339Nano)
}

// ListTasks implements service.RecordStore.
func (s *Store) ListTasks(ctx context.Context) ([]service.Task, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, title, completed, created_at, updated_at FROM tasks ORDER BY id`)
	if err != nil {
		return nil, service.Unavailable(err)
	}
	defer rows.Close()

	result := []service.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, service.Unavailable(err)
		}
		result = append(result, t)
	}
	if err := rows.Err(); err != nil {
		return nil, service.Unavailable(err)
	}
	return result, nil
}

func (s *Store) get(ctx context.Context, q interface {
	QueryRowContext(context.Context, string, ...any) *sql.Row
}, id int64) (service.Task, error) {
	t, err := scanTask(q.QueryRowContext(ctx,
		`SELECT id, title, completed, created_at, updated_at FROM tasks WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return service.Task{}, fmt.Errorf("task %d: %w", id, service.ErrNotFound)
	}
	if err != nil {
		return service.Task{}, service.Unavailable(err)
	}
	return t, nil
}

// CreateTask implements service.RecordStore.
func (s *Store) CreateTask(ctx context.Context, title string) (service.Task, error) {
	if err := service.ValidateTitle(title); err != nil {
		return service.Task{}, fmt.Errorf("%w: title is required", service.ErrInvalid)
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO tasks (title, completed, created_at) VALUES (?, 0, ?)`, title, s.stamp())
	if err != nil {
		return service.Task{}, service.Unavailable(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return service.Task{}, service.Unavailable(err)
	}
	return s.get(ctx, s.db, id)
}

// mutate runs stmt against one row inside a transaction and returns the row afterwards.
func (s *Store) mutate(ctx context.Context, id service.ID, stmt string, args ...any) (service.Task, error) {
	n, err := rowID(id)
	if err != nil {
		return service.Task{}, err
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return service.Task{}, service.Unavailable(err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, stmt, append(args, n)...)
	if err != nil {
		return service.Task{}, service.Unavailable(err)
	}
	if affected, err := res.RowsAffected(); err != nil {
		return service.Task{}, service.Unavailable(err)
	} else if affected == 0 {
		return service.Task{}, fmt.Errorf("task %s: %w", id, service.ErrNotFound)
	}

	t, err := s.get(ctx, tx, n)
	if err != nil {
		return service.Task{}, err
	}
	if err := tx.Commit(); err != nil {
		return service.Task{}, service.Unavailable(err)
	}
	return t, nil
}

// UpdateTask implements service.RecordStore.
func (s *Store) UpdateTask(ctx context.Context, id service.ID, title string) (service.Task, error) {
	if err := service.ValidateTitle(title); err != nil {
		return service.Task{}, fmt.Errorf("%w: title is required", service.ErrInvalid)
	}
	return s.mutate(ctx, id, `UPDATE tasks SET title = ?, updated_at = ? WHERE id = ?`, title, s.stamp())
}

// ToggleTask implements service.RecordStore.
func (s *Store) ToggleTask(ctx context.Context, id service.ID) (service.Task, error) {
	return s.mutate(ctx, id, `UPDATE tasks SET completed = 1 - completed, updated_at = ? WHERE id = ?`, s.stamp())
}

// DeleteTask implements service.RecordStore.
func (s *Store) DeleteTask(ctx context.Context, id service.ID) error {
	n, err := rowID(id)
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, n)
	if err != nil {
		return service.Unavailable(err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return service.Unavailable(err)
	}
	if affected == 0 {
		return fmt.Errorf("cannot delete task %s: %w", id, service.ErrNotFound)
	}
	return nil
}
