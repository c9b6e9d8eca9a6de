// Package compilelog persists an append-only record of every compile request
// cmd/gscd services, following the CREATE-TABLE-IF-NOT-EXISTS/Prepare/
// ExecContext shape server/dao/sqlite/users.go uses for its own tables.
package compilelog

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// Status is the outcome of a single compile request.
type Status string

const (
	StatusOK    Status = "ok"
	StatusError Status = "error"
)

// Entry is one row of the compile log.
type Entry struct {
	ID          uuid.UUID
	PackageName string
	Status      Status

	// ErrorCode, Line, and Column are only meaningful when Status is
	// StatusError. ErrorCode is the gserr.Code string, "" on success. Line
	// and Column are 0 on success or when the failure has no attributable
	// position.
	ErrorCode string
	Line      int
	Column    int

	CreatedAt time.Time
}

// DB is a sqlite-backed store for compile log entries.
type DB struct {
	db *sql.DB
}

// Open opens (creating if necessary) the sqlite file at path and ensures the
// compiles table exists.
func Open(path string) (*DB, error) {
	sqlDB, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening compile log %q: %w", path, err)
	}

	_, err = sqlDB.Exec(`CREATE TABLE IF NOT EXISTS compiles (
		id TEXT NOT NULL PRIMARY KEY,
		package_name TEXT NOT NULL,
		status TEXT NOT NULL,
		error_code TEXT NOT NULL,
		line INTEGER NOT NULL,
		column INTEGER NOT NULL,
		created_at INTEGER NOT NULL
	);`)
	if err != nil {
		return nil, fmt.Errorf("initializing compile log %q: %w", path, err)
	}

	return &DB{db: sqlDB}, nil
}

func (d *DB) Close() error {
	return d.db.Close()
}

// Record inserts a new entry, generating its ID and CreatedAt.
func (d *DB) Record(ctx context.Context, e Entry) (Entry, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return Entry{}, fmt.Errorf("could not generate compile log id: %w", err)
	}
	e.ID = id
	e.CreatedAt = time.Now()

	stmt, err := d.db.Prepare(`INSERT INTO compiles
		(id, package_name, status, error_code, line, column, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return Entry{}, fmt.Errorf("preparing compile log insert: %w", err)
	}
	defer stmt.Close()

	_, err = stmt.ExecContext(ctx, e.ID.String(), e.PackageName, string(e.Status),
		e.ErrorCode, e.Line, e.Column, e.CreatedAt.Unix())
	if err != nil {
		return Entry{}, fmt.Errorf("recording compile log entry: %w", err)
	}

	return e, nil
}

// GetByID retrieves a single compile log entry by id.
func (d *DB) GetByID(ctx context.Context, id uuid.UUID) (Entry, error) {
	row := d.db.QueryRowContext(ctx, `SELECT id, package_name, status, error_code, line, column, created_at
		FROM compiles WHERE id = ?`, id.String())

	var e Entry
	var idStr string
	var status string
	var createdAtUnix int64
	if err := row.Scan(&idStr, &e.PackageName, &status, &e.ErrorCode, &e.Line, &e.Column, &createdAtUnix); err != nil {
		if err == sql.ErrNoRows {
			return Entry{}, ErrNotFound
		}
		return Entry{}, fmt.Errorf("looking up compile log entry %q: %w", id, err)
	}

	parsedID, err := uuid.Parse(idStr)
	if err != nil {
		return Entry{}, fmt.Errorf("corrupt compile log row: %w", err)
	}
	e.ID = parsedID
	e.Status = Status(status)
	e.CreatedAt = time.Unix(createdAtUnix, 0)

	return e, nil
}

// ErrNotFound is returned by GetByID when no row matches the given id.
var ErrNotFound = fmt.Errorf("compile log entry not found")
