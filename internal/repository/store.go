// Package repository persists tasks and daily logs. Two interchangeable
// backends exist: a hosted Postgres database and a local SQLite file.
package repository

import (
	"context"
	"errors"

	"agenda-rural/internal/model"
)

var (
	// ErrNotFound is returned when the addressed row does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrStale is returned when a stored row already carries a newer version.
	ErrStale = errors.New("stale version")
)

// DefaultLogLimit bounds ListRecentLogs when the caller passes no limit.
const DefaultLogLimit = 30

// Store is the persistence contract shared by the remote and local backends.
type Store interface {
	// Name identifies the backend in logs and the health endpoint.
	Name() string

	List(ctx context.Context) ([]model.Task, error)
	// Insert persists task, assigning id, createdAt and version when missing.
	Insert(ctx context.Context, task model.Task) (model.Task, error)
	// UpdateCompletion applies only when version is newer than the stored one.
	UpdateCompletion(ctx context.Context, id string, completed bool, version int64) error
	Delete(ctx context.Context, id string) error

	// InsertLog appends a journal entry; a zero date means today.
	InsertLog(ctx context.Context, content string, date model.CivilDate) (model.DailyLog, error)
	// ListRecentLogs returns entries newest first.
	ListRecentLogs(ctx context.Context, limit int) ([]model.DailyLog, error)

	Close() error
}
