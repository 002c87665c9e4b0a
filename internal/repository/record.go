package repository

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"agenda-rural/internal/model"
)

// record is the flat column view of a task shared by both backends.
type record struct {
	ID             string
	Title          string
	Description    string
	IsCompleted    bool
	Category       string
	Urgency        string
	Recurrence     string
	SpecificDate   *string
	MonthReference *int
	CreatedAt      time.Time
	Version        int64
}

func recordOf(task model.Task) record {
	rec := record{
		ID:          task.ID,
		Title:       task.Title,
		Description: task.Description,
		IsCompleted: task.IsCompleted,
		Category:    string(task.Category),
		Urgency:     string(task.Urgency),
		Recurrence:  string(task.Recurrence),
		CreatedAt:   task.CreatedAt,
		Version:     task.Version,
	}
	if d := task.Anchor.SpecificDate(); d != "" {
		rec.SpecificDate = &d
	}
	if m, ok := task.Anchor.MonthReference(); ok {
		rec.MonthReference = &m
	}
	return rec
}

// task converts the row back. A malformed anchor still yields a task with a
// zero anchor together with the error, so callers can keep the row visible
// in the plain list while date views skip it.
func (r record) task() (model.Task, error) {
	task := model.Task{
		ID:          r.ID,
		Title:       r.Title,
		Description: r.Description,
		IsCompleted: r.IsCompleted,
		Category:    model.Category(r.Category),
		Urgency:     model.Urgency(r.Urgency),
		Recurrence:  model.Recurrence(r.Recurrence),
		CreatedAt:   r.CreatedAt,
		Version:     r.Version,
	}
	if task.Urgency == "" {
		task.Urgency = model.UrgencyMedium
	}
	if task.Recurrence == "" {
		task.Recurrence = model.RecurrenceNone
	}

	anchor, err := model.ParseAnchor(r.SpecificDate, r.MonthReference)
	if err != nil {
		return task, fmt.Errorf("task %s: %w", r.ID, err)
	}
	task.Anchor = anchor
	return task, nil
}

// prepareInsert fills the fields a store assigns on insert.
func prepareInsert(task model.Task, now time.Time) model.Task {
	if task.ID == "" {
		task.ID = uuid.NewString()
	}
	if task.CreatedAt.IsZero() {
		task.CreatedAt = now
	}
	if task.Version == 0 {
		task.Version = 1
	}
	return task
}

func logLimit(limit int) int {
	if limit <= 0 {
		return DefaultLogLimit
	}
	return limit
}
