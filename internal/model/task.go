package model

import (
	"encoding/json"
	"strings"
	"time"
)

// Task represents a single chore on the property agenda.
type Task struct {
	ID          string
	Title       string
	Description string
	IsCompleted bool
	Category    Category
	Urgency     Urgency
	Recurrence  Recurrence
	Anchor      Anchor
	CreatedAt   time.Time

	// Version grows with every local mutation; stores keep the highest one.
	Version int64
}

// TaskInput represents data required to create a task.
type TaskInput struct {
	Title          string
	Description    string
	Category       string
	Urgency        string
	Recurrence     string
	SpecificDate   *string
	MonthReference *int
}

// NewTask validates input and builds a pending task.
func NewTask(input TaskInput, id string, createdAt time.Time) (Task, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return Task{}, ErrTitleRequired
	}

	category := Category(normalizeToken(input.Category))
	if !category.Valid() {
		return Task{}, ErrInvalidCategory
	}

	urgency := Urgency(normalizeToken(input.Urgency))
	if urgency == "" {
		urgency = UrgencyMedium
	}
	if !urgency.Valid() {
		return Task{}, ErrInvalidUrgency
	}

	recurrence := Recurrence(normalizeToken(input.Recurrence))
	if !recurrence.Known() {
		return Task{}, ErrInvalidRecurrence
	}

	anchor, err := ParseAnchor(input.SpecificDate, input.MonthReference)
	if err != nil {
		return Task{}, err
	}

	return Task{
		ID:          id,
		Title:       title,
		Description: strings.TrimSpace(input.Description),
		Category:    category,
		Urgency:     urgency,
		Recurrence:  recurrence,
		Anchor:      anchor,
		CreatedAt:   createdAt,
		Version:     1,
	}, nil
}

// Toggled returns a copy with the completion flag flipped and the version bumped.
func (t Task) Toggled() Task {
	t.IsCompleted = !t.IsCompleted
	t.Version++
	return t
}

// IsSeasonal reports whether the task is anchored to a month of the year.
func (t Task) IsSeasonal() bool { return t.Anchor.IsSeasonal() }

// IsDated reports whether the task is anchored to a calendar date.
func (t Task) IsDated() bool { return t.Anchor.IsDated() }

type taskJSON struct {
	ID             string     `json:"id"`
	Title          string     `json:"title"`
	Description    string     `json:"description,omitempty"`
	IsCompleted    bool       `json:"isCompleted"`
	Category       Category   `json:"category"`
	Urgency        Urgency    `json:"urgency"`
	Recurrence     Recurrence `json:"recurrence"`
	SpecificDate   *string    `json:"specificDate,omitempty"`
	MonthReference *int       `json:"monthReference,omitempty"`
	CreatedAt      int64      `json:"createdAt"`
	Version        int64      `json:"version"`
}

// MarshalJSON keeps the field names and the 0-based month of the web client.
func (t Task) MarshalJSON() ([]byte, error) {
	out := taskJSON{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		IsCompleted: t.IsCompleted,
		Category:    t.Category,
		Urgency:     t.Urgency,
		Recurrence:  t.Recurrence,
		CreatedAt:   t.CreatedAt.UnixMilli(),
		Version:     t.Version,
	}
	if d := t.Anchor.SpecificDate(); d != "" {
		out.SpecificDate = &d
	}
	if m, ok := t.Anchor.MonthReference(); ok {
		out.MonthReference = &m
	}
	return json.Marshal(out)
}
