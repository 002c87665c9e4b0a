package model

import (
	"strings"
	"time"
)

// DailyLog is an append-only journal entry about the property.
type DailyLog struct {
	ID        string    `json:"id"`
	LogDate   CivilDate `json:"log_date"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// NewDailyLog validates content; a zero date means "today" in now's location.
func NewDailyLog(id, content string, date CivilDate, now time.Time) (DailyLog, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return DailyLog{}, ErrContentRequired
	}
	if date.IsZero() {
		date = DateOf(now)
	}
	return DailyLog{ID: id, LogDate: date, Content: content, CreatedAt: now}, nil
}
