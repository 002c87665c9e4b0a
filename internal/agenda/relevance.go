package agenda

import (
	"time"

	"agenda-rural/internal/model"
)

// UpcomingWindowDays is the inclusive look-ahead of the upcoming list.
const UpcomingWindowDays = 7

// IsRelevantForMonth reports whether task belongs to the month view.
// Completion does not affect relevance.
func IsRelevantForMonth(task model.Task, year int, month time.Month) bool {
	return MatchesMonth(task, month, year)
}

// IsUpcoming reports whether an incomplete dated task falls within
// [today, today+7] where today is the calendar day of now. Recurrences are
// not expanded: only the literal anchor date counts.
func IsUpcoming(task model.Task, now time.Time) bool {
	if task.IsCompleted {
		return false
	}
	date, ok := task.Anchor.Date()
	if !ok {
		return false
	}
	today := model.DateOf(now)
	return !date.Before(today) && !date.After(today.AddDays(UpcomingWindowDays))
}

// TasksOnDay returns the dated tasks with an occurrence on the given day.
func TasksOnDay(tasks []model.Task, year int, month time.Month, day int) []model.Task {
	var out []model.Task
	for _, task := range tasks {
		if MatchesOccurrence(task, day, month, year) {
			out = append(out, task)
		}
	}
	return out
}
