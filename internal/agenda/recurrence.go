// Package agenda decides which chores belong to a given day or month and
// derives the dashboard, calendar and list views from a task collection.
//
// Everything here is a pure function of its arguments: callers pass a snapshot
// of the collection and get fresh slices back.
package agenda

import (
	"time"

	"agenda-rural/internal/model"
)

// rule resolves occurrences of a dated task for one recurrence kind: onDay
// checks a single day, inMonth checks whether any occurrence falls in a month.
type rule struct {
	onDay   func(anchor, target model.CivilDate) bool
	inMonth func(anchor model.CivilDate, year int, month time.Month) bool
}

var rules = map[model.Recurrence]rule{
	model.RecurrenceNone: {
		onDay: func(anchor, target model.CivilDate) bool {
			return anchor == target
		},
		inMonth: func(anchor model.CivilDate, year int, month time.Month) bool {
			return anchor.Year == year && anchor.Month == month
		},
	},
	model.RecurrenceMonthly: {
		onDay: func(anchor, target model.CivilDate) bool {
			return target.Day == anchor.Day && !monthBefore(target.Year, target.Month, anchor.Year, anchor.Month)
		},
		inMonth: func(anchor model.CivilDate, year int, month time.Month) bool {
			return !monthBefore(year, month, anchor.Year, anchor.Month)
		},
	},
	model.RecurrenceYearly: {
		onDay: func(anchor, target model.CivilDate) bool {
			return target.Day == anchor.Day && target.Month == anchor.Month
		},
		inMonth: func(anchor model.CivilDate, _ int, month time.Month) bool {
			return anchor.Month == month
		},
	},
}

// ruleFor returns the matching rule; kinds without one behave like "none".
func ruleFor(r model.Recurrence) rule {
	if found, ok := rules[r]; ok {
		return found
	}
	return rules[model.RecurrenceNone]
}

// MatchesOccurrence reports whether a dated task has an occurrence on the
// given day. Seasonal and unanchored tasks carry no day and never match.
func MatchesOccurrence(task model.Task, day int, month time.Month, year int) bool {
	anchor, ok := task.Anchor.Date()
	if !ok {
		return false
	}
	target := model.CivilDate{Year: year, Month: month, Day: day}
	return ruleFor(task.Recurrence).onDay(anchor, target)
}

// MatchesMonth is the month granularity form of MatchesOccurrence. Seasonal
// tasks match their reference month in every year.
func MatchesMonth(task model.Task, month time.Month, year int) bool {
	if ref, ok := task.Anchor.Month(); ok {
		return ref == month
	}
	anchor, ok := task.Anchor.Date()
	if !ok {
		return false
	}
	return ruleFor(task.Recurrence).inMonth(anchor, year, month)
}

// HasRule reports whether r has its own matching rule.
func HasRule(r model.Recurrence) bool {
	_, ok := rules[r]
	return ok
}

func monthBefore(y1 int, m1 time.Month, y2 int, m2 time.Month) bool {
	if y1 != y2 {
		return y1 < y2
	}
	return m1 < m2
}
