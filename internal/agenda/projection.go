package agenda

import (
	"sort"
	"time"

	"agenda-rural/internal/model"
)

const (
	dashboardPreviewSize = 4
	pendingDatedLimit    = 5
)

// Upcoming returns the upcoming tasks ordered by anchor date.
func Upcoming(tasks []model.Task, now time.Time) []model.Task {
	out := make([]model.Task, 0)
	for _, task := range tasks {
		if IsUpcoming(task, now) {
			out = append(out, task)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Anchor.SpecificDate() < out[j].Anchor.SpecificDate()
	})
	return out
}

// MonthTasks is the month view split by anchor kind.
type MonthTasks struct {
	Year     int          `json:"year"`
	Month    time.Month   `json:"month"`
	All      []model.Task `json:"all"`
	Seasonal []model.Task `json:"seasonal"`
	Dated    []model.Task `json:"dated"`
}

// ForMonth collects the tasks relevant for the month and partitions them.
func ForMonth(tasks []model.Task, year int, month time.Month) MonthTasks {
	view := MonthTasks{
		Year:     year,
		Month:    month,
		All:      make([]model.Task, 0),
		Seasonal: make([]model.Task, 0),
		Dated:    make([]model.Task, 0),
	}
	for _, task := range tasks {
		if !IsRelevantForMonth(task, year, month) {
			continue
		}
		view.All = append(view.All, task)
		if task.IsSeasonal() {
			view.Seasonal = append(view.Seasonal, task)
		} else {
			view.Dated = append(view.Dated, task)
		}
	}
	return view
}

// TaskFilter narrows the full list. Zero fields mean "any".
type TaskFilter struct {
	Urgency  model.Urgency
	Category model.Category
}

// Filter returns the tasks matching f, pending ones first.
func Filter(tasks []model.Task, f TaskFilter) []model.Task {
	out := make([]model.Task, 0, len(tasks))
	for _, task := range tasks {
		if f.Urgency != "" && task.Urgency != f.Urgency {
			continue
		}
		if f.Category != "" && task.Category != f.Category {
			continue
		}
		out = append(out, task)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return !out[i].IsCompleted && out[j].IsCompleted
	})
	return out
}

// DayCell is one day of the calendar grid.
type DayCell struct {
	Day          int          `json:"day"`
	Tasks        []model.Task `json:"tasks"`
	HasPending   bool         `json:"hasPending"`
	AllCompleted bool         `json:"allCompleted"`
	IsToday      bool         `json:"isToday"`
}

// NewDayCell looks up the tasks of one day and computes the dot indicators.
func NewDayCell(tasks []model.Task, year int, month time.Month, day int, today model.CivilDate) DayCell {
	cell := DayCell{
		Day:     day,
		Tasks:   TasksOnDay(tasks, year, month, day),
		IsToday: today == model.CivilDate{Year: year, Month: month, Day: day},
	}
	if cell.Tasks == nil {
		cell.Tasks = make([]model.Task, 0)
	}
	cell.AllCompleted = len(cell.Tasks) > 0
	for _, task := range cell.Tasks {
		if task.IsCompleted {
			continue
		}
		cell.HasPending = true
		cell.AllCompleted = false
	}
	return cell
}

// MonthGrid is the calendar page of one month.
type MonthGrid struct {
	Year          int          `json:"year"`
	Month         time.Month   `json:"month"`
	MonthName     string       `json:"monthName"`
	LeadingBlanks int          `json:"leadingBlanks"`
	Days          []DayCell    `json:"days"`
	Seasonal      []model.Task `json:"seasonal"`
	PendingDated  []model.Task `json:"pendingDated"`
	DatedCount    int          `json:"datedCount"`
}

// BuildMonthGrid lays out the month starting on Sunday.
func BuildMonthGrid(tasks []model.Task, year int, month time.Month, today model.CivilDate) MonthGrid {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	daysInMonth := first.AddDate(0, 1, -1).Day()
	view := ForMonth(tasks, year, month)

	grid := MonthGrid{
		Year:          year,
		Month:         month,
		MonthName:     model.MonthName(month),
		LeadingBlanks: int(first.Weekday()),
		Days:          make([]DayCell, 0, daysInMonth),
		Seasonal:      view.Seasonal,
		PendingDated:  make([]model.Task, 0, pendingDatedLimit),
		DatedCount:    len(view.Dated),
	}
	for day := 1; day <= daysInMonth; day++ {
		grid.Days = append(grid.Days, NewDayCell(view.Dated, year, month, day, today))
	}
	for _, task := range view.Dated {
		if task.IsCompleted {
			continue
		}
		if len(grid.PendingDated) == pendingDatedLimit {
			break
		}
		grid.PendingDated = append(grid.PendingDated, task)
	}
	return grid
}

// Dashboard is the landing summary: the next seven days plus the month.
type Dashboard struct {
	Upcoming []model.Task `json:"upcoming"`
	Month    MonthTasks   `json:"month"`
	Preview  []model.Task `json:"preview"`
}

// BuildDashboard combines the upcoming list with the month of year/month.
func BuildDashboard(tasks []model.Task, now time.Time, year int, month time.Month) Dashboard {
	view := ForMonth(tasks, year, month)
	preview := view.All
	if len(preview) > dashboardPreviewSize {
		preview = preview[:dashboardPreviewSize]
	}
	return Dashboard{
		Upcoming: Upcoming(tasks, now),
		Month:    view,
		Preview:  preview,
	}
}
