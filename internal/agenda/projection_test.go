package agenda

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agenda-rural/internal/model"
)

func taskIDs(tasks []model.Task) []string {
	ids := make([]string, 0, len(tasks))
	for _, task := range tasks {
		ids = append(ids, task.ID)
	}
	return ids
}

func TestUpcoming_SortedByDate(t *testing.T) {
	now := time.Date(2024, time.June, 10, 12, 0, 0, 0, time.UTC)
	tasks := []model.Task{
		datedTask(t, "late", "2024-06-17", model.RecurrenceNone),
		datedTask(t, "early", "2024-06-10", model.RecurrenceNone),
		datedTask(t, "out", "2024-06-18", model.RecurrenceNone),
		datedTask(t, "mid", "2024-06-12", model.RecurrenceYearly),
		seasonalTask(t, "season", 5, model.RecurrenceNone),
	}

	assert.Equal(t, []string{"early", "mid", "late"}, taskIDs(Upcoming(tasks, now)))
	assert.NotNil(t, Upcoming(nil, now))
}

func TestForMonth_PartitionsByAnchor(t *testing.T) {
	tasks := []model.Task{
		datedTask(t, "dated", "2024-06-03", model.RecurrenceNone),
		seasonalTask(t, "june", 5, model.RecurrenceNone),
		seasonalTask(t, "july", 6, model.RecurrenceNone),
		datedTask(t, "monthly", "2024-01-20", model.RecurrenceMonthly),
		{ID: "broken", Title: "sem âncora", Recurrence: model.RecurrenceNone},
	}

	view := ForMonth(tasks, 2024, time.June)
	assert.Equal(t, []string{"dated", "june", "monthly"}, taskIDs(view.All))
	assert.Equal(t, []string{"june"}, taskIDs(view.Seasonal))
	assert.Equal(t, []string{"dated", "monthly"}, taskIDs(view.Dated))
	assert.Len(t, view.All, len(view.Seasonal)+len(view.Dated))
}

func TestFilter_PendingFirst(t *testing.T) {
	high, err := model.NewTask(model.TaskInput{
		Title: "Vacinar", Category: "animals", Urgency: "high", Recurrence: "none", SpecificDate: strPtr("2024-06-01"),
	}, "high", time.Now())
	require.NoError(t, err)

	tasks := []model.Task{
		datedTask(t, "done", "2024-06-02", model.RecurrenceNone).Toggled(),
		high,
		datedTask(t, "pending", "2024-06-03", model.RecurrenceNone),
	}

	assert.Equal(t, []string{"high", "pending", "done"}, taskIDs(Filter(tasks, TaskFilter{})))
	assert.Equal(t, []string{"high"}, taskIDs(Filter(tasks, TaskFilter{Urgency: model.UrgencyHigh})))
	assert.Equal(t, []string{"pending", "done"}, taskIDs(Filter(tasks, TaskFilter{Category: model.CategoryGeneral})))
	assert.Empty(t, Filter(tasks, TaskFilter{Category: model.CategoryMaintenance}))
}

func TestBuildMonthGrid(t *testing.T) {
	tasks := []model.Task{
		datedTask(t, "fence", "2024-06-15", model.RecurrenceNone),
		datedTask(t, "feed", "2024-05-15", model.RecurrenceMonthly).Toggled(),
		datedTask(t, "shear", "2024-06-03", model.RecurrenceNone).Toggled(),
		seasonalTask(t, "plant", 5, model.RecurrenceYearly),
	}
	today := model.NewDate(2024, time.June, 3)

	grid := BuildMonthGrid(tasks, 2024, time.June, today)

	assert.Equal(t, "Junho", grid.MonthName)
	assert.Equal(t, 6, grid.LeadingBlanks, "June 1st 2024 is a Saturday")
	require.Len(t, grid.Days, 30)
	assert.Equal(t, []string{"plant"}, taskIDs(grid.Seasonal))
	assert.Equal(t, 3, grid.DatedCount)
	assert.Equal(t, []string{"fence"}, taskIDs(grid.PendingDated))

	fifteenth := grid.Days[14]
	assert.Equal(t, 15, fifteenth.Day)
	assert.ElementsMatch(t, []string{"fence", "feed"}, taskIDs(fifteenth.Tasks))
	assert.True(t, fifteenth.HasPending)
	assert.False(t, fifteenth.AllCompleted)

	third := grid.Days[2]
	assert.True(t, third.IsToday)
	assert.True(t, third.AllCompleted)
	assert.False(t, third.HasPending)

	empty := grid.Days[0]
	assert.NotNil(t, empty.Tasks)
	assert.False(t, empty.AllCompleted)
	assert.False(t, empty.HasPending)
}

func TestBuildMonthGrid_PendingDatedLimit(t *testing.T) {
	var tasks []model.Task
	for _, date := range []string{"2024-02-01", "2024-02-02", "2024-02-03", "2024-02-04", "2024-02-05", "2024-02-06", "2024-02-29"} {
		tasks = append(tasks, datedTask(t, date, date, model.RecurrenceNone))
	}

	grid := BuildMonthGrid(tasks, 2024, time.February, model.NewDate(2024, time.March, 1))
	assert.Len(t, grid.Days, 29)
	assert.Len(t, grid.PendingDated, 5)
	assert.Equal(t, 4, grid.LeadingBlanks)
	for _, day := range grid.Days {
		assert.False(t, day.IsToday)
	}
}

func TestBuildDashboard(t *testing.T) {
	now := time.Date(2024, time.June, 10, 9, 0, 0, 0, time.UTC)
	var tasks []model.Task
	for _, date := range []string{"2024-06-11", "2024-06-20", "2024-06-21", "2024-06-22", "2024-06-23"} {
		tasks = append(tasks, datedTask(t, date, date, model.RecurrenceNone))
	}

	dash := BuildDashboard(tasks, now, 2024, time.June)
	assert.Equal(t, []string{"2024-06-11"}, taskIDs(dash.Upcoming))
	assert.Len(t, dash.Month.All, 5)
	assert.Equal(t, []string{"2024-06-11", "2024-06-20", "2024-06-21", "2024-06-22"}, taskIDs(dash.Preview))
}

func strPtr(s string) *string { return &s }
