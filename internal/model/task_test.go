package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }

func TestNewTask(t *testing.T) {
	created := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		input   TaskInput
		wantErr error
		check   func(t *testing.T, task Task)
	}{
		{
			name: "dated task with defaults",
			input: TaskInput{
				Title:        "  Consertar a cerca ",
				Category:     "maintenance",
				Recurrence:   "none",
				SpecificDate: strPtr("2024-06-15"),
			},
			check: func(t *testing.T, task Task) {
				assert.Equal(t, "Consertar a cerca", task.Title)
				assert.Equal(t, UrgencyMedium, task.Urgency)
				assert.False(t, task.IsCompleted)
				d, ok := task.Anchor.Date()
				require.True(t, ok)
				assert.Equal(t, NewDate(2024, time.June, 15), d)
				assert.Equal(t, int64(1), task.Version)
				assert.Equal(t, created, task.CreatedAt)
			},
		},
		{
			name: "seasonal task keeps 0-based month",
			input: TaskInput{
				Title:          "Plantar milho",
				Category:       "Planting",
				Urgency:        "HIGH",
				Recurrence:     "yearly",
				MonthReference: intPtr(8),
			},
			check: func(t *testing.T, task Task) {
				m, ok := task.Anchor.Month()
				require.True(t, ok)
				assert.Equal(t, time.September, m)
				ref, ok := task.Anchor.MonthReference()
				require.True(t, ok)
				assert.Equal(t, 8, ref)
				assert.Equal(t, UrgencyHigh, task.Urgency)
				assert.Equal(t, CategoryPlanting, task.Category)
			},
		},
		{
			name:    "empty title",
			input:   TaskInput{Title: "  ", Category: "general", Recurrence: "none", SpecificDate: strPtr("2024-01-01")},
			wantErr: ErrTitleRequired,
		},
		{
			name:    "unknown category",
			input:   TaskInput{Title: "x", Category: "garden", Recurrence: "none", SpecificDate: strPtr("2024-01-01")},
			wantErr: ErrInvalidCategory,
		},
		{
			name:    "unknown urgency",
			input:   TaskInput{Title: "x", Category: "general", Urgency: "critical", Recurrence: "none", SpecificDate: strPtr("2024-01-01")},
			wantErr: ErrInvalidUrgency,
		},
		{
			name:    "missing recurrence",
			input:   TaskInput{Title: "x", Category: "general", SpecificDate: strPtr("2024-01-01")},
			wantErr: ErrInvalidRecurrence,
		},
		{
			name:    "both anchors",
			input:   TaskInput{Title: "x", Category: "general", Recurrence: "none", SpecificDate: strPtr("2024-01-01"), MonthReference: intPtr(0)},
			wantErr: ErrAnchorConflict,
		},
		{
			name:    "no anchor",
			input:   TaskInput{Title: "x", Category: "general", Recurrence: "none"},
			wantErr: ErrAnchorRequired,
		},
		{
			name:    "empty date string counts as absent",
			input:   TaskInput{Title: "x", Category: "general", Recurrence: "none", SpecificDate: strPtr("")},
			wantErr: ErrAnchorRequired,
		},
		{
			name:    "malformed date",
			input:   TaskInput{Title: "x", Category: "general", Recurrence: "none", SpecificDate: strPtr("15/06/2024")},
			wantErr: ErrInvalidDate,
		},
		{
			name:    "month out of range",
			input:   TaskInput{Title: "x", Category: "general", Recurrence: "none", MonthReference: intPtr(12)},
			wantErr: ErrInvalidMonth,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			task, err := NewTask(tt.input, "id-1", created)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.True(t, IsValidation(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "id-1", task.ID)
			tt.check(t, task)
		})
	}
}

func TestTask_ToggledTwiceRestoresCompletion(t *testing.T) {
	task, err := NewTask(TaskInput{Title: "Vacinar gado", Category: "animals", Recurrence: "none", SpecificDate: strPtr("2024-03-10")}, "a", time.Now())
	require.NoError(t, err)

	once := task.Toggled()
	twice := once.Toggled()

	assert.True(t, once.IsCompleted)
	assert.Equal(t, task.IsCompleted, twice.IsCompleted)
	assert.Equal(t, task.Anchor, twice.Anchor)
	assert.Greater(t, twice.Version, once.Version)
	assert.False(t, task.IsCompleted, "original must not change")
}

func TestTask_MarshalJSON(t *testing.T) {
	created := time.UnixMilli(1718445600000).UTC()
	seasonal, err := NewTask(TaskInput{Title: "Podar", Category: "planting", Recurrence: "none", MonthReference: intPtr(0)}, "s1", created)
	require.NoError(t, err)

	raw, err := json.Marshal(seasonal)
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(raw, &got))
	assert.Equal(t, "s1", got["id"])
	assert.Equal(t, float64(0), got["monthReference"])
	assert.NotContains(t, got, "specificDate")
	assert.Equal(t, float64(1718445600000), got["createdAt"])
	assert.Equal(t, false, got["isCompleted"])
	assert.Equal(t, "medium", got["urgency"])
}

func TestCivilDate(t *testing.T) {
	d, err := ParseDate("2024-02-28")
	require.NoError(t, err)

	assert.Equal(t, "2024-02-29", d.AddDays(1).String())
	assert.Equal(t, "2024-03-06", d.AddDays(7).String())
	assert.True(t, d.Before(d.AddDays(1)))
	assert.True(t, d.AddDays(1).After(d))
	assert.Equal(t, 0, d.Compare(NewDate(2024, time.February, 28)))
	assert.Equal(t, "Fevereiro", MonthName(d.Month))
	assert.Equal(t, "", MonthName(13))

	_, err = ParseDate("2024-13-01")
	assert.ErrorIs(t, err, ErrInvalidDate)
}

func TestNewDailyLog(t *testing.T) {
	now := time.Date(2024, 6, 15, 21, 30, 0, 0, time.UTC)

	entry, err := NewDailyLog("l1", " Choveu 20mm ", CivilDate{}, now)
	require.NoError(t, err)
	assert.Equal(t, "Choveu 20mm", entry.Content)
	assert.Equal(t, NewDate(2024, time.June, 15), entry.LogDate)

	_, err = NewDailyLog("l2", "   ", CivilDate{}, now)
	assert.ErrorIs(t, err, ErrContentRequired)

	raw, err := json.Marshal(entry)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"log_date":"2024-06-15"`)
}
