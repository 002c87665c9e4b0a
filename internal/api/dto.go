package api

import "agenda-rural/internal/model"

// ErrorResponse is the body of every non-2xx reply.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// HealthResponse reports the selected store and collection size.
type HealthResponse struct {
	Status string `json:"status"`
	Store  string `json:"store"`
	Tasks  int    `json:"tasks"`
}

// CreateTaskRequest is the body of POST /api/v1/tasks.
type CreateTaskRequest struct {
	Title          string  `json:"title"`
	Description    string  `json:"description"`
	Category       string  `json:"category"`
	Urgency        string  `json:"urgency"`
	Recurrence     string  `json:"recurrence"`
	SpecificDate   *string `json:"specificDate"`
	MonthReference *int    `json:"monthReference"`
}

func (r CreateTaskRequest) input() model.TaskInput {
	return model.TaskInput{
		Title:          r.Title,
		Description:    r.Description,
		Category:       r.Category,
		Urgency:        r.Urgency,
		Recurrence:     r.Recurrence,
		SpecificDate:   r.SpecificDate,
		MonthReference: r.MonthReference,
	}
}

// TaskListResponse wraps a list of tasks.
type TaskListResponse struct {
	Tasks []model.Task `json:"tasks"`
	Total int          `json:"total"`
}

// CreateLogRequest is the body of POST /api/v1/logs. LogDate is optional.
type CreateLogRequest struct {
	Content string `json:"content"`
	LogDate string `json:"log_date"`
}

// LogListResponse wraps recent log entries.
type LogListResponse struct {
	Logs []model.DailyLog `json:"logs"`
}

// AskRequest is the body of POST /api/v1/assistant.
type AskRequest struct {
	Query string `json:"query"`
}

// AskResponse carries the assistant reply.
type AskResponse struct {
	Answer string `json:"answer"`
}
