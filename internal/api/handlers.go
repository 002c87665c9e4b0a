package api

import (
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"agenda-rural/internal/agenda"
	"agenda-rural/internal/logger"
	"agenda-rural/internal/model"
	"agenda-rural/internal/repository"
)

// health handles GET /health.
func (s *Server) health(c *fiber.Ctx) error {
	return c.JSON(HealthResponse{
		Status: "healthy",
		Store:  s.deps.Agenda.StoreName(),
		Tasks:  s.deps.Agenda.Count(),
	})
}

// catalog handles GET /api/v1/catalog.
func (s *Server) catalog(c *fiber.Ctx) error {
	return c.JSON(s.deps.Catalog.Catalog())
}

// listTasks handles GET /api/v1/tasks.
func (s *Server) listTasks(c *fiber.Ctx) error {
	filter := agenda.TaskFilter{
		Urgency:  model.Urgency(strings.ToLower(c.Query("urgency"))),
		Category: model.Category(strings.ToLower(c.Query("category"))),
	}
	if filter.Urgency != "" && !filter.Urgency.Valid() {
		return badRequest(c, model.ErrInvalidUrgency.Error())
	}
	if filter.Category != "" && !filter.Category.Valid() {
		return badRequest(c, model.ErrInvalidCategory.Error())
	}

	tasks := s.deps.Agenda.List(filter)
	return c.JSON(TaskListResponse{Tasks: tasks, Total: len(tasks)})
}

// createTask handles POST /api/v1/tasks.
func (s *Server) createTask(c *fiber.Ctx) error {
	var req CreateTaskRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	task, err := s.deps.Agenda.Create(c.UserContext(), req.input())
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(task)
}

// getTask handles GET /api/v1/tasks/:id.
func (s *Server) getTask(c *fiber.Ctx) error {
	task, err := s.deps.Agenda.Get(c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(task)
}

// toggleTask handles POST /api/v1/tasks/:id/toggle.
func (s *Server) toggleTask(c *fiber.Ctx) error {
	task, err := s.deps.Agenda.Toggle(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(task)
}

// deleteTask handles DELETE /api/v1/tasks/:id.
func (s *Server) deleteTask(c *fiber.Ctx) error {
	if _, err := s.deps.Agenda.Delete(c.UserContext(), c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// dashboard handles GET /api/v1/dashboard?year=&month=.
func (s *Server) dashboard(c *fiber.Ctx) error {
	now := s.deps.Agenda.Now()
	year, err := intParam(c.Query("year"), now.Year(), 1, 9999)
	if err != nil {
		return badRequest(c, "year: "+err.Error())
	}
	month, err := intParam(c.Query("month"), int(now.Month()), 1, 12)
	if err != nil {
		return badRequest(c, "month: "+err.Error())
	}
	return c.JSON(s.deps.Agenda.Dashboard(year, time.Month(month)))
}

// calendar handles GET /api/v1/calendar/:year/:month.
func (s *Server) calendar(c *fiber.Ctx) error {
	year, month, err := yearMonthParams(c)
	if err != nil {
		return badRequest(c, err.Error())
	}
	return c.JSON(s.deps.Agenda.Calendar(year, month))
}

// calendarDay handles GET /api/v1/calendar/:year/:month/:day.
func (s *Server) calendarDay(c *fiber.Ctx) error {
	year, month, err := yearMonthParams(c)
	if err != nil {
		return badRequest(c, err.Error())
	}
	last := time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
	day, err := intParam(c.Params("day"), 0, 1, last)
	if err != nil {
		return badRequest(c, "day: "+err.Error())
	}
	return c.JSON(s.deps.Agenda.Day(year, month, day))
}

// listLogs handles GET /api/v1/logs?limit=.
func (s *Server) listLogs(c *fiber.Ctx) error {
	limit, err := intParam(c.Query("limit"), repository.DefaultLogLimit, 1, 500)
	if err != nil {
		return badRequest(c, "limit: "+err.Error())
	}
	logs, err := s.deps.Journal.Recent(c.UserContext(), limit)
	if err != nil {
		return err
	}
	return c.JSON(LogListResponse{Logs: logs})
}

// createLog handles POST /api/v1/logs.
func (s *Server) createLog(c *fiber.Ctx) error {
	var req CreateLogRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	var date model.CivilDate
	if req.LogDate != "" {
		parsed, err := model.ParseDate(req.LogDate)
		if err != nil {
			return err
		}
		date = parsed
	}

	entry, err := s.deps.Journal.Add(c.UserContext(), req.Content, date)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(entry)
}

// ask handles POST /api/v1/assistant.
func (s *Server) ask(c *fiber.Ctx) error {
	var req AskRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	logger.WithRequestID(s.log, requestID(c)).Debug("assistant question received")
	return c.JSON(AskResponse{Answer: s.deps.Advice.Ask(c.UserContext(), req.Query)})
}

func badRequest(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
		Error:   "invalid_request",
		Message: message,
	})
}

// yearMonthParams reads :year and :month (1-12) from the path.
func yearMonthParams(c *fiber.Ctx) (int, time.Month, error) {
	year, err := intParam(c.Params("year"), 0, 1, 9999)
	if err != nil {
		return 0, 0, fiber.NewError(fiber.StatusBadRequest, "year: "+err.Error())
	}
	month, err := intParam(c.Params("month"), 0, 1, 12)
	if err != nil {
		return 0, 0, fiber.NewError(fiber.StatusBadRequest, "month: "+err.Error())
	}
	return year, time.Month(month), nil
}

// intParam parses raw within [lo, hi]; an empty raw yields fallback.
func intParam(raw string, fallback, lo, hi int) (int, error) {
	if raw == "" {
		if fallback == 0 {
			return 0, fiber.NewError(fiber.StatusBadRequest, "is required")
		}
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fiber.NewError(fiber.StatusBadRequest, "must be a number")
	}
	if n < lo || n > hi {
		return 0, fiber.NewError(fiber.StatusBadRequest, "must be between "+strconv.Itoa(lo)+" and "+strconv.Itoa(hi))
	}
	return n, nil
}
