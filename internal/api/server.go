// Package api exposes the agenda over HTTP.
package api

import (
	"context"
	"errors"
	"io"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"agenda-rural/internal/model"
	"agenda-rural/internal/service"
)

// Deps are the services the HTTP layer calls into.
type Deps struct {
	Agenda  *service.AgendaService
	Journal *service.JournalService
	Advice  *service.AdviceService
	Catalog *service.CatalogService
}

// Server is the Fiber application serving the REST API.
type Server struct {
	app       *fiber.App
	deps      Deps
	log       *logrus.Entry
	accessLog io.WriteCloser
}

func NewServer(deps Deps, log *logrus.Entry) *Server {
	s := &Server{deps: deps, log: log}

	s.app = fiber.New(fiber.Config{
		AppName:               "Agenda Rural",
		DisableStartupMessage: true,
		ErrorHandler:          s.errorHandler,
	})

	s.accessLog = log.WithField("component", "http").WriterLevel(logrus.InfoLevel)
	s.app.Use(recover.New())
	s.app.Use(requestid.New())
	s.app.Use(fiberlogger.New(fiberlogger.Config{
		Format: "${status} - ${latency} ${method} ${path} request_id=${locals:requestid}\n",
		Output: s.accessLog,
	}))
	s.app.Use(cors.New())
	s.app.Use(metricsMiddleware)

	s.setupRoutes()
	return s
}

// App exposes the underlying Fiber app, mainly for tests.
func (s *Server) App() *fiber.App {
	return s.app
}

// Listen blocks serving HTTP on addr.
func (s *Server) Listen(addr string) error {
	s.log.WithField("addr", addr).Info("http server listening")
	return s.app.Listen(addr)
}

// Shutdown stops accepting requests and waits for in-flight ones.
func (s *Server) Shutdown(ctx context.Context) error {
	err := s.app.ShutdownWithContext(ctx)
	_ = s.accessLog.Close()
	return err
}

func (s *Server) setupRoutes() {
	s.app.Get("/health", s.health)
	s.app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	v1 := s.app.Group("/api/v1")
	v1.Get("/catalog", s.catalog)

	tasks := v1.Group("/tasks")
	tasks.Get("/", s.listTasks)
	tasks.Post("/", s.createTask)
	tasks.Get("/:id", s.getTask)
	tasks.Post("/:id/toggle", s.toggleTask)
	tasks.Delete("/:id", s.deleteTask)

	v1.Get("/dashboard", s.dashboard)
	v1.Get("/calendar/:year/:month", s.calendar)
	v1.Get("/calendar/:year/:month/:day", s.calendarDay)

	v1.Get("/logs", s.listLogs)
	v1.Post("/logs", s.createLog)

	v1.Post("/assistant", s.ask)
}

func (s *Server) errorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return c.Status(fe.Code).JSON(ErrorResponse{Error: "http_error", Message: fe.Message})
	}
	if model.IsValidation(err) {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "validation_error", Message: err.Error()})
	}
	if errors.Is(err, service.ErrTaskNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{Error: "not_found", Message: err.Error()})
	}

	s.log.WithError(err).WithFields(logrus.Fields{
		"path":       c.Path(),
		"request_id": requestID(c),
	}).Error("request failed")
	return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "server_error", Message: "Internal Server Error"})
}

func requestID(c *fiber.Ctx) string {
	if id, ok := c.Locals("requestid").(string); ok {
		return id
	}
	return ""
}
