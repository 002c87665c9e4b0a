package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"agenda-rural/internal/agenda"
	"agenda-rural/internal/model"
	"agenda-rural/internal/repository"
)

var (
	// ErrTaskNotFound is returned when no task matches the id.
	ErrTaskNotFound = errors.New("task not found")
	// ErrAmbiguousID is returned when an id prefix matches several tasks.
	ErrAmbiguousID = errors.New("id prefix matches more than one task")
)

// AgendaService owns the in-memory task collection. Mutations are applied
// locally first and then mirrored to the store; a failed mirror is logged
// and counted but never rolled back.
type AgendaService struct {
	store repository.Store
	log   *logrus.Entry
	loc   *time.Location
	now   func() time.Time

	mu    sync.RWMutex
	tasks []model.Task

	// mirrorMu is held shared by a mutation until its mirror returns, and
	// exclusively by Load, so a reload never overwrites an in-flight change.
	mirrorMu sync.RWMutex
}

func NewAgendaService(store repository.Store, log *logrus.Entry, loc *time.Location) *AgendaService {
	if loc == nil {
		loc = time.Local
	}
	return &AgendaService{store: store, log: log, loc: loc, now: time.Now}
}

// Load replaces the collection with the store contents.
func (s *AgendaService) Load(ctx context.Context) error {
	s.mirrorMu.Lock()
	defer s.mirrorMu.Unlock()

	tasks, err := s.store.List(ctx)
	if err != nil {
		return fmt.Errorf("load tasks: %w", err)
	}

	s.mu.Lock()
	s.tasks = tasks
	s.mu.Unlock()

	tasksLoaded.Set(float64(len(tasks)))
	s.log.WithFields(logrus.Fields{"count": len(tasks), "store": s.store.Name()}).Info("tasks loaded")
	return nil
}

// Now returns the current time in the agenda timezone.
func (s *AgendaService) Now() time.Time {
	return s.now().In(s.loc)
}

// Today returns the current calendar day in the agenda timezone.
func (s *AgendaService) Today() model.CivilDate {
	return model.DateOf(s.Now())
}

// StoreName reports which backend was selected.
func (s *AgendaService) StoreName() string {
	return s.store.Name()
}

// Snapshot returns a copy of the collection, newest first.
func (s *AgendaService) Snapshot() []model.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Task, len(s.tasks))
	copy(out, s.tasks)
	return out
}

// Count returns the number of tasks in memory.
func (s *AgendaService) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.tasks)
}

// Create validates input, adds the task and mirrors it to the store.
func (s *AgendaService) Create(ctx context.Context, input model.TaskInput) (model.Task, error) {
	task, err := model.NewTask(input, uuid.NewString(), s.now())
	if err != nil {
		return model.Task{}, err
	}

	s.mirrorMu.RLock()
	defer s.mirrorMu.RUnlock()

	s.mu.Lock()
	s.tasks = append([]model.Task{task}, s.tasks...)
	s.mu.Unlock()

	if _, err := s.store.Insert(ctx, task); err != nil {
		s.mirrorFailed("create", task.ID, err)
	}

	s.log.WithFields(logrus.Fields{"task_id": task.ID, "title": task.Title}).Info("task created")
	return task, nil
}

// Toggle flips the completion flag of a task.
func (s *AgendaService) Toggle(ctx context.Context, id string) (model.Task, error) {
	s.mirrorMu.RLock()
	defer s.mirrorMu.RUnlock()

	s.mu.Lock()
	idx := s.indexLocked(id)
	if idx < 0 {
		s.mu.Unlock()
		return model.Task{}, ErrTaskNotFound
	}
	task := s.tasks[idx].Toggled()
	s.tasks[idx] = task
	s.mu.Unlock()

	err := s.store.UpdateCompletion(ctx, task.ID, task.IsCompleted, task.Version)
	switch {
	case err == nil:
	case errors.Is(err, repository.ErrStale):
		s.log.WithFields(logrus.Fields{"task_id": task.ID, "version": task.Version}).Debug("stale completion update dropped")
	default:
		s.mirrorFailed("toggle", task.ID, err)
	}
	return task, nil
}

// Delete removes a task and returns what was removed.
func (s *AgendaService) Delete(ctx context.Context, id string) (model.Task, error) {
	s.mirrorMu.RLock()
	defer s.mirrorMu.RUnlock()

	s.mu.Lock()
	idx := s.indexLocked(id)
	if idx < 0 {
		s.mu.Unlock()
		return model.Task{}, ErrTaskNotFound
	}
	task := s.tasks[idx]
	s.tasks = append(s.tasks[:idx:idx], s.tasks[idx+1:]...)
	s.mu.Unlock()

	if err := s.store.Delete(ctx, task.ID); err != nil {
		s.mirrorFailed("delete", task.ID, err)
	}

	s.log.WithField("task_id", task.ID).Info("task deleted")
	return task, nil
}

// Get returns the task with exactly this id.
func (s *AgendaService) Get(id string) (model.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if idx := s.indexLocked(id); idx >= 0 {
		return s.tasks[idx], nil
	}
	return model.Task{}, ErrTaskNotFound
}

// Find resolves a full id or a unique id prefix, as typed in chat commands.
func (s *AgendaService) Find(ref string) (model.Task, error) {
	ref = strings.ToLower(strings.TrimSpace(ref))
	if ref == "" {
		return model.Task{}, ErrTaskNotFound
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if idx := s.indexLocked(ref); idx >= 0 {
		return s.tasks[idx], nil
	}

	var (
		found model.Task
		count int
	)
	for _, task := range s.tasks {
		if strings.HasPrefix(strings.ToLower(task.ID), ref) {
			found = task
			count++
		}
	}
	switch count {
	case 0:
		return model.Task{}, ErrTaskNotFound
	case 1:
		return found, nil
	default:
		return model.Task{}, ErrAmbiguousID
	}
}

// Upcoming lists incomplete dated tasks due within the next seven days.
func (s *AgendaService) Upcoming() []model.Task {
	return agenda.Upcoming(s.Snapshot(), s.Now())
}

// Month returns the tasks relevant for a month.
func (s *AgendaService) Month(year int, month time.Month) agenda.MonthTasks {
	return agenda.ForMonth(s.Snapshot(), year, month)
}

// Calendar returns the grid of a month.
func (s *AgendaService) Calendar(year int, month time.Month) agenda.MonthGrid {
	return agenda.BuildMonthGrid(s.Snapshot(), year, month, s.Today())
}

// Day returns the cell of one calendar day.
func (s *AgendaService) Day(year int, month time.Month, day int) agenda.DayCell {
	return agenda.NewDayCell(s.Snapshot(), year, month, day, s.Today())
}

// Dashboard returns upcoming tasks plus the month preview.
func (s *AgendaService) Dashboard(year int, month time.Month) agenda.Dashboard {
	return agenda.BuildDashboard(s.Snapshot(), s.Now(), year, month)
}

// List returns the filtered full list, pending first.
func (s *AgendaService) List(filter agenda.TaskFilter) []model.Task {
	return agenda.Filter(s.Snapshot(), filter)
}

func (s *AgendaService) indexLocked(id string) int {
	for i, task := range s.tasks {
		if task.ID == id {
			return i
		}
	}
	return -1
}

func (s *AgendaService) mirrorFailed(op, id string, err error) {
	storeMirrorFailures.WithLabelValues(op, s.store.Name()).Inc()
	s.log.WithError(err).WithFields(logrus.Fields{
		"operation": op,
		"task_id":   id,
		"store":     s.store.Name(),
	}).Warn("store mirror failed, keeping local state")
}
