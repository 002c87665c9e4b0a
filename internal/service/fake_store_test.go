package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"agenda-rural/internal/model"
	"agenda-rural/internal/repository"
)

var errStoreDown = errors.New("store down")

// fakeStore is an in-memory repository.Store with switchable failures.
type fakeStore struct {
	mu      sync.Mutex
	tasks   map[string]model.Task
	logs    []model.DailyLog
	fail    bool
	stale   bool
	updates []int64

	// mirrorStarted and mirrorRelease, when set, hold Insert and Delete
	// until the test lets them through.
	mirrorStarted chan struct{}
	mirrorRelease chan struct{}
}

var _ repository.Store = (*fakeStore)(nil)

func newFakeStore(tasks ...model.Task) *fakeStore {
	s := &fakeStore{tasks: map[string]model.Task{}}
	for _, task := range tasks {
		s.tasks[task.ID] = task
	}
	return s
}

func (s *fakeStore) Name() string { return "fake" }

func (s *fakeStore) List(context.Context) ([]model.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail {
		return nil, errStoreDown
	}
	out := make([]model.Task, 0, len(s.tasks))
	for _, task := range s.tasks {
		out = append(out, task)
	}
	return out, nil
}

func (s *fakeStore) Insert(_ context.Context, task model.Task) (model.Task, error) {
	s.waitMirror()
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail {
		return model.Task{}, errStoreDown
	}
	s.tasks[task.ID] = task
	return task, nil
}

func (s *fakeStore) UpdateCompletion(_ context.Context, id string, completed bool, version int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.updates = append(s.updates, version)
	if s.fail {
		return errStoreDown
	}
	if s.stale {
		return repository.ErrStale
	}
	task, ok := s.tasks[id]
	if !ok {
		return repository.ErrNotFound
	}
	task.IsCompleted = completed
	task.Version = version
	s.tasks[id] = task
	return nil
}

func (s *fakeStore) Delete(_ context.Context, id string) error {
	s.waitMirror()
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail {
		return errStoreDown
	}
	if _, ok := s.tasks[id]; !ok {
		return repository.ErrNotFound
	}
	delete(s.tasks, id)
	return nil
}

func (s *fakeStore) InsertLog(_ context.Context, content string, date model.CivilDate) (model.DailyLog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail {
		return model.DailyLog{}, errStoreDown
	}
	entry, err := model.NewDailyLog(uuid.NewString(), content, date, time.Date(2024, 6, 15, 10, 0, 0, 0, time.UTC))
	if err != nil {
		return model.DailyLog{}, err
	}
	s.logs = append([]model.DailyLog{entry}, s.logs...)
	return entry, nil
}

func (s *fakeStore) ListRecentLogs(_ context.Context, limit int) ([]model.DailyLog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail {
		return nil, errStoreDown
	}
	if limit <= 0 || limit > len(s.logs) {
		limit = len(s.logs)
	}
	return append([]model.DailyLog(nil), s.logs[:limit]...), nil
}

func (s *fakeStore) Close() error { return nil }

func (s *fakeStore) setFail(fail bool) {
	s.mu.Lock()
	s.fail = fail
	s.mu.Unlock()
}

func (s *fakeStore) has(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.tasks[id]
	return ok
}

func (s *fakeStore) holdMirrors() {
	s.mirrorStarted = make(chan struct{}, 1)
	s.mirrorRelease = make(chan struct{})
}

func (s *fakeStore) waitMirror() {
	if s.mirrorRelease == nil {
		return
	}
	s.mirrorStarted <- struct{}{}
	<-s.mirrorRelease
}
