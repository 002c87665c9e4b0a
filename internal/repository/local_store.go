package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"agenda-rural/internal/model"
)

type taskRow struct {
	ID             string `gorm:"primaryKey"`
	Title          string `gorm:"not null"`
	Description    string
	IsCompleted    bool   `gorm:"not null;default:false"`
	Category       string `gorm:"not null"`
	Urgency        string `gorm:"not null;default:medium"`
	Recurrence     string `gorm:"not null;default:none"`
	SpecificDate   *string
	MonthReference *int
	CreatedAt      time.Time
	Version        int64 `gorm:"not null;default:1"`
}

func (taskRow) TableName() string { return "tasks" }

type logRow struct {
	ID        string `gorm:"primaryKey"`
	LogDate   string `gorm:"index;not null"`
	Content   string `gorm:"not null"`
	CreatedAt time.Time
}

func (logRow) TableName() string { return "daily_logs" }

// LocalStore keeps tasks and logs in a SQLite file on this machine.
type LocalStore struct {
	db  *gorm.DB
	log *logrus.Entry
	now func() time.Time
}

var _ Store = (*LocalStore)(nil)

func NewLocalStore(db *gorm.DB, log *logrus.Entry) *LocalStore {
	return &LocalStore{db: db, log: log, now: time.Now}
}

func (s *LocalStore) Name() string { return "local" }

func (s *LocalStore) List(ctx context.Context) ([]model.Task, error) {
	var rows []taskRow
	if err := s.db.WithContext(ctx).Order("created_at DESC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}

	tasks := make([]model.Task, 0, len(rows))
	for _, row := range rows {
		task, err := row.record().task()
		if err != nil {
			s.log.WithError(err).Warn("stored task has an invalid date anchor")
		}
		tasks = append(tasks, task)
	}
	return tasks, nil
}

func (s *LocalStore) Insert(ctx context.Context, task model.Task) (model.Task, error) {
	task = prepareInsert(task, s.now())
	row := taskRowOf(recordOf(task))
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return model.Task{}, fmt.Errorf("create task: %w", err)
	}
	return task, nil
}

func (s *LocalStore) UpdateCompletion(ctx context.Context, id string, completed bool, version int64) error {
	res := s.db.WithContext(ctx).Model(&taskRow{}).
		Where("id = ? AND version < ?", id, version).
		Updates(map[string]any{"is_completed": completed, "version": version})
	if res.Error != nil {
		return fmt.Errorf("update task: %w", res.Error)
	}
	if res.RowsAffected > 0 {
		return nil
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&taskRow{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return fmt.Errorf("check task: %w", err)
	}
	if count == 0 {
		return ErrNotFound
	}
	return ErrStale
}

func (s *LocalStore) Delete(ctx context.Context, id string) error {
	res := s.db.WithContext(ctx).Where("id = ?", id).Delete(&taskRow{})
	if res.Error != nil {
		return fmt.Errorf("delete task: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *LocalStore) InsertLog(ctx context.Context, content string, date model.CivilDate) (model.DailyLog, error) {
	entry, err := model.NewDailyLog(uuid.NewString(), content, date, s.now())
	if err != nil {
		return model.DailyLog{}, err
	}
	row := logRow{
		ID:        entry.ID,
		LogDate:   entry.LogDate.String(),
		Content:   entry.Content,
		CreatedAt: entry.CreatedAt,
	}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return model.DailyLog{}, fmt.Errorf("create log: %w", err)
	}
	return entry, nil
}

func (s *LocalStore) ListRecentLogs(ctx context.Context, limit int) ([]model.DailyLog, error) {
	var rows []logRow
	if err := s.db.WithContext(ctx).
		Order("log_date DESC, created_at DESC").
		Limit(logLimit(limit)).
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list logs: %w", err)
	}

	logs := make([]model.DailyLog, 0, len(rows))
	for _, row := range rows {
		date, err := model.ParseDate(row.LogDate)
		if err != nil {
			s.log.WithError(err).WithField("log_id", row.ID).Warn("stored log has an invalid date")
		}
		logs = append(logs, model.DailyLog{ID: row.ID, LogDate: date, Content: row.Content, CreatedAt: row.CreatedAt})
	}
	return logs, nil
}

func (s *LocalStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("get sql db: %w", err)
	}
	if err := sqlDB.Close(); err != nil {
		return fmt.Errorf("close db: %w", err)
	}
	return nil
}

func taskRowOf(rec record) taskRow {
	return taskRow{
		ID:             rec.ID,
		Title:          rec.Title,
		Description:    rec.Description,
		IsCompleted:    rec.IsCompleted,
		Category:       rec.Category,
		Urgency:        rec.Urgency,
		Recurrence:     rec.Recurrence,
		SpecificDate:   rec.SpecificDate,
		MonthReference: rec.MonthReference,
		CreatedAt:      rec.CreatedAt,
		Version:        rec.Version,
	}
}

func (r taskRow) record() record {
	return record{
		ID:             r.ID,
		Title:          r.Title,
		Description:    r.Description,
		IsCompleted:    r.IsCompleted,
		Category:       r.Category,
		Urgency:        r.Urgency,
		Recurrence:     r.Recurrence,
		SpecificDate:   r.SpecificDate,
		MonthReference: r.MonthReference,
		CreatedAt:      r.CreatedAt,
		Version:        r.Version,
	}
}
