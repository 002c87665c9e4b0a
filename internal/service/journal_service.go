package service

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"agenda-rural/internal/model"
	"agenda-rural/internal/repository"
)

// JournalService records daily observations about the property.
type JournalService struct {
	store repository.Store
	log   *logrus.Entry
}

func NewJournalService(store repository.Store, log *logrus.Entry) *JournalService {
	return &JournalService{store: store, log: log}
}

// Add appends an entry; a zero date means today.
func (s *JournalService) Add(ctx context.Context, content string, date model.CivilDate) (model.DailyLog, error) {
	entry, err := s.store.InsertLog(ctx, content, date)
	if err != nil {
		if model.IsValidation(err) {
			return model.DailyLog{}, err
		}
		return model.DailyLog{}, fmt.Errorf("add log: %w", err)
	}
	s.log.WithFields(logrus.Fields{"log_id": entry.ID, "log_date": entry.LogDate.String()}).Info("daily log added")
	return entry, nil
}

// Recent returns the latest entries, newest first.
func (s *JournalService) Recent(ctx context.Context, limit int) ([]model.DailyLog, error) {
	logs, err := s.store.ListRecentLogs(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("list logs: %w", err)
	}
	return logs, nil
}
