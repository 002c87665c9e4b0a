package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"

	"agenda-rural/internal/model"
)

const remoteSchema = `
CREATE TABLE IF NOT EXISTS tasks (
	id              uuid PRIMARY KEY DEFAULT gen_random_uuid(),
	title           text NOT NULL,
	description     text,
	is_completed    boolean NOT NULL DEFAULT false,
	category        text NOT NULL,
	urgency         text NOT NULL DEFAULT 'medium',
	recurrence      text NOT NULL DEFAULT 'none',
	specific_date   date,
	month_reference smallint,
	created_at      timestamptz NOT NULL DEFAULT now(),
	version         bigint NOT NULL DEFAULT 1
);
CREATE TABLE IF NOT EXISTS daily_logs (
	id         uuid PRIMARY KEY DEFAULT gen_random_uuid(),
	log_date   date NOT NULL DEFAULT CURRENT_DATE,
	content    text NOT NULL,
	created_at timestamptz NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS daily_logs_log_date_idx ON daily_logs (log_date DESC);
`

const taskColumns = `id, title, description, is_completed, category, urgency, recurrence,
	specific_date, month_reference, created_at, version`

// RemoteStore keeps tasks and logs in the hosted Postgres database.
type RemoteStore struct {
	pool *pgxpool.Pool
	log  *logrus.Entry
	now  func() time.Time
}

var _ Store = (*RemoteStore)(nil)

// NewRemoteStore connects and verifies the database is reachable.
func NewRemoteStore(ctx context.Context, databaseURL string, log *logrus.Entry) (*RemoteStore, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return &RemoteStore{pool: pool, log: log, now: time.Now}, nil
}

// Migrate creates the tables when they do not exist yet.
func (s *RemoteStore) Migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, remoteSchema); err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}
	return nil
}

func (s *RemoteStore) Name() string { return "remote" }

func (s *RemoteStore) List(ctx context.Context) ([]model.Task, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+taskColumns+` FROM tasks ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	tasks := make([]model.Task, 0)
	for rows.Next() {
		rec, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		task, err := rec.task()
		if err != nil {
			s.log.WithError(err).Warn("stored task has an invalid date anchor")
		}
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return tasks, nil
}

func (s *RemoteStore) Insert(ctx context.Context, task model.Task) (model.Task, error) {
	task = prepareInsert(task, s.now())
	rec := recordOf(task)

	id, err := uuidParam(rec.ID)
	if err != nil {
		return model.Task{}, fmt.Errorf("create task: %w", err)
	}
	date, err := dateParam(rec.SpecificDate)
	if err != nil {
		return model.Task{}, fmt.Errorf("create task: %w", err)
	}

	_, err = s.pool.Exec(ctx, `
		INSERT INTO tasks (`+taskColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		id, rec.Title, textParam(rec.Description), rec.IsCompleted, rec.Category, rec.Urgency,
		rec.Recurrence, date, monthParam(rec.MonthReference), rec.CreatedAt, rec.Version,
	)
	if err != nil {
		return model.Task{}, fmt.Errorf("create task: %w", describePgError(err))
	}
	return task, nil
}

func (s *RemoteStore) UpdateCompletion(ctx context.Context, id string, completed bool, version int64) error {
	pgID, err := uuidParam(id)
	if err != nil {
		return ErrNotFound
	}

	tag, err := s.pool.Exec(ctx,
		`UPDATE tasks SET is_completed = $2, version = $3 WHERE id = $1 AND version < $3`,
		pgID, completed, version,
	)
	if err != nil {
		return fmt.Errorf("update task: %w", describePgError(err))
	}
	if tag.RowsAffected() > 0 {
		return nil
	}

	var exists bool
	if err := s.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM tasks WHERE id = $1)`, pgID).Scan(&exists); err != nil {
		return fmt.Errorf("check task: %w", err)
	}
	if !exists {
		return ErrNotFound
	}
	return ErrStale
}

func (s *RemoteStore) Delete(ctx context.Context, id string) error {
	pgID, err := uuidParam(id)
	if err != nil {
		return ErrNotFound
	}
	tag, err := s.pool.Exec(ctx, `DELETE FROM tasks WHERE id = $1`, pgID)
	if err != nil {
		return fmt.Errorf("delete task: %w", describePgError(err))
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *RemoteStore) InsertLog(ctx context.Context, content string, date model.CivilDate) (model.DailyLog, error) {
	entry, err := model.NewDailyLog(uuid.NewString(), content, date, s.now())
	if err != nil {
		return model.DailyLog{}, err
	}
	id, err := uuidParam(entry.ID)
	if err != nil {
		return model.DailyLog{}, fmt.Errorf("create log: %w", err)
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO daily_logs (id, log_date, content, created_at) VALUES ($1, $2, $3, $4)`,
		id, pgtype.Date{Time: entry.LogDate.Time(time.UTC), Valid: true}, entry.Content, entry.CreatedAt,
	)
	if err != nil {
		return model.DailyLog{}, fmt.Errorf("create log: %w", describePgError(err))
	}
	return entry, nil
}

func (s *RemoteStore) ListRecentLogs(ctx context.Context, limit int) ([]model.DailyLog, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, log_date, content, created_at FROM daily_logs
		ORDER BY log_date DESC, created_at DESC LIMIT $1`,
		logLimit(limit),
	)
	if err != nil {
		return nil, fmt.Errorf("list logs: %w", err)
	}
	defer rows.Close()

	logs := make([]model.DailyLog, 0)
	for rows.Next() {
		var (
			id      pgtype.UUID
			logDate pgtype.Date
			entry   model.DailyLog
		)
		if err := rows.Scan(&id, &logDate, &entry.Content, &entry.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan log: %w", err)
		}
		entry.ID = uuid.UUID(id.Bytes).String()
		if logDate.Valid {
			entry.LogDate = model.DateOf(logDate.Time)
		}
		logs = append(logs, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list logs: %w", err)
	}
	return logs, nil
}

func (s *RemoteStore) Close() error {
	s.pool.Close()
	return nil
}

func scanTask(row pgx.Row) (record, error) {
	var (
		rec         record
		id          pgtype.UUID
		description pgtype.Text
		date        pgtype.Date
		month       pgtype.Int2
	)
	if err := row.Scan(&id, &rec.Title, &description, &rec.IsCompleted, &rec.Category, &rec.Urgency,
		&rec.Recurrence, &date, &month, &rec.CreatedAt, &rec.Version); err != nil {
		return record{}, err
	}

	rec.ID = uuid.UUID(id.Bytes).String()
	rec.Description = description.String
	if date.Valid {
		d := model.DateOf(date.Time).String()
		rec.SpecificDate = &d
	}
	if month.Valid {
		m := int(month.Int16)
		rec.MonthReference = &m
	}
	return rec, nil
}

func uuidParam(id string) (pgtype.UUID, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return pgtype.UUID{}, fmt.Errorf("parse id %q: %w", id, err)
	}
	return pgtype.UUID{Bytes: parsed, Valid: true}, nil
}

func textParam(s string) pgtype.Text {
	return pgtype.Text{String: s, Valid: s != ""}
}

func dateParam(s *string) (pgtype.Date, error) {
	if s == nil {
		return pgtype.Date{}, nil
	}
	d, err := model.ParseDate(*s)
	if err != nil {
		return pgtype.Date{}, err
	}
	return pgtype.Date{Time: d.Time(time.UTC), Valid: true}, nil
}

func monthParam(m *int) pgtype.Int2 {
	if m == nil {
		return pgtype.Int2{}
	}
	return pgtype.Int2{Int16: int16(*m), Valid: true}
}

// describePgError adds the Postgres error code to constraint failures.
func describePgError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return fmt.Errorf("%s (code %s): %w", pgErr.Message, pgErr.Code, err)
	}
	return err
}
