package repository

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const defaultLocalPath = "agenda_rural.db"

// sqlitePragmas are appended to file DSNs that carry no query of their own.
const sqlitePragmas = "_busy_timeout=5000&_journal_mode=WAL"

// NewDB opens the local SQLite file, creating its directory, and migrates
// the task and log tables.
func NewDB(path string, log *logrus.Entry) (*gorm.DB, error) {
	dsn := sqliteDSN(path)
	if err := ensureDirForSQLite(dsn); err != nil {
		return nil, err
	}

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.New(log.WithField("component", "gorm"), gormlogger.Config{
			SlowThreshold:             500 * time.Millisecond,
			LogLevel:                  gormLevel(log.Logger.GetLevel()),
			IgnoreRecordNotFoundError: true,
		}),
	})
	if err != nil {
		return nil, fmt.Errorf("open sqlite %q: %w", path, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql db: %w", err)
	}
	// One writer at a time; SQLite serialises writes anyway.
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&taskRow{}, &logRow{}); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("migrate sqlite: %w", err)
	}
	return db, nil
}

func sqliteDSN(path string) string {
	if path == "" {
		path = defaultLocalPath
	}
	if strings.Contains(path, "?") || strings.Contains(path, ":memory:") {
		return path
	}
	return path + "?" + sqlitePragmas
}

// gormLevel keeps SQL tracing off unless the process runs at debug level.
func gormLevel(level logrus.Level) gormlogger.LogLevel {
	switch {
	case level >= logrus.DebugLevel:
		return gormlogger.Info
	case level >= logrus.WarnLevel:
		return gormlogger.Warn
	default:
		return gormlogger.Error
	}
}

// ensureDirForSQLite creates the parent directory of a file DSN.
func ensureDirForSQLite(dsn string) error {
	if strings.Contains(dsn, ":memory:") || strings.Contains(dsn, "mode=memory") {
		return nil
	}
	file := strings.TrimPrefix(dsn, "file:")
	file, _, _ = strings.Cut(file, "?")
	dir := filepath.Dir(file)
	if dir == "." || dir == "" {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create db dir %q: %w", dir, err)
	}
	return nil
}
