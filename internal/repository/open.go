package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
)

const remoteConnectTimeout = 10 * time.Second

// Options selects and configures the backend.
type Options struct {
	DatabaseURL string
	LocalPath   string
}

// Open picks the backend once at startup. The remote database is used when
// configured and reachable; otherwise the local SQLite file is opened and the
// reason logged as a warning.
func Open(ctx context.Context, opts Options, log *logrus.Entry) (Store, error) {
	if opts.DatabaseURL != "" {
		remote, err := openRemote(ctx, opts.DatabaseURL, log)
		if err == nil {
			log.WithField("store", remote.Name()).Info("using remote store")
			return remote, nil
		}
		log.WithError(err).Warn("remote store unavailable, falling back to local storage")
	} else {
		log.Warn("DATABASE_URL not set, using local storage")
	}

	db, err := NewDB(opts.LocalPath, log)
	if err != nil {
		return nil, fmt.Errorf("open local store: %w", err)
	}
	log.WithField("path", opts.LocalPath).Info("using local store")
	return NewLocalStore(db, log), nil
}

func openRemote(ctx context.Context, databaseURL string, log *logrus.Entry) (*RemoteStore, error) {
	ctx, cancel := context.WithTimeout(ctx, remoteConnectTimeout)
	defer cancel()

	remote, err := NewRemoteStore(ctx, databaseURL, log)
	if err != nil {
		return nil, err
	}
	if err := remote.Migrate(ctx); err != nil {
		remote.Close()
		return nil, err
	}
	return remote, nil
}
