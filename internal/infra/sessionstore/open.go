// internal/infra/sessionstore/open.go
package sessionstore

import (
	"context"
	"fmt"
	"io"

	"thread_broadcast_bot/internal/domain/session"
	"thread_broadcast_bot/internal/infra/config"
	"thread_broadcast_bot/internal/infra/database"

	"github.com/sirupsen/logrus"
)

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// Open initializes the configured session store. The returned closer releases
// any connection the store holds and is never nil.
func Open(ctx context.Context, cfg config.SessionStoreConfig, logger *logrus.Entry) (session.Store, io.Closer, error) {
	log := logger.WithField("driver", cfg.Driver)

	switch cfg.Driver {
	case config.StoreFile, "":
		log.WithField("path", cfg.FilePath).Info("Using file session store")
		return NewFileStore(cfg.FilePath), nopCloser{}, nil

	case config.StorePostgres:
		db, err := database.NewPostgresConnection(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		repo := database.NewPostgresSessionRepository(db, cfg.Key)
		if err := repo.EnsureSchema(ctx); err != nil {
			db.Close()
			return nil, nil, err
		}
		log.Info("Using postgres session store")
		return repo, db, nil

	case config.StoreRedis:
		store, err := NewRedisStore(ctx, cfg.RedisAddr, cfg.RedisDB, cfg.Key)
		if err != nil {
			return nil, nil, err
		}
		log.WithField("addr", cfg.RedisAddr).Info("Using redis session store")
		return store, store, nil

	default:
		return nil, nil, fmt.Errorf("unknown session store driver: %s", cfg.Driver)
	}
}
