package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"goalTracker/internal/config"
	"goalTracker/internal/logger"
	"goalTracker/internal/repository/goal/filestore"
	"goalTracker/internal/repository/goal/inmemory"
	"goalTracker/internal/repository/goal/postgres"
	"goalTracker/internal/repository/goal/sqlite"
	"goalTracker/internal/service"
	"goalTracker/internal/worker"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

type shutdownFunc func(context.Context) error

// Engine - сервис целей вместе с хранилищем и фоновыми воркерами.
// Используется и API-сервером, и CLI.
type Engine struct {
	Service   *service.GoalService
	shutdowns []shutdownFunc
}

// OpenStore открывает хранилище выбранного в конфиге типа
func OpenStore(ctx context.Context, cfg *config.Config) (service.GoalStore, shutdownFunc, error) {
	noop := func(context.Context) error { return nil }

	switch cfg.Repository.Type {
	case config.RepositoryFile:
		store, err := filestore.New(cfg.Repository.DataDir)
		if err != nil {
			return nil, nil, fmt.Errorf("файловое хранилище: %w", err)
		}
		return store, noop, nil

	case config.RepositorySQLite:
		path := cfg.GetSQLitePath()
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, nil, fmt.Errorf("каталог для SQLite: %w", err)
		}
		store, err := sqlite.New(ctx, path)
		if err != nil {
			return nil, nil, fmt.Errorf("SQLite: %w", err)
		}
		return store, func(context.Context) error { return store.Close() }, nil

	case config.RepositoryPostgres:
		store, err := postgres.New(ctx, cfg.Database.URL, &postgres.PoolConfig{
			MaxConns:    cfg.Database.MaxConnections,
			MinConns:    cfg.Database.MinConnections,
			IdleTimeout: cfg.Database.IdleTimeout,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("postgres: %w", err)
		}
		return store, func(context.Context) error { store.Close(); return nil }, nil

	case config.RepositoryInMemory:
		return inmemory.NewGoalStorage(), noop, nil

	default:
		return nil, nil, fmt.Errorf("неизвестный тип хранилища %q", cfg.Repository.Type)
	}
}

// NewEngine открывает хранилище, собирает сервис и загружает состояние
func NewEngine(ctx context.Context, cfg *config.Config) (*Engine, error) {
	e := &Engine{}

	store, closeStore, err := OpenStore(ctx, cfg)
	if err != nil {
		return nil, err
	}
	e.shutdowns = append(e.shutdowns, func(ctx context.Context) error {
		logger.Info("App: Закрытие хранилища")
		return closeStore(ctx)
	})

	var async *worker.AsyncStore
	if cfg.Persistence.Async {
		async = worker.NewAsyncStore(store, nil)
		store = async
		e.shutdowns = append(e.shutdowns, func(ctx context.Context) error {
			logger.Info("App: Ожидание фоновой записи")
			return async.Close(ctx)
		})
	}

	schedCtx, stopTicks := context.WithCancel(context.Background())
	e.shutdowns = append(e.shutdowns, func(context.Context) error {
		stopTicks()
		return nil
	})

	svc := service.NewGoalService(store,
		service.WithScheduler(worker.NewTickScheduler(schedCtx)),
		service.WithTickInterval(cfg.Timer.TickInterval),
	)
	if async != nil {
		async.SetErrorHandler(svc.ReportPersistenceFailure)
	}

	events, unsubscribe := svc.Subscribe(16)
	go logEvents(events)
	e.shutdowns = append(e.shutdowns, func(context.Context) error {
		unsubscribe()
		return nil
	})

	if err := svc.Load(ctx); err != nil {
		return nil, multierr.Append(err, e.Close(ctx))
	}
	e.shutdowns = append(e.shutdowns, func(ctx context.Context) error {
		logger.Info("App: Остановка сервиса целей")
		return svc.Shutdown(ctx)
	})

	e.Service = svc
	return e, nil
}

// Close выполняет завершение в обратном порядке: сервис, воркеры, хранилище
func (e *Engine) Close(ctx context.Context) error {
	var err error
	for i := len(e.shutdowns) - 1; i >= 0; i-- {
		err = multierr.Append(err, e.shutdowns[i](ctx))
	}
	e.shutdowns = nil
	return err
}

func logEvents(events <-chan service.Event) {
	for event := range events {
		fields := []zap.Field{
			zap.String("event", string(event.Type)),
			zap.Time("at", event.At),
		}
		if event.GoalID != uuid.Nil {
			fields = append(fields, zap.String("goal_id", event.GoalID.String()))
		}
		if event.Err != nil {
			logger.Warn("App: Событие сервиса", append(fields, zap.Error(event.Err))...)
			continue
		}
		logger.Debug("App: Событие сервиса", fields...)
	}
}
