package postgres

import (
	"context"
	"fmt"
	"time"

	"goalTracker/internal/logger"
	"goalTracker/internal/models/goal"
	"goalTracker/internal/repository/goal/bucket"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

const schema = `CREATE TABLE IF NOT EXISTS goal_buckets (
	name       TEXT PRIMARY KEY,
	payload    JSONB NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`

type PoolConfig struct {
	MaxConns    int32
	MinConns    int32
	IdleTimeout time.Duration
}

// Storage хранит три набора как строки таблицы goal_buckets
type Storage struct {
	pool *pgxpool.Pool
}

func New(ctx context.Context, connString string, poolCfg *PoolConfig) (*Storage, error) {
	config, err := pgxpool.ParseConfig(connString)
	if err != nil {
		logger.Error("Repository: Ошибка загрузки конфига", err)
		return nil, fmt.Errorf("загрузка конфига: %w", err)
	}

	config.MaxConns = 4
	config.MinConns = 1
	config.MaxConnIdleTime = time.Minute * 5
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			config.MaxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			config.MinConns = poolCfg.MinConns
		}
		if poolCfg.IdleTimeout > 0 {
			config.MaxConnIdleTime = poolCfg.IdleTimeout
		}
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		logger.Error("Repository: Ошибка создания пула", err)
		return nil, fmt.Errorf("создание пула: %w", err)
	}

	if err = pool.Ping(ctx); err != nil {
		pool.Close()
		logger.Error("Repository: Неудачная проверка ping", err)
		return nil, fmt.Errorf("проверка соединения ping: %w", err)
	}

	if _, err = pool.Exec(ctx, schema); err != nil {
		pool.Close()
		logger.Error("Repository: Не удалось создать таблицу", err)
		return nil, fmt.Errorf("создание таблицы: %w", err)
	}

	logger.Info("Repository: Успешное создание подключения к PostgreSQL")
	return &Storage{pool: pool}, nil
}

func (s *Storage) Close() {
	s.pool.Close()
	logger.Info("Repository: Закрытие всех соединений PostgreSQL")
}

func (s *Storage) HealthCheck(ctx context.Context) error {
	if err := s.pool.Ping(ctx); err != nil {
		logger.Error("Repository: Неудачная проверка ping", err)
		return fmt.Errorf("проверка соединения ping: %w", err)
	}
	return nil
}

func (s *Storage) Load(ctx context.Context) (*goal.State, error) {
	start := time.Now()

	rows, err := s.pool.Query(ctx, `SELECT name, payload FROM goal_buckets`)
	if err != nil {
		logger.Error("Repository: Не удалось прочитать наборы", err, zap.Duration("ms", time.Since(start)))
		return nil, fmt.Errorf("чтение наборов: %w", err)
	}

	docs := make(map[string][]byte, len(bucket.Names))
	var (
		name    string
		payload []byte
	)
	_, err = pgx.ForEachRow(rows, []any{&name, &payload}, func() error {
		docs[name] = append([]byte(nil), payload...)
		return nil
	})
	if err != nil {
		logger.Error("Repository: Ошибка чтения строк", err)
		return nil, fmt.Errorf("чтение наборов: %w", err)
	}

	if time.Since(start) > time.Millisecond*100 {
		logger.Warn("Repository: Медленный запрос", zap.Duration("ms", time.Since(start)))
	}
	return bucket.Decode(docs), nil
}

// Save записывает все три набора в одной транзакции
func (s *Storage) Save(ctx context.Context, state *goal.State) error {
	start := time.Now()

	docs, err := bucket.Encode(state, false)
	if err != nil {
		return err
	}

	query := `INSERT INTO goal_buckets (name, payload, updated_at)
				VALUES ($1, $2::jsonb, NOW())
				ON CONFLICT (name) DO UPDATE
				SET payload = EXCLUDED.payload,
					updated_at = EXCLUDED.updated_at`

	err = pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		for _, name := range bucket.Names {
			if _, err := tx.Exec(ctx, query, name, string(docs[name])); err != nil {
				return fmt.Errorf("набор %s: %w", name, err)
			}
		}
		return nil
	})
	if err != nil {
		logger.Error("Repository: Не удалось сохранить состояние", err, zap.Duration("ms", time.Since(start)))
		return fmt.Errorf("сохранение состояния: %w", err)
	}

	if time.Since(start) > time.Millisecond*100 {
		logger.Warn("Repository: Медленная операция", zap.Duration("ms", time.Since(start)))
	}
	return nil
}
