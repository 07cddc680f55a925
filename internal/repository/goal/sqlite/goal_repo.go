package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"goalTracker/internal/logger"
	"goalTracker/internal/models/goal"
	"goalTracker/internal/repository/goal/bucket"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

const schema = `CREATE TABLE IF NOT EXISTS goal_buckets (
	name       TEXT PRIMARY KEY,
	payload    TEXT NOT NULL,
	updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
)`

// Storage хранит три набора в файле SQLite
type Storage struct {
	db *sql.DB
}

func New(ctx context.Context, path string) (*Storage, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		logger.Error("Repository: Не удалось открыть SQLite", err, zap.String("path", path))
		return nil, fmt.Errorf("открытие базы: %w", err)
	}

	// SQLite допускает одного писателя
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("проверка соединения: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		logger.Error("Repository: Не удалось создать таблицу", err)
		return nil, fmt.Errorf("создание таблицы: %w", err)
	}

	logger.Info("Repository: Открыта база SQLite", zap.String("path", path))
	return &Storage{db: db}, nil
}

func (s *Storage) Close() error {
	logger.Info("Repository: Закрытие базы SQLite")
	return s.db.Close()
}

func (s *Storage) HealthCheck(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("проверка соединения: %w", err)
	}
	return nil
}

func (s *Storage) Load(ctx context.Context) (*goal.State, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name, payload FROM goal_buckets`)
	if err != nil {
		logger.Error("Repository: Не удалось прочитать наборы", err)
		return nil, fmt.Errorf("чтение наборов: %w", err)
	}
	defer rows.Close()

	docs := make(map[string][]byte, len(bucket.Names))
	for rows.Next() {
		var name, payload string
		if err := rows.Scan(&name, &payload); err != nil {
			return nil, fmt.Errorf("чтение строки: %w", err)
		}
		docs[name] = []byte(payload)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("чтение наборов: %w", err)
	}

	return bucket.Decode(docs), nil
}

// Save записывает все три набора в одной транзакции
func (s *Storage) Save(ctx context.Context, state *goal.State) (err error) {
	start := time.Now()

	docs, err := bucket.Encode(state, false)
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("начало транзакции: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
			logger.Error("Repository: Не удалось сохранить состояние", err, zap.Duration("ms", time.Since(start)))
		}
	}()

	query := `INSERT INTO goal_buckets (name, payload, updated_at)
				VALUES (?, ?, CURRENT_TIMESTAMP)
				ON CONFLICT (name) DO UPDATE
				SET payload = excluded.payload,
					updated_at = excluded.updated_at`

	for _, name := range bucket.Names {
		if _, err = tx.ExecContext(ctx, query, name, string(docs[name])); err != nil {
			return fmt.Errorf("набор %s: %w", name, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("фиксация транзакции: %w", err)
	}
	return nil
}
