package filestore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"goalTracker/internal/logger"
	"goalTracker/internal/models/goal"
	"goalTracker/internal/repository/goal/bucket"

	"go.uber.org/multierr"
	"go.uber.org/zap"
)

const (
	GoalsFileName     = bucket.Goals + ".json"
	CompletedFileName = bucket.Completed + ".json"
	SettingsFileName  = bucket.Settings + ".json"
)

// Storage хранит три набора в отдельных JSON-файлах каталога.
// Файлы заменяются атомарно через временный файл и rename.
type Storage struct {
	dir string
	mtx sync.Mutex
}

func New(dir string) (*Storage, error) {
	if dir == "" {
		return nil, fmt.Errorf("каталог данных не задан")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		logger.Error("Repository: Не удалось создать каталог данных", err, zap.String("dir", dir))
		return nil, fmt.Errorf("создание каталога %s: %w", dir, err)
	}
	logger.Info("Repository: Файловое хранилище", zap.String("dir", dir))
	return &Storage{dir: dir}, nil
}

func (s *Storage) Dir() string {
	return s.dir
}

func (s *Storage) HealthCheck(ctx context.Context) error {
	info, err := os.Stat(s.dir)
	if err != nil {
		return fmt.Errorf("проверка каталога данных: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s не каталог", s.dir)
	}
	return nil
}

// Load читает все три файла. Отсутствующий или повреждённый файл
// означает пустой набор, а не ошибку.
func (s *Storage) Load(ctx context.Context) (*goal.State, error) {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	docs := make(map[string][]byte, len(bucket.Names))
	for _, name := range bucket.Names {
		path := s.path(name)
		data, err := os.ReadFile(path)
		if err != nil {
			if !errors.Is(err, fs.ErrNotExist) {
				logger.Warn("Repository: Не удалось прочитать файл", zap.String("file", path), zap.Error(err))
			}
			continue
		}
		docs[name] = data
	}
	return bucket.Decode(docs), nil
}

func (s *Storage) Save(ctx context.Context, state *goal.State) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	docs, err := bucket.Encode(state, true)
	if err != nil {
		return err
	}

	s.mtx.Lock()
	defer s.mtx.Unlock()

	start := time.Now()
	for _, name := range bucket.Names {
		err = multierr.Append(err, s.writeFile(name, docs[name]))
	}
	if err != nil {
		logger.Error("Repository: Не удалось записать состояние", err, zap.Duration("ms", time.Since(start)))
		return fmt.Errorf("запись состояния: %w", err)
	}

	if time.Since(start) > time.Millisecond*100 {
		logger.Warn("Repository: Медленная запись", zap.Duration("ms", time.Since(start)))
	}
	return nil
}

func (s *Storage) path(name string) string {
	return filepath.Join(s.dir, name+".json")
}

func (s *Storage) writeFile(name string, data []byte) error {
	tmp, err := os.CreateTemp(s.dir, name+".*.tmp")
	if err != nil {
		return fmt.Errorf("временный файл для %s: %w", name, err)
	}
	tmpName := tmp.Name()

	_, err = tmp.Write(data)
	if err == nil {
		err = tmp.Sync()
	}
	err = multierr.Append(err, tmp.Close())
	if err == nil {
		err = os.Rename(tmpName, s.path(name))
	}
	if err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("запись %s: %w", name, err)
	}
	return nil
}
