package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"goalTracker/internal/logger"
	"goalTracker/internal/models/goal"
	"goalTracker/internal/repository"

	"go.uber.org/zap"
)

type Store interface {
	Load(context.Context) (*goal.State, error)
	Save(context.Context, *goal.State) error
}

// AsyncStore пишет состояние в фоне одной горутиной.
// Save только запоминает последний снимок, промежуточные снимки схлопываются,
// поэтому две записи в одно хранилище никогда не идут одновременно.
type AsyncStore struct {
	store   Store
	onError func(error)
	timeout time.Duration

	mtx     sync.Mutex
	latest  *goal.State
	closed  bool
	pending chan struct{}
	done    chan struct{}
}

func NewAsyncStore(store Store, onError func(error)) *AsyncStore {
	s := &AsyncStore{
		store:   store,
		onError: onError,
		timeout: 10 * time.Second,
		pending: make(chan struct{}, 1),
		done:    make(chan struct{}),
	}
	go s.run()
	return s
}

func (s *AsyncStore) Load(ctx context.Context) (*goal.State, error) {
	return s.store.Load(ctx)
}

// HealthCheck делегирует проверку нижележащему хранилищу, если оно это умеет
func (s *AsyncStore) HealthCheck(ctx context.Context) error {
	if checker, ok := s.store.(interface{ HealthCheck(context.Context) error }); ok {
		return checker.HealthCheck(ctx)
	}
	return nil
}

func (s *AsyncStore) Save(ctx context.Context, state *goal.State) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if s.closed {
		return repository.ErrClosed
	}
	s.latest = state
	select {
	case s.pending <- struct{}{}:
	default:
	}
	return nil
}

// SetErrorHandler задаёт обработчик ошибок фоновой записи
func (s *AsyncStore) SetErrorHandler(onError func(error)) {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	s.onError = onError
}

// Close дописывает последний снимок и останавливает горутину записи
func (s *AsyncStore) Close(ctx context.Context) error {
	s.mtx.Lock()
	if !s.closed {
		s.closed = true
		close(s.pending)
	}
	s.mtx.Unlock()

	select {
	case <-s.done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("ожидание фоновой записи: %w", ctx.Err())
	}
}

func (s *AsyncStore) run() {
	defer close(s.done)

	for range s.pending {
		s.flush()
	}
	s.flush()
}

func (s *AsyncStore) flush() {
	s.mtx.Lock()
	state := s.latest
	s.latest = nil
	onError := s.onError
	s.mtx.Unlock()

	if state == nil {
		return
	}

	start := time.Now()
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	if err := s.store.Save(ctx, state); err != nil {
		logger.Error("Worker: Ошибка фоновой записи", err, zap.Duration("ms", time.Since(start)))
		if onError != nil {
			onError(err)
		}
		return
	}
	logger.Debug("Worker: Состояние записано", zap.Duration("ms", time.Since(start)))
}
