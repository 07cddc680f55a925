package inmemory

import (
	"context"
	"sync"

	"goalTracker/internal/logger"
	"goalTracker/internal/models/goal"
)

// GoalStorage хранит состояние в памяти, без записи на диск
type GoalStorage struct {
	mtx   *sync.RWMutex
	state *goal.State
	saves int
}

func NewGoalStorage() *GoalStorage {
	return &GoalStorage{
		mtx:   &sync.RWMutex{},
		state: goal.NewState(),
	}
}

// NewGoalStorageWith создаёт хранилище с заранее заданным состоянием
func NewGoalStorageWith(state *goal.State) *GoalStorage {
	s := NewGoalStorage()
	if state != nil {
		s.state = state.Clone()
	}
	return s
}

func (s *GoalStorage) HealthCheck(ctx context.Context) error {
	logger.Debug("Repository: Хранилище в памяти доступно")
	return nil
}

func (s *GoalStorage) Load(ctx context.Context) (*goal.State, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	return s.state.Clone(), nil
}

func (s *GoalStorage) Save(ctx context.Context, state *goal.State) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	s.state = state.Clone()
	s.saves++
	return nil
}

// Saves - сколько раз вызывался Save
func (s *GoalStorage) Saves() int {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	return s.saves
}
