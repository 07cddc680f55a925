package service

import (
	"context"
	"time"

	"goalTracker/internal/models/goal"
)

// GoalStore - хранилище трёх наборов: активные цели, архив и настройки.
// Load не должен падать на отсутствующих данных, пустое состояние - норма.
type GoalStore interface {
	Load(context.Context) (*goal.State, error)
	Save(context.Context, *goal.State) error
}

// Scheduler запускает периодическую задачу и возвращает функцию её отмены.
// Отмена не должна блокироваться.
type Scheduler interface {
	Schedule(interval time.Duration, tick func()) (cancel func())
}

type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time {
	return time.Now()
}

// HealthChecker реализуют хранилища, которые умеют проверять соединение
type HealthChecker interface {
	HealthCheck(context.Context) error
}
