package service

import (
	"context"
	"time"

	"goalTracker/internal/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// StartTimer запускает таймер для активной цели, предварительно останавливая
// таймер другой цели. Повторный запуск для той же цели ничего не меняет.
func (s *GoalService) StartTimer(ctx context.Context, id uuid.UUID) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	return s.startLocked(ctx, id)
}

// StopTimer начисляет время до текущего момента и снимает таймер
func (s *GoalService) StopTimer(ctx context.Context) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if s.stopTimerLocked() {
		s.persistLocked(ctx)
	}
	return nil
}

func (s *GoalService) ToggleTimer(ctx context.Context, id uuid.UUID) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if s.activeGoalID == id && id != uuid.Nil {
		s.stopTimerLocked()
		s.persistLocked(ctx)
		return nil
	}
	return s.startLocked(ctx, id)
}

func (s *GoalService) startLocked(ctx context.Context, id uuid.UUID) error {
	if indexOf(s.state.Goals, id) < 0 {
		logger.Info("Service: Таймер для неизвестной цели", zap.String("target_id", id.String()))
		return NewNotFound(resourceGoal, id.String())
	}
	if s.activeGoalID == id {
		return nil
	}

	hadTimer := s.stopTimerLocked()
	s.startTimerLocked(id)

	if hadTimer {
		s.persistLocked(ctx)
	}
	return nil
}

// Tick начисляет прошедшее время текущей цели таймера. Не сохраняет состояние.
func (s *GoalService) Tick() {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	s.tickLocked()
}

// ActiveGoalID возвращает цель таймера, если таймер запущен
func (s *GoalService) ActiveGoalID() (uuid.UUID, bool) {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	return s.activeGoalID, s.activeGoalID != uuid.Nil
}

func (s *GoalService) startTimerLocked(id uuid.UUID) {
	s.timerGen++
	gen := s.timerGen

	s.activeGoalID = id
	s.lastTickAt = s.clock.Now()
	s.cancelTick = s.scheduler.Schedule(s.tickInterval, func() {
		s.tick(gen)
	})

	logger.Info("Service: Таймер запущен", zap.String("goal_id", id.String()))
	s.events.publish(Event{Type: EventTimerStarted, GoalID: id, At: s.lastTickAt})
}

// stopTimerLocked возвращает true, если таймер был запущен
func (s *GoalService) stopTimerLocked() bool {
	if s.activeGoalID == uuid.Nil {
		return false
	}

	now := s.clock.Now()
	s.accrueLocked(now)

	if s.cancelTick != nil {
		s.cancelTick()
		s.cancelTick = nil
	}
	// тики отменённой задачи, уже ждущие мьютекс, будут проигнорированы
	s.timerGen++

	id := s.activeGoalID
	s.activeGoalID = uuid.Nil
	s.lastTickAt = time.Time{}

	logger.Info("Service: Таймер остановлен", zap.String("goal_id", id.String()))
	s.events.publish(Event{Type: EventTimerStopped, GoalID: id, At: now})
	return true
}

func (s *GoalService) tick(gen uint64) {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if gen != s.timerGen {
		return
	}
	s.tickLocked()
}

func (s *GoalService) tickLocked() {
	if s.accrueLocked(s.clock.Now()) {
		return
	}
	if s.activeGoalID != uuid.Nil {
		logger.Warn("Service: Цель таймера пропала, останавливаем", zap.String("goal_id", s.activeGoalID.String()))
		s.stopTimerLocked()
	}
}

// accrueLocked возвращает false, если таймер не запущен или его цели нет в активных
func (s *GoalService) accrueLocked(now time.Time) bool {
	if s.activeGoalID == uuid.Nil {
		return false
	}

	idx := indexOf(s.state.Goals, s.activeGoalID)
	if idx < 0 {
		return false
	}

	elapsed := now.Sub(s.lastTickAt)
	if elapsed > 0 {
		s.state.Goals[idx].TimeSpent += elapsed.Seconds()
		s.lastTickAt = now
	}
	return true
}
