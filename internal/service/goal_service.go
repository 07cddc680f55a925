package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"goalTracker/internal/logger"
	"goalTracker/internal/models/goal"
	"goalTracker/internal/worker"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const resourceGoal = "цель"
const resourceStep = "шаг"

// GoalService владеет активными целями, архивом, единственным таймером и серией.
// Все команды и тики выполняются под одним мьютексом.
type GoalService struct {
	mtx   sync.Mutex
	store GoalStore
	clock Clock

	scheduler    Scheduler
	tickInterval time.Duration

	state *goal.State

	activeGoalID uuid.UUID
	timerGen     uint64
	cancelTick   func()
	lastTickAt   time.Time

	persistErr error
	events     *eventBus
}

type Option func(*GoalService)

func WithClock(clock Clock) Option {
	return func(s *GoalService) {
		if clock != nil {
			s.clock = clock
		}
	}
}

func WithScheduler(scheduler Scheduler) Option {
	return func(s *GoalService) {
		if scheduler != nil {
			s.scheduler = scheduler
		}
	}
}

func WithTickInterval(interval time.Duration) Option {
	return func(s *GoalService) {
		if interval > 0 {
			s.tickInterval = interval
		}
	}
}

func NewGoalService(store GoalStore, options ...Option) *GoalService {
	s := &GoalService{
		store:        store,
		clock:        realClock{},
		tickInterval: worker.DefaultTickInterval,
		state:        goal.NewState(),
		events:       newEventBus(),
	}
	for _, opt := range options {
		opt(s)
	}
	if s.scheduler == nil {
		s.scheduler = worker.NewTickScheduler(context.Background())
	}
	return s
}

// Load читает состояние один раз при старте и проверяет, не сгорела ли серия.
// Ошибка хранилища не фатальна: начинаем с пустого состояния.
func (s *GoalService) Load(ctx context.Context) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	state, err := s.store.Load(ctx)
	if err != nil {
		logger.Warn("Service: Не удалось загрузить состояние, начинаем с пустого", zap.Error(err))
		state = nil
	}
	if state == nil {
		state = goal.NewState()
	}
	s.state = sanitize(state.Clone(), s.clock.Now())

	settings, decayed := ApplyDecay(s.state.Settings, s.clock.Now())
	s.state.Settings = settings

	logger.Info("Service: Состояние загружено",
		zap.Int("goals", len(s.state.Goals)),
		zap.Int("completed", len(s.state.Completed)),
		zap.Int("streak", s.state.Settings.Streak))

	if decayed {
		logger.Info("Service: Серия сброшена из-за долгого перерыва")
		s.persistLocked(ctx)
	}
	return nil
}

func (s *GoalService) AddGoal(ctx context.Context, title string, priority goal.Priority) (*goal.Goal, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, NewValidationError("title", "название не может быть пустым")
	}
	if priority == "" {
		priority = goal.PriorityMedium
	}
	if !priority.Valid() {
		return nil, NewValidationError("priority", "допустимы high, medium, low")
	}

	s.mtx.Lock()
	defer s.mtx.Unlock()

	newGoal := goal.Goal{
		ID:          s.newIDLocked(),
		Title:       title,
		Priority:    priority,
		DateCreated: s.clock.Now(),
		Steps:       []goal.Step{},
	}
	s.state.Goals = append(s.state.Goals, newGoal)

	logger.Info("Service: Цель создана",
		zap.String("goal_id", newGoal.ID.String()),
		zap.String("priority", string(priority)))

	s.persistLocked(ctx)
	res := newGoal.Clone()
	return &res, nil
}

// UpdateGoal заменяет активную цель с тем же id, сохраняя её позицию.
// Поля, которыми владеет сервис (время, даты, статус), берутся из текущей записи.
func (s *GoalService) UpdateGoal(ctx context.Context, updated goal.Goal) error {
	title := strings.TrimSpace(updated.Title)
	if title == "" {
		return NewValidationError("title", "название не может быть пустым")
	}
	if updated.Priority != "" && !updated.Priority.Valid() {
		return NewValidationError("priority", "допустимы high, medium, low")
	}

	s.mtx.Lock()
	defer s.mtx.Unlock()

	idx := indexOf(s.state.Goals, updated.ID)
	if idx < 0 {
		logger.Info("Service: Цель не найдена", zap.String("target_id", updated.ID.String()))
		return NewNotFound(resourceGoal, updated.ID.String())
	}

	current := &s.state.Goals[idx]
	current.Title = title
	if updated.Priority != "" {
		current.Priority = updated.Priority
	}
	current.Steps = s.normalizeStepsLocked(updated.Steps)

	s.persistLocked(ctx)
	return nil
}

// UpdateGoalByID применяет опции к активной цели
func (s *GoalService) UpdateGoalByID(ctx context.Context, id uuid.UUID, options ...goal.GoalOption) (*goal.Goal, error) {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	idx := indexOf(s.state.Goals, id)
	if idx < 0 {
		logger.Info("Service: Цель не найдена", zap.String("target_id", id.String()))
		return nil, NewNotFound(resourceGoal, id.String())
	}

	current := &s.state.Goals[idx]
	current.Apply(options...)
	current.Steps = s.normalizeStepsLocked(current.Steps)

	s.persistLocked(ctx)
	res := current.Clone()
	return &res, nil
}

// DeleteGoal удаляет активную цель; неизвестный id - не ошибка
func (s *GoalService) DeleteGoal(ctx context.Context, id uuid.UUID) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	idx := indexOf(s.state.Goals, id)
	if idx < 0 {
		logger.Debug("Service: Удаление несуществующей цели", zap.String("target_id", id.String()))
		return nil
	}

	if s.activeGoalID == id {
		s.stopTimerLocked()
	}
	s.state.Goals = append(s.state.Goals[:idx], s.state.Goals[idx+1:]...)

	logger.Info("Service: Цель удалена", zap.String("goal_id", id.String()))
	s.persistLocked(ctx)
	return nil
}

// ToggleComplete завершает активную цель или возвращает завершённую обратно.
// Только завершение увеличивает серию, возврат её не уменьшает.
func (s *GoalService) ToggleComplete(ctx context.Context, id uuid.UUID) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if idx := indexOf(s.state.Goals, id); idx >= 0 {
		s.completeLocked(ctx, idx)
		return nil
	}
	if idx := indexOf(s.state.Completed, id); idx >= 0 {
		s.restoreLocked(ctx, idx)
		return nil
	}

	logger.Info("Service: Цель не найдена", zap.String("target_id", id.String()))
	return NewNotFound(resourceGoal, id.String())
}

func (s *GoalService) RestoreGoal(ctx context.Context, id uuid.UUID) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	idx := indexOf(s.state.Completed, id)
	if idx < 0 {
		logger.Info("Service: Завершённая цель не найдена", zap.String("target_id", id.String()))
		return NewNotFound(resourceGoal, id.String())
	}
	s.restoreLocked(ctx, idx)
	return nil
}

func (s *GoalService) completeLocked(ctx context.Context, idx int) {
	if s.activeGoalID == s.state.Goals[idx].ID {
		s.stopTimerLocked()
	}

	now := s.clock.Now()
	done := s.state.Goals[idx]
	done.IsCompleted = true
	done.DateCompleted = &now

	s.state.Goals = append(s.state.Goals[:idx], s.state.Goals[idx+1:]...)
	s.state.Completed = append([]goal.Goal{done}, s.state.Completed...)

	before := s.state.Settings.Streak
	s.state.Settings = ApplyCompletion(s.state.Settings, now)

	logger.Info("Service: Цель завершена",
		zap.String("goal_id", done.ID.String()),
		zap.Int("streak_before", before),
		zap.Int("streak", s.state.Settings.Streak))

	s.events.publish(Event{Type: EventGoalCompleted, GoalID: done.ID, Goal: cloneGoal(done), At: now})
	s.persistLocked(ctx)
}

func (s *GoalService) restoreLocked(ctx context.Context, idx int) {
	restored := s.state.Completed[idx]
	restored.IsCompleted = false
	restored.DateCompleted = nil

	s.state.Completed = append(s.state.Completed[:idx], s.state.Completed[idx+1:]...)
	s.state.Goals = append(s.state.Goals, restored)

	logger.Info("Service: Цель возвращена в список", zap.String("goal_id", restored.ID.String()))

	s.events.publish(Event{Type: EventGoalRestored, GoalID: restored.ID, Goal: cloneGoal(restored), At: s.clock.Now()})
	s.persistLocked(ctx)
}

// Flush синхронно сохраняет текущее состояние и возвращает ошибку записи
func (s *GoalService) Flush(ctx context.Context) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	s.accrueLocked(s.clock.Now())
	return s.persistLocked(ctx)
}

// Shutdown останавливает таймер и сохраняет накопленное время
func (s *GoalService) Shutdown(ctx context.Context) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	s.stopTimerLocked()
	logger.Info("Service: Завершение работы, сохраняем состояние")
	return s.persistLocked(ctx)
}

// HealthCheck проверяет доступность хранилища и последнюю запись
func (s *GoalService) HealthCheck(ctx context.Context) error {
	if checker, ok := s.store.(HealthChecker); ok {
		if err := checker.HealthCheck(ctx); err != nil {
			return NewPersistenceFailure(err)
		}
	}
	return s.LastPersistenceError()
}

// LastPersistenceError возвращает ошибку последней записи или nil
func (s *GoalService) LastPersistenceError() error {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	return s.persistErr
}

// ReportPersistenceFailure вызывается фоновым писателем, когда запись не удалась
func (s *GoalService) ReportPersistenceFailure(err error) {
	if err == nil {
		return
	}
	s.mtx.Lock()
	defer s.mtx.Unlock()
	s.recordPersistErrLocked(err)
}

func (s *GoalService) persistLocked(ctx context.Context) error {
	start := time.Now()
	if err := s.store.Save(ctx, s.state.Clone()); err != nil {
		return s.recordPersistErrLocked(err)
	}
	s.persistErr = nil
	logger.Debug("Service: Состояние сохранено", zap.Duration("ms", time.Since(start)))
	return nil
}

func (s *GoalService) recordPersistErrLocked(err error) error {
	busErr := NewPersistenceFailure(err)
	s.persistErr = busErr
	logger.Error("Service: Ошибка сохранения, состояние остаётся в памяти", err)
	s.events.publish(Event{Type: EventPersistenceFailed, At: s.clock.Now(), Err: busErr})
	return busErr
}

// newIDLocked выдаёт id, которого нет ни в активных, ни в архиве
func (s *GoalService) newIDLocked() uuid.UUID {
	for {
		id := uuid.New()
		if indexOf(s.state.Goals, id) < 0 && indexOf(s.state.Completed, id) < 0 {
			return id
		}
	}
}

func (s *GoalService) normalizeStepsLocked(steps []goal.Step) []goal.Step {
	res := make([]goal.Step, 0, len(steps))
	for _, step := range steps {
		step.Title = strings.TrimSpace(step.Title)
		if step.Title == "" {
			continue
		}
		if step.ID == uuid.Nil {
			step.ID = uuid.New()
		}
		res = append(res, step)
	}
	return res
}

func indexOf(goals []goal.Goal, id uuid.UUID) int {
	for i := range goals {
		if goals[i].ID == id {
			return i
		}
	}
	return -1
}

func cloneGoal(g goal.Goal) *goal.Goal {
	res := g.Clone()
	return &res
}

// sanitize восстанавливает инварианты у загруженных данных:
// уникальные id, статус соответствует набору, шаги не nil
func sanitize(state *goal.State, now time.Time) *goal.State {
	seen := make(map[uuid.UUID]struct{}, len(state.Goals)+len(state.Completed))

	goals := make([]goal.Goal, 0, len(state.Goals))
	for _, g := range state.Goals {
		if _, dup := seen[g.ID]; dup || g.ID == uuid.Nil {
			continue
		}
		seen[g.ID] = struct{}{}
		g.IsCompleted = false
		g.DateCompleted = nil
		goals = append(goals, fixGoal(g))
	}

	completed := make([]goal.Goal, 0, len(state.Completed))
	for _, g := range state.Completed {
		if _, dup := seen[g.ID]; dup || g.ID == uuid.Nil {
			continue
		}
		seen[g.ID] = struct{}{}
		g.IsCompleted = true
		if g.DateCompleted == nil {
			done := g.DateCreated
			g.DateCompleted = &done
		}
		completed = append(completed, fixGoal(g))
	}

	settings := state.Settings
	if settings.Streak < 0 {
		settings.Streak = 0
	}
	if settings.LastCompletionDate != nil && settings.LastCompletionDate.After(now) {
		last := now
		settings.LastCompletionDate = &last
	}

	return &goal.State{Goals: goals, Completed: completed, Settings: settings}
}

func fixGoal(g goal.Goal) goal.Goal {
	if !g.Priority.Valid() {
		g.Priority = goal.PriorityMedium
	}
	if g.Steps == nil {
		g.Steps = []goal.Step{}
	}
	if g.TimeSpent < 0 {
		g.TimeSpent = 0
	}
	return g
}
