package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"goalTracker/internal/models/goal"
	"goalTracker/internal/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// TestGoalService_AddGoal тестирует создание целей и отказ на пустом названии
func TestGoalService_AddGoal(t *testing.T) {
	tests := []struct {
		name        string
		title       string
		priority    goal.Priority
		expectError bool
		expected    goal.Priority
	}{
		{name: "success - high priority", title: "Write report", priority: goal.PriorityHigh, expected: goal.PriorityHigh},
		{name: "success - default priority", title: "  Walk  ", priority: "", expected: goal.PriorityMedium},
		{name: "error - empty title", title: "", priority: goal.PriorityLow, expectError: true},
		{name: "error - whitespace title", title: " \t\n", priority: goal.PriorityLow, expectError: true},
		{name: "error - unknown priority", title: "Read", priority: "urgent", expectError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, nil)

			g, err := f.svc.AddGoal(context.Background(), tt.title, tt.priority)
			if tt.expectError {
				assert.Error(t, err)
				assert.True(t, service.IsValidation(err))
				assert.Empty(t, f.svc.Goals())
				assert.Equal(t, 0, f.store.Saves())
				return
			}

			require.NoError(t, err)
			assert.NotEqual(t, uuid.Nil, g.ID)
			assert.Equal(t, tt.expected, g.Priority)
			assert.Equal(t, baseTime, g.DateCreated)
			assert.False(t, g.IsCompleted)
			assert.Nil(t, g.DateCompleted)
			assert.Zero(t, g.TimeSpent)
			assert.NotNil(t, g.Steps)
			assert.Len(t, f.svc.Goals(), 1)
			assert.Equal(t, 1, f.store.Saves())
		})
	}
}

func TestGoalService_AddGoal_CountMatchesValidCalls(t *testing.T) {
	f := newFixture(t, nil)
	titles := []string{"a", "", "b", "   ", "c", "d", ""}

	valid := 0
	for _, title := range titles {
		if _, err := f.svc.AddGoal(context.Background(), title, goal.PriorityLow); err == nil {
			valid++
		}
	}

	assert.Equal(t, 4, valid)
	assert.Len(t, f.svc.Goals(), valid)
}

func TestGoalService_AddGoal_NoTimerOrStreakSideEffects(t *testing.T) {
	f := newFixture(t, nil)
	f.add(t, "a", goal.PriorityHigh)

	_, running := f.svc.ActiveGoalID()
	assert.False(t, running)
	assert.Equal(t, 0, f.svc.Streak())
	assert.Empty(t, f.scheduler.Live())
}

func TestGoalService_UpdateGoal(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	first := f.add(t, "first", goal.PriorityLow)
	second := f.add(t, "second", goal.PriorityLow)

	updated := second
	updated.Title = "second (edited)"
	updated.Priority = goal.PriorityLow
	updated.TimeSpent = 9999
	updated.IsCompleted = true
	updated.Steps = []goal.Step{{Title: "step one"}, {Title: "  "}}

	require.NoError(t, f.svc.UpdateGoal(ctx, updated))

	state, err := f.store.Load(ctx)
	require.NoError(t, err)
	require.Len(t, state.Goals, 2)
	assert.Equal(t, first.ID, state.Goals[0].ID)
	assert.Equal(t, second.ID, state.Goals[1].ID)

	got := state.Goals[1]
	assert.Equal(t, "second (edited)", got.Title)
	assert.Zero(t, got.TimeSpent)
	assert.False(t, got.IsCompleted)
	require.Len(t, got.Steps, 1)
	assert.NotEqual(t, uuid.Nil, got.Steps[0].ID)
}

func TestGoalService_UpdateGoal_Errors(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	g := f.add(t, "title", goal.PriorityLow)
	saves := f.store.Saves()

	err := f.svc.UpdateGoal(ctx, goal.Goal{ID: uuid.New(), Title: "x"})
	assert.True(t, service.IsNotFound(err))

	g.Title = "  "
	err = f.svc.UpdateGoal(ctx, g)
	assert.True(t, service.IsValidation(err))

	assert.Equal(t, saves, f.store.Saves())
}

func TestGoalService_UpdateGoalByID(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	g := f.add(t, "title", goal.PriorityLow)

	res, err := f.svc.UpdateGoalByID(ctx, g.ID, goal.WithTitle("new title"), goal.WithPriority(goal.PriorityHigh))
	require.NoError(t, err)
	assert.Equal(t, "new title", res.Title)
	assert.Equal(t, goal.PriorityHigh, res.Priority)

	_, err = f.svc.UpdateGoalByID(ctx, uuid.New(), goal.WithTitle("x"))
	assert.True(t, service.IsNotFound(err))
}

func TestGoalService_DeleteGoal_Idempotent(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	keep := f.add(t, "keep", goal.PriorityLow)
	drop := f.add(t, "drop", goal.PriorityLow)

	require.NoError(t, f.svc.DeleteGoal(ctx, drop.ID))
	once := f.svc.Goals()
	savesAfterFirst := f.store.Saves()

	require.NoError(t, f.svc.DeleteGoal(ctx, drop.ID))
	require.NoError(t, f.svc.DeleteGoal(ctx, uuid.New()))

	assert.Equal(t, once, f.svc.Goals())
	require.Len(t, once, 1)
	assert.Equal(t, keep.ID, once[0].ID)
	assert.Equal(t, savesAfterFirst, f.store.Saves())
}

func TestGoalService_DeleteGoal_StopsTimer(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	g := f.add(t, "timed", goal.PriorityLow)

	require.NoError(t, f.svc.StartTimer(ctx, g.ID))
	require.NoError(t, f.svc.DeleteGoal(ctx, g.ID))

	_, running := f.svc.ActiveGoalID()
	assert.False(t, running)
	assert.Empty(t, f.scheduler.Live())
}

func TestGoalService_ToggleComplete_RestoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	g := f.add(t, "finish me", goal.PriorityHigh)
	other := f.add(t, "other", goal.PriorityLow)
	f.clock.Advance(time.Hour)

	require.NoError(t, f.svc.ToggleComplete(ctx, g.ID))

	active := f.svc.Goals()
	require.Len(t, active, 1)
	assert.Equal(t, other.ID, active[0].ID)

	completed := f.svc.Completed()
	require.Len(t, completed, 1)
	assert.Equal(t, g.ID, completed[0].ID)
	assert.True(t, completed[0].IsCompleted)
	require.NotNil(t, completed[0].DateCompleted)
	assert.Equal(t, baseTime.Add(time.Hour), *completed[0].DateCompleted)

	require.NoError(t, f.svc.RestoreGoal(ctx, g.ID))

	assert.Empty(t, f.svc.Completed())
	active = f.svc.Goals()
	require.Len(t, active, 2)
	restored, err := f.svc.GetGoal(g.ID)
	require.NoError(t, err)
	assert.Equal(t, g.ID, restored.ID)
	assert.False(t, restored.IsCompleted)
	assert.Nil(t, restored.DateCompleted)
}

func TestGoalService_ToggleComplete_PrependsToArchive(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	a := f.add(t, "a", goal.PriorityLow)
	b := f.add(t, "b", goal.PriorityLow)

	require.NoError(t, f.svc.ToggleComplete(ctx, a.ID))
	require.NoError(t, f.svc.ToggleComplete(ctx, b.ID))

	completed := f.svc.Completed()
	require.Len(t, completed, 2)
	assert.Equal(t, b.ID, completed[0].ID)
	assert.Equal(t, a.ID, completed[1].ID)
}

func TestGoalService_ToggleComplete_OnCompletedRestoresWithoutDecrement(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	g := f.add(t, "a", goal.PriorityLow)

	require.NoError(t, f.svc.ToggleComplete(ctx, g.ID))
	assert.Equal(t, 1, f.svc.Streak())

	require.NoError(t, f.svc.ToggleComplete(ctx, g.ID))
	assert.Equal(t, 1, f.svc.Streak())
	assert.Empty(t, f.svc.Completed())
	assert.Len(t, f.svc.Goals(), 1)
}

func TestGoalService_ToggleComplete_StopsTimerOnTarget(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	g := f.add(t, "a", goal.PriorityLow)

	require.NoError(t, f.svc.StartTimer(ctx, g.ID))
	f.clock.Advance(90 * time.Second)
	require.NoError(t, f.svc.ToggleComplete(ctx, g.ID))

	_, running := f.svc.ActiveGoalID()
	assert.False(t, running)
	completed := f.svc.Completed()
	require.Len(t, completed, 1)
	assert.Equal(t, 90.0, completed[0].TimeSpent)
}

func TestGoalService_StrictOperationsNotFound(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	missing := uuid.New()

	assert.True(t, service.IsNotFound(f.svc.ToggleComplete(ctx, missing)))
	assert.True(t, service.IsNotFound(f.svc.RestoreGoal(ctx, missing)))
	assert.True(t, service.IsNotFound(f.svc.StartTimer(ctx, missing)))
	assert.True(t, service.IsNotFound(f.svc.ToggleTimer(ctx, missing)))
	_, err := f.svc.GetGoal(missing)
	assert.True(t, service.IsNotFound(err))
	assert.Equal(t, 0, f.store.Saves())
}

func TestGoalService_Goals_SortedByPriorityThenCreation(t *testing.T) {
	f := newFixture(t, nil)
	low := f.add(t, "low", goal.PriorityLow)
	f.clock.Advance(time.Minute)
	high1 := f.add(t, "high1", goal.PriorityHigh)
	f.clock.Advance(time.Minute)
	medium := f.add(t, "medium", goal.PriorityMedium)
	high2 := f.add(t, "high2", goal.PriorityHigh)

	var ids []uuid.UUID
	for _, g := range f.svc.Goals() {
		ids = append(ids, g.ID)
	}
	assert.Equal(t, []uuid.UUID{high1.ID, high2.ID, medium.ID, low.ID}, ids)
}

func TestGoalService_Load(t *testing.T) {
	dup := uuid.New()
	initial := goal.NewState()
	initial.Goals = []goal.Goal{
		{ID: dup, Title: "active", Priority: "bogus", IsCompleted: true, DateCompleted: daysAgo(1)},
		{ID: uuid.New(), Title: "plain", Priority: goal.PriorityLow, TimeSpent: -4},
	}
	initial.Completed = []goal.Goal{
		{ID: dup, Title: "duplicate"},
		{ID: uuid.New(), Title: "done", DateCreated: baseTime.AddDate(0, 0, -1)},
	}
	initial.Settings.Streak = 2
	initial.Settings.LastCompletionDate = daysAgo(1)

	f := newFixture(t, initial)

	goals := f.svc.Goals()
	require.Len(t, goals, 2)
	for _, g := range goals {
		assert.False(t, g.IsCompleted)
		assert.Nil(t, g.DateCompleted)
		assert.True(t, g.Priority.Valid())
		assert.GreaterOrEqual(t, g.TimeSpent, 0.0)
	}

	completed := f.svc.Completed()
	require.Len(t, completed, 1)
	assert.True(t, completed[0].IsCompleted)
	assert.NotNil(t, completed[0].DateCompleted)

	assert.Equal(t, 2, f.svc.Streak())
	assert.Equal(t, 0, f.store.Saves())
}

func TestGoalService_Load_StoreErrorStartsEmpty(t *testing.T) {
	store := new(MockGoalStore)
	store.On("Load", mock.Anything).Return(nil, errors.New("permission denied"))

	svc := service.NewGoalService(store, service.WithScheduler(&manualScheduler{}))
	require.NoError(t, svc.Load(context.Background()))
	assert.Empty(t, svc.Goals())
	assert.Empty(t, svc.Completed())
	store.AssertExpectations(t)
}

func TestGoalService_PersistenceFailureIsNonFatal(t *testing.T) {
	ctx := context.Background()
	store := new(MockGoalStore)
	store.On("Load", mock.Anything).Return(goal.NewState(), nil)
	store.On("Save", mock.Anything, mock.Anything).Return(errors.New("disk full")).Once()
	store.On("Save", mock.Anything, mock.Anything).Return(nil)

	svc := service.NewGoalService(store, service.WithScheduler(&manualScheduler{}))
	require.NoError(t, svc.Load(ctx))
	events, unsubscribe := svc.Subscribe(4)
	defer unsubscribe()

	g, err := svc.AddGoal(ctx, "survives", goal.PriorityLow)
	require.NoError(t, err)
	assert.Len(t, svc.Goals(), 1)
	assert.True(t, service.IsPersistenceFailure(svc.LastPersistenceError()))

	select {
	case e := <-events:
		assert.Equal(t, service.EventPersistenceFailed, e.Type)
		assert.Error(t, e.Err)
	default:
		t.Fatal("ожидалось событие persistence.failed")
	}

	// следующая команда повторяет запись целиком
	require.NoError(t, svc.ToggleComplete(ctx, g.ID))
	assert.NoError(t, svc.LastPersistenceError())

	store.AssertNumberOfCalls(t, "Save", 2)
	last := store.Calls[len(store.Calls)-1].Arguments.Get(1).(*goal.State)
	assert.Len(t, last.Completed, 1)
}

func TestGoalService_FlushReturnsPersistenceError(t *testing.T) {
	store := new(MockGoalStore)
	store.On("Load", mock.Anything).Return(goal.NewState(), nil)
	store.On("Save", mock.Anything, mock.Anything).Return(errors.New("read-only fs"))

	svc := service.NewGoalService(store, service.WithScheduler(&manualScheduler{}))
	require.NoError(t, svc.Load(context.Background()))

	err := svc.Flush(context.Background())
	assert.True(t, service.IsPersistenceFailure(err))
	assert.True(t, service.IsPersistenceFailure(svc.Shutdown(context.Background())))
}

func TestGoalService_ReportPersistenceFailure(t *testing.T) {
	f := newFixture(t, nil)

	f.svc.ReportPersistenceFailure(nil)
	assert.NoError(t, f.svc.LastPersistenceError())

	f.svc.ReportPersistenceFailure(errors.New("async write failed"))
	assert.True(t, service.IsPersistenceFailure(f.svc.LastPersistenceError()))
}

func TestGoalService_CompletionEvent(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	g := f.add(t, "celebrate", goal.PriorityHigh)

	events, unsubscribe := f.svc.Subscribe(8)
	require.NoError(t, f.svc.ToggleComplete(ctx, g.ID))
	require.NoError(t, f.svc.RestoreGoal(ctx, g.ID))
	unsubscribe()

	var types []service.EventType
	for e := range events {
		types = append(types, e.Type)
		if e.Type == service.EventGoalCompleted {
			assert.Equal(t, g.ID, e.GoalID)
			require.NotNil(t, e.Goal)
			assert.True(t, e.Goal.IsCompleted)
		}
	}
	assert.Equal(t, []service.EventType{service.EventGoalCompleted, service.EventGoalRestored}, types)
}

func TestGoalService_Shutdown_PersistsTimerTime(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	g := f.add(t, "work", goal.PriorityHigh)

	require.NoError(t, f.svc.StartTimer(ctx, g.ID))
	f.clock.Advance(42 * time.Second)
	require.NoError(t, f.svc.Shutdown(ctx))

	state, err := f.store.Load(ctx)
	require.NoError(t, err)
	require.Len(t, state.Goals, 1)
	assert.Equal(t, 42.0, state.Goals[0].TimeSpent)
	_, running := f.svc.ActiveGoalID()
	assert.False(t, running)
}

func TestGoalService_Steps(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	g := f.add(t, "with steps", goal.PriorityMedium)

	step, err := f.svc.AddStep(ctx, g.ID, "first")
	require.NoError(t, err)
	_, err = f.svc.AddStep(ctx, g.ID, " ")
	assert.True(t, service.IsValidation(err))
	_, err = f.svc.AddStep(ctx, uuid.New(), "orphan")
	assert.True(t, service.IsNotFound(err))

	require.NoError(t, f.svc.ToggleStep(ctx, g.ID, step.ID))
	got, err := f.svc.GetGoal(g.ID)
	require.NoError(t, err)
	require.Len(t, got.Steps, 1)
	assert.True(t, got.Steps[0].IsCompleted)
	assert.False(t, got.IsCompleted)

	assert.True(t, service.IsNotFound(f.svc.ToggleStep(ctx, g.ID, uuid.New())))

	require.NoError(t, f.svc.RemoveStep(ctx, g.ID, step.ID))
	got, err = f.svc.GetGoal(g.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Steps)
}

func TestGoalService_Stats(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	a := f.add(t, "a", goal.PriorityLow)
	b := f.add(t, "b", goal.PriorityLow)
	f.add(t, "c", goal.PriorityLow)

	require.NoError(t, f.svc.StartTimer(ctx, a.ID))
	f.clock.Advance(30 * time.Second)
	require.NoError(t, f.svc.ToggleComplete(ctx, a.ID))
	require.NoError(t, f.svc.ToggleComplete(ctx, b.ID))

	stats := f.svc.Stats()
	assert.Equal(t, 1, stats.ActiveGoals)
	assert.Equal(t, 2, stats.TotalCompleted)
	assert.Equal(t, 2, stats.CompletedToday)
	assert.Equal(t, 1, stats.CurrentStreak)
	assert.Equal(t, 30.0, stats.TotalTimeSpent)
}

func TestGoalService_WeeklyProgress(t *testing.T) {
	initial := goal.NewState()
	initial.Completed = []goal.Goal{
		{ID: uuid.New(), Title: "today", DateCompleted: daysAgo(0)},
		{ID: uuid.New(), Title: "today too", DateCompleted: daysAgo(0)},
		{ID: uuid.New(), Title: "two days ago", DateCompleted: daysAgo(2)},
		{ID: uuid.New(), Title: "too old", DateCompleted: daysAgo(7)},
	}
	f := newFixture(t, initial)

	progress := f.svc.WeeklyProgress()
	require.Len(t, progress, 7)
	assert.Equal(t, 2, progress[6].Count)
	assert.Equal(t, 1, progress[4].Count)
	assert.Equal(t, 0, progress[0].Count)
	assert.True(t, progress[0].Date.Before(progress[6].Date))
}

// healthStore - хранилище с проверкой соединения
type healthStore struct {
	MockGoalStore
	healthErr error
}

func (h *healthStore) HealthCheck(ctx context.Context) error {
	return h.healthErr
}

func TestGoalService_HealthCheck(t *testing.T) {
	t.Run("healthy store", func(t *testing.T) {
		f := newFixture(t, nil)
		assert.NoError(t, f.svc.HealthCheck(context.Background()))
	})

	t.Run("last write failure is reported", func(t *testing.T) {
		f := newFixture(t, nil)
		f.svc.ReportPersistenceFailure(errors.New("async write failed"))
		assert.True(t, service.IsPersistenceFailure(f.svc.HealthCheck(context.Background())))
	})

	t.Run("store checker error", func(t *testing.T) {
		store := &healthStore{healthErr: errors.New("connection refused")}
		store.On("Load", mock.Anything).Return(goal.NewState(), nil)

		svc := service.NewGoalService(store, service.WithScheduler(&manualScheduler{}))
		require.NoError(t, svc.Load(context.Background()))

		err := svc.HealthCheck(context.Background())
		assert.True(t, service.IsPersistenceFailure(err))
		assert.ErrorContains(t, err, "connection refused")
	})
}
