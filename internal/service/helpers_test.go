package service_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"goalTracker/internal/models/goal"
	"goalTracker/internal/repository/goal/inmemory"
	"goalTracker/internal/service"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockGoalStore - мок хранилища
type MockGoalStore struct {
	mock.Mock
}

func (m *MockGoalStore) Load(ctx context.Context) (*goal.State, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*goal.State), args.Error(1)
}

func (m *MockGoalStore) Save(ctx context.Context, state *goal.State) error {
	args := m.Called(ctx, state)
	return args.Error(0)
}

var _ service.GoalStore = (*MockGoalStore)(nil)

// fakeClock - управляемые часы
type fakeClock struct {
	mtx sync.Mutex
	now time.Time
}

func newFakeClock(now time.Time) *fakeClock {
	return &fakeClock{now: now}
}

func (c *fakeClock) Now() time.Time {
	c.mtx.Lock()
	defer c.mtx.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mtx.Lock()
	defer c.mtx.Unlock()
	c.now = c.now.Add(d)
}

// manualScheduler запоминает задачи; тики вызываются из теста через Fire
type manualScheduler struct {
	mtx   sync.Mutex
	tasks []*scheduledTask
}

type scheduledTask struct {
	interval  time.Duration
	tick      func()
	cancelled bool
}

func (m *manualScheduler) Schedule(interval time.Duration, tick func()) func() {
	m.mtx.Lock()
	defer m.mtx.Unlock()

	task := &scheduledTask{interval: interval, tick: tick}
	m.tasks = append(m.tasks, task)
	return func() {
		m.mtx.Lock()
		defer m.mtx.Unlock()
		task.cancelled = true
	}
}

// Live - задачи, которые ещё не отменены
func (m *manualScheduler) Live() []*scheduledTask {
	m.mtx.Lock()
	defer m.mtx.Unlock()

	var res []*scheduledTask
	for _, task := range m.tasks {
		if !task.cancelled {
			res = append(res, task)
		}
	}
	return res
}

// FireAll вызывает tick у всех задач, включая отменённые: отменённая задача
// не должна ничего менять
func (m *manualScheduler) FireAll() {
	m.mtx.Lock()
	tasks := append([]*scheduledTask(nil), m.tasks...)
	m.mtx.Unlock()

	for _, task := range tasks {
		task.tick()
	}
}

var baseTime = time.Date(2026, 10, 17, 10, 0, 0, 0, time.UTC)

type fixture struct {
	svc       *service.GoalService
	store     *inmemory.GoalStorage
	clock     *fakeClock
	scheduler *manualScheduler
}

func newFixture(t *testing.T, initial *goal.State) *fixture {
	t.Helper()

	f := &fixture{
		store:     inmemory.NewGoalStorageWith(initial),
		clock:     newFakeClock(baseTime),
		scheduler: &manualScheduler{},
	}
	f.svc = service.NewGoalService(f.store,
		service.WithClock(f.clock),
		service.WithScheduler(f.scheduler),
		service.WithTickInterval(time.Second),
	)
	require.NoError(t, f.svc.Load(context.Background()))
	return f
}

func (f *fixture) add(t *testing.T, title string, priority goal.Priority) goal.Goal {
	t.Helper()
	g, err := f.svc.AddGoal(context.Background(), title, priority)
	require.NoError(t, err)
	return *g
}

func daysAgo(n int) *time.Time {
	at := baseTime.AddDate(0, 0, -n)
	return &at
}
