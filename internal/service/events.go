package service

import (
	"sync"
	"time"

	"goalTracker/internal/models/goal"

	"github.com/google/uuid"
)

type EventType string

const (
	EventGoalCompleted     EventType = "goal.completed"
	EventGoalRestored      EventType = "goal.restored"
	EventTimerStarted      EventType = "timer.started"
	EventTimerStopped      EventType = "timer.stopped"
	EventPersistenceFailed EventType = "persistence.failed"
)

type Event struct {
	Type   EventType
	GoalID uuid.UUID
	Goal   *goal.Goal
	At     time.Time
	Err    error
}

// eventBus рассылает события подписчикам не блокируясь:
// если буфер подписчика полон, событие для него теряется
type eventBus struct {
	mtx    sync.Mutex
	nextID int
	subs   map[int]chan Event
}

func newEventBus() *eventBus {
	return &eventBus{subs: make(map[int]chan Event)}
}

func (b *eventBus) subscribe(buffer int) (<-chan Event, func()) {
	if buffer < 1 {
		buffer = 1
	}

	b.mtx.Lock()
	defer b.mtx.Unlock()

	id := b.nextID
	b.nextID++
	ch := make(chan Event, buffer)
	b.subs[id] = ch

	var once sync.Once
	unsubscribe := func() {
		once.Do(func() {
			b.mtx.Lock()
			defer b.mtx.Unlock()
			delete(b.subs, id)
			close(ch)
		})
	}
	return ch, unsubscribe
}

func (b *eventBus) publish(e Event) {
	b.mtx.Lock()
	defer b.mtx.Unlock()

	for _, ch := range b.subs {
		select {
		case ch <- e:
		default:
		}
	}
}

// Subscribe возвращает канал событий сервиса и функцию отписки
func (s *GoalService) Subscribe(buffer int) (<-chan Event, func()) {
	return s.events.subscribe(buffer)
}
