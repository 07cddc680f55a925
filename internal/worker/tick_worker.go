package worker

import (
	"context"
	"time"

	"goalTracker/internal/logger"

	"go.uber.org/zap"
)

const DefaultTickInterval = time.Second

// TickWorker вызывает tick с заданным интервалом, пока не отменён контекст
type TickWorker struct {
	interval time.Duration
	tick     func()
}

func NewTickWorker(interval *time.Duration, tick func()) *TickWorker {
	var intervalToSet time.Duration
	if interval == nil || *interval <= 0 {
		intervalToSet = DefaultTickInterval
	} else {
		intervalToSet = *interval
	}
	return &TickWorker{
		interval: intervalToSet,
		tick:     tick,
	}
}

func (w *TickWorker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	logger.Debug("Worker: Таймер запущен", zap.Duration("interval", w.interval))
	for {
		select {
		case <-ticker.C:
			w.tick()
		case <-ctx.Done():
			logger.Debug("Worker: Таймер остановлен")
			return
		}
	}
}

// TickScheduler запускает по одному TickWorker на каждый вызов Schedule
type TickScheduler struct {
	parent context.Context
}

func NewTickScheduler(ctx context.Context) *TickScheduler {
	if ctx == nil {
		ctx = context.Background()
	}
	return &TickScheduler{parent: ctx}
}

func (s *TickScheduler) Schedule(interval time.Duration, tick func()) func() {
	ctx, cancel := context.WithCancel(s.parent)
	w := NewTickWorker(&interval, tick)
	go w.Start(ctx)
	return cancel
}
