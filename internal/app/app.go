package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"goalTracker/internal/config"
	"goalTracker/internal/handlers"
	"goalTracker/internal/logger"

	"github.com/go-chi/chi/v5"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

type App struct {
	config    *config.Config
	server    *http.Server
	router    *chi.Mux
	engine    *Engine
	shutdowns []shutdownFunc // функции для graceful shutdown
}

func New(cfg *config.Config) *App {
	return &App{
		config:    cfg,
		shutdowns: make([]shutdownFunc, 0),
	}
}

func (a *App) Init(ctx context.Context) (*App, error) {
	if err := logger.Init(a.config.Logging.Development); err != nil {
		return nil, fmt.Errorf("инициализация логгера: %w", err)
	}
	a.shutdowns = append(a.shutdowns, func(context.Context) error {
		logger.Info("Завершение работы логгирования...")
		logger.Sync()
		return nil
	})

	engine, err := NewEngine(ctx, a.config)
	if err != nil {
		return nil, multierr.Append(fmt.Errorf("инициализация сервиса: %w", err), a.shutdown(ctx))
	}
	a.engine = engine
	a.shutdowns = append(a.shutdowns, engine.Close)

	handler := handlers.NewGoalHandler(engine.Service)
	a.router = handlers.NewRouter(handler, a.config.Server.AllowedOrigins)

	a.server = &http.Server{
		Addr:              a.config.GetServerAddr(),
		Handler:           a.router,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return a, nil
}

// Handler нужен тестам, чтобы ходить в роутер без сети
func (a *App) Handler() http.Handler {
	return a.router
}

// Run обслуживает запросы, пока не отменён ctx, затем завершает всё по порядку
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		logger.Info("App: Сервер запущен", zap.String("addr", a.server.Addr))
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	var runErr error
	select {
	case <-ctx.Done():
		logger.Info("App: Получен сигнал завершения")
	case err := <-errCh:
		if err != nil {
			runErr = fmt.Errorf("сервер: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.config.Server.ShutdownTimeout)
	defer cancel()

	if err := a.server.Shutdown(shutdownCtx); err != nil {
		runErr = multierr.Append(runErr, fmt.Errorf("остановка сервера: %w", err))
	}
	return multierr.Append(runErr, a.shutdown(shutdownCtx))
}

func (a *App) shutdown(ctx context.Context) error {
	var err error
	for i := len(a.shutdowns) - 1; i >= 0; i-- {
		err = multierr.Append(err, a.shutdowns[i](ctx))
	}
	a.shutdowns = nil
	return err
}
