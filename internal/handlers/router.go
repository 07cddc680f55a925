package handlers

import (
	"net/http"

	"goalTracker/internal/middleware"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
)

// NewRouter собирает маршруты API; allowedOrigins - источники для CORS
func NewRouter(h *GoalHandler, allowedOrigins []string) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Logging)
	r.Use(middleware.Recover)
	if len(allowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   allowedOrigins,
			AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
			AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
			ExposedHeaders:   []string{"X-Request-ID"},
			AllowCredentials: false,
			MaxAge:           300,
		}))
	}

	r.Route("/goals", func(r chi.Router) {
		r.Get("/", h.ListGoals) // GET /goals
		r.Post("/", h.PostGoal) // POST /goals

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.GetGoal)
			r.Put("/", h.UpdateGoal)
			r.Delete("/", h.DeleteGoal)

			r.Post("/complete", h.ToggleComplete) // переключение
			r.Post("/restore", h.RestoreGoal)

			r.Post("/timer", h.ToggleTimer) // переключение
			r.Post("/timer/start", h.StartTimer)

			r.Post("/steps", h.PostStep)
			r.Post("/steps/{stepID}/toggle", h.ToggleStep)
			r.Delete("/steps/{stepID}", h.DeleteStep)
		})
	})

	r.Get("/timer", h.GetTimer)
	r.Post("/timer/stop", h.StopTimer)

	r.Get("/completed", h.ListCompleted)
	r.Get("/streak", h.GetStreak)
	r.Get("/stats", h.GetStats)
	r.Get("/health", h.HealthCheck)

	return r
}
