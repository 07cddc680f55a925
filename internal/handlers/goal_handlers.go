package handlers

import (
	"net/http"
	"strings"
	"time"

	"goalTracker/internal/handlers/dto"
	"goalTracker/internal/logger"
	"goalTracker/internal/models/goal"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const serviceName = "goal-tracker"

type GoalHandler struct {
	GoalService Service
}

func NewGoalHandler(goalService Service) *GoalHandler {
	return &GoalHandler{
		GoalService: goalService,
	}
}

func (h *GoalHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	if err := h.GoalService.HealthCheck(r.Context()); err != nil {
		logger.Warn("HTTP: Health check не пройден", zap.Error(err))
		responseWithJSON(w, http.StatusServiceUnavailable,
			toPayload("status", "unavailable"),
			toPayload("service", serviceName),
			toPayload("error", err.Error()),
		)
		return
	}
	responseWithJSON(w, http.StatusOK,
		toPayload("status", "ok"),
		toPayload("service", serviceName),
	)
}

// ListGoals - активные цели в порядке приоритета
func (h *GoalHandler) ListGoals(w http.ResponseWriter, r *http.Request) {
	activeID, _ := h.GoalService.ActiveGoalID()
	responseWithBody(w, http.StatusOK, dto.FromGoalList(h.GoalService.Goals(), activeID))
}

func (h *GoalHandler) ListCompleted(w http.ResponseWriter, r *http.Request) {
	responseWithBody(w, http.StatusOK, dto.FromGoalList(h.GoalService.Completed(), uuid.Nil))
}

func (h *GoalHandler) PostGoal(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var request dto.CreateGoalRequest
	if !decodeJSON(w, r, &request) {
		return
	}

	if strings.TrimSpace(request.Title) == "" {
		logger.Warn("HTTP: Ошибка валидации",
			zap.String("field", "title"),
			zap.String("error", "empty_field"),
			zap.String("client_ip", r.RemoteAddr))

		responseWithError(w, http.StatusBadRequest, "название не может быть пустым")
		return
	}

	priority, err := goal.ParsePriority(request.Priority)
	if err != nil {
		logger.Warn("HTTP: Ошибка валидации",
			zap.String("field", "priority"),
			zap.String("error", "wrong_value"),
			zap.String("client_ip", r.RemoteAddr))

		responseWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	created, err := h.GoalService.AddGoal(r.Context(), request.Title, priority)
	if err != nil {
		handleServiceError(w, r, err, "create_goal")
		return
	}

	logger.Info("HTTP: Цель создана",
		zap.String("goal_id", created.ID.String()),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusCreated))

	responseWithBody(w, http.StatusCreated, dto.FromGoal(created, false))
}

func (h *GoalHandler) GetGoal(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id")
	if !ok {
		return
	}
	h.respondGoal(w, r, id, http.StatusOK)
}

func (h *GoalHandler) UpdateGoal(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id")
	if !ok {
		return
	}

	var request dto.UpdateGoalRequest
	if !decodeJSON(w, r, &request) {
		return
	}

	var options []goal.GoalOption
	if request.Title != nil {
		opt := goal.WithTitle(*request.Title)
		if opt == nil {
			responseWithError(w, http.StatusBadRequest, "название не может быть пустым")
			return
		}
		options = append(options, opt)
	}
	if request.Priority != nil {
		priority, err := goal.ParsePriority(*request.Priority)
		if err != nil {
			responseWithError(w, http.StatusBadRequest, err.Error())
			return
		}
		options = append(options, goal.WithPriority(priority))
	}
	if request.Steps != nil {
		options = append(options, goal.WithSteps(dto.ToSteps(*request.Steps)))
	}

	updated, err := h.GoalService.UpdateGoalByID(r.Context(), id, options...)
	if err != nil {
		handleServiceError(w, r, err, "update_goal")
		return
	}

	activeID, _ := h.GoalService.ActiveGoalID()
	responseWithBody(w, http.StatusOK, dto.FromGoal(updated, activeID == id))
}

func (h *GoalHandler) DeleteGoal(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id")
	if !ok {
		return
	}
	if err := h.GoalService.DeleteGoal(r.Context(), id); err != nil {
		handleServiceError(w, r, err, "delete_goal")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ToggleComplete завершает активную цель или возвращает завершённую
func (h *GoalHandler) ToggleComplete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id")
	if !ok {
		return
	}
	if err := h.GoalService.ToggleComplete(r.Context(), id); err != nil {
		handleServiceError(w, r, err, "toggle_complete")
		return
	}
	h.respondGoal(w, r, id, http.StatusOK)
}

func (h *GoalHandler) RestoreGoal(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id")
	if !ok {
		return
	}
	if err := h.GoalService.RestoreGoal(r.Context(), id); err != nil {
		handleServiceError(w, r, err, "restore_goal")
		return
	}
	h.respondGoal(w, r, id, http.StatusOK)
}

func (h *GoalHandler) ToggleTimer(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id")
	if !ok {
		return
	}
	if err := h.GoalService.ToggleTimer(r.Context(), id); err != nil {
		handleServiceError(w, r, err, "toggle_timer")
		return
	}
	h.respondTimer(w)
}

func (h *GoalHandler) StartTimer(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id")
	if !ok {
		return
	}
	if err := h.GoalService.StartTimer(r.Context(), id); err != nil {
		handleServiceError(w, r, err, "start_timer")
		return
	}
	h.respondTimer(w)
}

func (h *GoalHandler) StopTimer(w http.ResponseWriter, r *http.Request) {
	if err := h.GoalService.StopTimer(r.Context()); err != nil {
		handleServiceError(w, r, err, "stop_timer")
		return
	}
	h.respondTimer(w)
}

func (h *GoalHandler) GetTimer(w http.ResponseWriter, r *http.Request) {
	h.respondTimer(w)
}

func (h *GoalHandler) PostStep(w http.ResponseWriter, r *http.Request) {
	goalID, ok := parseID(w, r, "id")
	if !ok {
		return
	}

	var request dto.StepRequest
	if !decodeJSON(w, r, &request) {
		return
	}

	step, err := h.GoalService.AddStep(r.Context(), goalID, request.Title)
	if err != nil {
		handleServiceError(w, r, err, "add_step")
		return
	}
	responseWithBody(w, http.StatusCreated, step)
}

func (h *GoalHandler) ToggleStep(w http.ResponseWriter, r *http.Request) {
	goalID, ok := parseID(w, r, "id")
	if !ok {
		return
	}
	stepID, ok := parseID(w, r, "stepID")
	if !ok {
		return
	}
	if err := h.GoalService.ToggleStep(r.Context(), goalID, stepID); err != nil {
		handleServiceError(w, r, err, "toggle_step")
		return
	}
	h.respondGoal(w, r, goalID, http.StatusOK)
}

func (h *GoalHandler) DeleteStep(w http.ResponseWriter, r *http.Request) {
	goalID, ok := parseID(w, r, "id")
	if !ok {
		return
	}
	stepID, ok := parseID(w, r, "stepID")
	if !ok {
		return
	}
	if err := h.GoalService.RemoveStep(r.Context(), goalID, stepID); err != nil {
		handleServiceError(w, r, err, "remove_step")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *GoalHandler) GetStreak(w http.ResponseWriter, r *http.Request) {
	responseWithBody(w, http.StatusOK, dto.StreakResponse{Streak: h.GoalService.Streak()})
}

func (h *GoalHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	responseWithBody(w, http.StatusOK, dto.FromStats(h.GoalService.Stats(), h.GoalService.WeeklyProgress()))
}

func (h *GoalHandler) respondGoal(w http.ResponseWriter, r *http.Request, id uuid.UUID, code int) {
	g, err := h.GoalService.GetGoal(id)
	if err != nil {
		handleServiceError(w, r, err, "get_goal")
		return
	}
	activeID, running := h.GoalService.ActiveGoalID()
	responseWithBody(w, code, dto.FromGoal(g, running && activeID == id))
}

func (h *GoalHandler) respondTimer(w http.ResponseWriter) {
	resp := dto.TimerResponse{TimeFormatted: goal.FormatDuration(0)}

	if id, running := h.GoalService.ActiveGoalID(); running {
		resp.Running = true
		resp.GoalID = &id
		if spent, err := h.GoalService.TimeSpent(id); err == nil {
			resp.TimeSpent = spent
			resp.TimeFormatted = goal.FormatDuration(spent)
		}
	}
	responseWithBody(w, http.StatusOK, resp)
}
