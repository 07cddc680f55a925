package dto

import (
	"time"

	"goalTracker/internal/models/goal"
	"goalTracker/internal/service"

	"github.com/google/uuid"
)

type CreateGoalRequest struct {
	Title    string `json:"title"`
	Priority string `json:"priority"`
}

type UpdateGoalRequest struct {
	Title    *string        `json:"title,omitempty"`
	Priority *string        `json:"priority,omitempty"`
	Steps    *[]StepRequest `json:"steps,omitempty"`
}

type StepRequest struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	IsCompleted bool      `json:"isCompleted"`
}

type GoalResponse struct {
	ID            uuid.UUID   `json:"id"`
	Title         string      `json:"title"`
	Priority      string      `json:"priority"`
	TimeSpent     float64     `json:"timeSpent"`
	TimeFormatted string      `json:"timeFormatted"`
	IsCompleted   bool        `json:"isCompleted"`
	IsRunning     bool        `json:"isRunning"`
	DateCreated   time.Time   `json:"dateCreated"`
	DateCompleted *time.Time  `json:"dateCompleted,omitempty"`
	Steps         []goal.Step `json:"steps"`
}

type TimerResponse struct {
	Running       bool       `json:"running"`
	GoalID        *uuid.UUID `json:"goalId,omitempty"`
	TimeSpent     float64    `json:"timeSpent"`
	TimeFormatted string     `json:"timeFormatted"`
}

type StreakResponse struct {
	Streak int `json:"streak"`
}

type StatsResponse struct {
	service.Stats
	TotalTimeFormatted string               `json:"totalTimeFormatted"`
	Weekly             []service.DailyCount `json:"weekly"`
}

func ToSteps(steps []StepRequest) []goal.Step {
	res := make([]goal.Step, len(steps))
	for i, s := range steps {
		res[i] = goal.Step{ID: s.ID, Title: s.Title, IsCompleted: s.IsCompleted}
	}
	return res
}

// FromGoal собирает ответ; running - идёт ли таймер по этой цели
func FromGoal(g *goal.Goal, running bool) GoalResponse {
	steps := g.Steps
	if steps == nil {
		steps = []goal.Step{}
	}
	return GoalResponse{
		ID:            g.ID,
		Title:         g.Title,
		Priority:      string(g.Priority),
		TimeSpent:     g.TimeSpent,
		TimeFormatted: goal.FormatDuration(g.TimeSpent),
		IsCompleted:   g.IsCompleted,
		IsRunning:     running,
		DateCreated:   g.DateCreated,
		DateCompleted: g.DateCompleted,
		Steps:         steps,
	}
}

func FromGoalList(goals []goal.Goal, activeID uuid.UUID) []GoalResponse {
	result := make([]GoalResponse, len(goals))
	for i := range goals {
		result[i] = FromGoal(&goals[i], activeID != uuid.Nil && goals[i].ID == activeID)
	}
	return result
}

func FromStats(stats service.Stats, weekly []service.DailyCount) StatsResponse {
	return StatsResponse{
		Stats:              stats,
		TotalTimeFormatted: goal.FormatDuration(stats.TotalTimeSpent),
		Weekly:             weekly,
	}
}
