package handlers

import (
	"context"

	"goalTracker/internal/models/goal"
	"goalTracker/internal/service"

	"github.com/google/uuid"
)

// Service - то, что HTTP-слой требует от движка целей
type Service interface {
	HealthCheck(context.Context) error

	Goals() []goal.Goal
	Completed() []goal.Goal
	GetGoal(uuid.UUID) (*goal.Goal, error)
	AddGoal(context.Context, string, goal.Priority) (*goal.Goal, error)
	UpdateGoalByID(context.Context, uuid.UUID, ...goal.GoalOption) (*goal.Goal, error)
	DeleteGoal(context.Context, uuid.UUID) error
	ToggleComplete(context.Context, uuid.UUID) error
	RestoreGoal(context.Context, uuid.UUID) error

	StartTimer(context.Context, uuid.UUID) error
	StopTimer(context.Context) error
	ToggleTimer(context.Context, uuid.UUID) error
	ActiveGoalID() (uuid.UUID, bool)
	TimeSpent(uuid.UUID) (float64, error)

	AddStep(context.Context, uuid.UUID, string) (*goal.Step, error)
	ToggleStep(context.Context, uuid.UUID, uuid.UUID) error
	RemoveStep(context.Context, uuid.UUID, uuid.UUID) error

	Streak() int
	Stats() service.Stats
	WeeklyProgress() []service.DailyCount
}

var _ Service = (*service.GoalService)(nil)
