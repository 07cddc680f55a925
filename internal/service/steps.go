package service

import (
	"context"
	"strings"

	"goalTracker/internal/models/goal"

	"github.com/google/uuid"
)

func (s *GoalService) AddStep(ctx context.Context, goalID uuid.UUID, title string) (*goal.Step, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, NewValidationError("title", "название шага не может быть пустым")
	}

	s.mtx.Lock()
	defer s.mtx.Unlock()

	idx := indexOf(s.state.Goals, goalID)
	if idx < 0 {
		return nil, NewNotFound(resourceGoal, goalID.String())
	}

	step := goal.Step{ID: uuid.New(), Title: title}
	s.state.Goals[idx].Steps = append(s.state.Goals[idx].Steps, step)

	s.persistLocked(ctx)
	return &step, nil
}

// ToggleStep переключает выполнение шага, на саму цель не влияет
func (s *GoalService) ToggleStep(ctx context.Context, goalID, stepID uuid.UUID) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	g, stepIdx, err := s.findStepLocked(goalID, stepID)
	if err != nil {
		return err
	}
	g.Steps[stepIdx].IsCompleted = !g.Steps[stepIdx].IsCompleted

	s.persistLocked(ctx)
	return nil
}

func (s *GoalService) RemoveStep(ctx context.Context, goalID, stepID uuid.UUID) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	g, stepIdx, err := s.findStepLocked(goalID, stepID)
	if err != nil {
		return err
	}
	g.Steps = append(g.Steps[:stepIdx], g.Steps[stepIdx+1:]...)

	s.persistLocked(ctx)
	return nil
}

func (s *GoalService) findStepLocked(goalID, stepID uuid.UUID) (*goal.Goal, int, error) {
	idx := indexOf(s.state.Goals, goalID)
	if idx < 0 {
		return nil, -1, NewNotFound(resourceGoal, goalID.String())
	}
	g := &s.state.Goals[idx]
	for i := range g.Steps {
		if g.Steps[i].ID == stepID {
			return g, i, nil
		}
	}
	return nil, -1, NewNotFound(resourceStep, stepID.String())
}
