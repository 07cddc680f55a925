package service

import (
	"slices"
	"time"

	"goalTracker/internal/models/goal"

	"github.com/google/uuid"
)

// SortGoals - чистая проекция активного списка: приоритет (high > medium > low),
// затем дата создания, затем порядок добавления
func SortGoals(goals []goal.Goal) []goal.Goal {
	res := goal.CloneList(goals)
	slices.SortStableFunc(res, func(a, b goal.Goal) int {
		if a.Priority.Rank() != b.Priority.Rank() {
			return b.Priority.Rank() - a.Priority.Rank()
		}
		return a.DateCreated.Compare(b.DateCreated)
	})
	return res
}

// Goals возвращает отсортированные активные цели с учётом идущего таймера
func (s *GoalService) Goals() []goal.Goal {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	res := SortGoals(s.state.Goals)
	if s.activeGoalID != uuid.Nil {
		live := s.liveElapsedLocked()
		for i := range res {
			if res[i].ID == s.activeGoalID {
				res[i].TimeSpent += live
			}
		}
	}
	return res
}

// Completed возвращает архив, новые сверху
func (s *GoalService) Completed() []goal.Goal {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	return goal.CloneList(s.state.Completed)
}

func (s *GoalService) GetGoal(id uuid.UUID) (*goal.Goal, error) {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if idx := indexOf(s.state.Goals, id); idx >= 0 {
		res := s.state.Goals[idx].Clone()
		if id == s.activeGoalID {
			res.TimeSpent += s.liveElapsedLocked()
		}
		return &res, nil
	}
	if idx := indexOf(s.state.Completed, id); idx >= 0 {
		return cloneGoal(s.state.Completed[idx]), nil
	}
	return nil, NewNotFound(resourceGoal, id.String())
}

// TimeSpent возвращает накопленное время цели в секундах
func (s *GoalService) TimeSpent(id uuid.UUID) (float64, error) {
	g, err := s.GetGoal(id)
	if err != nil {
		return 0, err
	}
	return g.TimeSpent, nil
}

func (s *GoalService) Streak() int {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	return s.state.Settings.Streak
}

func (s *GoalService) Settings() goal.Settings {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	return s.state.Clone().Settings
}

// время с последнего тика, ещё не начисленное цели таймера
func (s *GoalService) liveElapsedLocked() float64 {
	elapsed := s.clock.Now().Sub(s.lastTickAt)
	if elapsed <= 0 {
		return 0
	}
	return elapsed.Seconds()
}

type Stats struct {
	ActiveGoals    int     `json:"activeGoals"`
	TotalCompleted int     `json:"totalCompleted"`
	CompletedToday int     `json:"completedToday"`
	CurrentStreak  int     `json:"currentStreak"`
	TotalTimeSpent float64 `json:"totalTimeSpent"`
}

type DailyCount struct {
	Date  time.Time `json:"date"`
	Count int       `json:"count"`
}

func (s *GoalService) Stats() Stats {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	now := s.clock.Now()
	stats := Stats{
		ActiveGoals:    len(s.state.Goals),
		TotalCompleted: len(s.state.Completed),
		CurrentStreak:  s.state.Settings.Streak,
	}
	for _, g := range s.state.Goals {
		stats.TotalTimeSpent += g.TimeSpent
	}
	if s.activeGoalID != uuid.Nil {
		stats.TotalTimeSpent += s.liveElapsedLocked()
	}
	for _, g := range s.state.Completed {
		stats.TotalTimeSpent += g.TimeSpent
		if g.DateCompleted != nil && CalendarDaysBetween(*g.DateCompleted, now) == 0 {
			stats.CompletedToday++
		}
	}
	return stats
}

// WeeklyProgress считает завершения за последние 7 календарных дней, от старых к новым
func (s *GoalService) WeeklyProgress() []DailyCount {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	now := s.clock.Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	res := make([]DailyCount, 7)
	for i := range res {
		res[i].Date = today.AddDate(0, 0, i-6)
	}
	for _, g := range s.state.Completed {
		if g.DateCompleted == nil {
			continue
		}
		days := CalendarDaysBetween(*g.DateCompleted, now)
		if days >= 0 && days < 7 {
			res[6-days].Count++
		}
	}
	return res
}
