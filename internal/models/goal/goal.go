package goal

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

type Goal struct {
	ID            uuid.UUID  `json:"id"`
	Title         string     `json:"title"`
	Priority      Priority   `json:"priority"`
	TimeSpent     float64    `json:"timeSpent"` // секунды
	IsCompleted   bool       `json:"isCompleted"`
	DateCreated   time.Time  `json:"dateCreated"`
	DateCompleted *time.Time `json:"dateCompleted,omitempty"`
	Steps         []Step     `json:"steps"`
}

// шаг цели, выполняется независимо от самой цели
type Step struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	IsCompleted bool      `json:"isCompleted"`
}

type Priority string

const PriorityHigh Priority = "high"
const PriorityMedium Priority = "medium"
const PriorityLow Priority = "low"

// Rank задаёт порядок сортировки: чем больше, тем выше в списке
func (p Priority) Rank() int {
	switch p {
	case PriorityHigh:
		return 3
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 1
	default:
		return 0
	}
}

func (p Priority) Valid() bool {
	return p.Rank() > 0
}

func ParsePriority(s string) (Priority, error) {
	if s == "" {
		return PriorityMedium, nil
	}
	p := Priority(s)
	if !p.Valid() {
		return "", fmt.Errorf("неизвестный приоритет %q", s)
	}
	return p, nil
}

// Settings хранит состояние серии
type Settings struct {
	Streak             int        `json:"streak"`
	LastCompletionDate *time.Time `json:"lastCompletionDate,omitempty"`
}

// State - всё, что сохраняется между запусками: активные цели, архив и настройки
type State struct {
	Goals     []Goal   `json:"goals"`
	Completed []Goal   `json:"completed"`
	Settings  Settings `json:"settings"`
}

func NewState() *State {
	return &State{
		Goals:     []Goal{},
		Completed: []Goal{},
	}
}

// Clone возвращает глубокую копию, чтобы хранилище не делило память с сервисом
func (s *State) Clone() *State {
	res := &State{
		Goals:     CloneList(s.Goals),
		Completed: CloneList(s.Completed),
		Settings:  s.Settings,
	}
	if s.Settings.LastCompletionDate != nil {
		last := *s.Settings.LastCompletionDate
		res.Settings.LastCompletionDate = &last
	}
	return res
}

func (g Goal) Clone() Goal {
	res := g
	if g.DateCompleted != nil {
		done := *g.DateCompleted
		res.DateCompleted = &done
	}
	res.Steps = make([]Step, len(g.Steps))
	copy(res.Steps, g.Steps)
	return res
}

func CloneList(goals []Goal) []Goal {
	res := make([]Goal, len(goals))
	for i, g := range goals {
		res[i] = g.Clone()
	}
	return res
}

// FormatDuration форматирует затраченное время как H:MM:SS или MM:SS
func FormatDuration(seconds float64) string {
	total := int(seconds)
	if total < 0 {
		total = 0
	}
	hours := total / 3600
	minutes := total / 60 % 60
	secs := total % 60

	if hours > 0 {
		return fmt.Sprintf("%d:%02d:%02d", hours, minutes, secs)
	}
	return fmt.Sprintf("%02d:%02d", minutes, secs)
}
