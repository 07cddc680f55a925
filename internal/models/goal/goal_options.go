package goal

import "strings"

type GoalOption func(*Goal)

func WithTitle(title string) GoalOption {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil
	}
	return func(g *Goal) {
		g.Title = title
	}
}

func WithPriority(priority Priority) GoalOption {
	if !priority.Valid() {
		return nil
	}
	return func(g *Goal) {
		g.Priority = priority
	}
}

func WithSteps(steps []Step) GoalOption {
	if steps == nil {
		return nil
	}
	return func(g *Goal) {
		g.Steps = make([]Step, len(steps))
		copy(g.Steps, steps)
	}
}

// Apply применяет опции, пропуская пустые
func (g *Goal) Apply(options ...GoalOption) {
	for _, opt := range options {
		if opt != nil {
			opt(g)
		}
	}
}
