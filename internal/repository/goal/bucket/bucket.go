// Package bucket описывает три логические записи состояния
// (активные цели, архив, настройки) и их JSON-представление.
package bucket

import (
	"encoding/json"
	"fmt"

	"goalTracker/internal/logger"
	"goalTracker/internal/models/goal"
	repo "goalTracker/internal/repository"

	"go.uber.org/zap"
)

const (
	Goals     = "goals"
	Completed = "completed_goals"
	Settings  = "settings"
)

// Names - порядок записи наборов
var Names = []string{Goals, Completed, Settings}

// Encode кодирует состояние в три JSON-документа
func Encode(state *goal.State, indent bool) (map[string][]byte, error) {
	payloads := map[string]any{
		Goals:     nonNil(state.Goals),
		Completed: nonNil(state.Completed),
		Settings:  state.Settings,
	}

	res := make(map[string][]byte, len(payloads))
	for name, payload := range payloads {
		var (
			data []byte
			err  error
		)
		if indent {
			data, err = json.MarshalIndent(payload, "", "  ")
		} else {
			data, err = json.Marshal(payload)
		}
		if err != nil {
			return nil, fmt.Errorf("кодирование %s: %w", name, err)
		}
		res[name] = data
	}
	return res, nil
}

// Decode собирает состояние из документов. Отсутствующий или повреждённый
// документ даёт пустой набор.
func Decode(docs map[string][]byte) *goal.State {
	state := goal.NewState()

	var goals []goal.Goal
	if decode(Goals, docs[Goals], &goals) && goals != nil {
		state.Goals = goals
	}

	var completed []goal.Goal
	if decode(Completed, docs[Completed], &completed) && completed != nil {
		state.Completed = completed
	}

	var settings goal.Settings
	if decode(Settings, docs[Settings], &settings) {
		state.Settings = settings
	}
	return state
}

func decode(name string, data []byte, target any) bool {
	if len(data) == 0 {
		return false
	}
	if err := json.Unmarshal(data, target); err != nil {
		logger.Warn("Repository: Повреждённые данные, считаем набор пустым",
			zap.String("bucket", name),
			zap.Error(fmt.Errorf("%w: %v", repo.ErrCorrupt, err)))
		return false
	}
	return true
}

func nonNil(goals []goal.Goal) []goal.Goal {
	if goals == nil {
		return []goal.Goal{}
	}
	return goals
}
