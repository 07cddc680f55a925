package logger_test

import (
	"errors"
	"testing"

	"goalTracker/internal/logger"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestLogger_DefaultIsUsable(t *testing.T) {
	assert.NotPanics(t, func() {
		logger.Info("Test: сообщение до инициализации")
		logger.Sync()
	})
}

func TestLogger_Error(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	logger.Set(zap.New(core))
	defer logger.Set(nil)

	logger.Error("Service: ошибка", errors.New("boom"), zap.String("goal_id", "42"))
	logger.Warn("Service: предупреждение")

	entries := logs.All()
	assert.Len(t, entries, 2)
	assert.Equal(t, zapcore.ErrorLevel, entries[0].Level)
	assert.Equal(t, "boom", entries[0].ContextMap()["error"])
	assert.Equal(t, "42", entries[0].ContextMap()["goal_id"])
	assert.Equal(t, zapcore.WarnLevel, entries[1].Level)
}

func TestLogger_Init(t *testing.T) {
	defer logger.Set(nil)

	assert.NoError(t, logger.Init(true))
	assert.NoError(t, logger.Init(false))
}
