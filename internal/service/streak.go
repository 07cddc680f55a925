package service

import (
	"time"

	"goalTracker/internal/models/goal"
)

// StreakGraceDays - сколько дней перерыва серия переживает без сброса
const StreakGraceDays = 3

// CalendarDaysBetween считает разницу в календарных днях между датами from и to
// в часовом поясе to. Время суток не учитывается.
func CalendarDaysBetween(from, to time.Time) int {
	f := from.In(to.Location())
	fromDay := time.Date(f.Year(), f.Month(), f.Day(), 0, 0, 0, 0, time.UTC)
	toDay := time.Date(to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, time.UTC)
	return int(toDay.Sub(fromDay).Hours() / 24)
}

// ApplyCompletion пересчитывает серию после завершения цели в момент now.
// Одно завершение в день засчитывается один раз; перерыв до StreakGraceDays дней
// даёт +1, больше - серия начинается заново с 1.
func ApplyCompletion(settings goal.Settings, now time.Time) goal.Settings {
	if settings.LastCompletionDate != nil {
		days := CalendarDaysBetween(*settings.LastCompletionDate, now)
		if days <= 0 {
			// уже засчитано сегодня (или часы ушли назад)
			return settings
		}
		if days > StreakGraceDays {
			settings.Streak = 1
		} else {
			settings.Streak++
		}
	} else {
		settings.Streak = 1
	}

	last := now
	settings.LastCompletionDate = &last
	return settings
}

// ApplyDecay проверяет серию при старте: после перерыва больше StreakGraceDays
// дней серия обнуляется. Дата последнего завершения не меняется.
func ApplyDecay(settings goal.Settings, now time.Time) (goal.Settings, bool) {
	if settings.LastCompletionDate == nil {
		return settings, false
	}
	if CalendarDaysBetween(*settings.LastCompletionDate, now) <= StreakGraceDays {
		return settings, false
	}
	if settings.Streak == 0 {
		return settings, false
	}
	settings.Streak = 0
	return settings, true
}
