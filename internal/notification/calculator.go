// Package notification вычисляет состояние уведомления задачи по её дедлайну.
//
// Дедлайн и текущее время сводятся к календарной дате в часовом поясе калькулятора,
// поэтому время суток и переход на летнее время не сдвигают границу "сегодня".
package notification

import (
	"time"

	"taskManager/internal/models/task"
)

// State - пара производных полей задачи
type State struct {
	Status  int
	Visible bool
}

type Calculator struct {
	loc *time.Location
}

// NewCalculator считает даты в loc; nil означает UTC
func NewCalculator(loc *time.Location) Calculator {
	if loc == nil {
		loc = time.UTC
	}
	return Calculator{loc: loc}
}

// Compute возвращает число календарных дней от now до deadline (отрицательное для
// просроченных) и показывает уведомление только в день дедлайна
func (c Calculator) Compute(deadline, now time.Time) State {
	days := c.civilDay(deadline) - c.civilDay(now)
	return State{
		Status:  days,
		Visible: days == 0,
	}
}

// Apply пересчитывает оба поля уведомления сразу
func (c Calculator) Apply(t *task.Task, now time.Time) {
	state := c.Compute(t.Deadline, now)
	t.NotificationStatus = state.Status
	t.NotificationVisualization = state.Visible
}

func (c Calculator) Location() *time.Location {
	if c.loc == nil {
		return time.UTC
	}
	return c.loc
}

// civilDay - номер календарного дня t в поясе калькулятора, считая от эпохи Unix
func (c Calculator) civilDay(t time.Time) int {
	y, m, d := t.In(c.Location()).Date()
	midnight := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return int(midnight.Unix() / 86400)
}
