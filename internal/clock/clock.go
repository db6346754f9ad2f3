// Package clock отдаёт текущее время коду, который ставит или сравнивает даты.
package clock

import "time"

type Clock interface {
	Now() time.Time
}

type System struct{}

func (System) Now() time.Time {
	return time.Now()
}

// Func - адаптер для функции, в основном для фиксированного времени в тестах
type Func func() time.Time

func (f Func) Now() time.Time {
	return f()
}

// Fixed всегда возвращает t
func Fixed(t time.Time) Func {
	return func() time.Time { return t }
}
