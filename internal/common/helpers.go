// Package common содержит общие утилиты, используемые во всём проекте.
// Сюда входят: работа с календарными датами, русская плюрализация, форматирование.
package common

import (
	"math"
	"strings"
	"time"
)

// DateLayout — формат дат в сохранениях и логах (как в исходных сейвах).
const DateLayout = "2006-01-02"

// LoadLocation загружает часовой пояс по имени.
// Если не удалось — используем UTC+3 вручную (как раньше для Москвы).
func LoadLocation(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.FixedZone("MSK", 3*60*60)
	}
	return loc
}

// Day отбрасывает время и оставляет полночь того же календарного дня.
func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// FormatDate форматирует дату в "2006-01-02".
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// ParseDate разбирает дату "2006-01-02" в указанном часовом поясе.
// Пустая или битая строка → нулевое время и false.
func ParseDate(s string, loc *time.Location) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	// В старых сейвах встречается полный ISO-формат — берём только дату
	if len(s) > len(DateLayout) {
		s = s[:len(DateLayout)]
	}
	t, err := time.ParseInLocation(DateLayout, s, loc)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// DaysBetween возвращает число календарных дней от a до b (b − a).
// Считаем через полдень UTC, чтобы переход на летнее время не давал 23/25 часов.
func DaysBetween(a, b time.Time) int {
	ua := time.Date(a.Year(), a.Month(), a.Day(), 12, 0, 0, 0, time.UTC)
	ub := time.Date(b.Year(), b.Month(), b.Day(), 12, 0, 0, 0, time.UTC)
	return int(math.Round(ub.Sub(ua).Hours() / 24))
}

// DaysInMonth возвращает количество дней в месяце даты t.
func DaysInMonth(t time.Time) int {
	return time.Date(t.Year(), t.Month()+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// FormatDateRu форматирует дату как "02.01.2006" для сообщений.
func FormatDateRu(t time.Time) string {
	return t.Format("02.01.2006")
}

// Truncate обрезает строку до n символов (по рунам) и добавляет многоточие.
func Truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
