// Package engine — recurrence.go отвечает на два вопроса:
// «нужно ли делать привычку в этот день?» и «когда следующий раз?».
//
// Все сравнения идут по календарным датам (полночь) в часовом поясе даты.
// Некорректное расписание не паникует: такая привычка просто никогда не «due».
package engine

import (
	"fmt"
	"time"

	"serotonyl.ru/habit-bot/internal/common"
)

// nextDueScanDays — сколько дней вперёд ищем следующую дату.
const nextDueScanDays = 365

// FarFuture — «никогда» для NextDueDate.
var FarFuture = time.Date(9999, time.December, 31, 0, 0, 0, 0, time.UTC)

// IsFarFuture сообщает, что дата — это FarFuture (в любом часовом поясе).
func IsFarFuture(t time.Time) bool {
	return t.Year() == FarFuture.Year()
}

// every возвращает шаг интервала; 0 означает 1.
func (r Recurrence) every() int {
	if r.Every == 0 {
		return 1
	}
	return r.Every
}

// Validate проверяет параметры расписания для его вида.
func (r Recurrence) Validate() error {
	if r.Every < 0 {
		return fmt.Errorf("%w: шаг не может быть отрицательным", common.ErrInvalidSchedule)
	}
	switch r.Kind {
	case KindDaily, KindInterval:
		return nil
	case KindWeekly:
		if len(r.Weekdays) == 0 {
			return fmt.Errorf("%w: не выбраны дни недели", common.ErrInvalidSchedule)
		}
		for _, wd := range r.Weekdays {
			if wd < time.Sunday || wd > time.Saturday {
				return fmt.Errorf("%w: день недели %d", common.ErrInvalidSchedule, wd)
			}
		}
		return nil
	case KindMonthlyDate:
		if r.MonthDay < 1 || r.MonthDay > 31 {
			return fmt.Errorf("%w: число месяца %d вне 1..31", common.ErrInvalidSchedule, r.MonthDay)
		}
		return nil
	case KindMonthlyWeekday:
		if r.Weekday < time.Sunday || r.Weekday > time.Saturday {
			return fmt.Errorf("%w: день недели %d", common.ErrInvalidSchedule, r.Weekday)
		}
		if r.Rank != RankLast && (r.Rank < 1 || r.Rank > 4) {
			return fmt.Errorf("%w: номер недели %d", common.ErrInvalidSchedule, r.Rank)
		}
		return nil
	default:
		return fmt.Errorf("%w: неизвестный вид %q", common.ErrInvalidSchedule, r.Kind)
	}
}

// IsDue сообщает, приходится ли привычка на дату date.
//
// Интервал считается от последнего выполнения, а если его нет — от даты старта.
// Недельный и месячный шаг считаются от даты старта; без неё проходит только шаг 1.
func IsDue(h Habit, date time.Time) bool {
	r := h.Recurrence
	if r.Validate() != nil {
		return false
	}

	loc := date.Location()
	day := common.Day(date)
	start, hasStart := common.ParseDate(h.StartDate, loc)
	if hasStart && day.Before(start) {
		return false
	}
	n := r.every()

	switch r.Kind {
	case KindDaily:
		return true

	case KindInterval:
		anchor, ok := start, hasStart
		if last, found := common.ParseDate(h.LastCompletedDate, loc); found {
			anchor, ok = last, true
		}
		if !ok {
			return true // отсчитывать не от чего — первый раз можно в любой день
		}
		diff := common.DaysBetween(anchor, day)
		return diff >= 0 && diff%n == 0

	case KindWeekly:
		if !containsWeekday(r.Weekdays, day.Weekday()) {
			return false
		}
		if !hasStart {
			return n == 1
		}
		weeks := common.DaysBetween(start, day) / 7
		return weeks%n == 0

	case KindMonthlyDate:
		if day.Day() != r.MonthDay {
			return false
		}
		return monthGate(start, hasStart, day, n)

	case KindMonthlyWeekday:
		if day.Weekday() != r.Weekday {
			return false
		}
		if r.Rank == RankLast {
			if day.Day()+7 <= common.DaysInMonth(day) {
				return false
			}
		} else if (day.Day()+6)/7 != r.Rank {
			return false
		}
		return monthGate(start, hasStart, day, n)
	}
	return false
}

// NextDueDate ищет первый день после from, когда привычка снова «due».
// Если за год такого дня нет — FarFuture.
func NextDueDate(h Habit, from time.Time) time.Time {
	day := common.Day(from)
	for i := 1; i <= nextDueScanDays; i++ {
		candidate := day.AddDate(0, 0, i)
		if IsDue(h, candidate) {
			return candidate
		}
	}
	return FarFuture
}

// monthGate — «раз в N месяцев» от месяца старта.
func monthGate(start time.Time, hasStart bool, day time.Time, n int) bool {
	if !hasStart {
		return n == 1
	}
	months := (day.Year()-start.Year())*12 + int(day.Month()-start.Month())
	return months >= 0 && months%n == 0
}

func containsWeekday(days []time.Weekday, wd time.Weekday) bool {
	for _, d := range days {
		if d == wd {
			return true
		}
	}
	return false
}
