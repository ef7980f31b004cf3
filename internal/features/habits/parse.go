// Package habits — parse.go разбирает расписание и параметры привычки,
// записанные по-русски в команде бота.
//
// Примеры расписаний:
//
//	ежедневно, каждый день
//	каждые 3 дня, раз в 2 дня, через день
//	пн ср пт, по будням, выходные
//	каждые 2 недели сб
//	15 числа, ежемесячно 1, каждые 3 месяца 1 числа, ежеквартально
//	первый пн, последняя пятница, каждые 2 месяца вторая среда
package habits

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"serotonyl.ru/habit-bot/internal/common"
	"serotonyl.ru/habit-bot/internal/engine"
)

// Награда по умолчанию за новую привычку
const (
	DefaultRewardGold int64 = 20
	DefaultRewardXP   int64 = 10
)

var weekdayWords = map[string]time.Weekday{
	"пн": time.Monday, "пон": time.Monday, "понедельник": time.Monday, "понедельникам": time.Monday,
	"вт": time.Tuesday, "вторник": time.Tuesday, "вторникам": time.Tuesday,
	"ср": time.Wednesday, "среда": time.Wednesday, "среду": time.Wednesday, "средам": time.Wednesday,
	"чт": time.Thursday, "четверг": time.Thursday, "четвергам": time.Thursday,
	"пт": time.Friday, "пятница": time.Friday, "пятницу": time.Friday, "пятницам": time.Friday,
	"сб": time.Saturday, "суббота": time.Saturday, "субботу": time.Saturday, "субботам": time.Saturday,
	"вс": time.Sunday, "воскресенье": time.Sunday, "воскресеньям": time.Sunday,
}

var weekdayGroups = map[string][]time.Weekday{
	"будни":    {time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday},
	"будням":   {time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday},
	"выходные": {time.Saturday, time.Sunday},
	"выходным": {time.Saturday, time.Sunday},
}

var rankWords = map[string]int{
	"первый": 1, "первая": 1, "первое": 1, "первую": 1, "1-й": 1, "1-я": 1,
	"второй": 2, "вторая": 2, "второе": 2, "вторую": 2, "2-й": 2, "2-я": 2,
	"третий": 3, "третья": 3, "третье": 3, "третью": 3, "3-й": 3, "3-я": 3,
	"четвертый": 4, "четвертая": 4, "четвертое": 4, "четвертую": 4, "4-й": 4, "4-я": 4,
	"последний": engine.RankLast, "последняя": engine.RankLast, "последнее": engine.RankLast, "последнюю": engine.RankLast,
}

// служебные слова, которые ничего не меняют
var fillerWords = map[string]bool{"по": true, "в": true, "во": true, "и": true, "каждый": true, "каждую": true, "каждое": true, "каждая": true}

type scheduleUnit int

const (
	unitNone scheduleUnit = iota
	unitDay
	unitWeek
	unitMonth
)

func unitOf(word string) scheduleUnit {
	switch {
	case strings.HasPrefix(word, "дн"), strings.HasPrefix(word, "ден"):
		return unitDay
	case strings.HasPrefix(word, "недел"):
		return unitWeek
	case strings.HasPrefix(word, "месяц"):
		return unitMonth
	}
	return unitNone
}

func tokenize(text string) []string {
	text = strings.ToLower(strings.TrimSpace(text))
	text = strings.ReplaceAll(text, "ё", "е")
	text = strings.NewReplacer(",", " ", ";", " ", ".", " ").Replace(text)
	return strings.Fields(text)
}

// ParseSchedule превращает текст расписания в engine.Recurrence.
// Пустой текст — каждый день.
func ParseSchedule(text string) (engine.Recurrence, error) {
	words := tokenize(text)
	if len(words) == 0 {
		return engine.Recurrence{Kind: engine.KindDaily}, nil
	}
	bad := func() (engine.Recurrence, error) {
		return engine.Recurrence{}, fmt.Errorf("%w: не понимаю %q", common.ErrInvalidSchedule, text)
	}

	every, unit := 1, unitNone
	rest := words

	switch words[0] {
	case "ежедневно", "daily":
		if len(words) > 1 {
			return bad()
		}
		return engine.Recurrence{Kind: engine.KindDaily}, nil
	case "через":
		if len(words) == 2 && unitOf(words[1]) == unitDay {
			return engine.Recurrence{Kind: engine.KindInterval, Every: 2}, nil
		}
		return bad()
	case "еженедельно":
		unit, rest = unitWeek, words[1:]
	case "ежемесячно":
		unit, rest = unitMonth, words[1:]
	case "ежеквартально":
		every, unit, rest = 3, unitMonth, words[1:]
	case "каждые", "каждый", "каждую", "раз":
		rest = words[1:]
		if words[0] == "раз" {
			if len(rest) == 0 || rest[0] != "в" {
				return bad()
			}
			rest = rest[1:]
		}
		if len(rest) > 0 {
			if n, err := strconv.Atoi(rest[0]); err == nil {
				if n < 1 {
					return bad()
				}
				every, rest = n, rest[1:]
			}
		}
		if len(rest) > 0 {
			if u := unitOf(rest[0]); u != unitNone {
				unit, rest = u, rest[1:]
			}
		}
		if unit == unitNone {
			// «каждый понедельник», «каждую первую пятницу»
			if every != 1 {
				return bad()
			}
		}
	}

	if unit == unitDay {
		if len(rest) > 0 {
			return bad()
		}
		if every == 1 {
			return engine.Recurrence{Kind: engine.KindDaily}, nil
		}
		return engine.Recurrence{Kind: engine.KindInterval, Every: every}, nil
	}

	rest = dropFillers(rest)
	if len(rest) == 0 {
		switch unit {
		case unitWeek:
			return bad() // нужно указать дни недели
		case unitMonth:
			// «ежеквартально» без числа — первое число
			return engine.Recurrence{Kind: engine.KindMonthlyDate, MonthDay: 1, Every: every}, nil
		}
		return bad()
	}

	// k-й день недели месяца
	if rank, ok := rankWords[rest[0]]; ok && len(rest) == 2 && unit != unitWeek {
		wd, ok := weekdayWords[rest[1]]
		if !ok {
			return bad()
		}
		return engine.Recurrence{Kind: engine.KindMonthlyWeekday, Rank: rank, Weekday: wd, Every: every}, nil
	}

	// число месяца: «15 числа», «ежемесячно 15»
	if n, err := strconv.Atoi(rest[0]); err == nil && unit != unitWeek {
		tail := rest[1:]
		if len(tail) == 1 && strings.HasPrefix(tail[0], "числ") {
			tail = nil
		}
		if len(tail) > 0 || (unit == unitNone && len(rest) == 1) {
			return bad()
		}
		r := engine.Recurrence{Kind: engine.KindMonthlyDate, MonthDay: n, Every: every}
		if err := r.Validate(); err != nil {
			return engine.Recurrence{}, err
		}
		return r, nil
	}

	// дни недели
	if unit == unitNone || unit == unitWeek {
		days, ok := parseWeekdays(rest)
		if !ok {
			return bad()
		}
		return engine.Recurrence{Kind: engine.KindWeekly, Weekdays: days, Every: every}, nil
	}
	return bad()
}

func dropFillers(words []string) []string {
	out := words[:0:0]
	for _, w := range words {
		if !fillerWords[w] {
			out = append(out, w)
		}
	}
	return out
}

// parseWeekdays разбирает список дней, сохраняя порядок недели пн..вс без повторов.
func parseWeekdays(words []string) ([]time.Weekday, bool) {
	seen := make(map[time.Weekday]bool)
	for _, w := range words {
		if group, ok := weekdayGroups[w]; ok {
			for _, wd := range group {
				seen[wd] = true
			}
			continue
		}
		wd, ok := weekdayWords[w]
		if !ok {
			return nil, false
		}
		seen[wd] = true
	}
	var days []time.Weekday
	for _, wd := range weekOrder {
		if seen[wd] {
			days = append(days, wd)
		}
	}
	return days, len(days) > 0
}

var weekOrder = []time.Weekday{
	time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday, time.Saturday, time.Sunday,
}

// CalendarQuarters сообщает, что расписание идёт по календарным кварталам
// (янв, апр, июл, окт), а не от даты старта.
func CalendarQuarters(schedule string) bool {
	words := tokenize(schedule)
	return len(words) > 0 && words[0] == "ежеквартально"
}

// ParseDraft разбирает «Название | расписание | категория | золото опыт».
// Все поля кроме названия необязательны.
func ParseDraft(text string) (engine.HabitDraft, error) {
	parts := strings.Split(text, "|")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}

	d := engine.HabitDraft{
		Title:      parts[0],
		RewardGold: DefaultRewardGold,
		RewardXP:   DefaultRewardXP,
	}
	if d.Title == "" {
		return d, common.ErrEmptyTitle
	}

	schedule := ""
	if len(parts) > 1 {
		schedule = parts[1]
	}
	r, err := ParseSchedule(schedule)
	if err != nil {
		return d, err
	}
	d.Recurrence = r
	d.CalendarYear = CalendarQuarters(schedule)

	if len(parts) > 2 {
		d.Category = parts[2]
	}
	if len(parts) > 3 && parts[3] != "" {
		nums := strings.Fields(parts[3])
		if len(nums) > 2 {
			return d, fmt.Errorf("%w: награда — два числа: золото и опыт", common.ErrInvalidAmount)
		}
		vals := []*int64{&d.RewardGold, &d.RewardXP}
		for i, s := range nums {
			v, err := strconv.ParseInt(s, 10, 64)
			if err != nil || v < 0 {
				return d, fmt.Errorf("%w: %q", common.ErrInvalidAmount, s)
			}
			*vals[i] = v
		}
	}
	if len(parts) > 4 {
		return d, fmt.Errorf("%w: слишком много полей", common.ErrInvalidSchedule)
	}
	return d, nil
}

// Describe описывает расписание по-русски.
func Describe(r engine.Recurrence) string {
	every := max(1, r.Every)
	switch r.Kind {
	case engine.KindDaily:
		return "каждый день"
	case engine.KindInterval:
		if every == 2 {
			return "через день"
		}
		return fmt.Sprintf("раз в %d %s", every, common.PluralizeDays(every))
	case engine.KindWeekly:
		names := make([]string, 0, len(r.Weekdays))
		for _, wd := range r.Weekdays {
			names = append(names, weekdayShort[wd])
		}
		if every == 1 {
			return "по " + strings.Join(names, ", ")
		}
		return fmt.Sprintf("раз в %d %s: %s", every, pluralWeeks(every), strings.Join(names, ", "))
	case engine.KindMonthlyDate:
		return monthPrefix(every) + fmt.Sprintf("%d-го числа", r.MonthDay)
	case engine.KindMonthlyWeekday:
		rank := "последний"
		if r.Rank != engine.RankLast {
			rank = fmt.Sprintf("%d-й", r.Rank)
		}
		return monthPrefix(every) + rank + " " + weekdayShort[r.Weekday]
	}
	return string(r.Kind)
}

var weekdayShort = map[time.Weekday]string{
	time.Monday: "пн", time.Tuesday: "вт", time.Wednesday: "ср", time.Thursday: "чт",
	time.Friday: "пт", time.Saturday: "сб", time.Sunday: "вс",
}

func monthPrefix(every int) string {
	switch every {
	case 1:
		return "каждый месяц, "
	case 3:
		return "раз в квартал, "
	}
	return fmt.Sprintf("раз в %d %s, ", every, pluralMonths(every))
}

func pluralWeeks(n int) string {
	if n%10 >= 2 && n%10 <= 4 && (n%100 < 12 || n%100 > 14) {
		return "недели"
	}
	if n%10 == 1 && n%100 != 11 {
		return "неделю"
	}
	return "недель"
}

func pluralMonths(n int) string {
	if n%10 >= 2 && n%10 <= 4 && (n%100 < 12 || n%100 > 14) {
		return "месяца"
	}
	if n%10 == 1 && n%100 != 11 {
		return "месяц"
	}
	return "месяцев"
}
