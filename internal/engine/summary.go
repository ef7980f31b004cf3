// Package engine — summary.go форматирует и разбирает строку наград
// в истории ("+30g, +50XP") и считает по истории итоги за период.
//
// Суффиксы g, gems и XP — часть формата: по ним считаются итоги.
package engine

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// FormatRewardSummary собирает строку вида "+30g, +1gems, +50XP".
// Нулевые значения пропускаются.
func FormatRewardSummary(gold, gems, xp int64) string {
	parts := make([]string, 0, 3)
	if gold != 0 {
		parts = append(parts, signed(gold)+"g")
	}
	if gems != 0 {
		parts = append(parts, signed(gems)+"gems")
	}
	if xp != 0 {
		parts = append(parts, signed(xp)+"XP")
	}
	return strings.Join(parts, ", ")
}

func signed(v int64) string {
	if v < 0 {
		return strconv.FormatInt(v, 10)
	}
	return fmt.Sprintf("+%d", v)
}

// RewardTotals — суммы по одной или нескольким строкам наград.
type RewardTotals struct {
	Gold int64
	Gems int64
	XP   int64
}

// gems идёт раньше g, иначе "10gems" разберётся как золото
var rewardToken = regexp.MustCompile(`([+-]?\d+)\s*(gems|g|XP)\b`)

// ParseRewardSummary разбирает строку наград. Нераспознанные куски игнорируются.
func ParseRewardSummary(summary string) RewardTotals {
	var t RewardTotals
	for _, m := range rewardToken.FindAllStringSubmatch(summary, -1) {
		v, err := strconv.ParseInt(m[1], 10, 64)
		if err != nil {
			continue
		}
		switch m[2] {
		case "g":
			t.Gold += v
		case "gems":
			t.Gems += v
		case "XP":
			t.XP += v
		}
	}
	return t
}

// Review — итоги по истории за период.
type Review struct {
	Completed  int // выполненные привычки и квесты
	GoldEarned int64
	GemsEarned int64
	XPEarned   int64
	GoldSpent  int64 // покупки в магазине
	GemsSpent  int64
	Penalties  int64 // штрафы за пропуски
	ActiveDays int
	Categories []string // категории выполненных привычек
}

// Analyze считает итоги по записям с датой в [from, to] (строки "2006-01-02").
// Пустая граница означает «без ограничения».
func Analyze(logs []HistoryLog, from, to string) Review {
	var r Review
	days := make(map[string]struct{})
	cats := make(map[string]struct{})

	for _, l := range logs {
		if from != "" && l.Date < from {
			continue
		}
		if to != "" && l.Date > to {
			continue
		}
		days[l.Date] = struct{}{}
		t := ParseRewardSummary(l.RewardSummary)

		switch l.Kind {
		case LogHabit, LogQuest, LogHarvest:
			if l.Kind != LogHarvest {
				r.Completed++
			}
			r.GoldEarned += max(0, t.Gold)
			r.GemsEarned += max(0, t.Gems)
			r.XPEarned += max(0, t.XP)
			if l.Kind == LogHabit {
				if _, cat, _ := SplitHabitMessage(l.Message); cat != "" {
					cats[cat] = struct{}{}
				}
			}
		case LogShop:
			r.GoldSpent += -min(0, t.Gold)
			r.GemsSpent += -min(0, t.Gems)
		case LogPenalty:
			r.Penalties += -min(0, t.Gold)
		}
	}

	r.ActiveDays = len(days)
	for c := range cats {
		r.Categories = append(r.Categories, c)
	}
	sort.Strings(r.Categories)
	return r
}

// SplitHabitMessage разбирает сообщение "Название|Категория|Иконка".
func SplitHabitMessage(msg string) (title, category, icon string) {
	parts := strings.SplitN(msg, "|", 3)
	title = parts[0]
	if len(parts) > 1 {
		category = parts[1]
	}
	if len(parts) > 2 {
		icon = parts[2]
	}
	return title, category, icon
}
