// Package economy — профиль игрока, магазин улучшений и лесной сбор.
// models.go описывает то, что показывается игроку в !профиль.
package economy

import (
	"sort"

	"serotonyl.ru/habit-bot/internal/engine"
)

// Profile — сводка по игроку для показа.
type Profile struct {
	Name             string
	Title            string
	Level            int
	XP               int64
	MaxXP            int64
	Gold             int64
	Gems             int64
	LoginStreak      int
	HabitsUsed       int
	HabitSlots       int
	RewardMultiplier float64
	Categories       []CategoryBoost // открытые категории и их множители
	Harvests         int
	StartDate        string
}

// CategoryBoost — категория и множитель наград в ней.
type CategoryBoost struct {
	Name       string
	Multiplier float64
}

// Options — включение отдельных функций.
type Options struct {
	ShopEnabled    bool
	HarvestEnabled bool
}

// NewProfile собирает профиль из состояния игрока.
func NewProfile(s *engine.State) Profile {
	st := s.Stats
	p := Profile{
		Name:             st.Name,
		Title:            st.Title,
		Level:            st.Level,
		XP:               st.XP,
		MaxXP:            st.MaxXP,
		Gold:             st.Gold,
		Gems:             st.Gems,
		LoginStreak:      st.LoginStreak,
		HabitsUsed:       len(s.Habits),
		HabitSlots:       st.HabitSlots,
		RewardMultiplier: st.RewardMultiplier,
		Harvests:         st.Harvests,
		StartDate:        st.StartDate,
	}

	seen := make(map[string]bool)
	for _, c := range st.CustomCategories {
		seen[c] = true
	}
	for c := range st.CategoryMultipliers {
		seen[c] = true
	}
	for c := range seen {
		m, ok := st.CategoryMultipliers[c]
		if !ok {
			m = 1
		}
		p.Categories = append(p.Categories, CategoryBoost{Name: c, Multiplier: m})
	}
	sort.Slice(p.Categories, func(i, j int) bool { return p.Categories[i].Name < p.Categories[j].Name })
	return p
}
