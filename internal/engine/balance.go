// Package engine — balance.go хранит игровой баланс: стартовые значения,
// рост опыта, штрафы, бонусы мастерства, сбор и магазин.
// Значения по умолчанию совпадают с config/balance.yaml.
package engine

import "sort"

// StartingStats — с чем начинает новый игрок.
type StartingStats struct {
	Level      int    `yaml:"level"`
	MaxXP      int64  `yaml:"max_xp"`
	Gold       int64  `yaml:"gold"`
	Gems       int64  `yaml:"gems"`
	HabitSlots int    `yaml:"habit_slots"`
	Name       string `yaml:"name"`
}

// LevelTitle — звание, начиная с уровня MinLevel.
type LevelTitle struct {
	MinLevel int    `yaml:"level"`
	Title    string `yaml:"title"`
}

// Balance — все числа, которые влияют на экономику.
type Balance struct {
	Start            StartingStats `yaml:"start"`
	XPGrowth         float64       `yaml:"xp_growth"`
	PenaltyPerDay    int64         `yaml:"penalty_per_day"`
	MasteryEvery     int           `yaml:"mastery_every"`
	MasteryBonusGems int64         `yaml:"mastery_bonus_gems"`
	HarvestMin       int64         `yaml:"harvest_min"`
	HarvestMax       int64         `yaml:"harvest_max"`
	LevelTitles      []LevelTitle  `yaml:"level_titles"`
	Shop             []ShopItem    `yaml:"shop"`
}

// DefaultBalance — баланс, с которым игра задумывалась.
func DefaultBalance() Balance {
	return Balance{
		Start: StartingStats{
			Level:      1,
			MaxXP:      500,
			Gold:       100,
			Gems:       5,
			HabitSlots: 5,
			Name:       "Novice Alchemist",
		},
		XPGrowth:         1.5,
		PenaltyPerDay:    50,
		MasteryEvery:     20,
		MasteryBonusGems: 10,
		HarvestMin:       10,
		HarvestMax:       49,
		LevelTitles: []LevelTitle{
			{MinLevel: 1, Title: "Apprentice Brewer"},
			{MinLevel: 3, Title: "Village Alchemist"},
			{MinLevel: 5, Title: "Potion Master"},
			{MinLevel: 10, Title: "Royal Alchemist"},
			{MinLevel: 15, Title: "Grand Magister"},
			{MinLevel: 20, Title: "Arcane Legend"},
			{MinLevel: 30, Title: "Demigod of Brews"},
		},
		Shop: DefaultShop(),
	}
}

// withDefaults подставляет значения по умолчанию вместо нулевых.
func (b Balance) withDefaults() Balance {
	def := DefaultBalance()
	if b.Start.Level <= 0 {
		b.Start.Level = def.Start.Level
	}
	if b.Start.MaxXP <= 0 {
		b.Start.MaxXP = def.Start.MaxXP
	}
	if b.Start.HabitSlots <= 0 {
		b.Start.HabitSlots = def.Start.HabitSlots
	}
	if b.Start.Name == "" {
		b.Start.Name = def.Start.Name
	}
	if b.XPGrowth <= 1 {
		b.XPGrowth = def.XPGrowth
	}
	if b.PenaltyPerDay < 0 {
		b.PenaltyPerDay = 0
	}
	if b.MasteryEvery <= 0 {
		b.MasteryEvery = def.MasteryEvery
	}
	if b.HarvestMax < b.HarvestMin {
		b.HarvestMin, b.HarvestMax = def.HarvestMin, def.HarvestMax
	}
	if len(b.LevelTitles) == 0 {
		b.LevelTitles = def.LevelTitles
	}
	titles := make([]LevelTitle, len(b.LevelTitles))
	copy(titles, b.LevelTitles)
	sort.Slice(titles, func(i, j int) bool { return titles[i].MinLevel < titles[j].MinLevel })
	b.LevelTitles = titles
	if b.Shop == nil {
		b.Shop = def.Shop
	}
	return b
}

// TitleFor возвращает самое старшее звание, доступное на уровне level.
func (b Balance) TitleFor(level int) string {
	title := ""
	for _, lt := range b.LevelTitles {
		if lt.MinLevel <= level {
			title = lt.Title
		}
	}
	if title == "" && len(b.LevelTitles) > 0 {
		title = b.LevelTitles[0].Title
	}
	return title
}
