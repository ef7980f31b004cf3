// Package engine — seed.go создаёт новое состояние, встроенные квесты
// и приводит загруженные сохранения к текущему формату.
package engine

import (
	"strings"
	"time"

	"serotonyl.ru/habit-bot/internal/common"
)

// SystemQuests — встроенные квесты. ID стабильны: по ним сохранения
// сверяются со списком при загрузке.
func SystemQuests() []Quest {
	return []Quest{
		{ID: "sq_daily_commission", Title: "Daily Commission", Description: "Complete 3 habits today.",
			Category: "Work", RewardGems: 1, RewardGold: 30, RewardXP: 50, MaxProgress: 3,
			AutoCheckKey: TriggerDailyHabits, Recurring: true},
		{ID: "sq_streak_3", Title: "Consistent Brewer", Description: "Log in for 3 consecutive days.",
			Category: "General", RewardGems: 5, RewardGold: 50, RewardXP: 100, Progress: 1, MaxProgress: 3,
			AutoCheckKey: TriggerStreakCommission},
		{ID: "sq_streak_7", Title: "Dedicated Alchemist", Description: "Log in for 7 consecutive days.",
			Category: "General", RewardGems: 10, RewardGold: 150, RewardXP: 300, Progress: 1, MaxProgress: 7,
			AutoCheckKey: TriggerStreakCommission},
		{ID: "sq_first_habit", Title: "First Recipe", Description: "Create your first habit.",
			Category: "General", RewardGems: 2, RewardGold: 20, RewardXP: 50, MaxProgress: 1,
			AutoCheckKey: TriggerCreateHabit},
		{ID: "sq_first_brew", Title: "First Brew", Description: "Complete a habit for the first time.",
			Category: "General", RewardGems: 2, RewardGold: 20, RewardXP: 50, MaxProgress: 1,
			AutoCheckKey: TriggerCompleteHabit},
		{ID: "sq_gold_hoarder", Title: "Gold Hoarder", Description: "Amass 500 gold in your treasury.",
			Category: "Work", RewardGems: 5, RewardXP: 100, MaxProgress: 500,
			AutoCheckKey: TriggerTotalGold},
		{ID: "sq_grimoire_scribe", Title: "Grimoire Scribe", Description: "Write your first journal entry.",
			Category: "Knowledge", RewardGems: 2, RewardGold: 30, RewardXP: 50, MaxProgress: 1,
			AutoCheckKey: TriggerJournalEntry},
		{ID: "sq_shop_patron", Title: "Shop Patron", Description: "Buy anything in the shop.",
			Category: "General", RewardXP: 100, MaxProgress: 1,
			AutoCheckKey: TriggerShopPurchase},
		{ID: "sq_mastery_initiate", Title: "Mastery Initiate", Description: "Complete any single habit 10 times.",
			Category: "Productivity", RewardGems: 5, RewardGold: 50, RewardXP: 150, MaxProgress: 10,
			AutoCheckKey: TriggerHabitMastery},
		{ID: "sq_level_5", Title: "Rising Star", Description: "Reach level 5.",
			Category: "General", RewardGems: 20, RewardGold: 200, Progress: 1, MaxProgress: 5,
			AutoCheckKey: TriggerLevelUp},
		{ID: "sq_forager", Title: "Forager", Description: "Gather the wild harvest today.",
			Category: "Health", RewardGold: 15, RewardXP: 25, MaxProgress: 1,
			AutoCheckKey: TriggerHarvestComplete, Recurring: true},
		{ID: "sq_quest_giver", Title: "Quest Giver", Description: "Write your own quest.",
			Category: "General", RewardGems: 1, RewardGold: 20, RewardXP: 30, MaxProgress: 1,
			AutoCheckKey: TriggerCreateQuest},
		{ID: "sq_adventurer", Title: "Adventurer", Description: "Claim rewards for 3 quests.",
			Category: "General", RewardGems: 3, RewardGold: 60, RewardXP: 120, MaxProgress: 3,
			AutoCheckKey: TriggerCompleteQuest},
		{ID: "sq_versatile", Title: "Versatile Brewer", Description: "Complete habits in 3 different categories today.",
			Category: "Productivity", RewardGems: 1, RewardGold: 40, RewardXP: 60, MaxProgress: 3,
			AutoCheckKey: TriggerUniqueCategories, Recurring: true},
		{ID: "sq_collector", Title: "Recipe Collector", Description: "Complete 5 different habits.",
			Category: "Knowledge", RewardGems: 3, RewardGold: 80, RewardXP: 150, MaxProgress: 5,
			AutoCheckKey: TriggerUniqueHabitsDone},
	}
}

func systemQuest(q Quest) Quest {
	q.Kind = QuestSystem
	q.Status = QuestActive
	return q
}

// NewState создаёт состояние нового игрока на сегодняшний день.
func (e *Engine) NewState() *State {
	today := e.todayString()
	start := e.balance.Start

	quests := make([]Quest, 0, 16)
	for _, q := range SystemQuests() {
		quests = append(quests, systemQuest(q))
	}

	return &State{
		Version: SnapshotVersion,
		Stats: Stats{
			Name:                start.Name,
			Level:               start.Level,
			MaxXP:               start.MaxXP,
			Gold:                start.Gold,
			Gems:                start.Gems,
			Title:               e.balance.TitleFor(start.Level),
			StartDate:           today,
			HabitSlots:          start.HabitSlots,
			LoginStreak:         1,
			LastLoginDate:       today,
			RewardMultiplier:    1,
			CategoryMultipliers: map[string]float64{},
			CustomCategories:    []string{},
		},
		Habits:         []Habit{},
		Quests:         quests,
		JournalEntries: []JournalEntry{},
		HistoryLogs:    []HistoryLog{},
	}
}

// Reset — полный сброс. Единственная операция, которая стирает историю.
func (e *Engine) Reset() *State {
	return e.NewState()
}

// ReconcileQuests добавляет встроенные квесты, которых нет в сохранении.
// Уже существующие квесты (и их прогресс) не трогаются. Возвращает число добавленных.
func (e *Engine) ReconcileQuests(s *State) int {
	have := make(map[string]bool, len(s.Quests))
	for _, q := range s.Quests {
		have[q.ID] = true
	}
	added := 0
	for _, q := range SystemQuests() {
		if have[q.ID] {
			continue
		}
		s.Quests = append(s.Quests, systemQuest(q))
		added++
	}
	return added
}

// Normalize заполняет пропущенные поля и восстанавливает инварианты
// после загрузки: неотрицательные счётчики, xp < maxXp, прогресс в пределах.
func (e *Engine) Normalize(s *State) {
	today := e.todayString()
	start := e.balance.Start
	st := &s.Stats

	s.Version = SnapshotVersion
	if st.Name == "" {
		st.Name = start.Name
	}
	if st.Level < 1 {
		st.Level = start.Level
	}
	// Порог ниже стартового не бывает: иначе каждое очко опыта даёт уровень
	if st.MaxXP < start.MaxXP {
		st.MaxXP = start.MaxXP
	}
	st.Gold = max(0, st.Gold)
	st.Gems = max(0, st.Gems)
	if st.HabitSlots <= 0 {
		st.HabitSlots = start.HabitSlots
	}
	if st.LoginStreak < 0 {
		st.LoginStreak = 0
	}
	if st.RewardMultiplier <= 0 {
		st.RewardMultiplier = 1
	}
	if st.CategoryMultipliers == nil {
		st.CategoryMultipliers = map[string]float64{}
	}
	if st.CustomCategories == nil {
		st.CustomCategories = []string{}
	}
	if st.StartDate == "" {
		st.StartDate = today
	}
	st.Title = e.balance.TitleFor(st.Level)
	// Опыт сверх порога переливается в уровни сразу
	if st.XP < 0 {
		st.XP = 0
	}
	if st.XP >= st.MaxXP {
		e.AddXP(s, 0)
	}

	if s.Habits == nil {
		s.Habits = []Habit{}
	}
	for i := range s.Habits {
		normalizeHabit(&s.Habits[i], e.Location())
	}

	if s.Quests == nil {
		s.Quests = []Quest{}
	}
	for i := range s.Quests {
		normalizeQuest(&s.Quests[i])
	}

	if s.JournalEntries == nil {
		s.JournalEntries = []JournalEntry{}
	}
	for i := range s.JournalEntries {
		if s.JournalEntries[i].Tags == nil {
			s.JournalEntries[i].Tags = []string{}
		}
	}
	if s.HistoryLogs == nil {
		s.HistoryLogs = []HistoryLog{}
	}
}

func normalizeHabit(h *Habit, loc *time.Location) {
	if h.Status != HabitDone {
		h.Status = HabitTodo
	}
	h.Streak = max(0, h.Streak)
	h.Completions = max(0, h.Completions)
	h.RewardGold = max(0, h.RewardGold)
	h.RewardXP = max(0, h.RewardXP)
	if h.Category == "" {
		h.Category = "General"
	}
	if h.Recurrence.Kind == "" {
		h.Recurrence.Kind = KindDaily
	}
	if h.StartDate != "" {
		if t, ok := common.ParseDate(h.StartDate, loc); ok {
			h.StartDate = common.FormatDate(t)
		}
	}
}

func normalizeQuest(q *Quest) {
	switch strings.ToLower(string(q.Kind)) {
	case "system":
		q.Kind = QuestSystem
	default:
		q.Kind = QuestCustom
	}
	// Старые сохранения считали серию входов ключом login_streak
	if q.AutoCheckKey == "login_streak" {
		q.AutoCheckKey = TriggerStreakCommission
	}
	switch q.Status {
	case QuestActive, QuestCompleted, QuestClaimed:
	default:
		q.Status = QuestActive
	}
	if q.MaxProgress < 1 {
		q.MaxProgress = 1
	}
	if q.Status == QuestActive {
		setProgress(q, q.Progress)
	} else {
		q.Progress = q.MaxProgress
	}
	if q.Kind == QuestSystem && IsDailyTrigger(q.AutoCheckKey) {
		q.Recurring = true
	}
}
