package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"serotonyl.ru/habit-bot/internal/common"
)

func TestSaveLoad_PreservesState(t *testing.T) {
	e, _ := newTestEngine(t, "2026-05-01")
	s := e.NewState()
	_, _, err := e.CreateHabit(s, HabitDraft{
		Title:      "Gym",
		Category:   "Health",
		Recurrence: Recurrence{Kind: KindWeekly, Weekdays: []time.Weekday{time.Monday, time.Friday}},
		RewardGold: 15,
		RewardXP:   25,
	})
	require.NoError(t, err)
	_, err = e.CompleteHabit(s, s.Habits[0].ID)
	require.NoError(t, err)

	data, err := Save(s)
	require.NoError(t, err)
	loaded, warnings, err := e.Load(data)
	require.NoError(t, err)

	assert.Empty(t, warnings)
	assert.Equal(t, s, loaded)
}

func TestLoad_MalformedDocument(t *testing.T) {
	e, _ := newTestEngine(t, "2026-05-01")

	for _, doc := range []string{"not json", "[1,2,3]", `"stats"`, ""} {
		_, _, err := e.Load([]byte(doc))
		assert.ErrorIs(t, err, common.ErrMalformedSnapshot, doc)
	}
}

func TestLoad_TypeMismatchFallsBackToDefaults(t *testing.T) {
	e, _ := newTestEngine(t, "2026-05-01")
	doc := `{
		"stats": {"level": 4, "gold": "lots", "gems": 12, "lastLoginDate": "2026-04-30"},
		"habits": [
			{"id": "h1", "title": "Ok", "recurrence": {"kind": "daily"}, "rewardGold": 5, "rewardXp": 5, "status": "todo"},
			42,
			{"id": "h2", "title": "Half broken", "streak": "many", "recurrence": {"kind": "daily"}}
		],
		"quests": "oops"
	}`

	s, warnings, err := e.Load([]byte(doc))
	require.NoError(t, err)

	assert.NotEmpty(t, warnings)
	assert.Equal(t, 4, s.Stats.Level)
	assert.Equal(t, "Village Alchemist", s.Stats.Title)
	assert.Equal(t, int64(100), s.Stats.Gold, "bad gold falls back to the starting balance")
	assert.Equal(t, int64(12), s.Stats.Gems)
	require.Len(t, s.Habits, 2)
	assert.Equal(t, "h2", s.Habits[1].ID)
	assert.Equal(t, 0, s.Habits[1].Streak)
	assert.Len(t, s.Quests, len(SystemQuests()), "built-in quests are re-seeded")
}

func TestLoad_LegacySave(t *testing.T) {
	e, _ := newTestEngine(t, "2026-05-01")
	doc := `{
		"stats": {"level": 2, "xp": 120, "maxXp": 750, "gold": 340, "gems": 7, "loginStreak": 4,
			"lastLoginDate": "2026-04-30", "rewardMultiplier": 1, "habitSlots": 6},
		"habits": [
			{"id": "a", "title": "Gym", "category": "Health", "frequency": "specific_days", "days": [1, 3],
				"rewardGold": 10, "rewardXp": 10, "status": "done", "streak": 2, "completions": 2},
			{"id": "b", "title": "Plants", "category": "Housework", "frequency": "repeating", "repeatInterval": 3,
				"startDate": "2026-04-01T00:00:00.000Z", "rewardGold": 5, "rewardXp": 5, "status": "todo"},
			{"id": "c", "title": "Taxes", "frequency": "quarterly_1st", "rewardGold": 50, "rewardXp": 50, "status": "todo"}
		],
		"quests": [
			{"id": "sq_streak_3", "title": "Consistent Brewer", "type": "System", "status": "active",
				"progress": 2, "maxProgress": 3, "autoCheckKey": "login_streak", "rewardGold": 50, "rewardGems": 5, "rewardXp": 100},
			{"id": "sq_first_brew", "title": "First Brew", "type": "System", "status": "claimed",
				"progress": 1, "maxProgress": 1, "autoCheckKey": "complete_habit", "rewardGold": 20},
			{"id": "custom-1", "title": "Paint", "type": "Custom", "status": "active", "progress": 0, "maxProgress": 1}
		],
		"journalEntries": [{"id": "j1", "date": "2026-04-01", "title": "Hi", "content": "First"}],
		"historyLogs": [{"id": "l1", "date": "2026-04-30", "message": "Gym|Health|", "type": "habit", "rewardSummary": "+10g, +10XP"}]
	}`

	s, _, err := e.Load([]byte(doc))
	require.NoError(t, err)

	assert.Equal(t, SnapshotVersion, s.Version)
	assert.Equal(t, []string{}, s.Stats.CustomCategories)
	assert.NotNil(t, s.Stats.CategoryMultipliers)
	assert.Equal(t, 6, s.Stats.HabitSlots)

	gym, _ := s.Habit("a")
	assert.Equal(t, Recurrence{Kind: KindWeekly, Weekdays: []time.Weekday{time.Monday, time.Wednesday}}, gym.Recurrence)
	plants, _ := s.Habit("b")
	assert.Equal(t, Recurrence{Kind: KindInterval, Every: 3}, plants.Recurrence)
	assert.Equal(t, "2026-04-01", plants.StartDate)
	taxes, _ := s.Habit("c")
	assert.Equal(t, Recurrence{Kind: KindMonthlyDate, MonthDay: 1, Every: 3}, taxes.Recurrence)
	assert.True(t, IsDue(*taxes, mustDate(t, "2026-07-01")))
	assert.False(t, IsDue(*taxes, mustDate(t, "2026-06-01")))

	streak := questByID(t, s, "sq_streak_3")
	assert.Equal(t, QuestSystem, streak.Kind)
	assert.Equal(t, TriggerStreakCommission, streak.AutoCheckKey)
	assert.Equal(t, 2, streak.Progress, "existing progress is kept")
	assert.Equal(t, QuestClaimed, questByID(t, s, "sq_first_brew").Status)
	assert.Equal(t, QuestCustom, questByID(t, s, "custom-1").Kind)
	assert.Len(t, s.Quests, len(SystemQuests())+1)

	assert.Equal(t, []string{}, s.JournalEntries[0].Tags)
	assert.Len(t, s.HistoryLogs, 1)

	// После загрузки переход на новый день работает с мигрированными данными
	out := e.Rollover(s)
	assert.Equal(t, RolloverConsecutive, out.State)
	assert.Equal(t, 5, s.Stats.LoginStreak)
	assert.Equal(t, QuestCompleted, questByID(t, s, "sq_streak_3").Status)
}

func TestLoad_TinyXPThresholdIsRaised(t *testing.T) {
	e, _ := newTestEngine(t, "2026-05-01")
	doc := `{"stats": {"level": 1, "xp": 300000000, "maxXp": 1, "lastLoginDate": "2026-05-01"}, "habits": []}`

	s, _, err := e.Load([]byte(doc))
	require.NoError(t, err)

	assert.GreaterOrEqual(t, s.Stats.MaxXP, int64(500))
	assert.Less(t, s.Stats.Level, 100, "huge xp gives a few dozen levels, not one per point")
	assert.Less(t, s.Stats.XP, s.Stats.MaxXP)

	level := s.Stats.Level
	e.AddXP(s, 1)
	assert.Equal(t, level, s.Stats.Level)
}
