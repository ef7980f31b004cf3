package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"serotonyl.ru/habit-bot/internal/common"
)

func TestBuyShopItem_SlotUpgrade(t *testing.T) {
	e, _ := newTestEngine(t, "2026-05-01")
	s := e.NewState()
	s.Stats.Gold = 250

	res, err := e.BuyShopItem(s, "slot_1", "")
	require.NoError(t, err)

	assert.Equal(t, "slot_1", res.Item.ID)
	assert.Equal(t, 6, s.Stats.HabitSlots)
	assert.Equal(t, int64(50), s.Stats.Gold)
	assert.Equal(t, LogShop, s.HistoryLogs[0].Kind)
	assert.Equal(t, "-200g", s.HistoryLogs[0].RewardSummary)
	assert.Equal(t, QuestCompleted, questByID(t, s, "sq_shop_patron").Status)
}

func TestBuyShopItem_RejectedBeforeMutation(t *testing.T) {
	e, _ := newTestEngine(t, "2026-05-01")
	s := e.NewState()

	_, err := e.BuyShopItem(s, "slot_1", "")
	assert.ErrorIs(t, err, common.ErrInsufficientFunds)

	_, err = e.BuyShopItem(s, "cat_unlock", "Music")
	assert.ErrorIs(t, err, common.ErrLevelTooLow)

	_, err = e.BuyShopItem(s, "dragon", "")
	assert.ErrorIs(t, err, common.ErrItemNotFound)

	s.Stats.Level = 5
	s.Stats.Gems = 500
	_, err = e.BuyShopItem(s, "cat_boost", " ")
	assert.ErrorIs(t, err, common.ErrCategoryRequired)

	assert.Equal(t, int64(100), s.Stats.Gold)
	assert.Equal(t, int64(500), s.Stats.Gems)
	assert.Equal(t, 5, s.Stats.HabitSlots)
	assert.Empty(t, s.HistoryLogs)
	assert.Equal(t, QuestActive, questByID(t, s, "sq_shop_patron").Status)
}

func TestBuyShopItem_CategoryEffects(t *testing.T) {
	e, _ := newTestEngine(t, "2026-05-01")
	s := e.NewState()
	s.Stats.Level = 5
	s.Stats.Gems = 400

	_, err := e.BuyShopItem(s, "cat_unlock", "Music")
	require.NoError(t, err)
	assert.Equal(t, []string{"Music"}, s.Stats.CustomCategories)

	_, err = e.BuyShopItem(s, "cat_unlock", "music")
	assert.ErrorIs(t, err, common.ErrCategoryExists)

	_, err = e.BuyShopItem(s, "cat_boost", "Music")
	require.NoError(t, err)
	assert.Equal(t, 1.5, s.Stats.CategoryMultipliers["Music"])
	assert.Equal(t, int64(200), s.Stats.Gems)

	addHabit(s, Habit{ID: "h", Title: "Piano", Category: "Music", Recurrence: Recurrence{Kind: KindDaily}, RewardGold: 20, RewardXP: 20})
	res, err := e.CompleteHabit(s, "h")
	require.NoError(t, err)
	assert.Equal(t, int64(30), res.Gold)
}

func TestBuyShopItem_CategoryBoostStacks(t *testing.T) {
	e, _ := newTestEngine(t, "2026-05-01")
	s := e.NewState()
	s.Stats.Level = 5
	s.Stats.Gems = 400

	_, err := e.BuyShopItem(s, "cat_boost", "Music")
	require.NoError(t, err)
	_, err = e.BuyShopItem(s, "cat_boost", "Music")
	require.NoError(t, err)

	assert.InDelta(t, 2.25, s.Stats.CategoryMultipliers["Music"], 1e-9)
	assert.Equal(t, int64(100), s.Stats.Gems)
}

func TestBuyShopItem_MultiplierUpgrade(t *testing.T) {
	e, _ := newTestEngine(t, "2026-05-01")
	s := e.NewState()
	s.Stats.Level = 10
	s.Stats.Gold = 1000
	s.Stats.Gems = 100

	_, err := e.BuyShopItem(s, "catalyst", "")
	require.NoError(t, err)
	assert.InDelta(t, 1.1, s.Stats.RewardMultiplier, 1e-9)
	assert.Equal(t, int64(0), s.Stats.Gold)
	assert.Equal(t, int64(0), s.Stats.Gems)
}

func TestHarvest(t *testing.T) {
	e, _ := newTestEngine(t, "2026-05-01")
	s := e.NewState()

	res := e.Harvest(s)

	assert.GreaterOrEqual(t, res.Gold, int64(10))
	assert.LessOrEqual(t, res.Gold, int64(49))
	assert.GreaterOrEqual(t, res.XP, int64(10))
	assert.LessOrEqual(t, res.XP, int64(49))
	assert.Equal(t, 100+res.Gold, s.Stats.Gold)
	assert.Equal(t, 1, s.Stats.Harvests)
	assert.Equal(t, LogHarvest, s.HistoryLogs[0].Kind)
	assert.Equal(t, QuestCompleted, questByID(t, s, "sq_forager").Status)
}

func TestCreateHabit_SlotsAndValidation(t *testing.T) {
	e, _ := newTestEngine(t, "2026-05-01")
	s := e.NewState()
	s.Stats.HabitSlots = 1

	_, _, err := e.CreateHabit(s, HabitDraft{Title: "Bad", Recurrence: Recurrence{Kind: KindMonthlyDate, MonthDay: 40}})
	assert.ErrorIs(t, err, common.ErrInvalidSchedule)

	h, completed, err := e.CreateHabit(s, HabitDraft{Title: "Yoga", Recurrence: Recurrence{Kind: KindDaily}, RewardGold: 10, RewardXP: 15})
	require.NoError(t, err)
	assert.Equal(t, "2026-05-01", h.StartDate)
	assert.Equal(t, "General", h.Category)
	require.Len(t, completed, 1)
	assert.Equal(t, "sq_first_habit", completed[0].ID)

	_, _, err = e.CreateHabit(s, HabitDraft{Title: "Another", Recurrence: Recurrence{Kind: KindDaily}})
	assert.ErrorIs(t, err, common.ErrNoFreeSlots)
	assert.Len(t, s.Habits, 1)

	deleted, err := e.DeleteHabit(s, h.ID)
	require.NoError(t, err)
	assert.Equal(t, "Yoga", deleted.Title)
	assert.Empty(t, s.Habits)
}

func TestCreateHabit_CalendarYearAnchor(t *testing.T) {
	e, _ := newTestEngine(t, "2026-05-01")
	s := e.NewState()

	h, _, err := e.CreateHabit(s, HabitDraft{
		Title:        "Taxes",
		Recurrence:   Recurrence{Kind: KindMonthlyDate, MonthDay: 1, Every: 3},
		CalendarYear: true,
	})
	require.NoError(t, err)
	assert.Equal(t, "2026-01-01", h.StartDate)
	assert.True(t, IsDue(h, mustDate(t, "2026-07-01")))
	assert.False(t, IsDue(h, mustDate(t, "2026-08-01")))

	upd, err := e.UpdateHabit(s, h.ID, HabitDraft{
		Title:        "Taxes",
		Recurrence:   Recurrence{Kind: KindMonthlyDate, MonthDay: 1, Every: 3},
		StartDate:    "2027-03-15",
		CalendarYear: true,
	})
	require.NoError(t, err)
	assert.Equal(t, "2027-01-01", upd.StartDate)
}

func TestAddJournalEntry(t *testing.T) {
	e, _ := newTestEngine(t, "2026-05-01")
	s := e.NewState()

	_, _, err := e.AddJournalEntry(s, "", "  ", nil)
	assert.ErrorIs(t, err, common.ErrEmptyTitle)

	_, _, err = e.AddJournalEntry(s, "Day one", "Started the grimoire", []string{"start"})
	require.NoError(t, err)
	entry, _, err := e.AddJournalEntry(s, "", "Second", nil)
	require.NoError(t, err)

	assert.Equal(t, entry.ID, s.JournalEntries[0].ID, "newest first")
	assert.Equal(t, []string{}, s.JournalEntries[0].Tags)
	assert.Equal(t, QuestCompleted, questByID(t, s, "sq_grimoire_scribe").Status)
}
