package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"serotonyl.ru/habit-bot/internal/common"
)

func TestAddXP_LevelUp(t *testing.T) {
	e, _ := newTestEngine(t, "2026-05-01")
	s := e.NewState()
	s.Stats.XP = 450

	gained := e.AddXP(s, 100)

	assert.Equal(t, 1, gained)
	assert.Equal(t, int64(50), s.Stats.XP)
	assert.Equal(t, 2, s.Stats.Level)
	assert.Equal(t, int64(750), s.Stats.MaxXP)
}

func TestAddXP_SeveralLevelsAndTitle(t *testing.T) {
	e, _ := newTestEngine(t, "2026-05-01")
	s := e.NewState()

	e.AddXP(s, 500+750)

	assert.Equal(t, 3, s.Stats.Level)
	assert.Equal(t, int64(0), s.Stats.XP)
	assert.Equal(t, int64(1125), s.Stats.MaxXP)
	assert.Equal(t, "Village Alchemist", s.Stats.Title)
	assert.Equal(t, 3, questByID(t, s, "sq_level_5").Progress)
}

func TestAddXP_DecompositionGivesSameResult(t *testing.T) {
	e, _ := newTestEngine(t, "2026-05-01")
	amounts := []int64{0, 1, 49, 499, 500, 750, 1249, 5000}
	for _, x := range amounts {
		for _, y := range amounts {
			split := e.NewState()
			e.AddXP(split, x)
			e.AddXP(split, y)

			whole := e.NewState()
			e.AddXP(whole, x+y)

			assert.Equal(t, whole.Stats.Level, split.Stats.Level, "x=%d y=%d", x, y)
			assert.Equal(t, whole.Stats.XP, split.Stats.XP, "x=%d y=%d", x, y)
			assert.Equal(t, whole.Stats.MaxXP, split.Stats.MaxXP, "x=%d y=%d", x, y)
			assert.Equal(t, whole.Stats.Title, split.Stats.Title, "x=%d y=%d", x, y)
			assert.Less(t, split.Stats.XP, split.Stats.MaxXP)
		}
	}
}

func TestAddXP_ThresholdAlwaysGrows(t *testing.T) {
	e, _ := newTestEngine(t, "2026-05-01")
	s := e.NewState()
	s.Stats.MaxXP = 1

	gained := e.AddXP(s, 3)
	assert.Equal(t, 2, gained, "thresholds 1 then 2")
	assert.Equal(t, int64(3), s.Stats.MaxXP)
	assert.Equal(t, int64(0), s.Stats.XP)
}

func TestAddXP_NegativeNeverDelevels(t *testing.T) {
	e, _ := newTestEngine(t, "2026-05-01")
	s := e.NewState()
	e.AddXP(s, 600)
	require.Equal(t, 2, s.Stats.Level)

	e.AddXP(s, -1000)

	assert.Equal(t, 2, s.Stats.Level)
	assert.Equal(t, int64(0), s.Stats.XP)
}

func TestBalancesNeverNegative(t *testing.T) {
	e, _ := newTestEngine(t, "2026-05-01")
	s := e.NewState()

	e.AddGold(s, -1000)
	e.AddGems(s, -1000)
	e.AddGold(s, 40)
	e.AddGold(s, -41)

	assert.Equal(t, int64(0), s.Stats.Gold)
	assert.Equal(t, int64(0), s.Stats.Gems)
}

func TestSpend(t *testing.T) {
	e, _ := newTestEngine(t, "2026-05-01")
	s := e.NewState()

	err := e.Spend(s, 150, 0)
	assert.ErrorIs(t, err, common.ErrInsufficientFunds)
	assert.Equal(t, int64(100), s.Stats.Gold)

	err = e.Spend(s, 50, 6)
	assert.ErrorIs(t, err, common.ErrInsufficientFunds)
	assert.Equal(t, int64(100), s.Stats.Gold)
	assert.Equal(t, int64(5), s.Stats.Gems)

	require.NoError(t, e.Spend(s, 60, 5))
	assert.Equal(t, int64(40), s.Stats.Gold)
	assert.Equal(t, int64(0), s.Stats.Gems)

	assert.ErrorIs(t, e.Spend(s, -1, 0), common.ErrInvalidAmount)
}

func TestAddGold_TracksTotalGoldQuest(t *testing.T) {
	e, _ := newTestEngine(t, "2026-05-01")
	s := e.NewState()

	e.AddGold(s, 250)
	assert.Equal(t, 350, questByID(t, s, "sq_gold_hoarder").Progress)

	e.AddGold(s, 200)
	q := questByID(t, s, "sq_gold_hoarder")
	assert.Equal(t, QuestCompleted, q.Status)
	assert.Equal(t, 500, q.Progress)
}
