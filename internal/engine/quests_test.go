package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"serotonyl.ru/habit-bot/internal/common"
)

func TestFire_IncrementsUntilCompleted(t *testing.T) {
	e, _ := newTestEngine(t, "2026-05-01")
	s := e.NewState()

	e.Fire(s, TriggerDailyHabits)
	e.Fire(s, TriggerDailyHabits)
	assert.Equal(t, 2, questByID(t, s, "sq_daily_commission").Progress)

	completed := e.Fire(s, TriggerDailyHabits)
	require.Len(t, completed, 1)
	assert.Equal(t, "sq_daily_commission", completed[0].ID)

	e.Fire(s, TriggerDailyHabits)
	q := questByID(t, s, "sq_daily_commission")
	assert.Equal(t, QuestCompleted, q.Status)
	assert.Equal(t, 3, q.Progress)
}

func TestFireValue_SetsAndClamps(t *testing.T) {
	e, _ := newTestEngine(t, "2026-05-01")
	s := e.NewState()

	e.FireValue(s, TriggerHabitMastery, 4)
	e.FireValue(s, TriggerHabitMastery, 2)
	assert.Equal(t, 2, questByID(t, s, "sq_mastery_initiate").Progress, "explicit value replaces progress")

	e.FireValue(s, TriggerHabitMastery, -5)
	assert.Equal(t, 0, questByID(t, s, "sq_mastery_initiate").Progress)

	e.FireValue(s, TriggerHabitMastery, 99)
	q := questByID(t, s, "sq_mastery_initiate")
	assert.Equal(t, 10, q.Progress)
	assert.Equal(t, QuestCompleted, q.Status)
}

func TestFire_OnlyActiveSystemQuests(t *testing.T) {
	e, _ := newTestEngine(t, "2026-05-01")
	s := e.NewState()
	s.Quests = append(s.Quests, Quest{
		ID: "custom", Kind: QuestCustom, Status: QuestActive, MaxProgress: 1, AutoCheckKey: TriggerJournalEntry,
	})
	scribe, _ := s.Quest("sq_grimoire_scribe")
	scribe.Status = QuestClaimed
	scribe.Progress = 1

	e.Fire(s, TriggerJournalEntry)

	assert.Equal(t, 0, questByID(t, s, "custom").Progress)
	assert.Equal(t, QuestActive, questByID(t, s, "custom").Status)
	assert.Equal(t, QuestClaimed, questByID(t, s, "sq_grimoire_scribe").Status)
}

func TestClaimQuestReward(t *testing.T) {
	e, _ := newTestEngine(t, "2026-05-01")
	s := e.NewState()

	_, err := e.ClaimQuestReward(s, "sq_daily_commission")
	assert.ErrorIs(t, err, common.ErrQuestNotCompleted)
	assert.Equal(t, int64(100), s.Stats.Gold)
	assert.Empty(t, s.HistoryLogs)

	e.FireValue(s, TriggerDailyHabits, 3)
	res, err := e.ClaimQuestReward(s, "sq_daily_commission")
	require.NoError(t, err)

	assert.Equal(t, int64(130), s.Stats.Gold)
	assert.Equal(t, int64(6), s.Stats.Gems)
	assert.Equal(t, int64(50), s.Stats.XP)
	assert.Equal(t, QuestClaimed, res.Quest.Status)
	assert.Equal(t, QuestClaimed, questByID(t, s, "sq_daily_commission").Status)
	require.NotEmpty(t, s.HistoryLogs)
	assert.Equal(t, LogQuest, s.HistoryLogs[0].Kind)
	assert.Equal(t, "+30g, +1gems, +50XP", s.HistoryLogs[0].RewardSummary)
	assert.Equal(t, 1, questByID(t, s, "sq_adventurer").Progress)

	_, err = e.ClaimQuestReward(s, "sq_daily_commission")
	assert.ErrorIs(t, err, common.ErrQuestNotCompleted)
	assert.Equal(t, int64(130), s.Stats.Gold, "reward is paid once")

	_, err = e.ClaimQuestReward(s, "missing")
	assert.ErrorIs(t, err, common.ErrQuestNotFound)
}

func TestCustomQuestLifecycle(t *testing.T) {
	e, _ := newTestEngine(t, "2026-05-01")
	s := e.NewState()

	_, err := e.CreateQuest(s, QuestDraft{Title: "  "})
	assert.ErrorIs(t, err, common.ErrEmptyTitle)

	_, err = e.CreateQuest(s, QuestDraft{Title: "Bad", Deadline: "tomorrow"})
	assert.ErrorIs(t, err, common.ErrInvalidSchedule)

	q, err := e.CreateQuest(s, QuestDraft{Title: "Read a book", RewardGold: 40, Deadline: "2026-06-01junk"})
	require.NoError(t, err)
	assert.Equal(t, "2026-06-01", q.Deadline)
	assert.Equal(t, QuestCustom, q.Kind)
	assert.Equal(t, 1, q.MaxProgress)
	assert.Equal(t, QuestCompleted, questByID(t, s, "sq_quest_giver").Status)

	_, err = e.CompleteQuest(s, "sq_first_brew")
	assert.ErrorIs(t, err, common.ErrQuestNotCustom)

	done, err := e.CompleteQuest(s, q.ID)
	require.NoError(t, err)
	assert.Equal(t, QuestCompleted, done.Status)
	assert.Equal(t, 1, done.Progress)

	_, err = e.CompleteQuest(s, q.ID)
	assert.ErrorIs(t, err, common.ErrQuestNotActive)

	_, err = e.ClaimQuestReward(s, q.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(140), s.Stats.Gold)

	assert.ErrorIs(t, e.DeleteQuest(s, "sq_first_brew"), common.ErrSystemQuest)
	require.NoError(t, e.DeleteQuest(s, q.ID))
	_, ok := s.Quest(q.ID)
	assert.False(t, ok)
	assert.ErrorIs(t, e.DeleteQuest(s, q.ID), common.ErrQuestNotFound)
}

func TestQuestProgressInvariant(t *testing.T) {
	e, _ := newTestEngine(t, "2026-05-01")
	s := e.NewState()
	keys := []TriggerKey{TriggerDailyHabits, TriggerTotalGold, TriggerLevelUp, TriggerCompleteHabit, TriggerStreakCommission}
	values := []int{-3, 0, 1, 2, 7, 600, 1}

	for i, v := range values {
		for _, k := range keys {
			if i%2 == 0 {
				e.FireValue(s, k, v)
			} else {
				e.Fire(s, k)
			}
		}
		for _, q := range s.Quests {
			assert.GreaterOrEqual(t, q.Progress, 0, q.ID)
			assert.LessOrEqual(t, q.Progress, q.MaxProgress, q.ID)
			if q.Status == QuestCompleted {
				assert.Equal(t, q.MaxProgress, q.Progress, q.ID)
			}
			if q.Status == QuestActive {
				assert.Less(t, q.Progress, q.MaxProgress, q.ID)
			}
		}
	}
}
