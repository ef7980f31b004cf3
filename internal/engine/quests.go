// Package engine — quests.go двигает прогресс квестов по событиям
// и выдаёт награды.
//
// Событие (TriggerKey) затрагивает только активные системные квесты
// с тем же autoCheckKey. Без значения событие добавляет 1, со значением
// прогресс ставится ровно в это значение. Прогресс всегда в [0, maxProgress].
package engine

import (
	"fmt"
	"strings"

	"serotonyl.ru/habit-bot/internal/common"
)

// TriggerKey — имя события, на которое подписан квест.
type TriggerKey string

const (
	TriggerCreateHabit      TriggerKey = "create_habit"
	TriggerCompleteHabit    TriggerKey = "complete_habit"
	TriggerDailyHabits      TriggerKey = "daily_habits"
	TriggerTotalGold        TriggerKey = "total_gold"
	TriggerJournalEntry     TriggerKey = "journal_entry"
	TriggerShopPurchase     TriggerKey = "shop_purchase"
	TriggerHabitMastery     TriggerKey = "habit_mastery"
	TriggerLevelUp          TriggerKey = "level_up"
	TriggerStreakCommission TriggerKey = "streak_commission"
	TriggerHarvestComplete  TriggerKey = "harvest_complete"
	TriggerCreateQuest      TriggerKey = "create_quest"
	TriggerCompleteQuest    TriggerKey = "complete_quest"
	TriggerUniqueCategories TriggerKey = "unique_categories_today"
	TriggerUniqueHabitsDone TriggerKey = "unique_habits_done"
)

// dailyTriggers — ключи, прогресс которых живёт один день.
var dailyTriggers = map[TriggerKey]bool{
	TriggerDailyHabits:      true,
	TriggerHarvestComplete:  true,
	TriggerUniqueCategories: true,
}

// IsDailyTrigger сообщает, что прогресс по ключу сбрасывается каждый день.
func IsDailyTrigger(key TriggerKey) bool {
	return dailyTriggers[key]
}

// Fire — событие без значения: +1 к прогрессу подходящих квестов.
func (e *Engine) Fire(s *State, key TriggerKey) []Quest {
	return e.applyTrigger(s, key, 0, false)
}

// FireValue — событие с абсолютным значением: прогресс = value.
func (e *Engine) FireValue(s *State, key TriggerKey, value int) []Quest {
	return e.applyTrigger(s, key, value, true)
}

func (e *Engine) fireValue(s *State, key TriggerKey, value int) {
	e.applyTrigger(s, key, value, true)
}

func (e *Engine) applyTrigger(s *State, key TriggerKey, value int, explicit bool) []Quest {
	var completed []Quest
	for i := range s.Quests {
		q := &s.Quests[i]
		if q.Status != QuestActive || q.Kind != QuestSystem || q.AutoCheckKey != key {
			continue
		}
		next := q.Progress + 1
		if explicit {
			next = value
		}
		setProgress(q, next)
		if q.Status == QuestCompleted {
			completed = append(completed, *q)
		}
	}
	return completed
}

// setProgress ставит прогресс с зажимом и переводит квест в completed на пороге.
func setProgress(q *Quest, progress int) {
	if q.MaxProgress < 1 {
		q.MaxProgress = 1
	}
	if progress < 0 {
		progress = 0
	}
	if progress >= q.MaxProgress {
		q.Progress = q.MaxProgress
		q.Status = QuestCompleted
		return
	}
	q.Progress = progress
}

// ClaimResult — что получил игрок за квест.
type ClaimResult struct {
	Quest       Quest
	Gold        int64
	Gems        int64
	XP          int64
	LevelsAdded int
	// Completed — квесты, закрытые побочными событиями (total_gold, level_up, complete_quest)
	Completed []Quest
}

// ClaimQuestReward выдаёт награду за выполненный квест ровно один раз.
func (e *Engine) ClaimQuestReward(s *State, id string) (ClaimResult, error) {
	q, ok := s.Quest(id)
	if !ok {
		return ClaimResult{}, common.ErrQuestNotFound
	}
	if q.Status != QuestCompleted {
		return ClaimResult{}, common.ErrQuestNotCompleted
	}

	before := questStatuses(s)
	q.Status = QuestClaimed
	claimed := *q

	e.AddGold(s, claimed.RewardGold)
	e.AddGems(s, claimed.RewardGems)
	levels := e.AddXP(s, claimed.RewardXP)

	summary := FormatRewardSummary(claimed.RewardGold, claimed.RewardGems, claimed.RewardXP)
	e.logHistory(s, LogQuest, claimed.Title, summary)
	e.Fire(s, TriggerCompleteQuest)

	return ClaimResult{
		Quest:       claimed,
		Gold:        claimed.RewardGold,
		Gems:        claimed.RewardGems,
		XP:          claimed.RewardXP,
		LevelsAdded: levels,
		Completed:   newlyCompleted(before, s),
	}, nil
}

// QuestDraft — параметры нового пользовательского квеста.
type QuestDraft struct {
	Title       string
	Description string
	Category    string
	RewardGold  int64
	RewardGems  int64
	RewardXP    int64
	MaxProgress int
	Deadline    string
}

// CreateQuest добавляет пользовательский квест.
func (e *Engine) CreateQuest(s *State, d QuestDraft) (Quest, error) {
	title := strings.TrimSpace(d.Title)
	if title == "" {
		return Quest{}, common.ErrEmptyTitle
	}
	if d.RewardGold < 0 || d.RewardGems < 0 || d.RewardXP < 0 {
		return Quest{}, common.ErrInvalidAmount
	}
	deadline := ""
	if d.Deadline != "" {
		t, ok := common.ParseDate(d.Deadline, e.Location())
		if !ok {
			return Quest{}, fmt.Errorf("%w: срок %q", common.ErrInvalidSchedule, d.Deadline)
		}
		// Храним только дату, хвост после неё отбрасывается
		deadline = common.FormatDate(t)
	}
	maxProgress := d.MaxProgress
	if maxProgress < 1 {
		maxProgress = 1
	}
	category := strings.TrimSpace(d.Category)
	if category == "" {
		category = "General"
	}

	q := Quest{
		ID:          e.newID(),
		Title:       title,
		Description: strings.TrimSpace(d.Description),
		Kind:        QuestCustom,
		Category:    category,
		RewardGold:  d.RewardGold,
		RewardGems:  d.RewardGems,
		RewardXP:    d.RewardXP,
		Status:      QuestActive,
		MaxProgress: maxProgress,
		Deadline:    deadline,
	}
	s.Quests = append(s.Quests, q)
	e.Fire(s, TriggerCreateQuest)
	return q, nil
}

// CompleteQuest вручную закрывает пользовательский квест.
// Системные квесты закрываются только событиями.
func (e *Engine) CompleteQuest(s *State, id string) (Quest, error) {
	q, ok := s.Quest(id)
	if !ok {
		return Quest{}, common.ErrQuestNotFound
	}
	if q.Kind != QuestCustom {
		return Quest{}, common.ErrQuestNotCustom
	}
	if q.Status != QuestActive {
		return Quest{}, common.ErrQuestNotActive
	}
	setProgress(q, q.MaxProgress)
	return *q, nil
}

// DeleteQuest удаляет пользовательский квест.
func (e *Engine) DeleteQuest(s *State, id string) error {
	for i, q := range s.Quests {
		if q.ID != id {
			continue
		}
		if q.Kind == QuestSystem {
			return common.ErrSystemQuest
		}
		s.Quests = append(s.Quests[:i], s.Quests[i+1:]...)
		return nil
	}
	return common.ErrQuestNotFound
}
