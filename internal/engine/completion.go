// Package engine — completion.go обрабатывает выполнение привычки и его отмену.
//
// Порядок шагов фиксирован, потому что следующие шаги читают результат предыдущих:
//  1. награда = floor(база × общий множитель × множитель категории)
//  2. начисление золота и опыта (и события total_gold / level_up)
//  3. обновление привычки: done, серия +1, выполнений +1, дата
//  4. события квестов: daily_habits, complete_habit, habit_mastery,
//     unique_categories_today, unique_habits_done
//  5. запись в историю
//  6. каждое N-е выполнение — бонус самоцветами и отдельная запись
package engine

import (
	"fmt"

	"serotonyl.ru/habit-bot/internal/common"
)

// CompletionResult — итог выполнения привычки.
type CompletionResult struct {
	Habit       Habit
	Gold        int64
	XP          int64
	LevelsAdded int
	MasteryGems int64 // бонус за каждое N-е выполнение, иначе 0
	DoneToday   int
	Completed   []Quest // квесты, выполненные этим действием
}

// CompleteHabit отмечает привычку выполненной сегодня.
func (e *Engine) CompleteHabit(s *State, id string) (CompletionResult, error) {
	h, ok := s.Habit(id)
	if !ok {
		return CompletionResult{}, common.ErrHabitNotFound
	}
	if h.Status == HabitDone {
		return CompletionResult{}, common.ErrHabitAlreadyDone
	}

	before := questStatuses(s)
	today := e.todayString()

	// Шаг 1: награда
	catMult := s.categoryMultiplier(h.Category)
	gold := scaleReward(h.RewardGold, s.Stats.RewardMultiplier, catMult)
	xp := scaleReward(h.RewardXP, s.Stats.RewardMultiplier, catMult)

	// Шаг 2: кошелёк
	e.AddGold(s, gold)
	levels := e.AddXP(s, xp)

	// Шаг 3: привычка (указатель h остаётся валидным, срез не менялся)
	h.Status = HabitDone
	h.Streak++
	h.Completions++
	h.PrevCompletedDate = h.LastCompletedDate
	h.LastCompletedDate = today
	done := *h

	// Шаг 4: квесты
	doneToday := countDoneToday(s, today)
	e.FireValue(s, TriggerDailyHabits, doneToday)
	e.Fire(s, TriggerCompleteHabit)
	e.FireValue(s, TriggerHabitMastery, maxCompletions(s))
	e.FireValue(s, TriggerUniqueCategories, uniqueCategoriesDone(s, today))
	e.FireValue(s, TriggerUniqueHabitsDone, habitsEverDone(s))

	// Шаг 5: история. Сообщение в формате "Название|Категория|Иконка"
	message := done.Title + "|" + done.Category + "|" + done.Icon
	e.logHistory(s, LogHabit, message, FormatRewardSummary(gold, 0, xp))

	// Шаг 6: мастерство
	var bonus int64
	if every := e.balance.MasteryEvery; every > 0 && done.Completions%every == 0 && e.balance.MasteryBonusGems > 0 {
		bonus = e.balance.MasteryBonusGems
		e.AddGems(s, bonus)
		e.logHistory(s, LogQuest,
			fmt.Sprintf("Mastery: %s (x%d)", done.Title, done.Completions),
			FormatRewardSummary(0, bonus, 0))
	}

	return CompletionResult{
		Habit:       done,
		Gold:        gold,
		XP:          xp,
		LevelsAdded: levels,
		MasteryGems: bonus,
		DoneToday:   doneToday,
		Completed:   newlyCompleted(before, s),
	}, nil
}

// UndoHabit отменяет выполнение: счётчики уменьшаются (не ниже нуля),
// дата последнего выполнения возвращается к прежней.
// Начисленные золото и опыт не забираются.
func (e *Engine) UndoHabit(s *State, id string) (Habit, error) {
	h, ok := s.Habit(id)
	if !ok {
		return Habit{}, common.ErrHabitNotFound
	}
	if h.Status != HabitDone {
		return Habit{}, common.ErrHabitNotDone
	}

	h.Status = HabitTodo
	h.Streak = max(0, h.Streak-1)
	h.Completions = max(0, h.Completions-1)
	h.LastCompletedDate = h.PrevCompletedDate
	h.PrevCompletedDate = ""
	reverted := *h

	e.FireValue(s, TriggerDailyHabits, countDoneToday(s, e.todayString()))
	return reverted, nil
}

// countDoneToday — сколько привычек отмечено выполненными сегодня.
func countDoneToday(s *State, today string) int {
	n := 0
	for _, h := range s.Habits {
		if h.Status == HabitDone && h.LastCompletedDate == today {
			n++
		}
	}
	return n
}

func maxCompletions(s *State) int {
	best := 0
	for _, h := range s.Habits {
		best = max(best, h.Completions)
	}
	return best
}

func uniqueCategoriesDone(s *State, today string) int {
	seen := make(map[string]struct{})
	for _, h := range s.Habits {
		if h.Status == HabitDone && h.LastCompletedDate == today {
			seen[h.Category] = struct{}{}
		}
	}
	return len(seen)
}

// habitsEverDone — сколько разных привычек выполнялись хотя бы раз.
func habitsEverDone(s *State) int {
	n := 0
	for _, h := range s.Habits {
		if h.Completions > 0 {
			n++
		}
	}
	return n
}
