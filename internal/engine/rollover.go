// Package engine — rollover.go выполняет переход на новый календарный день.
//
// Состояния по разнице lastLoginDate и сегодня:
//   - same-day (разница <= 0): ничего не делаем;
//   - consecutive-day (ровно 1): серия входов +1;
//   - missed-days (больше 1): штраф min(золото, (дни−1) × штраф в день), серия = 1.
//
// Во всех случаях кроме same-day lastLoginDate становится сегодняшним,
// поэтому повторный вызов в тот же день ничего не меняет.
package engine

import (
	"serotonyl.ru/habit-bot/internal/common"
)

// RolloverState — какой переход случился.
type RolloverState string

const (
	RolloverSameDay     RolloverState = "same-day"
	RolloverConsecutive RolloverState = "consecutive-day"
	RolloverMissed      RolloverState = "missed-days"
)

// RolloverOutcome — что изменилось при переходе.
type RolloverOutcome struct {
	State         RolloverState
	DaysAway      int
	Penalty       int64
	LoginStreak   int
	HabitsRearmed int
	QuestsReset   int
	Completed     []Quest
}

// Changed сообщает, что переход что-то изменил и состояние нужно сохранить.
func (o RolloverOutcome) Changed() bool {
	return o.State != RolloverSameDay
}

// Rollover проверяет смену дня и применяет её.
func (e *Engine) Rollover(s *State) RolloverOutcome {
	todayTime := e.Today()
	today := common.FormatDate(todayTime)
	st := &s.Stats

	last, ok := common.ParseDate(st.LastLoginDate, todayTime.Location())
	if !ok {
		// Нет даты входа — считаем, что игрок уже был сегодня
		st.LastLoginDate = today
		return RolloverOutcome{State: RolloverSameDay, LoginStreak: st.LoginStreak}
	}

	diff := common.DaysBetween(last, todayTime)
	if diff <= 0 {
		return RolloverOutcome{State: RolloverSameDay, LoginStreak: st.LoginStreak}
	}

	before := questStatuses(s)
	out := RolloverOutcome{DaysAway: diff}

	if diff == 1 {
		out.State = RolloverConsecutive
		st.LoginStreak++
	} else {
		out.State = RolloverMissed
		out.Penalty = min(st.Gold, int64(diff-1)*e.balance.PenaltyPerDay)
		if out.Penalty > 0 {
			e.AddGold(s, -out.Penalty)
			e.logHistory(s, LogPenalty, "Missed days penalty", FormatRewardSummary(-out.Penalty, 0, 0))
		}
		st.LoginStreak = 1
	}
	st.LastLoginDate = today
	out.LoginStreak = st.LoginStreak

	// Сначала квесты дня обнуляются, потом серия входов двигает свои
	out.QuestsReset = resetDailyQuests(s)
	e.FireValue(s, TriggerStreakCommission, st.LoginStreak)

	// Выполненные привычки снова открываются, только если сегодня по расписанию
	for i := range s.Habits {
		h := &s.Habits[i]
		if h.Status == HabitDone && IsDue(*h, todayTime) {
			h.Status = HabitTodo
			out.HabitsRearmed++
		}
	}

	out.Completed = newlyCompleted(before, s)
	return out
}

// resetDailyQuests возвращает повторяющиеся квесты в active с нулевым прогрессом.
func resetDailyQuests(s *State) int {
	n := 0
	for i := range s.Quests {
		q := &s.Quests[i]
		if !q.Recurring && !(q.Kind == QuestSystem && IsDailyTrigger(q.AutoCheckKey)) {
			continue
		}
		if q.Status == QuestActive && q.Progress == 0 {
			continue
		}
		q.Status = QuestActive
		q.Progress = 0
		n++
	}
	return n
}
