// Package engine — actions.go: пользовательские действия вокруг привычек,
// дневника и лесного сбора.
package engine

import (
	"strings"
	"time"

	"serotonyl.ru/habit-bot/internal/common"
)

// HabitDraft — параметры новой или изменённой привычки.
type HabitDraft struct {
	Title       string
	Description string
	Category    string
	Icon        string
	Recurrence  Recurrence
	StartDate   string // пусто — сегодня
	RewardGold  int64
	RewardXP    int64

	// CalendarYear переносит старт на 1 января года старта,
	// чтобы шаг в месяцах шёл по календарным кварталам.
	CalendarYear bool
}

// validateDraft проверяет черновик и возвращает нормализованную дату старта.
func (e *Engine) validateDraft(d HabitDraft) (string, error) {
	if strings.TrimSpace(d.Title) == "" {
		return "", common.ErrEmptyTitle
	}
	if err := d.Recurrence.Validate(); err != nil {
		return "", err
	}
	if d.RewardGold < 0 || d.RewardXP < 0 {
		return "", common.ErrInvalidAmount
	}
	t := e.Today()
	if d.StartDate != "" {
		var ok bool
		if t, ok = common.ParseDate(d.StartDate, e.Location()); !ok {
			return "", common.ErrInvalidSchedule
		}
	}
	if d.CalendarYear {
		return yearStart(t), nil
	}
	return common.FormatDate(t), nil
}

// yearStart — 1 января года даты t.
func yearStart(t time.Time) string {
	return common.FormatDate(time.Date(t.Year(), time.January, 1, 0, 0, 0, 0, t.Location()))
}

// CreateHabit добавляет привычку, если есть свободный слот.
func (e *Engine) CreateHabit(s *State, d HabitDraft) (Habit, []Quest, error) {
	start, err := e.validateDraft(d)
	if err != nil {
		return Habit{}, nil, err
	}
	if len(s.Habits) >= s.Stats.HabitSlots {
		return Habit{}, nil, common.ErrNoFreeSlots
	}

	category := strings.TrimSpace(d.Category)
	if category == "" {
		category = "General"
	}
	h := Habit{
		ID:          e.newID(),
		Title:       strings.TrimSpace(d.Title),
		Description: strings.TrimSpace(d.Description),
		Category:    category,
		Icon:        d.Icon,
		Recurrence:  d.Recurrence,
		StartDate:   start,
		RewardGold:  d.RewardGold,
		RewardXP:    d.RewardXP,
		Status:      HabitTodo,
	}
	s.Habits = append(s.Habits, h)
	return h, e.Fire(s, TriggerCreateHabit), nil
}

// UpdateHabit меняет описание и расписание. Счётчики и статус остаются.
func (e *Engine) UpdateHabit(s *State, id string, d HabitDraft) (Habit, error) {
	h, ok := s.Habit(id)
	if !ok {
		return Habit{}, common.ErrHabitNotFound
	}
	if d.StartDate == "" {
		d.StartDate = h.StartDate
	}
	start, err := e.validateDraft(d)
	if err != nil {
		return Habit{}, err
	}
	h.Title = strings.TrimSpace(d.Title)
	h.Description = strings.TrimSpace(d.Description)
	if c := strings.TrimSpace(d.Category); c != "" {
		h.Category = c
	}
	if d.Icon != "" {
		h.Icon = d.Icon
	}
	h.Recurrence = d.Recurrence
	h.StartDate = start
	h.RewardGold = d.RewardGold
	h.RewardXP = d.RewardXP
	return *h, nil
}

// DeleteHabit удаляет привычку. История остаётся.
func (e *Engine) DeleteHabit(s *State, id string) (Habit, error) {
	for i, h := range s.Habits {
		if h.ID == id {
			s.Habits = append(s.Habits[:i], s.Habits[i+1:]...)
			return h, nil
		}
	}
	return Habit{}, common.ErrHabitNotFound
}

// HabitsDueOn — привычки, которые по расписанию приходятся на date.
func HabitsDueOn(s *State, date time.Time) []Habit {
	var out []Habit
	for _, h := range s.Habits {
		if IsDue(h, date) {
			out = append(out, h)
		}
	}
	return out
}

// PendingToday — привычки, которые сегодня по расписанию и ещё не сделаны.
func (e *Engine) PendingToday(s *State) []Habit {
	var out []Habit
	for _, h := range HabitsDueOn(s, e.Today()) {
		if h.Status == HabitTodo {
			out = append(out, h)
		}
	}
	return out
}

// AddJournalEntry добавляет запись в начало дневника.
func (e *Engine) AddJournalEntry(s *State, title, content string, tags []string) (JournalEntry, []Quest, error) {
	content = strings.TrimSpace(content)
	title = strings.TrimSpace(title)
	if content == "" && title == "" {
		return JournalEntry{}, nil, common.ErrEmptyTitle
	}
	if tags == nil {
		tags = []string{}
	}
	entry := JournalEntry{
		ID:      e.newID(),
		Date:    e.todayString(),
		Title:   title,
		Content: content,
		Tags:    tags,
	}
	s.JournalEntries = append([]JournalEntry{entry}, s.JournalEntries...)
	return entry, e.Fire(s, TriggerJournalEntry), nil
}

// HarvestResult — добыча лесного сбора.
type HarvestResult struct {
	Gold        int64
	XP          int64
	LevelsAdded int
	Completed   []Quest
}

// Harvest завершает лесной сбор: случайная база в диапазоне баланса,
// умноженная на общий множитель.
func (e *Engine) Harvest(s *State) HarvestResult {
	before := questStatuses(s)
	b := e.balance
	span := b.HarvestMax - b.HarvestMin + 1
	baseGold := b.HarvestMin + e.rng.Int64N(span)
	baseXP := b.HarvestMin + e.rng.Int64N(span)

	gold := scaleReward(baseGold, s.Stats.RewardMultiplier, 1)
	xp := scaleReward(baseXP, s.Stats.RewardMultiplier, 1)

	e.AddGold(s, gold)
	levels := e.AddXP(s, xp)
	s.Stats.Harvests++
	e.logHistory(s, LogHarvest, "Wild Harvest Complete", FormatRewardSummary(gold, 0, xp))
	e.Fire(s, TriggerHarvestComplete)

	return HarvestResult{Gold: gold, XP: xp, LevelsAdded: levels, Completed: newlyCompleted(before, s)}
}
