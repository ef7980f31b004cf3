// Package engine — snapshot.go загружает и сохраняет состояние в JSON.
//
// Загрузка терпима к старым и частично испорченным сохранениям:
// каждый раздел разбирается отдельно, битые поля и записи заменяются
// значениями по умолчанию, а проблемы возвращаются как предупреждения.
// Ошибку даёт только документ, который вообще не является JSON-объектом.
package engine

import (
	"encoding/json"
	"fmt"
	"time"

	"serotonyl.ru/habit-bot/internal/common"
)

// habitRecord — привычка вместе с полями старого формата расписания.
type habitRecord struct {
	Habit
	Frequency      string `json:"frequency"`
	Days           []int  `json:"days"`
	RepeatInterval int    `json:"repeatInterval"`
	MonthlyDate    int    `json:"monthlyDate"`
}

// Load разбирает сохранение, мигрирует старые поля, восстанавливает
// инварианты и добавляет недостающие встроенные квесты.
func (e *Engine) Load(data []byte) (*State, []string, error) {
	var sections map[string]json.RawMessage
	if err := json.Unmarshal(data, &sections); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", common.ErrMalformedSnapshot, err)
	}

	var warnings []string
	warn := func(format string, args ...any) {
		warnings = append(warnings, fmt.Sprintf(format, args...))
	}

	s := e.NewState()

	if raw, ok := sections["stats"]; ok {
		st := s.Stats
		// Unmarshal пропускает поле с неверным типом и продолжает разбор
		if err := json.Unmarshal(raw, &st); err != nil {
			warn("stats: %v", err)
		}
		s.Stats = st
	}

	if raw, ok := sections["habits"]; ok {
		s.Habits = []Habit{}
		for i, item := range splitArray(raw, "habits", warn) {
			var rec habitRecord
			if err := json.Unmarshal(item, &rec); err != nil {
				warn("habits[%d]: %v", i, err)
				if rec.ID == "" && rec.Title == "" {
					continue
				}
			}
			h := rec.Habit
			if h.Recurrence.Kind == "" && rec.Frequency != "" {
				h.Recurrence, h.StartDate = migrateFrequency(rec, e.Today())
			}
			if h.ID == "" {
				h.ID = e.newID()
			}
			s.Habits = append(s.Habits, h)
		}
	}

	if raw, ok := sections["quests"]; ok {
		s.Quests = []Quest{}
		for i, item := range splitArray(raw, "quests", warn) {
			var q Quest
			if err := json.Unmarshal(item, &q); err != nil {
				warn("quests[%d]: %v", i, err)
				if q.ID == "" {
					continue
				}
			}
			if q.ID == "" {
				q.ID = e.newID()
			}
			s.Quests = append(s.Quests, q)
		}
	}

	if raw, ok := sections["journalEntries"]; ok {
		s.JournalEntries = []JournalEntry{}
		for i, item := range splitArray(raw, "journalEntries", warn) {
			var j JournalEntry
			if err := json.Unmarshal(item, &j); err != nil {
				warn("journalEntries[%d]: %v", i, err)
				continue
			}
			s.JournalEntries = append(s.JournalEntries, j)
		}
	}

	if raw, ok := sections["historyLogs"]; ok {
		s.HistoryLogs = []HistoryLog{}
		for i, item := range splitArray(raw, "historyLogs", warn) {
			var l HistoryLog
			if err := json.Unmarshal(item, &l); err != nil {
				warn("historyLogs[%d]: %v", i, err)
				continue
			}
			s.HistoryLogs = append(s.HistoryLogs, l)
		}
	}

	e.Normalize(s)
	if added := e.ReconcileQuests(s); added > 0 {
		warn("added %d built-in quests", added)
	}
	return s, warnings, nil
}

// Save возвращает сохранение в JSON.
func Save(s *State) ([]byte, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("ошибка сериализации состояния: %w", err)
	}
	return data, nil
}

// splitArray разбирает раздел-массив на элементы. null даёт пустой список.
func splitArray(raw json.RawMessage, name string, warn func(string, ...any)) []json.RawMessage {
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		warn("%s: %v", name, err)
		return nil
	}
	return items
}

// migrateFrequency переводит старое поле frequency в Recurrence.
func migrateFrequency(rec habitRecord, today time.Time) (Recurrence, string) {
	start := rec.StartDate
	switch rec.Frequency {
	case "specific_days":
		days := make([]time.Weekday, 0, len(rec.Days))
		for _, d := range rec.Days {
			days = append(days, time.Weekday(d))
		}
		return Recurrence{Kind: KindWeekly, Weekdays: days}, start
	case "repeating":
		return Recurrence{Kind: KindInterval, Every: max(1, rec.RepeatInterval)}, start
	case "monthly_date":
		day := rec.MonthlyDate
		if day == 0 {
			day = 1
		}
		return Recurrence{Kind: KindMonthlyDate, MonthDay: day}, start
	case "monthly_1st":
		return Recurrence{Kind: KindMonthlyDate, MonthDay: 1}, start
	case "quarterly_1st":
		// Кварталы считаются от января, поэтому старт переносим на 1 января
		anchor := today
		if t, ok := common.ParseDate(start, today.Location()); ok {
			anchor = t
		}
		return Recurrence{Kind: KindMonthlyDate, MonthDay: 1, Every: 3}, yearStart(anchor)
	default:
		return Recurrence{Kind: KindDaily}, start
	}
}
