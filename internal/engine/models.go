// Package engine — models.go описывает состояние игрока: статистику,
// привычки, квесты, дневник и историю. Всё это одно целое (State),
// которое сервисы загружают, изменяют и сохраняют за одну транзакцию.
package engine

import "time"

// SnapshotVersion — текущая версия формата сохранения.
const SnapshotVersion = 2

// RecurrenceKind — вид расписания привычки.
type RecurrenceKind string

const (
	KindDaily          RecurrenceKind = "daily"           // каждый день
	KindInterval       RecurrenceKind = "interval"        // раз в N дней
	KindWeekly         RecurrenceKind = "weekly"          // по дням недели раз в N недель
	KindMonthlyDate    RecurrenceKind = "monthly_date"    // по числу месяца раз в N месяцев
	KindMonthlyWeekday RecurrenceKind = "monthly_weekday" // k-й день недели месяца
)

// RankLast — «последний» день недели в месяце.
const RankLast = -1

// Recurrence — расписание привычки. Какие поля важны, зависит от Kind.
type Recurrence struct {
	Kind     RecurrenceKind `json:"kind"`
	Every    int            `json:"every,omitempty"`    // 0 считается как 1
	Weekdays []time.Weekday `json:"weekdays,omitempty"` // weekly
	MonthDay int            `json:"monthDay,omitempty"` // monthly_date, 1..31
	Weekday  time.Weekday   `json:"weekday,omitempty"`  // monthly_weekday
	Rank     int            `json:"rank,omitempty"`     // monthly_weekday: 1..4 или RankLast
}

// HabitStatus — состояние привычки в текущем цикле.
type HabitStatus string

const (
	HabitTodo HabitStatus = "todo"
	HabitDone HabitStatus = "done"
)

// Habit — повторяющееся дело пользователя.
type Habit struct {
	ID                string      `json:"id"`
	Title             string      `json:"title"`
	Description       string      `json:"description,omitempty"`
	Category          string      `json:"category"`
	Icon              string      `json:"icon,omitempty"`
	Recurrence        Recurrence  `json:"recurrence"`
	StartDate         string      `json:"startDate,omitempty"`
	RewardGold        int64       `json:"rewardGold"`
	RewardXP          int64       `json:"rewardXp"`
	Status            HabitStatus `json:"status"`
	Streak            int         `json:"streak"`
	Completions       int         `json:"completions"`
	LastCompletedDate string      `json:"lastCompletedDate,omitempty"`
	// PrevCompletedDate нужен, чтобы отмена вернула прежнюю точку отсчёта интервала
	PrevCompletedDate string `json:"prevCompletedDate,omitempty"`
}

// QuestKind — кто создал квест.
type QuestKind string

const (
	QuestSystem QuestKind = "system"
	QuestCustom QuestKind = "custom"
)

// QuestStatus — стадия квеста.
type QuestStatus string

const (
	QuestActive    QuestStatus = "active"
	QuestCompleted QuestStatus = "completed"
	QuestClaimed   QuestStatus = "claimed"
)

// Quest — цель с прогрессом и наградой.
type Quest struct {
	ID           string      `json:"id"`
	Title        string      `json:"title"`
	Description  string      `json:"description,omitempty"`
	Kind         QuestKind   `json:"type"`
	Category     string      `json:"category"`
	RewardGold   int64       `json:"rewardGold"`
	RewardGems   int64       `json:"rewardGems"`
	RewardXP     int64       `json:"rewardXp"`
	Status       QuestStatus `json:"status"`
	Progress     int         `json:"progress"`
	MaxProgress  int         `json:"maxProgress"`
	Recurring    bool        `json:"isRecurring,omitempty"`
	AutoCheckKey TriggerKey  `json:"autoCheckKey,omitempty"`
	Deadline     string      `json:"deadline,omitempty"`
}

// Stats — прогресс игрока: уровень, опыт, валюты, множители, серия входов.
type Stats struct {
	Name                string             `json:"name"`
	Level               int                `json:"level"`
	XP                  int64              `json:"xp"`
	MaxXP               int64              `json:"maxXp"`
	Gold                int64              `json:"gold"`
	Gems                int64              `json:"gems"`
	Title               string             `json:"title"`
	StartDate           string             `json:"startDate"`
	HabitSlots          int                `json:"habitSlots"`
	LoginStreak         int                `json:"loginStreak"`
	LastLoginDate       string             `json:"lastLoginDate"`
	RewardMultiplier    float64            `json:"rewardMultiplier"`
	CategoryMultipliers map[string]float64 `json:"categoryMultipliers"`
	CustomCategories    []string           `json:"customCategories"`
	Harvests            int                `json:"harvests"`
}

// LogKind — тип записи в истории.
type LogKind string

const (
	LogHabit   LogKind = "habit"
	LogQuest   LogKind = "quest"
	LogHarvest LogKind = "harvest"
	LogShop    LogKind = "shop"
	LogPenalty LogKind = "penalty"
)

// HistoryLog — запись журнала событий. Новые записи идут первыми.
type HistoryLog struct {
	ID            string  `json:"id"`
	Date          string  `json:"date"`
	Message       string  `json:"message"`
	Kind          LogKind `json:"type"`
	RewardSummary string  `json:"rewardSummary,omitempty"`
}

// JournalEntry — запись в дневнике.
type JournalEntry struct {
	ID      string   `json:"id"`
	Date    string   `json:"date"`
	Title   string   `json:"title"`
	Content string   `json:"content"`
	Tags    []string `json:"tags"`
}

// State — полное состояние одного игрока.
type State struct {
	Version        int            `json:"version"`
	Stats          Stats          `json:"stats"`
	Habits         []Habit        `json:"habits"`
	Quests         []Quest        `json:"quests"`
	JournalEntries []JournalEntry `json:"journalEntries"`
	HistoryLogs    []HistoryLog   `json:"historyLogs"`
}

// Habit возвращает указатель на привычку по ID.
func (s *State) Habit(id string) (*Habit, bool) {
	for i := range s.Habits {
		if s.Habits[i].ID == id {
			return &s.Habits[i], true
		}
	}
	return nil, false
}

// Quest возвращает указатель на квест по ID.
func (s *State) Quest(id string) (*Quest, bool) {
	for i := range s.Quests {
		if s.Quests[i].ID == id {
			return &s.Quests[i], true
		}
	}
	return nil, false
}
