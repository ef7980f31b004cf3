// Package engine — движок привычек: расписания, экономика и уровни,
// квесты, выполнение привычек и ежедневный переход на новый день.
//
// Движок не знает ни о Telegram, ни о базе данных. Каждая операция
// получает *State, сначала проверяет входные данные, затем изменяет
// состояние. Отклонённая операция возвращает ошибку из common
// и оставляет состояние нетронутым.
package engine

import (
	"math/rand/v2"
	"time"

	"github.com/google/uuid"

	"serotonyl.ru/habit-bot/internal/common"
)

// Engine применяет игровые правила к состоянию игрока.
type Engine struct {
	balance Balance
	clock   Clock
	rng     *rand.Rand
	newID   func() string
}

// Option настраивает Engine.
type Option func(*Engine)

// WithClock подменяет часы (в тестах — FakeClock).
func WithClock(c Clock) Option {
	return func(e *Engine) { e.clock = c }
}

// WithRand задаёт генератор случайных чисел для сбора.
func WithRand(r *rand.Rand) Option {
	return func(e *Engine) { e.rng = r }
}

// WithIDGenerator задаёт генератор идентификаторов.
func WithIDGenerator(f func() string) Option {
	return func(e *Engine) { e.newID = f }
}

// New создаёт движок с указанным балансом.
func New(b Balance, opts ...Option) *Engine {
	e := &Engine{
		balance: b.withDefaults(),
		clock:   LocationClock{Loc: time.Local},
		newID:   uuid.NewString,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.rng == nil {
		e.rng = rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0x9e3779b97f4a7c15))
	}
	return e
}

// Balance возвращает действующий баланс.
func (e *Engine) Balance() Balance {
	return e.balance
}

// Today — текущий календарный день (полночь) по часам движка.
func (e *Engine) Today() time.Time {
	return common.Day(e.clock.Now())
}

// Location — часовой пояс, в котором движок считает дни.
func (e *Engine) Location() *time.Location {
	return e.clock.Now().Location()
}

func (e *Engine) todayString() string {
	return common.FormatDate(e.Today())
}

// logHistory добавляет запись в начало истории.
func (e *Engine) logHistory(s *State, kind LogKind, message, summary string) {
	entry := HistoryLog{
		ID:            e.newID(),
		Date:          e.todayString(),
		Message:       message,
		Kind:          kind,
		RewardSummary: summary,
	}
	s.HistoryLogs = append([]HistoryLog{entry}, s.HistoryLogs...)
}

// questStatuses запоминает статусы квестов до операции.
func questStatuses(s *State) map[string]QuestStatus {
	m := make(map[string]QuestStatus, len(s.Quests))
	for _, q := range s.Quests {
		m[q.ID] = q.Status
	}
	return m
}

// newlyCompleted возвращает квесты, которые стали выполненными после снимка before.
func newlyCompleted(before map[string]QuestStatus, s *State) []Quest {
	var out []Quest
	for _, q := range s.Quests {
		if q.Status == QuestCompleted && before[q.ID] != QuestCompleted {
			out = append(out, q)
		}
	}
	return out
}
