// Package journal — дневник алхимика, журнал событий, итоги за период,
// достижения и выгрузка истории в CSV.
package journal

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"serotonyl.ru/habit-bot/internal/common"
	"serotonyl.ru/habit-bot/internal/engine"
	"serotonyl.ru/habit-bot/internal/features/players"
)

// Period — окно для итогов.
type Period string

const (
	PeriodWeek  Period = "week"
	PeriodMonth Period = "month"
	PeriodAll   Period = "all"
)

// ParsePeriod понимает «неделя», «месяц», «всё» и английские варианты.
func ParsePeriod(s string) (Period, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "неделя", "неделю", "week":
		return PeriodWeek, true
	case "месяц", "month":
		return PeriodMonth, true
	case "всё", "все", "all":
		return PeriodAll, true
	}
	return "", false
}

// Bounds возвращает границы периода [from, to] в формате дат истории.
// Для PeriodAll обе пустые.
func (p Period) Bounds(today time.Time) (from, to string) {
	switch p {
	case PeriodWeek:
		return common.FormatDate(today.AddDate(0, 0, -6)), common.FormatDate(today)
	case PeriodMonth:
		return common.FormatDate(today.AddDate(0, 0, -29)), common.FormatDate(today)
	}
	return "", ""
}

// ParseEntry разбирает «Заголовок | текст | теги».
// Без разделителя весь текст считается содержимым записи.
func ParseEntry(text string) (title, content string, tags []string) {
	parts := strings.SplitN(text, "|", 3)
	if len(parts) == 1 {
		return "", strings.TrimSpace(text), nil
	}
	title = strings.TrimSpace(parts[0])
	content = strings.TrimSpace(parts[1])
	if len(parts) == 3 {
		for _, tag := range strings.FieldsFunc(parts[2], func(r rune) bool { return r == ',' || r == ' ' }) {
			tags = append(tags, strings.TrimPrefix(tag, "#"))
		}
	}
	return title, content, tags
}

// Service работает с дневником и историей игрока.
type Service struct {
	players *players.Service
	engine  *engine.Engine
}

// NewService создаёт сервис дневника.
func NewService(p *players.Service) *Service {
	return &Service{players: p, engine: p.Engine()}
}

// AddEntry добавляет запись в дневник.
func (s *Service) AddEntry(ctx context.Context, id players.Identity, text string) (engine.JournalEntry, []engine.Quest, *players.Session, error) {
	title, content, tags := ParseEntry(text)
	var (
		entry     engine.JournalEntry
		completed []engine.Quest
	)
	sess, err := s.players.Do(ctx, id, func(sess *players.Session) error {
		var err error
		entry, completed, err = s.engine.AddJournalEntry(sess.State, title, content, tags)
		return err
	})
	return entry, completed, sess, err
}

// Open открывает состояние игрока для чтения дневника и истории.
func (s *Service) Open(ctx context.Context, id players.Identity) (*players.Session, error) {
	return s.players.Do(ctx, id, nil)
}

// Review считает итоги за период.
func (s *Service) Review(ctx context.Context, id players.Identity, p Period) (engine.Review, *players.Session, error) {
	sess, err := s.players.Do(ctx, id, nil)
	if err != nil {
		return engine.Review{}, sess, err
	}
	from, to := p.Bounds(s.engine.Today())
	return engine.Analyze(sess.State.HistoryLogs, from, to), sess, nil
}

// Export возвращает историю игрока в CSV.
func (s *Service) Export(ctx context.Context, userID int64) ([]byte, error) {
	_, state, err := s.players.View(ctx, userID)
	if err != nil {
		return nil, err
	}
	return ExportCSV(state)
}

// ExportCSV пишет историю состояния в CSV.
func ExportCSV(state *engine.State) ([]byte, error) {
	var buf bytes.Buffer
	if err := engine.WriteHistoryCSV(&buf, state.HistoryLogs); err != nil {
		return nil, fmt.Errorf("экспорт истории: %w", err)
	}
	return buf.Bytes(), nil
}
