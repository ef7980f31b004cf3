// Package habits — service.go: действия с привычками поверх players.Service.
// Игрок ссылается на привычку номером из списка !привычки, ID или названием.
package habits

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"serotonyl.ru/habit-bot/internal/common"
	"serotonyl.ru/habit-bot/internal/engine"
	"serotonyl.ru/habit-bot/internal/features/players"
)

// Service управляет привычками игроков.
type Service struct {
	players *players.Service
	engine  *engine.Engine
}

// NewService создаёт сервис привычек.
func NewService(p *players.Service) *Service {
	return &Service{players: p, engine: p.Engine()}
}

// ResolveHabit находит привычку по номеру (с 1), ID или названию.
func ResolveHabit(s *engine.State, ref string) (*engine.Habit, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, common.ErrHabitNotFound
	}
	if n, err := strconv.Atoi(ref); err == nil {
		if n < 1 || n > len(s.Habits) {
			return nil, fmt.Errorf("%w: номер %d", common.ErrHabitNotFound, n)
		}
		return &s.Habits[n-1], nil
	}
	if h, ok := s.Habit(ref); ok {
		return h, nil
	}
	var found *engine.Habit
	for i := range s.Habits {
		if strings.EqualFold(s.Habits[i].Title, ref) {
			if found != nil {
				return nil, fmt.Errorf("%w: несколько привычек %q, укажи номер", common.ErrHabitNotFound, ref)
			}
			found = &s.Habits[i]
		}
	}
	if found == nil {
		return nil, fmt.Errorf("%w: %q", common.ErrHabitNotFound, ref)
	}
	return found, nil
}

// List открывает состояние игрока для показа списка.
func (s *Service) List(ctx context.Context, id players.Identity) (*players.Session, error) {
	return s.players.Do(ctx, id, nil)
}

// Create добавляет привычку.
func (s *Service) Create(ctx context.Context, id players.Identity, d engine.HabitDraft) (engine.Habit, []engine.Quest, *players.Session, error) {
	var (
		habit     engine.Habit
		completed []engine.Quest
	)
	sess, err := s.players.Do(ctx, id, func(sess *players.Session) error {
		var err error
		habit, completed, err = s.engine.CreateHabit(sess.State, d)
		return err
	})
	if err == nil {
		log.WithFields(log.Fields{"user_id": id.UserID, "habit": habit.Title, "kind": habit.Recurrence.Kind}).Info("Новая привычка")
	}
	return habit, completed, sess, err
}

// Update меняет привычку.
func (s *Service) Update(ctx context.Context, id players.Identity, ref string, d engine.HabitDraft) (engine.Habit, *players.Session, error) {
	var habit engine.Habit
	sess, err := s.players.Do(ctx, id, func(sess *players.Session) error {
		h, err := ResolveHabit(sess.State, ref)
		if err != nil {
			return err
		}
		habit, err = s.engine.UpdateHabit(sess.State, h.ID, d)
		return err
	})
	return habit, sess, err
}

// Complete отмечает выполнение.
func (s *Service) Complete(ctx context.Context, id players.Identity, ref string) (engine.CompletionResult, *players.Session, error) {
	var res engine.CompletionResult
	sess, err := s.players.Do(ctx, id, func(sess *players.Session) error {
		h, err := ResolveHabit(sess.State, ref)
		if err != nil {
			return err
		}
		res, err = s.engine.CompleteHabit(sess.State, h.ID)
		return err
	})
	if err == nil {
		log.WithFields(log.Fields{
			"user_id": id.UserID,
			"habit":   res.Habit.Title,
			"gold":    res.Gold,
			"xp":      res.XP,
		}).Debug("Привычка выполнена")
	}
	return res, sess, err
}

// Undo отменяет выполнение.
func (s *Service) Undo(ctx context.Context, id players.Identity, ref string) (engine.Habit, *players.Session, error) {
	var habit engine.Habit
	sess, err := s.players.Do(ctx, id, func(sess *players.Session) error {
		h, err := ResolveHabit(sess.State, ref)
		if err != nil {
			return err
		}
		habit, err = s.engine.UndoHabit(sess.State, h.ID)
		return err
	})
	return habit, sess, err
}

// Delete удаляет привычку.
func (s *Service) Delete(ctx context.Context, id players.Identity, ref string) (engine.Habit, *players.Session, error) {
	var habit engine.Habit
	sess, err := s.players.Do(ctx, id, func(sess *players.Session) error {
		h, err := ResolveHabit(sess.State, ref)
		if err != nil {
			return err
		}
		habit, err = s.engine.DeleteHabit(sess.State, h.ID)
		return err
	})
	return habit, sess, err
}

// NextDue — когда привычку делать в следующий раз (после сегодняшнего дня).
func (s *Service) NextDue(ctx context.Context, id players.Identity, ref string) (engine.Habit, time.Time, *players.Session, error) {
	var (
		habit engine.Habit
		next  time.Time
	)
	sess, err := s.players.Do(ctx, id, func(sess *players.Session) error {
		h, err := ResolveHabit(sess.State, ref)
		if err != nil {
			return err
		}
		habit = *h
		next = engine.NextDueDate(*h, s.engine.Today())
		return nil
	})
	return habit, next, sess, err
}

// Reminder — кому и о чём напомнить вечером.
type Reminder struct {
	Player  players.Player
	Pending []engine.Habit
}

// Reminders обходит игроков и собирает невыполненные на сегодня привычки.
// Только чтение: вход за игрока не засчитывается.
func (s *Service) Reminders(ctx context.Context) ([]Reminder, error) {
	var out []Reminder
	_, err := s.players.Scan(ctx, func(p players.Preview) error {
		if !p.Player.RemindersEnabled || p.Player.ChatID == 0 {
			return nil
		}
		if pending := s.engine.PendingToday(p.State); len(pending) > 0 {
			out = append(out, Reminder{Player: p.Player, Pending: pending})
		}
		return nil
	})
	return out, err
}

// ReminderText — текст вечернего напоминания.
func ReminderText(r Reminder) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "⏰ Сегодня ещё %d %s:\n", len(r.Pending), common.PluralizeHabits(len(r.Pending)))
	for _, h := range r.Pending {
		fmt.Fprintf(&sb, "• %s\n", h.Title)
	}
	sb.WriteString("\nОтметь выполнение: !готово название")
	return sb.String()
}
