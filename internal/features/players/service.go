// Package players — service.go: загрузка, переход дня и сохранение состояния игрока.
//
// Любое действие игрока идёт через Do в одной транзакции хранилища:
// прочитать снимок → Rollover → действие → записать снимок.
// Переход дня сохраняется, даже если само действие отклонено:
// операции движка при отказе состояние не меняют.
package players

import (
	"context"
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"

	"serotonyl.ru/habit-bot/internal/common"
	"serotonyl.ru/habit-bot/internal/engine"
)

// Session — открытое состояние игрока внутри транзакции.
type Session struct {
	Player   *Player
	State    *engine.State
	Rollover engine.RolloverOutcome
	New      bool // игрок создан в этой транзакции
}

// Action — действие над состоянием. Возвращённая ошибка уходит вызывающему,
// а состояние (уже после перехода дня) всё равно сохраняется.
type Action func(sess *Session) error

// Service управляет состоянием игроков.
type Service struct {
	store  Store
	engine *engine.Engine
}

// NewService создаёт сервис игроков.
func NewService(store Store, eng *engine.Engine) *Service {
	return &Service{store: store, engine: eng}
}

// Engine возвращает движок, с которым работает сервис.
func (s *Service) Engine() *engine.Engine {
	return s.engine
}

// Do выполняет действие от имени игрока. Новый игрок регистрируется автоматически.
func (s *Service) Do(ctx context.Context, id Identity, fn Action) (*Session, error) {
	return s.update(ctx, id.UserID, &id, fn)
}

// Refresh делает то же, что Do, но только для уже существующего игрока.
// Нужен фоновым задачам: они не должны заводить игроков.
func (s *Service) Refresh(ctx context.Context, userID int64, fn Action) (*Session, error) {
	return s.update(ctx, userID, nil, fn)
}

func (s *Service) update(ctx context.Context, userID int64, id *Identity, fn Action) (*Session, error) {
	var (
		sess      *Session
		actionErr error
	)
	err := s.store.Update(ctx, userID, func(rec *Record) error {
		if id != nil {
			id.apply(&rec.Player)
		} else if len(rec.Snapshot) == 0 {
			return fmt.Errorf("user_id=%d: %w", userID, common.ErrPlayerNotFound)
		}

		var err error
		sess, err = s.open(rec)
		if err != nil {
			return err
		}
		if fn != nil {
			actionErr = fn(sess)
		}
		return s.seal(rec, sess)
	})
	if err != nil {
		return nil, err
	}
	return sess, actionErr
}

// open разбирает снимок (или создаёт состояние) и применяет переход дня.
func (s *Service) open(rec *Record) (*Session, error) {
	sess := &Session{Player: &rec.Player}

	if len(rec.Snapshot) == 0 {
		sess.State = s.engine.NewState()
		sess.New = true
		log.WithField("user_id", rec.UserID).Info("Новый игрок")
	} else {
		state, warnings, err := s.engine.Load(rec.Snapshot)
		if err != nil {
			// Битый снимок не перезаписываем: его ещё можно восстановить руками
			log.WithError(err).WithField("user_id", rec.UserID).Error("Не удалось разобрать сохранение")
			return nil, fmt.Errorf("сохранение игрока %d: %w", rec.UserID, err)
		}
		for _, w := range warnings {
			log.WithField("user_id", rec.UserID).Warnf("Сохранение: %s", w)
		}
		sess.State = state
	}

	sess.Rollover = s.engine.Rollover(sess.State)
	if sess.Rollover.Changed() {
		log.WithFields(log.Fields{
			"user_id":   rec.UserID,
			"state":     sess.Rollover.State,
			"days_away": sess.Rollover.DaysAway,
			"penalty":   sess.Rollover.Penalty,
			"streak":    sess.Rollover.LoginStreak,
			"rearmed":   sess.Rollover.HabitsRearmed,
		}).Info("Переход на новый день")
	}
	return sess, nil
}

func (s *Service) seal(rec *Record, sess *Session) error {
	data, err := engine.Save(sess.State)
	if err != nil {
		return err
	}
	rec.Snapshot = data
	rec.LastLoginDate = sess.State.Stats.LastLoginDate
	return nil
}

// View читает состояние без перехода дня и без записи.
func (s *Service) View(ctx context.Context, userID int64) (*Player, *engine.State, error) {
	rec, err := s.store.Get(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	state, _, err := s.engine.Load(rec.Snapshot)
	if err != nil {
		return nil, nil, fmt.Errorf("сохранение игрока %d: %w", userID, err)
	}
	return &rec.Player, state, nil
}

// List возвращает всех игроков.
func (s *Service) List(ctx context.Context) ([]Player, error) {
	return s.store.List(ctx)
}

// Preview — состояние игрока на сегодня, как он увидит его при входе.
// Переход дня применён к копии и никуда не записан.
type Preview struct {
	Player   Player
	State    *engine.State
	Rollover engine.RolloverOutcome
}

// Scan обходит всех игроков только на чтение и вызывает fn для каждого.
// Переход дня не сохраняется: иначе фоновая задача засчитывала бы вход
// за игрока и серия росла бы без него.
// Ошибка одного игрока не останавливает обход. Возвращает число обработанных.
func (s *Service) Scan(ctx context.Context, fn func(p Preview) error) (int, error) {
	list, err := s.store.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("ошибка получения игроков: %w", err)
	}

	done := 0
	for _, p := range list {
		if ctx.Err() != nil {
			return done, ctx.Err()
		}
		player, state, err := s.View(ctx, p.UserID)
		if err != nil {
			log.WithError(err).WithField("user_id", p.UserID).Error("Ошибка чтения игрока")
			continue
		}
		out := s.engine.Rollover(state)
		if err := fn(Preview{Player: *player, State: state, Rollover: out}); err != nil {
			log.WithError(err).WithField("user_id", p.UserID).Error("Ошибка обработки игрока")
			continue
		}
		done++
	}
	return done, nil
}

// Absence — игрок, у которого копится штраф за пропущенные дни.
type Absence struct {
	Player   Player
	DaysAway int
	Penalty  int64 // спишется при следующем входе
}

// Absentees находит игроков с напоминаниями, которым при входе спишут штраф.
func (s *Service) Absentees(ctx context.Context) ([]Absence, error) {
	var out []Absence
	total, err := s.Scan(ctx, func(p Preview) error {
		if !p.Player.RemindersEnabled || p.Player.ChatID == 0 {
			return nil
		}
		if p.Rollover.State == engine.RolloverMissed && p.Rollover.Penalty > 0 {
			out = append(out, Absence{Player: p.Player, DaysAway: p.Rollover.DaysAway, Penalty: p.Rollover.Penalty})
		}
		return nil
	})
	if err != nil {
		return out, err
	}
	log.WithFields(log.Fields{
		"total":  total,
		"absent": len(out),
	}).Info("Проверка отсутствующих игроков завершена")
	return out, nil
}

// AbsenceText — напоминание о копящемся штрафе.
func AbsenceText(a Absence) string {
	return fmt.Sprintf("🕯 Лаборатория пустует уже %d %s. При входе спишется %s, и штраф растёт каждый день. Загляни: !привычки",
		a.DaysAway, common.PluralizeDays(a.DaysAway), common.FormatGold(a.Penalty))
}

// Import заменяет состояние игрока присланным сохранением.
// Сохранение без разделов stats и habits отклоняется целиком.
func (s *Service) Import(ctx context.Context, id Identity, data []byte) (*Session, []string, error) {
	imported, warnings, err := s.engine.Load(data)
	if err != nil {
		return nil, nil, err
	}
	if err := requireSections(data, "stats", "habits"); err != nil {
		return nil, nil, err
	}
	sess, err := s.Do(ctx, id, func(sess *Session) error {
		sess.State = imported
		sess.Rollover = s.engine.Rollover(imported)
		return nil
	})
	return sess, warnings, err
}

// Reset полностью сбрасывает прогресс игрока.
func (s *Service) Reset(ctx context.Context, userID int64) error {
	_, err := s.Refresh(ctx, userID, func(sess *Session) error {
		sess.State = s.engine.Reset()
		return nil
	})
	return err
}

// SetReminders включает или выключает вечерние напоминания.
func (s *Service) SetReminders(ctx context.Context, id Identity, enabled bool) error {
	_, err := s.Do(ctx, id, func(sess *Session) error {
		sess.Player.RemindersEnabled = enabled
		return nil
	})
	return err
}

// IsRejection отличает отказ движка (показать игроку) от сбоя (залогировать).
func IsRejection(err error) bool {
	for _, target := range rejections {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

var rejections = []error{
	common.ErrHabitNotFound, common.ErrHabitAlreadyDone, common.ErrHabitNotDone,
	common.ErrNoFreeSlots, common.ErrInvalidSchedule, common.ErrEmptyTitle,
	common.ErrQuestNotFound, common.ErrQuestNotCompleted, common.ErrQuestNotActive,
	common.ErrQuestNotCustom, common.ErrSystemQuest,
	common.ErrInsufficientFunds, common.ErrInvalidAmount, common.ErrLevelTooLow,
	common.ErrItemNotFound, common.ErrCategoryRequired, common.ErrCategoryExists,
	common.ErrHarvestDone, common.ErrFeatureDisabled,
}
