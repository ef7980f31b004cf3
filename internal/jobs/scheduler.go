// Package jobs управляет фоновыми задачами (cron).
// scheduler.go настраивает расписание: днём предупреждение о копящемся штрафе,
// вечером напоминания о невыполненных привычках.
// Задачи только читают состояние: переход дня делает сам игрок при входе.
package jobs

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"

	"serotonyl.ru/habit-bot/internal/common"
	"serotonyl.ru/habit-bot/internal/config"
	"serotonyl.ru/habit-bot/internal/features/habits"
	"serotonyl.ru/habit-bot/internal/features/players"
)

// Scheduler управляет фоновыми задачами.
type Scheduler struct {
	cron     *cron.Cron
	cfg      *config.Config
	players  *players.Service
	habits   *habits.Service
	sendFunc func(userID int64, text string)
}

// NewScheduler создаёт планировщик задач в часовом поясе игры (APP_TIMEZONE).
func NewScheduler(cfg *config.Config, p *players.Service, h *habits.Service, sendFunc func(userID int64, text string)) *Scheduler {
	loc := common.LoadLocation(cfg.AppTimezone)
	if loc.String() != cfg.AppTimezone {
		log.WithField("timezone", cfg.AppTimezone).Warn("Не удалось загрузить часовой пояс, используем UTC+3")
	}

	return &Scheduler{
		cron:     cron.New(cron.WithLocation(loc)),
		cfg:      cfg,
		players:  p,
		habits:   h,
		sendFunc: sendFunc,
	}
}

// Start регистрирует и запускает все фоновые задачи.
func (s *Scheduler) Start(ctx context.Context) error {
	if _, err := s.cron.AddFunc(s.cfg.AbsenceCron, func() {
		log.Info("[CRON] Проверка отсутствующих игроков")
		if err := s.RunAbsence(ctx); err != nil {
			log.WithError(err).Error("[CRON] Ошибка проверки отсутствующих")
		}
	}); err != nil {
		return fmt.Errorf("ABSENCE_CRON: %w", err)
	}

	if s.cfg.FeatureRemindersEnabled {
		if _, err := s.cron.AddFunc(s.cfg.ReminderCron, func() {
			log.Debug("[CRON] Вечерние напоминания")
			if err := s.RunReminders(ctx); err != nil {
				log.WithError(err).Error("[CRON] Ошибка напоминаний")
			}
		}); err != nil {
			return fmt.Errorf("REMINDER_CRON: %w", err)
		}
	}

	s.cron.Start()
	log.WithFields(log.Fields{
		"timezone":  s.cfg.AppTimezone,
		"absence":   s.cfg.AbsenceCron,
		"reminders": s.cfg.FeatureRemindersEnabled,
	}).Info("Планировщик задач запущен")
	return nil
}

// RunAbsence предупреждает игроков, у которых при входе спишется штраф.
func (s *Scheduler) RunAbsence(ctx context.Context) error {
	list, err := s.players.Absentees(ctx)
	if err != nil {
		return err
	}
	for _, a := range list {
		s.sendFunc(a.Player.ChatID, players.AbsenceText(a))
	}
	return nil
}

// RunReminders рассылает список невыполненных на сегодня привычек.
func (s *Scheduler) RunReminders(ctx context.Context) error {
	list, err := s.habits.Reminders(ctx)
	if err != nil {
		return err
	}
	for _, r := range list {
		s.sendFunc(r.Player.ChatID, habits.ReminderText(r))
	}
	log.WithField("sent", len(list)).Info("[CRON] Напоминания отправлены")
	return nil
}

// Stop останавливает планировщик и ждёт завершения запущенных задач.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	log.Info("Планировщик задач остановлен")
}
