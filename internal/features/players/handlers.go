// Package players — handlers.go: общие для всех фич ответы в Telegram
// и команды самого игрока (!старт, !напоминания).
package players

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	log "github.com/sirupsen/logrus"

	"serotonyl.ru/habit-bot/internal/common"
	"serotonyl.ru/habit-bot/internal/engine"
)

// Sender — то, чем обработчики отправляют ответы. *tgbotapi.BotAPI подходит.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Reply отправляет текст в чат.
func Reply(bot Sender, chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := bot.Send(msg); err != nil {
		log.WithError(err).WithField("chat_id", chatID).Error("Ошибка отправки сообщения")
	}
}

// ErrorText превращает ошибку действия в ответ игроку.
// Отказы движка показываются как есть, сбои логируются.
func ErrorText(err error, action string) string {
	if IsRejection(err) {
		switch {
		case errors.Is(err, common.ErrInsufficientFunds):
			return "💸 Не хватает средств"
		case errors.Is(err, common.ErrNoFreeSlots):
			return "📦 Все слоты для привычек заняты. Расширь полку в !магазин"
		case errors.Is(err, common.ErrHabitAlreadyDone):
			return "✅ Уже сделано, следующий раз по расписанию"
		}
		return "❌ " + capitalize(err.Error())
	}
	log.WithError(err).Error(action)
	return "❌ Ошибка: " + action
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	return strings.ToUpper(string(r[0])) + string(r[1:])
}

// RolloverNotice — строка о смене дня, которую стоит показать перед ответом.
// Пусто, если день не менялся.
func RolloverNotice(out engine.RolloverOutcome) string {
	switch out.State {
	case engine.RolloverConsecutive:
		return fmt.Sprintf("🔥 Серия входов: %d %s", out.LoginStreak, common.PluralizeDays(out.LoginStreak))
	case engine.RolloverMissed:
		if out.Penalty > 0 {
			return fmt.Sprintf("⚠️ Тебя не было %d %s. Штраф: −%s",
				out.DaysAway, common.PluralizeDays(out.DaysAway), common.FormatGold(out.Penalty))
		}
		return fmt.Sprintf("👋 С возвращением! Тебя не было %d %s", out.DaysAway, common.PluralizeDays(out.DaysAway))
	}
	return ""
}

// CompletedNotice — список квестов, закрытых действием.
func CompletedNotice(quests []engine.Quest) string {
	if len(quests) == 0 {
		return ""
	}
	var sb strings.Builder
	for _, q := range quests {
		fmt.Fprintf(&sb, "\n📜 Квест выполнен: %s (!забрать чтобы получить награду)", q.Title)
	}
	return sb.String()
}

// WithNotices склеивает уведомление о смене дня и основной текст.
func WithNotices(sess *Session, text string) string {
	if sess == nil {
		return text
	}
	notice := RolloverNotice(sess.Rollover)
	text += CompletedNotice(sess.Rollover.Completed)
	if notice == "" {
		return text
	}
	return notice + "\n\n" + text
}

// IdentityFrom берёт данные игрока из сообщения.
func IdentityFrom(m *tgbotapi.Message) Identity {
	id := Identity{ChatID: m.Chat.ID}
	if m.From != nil {
		id.UserID = m.From.ID
		id.Username = m.From.UserName
		id.FirstName = m.From.FirstName
	}
	// Напоминания шлём только в личку
	if !m.Chat.IsPrivate() {
		id.ChatID = 0
	}
	return id
}

// Handler обрабатывает команды игрока.
type Handler struct {
	service *Service
	bot     Sender
}

// NewHandler создаёт обработчик команд игрока.
func NewHandler(service *Service, bot Sender) *Handler {
	return &Handler{service: service, bot: bot}
}

// HandleStart регистрирует игрока и показывает справку.
func (h *Handler) HandleStart(ctx context.Context, chatID int64, id Identity) {
	sess, err := h.service.Do(ctx, id, nil)
	if err != nil {
		Reply(h.bot, chatID, ErrorText(err, "не удалось открыть профиль"))
		return
	}
	greeting := "🧪 С возвращением в лабораторию!"
	if sess.New {
		greeting = fmt.Sprintf("🧪 Добро пожаловать, %s! Стартовый капитал: %s и %s.",
			sess.Player.DisplayName(),
			common.FormatGold(sess.State.Stats.Gold), common.FormatGems(sess.State.Stats.Gems))
	}
	Reply(h.bot, chatID, WithNotices(sess, greeting+"\n\n"+HelpText))
}

// HandleReminders: !напоминания вкл|выкл
func (h *Handler) HandleReminders(ctx context.Context, chatID int64, id Identity, args []string) {
	if len(args) == 0 {
		Reply(h.bot, chatID, "Формат: !напоминания вкл или !напоминания выкл")
		return
	}
	var enabled bool
	switch strings.ToLower(args[0]) {
	case "вкл", "on", "да":
		enabled = true
	case "выкл", "off", "нет":
		enabled = false
	default:
		Reply(h.bot, chatID, "Формат: !напоминания вкл или !напоминания выкл")
		return
	}
	if err := h.service.SetReminders(ctx, id, enabled); err != nil {
		Reply(h.bot, chatID, ErrorText(err, "не удалось сохранить настройку"))
		return
	}
	if enabled {
		Reply(h.bot, chatID, "🔔 Вечерние напоминания включены")
	} else {
		Reply(h.bot, chatID, "🔕 Вечерние напоминания выключены")
	}
}

// HelpText — список команд.
const HelpText = `Привычки:
!привычки — список на сегодня
!новая Название | расписание | категория | золото опыт
!готово N — отметить выполнение, !отмена N — отменить
!изменить N Название | расписание | категория | золото опыт
!удалить N, !когда N — следующая дата
Расписание: ежедневно, каждые 3 дня, пн ср пт, каждые 2 недели сб, 15 числа, каждые 3 месяца 1 числа, последняя пт

Квесты:
!квесты, !квест Название | цель | золото самоцветы опыт
!сдать N, !забрать N|все, !удалитьквест N

Лаборатория:
!профиль, !магазин, !купить товар [категория], !сбор

Дневник:
!запись Заголовок | текст | теги, !дневник, !история, !итоги неделя|месяц|всё, !достижения, !экспорт

!напоминания вкл|выкл`
