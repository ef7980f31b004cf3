// Package bot содержит главный модуль бота — приём апдейтов и маршрутизацию команд.
// bot.go принимает готовые обработчики фич и запускает polling.
package bot

import (
	"context"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	log "github.com/sirupsen/logrus"

	"serotonyl.ru/habit-bot/internal/bot/filters"
	"serotonyl.ru/habit-bot/internal/bot/middleware"
	"serotonyl.ru/habit-bot/internal/config"
	"serotonyl.ru/habit-bot/internal/features/admin"
	"serotonyl.ru/habit-bot/internal/features/economy"
	"serotonyl.ru/habit-bot/internal/features/habits"
	"serotonyl.ru/habit-bot/internal/features/journal"
	"serotonyl.ru/habit-bot/internal/features/players"
	"serotonyl.ru/habit-bot/internal/features/quests"
)

// Handlers — обработчики всех фич.
type Handlers struct {
	Players *players.Handler
	Habits  *habits.Handler
	Quests  *quests.Handler
	Economy *economy.Handler
	Journal *journal.Handler
	Admin   *admin.Handler
}

// Bot — главная структура бота, объединяющая все компоненты.
type Bot struct {
	api    *tgbotapi.BotAPI
	sender players.Sender
	cfg    *config.Config

	chatFilter  *filters.ChatFilter
	rateLimiter *middleware.RateLimiter
	handlers    Handlers

	parser *CommandParser

	// ограничитель параллелизма обработки апдейтов
	inflight chan struct{}
}

// New создаёт новый экземпляр бота со всеми зависимостями.
func New(api *tgbotapi.BotAPI, cfg *config.Config, handlers Handlers, chatFilter *filters.ChatFilter) *Bot {
	b := newBot(api, cfg, handlers, chatFilter)
	b.api = api
	return b
}

func newBot(sender players.Sender, cfg *config.Config, handlers Handlers, chatFilter *filters.ChatFilter) *Bot {
	maxInFlight := cfg.BotMaxInflight
	if maxInFlight <= 0 {
		maxInFlight = 64
	}

	return &Bot{
		sender:      sender,
		cfg:         cfg,
		chatFilter:  chatFilter,
		rateLimiter: middleware.NewRateLimiter(cfg.RateLimitRequests, cfg.RateLimitWindow),
		handlers:    handlers,
		parser:      NewCommandParser(),
		inflight:    make(chan struct{}, maxInFlight),
	}
}

// Start запускает polling обновлений от Telegram. Блокируется до отмены ctx.
func (b *Bot) Start(ctx context.Context) {
	defer b.rateLimiter.Close()

	u := tgbotapi.NewUpdate(0)
	u.Timeout = b.cfg.BotUpdateTimeoutSeconds

	updates := b.api.GetUpdatesChan(u)

	log.WithFields(log.Fields{
		"max_inflight": b.cfg.BotMaxInflight,
		"timeout_sec":  b.cfg.BotUpdateTimeoutSeconds,
	}).Info("Бот запущен и ожидает сообщения...")

	for {
		select {
		case <-ctx.Done():
			log.Info("Бот останавливается (ctx done)...")
			b.api.StopReceivingUpdates()
			return

		case update, ok := <-updates:
			if !ok {
				log.Info("Канал updates закрыт, бот остановлен")
				return
			}

			// лимит параллелизма
			b.inflight <- struct{}{}
			go func(upd tgbotapi.Update) {
				defer func() { <-b.inflight }()
				b.handleUpdate(ctx, upd)
			}(update)
		}
	}
}

// handleUpdate обрабатывает одно обновление от Telegram.
func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	defer middleware.RecoverFromPanic()

	if update.Message == nil || update.Message.Text == "" {
		return
	}
	message := update.Message

	// Логируем входящее
	middleware.LogMessage(message)

	// Личка и разрешённые группы
	if !b.chatFilter.CheckAccess(message) {
		return
	}

	private := message.Chat.IsPrivate()
	cmd, args, isCommand := b.parser.ParseCommand(message.Text)
	// Болтовню в группах не считаем и не трогаем
	if !isCommand && !private {
		return
	}

	// Rate limiting
	if !b.rateLimiter.Allow(message.From.ID) {
		log.WithField("user_id", message.From.ID).Debug("rate limited")
		return
	}

	chatID := message.Chat.ID
	userID := message.From.ID

	// В личке админ-панель (в том числе ввод пароля без префикса)
	if private && b.handlers.Admin != nil {
		if b.handlers.Admin.HandleAdminMessage(ctx, chatID, userID, message.Text) {
			return
		}
	}

	if !isCommand {
		players.Reply(b.sender, chatID, "Не понял. Список команд: !помощь")
		return
	}

	log.WithFields(log.Fields{
		"cmd":  cmd,
		"args": args,
	}).Debug("parsed command")

	b.routeCommand(ctx, chatID, players.IdentityFrom(message), cmd, args, b.parser.Tail(message.Text))
}

// routeCommand маршрутизирует команду к нужному обработчику.
// tail — всё после команды как есть, с переносами строк.
func (b *Bot) routeCommand(ctx context.Context, chatID int64, id players.Identity, cmd string, args []string, tail string) {
	h := b.handlers
	switch cmd {
	case "start", "старт":
		h.Players.HandleStart(ctx, chatID, id)
	case "help", "помощь":
		b.sendMessage(chatID, players.HelpText)
	case "напоминания":
		h.Players.HandleReminders(ctx, chatID, id, args)

	// --- Привычки ---
	case "привычки", "сегодня":
		h.Habits.HandleList(ctx, chatID, id)
	case "новая":
		h.Habits.HandleCreate(ctx, chatID, id, tail)
	case "изменить":
		h.Habits.HandleUpdate(ctx, chatID, id, args)
	case "готово":
		h.Habits.HandleComplete(ctx, chatID, id, args)
	case "отмена":
		h.Habits.HandleUndo(ctx, chatID, id, args)
	case "удалить":
		h.Habits.HandleDelete(ctx, chatID, id, args)
	case "когда":
		h.Habits.HandleNextDue(ctx, chatID, id, args)

	// --- Квесты ---
	case "квесты":
		h.Quests.HandleList(ctx, chatID, id)
	case "квест":
		h.Quests.HandleCreate(ctx, chatID, id, tail)
	case "сдать":
		h.Quests.HandleComplete(ctx, chatID, id, args)
	case "забрать":
		h.Quests.HandleClaim(ctx, chatID, id, args)
	case "удалитьквест":
		h.Quests.HandleDelete(ctx, chatID, id, args)

	// --- Экономика ---
	case "профиль":
		h.Economy.HandleProfile(ctx, chatID, id)
	case "магазин":
		h.Economy.HandleShop(ctx, chatID)
	case "купить":
		h.Economy.HandleBuy(ctx, chatID, id, args)
	case "сбор":
		h.Economy.HandleHarvest(ctx, chatID, id)

	// --- Дневник ---
	case "запись":
		h.Journal.HandleAdd(ctx, chatID, id, tail)
	case "дневник":
		h.Journal.HandleJournal(ctx, chatID, id)
	case "история":
		h.Journal.HandleHistory(ctx, chatID, id)
	case "итоги":
		h.Journal.HandleReview(ctx, chatID, id, args)
	case "достижения":
		h.Journal.HandleMilestones(ctx, chatID, id)
	case "экспорт":
		h.Journal.HandleExport(ctx, chatID, id)

	default:
		log.WithField("cmd", cmd).Debug("unknown command")
	}
}

// sendMessage — утилита для отправки сообщений.
func (b *Bot) sendMessage(chatID int64, text string) {
	players.Reply(b.sender, chatID, text)
}

// SendMessageToUser отправляет сообщение пользователю (для напоминаний и штрафов).
func (b *Bot) SendMessageToUser(userID int64, text string) {
	msg := tgbotapi.NewMessage(userID, text)
	if _, err := b.sender.Send(msg); err != nil {
		log.WithError(err).WithField("user_id", userID).Debug("Не удалось отправить сообщение")
	} else {
		log.WithField("user_id", userID).Debug("message sent")
	}
}

// CommandParser парсит русские команды с префиксами !, . и /
type CommandParser struct {
	validPrefixes []string
}

// NewCommandParser создаёт парсер команд.
func NewCommandParser() *CommandParser {
	return &CommandParser{
		validPrefixes: []string{"!", ".", "/"},
	}
}

// ParseCommand разбирает текст на команду и аргументы.
// Суффикс «@имя_бота» у команды отбрасывается.
func (p *CommandParser) ParseCommand(text string) (string, []string, bool) {
	text, ok := p.trimPrefix(text)
	if !ok {
		return "", nil, false
	}

	parts := strings.Fields(text)
	if len(parts) == 0 {
		return "", nil, false
	}

	command := parts[0]
	if at := strings.Index(command, "@"); at > 0 {
		command = command[:at]
	}
	command = strings.ToLower(command)
	var args []string
	if len(parts) > 1 {
		args = parts[1:]
	}

	return command, args, true
}

// Tail возвращает текст после команды без изменений (переносы строк сохраняются).
func (p *CommandParser) Tail(text string) string {
	text, ok := p.trimPrefix(text)
	if !ok {
		return ""
	}
	text = strings.TrimSpace(text)
	if i := strings.IndexAny(text, " \t\n"); i >= 0 {
		return strings.TrimSpace(text[i:])
	}
	return ""
}

func (p *CommandParser) trimPrefix(text string) (string, bool) {
	text = strings.TrimSpace(text)
	for _, prefix := range p.validPrefixes {
		if strings.HasPrefix(text, prefix) {
			return strings.TrimSpace(strings.TrimPrefix(text, prefix)), true
		}
	}
	return "", false
}
