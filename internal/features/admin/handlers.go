// Package admin — handlers.go обрабатывает админ-команды в личных сообщениях.
// Поток: команда → пароль (если нет сессии) → действие.
//
// Команды: админ, игроки, сброс <id>, множитель <id> <x>, выдать <id> <золото> [самоцветы], выход.
package admin

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	log "github.com/sirupsen/logrus"

	"serotonyl.ru/habit-bot/internal/common"
	"serotonyl.ru/habit-bot/internal/features/players"
)

// Handler обрабатывает админ-команды.
type Handler struct {
	service *Service
	bot     players.Sender
}

// NewHandler создаёт обработчик админ-команд.
func NewHandler(service *Service, bot players.Sender) *Handler {
	return &Handler{service: service, bot: bot}
}

var adminCommands = map[string]bool{
	"админ": true, "панель": true, "игроки": true, "сброс": true,
	"множитель": true, "выдать": true, "выход": true,
}

// HandleAdminMessage обрабатывает сообщение от администратора в личке.
// Возвращает false, если сообщение не админское и его нужно обработать как обычное.
func (h *Handler) HandleAdminMessage(ctx context.Context, chatID int64, userID int64, text string) bool {
	if !h.service.IsAdmin(userID) {
		return false
	}

	dialog := h.service.Dialog(userID)
	if dialog != nil && dialog.State == StateAwaitingPassword {
		h.handlePasswordInput(ctx, chatID, userID, text)
		return true
	}

	fields := strings.Fields(text)
	if len(fields) == 0 {
		return false
	}
	cmd := strings.ToLower(strings.TrimLeft(fields[0], "/"))
	args := fields[1:]

	if dialog != nil && dialog.State == StateConfirmReset {
		h.handleResetConfirm(ctx, chatID, userID, dialog.Target, cmd)
		return true
	}
	if cmd == "login" {
		cmd = "админ"
	}
	if !adminCommands[cmd] {
		return false
	}

	if !h.service.HasActiveSession(ctx, userID) {
		h.sendMessage(chatID, "🔐 Введите пароль для доступа к админ-панели:")
		h.service.SetDialog(userID, StateAwaitingPassword, 0)
		return true
	}

	switch cmd {
	case "админ", "панель":
		h.showKeyboard(chatID)
	case "игроки":
		h.handlePlayers(ctx, chatID)
	case "сброс":
		h.startReset(ctx, chatID, userID, args)
	case "множитель":
		h.handleMultiplier(ctx, chatID, userID, args)
	case "выдать":
		h.handleGrant(ctx, chatID, userID, args)
	case "выход":
		if err := h.service.Logout(ctx, userID); err != nil {
			log.WithError(err).Error("Ошибка завершения сессии")
		}
		msg := tgbotapi.NewMessage(chatID, "👋 Сессия завершена")
		msg.ReplyMarkup = tgbotapi.NewRemoveKeyboard(true)
		h.send(msg)
	}
	return true
}

// handlePasswordInput обрабатывает ввод пароля.
func (h *Handler) handlePasswordInput(ctx context.Context, chatID int64, userID int64, password string) {
	h.service.ClearDialog(userID)
	if err := h.service.VerifyPassword(ctx, userID, strings.TrimSpace(password)); err != nil {
		if errors.Is(err, common.ErrWrongPassword) || errors.Is(err, common.ErrTooManyAttempts) || errors.Is(err, common.ErrNotAdmin) {
			h.sendMessage(chatID, "❌ "+err.Error())
			return
		}
		log.WithError(err).Error("Ошибка проверки пароля")
		h.sendMessage(chatID, "❌ Ошибка проверки пароля")
		return
	}
	h.sendMessage(chatID, "✅ Аутентификация успешна!")
	h.showKeyboard(chatID)
}

// showKeyboard отображает клавиатуру админ-панели.
func (h *Handler) showKeyboard(chatID int64) {
	keyboard := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton("Игроки"),
			tgbotapi.NewKeyboardButton("Выход"),
		),
	)
	msg := tgbotapi.NewMessage(chatID, "✅ Админ-панель открыта\n\n"+
		"сброс <id> — стереть прогресс игрока\n"+
		"множитель <id> <x> — множитель наград\n"+
		"выдать <id> <золото> [самоцветы] — начислить или списать")
	msg.ReplyMarkup = keyboard
	h.send(msg)
}

func (h *Handler) handlePlayers(ctx context.Context, chatID int64) {
	list, err := h.service.players.List(ctx)
	if err != nil {
		log.WithError(err).Error("Ошибка получения игроков")
		h.sendMessage(chatID, "❌ Ошибка получения списка игроков")
		return
	}
	if len(list) == 0 {
		h.sendMessage(chatID, "Игроков пока нет")
		return
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "👥 Игроков: %d\n\n", len(list))
	for _, p := range list {
		fmt.Fprintf(&sb, "%d  %s, был %s\n", p.UserID, p.DisplayName(), p.LastLoginDate)
	}
	h.sendMessage(chatID, sb.String())
}

// --- Сброс (2 шага) ---

func (h *Handler) startReset(ctx context.Context, chatID int64, userID int64, args []string) {
	target, ok := parseUserID(args)
	if !ok {
		h.sendMessage(chatID, "❌ Формат: сброс <user_id>")
		return
	}
	if _, _, err := h.service.players.View(ctx, target); err != nil {
		h.sendMessage(chatID, fmt.Sprintf("❌ Игрок %d: %s", target, err.Error()))
		return
	}
	h.sendMessage(chatID, fmt.Sprintf("⚠️ Стереть весь прогресс игрока %d? Ответьте «да» или «нет».", target))
	h.service.SetDialog(userID, StateConfirmReset, target)
}

func (h *Handler) handleResetConfirm(ctx context.Context, chatID int64, userID int64, target int64, answer string) {
	h.service.ClearDialog(userID)
	if answer != "да" {
		h.sendMessage(chatID, "Сброс отменён")
		return
	}
	if err := h.service.ResetPlayer(ctx, userID, target); err != nil {
		h.sendMessage(chatID, fmt.Sprintf("❌ Ошибка: %s", err.Error()))
		return
	}
	h.sendMessage(chatID, fmt.Sprintf("✅ Прогресс игрока %d сброшен", target))
}

func (h *Handler) handleMultiplier(ctx context.Context, chatID int64, userID int64, args []string) {
	target, ok := parseUserID(args)
	if !ok || len(args) < 2 {
		h.sendMessage(chatID, "❌ Формат: множитель <user_id> <x>")
		return
	}
	value, err := strconv.ParseFloat(strings.ReplaceAll(args[1], ",", "."), 64)
	if err != nil {
		h.sendMessage(chatID, "❌ Множитель должен быть числом")
		return
	}
	if err := h.service.SetMultiplier(ctx, userID, target, value); err != nil {
		h.sendMessage(chatID, fmt.Sprintf("❌ Ошибка: %s", err.Error()))
		return
	}
	h.sendMessage(chatID, fmt.Sprintf("✅ Игрок %d: множитель ×%.2f", target, value))
}

func (h *Handler) handleGrant(ctx context.Context, chatID int64, userID int64, args []string) {
	target, ok := parseUserID(args)
	if !ok || len(args) < 2 {
		h.sendMessage(chatID, "❌ Формат: выдать <user_id> <золото> [самоцветы]")
		return
	}
	gold, err := strconv.ParseInt(args[1], 10, 64)
	if err != nil {
		h.sendMessage(chatID, "❌ Сумма должна быть числом")
		return
	}
	var gems int64
	if len(args) > 2 {
		if gems, err = strconv.ParseInt(args[2], 10, 64); err != nil {
			h.sendMessage(chatID, "❌ Сумма должна быть числом")
			return
		}
	}
	sess, err := h.service.Grant(ctx, userID, target, gold, gems)
	if err != nil {
		h.sendMessage(chatID, fmt.Sprintf("❌ Ошибка: %s", err.Error()))
		return
	}
	h.sendMessage(chatID, fmt.Sprintf("✅ Игрок %d: %s, %s", target,
		common.FormatGold(sess.State.Stats.Gold), common.FormatGems(sess.State.Stats.Gems)))
}

func parseUserID(args []string) (int64, bool) {
	if len(args) == 0 {
		return 0, false
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	return id, err == nil && id > 0
}

func (h *Handler) send(c tgbotapi.Chattable) {
	if _, err := h.bot.Send(c); err != nil {
		log.WithError(err).Error("Ошибка отправки сообщения")
	}
}

func (h *Handler) sendMessage(chatID int64, text string) {
	h.send(tgbotapi.NewMessage(chatID, text))
}
