// Package habits — handlers.go обрабатывает команды:
// !привычки, !новая, !изменить, !готово, !отмена, !удалить, !когда.
package habits

import (
	"context"
	"fmt"
	"strings"

	"serotonyl.ru/habit-bot/internal/common"
	"serotonyl.ru/habit-bot/internal/engine"
	"serotonyl.ru/habit-bot/internal/features/players"
)

// Handler обрабатывает команды привычек.
type Handler struct {
	service *Service
	bot     players.Sender
}

// NewHandler создаёт обработчик команд привычек.
func NewHandler(service *Service, bot players.Sender) *Handler {
	return &Handler{service: service, bot: bot}
}

func (h *Handler) reply(chatID int64, sess *players.Session, text string) {
	players.Reply(h.bot, chatID, players.WithNotices(sess, text))
}

// HandleList показывает привычки: сначала сегодняшние, потом остальные.
func (h *Handler) HandleList(ctx context.Context, chatID int64, id players.Identity) {
	sess, err := h.service.List(ctx, id)
	if err != nil {
		h.reply(chatID, sess, players.ErrorText(err, "не удалось загрузить привычки"))
		return
	}
	h.reply(chatID, sess, RenderList(sess.State, h.service.engine))
}

// RenderList — список привычек с номерами для команд.
func RenderList(s *engine.State, eng *engine.Engine) string {
	if len(s.Habits) == 0 {
		return fmt.Sprintf("📭 Привычек пока нет (слотов: %d)\nДобавь: !новая Зарядка | ежедневно | Health", s.Stats.HabitSlots)
	}
	today := eng.Today()
	var due, other strings.Builder
	for i, hb := range s.Habits {
		mark := "⬜"
		if hb.Status == engine.HabitDone {
			mark = "✅"
		}
		line := fmt.Sprintf("%s %d. %s [%s] +%dg +%dXP", mark, i+1, hb.Title, hb.Category, hb.RewardGold, hb.RewardXP)
		if hb.Streak > 0 {
			line += fmt.Sprintf(" 🔥%d", hb.Streak)
		}
		if engine.IsDue(hb, today) {
			fmt.Fprintf(&due, "%s\n", line)
			continue
		}
		next := engine.NextDueDate(hb, today)
		when := "не скоро"
		if !engine.IsFarFuture(next) {
			when = common.FormatDateRu(next)
		}
		fmt.Fprintf(&other, "💤 %d. %s (%s, след.: %s)\n", i+1, hb.Title, Describe(hb.Recurrence), when)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "📋 Привычки (%d/%d)\n", len(s.Habits), s.Stats.HabitSlots)
	if due.Len() > 0 {
		sb.WriteString("\nСегодня:\n")
		sb.WriteString(due.String())
	}
	if other.Len() > 0 {
		sb.WriteString("\nНе сегодня:\n")
		sb.WriteString(other.String())
	}
	return strings.TrimRight(sb.String(), "\n")
}

// HandleCreate: !новая Название | расписание | категория | золото опыт
func (h *Handler) HandleCreate(ctx context.Context, chatID int64, id players.Identity, text string) {
	if strings.TrimSpace(text) == "" {
		players.Reply(h.bot, chatID, "❌ Формат: !новая Название | расписание | категория | золото опыт")
		return
	}
	d, err := ParseDraft(text)
	if err != nil {
		players.Reply(h.bot, chatID, players.ErrorText(err, "не удалось разобрать привычку"))
		return
	}
	habit, completed, sess, err := h.service.Create(ctx, id, d)
	if err != nil {
		h.reply(chatID, sess, players.ErrorText(err, "не удалось создать привычку"))
		return
	}
	text = fmt.Sprintf("🧪 Новый рецепт: %s\n📅 %s\n🏷 %s, награда +%dg +%dXP",
		habit.Title, Describe(habit.Recurrence), habit.Category, habit.RewardGold, habit.RewardXP)
	h.reply(chatID, sess, text+players.CompletedNotice(completed))
}

// HandleUpdate: !изменить N Название | расписание | категория | золото опыт
func (h *Handler) HandleUpdate(ctx context.Context, chatID int64, id players.Identity, args []string) {
	if len(args) < 2 {
		players.Reply(h.bot, chatID, "❌ Формат: !изменить N Название | расписание | категория | золото опыт")
		return
	}
	d, err := ParseDraft(strings.Join(args[1:], " "))
	if err != nil {
		players.Reply(h.bot, chatID, players.ErrorText(err, "не удалось разобрать привычку"))
		return
	}
	habit, sess, err := h.service.Update(ctx, id, args[0], d)
	if err != nil {
		h.reply(chatID, sess, players.ErrorText(err, "не удалось изменить привычку"))
		return
	}
	h.reply(chatID, sess, fmt.Sprintf("✏️ %s: %s", habit.Title, Describe(habit.Recurrence)))
}

// HandleComplete: !готово N
func (h *Handler) HandleComplete(ctx context.Context, chatID int64, id players.Identity, args []string) {
	if len(args) == 0 {
		players.Reply(h.bot, chatID, "❌ Формат: !готово N (номер из !привычки)")
		return
	}
	res, sess, err := h.service.Complete(ctx, id, strings.Join(args, " "))
	if err != nil {
		h.reply(chatID, sess, players.ErrorText(err, "не удалось отметить привычку"))
		return
	}
	h.reply(chatID, sess, RenderCompletion(res, sess.State))
}

// RenderCompletion — ответ на выполнение привычки.
func RenderCompletion(res engine.CompletionResult, s *engine.State) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "✅ %s сварено! +%s, +%d XP\n", res.Habit.Title, common.FormatGold(res.Gold), res.XP)
	fmt.Fprintf(&sb, "🔥 Серия: %d, всего %d %s", res.Habit.Streak, res.Habit.Completions, common.PluralizeTimes(res.Habit.Completions))
	if res.MasteryGems > 0 {
		fmt.Fprintf(&sb, "\n💎 Мастерство! +%s", common.FormatGems(res.MasteryGems))
	}
	if res.LevelsAdded > 0 {
		fmt.Fprintf(&sb, "\n🎉 Новый уровень %d: %s", s.Stats.Level, s.Stats.Title)
	}
	fmt.Fprintf(&sb, "\n📊 Сегодня сделано: %d", res.DoneToday)
	sb.WriteString(players.CompletedNotice(res.Completed))
	return sb.String()
}

// HandleUndo: !отмена N
func (h *Handler) HandleUndo(ctx context.Context, chatID int64, id players.Identity, args []string) {
	if len(args) == 0 {
		players.Reply(h.bot, chatID, "❌ Формат: !отмена N")
		return
	}
	habit, sess, err := h.service.Undo(ctx, id, strings.Join(args, " "))
	if err != nil {
		h.reply(chatID, sess, players.ErrorText(err, "не удалось отменить"))
		return
	}
	h.reply(chatID, sess, fmt.Sprintf("↩️ %s снова в списке дел. Награда остаётся у тебя.", habit.Title))
}

// HandleDelete: !удалить N
func (h *Handler) HandleDelete(ctx context.Context, chatID int64, id players.Identity, args []string) {
	if len(args) == 0 {
		players.Reply(h.bot, chatID, "❌ Формат: !удалить N")
		return
	}
	habit, sess, err := h.service.Delete(ctx, id, strings.Join(args, " "))
	if err != nil {
		h.reply(chatID, sess, players.ErrorText(err, "не удалось удалить привычку"))
		return
	}
	h.reply(chatID, sess, fmt.Sprintf("🗑 Привычка «%s» удалена", habit.Title))
}

// HandleNextDue: !когда N
func (h *Handler) HandleNextDue(ctx context.Context, chatID int64, id players.Identity, args []string) {
	if len(args) == 0 {
		players.Reply(h.bot, chatID, "❌ Формат: !когда N")
		return
	}
	habit, next, sess, err := h.service.NextDue(ctx, id, strings.Join(args, " "))
	if err != nil {
		h.reply(chatID, sess, players.ErrorText(err, "не удалось посчитать дату"))
		return
	}
	if engine.IsFarFuture(next) {
		h.reply(chatID, sess, fmt.Sprintf("📅 %s: в ближайший год по расписанию не выпадает", habit.Title))
		return
	}
	h.reply(chatID, sess, fmt.Sprintf("📅 %s (%s): следующий раз %s", habit.Title, Describe(habit.Recurrence), common.FormatDateRu(next)))
}
