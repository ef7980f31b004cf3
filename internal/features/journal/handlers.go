package journal

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	log "github.com/sirupsen/logrus"

	"serotonyl.ru/habit-bot/internal/common"
	"serotonyl.ru/habit-bot/internal/engine"
	"serotonyl.ru/habit-bot/internal/features/players"
)

// Сколько записей показывать в !дневник и !история
const (
	journalPageSize = 5
	historyPageSize = 15
)

// Handler обрабатывает команды дневника и истории.
type Handler struct {
	service *Service
	bot     players.Sender
}

// NewHandler создаёт обработчик.
func NewHandler(service *Service, bot players.Sender) *Handler {
	return &Handler{service: service, bot: bot}
}

func (h *Handler) reply(chatID int64, sess *players.Session, text string) {
	players.Reply(h.bot, chatID, players.WithNotices(sess, text))
}

// HandleAdd: !запись Заголовок | текст | теги
func (h *Handler) HandleAdd(ctx context.Context, chatID int64, id players.Identity, text string) {
	if strings.TrimSpace(text) == "" {
		players.Reply(h.bot, chatID, "❌ Формат: !запись Заголовок | текст | теги")
		return
	}
	entry, completed, sess, err := h.service.AddEntry(ctx, id, text)
	if err != nil {
		h.reply(chatID, sess, players.ErrorText(err, "не удалось сохранить запись"))
		return
	}
	title := entry.Title
	if title == "" {
		title = common.Truncate(entry.Content, 30)
	}
	h.reply(chatID, sess, fmt.Sprintf("📖 Запись «%s» добавлена в гримуар", title)+players.CompletedNotice(completed))
}

// HandleJournal: !дневник — последние записи.
func (h *Handler) HandleJournal(ctx context.Context, chatID int64, id players.Identity) {
	sess, err := h.service.Open(ctx, id)
	if err != nil {
		h.reply(chatID, sess, players.ErrorText(err, "не удалось открыть дневник"))
		return
	}
	h.reply(chatID, sess, RenderJournal(sess.State.JournalEntries))
}

// RenderJournal — последние записи дневника.
func RenderJournal(entries []engine.JournalEntry) string {
	if len(entries) == 0 {
		return "📖 Гримуар пуст. Добавь запись: !запись Заголовок | текст"
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "📖 Гримуар (%d)\n", len(entries))
	for _, e := range entries[:min(len(entries), journalPageSize)] {
		fmt.Fprintf(&sb, "\n%s", e.Date)
		if e.Title != "" {
			fmt.Fprintf(&sb, " %s", e.Title)
		}
		if e.Content != "" {
			fmt.Fprintf(&sb, "\n%s", common.Truncate(e.Content, 200))
		}
		if len(e.Tags) > 0 {
			fmt.Fprintf(&sb, "\n#%s", strings.Join(e.Tags, " #"))
		}
		sb.WriteString("\n")
	}
	return strings.TrimRight(sb.String(), "\n")
}

// HandleHistory: !история — последние события.
func (h *Handler) HandleHistory(ctx context.Context, chatID int64, id players.Identity) {
	sess, err := h.service.Open(ctx, id)
	if err != nil {
		h.reply(chatID, sess, players.ErrorText(err, "не удалось загрузить историю"))
		return
	}
	h.reply(chatID, sess, RenderHistory(sess.State.HistoryLogs))
}

var logIcons = map[engine.LogKind]string{
	engine.LogHabit:   "⚗️",
	engine.LogQuest:   "📜",
	engine.LogHarvest: "🌿",
	engine.LogShop:    "🛍",
	engine.LogPenalty: "⚠️",
}

// RenderHistory — последние записи журнала событий.
func RenderHistory(logs []engine.HistoryLog) string {
	if len(logs) == 0 {
		return "📋 История пока пуста"
	}
	var sb strings.Builder
	sb.WriteString("📋 Последние события:\n")
	for _, l := range logs[:min(len(logs), historyPageSize)] {
		title := l.Message
		if l.Kind == engine.LogHabit {
			title, _, _ = engine.SplitHabitMessage(l.Message)
		}
		fmt.Fprintf(&sb, "\n%s %s %s", l.Date, logIcons[l.Kind], title)
		if l.RewardSummary != "" {
			fmt.Fprintf(&sb, " (%s)", l.RewardSummary)
		}
	}
	if len(logs) > historyPageSize {
		fmt.Fprintf(&sb, "\n\n…и ещё %d. Полностью: !экспорт", len(logs)-historyPageSize)
	}
	return sb.String()
}

// HandleReview: !итоги неделя|месяц|всё
func (h *Handler) HandleReview(ctx context.Context, chatID int64, id players.Identity, args []string) {
	arg := ""
	if len(args) > 0 {
		arg = args[0]
	}
	period, ok := ParsePeriod(arg)
	if !ok {
		players.Reply(h.bot, chatID, "❌ Формат: !итоги неделя|месяц|всё")
		return
	}
	r, sess, err := h.service.Review(ctx, id, period)
	if err != nil {
		h.reply(chatID, sess, players.ErrorText(err, "не удалось посчитать итоги"))
		return
	}
	h.reply(chatID, sess, RenderReview(period, r))
}

var periodTitles = map[Period]string{
	PeriodWeek:  "за неделю",
	PeriodMonth: "за месяц",
	PeriodAll:   "за всё время",
}

// RenderReview — итоги за период.
func RenderReview(p Period, r engine.Review) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "📊 Итоги %s\n\n", periodTitles[p])
	fmt.Fprintf(&sb, "✅ Выполнено: %d\n", r.Completed)
	fmt.Fprintf(&sb, "📅 Активных дней: %d\n", r.ActiveDays)
	fmt.Fprintf(&sb, "💰 Заработано: %s, %s, %s XP\n",
		common.FormatGold(r.GoldEarned), common.FormatGems(r.GemsEarned), common.FormatNumber(r.XPEarned))
	if r.GoldSpent > 0 || r.GemsSpent > 0 {
		fmt.Fprintf(&sb, "🛍 Потрачено: %s, %s\n", common.FormatGold(r.GoldSpent), common.FormatGems(r.GemsSpent))
	}
	if r.Penalties > 0 {
		fmt.Fprintf(&sb, "⚠️ Штрафы: %s\n", common.FormatGold(r.Penalties))
	}
	if len(r.Categories) > 0 {
		fmt.Fprintf(&sb, "🏷 Категории: %s\n", strings.Join(r.Categories, ", "))
	}
	return strings.TrimRight(sb.String(), "\n")
}

// HandleMilestones: !достижения
func (h *Handler) HandleMilestones(ctx context.Context, chatID int64, id players.Identity) {
	sess, err := h.service.Open(ctx, id)
	if err != nil {
		h.reply(chatID, sess, players.ErrorText(err, "не удалось загрузить достижения"))
		return
	}
	h.reply(chatID, sess, RenderMilestones(engine.Milestones(sess.State.HistoryLogs)))
}

// RenderMilestones — достижения со ступенями.
func RenderMilestones(list []engine.Milestone) string {
	var sb strings.Builder
	sb.WriteString("🏆 Достижения\n")
	for _, m := range list {
		tier := m.Tier()
		if tier == "" {
			tier = "нет"
		}
		fmt.Fprintf(&sb, "\n%s [%s]: %s", m.Title, tier, common.FormatNumber(m.Value))
		if next, ok := m.Next(); ok {
			fmt.Fprintf(&sb, " / %s до %s", common.FormatNumber(next.Threshold), next.Name)
		}
	}
	return sb.String()
}

// HandleExport: !экспорт — история файлом CSV.
func (h *Handler) HandleExport(ctx context.Context, chatID int64, id players.Identity) {
	sess, err := h.service.Open(ctx, id)
	if err != nil {
		h.reply(chatID, sess, players.ErrorText(err, "не удалось выгрузить историю"))
		return
	}
	data, err := ExportCSV(sess.State)
	if err != nil {
		players.Reply(h.bot, chatID, players.ErrorText(err, "не удалось выгрузить историю"))
		return
	}
	doc := tgbotapi.NewDocument(chatID, tgbotapi.FileBytes{
		Name:  fmt.Sprintf("history_%s.csv", sess.State.Stats.LastLoginDate),
		Bytes: data,
	})
	doc.Caption = fmt.Sprintf("📋 История: %d записей", len(sess.State.HistoryLogs))
	if _, err := h.bot.Send(doc); err != nil {
		log.WithError(err).WithField("chat_id", chatID).Error("Ошибка отправки файла")
	}
}
