package quests

import (
	"context"
	"fmt"
	"strings"

	"serotonyl.ru/habit-bot/internal/common"
	"serotonyl.ru/habit-bot/internal/engine"
	"serotonyl.ru/habit-bot/internal/features/players"
)

// Handler обрабатывает команды квестов.
type Handler struct {
	service *Service
	bot     players.Sender
}

// NewHandler создаёт обработчик команд квестов.
func NewHandler(service *Service, bot players.Sender) *Handler {
	return &Handler{service: service, bot: bot}
}

func (h *Handler) reply(chatID int64, sess *players.Session, text string) {
	players.Reply(h.bot, chatID, players.WithNotices(sess, text))
}

// HandleList: !квесты
func (h *Handler) HandleList(ctx context.Context, chatID int64, id players.Identity) {
	sess, err := h.service.List(ctx, id)
	if err != nil {
		h.reply(chatID, sess, players.ErrorText(err, "не удалось загрузить квесты"))
		return
	}
	h.reply(chatID, sess, RenderList(sess.State))
}

var statusIcons = map[engine.QuestStatus]string{
	engine.QuestActive:    "🔸",
	engine.QuestCompleted: "🎁",
	engine.QuestClaimed:   "✔️",
}

// RenderList — квесты с номерами и прогрессом.
func RenderList(s *engine.State) string {
	if len(s.Quests) == 0 {
		return "📜 Квестов нет"
	}
	var sb strings.Builder
	sb.WriteString("📜 Квесты\n")
	for i, q := range s.Quests {
		fmt.Fprintf(&sb, "\n%s %d. %s", statusIcons[q.Status], i+1, q.Title)
		if q.MaxProgress > 1 {
			fmt.Fprintf(&sb, " [%d/%d]", q.Progress, q.MaxProgress)
		}
		if q.Kind == engine.QuestCustom {
			sb.WriteString(" ✍️")
		}
		if q.Recurring {
			sb.WriteString(" 🔁")
		}
		if q.Deadline != "" {
			fmt.Fprintf(&sb, " до %s", q.Deadline)
		}
		if q.Status != engine.QuestClaimed {
			fmt.Fprintf(&sb, " (%s)", engine.FormatRewardSummary(q.RewardGold, q.RewardGems, q.RewardXP))
		}
	}
	sb.WriteString("\n\n🎁 — награда ждёт: !забрать N или !забрать все")
	return sb.String()
}

// HandleCreate: !квест Название | цель | золото самоцветы опыт | срок
func (h *Handler) HandleCreate(ctx context.Context, chatID int64, id players.Identity, text string) {
	if strings.TrimSpace(text) == "" {
		players.Reply(h.bot, chatID, "❌ Формат: !квест Название | цель | золото самоцветы опыт | срок ГГГГ-ММ-ДД")
		return
	}
	d, err := ParseDraft(text)
	if err != nil {
		players.Reply(h.bot, chatID, players.ErrorText(err, "не удалось разобрать квест"))
		return
	}
	q, sess, err := h.service.Create(ctx, id, d)
	if err != nil {
		h.reply(chatID, sess, players.ErrorText(err, "не удалось создать квест"))
		return
	}
	h.reply(chatID, sess, fmt.Sprintf("📜 Квест «%s» принят. Награда: %s",
		q.Title, engine.FormatRewardSummary(q.RewardGold, q.RewardGems, q.RewardXP)))
}

// HandleComplete: !сдать N
func (h *Handler) HandleComplete(ctx context.Context, chatID int64, id players.Identity, args []string) {
	if len(args) == 0 {
		players.Reply(h.bot, chatID, "❌ Формат: !сдать N (номер из !квесты)")
		return
	}
	q, sess, err := h.service.Complete(ctx, id, args[0])
	if err != nil {
		h.reply(chatID, sess, players.ErrorText(err, "не удалось сдать квест"))
		return
	}
	h.reply(chatID, sess, fmt.Sprintf("🎁 Квест «%s» выполнен! Забери награду: !забрать %s", q.Title, args[0]))
}

// HandleClaim: !забрать N | все
func (h *Handler) HandleClaim(ctx context.Context, chatID int64, id players.Identity, args []string) {
	if len(args) == 0 {
		players.Reply(h.bot, chatID, "❌ Формат: !забрать N или !забрать все")
		return
	}
	if strings.EqualFold(args[0], "все") || strings.EqualFold(args[0], "всё") {
		results, sess, err := h.service.ClaimAll(ctx, id)
		if err != nil {
			h.reply(chatID, sess, players.ErrorText(err, "не удалось забрать награды"))
			return
		}
		if len(results) == 0 {
			h.reply(chatID, sess, "🎁 Готовых наград нет")
			return
		}
		var gold, gems, xp int64
		var sb strings.Builder
		for _, r := range results {
			gold, gems, xp = gold+r.Gold, gems+r.Gems, xp+r.XP
			fmt.Fprintf(&sb, "• %s\n", r.Quest.Title)
		}
		fmt.Fprintf(&sb, "\nИтого: %s", engine.FormatRewardSummary(gold, gems, xp))
		h.reply(chatID, sess, "🎁 Награды получены:\n"+sb.String())
		return
	}

	res, sess, err := h.service.Claim(ctx, id, args[0])
	if err != nil {
		h.reply(chatID, sess, players.ErrorText(err, "не удалось забрать награду"))
		return
	}
	text := fmt.Sprintf("🎁 %s: %s\n💰 Баланс: %s, %s", res.Quest.Title,
		engine.FormatRewardSummary(res.Gold, res.Gems, res.XP),
		common.FormatGold(sess.State.Stats.Gold), common.FormatGems(sess.State.Stats.Gems))
	if res.LevelsAdded > 0 {
		text += fmt.Sprintf("\n🎉 Новый уровень %d: %s", sess.State.Stats.Level, sess.State.Stats.Title)
	}
	h.reply(chatID, sess, text+players.CompletedNotice(res.Completed))
}

// HandleDelete: !удалитьквест N
func (h *Handler) HandleDelete(ctx context.Context, chatID int64, id players.Identity, args []string) {
	if len(args) == 0 {
		players.Reply(h.bot, chatID, "❌ Формат: !удалитьквест N")
		return
	}
	q, sess, err := h.service.Delete(ctx, id, args[0])
	if err != nil {
		h.reply(chatID, sess, players.ErrorText(err, "не удалось удалить квест"))
		return
	}
	h.reply(chatID, sess, fmt.Sprintf("🗑 Квест «%s» удалён", q.Title))
}
