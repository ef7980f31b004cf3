// Package economy — handlers.go обрабатывает команды:
// !профиль, !магазин, !купить, !сбор.
package economy

import (
	"context"
	"fmt"
	"strings"

	"serotonyl.ru/habit-bot/internal/common"
	"serotonyl.ru/habit-bot/internal/engine"
	"serotonyl.ru/habit-bot/internal/features/players"
)

// Handler обрабатывает команды экономики.
type Handler struct {
	service *Service
	bot     players.Sender
}

// NewHandler создаёт обработчик экономических команд.
func NewHandler(service *Service, bot players.Sender) *Handler {
	return &Handler{service: service, bot: bot}
}

func (h *Handler) reply(chatID int64, sess *players.Session, text string) {
	players.Reply(h.bot, chatID, players.WithNotices(sess, text))
}

// HandleProfile обрабатывает команду !профиль.
//
// Формат ответа:
//
//	🧙 Novice Alchemist — Apprentice Brewer
//	⭐ Уровень 2, опыт 120/750
//	💰 150 монет, 💎 5 самоцветов
func (h *Handler) HandleProfile(ctx context.Context, chatID int64, id players.Identity) {
	p, sess, err := h.service.Profile(ctx, id)
	if err != nil {
		h.reply(chatID, sess, players.ErrorText(err, "не удалось загрузить профиль"))
		return
	}
	h.reply(chatID, sess, RenderProfile(p))
}

// RenderProfile — текст профиля.
func RenderProfile(p Profile) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "🧙 %s, %s\n", p.Name, p.Title)
	fmt.Fprintf(&sb, "⭐ Уровень %d, опыт %s/%s\n", p.Level, common.FormatNumber(p.XP), common.FormatNumber(p.MaxXP))
	fmt.Fprintf(&sb, "💰 %s, 💎 %s\n", common.FormatGold(p.Gold), common.FormatGems(p.Gems))
	fmt.Fprintf(&sb, "🔥 Серия входов: %d %s\n", p.LoginStreak, common.PluralizeDays(p.LoginStreak))
	fmt.Fprintf(&sb, "📦 Слоты: %d/%d\n", p.HabitsUsed, p.HabitSlots)
	if p.RewardMultiplier != 1 {
		fmt.Fprintf(&sb, "✨ Множитель наград: ×%.2f\n", p.RewardMultiplier)
	}
	for _, c := range p.Categories {
		fmt.Fprintf(&sb, "🏷 %s ×%.2f\n", c.Name, c.Multiplier)
	}
	fmt.Fprintf(&sb, "🌿 Сборов: %d\n", p.Harvests)
	if p.StartDate != "" {
		fmt.Fprintf(&sb, "📅 В лаборатории с %s", p.StartDate)
	}
	return strings.TrimRight(sb.String(), "\n")
}

// HandleShop обрабатывает команду !магазин — показывает каталог.
func (h *Handler) HandleShop(ctx context.Context, chatID int64) {
	catalog, err := h.service.Catalog()
	if err != nil {
		players.Reply(h.bot, chatID, players.ErrorText(err, "не удалось открыть магазин"))
		return
	}
	players.Reply(h.bot, chatID, RenderCatalog(catalog))
}

// RenderCatalog — каталог с ценами и условиями.
func RenderCatalog(items []engine.ShopItem) string {
	var sb strings.Builder
	sb.WriteString("🛒 Магазин\n")
	for i, it := range items {
		fmt.Fprintf(&sb, "\n%d. %s (%s)\n   %s\n   Цена: %s", i+1, it.Name, it.ID, it.Description, price(it))
		if it.MinLevel > 1 {
			fmt.Fprintf(&sb, ", с %d уровня", it.MinLevel)
		}
		if it.NeedsCategory() {
			sb.WriteString(", нужна категория")
		}
	}
	sb.WriteString("\n\nКупить: !купить N [категория]")
	return sb.String()
}

func price(it engine.ShopItem) string {
	var parts []string
	if it.CostGold > 0 {
		parts = append(parts, common.FormatGold(it.CostGold))
	}
	if it.CostGems > 0 {
		parts = append(parts, common.FormatGems(it.CostGems))
	}
	if len(parts) == 0 {
		return "бесплатно"
	}
	return strings.Join(parts, " + ")
}

// HandleBuy обрабатывает команду !купить товар [категория].
func (h *Handler) HandleBuy(ctx context.Context, chatID int64, id players.Identity, args []string) {
	if len(args) == 0 {
		players.Reply(h.bot, chatID, "❌ Формат: !купить N [категория]")
		return
	}
	category := strings.Join(args[1:], " ")
	res, sess, err := h.service.Buy(ctx, id, args[0], category)
	if err != nil {
		h.reply(chatID, sess, players.ErrorText(err, "не удалось совершить покупку"))
		return
	}

	var effect string
	st := sess.State.Stats
	switch res.Item.Effect {
	case engine.EffectSlotUpgrade:
		effect = fmt.Sprintf("Слотов для привычек: %d", st.HabitSlots)
	case engine.EffectMultiplierUpgrade:
		effect = fmt.Sprintf("Множитель наград: ×%.2f", st.RewardMultiplier)
	case engine.EffectUnlockCategory:
		effect = fmt.Sprintf("Открыта категория «%s»", res.Category)
	case engine.EffectCategoryMultiplier:
		effect = fmt.Sprintf("Категория «%s»: ×%.2f", res.Category, st.CategoryMultipliers[res.Category])
	}
	text := fmt.Sprintf("🛍 Куплено: %s\n%s\n💰 Осталось: %s, %s", res.Item.Name, effect,
		common.FormatGold(st.Gold), common.FormatGems(st.Gems))
	h.reply(chatID, sess, text+players.CompletedNotice(res.Completed))
}

// HandleHarvest обрабатывает команду !сбор — лесной сбор раз в день.
func (h *Handler) HandleHarvest(ctx context.Context, chatID int64, id players.Identity) {
	res, sess, err := h.service.Harvest(ctx, id)
	if err != nil {
		h.reply(chatID, sess, players.ErrorText(err, "не удалось собрать травы"))
		return
	}
	text := fmt.Sprintf("🌿 Лесной сбор: +%s, +%d XP", common.FormatGold(res.Gold), res.XP)
	if res.LevelsAdded > 0 {
		text += fmt.Sprintf("\n🎉 Новый уровень %d: %s", sess.State.Stats.Level, sess.State.Stats.Title)
	}
	h.reply(chatID, sess, text+players.CompletedNotice(res.Completed))
}
