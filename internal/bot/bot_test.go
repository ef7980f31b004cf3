package bot

import (
	"context"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"serotonyl.ru/habit-bot/internal/bot/filters"
	"serotonyl.ru/habit-bot/internal/config"
	"serotonyl.ru/habit-bot/internal/engine"
	"serotonyl.ru/habit-bot/internal/features/economy"
	"serotonyl.ru/habit-bot/internal/features/habits"
	"serotonyl.ru/habit-bot/internal/features/journal"
	"serotonyl.ru/habit-bot/internal/features/players"
	"serotonyl.ru/habit-bot/internal/features/quests"
)

type fakeBot struct {
	texts []string
}

func (b *fakeBot) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	if m, ok := c.(tgbotapi.MessageConfig); ok {
		b.texts = append(b.texts, m.Text)
	}
	return tgbotapi.Message{}, nil
}

func (b *fakeBot) last() string {
	if len(b.texts) == 0 {
		return ""
	}
	return b.texts[len(b.texts)-1]
}

func TestParseCommand(t *testing.T) {
	p := NewCommandParser()
	cases := []struct {
		text string
		cmd  string
		args []string
		ok   bool
	}{
		{"!привычки", "привычки", nil, true},
		{".Готово 2", "готово", []string{"2"}, true},
		{"/start@habit_bot", "start", nil, true},
		{"  /купить   slot_1 ", "купить", []string{"slot_1"}, true},
		{"привет", "", nil, false},
		{"!", "", nil, false},
	}
	for _, tc := range cases {
		t.Run(tc.text, func(t *testing.T) {
			cmd, args, ok := p.ParseCommand(tc.text)
			assert.Equal(t, tc.ok, ok)
			assert.Equal(t, tc.cmd, cmd)
			assert.Equal(t, tc.args, args)
		})
	}
}

func TestTail(t *testing.T) {
	p := NewCommandParser()
	assert.Equal(t, "Итоги | строка 1\nстрока 2", p.Tail("!запись Итоги | строка 1\nстрока 2"))
	assert.Equal(t, "", p.Tail("!дневник"))
	assert.Equal(t, "", p.Tail("без префикса"))
}

func newTestBot(t *testing.T, allowed []int64) (*Bot, *fakeBot) {
	t.Helper()
	sender := &fakeBot{}
	clock := engine.NewFakeClock(time.Date(2026, time.March, 2, 9, 0, 0, 0, time.UTC))
	p := players.NewService(players.NewMemoryStore(), engine.New(engine.DefaultBalance(), engine.WithClock(clock)))

	handlers := Handlers{
		Players: players.NewHandler(p, sender),
		Habits:  habits.NewHandler(habits.NewService(p), sender),
		Quests:  quests.NewHandler(quests.NewService(p), sender),
		Economy: economy.NewHandler(economy.NewService(p, economy.Options{ShopEnabled: true, HarvestEnabled: true}), sender),
		Journal: journal.NewHandler(journal.NewService(p), sender),
	}
	cfg := &config.Config{BotMaxInflight: 4, RateLimitRequests: 100, RateLimitWindow: time.Minute}
	b := newBot(sender, cfg, handlers, filters.NewChatFilter(allowed))
	t.Cleanup(b.rateLimiter.Close)
	return b, sender
}

func message(chatID int64, chatType string, text string) tgbotapi.Update {
	return tgbotapi.Update{Message: &tgbotapi.Message{
		Text: text,
		Chat: &tgbotapi.Chat{ID: chatID, Type: chatType},
		From: &tgbotapi.User{ID: 7, FirstName: "Аня"},
	}}
}

func TestHandleUpdate_Routing(t *testing.T) {
	b, sender := newTestBot(t, nil)
	ctx := context.Background()

	b.handleUpdate(ctx, message(7, "private", "/новая@habit_bot Зарядка | ежедневно"))
	assert.Contains(t, sender.last(), "Новый рецепт: Зарядка")

	b.handleUpdate(ctx, message(7, "private", "!привычки"))
	assert.Contains(t, sender.last(), "Зарядка")

	b.handleUpdate(ctx, message(7, "private", "!готово 1"))
	assert.Contains(t, sender.last(), "Зарядка")

	b.handleUpdate(ctx, message(7, "private", "просто текст"))
	assert.Contains(t, sender.last(), "!помощь")

	b.handleUpdate(ctx, message(7, "private", "!помощь"))
	assert.Equal(t, players.HelpText, sender.last())
}

func TestHandleUpdate_Filtering(t *testing.T) {
	b, sender := newTestBot(t, []int64{-100})
	ctx := context.Background()

	// болтовня в группе
	b.handleUpdate(ctx, message(-100, "supergroup", "всем привет"))
	// группа не из списка
	b.handleUpdate(ctx, message(-200, "group", "!профиль"))
	// канал
	b.handleUpdate(ctx, message(-300, "channel", "!профиль"))
	// неизвестная команда
	b.handleUpdate(ctx, message(-100, "supergroup", "!танцы"))
	require.Empty(t, sender.texts)

	b.handleUpdate(ctx, message(-100, "supergroup", "!профиль"))
	require.Len(t, sender.texts, 1)
	assert.Contains(t, sender.last(), "Уровень 1")
}
