package admin

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"serotonyl.ru/habit-bot/internal/common"
	"serotonyl.ru/habit-bot/internal/db/sqlite"
	"serotonyl.ru/habit-bot/internal/engine"
	"serotonyl.ru/habit-bot/internal/features/players"
)

const (
	adminID  int64 = 100
	playerID int64 = 7
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

func newTestService(t *testing.T) (*Service, *players.Service) {
	t.Helper()
	db, err := sqlite.Open(context.Background(), filepath.Join(t.TempDir(), "admin.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	hash, err := HashPassword("secret")
	require.NoError(t, err)

	clock := engine.NewFakeClock(time.Date(2026, time.March, 2, 9, 0, 0, 0, time.UTC))
	p := players.NewService(players.NewMemoryStore(), engine.New(engine.DefaultBalance(), engine.WithClock(clock)))
	_, err = p.Do(context.Background(), players.Identity{UserID: playerID, FirstName: "Боб"}, nil)
	require.NoError(t, err)

	svc := NewService(NewSQLiteRepository(db), p, hash, 24*time.Hour, func(id int64) bool { return id == adminID })
	now := time.Date(2026, time.March, 2, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }
	return svc, p
}

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("пароль")
	require.NoError(t, err)
	assert.Regexp(t, `^\$argon2id\$v=19\$m=65536,t=3,p=2\$`, hash)
	assert.True(t, verifyArgon2id("пароль", hash))
	assert.False(t, verifyArgon2id("другой", hash))
	assert.False(t, verifyArgon2id("пароль", "not-a-hash"))
}

func TestVerifyPassword(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	assert.ErrorIs(t, svc.VerifyPassword(ctx, playerID, "secret"), common.ErrNotAdmin)
	assert.False(t, svc.HasActiveSession(ctx, adminID))

	require.NoError(t, svc.VerifyPassword(ctx, adminID, "secret"))
	assert.True(t, svc.HasActiveSession(ctx, adminID))

	// сессия истекает
	later := svc.now().Add(25 * time.Hour)
	svc.now = func() time.Time { return later }
	assert.False(t, svc.HasActiveSession(ctx, adminID))

	require.NoError(t, svc.Logout(ctx, adminID))
}

func TestVerifyPassword_BruteForce(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		assert.ErrorIs(t, svc.VerifyPassword(ctx, adminID, "guess"), common.ErrWrongPassword)
	}
	// даже верный пароль не проходит, пока не прошёл час
	assert.ErrorIs(t, svc.VerifyPassword(ctx, adminID, "secret"), common.ErrTooManyAttempts)

	later := svc.now().Add(61 * time.Minute)
	svc.now = func() time.Time { return later }
	assert.NoError(t, svc.VerifyPassword(ctx, adminID, "secret"))
}

func TestPlayerActions(t *testing.T) {
	svc, p := newTestService(t)
	ctx := context.Background()

	require.NoError(t, svc.SetMultiplier(ctx, adminID, playerID, 2))
	assert.ErrorIs(t, svc.SetMultiplier(ctx, adminID, playerID, 0), common.ErrInvalidAmount)
	assert.ErrorIs(t, svc.SetMultiplier(ctx, adminID, 999, 2), common.ErrPlayerNotFound)

	sess, err := svc.Grant(ctx, adminID, playerID, 50, -100)
	require.NoError(t, err)
	assert.Equal(t, int64(150), sess.State.Stats.Gold)
	assert.Equal(t, int64(0), sess.State.Stats.Gems)
	assert.Equal(t, 2.0, sess.State.Stats.RewardMultiplier)

	require.NoError(t, svc.ResetPlayer(ctx, adminID, playerID))
	_, state, err := p.View(ctx, playerID)
	require.NoError(t, err)
	assert.Equal(t, int64(100), state.Stats.Gold)
	assert.Equal(t, 1.0, state.Stats.RewardMultiplier)
}

func TestHandleAdminMessage_Flow(t *testing.T) {
	svc, p := newTestService(t)
	bot := &fakeBot{}
	h := NewHandler(svc, bot)
	ctx := context.Background()

	// обычные игроки и не-команды проходят мимо
	assert.False(t, h.HandleAdminMessage(ctx, 1, playerID, "сброс 7"))
	assert.False(t, h.HandleAdminMessage(ctx, 1, adminID, "!привычки"))

	require.True(t, h.HandleAdminMessage(ctx, 1, adminID, "выдать 7 500"))
	assert.Contains(t, bot.last(), "Введите пароль")

	require.True(t, h.HandleAdminMessage(ctx, 1, adminID, "secret"))
	assert.Contains(t, bot.texts, "✅ Аутентификация успешна!")

	require.True(t, h.HandleAdminMessage(ctx, 1, adminID, "выдать 7 500"))
	assert.Contains(t, bot.last(), "600 монет")

	require.True(t, h.HandleAdminMessage(ctx, 1, adminID, "сброс 7"))
	assert.Contains(t, bot.last(), "Стереть весь прогресс")
	require.True(t, h.HandleAdminMessage(ctx, 1, adminID, "нет"))
	assert.Equal(t, "Сброс отменён", bot.last())

	require.True(t, h.HandleAdminMessage(ctx, 1, adminID, "сброс 7"))
	require.True(t, h.HandleAdminMessage(ctx, 1, adminID, "да"))
	assert.Contains(t, bot.last(), "сброшен")

	_, state, err := p.View(ctx, playerID)
	require.NoError(t, err)
	assert.Equal(t, int64(100), state.Stats.Gold)

	require.True(t, h.HandleAdminMessage(ctx, 1, adminID, "множитель 7 1,5"))
	assert.Contains(t, bot.last(), "×1.50")
}
