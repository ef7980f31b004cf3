package jobs

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"serotonyl.ru/habit-bot/internal/config"
	"serotonyl.ru/habit-bot/internal/engine"
	"serotonyl.ru/habit-bot/internal/features/habits"
	"serotonyl.ru/habit-bot/internal/features/players"
)

type sent struct {
	chatID int64
	text   string
}

func newTestScheduler(t *testing.T, cfg *config.Config) (*Scheduler, *habits.Service, *engine.FakeClock, *[]sent) {
	t.Helper()
	clock := engine.NewFakeClock(time.Date(2026, time.March, 2, 9, 0, 0, 0, time.UTC))
	p := players.NewService(players.NewMemoryStore(), engine.New(engine.DefaultBalance(), engine.WithClock(clock)))
	h := habits.NewService(p)

	var out []sent
	s := NewScheduler(cfg, p, h, func(chatID int64, text string) {
		out = append(out, sent{chatID: chatID, text: text})
	})
	return s, h, clock, &out
}

func testConfig() *config.Config {
	return &config.Config{
		AppTimezone:             "UTC",
		AbsenceCron:             "0 12 * * *",
		ReminderCron:            "0 20 * * *",
		FeatureRemindersEnabled: true,
	}
}

func TestRunJobs(t *testing.T) {
	s, h, clock, out := newTestScheduler(t, testConfig())
	ctx := context.Background()

	d, err := habits.ParseDraft("Бег | ежедневно")
	require.NoError(t, err)
	_, _, _, err = h.Create(ctx, players.Identity{UserID: 1, FirstName: "Аня", ChatID: 11}, d)
	require.NoError(t, err)

	require.NoError(t, s.RunAbsence(ctx))
	assert.Empty(t, *out, "игрок заходил сегодня")

	require.NoError(t, s.RunReminders(ctx))
	require.Len(t, *out, 1)
	assert.Equal(t, int64(11), (*out)[0].chatID)
	assert.Contains(t, (*out)[0].text, "Бег")

	clock.AdvanceDays(3)
	*out = nil
	require.NoError(t, s.RunAbsence(ctx))
	require.Len(t, *out, 1)
	assert.Contains(t, (*out)[0].text, "спишется 100 монет")
}

func TestStart_BadCron(t *testing.T) {
	cfg := testConfig()
	cfg.ReminderCron = "когда-нибудь"
	s, _, _, _ := newTestScheduler(t, cfg)
	assert.Error(t, s.Start(context.Background()))

	// без напоминаний кривое расписание не мешает
	cfg = testConfig()
	cfg.FeatureRemindersEnabled = false
	cfg.ReminderCron = "когда-нибудь"
	s, _, _, _ = newTestScheduler(t, cfg)
	require.NoError(t, s.Start(context.Background()))
	s.Stop()
}
