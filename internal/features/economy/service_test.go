package economy

import (
	"context"
	"fmt"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"serotonyl.ru/habit-bot/internal/common"
	"serotonyl.ru/habit-bot/internal/engine"
	"serotonyl.ru/habit-bot/internal/features/players"
)

var alice = players.Identity{UserID: 1, Username: "alice", ChatID: 1}

func newTestService(t *testing.T, opts Options) (*Service, *players.Service, *engine.FakeClock) {
	t.Helper()
	clock := engine.NewFakeClock(time.Date(2026, time.March, 2, 9, 0, 0, 0, time.UTC))
	n := 0
	eng := engine.New(engine.DefaultBalance(),
		engine.WithClock(clock),
		engine.WithRand(rand.New(rand.NewPCG(3, 4))),
		engine.WithIDGenerator(func() string {
			n++
			return fmt.Sprintf("e%d", n)
		}),
	)
	p := players.NewService(players.NewMemoryStore(), eng)
	return NewService(p, opts), p, clock
}

var allOn = Options{ShopEnabled: true, HarvestEnabled: true}

func TestProfile(t *testing.T) {
	svc, p, _ := newTestService(t, allOn)
	ctx := context.Background()
	_, err := p.Do(ctx, alice, func(sess *players.Session) error {
		sess.State.Stats.CustomCategories = []string{"Music"}
		sess.State.Stats.CategoryMultipliers["Health"] = 1.5
		return nil
	})
	require.NoError(t, err)

	prof, _, err := svc.Profile(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, 1, prof.Level)
	assert.Equal(t, int64(100), prof.Gold)
	assert.Equal(t, 5, prof.HabitSlots)
	assert.Equal(t, []CategoryBoost{{"Health", 1.5}, {"Music", 1}}, prof.Categories)

	text := RenderProfile(prof)
	assert.Contains(t, text, "Уровень 1")
	assert.Contains(t, text, "🏷 Health ×1.50")
}

func TestBuy(t *testing.T) {
	svc, p, _ := newTestService(t, allOn)
	ctx := context.Background()

	_, _, err := svc.Buy(ctx, alice, "slot_1", "")
	require.ErrorIs(t, err, common.ErrInsufficientFunds)

	_, err = p.Do(ctx, alice, func(sess *players.Session) error {
		p.Engine().AddGold(sess.State, 150)
		return nil
	})
	require.NoError(t, err)

	// по номеру из каталога
	res, sess, err := svc.Buy(ctx, alice, "1", "")
	require.NoError(t, err)
	assert.Equal(t, "slot_1", res.Item.ID)
	assert.Equal(t, 6, sess.State.Stats.HabitSlots)
	assert.Equal(t, int64(50), sess.State.Stats.Gold)
	assert.Equal(t, engine.LogShop, sess.State.HistoryLogs[0].Kind)

	_, _, err = svc.Buy(ctx, alice, "cat_unlock", "Music")
	assert.ErrorIs(t, err, common.ErrLevelTooLow)

	_, _, err = svc.Buy(ctx, alice, "nothing", "")
	assert.ErrorIs(t, err, common.ErrItemNotFound)
}

func TestHarvest_OncePerDay(t *testing.T) {
	svc, _, clock := newTestService(t, allOn)
	ctx := context.Background()

	res, sess, err := svc.Harvest(ctx, alice)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, res.Gold, int64(10))
	assert.LessOrEqual(t, res.Gold, int64(49))
	assert.Equal(t, 1, sess.State.Stats.Harvests)

	_, _, err = svc.Harvest(ctx, alice)
	assert.ErrorIs(t, err, common.ErrHarvestDone)

	clock.AdvanceDays(1)
	_, sess, err = svc.Harvest(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, 2, sess.State.Stats.Harvests)
}

func TestDisabledFeatures(t *testing.T) {
	svc, _, _ := newTestService(t, Options{})
	ctx := context.Background()

	_, err := svc.Catalog()
	assert.ErrorIs(t, err, common.ErrFeatureDisabled)
	_, _, err = svc.Buy(ctx, alice, "slot_1", "")
	assert.ErrorIs(t, err, common.ErrFeatureDisabled)
	_, _, err = svc.Harvest(ctx, alice)
	assert.ErrorIs(t, err, common.ErrFeatureDisabled)
}

func TestRenderCatalog(t *testing.T) {
	text := RenderCatalog(engine.DefaultShop())
	assert.Contains(t, text, "1. Oak Shelf Expansion (slot_1)")
	assert.Contains(t, text, "Цена: 200 монет\n")
	assert.Contains(t, text, "Цена: 150 самоцветов, с 5 уровня, нужна категория")
	assert.Contains(t, text, "1 000 монет + 100 самоцветов")
}
