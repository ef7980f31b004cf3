package quests

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

func newTestService(t *testing.T) (*Service, *players.Service) {
	t.Helper()
	clock := engine.NewFakeClock(time.Date(2026, time.March, 2, 9, 0, 0, 0, time.UTC))
	n := 0
	eng := engine.New(engine.DefaultBalance(),
		engine.WithClock(clock),
		engine.WithRand(rand.New(rand.NewPCG(1, 2))),
		engine.WithIDGenerator(func() string {
			n++
			return fmt.Sprintf("q%d", n)
		}),
	)
	p := players.NewService(players.NewMemoryStore(), eng)
	return NewService(p), p
}

func TestParseDraft(t *testing.T) {
	d, err := ParseDraft("Прочитать книгу | 3 | 100 2 30 | 2026-04-01")
	require.NoError(t, err)
	assert.Equal(t, engine.QuestDraft{
		Title: "Прочитать книгу", MaxProgress: 3,
		RewardGold: 100, RewardGems: 2, RewardXP: 30,
		Deadline: "2026-04-01",
	}, d)

	d, err = ParseDraft("Позвонить маме")
	require.NoError(t, err)
	assert.Equal(t, 1, d.MaxProgress)
	assert.Equal(t, DefaultRewardGold, d.RewardGold)
	assert.Equal(t, int64(0), d.RewardGems)

	_, err = ParseDraft("")
	assert.ErrorIs(t, err, common.ErrEmptyTitle)
	_, err = ParseDraft("Книга | ноль")
	assert.ErrorIs(t, err, common.ErrInvalidAmount)
	_, err = ParseDraft("Книга | 0")
	assert.ErrorIs(t, err, common.ErrInvalidAmount)
	_, err = ParseDraft("Книга | 1 | 1 2 3 4")
	assert.ErrorIs(t, err, common.ErrInvalidAmount)
}

func TestService_CustomQuestLifecycle(t *testing.T) {
	svc, p := newTestService(t)
	ctx := context.Background()

	d, err := ParseDraft("Прочитать книгу | 1 | 100 2 30")
	require.NoError(t, err)
	q, sess, err := svc.Create(ctx, alice, d)
	require.NoError(t, err)
	assert.Equal(t, engine.QuestCustom, q.Kind)
	ref := fmt.Sprint(len(sess.State.Quests))

	// системный квест вручную не сдаётся
	_, _, err = svc.Complete(ctx, alice, "1")
	assert.ErrorIs(t, err, common.ErrQuestNotCustom)

	_, _, err = svc.Claim(ctx, alice, ref)
	assert.ErrorIs(t, err, common.ErrQuestNotCompleted)

	q, _, err = svc.Complete(ctx, alice, ref)
	require.NoError(t, err)
	assert.Equal(t, engine.QuestCompleted, q.Status)

	_, _, err = svc.Complete(ctx, alice, ref)
	assert.ErrorIs(t, err, common.ErrQuestNotActive)

	res, sess, err := svc.Claim(ctx, alice, q.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(100), res.Gold)
	assert.Equal(t, int64(200), sess.State.Stats.Gold)
	assert.Equal(t, int64(7), sess.State.Stats.Gems)

	// награда выдаётся один раз
	_, _, err = svc.Claim(ctx, alice, ref)
	assert.ErrorIs(t, err, common.ErrQuestNotCompleted)

	_, _, err = svc.Delete(ctx, alice, "1")
	assert.ErrorIs(t, err, common.ErrSystemQuest)

	deleted, _, err := svc.Delete(ctx, alice, ref)
	require.NoError(t, err)
	assert.Equal(t, "Прочитать книгу", deleted.Title)

	_, state, err := p.View(ctx, alice.UserID)
	require.NoError(t, err)
	_, ok := state.Quest(q.ID)
	assert.False(t, ok)
}

func TestService_ClaimAll(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	// создание квеста закрывает системный «Quest Giver»
	_, _, err := svc.Create(ctx, alice, engine.QuestDraft{Title: "Тест", RewardGold: 10})
	require.NoError(t, err)

	results, sess, err := svc.ClaimAll(ctx, alice)
	require.NoError(t, err)
	require.NotEmpty(t, results)
	assert.Equal(t, "Quest Giver", results[0].Quest.Title)
	for _, q := range sess.State.Quests {
		assert.NotEqual(t, engine.QuestCompleted, q.Status, q.Title)
	}

	results, _, err = svc.ClaimAll(ctx, alice)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestResolveQuest(t *testing.T) {
	s := &engine.State{Quests: []engine.Quest{{ID: "a"}, {ID: "b"}}}

	q, err := ResolveQuest(s, "2")
	require.NoError(t, err)
	assert.Equal(t, "b", q.ID)

	q, err = ResolveQuest(s, "a")
	require.NoError(t, err)
	assert.Equal(t, "a", q.ID)

	for _, ref := range []string{"0", "3", "c", ""} {
		_, err := ResolveQuest(s, ref)
		assert.ErrorIs(t, err, common.ErrQuestNotFound)
	}
}

func TestRenderList(t *testing.T) {
	s := &engine.State{Quests: []engine.Quest{
		{Title: "Daily Commission", Status: engine.QuestActive, Progress: 1, MaxProgress: 3,
			RewardGold: 30, RewardGems: 1, RewardXP: 50, Recurring: true, Kind: engine.QuestSystem},
		{Title: "Книга", Status: engine.QuestCompleted, MaxProgress: 1, RewardGold: 10, Kind: engine.QuestCustom},
	}}
	text := RenderList(s)
	assert.Contains(t, text, "🔸 1. Daily Commission [1/3] 🔁 (+30g, +1gems, +50XP)")
	assert.Contains(t, text, "🎁 2. Книга ✍️ (+10g)")
}
