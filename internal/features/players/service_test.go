package players

import (
	"context"
	"fmt"
	"math/rand/v2"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"serotonyl.ru/habit-bot/internal/common"
	"serotonyl.ru/habit-bot/internal/db/sqlite"
	"serotonyl.ru/habit-bot/internal/engine"
)

func newTestService(t *testing.T, store Store, day string) (*Service, *engine.FakeClock) {
	t.Helper()
	d, err := time.ParseInLocation(common.DateLayout, day, time.UTC)
	require.NoError(t, err)
	clock := engine.NewFakeClock(d.Add(10 * time.Hour))
	n := 0
	eng := engine.New(engine.DefaultBalance(),
		engine.WithClock(clock),
		engine.WithRand(rand.New(rand.NewPCG(7, 7))),
		engine.WithIDGenerator(func() string {
			n++
			return fmt.Sprintf("id-%d", n)
		}),
	)
	return NewService(store, eng), clock
}

func newSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	db, err := sqlite.Open(context.Background(), filepath.Join(t.TempDir(), "players.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewSQLiteStore(db)
}

var alice = Identity{UserID: 42, Username: "alice", FirstName: "Alice", ChatID: 42}

func stores(t *testing.T) map[string]Store {
	return map[string]Store{
		"memory": NewMemoryStore(),
		"sqlite": newSQLiteStore(t),
	}
}

func TestDo_RegistersNewPlayer(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			svc, _ := newTestService(t, store, "2026-03-02")
			ctx := context.Background()

			sess, err := svc.Do(ctx, alice, nil)
			require.NoError(t, err)
			assert.True(t, sess.New)
			assert.Equal(t, int64(100), sess.State.Stats.Gold)

			rec, err := store.Get(ctx, alice.UserID)
			require.NoError(t, err)
			assert.Equal(t, "alice", rec.Username)
			assert.Equal(t, int64(42), rec.ChatID)
			assert.Equal(t, "2026-03-02", rec.LastLoginDate)
			assert.True(t, rec.RemindersEnabled)
			assert.Equal(t, "@alice", rec.DisplayName())

			sess, err = svc.Do(ctx, alice, nil)
			require.NoError(t, err)
			assert.False(t, sess.New)
		})
	}
}

func TestDo_RolloverSurvivesRejectedAction(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			svc, clock := newTestService(t, store, "2026-03-02")
			ctx := context.Background()
			_, err := svc.Do(ctx, alice, nil)
			require.NoError(t, err)

			// Три дня без входа: штраф за два пропущенных дня
			clock.AdvanceDays(3)
			sess, err := svc.Do(ctx, alice, func(sess *Session) error {
				_, err := svc.Engine().CompleteHabit(sess.State, "missing")
				return err
			})
			require.ErrorIs(t, err, common.ErrHabitNotFound)
			assert.True(t, IsRejection(err))
			require.NotNil(t, sess)
			assert.Equal(t, int64(100), sess.Rollover.Penalty)

			_, state, err := svc.View(ctx, alice.UserID)
			require.NoError(t, err)
			assert.Equal(t, int64(0), state.Stats.Gold)
			assert.Equal(t, "2026-03-05", state.Stats.LastLoginDate)
			assert.Equal(t, 1, state.Stats.LoginStreak)

			// Повторный вход в тот же день штраф не повторяет
			sess, err = svc.Do(ctx, alice, nil)
			require.NoError(t, err)
			assert.False(t, sess.Rollover.Changed())
		})
	}
}

func TestDo_ActionChangesArePersisted(t *testing.T) {
	svc, _ := newTestService(t, NewMemoryStore(), "2026-03-02")
	ctx := context.Background()

	_, err := svc.Do(ctx, alice, func(sess *Session) error {
		_, _, err := svc.Engine().CreateHabit(sess.State, engine.HabitDraft{
			Title:      "Stretch",
			Recurrence: engine.Recurrence{Kind: engine.KindDaily},
			RewardGold: 10,
			RewardXP:   20,
		})
		return err
	})
	require.NoError(t, err)

	_, state, err := svc.View(ctx, alice.UserID)
	require.NoError(t, err)
	require.Len(t, state.Habits, 1)
	assert.Equal(t, "Stretch", state.Habits[0].Title)
}

func TestRefresh_UnknownPlayer(t *testing.T) {
	store := NewMemoryStore()
	svc, _ := newTestService(t, store, "2026-03-02")

	_, err := svc.Refresh(context.Background(), 7, nil)
	assert.ErrorIs(t, err, common.ErrPlayerNotFound)

	list, err := store.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestDo_MalformedSnapshotIsNotOverwritten(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, store.Update(ctx, 1, func(rec *Record) error {
		rec.Snapshot = []byte("not json")
		return nil
	}))
	svc, _ := newTestService(t, store, "2026-03-02")

	_, err := svc.Do(ctx, Identity{UserID: 1}, nil)
	require.ErrorIs(t, err, common.ErrMalformedSnapshot)

	rec, err := store.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "not json", string(rec.Snapshot))
}

func TestScan_DoesNotPersistRollover(t *testing.T) {
	store := newSQLiteStore(t)
	svc, clock := newTestService(t, store, "2026-03-02")
	ctx := context.Background()

	for id := int64(1); id <= 3; id++ {
		_, err := svc.Do(ctx, Identity{UserID: id, FirstName: "p", ChatID: id}, nil)
		require.NoError(t, err)
	}

	clock.AdvanceDays(1)
	var states []engine.RolloverState
	n, err := svc.Scan(ctx, func(p Preview) error {
		states = append(states, p.Rollover.State)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, []engine.RolloverState{engine.RolloverConsecutive, engine.RolloverConsecutive, engine.RolloverConsecutive}, states)

	// Переход дня увидит сам игрок, а не фоновая задача
	sess, err := svc.Do(ctx, Identity{UserID: 1}, nil)
	require.NoError(t, err)
	assert.Equal(t, engine.RolloverConsecutive, sess.Rollover.State)
	assert.Equal(t, 2, sess.State.Stats.LoginStreak)
}

func TestAbsentees(t *testing.T) {
	svc, clock := newTestService(t, NewMemoryStore(), "2026-03-02")
	ctx := context.Background()

	_, err := svc.Do(ctx, Identity{UserID: 1, FirstName: "a", ChatID: 1}, nil)
	require.NoError(t, err)
	_, err = svc.Do(ctx, Identity{UserID: 2, FirstName: "b", ChatID: 2}, nil)
	require.NoError(t, err)
	require.NoError(t, svc.SetReminders(ctx, Identity{UserID: 2}, false))

	// на следующий день штрафа ещё нет
	clock.AdvanceDays(1)
	list, err := svc.Absentees(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)

	clock.AdvanceDays(2)
	list, err = svc.Absentees(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, int64(1), list[0].Player.UserID)
	assert.Equal(t, 3, list[0].DaysAway)
	assert.Equal(t, int64(100), list[0].Penalty)
	assert.Contains(t, AbsenceText(list[0]), "100 монет")

	// обход ничего не списал
	_, state, err := svc.View(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(100), state.Stats.Gold)
}

func TestReset(t *testing.T) {
	svc, _ := newTestService(t, NewMemoryStore(), "2026-03-02")
	ctx := context.Background()

	_, err := svc.Do(ctx, alice, func(sess *Session) error {
		svc.Engine().AddGold(sess.State, 900)
		return nil
	})
	require.NoError(t, err)

	require.NoError(t, svc.Reset(ctx, alice.UserID))

	_, state, err := svc.View(ctx, alice.UserID)
	require.NoError(t, err)
	assert.Equal(t, int64(100), state.Stats.Gold)
	assert.Empty(t, state.HistoryLogs)
}

func TestSetReminders(t *testing.T) {
	store := NewMemoryStore()
	svc, _ := newTestService(t, store, "2026-03-02")
	ctx := context.Background()

	require.NoError(t, svc.SetReminders(ctx, alice, false))
	rec, err := store.Get(ctx, alice.UserID)
	require.NoError(t, err)
	assert.False(t, rec.RemindersEnabled)
}

func TestImport(t *testing.T) {
	svc, _ := newTestService(t, NewMemoryStore(), "2026-03-02")
	ctx := context.Background()

	_, _, err := svc.Import(ctx, alice, []byte(`{"stats": {"gold": 5}}`))
	require.ErrorIs(t, err, common.ErrMalformedSnapshot)

	_, _, err = svc.Import(ctx, alice, []byte(`[1, 2]`))
	require.ErrorIs(t, err, common.ErrMalformedSnapshot)

	// Сохранение двухдневной давности: при импорте сразу применяется переход дня
	data := []byte(`{
		"stats": {"gold": 400, "level": 2, "maxXp": 750, "lastLoginDate": "2026-02-28"},
		"habits": [{"id": "h1", "title": "Run", "frequency": "daily", "status": "done"}]
	}`)
	sess, _, err := svc.Import(ctx, alice, data)
	require.NoError(t, err)
	assert.Equal(t, engine.RolloverMissed, sess.Rollover.State)
	assert.Equal(t, int64(50), sess.Rollover.Penalty)

	_, state, err := svc.View(ctx, alice.UserID)
	require.NoError(t, err)
	assert.Equal(t, int64(350), state.Stats.Gold)
	require.Len(t, state.Habits, 1)
	assert.Equal(t, engine.HabitTodo, state.Habits[0].Status)
	assert.Equal(t, engine.KindDaily, state.Habits[0].Recurrence.Kind)
}
