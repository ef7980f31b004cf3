package engine

import (
	"fmt"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// newTestEngine — движок с часами на 10:00 заданного дня (UTC) и предсказуемыми ID.
func newTestEngine(t *testing.T, day string) (*Engine, *FakeClock) {
	t.Helper()
	d := mustDate(t, day)
	clock := NewFakeClock(d.Add(10 * time.Hour))
	n := 0
	e := New(DefaultBalance(),
		WithClock(clock),
		WithRand(rand.New(rand.NewPCG(1, 2))),
		WithIDGenerator(func() string {
			n++
			return fmt.Sprintf("id-%d", n)
		}),
	)
	return e, clock
}

func mustDate(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.ParseInLocation("2006-01-02", s, time.UTC)
	require.NoError(t, err)
	return d
}

// addHabit создаёт привычку в обход слотов и событий.
func addHabit(s *State, h Habit) *Habit {
	if h.Status == "" {
		h.Status = HabitTodo
	}
	if h.Category == "" {
		h.Category = "General"
	}
	s.Habits = append(s.Habits, h)
	return &s.Habits[len(s.Habits)-1]
}

func questByID(t *testing.T, s *State, id string) Quest {
	t.Helper()
	q, ok := s.Quest(id)
	require.True(t, ok, "quest %s not found", id)
	return *q
}
