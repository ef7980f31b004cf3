package players

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"serotonyl.ru/habit-bot/internal/common"
)

// MemoryStore держит игроков в памяти. Используется в тестах
// и при запуске ops-утилиты без базы.
type MemoryStore struct {
	mu      sync.Mutex
	records map[int64]Record
	now     func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[int64]Record), now: time.Now}
}

func (m *MemoryStore) Update(ctx context.Context, userID int64, fn func(rec *Record) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.records[userID]
	if !ok {
		rec = Record{Player: Player{UserID: userID, RemindersEnabled: true}}
	}
	// Копия снимка: fn не должна менять хранимые байты до успешного завершения
	rec.Snapshot = append([]byte(nil), rec.Snapshot...)

	if err := fn(&rec); err != nil {
		return err
	}

	now := m.now()
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = now
	}
	rec.UpdatedAt = now
	m.records[userID] = rec
	return nil
}

func (m *MemoryStore) Get(ctx context.Context, userID int64) (*Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.records[userID]
	if !ok {
		return nil, fmt.Errorf("user_id=%d: %w", userID, common.ErrPlayerNotFound)
	}
	rec.Snapshot = append([]byte(nil), rec.Snapshot...)
	return &rec, nil
}

func (m *MemoryStore) List(ctx context.Context) ([]Player, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]Player, 0, len(m.records))
	for _, rec := range m.records {
		out = append(out, rec.Player)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out, nil
}
