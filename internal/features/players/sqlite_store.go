// Package players — sqlite_store.go: то же хранилище поверх SQLite
// для локального запуска без PostgreSQL.
package players

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"serotonyl.ru/habit-bot/internal/common"
	"serotonyl.ru/habit-bot/internal/db/sqlite"
)

// SQLiteStore — Store поверх database/sql + modernc.org/sqlite.
// Соединение одно, так что транзакции игроков идут строго по очереди.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

const sqliteSelectPlayer = `
	SELECT user_id, COALESCE(username, ''), first_name, chat_id, snapshot,
	       COALESCE(last_login_date, ''), reminders_enabled,
	       CAST(strftime('%s', created_at) AS INTEGER), CAST(strftime('%s', updated_at) AS INTEGER)
	FROM players
`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSQLiteRecord(row rowScanner) (*Record, error) {
	var (
		rec              Record
		snapshot         string
		created, updated int64
	)
	err := row.Scan(
		&rec.UserID, &rec.Username, &rec.FirstName, &rec.ChatID, &snapshot,
		&rec.LastLoginDate, &rec.RemindersEnabled, &created, &updated,
	)
	if err != nil {
		return nil, err
	}
	rec.Snapshot = []byte(snapshot)
	rec.CreatedAt = time.Unix(created, 0).UTC()
	rec.UpdatedAt = time.Unix(updated, 0).UTC()
	return &rec, nil
}

func (s *SQLiteStore) Update(ctx context.Context, userID int64, fn func(rec *Record) error) error {
	return sqlite.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		rec, err := scanSQLiteRecord(tx.QueryRowContext(ctx, sqliteSelectPlayer+" WHERE user_id = ?", userID))
		if errors.Is(err, sql.ErrNoRows) {
			rec = &Record{Player: Player{UserID: userID, RemindersEnabled: true}}
		} else if err != nil {
			return fmt.Errorf("player get (user_id=%d): %w", userID, err)
		}

		if err := fn(rec); err != nil {
			return err
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO players (user_id, username, first_name, chat_id, snapshot,
			                     last_login_date, reminders_enabled)
			VALUES (?, ?, ?, ?, ?, NULLIF(?, ''), ?)
			ON CONFLICT(user_id) DO UPDATE
			SET username = excluded.username,
			    first_name = excluded.first_name,
			    chat_id = excluded.chat_id,
			    snapshot = excluded.snapshot,
			    last_login_date = excluded.last_login_date,
			    reminders_enabled = excluded.reminders_enabled,
			    updated_at = CURRENT_TIMESTAMP
		`, userID, rec.Username, rec.FirstName, rec.ChatID, string(rec.Snapshot),
			rec.LastLoginDate, rec.RemindersEnabled)
		if err != nil {
			return fmt.Errorf("player upsert (user_id=%d): %w", userID, err)
		}
		return nil
	})
}

func (s *SQLiteStore) Get(ctx context.Context, userID int64) (*Record, error) {
	rec, err := scanSQLiteRecord(s.db.QueryRowContext(ctx, sqliteSelectPlayer+" WHERE user_id = ?", userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("user_id=%d: %w", userID, common.ErrPlayerNotFound)
		}
		return nil, fmt.Errorf("player get (user_id=%d): %w", userID, err)
	}
	return rec, nil
}

func (s *SQLiteStore) List(ctx context.Context) ([]Player, error) {
	rows, err := s.db.QueryContext(ctx, sqliteSelectPlayer+" ORDER BY user_id")
	if err != nil {
		return nil, fmt.Errorf("player list: %w", err)
	}
	defer rows.Close()

	var out []Player
	for rows.Next() {
		rec, err := scanSQLiteRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("player scan: %w", err)
		}
		out = append(out, rec.Player)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("player rows: %w", err)
	}
	return out, nil
}
