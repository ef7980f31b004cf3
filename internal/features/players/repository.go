// Package players — repository.go: хранилище снимков в PostgreSQL.
// Снимок игрока читается с SELECT ... FOR UPDATE, поэтому два апдейта
// одного игрока (бот и cron) не перетирают друг друга.
package players

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"serotonyl.ru/habit-bot/internal/common"
	"serotonyl.ru/habit-bot/internal/db/postgres"
)

// Store — хранилище игроков. Update выполняет fn в одной транзакции
// с блокировкой записи и сохраняет rec, если fn вернула nil.
type Store interface {
	Update(ctx context.Context, userID int64, fn func(rec *Record) error) error
	Get(ctx context.Context, userID int64) (*Record, error)
	List(ctx context.Context) ([]Player, error)
}

// Repository — Store поверх pgxpool.
type Repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

const selectPlayer = `
	SELECT user_id, COALESCE(username, ''), first_name, chat_id, snapshot,
	       COALESCE(to_char(last_login_date, 'YYYY-MM-DD'), ''), reminders_enabled,
	       created_at, updated_at
	FROM players
`

func scanRecord(row pgx.Row) (*Record, error) {
	var rec Record
	err := row.Scan(
		&rec.UserID, &rec.Username, &rec.FirstName, &rec.ChatID, &rec.Snapshot,
		&rec.LastLoginDate, &rec.RemindersEnabled,
		&rec.CreatedAt, &rec.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *Repository) Update(ctx context.Context, userID int64, fn func(rec *Record) error) error {
	return postgres.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		rec, err := scanRecord(tx.QueryRow(ctx, selectPlayer+" WHERE user_id = $1 FOR UPDATE", userID))
		if errors.Is(err, pgx.ErrNoRows) {
			rec = &Record{Player: Player{UserID: userID, RemindersEnabled: true}}
		} else if err != nil {
			return fmt.Errorf("ошибка чтения игрока (user_id=%d): %w", userID, err)
		}

		if err := fn(rec); err != nil {
			return err
		}

		_, err = tx.Exec(ctx, `
			INSERT INTO players (user_id, username, first_name, chat_id, snapshot,
			                     last_login_date, reminders_enabled)
			VALUES ($1, $2, $3, $4, $5, NULLIF($6, '')::date, $7)
			ON CONFLICT (user_id) DO UPDATE
			SET username = EXCLUDED.username,
			    first_name = EXCLUDED.first_name,
			    chat_id = EXCLUDED.chat_id,
			    snapshot = EXCLUDED.snapshot,
			    last_login_date = EXCLUDED.last_login_date,
			    reminders_enabled = EXCLUDED.reminders_enabled,
			    updated_at = NOW()
		`, userID, rec.Username, rec.FirstName, rec.ChatID, rec.Snapshot,
			rec.LastLoginDate, rec.RemindersEnabled)
		if err != nil {
			return fmt.Errorf("ошибка сохранения игрока (user_id=%d): %w", userID, err)
		}
		return nil
	})
}

// Get: если игрока нет, возвращает common.ErrPlayerNotFound.
func (r *Repository) Get(ctx context.Context, userID int64) (*Record, error) {
	rec, err := scanRecord(r.db.QueryRow(ctx, selectPlayer+" WHERE user_id = $1", userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("user_id=%d: %w", userID, common.ErrPlayerNotFound)
		}
		return nil, fmt.Errorf("ошибка чтения игрока (user_id=%d): %w", userID, err)
	}
	return rec, nil
}

func (r *Repository) List(ctx context.Context) ([]Player, error) {
	rows, err := r.db.Query(ctx, `
		SELECT user_id, COALESCE(username, ''), first_name, chat_id,
		       COALESCE(to_char(last_login_date, 'YYYY-MM-DD'), ''), reminders_enabled,
		       created_at, updated_at
		FROM players
		ORDER BY user_id
	`)
	if err != nil {
		return nil, fmt.Errorf("ошибка запроса игроков: %w", err)
	}
	defer rows.Close()

	var out []Player
	for rows.Next() {
		var p Player
		if err := rows.Scan(
			&p.UserID, &p.Username, &p.FirstName, &p.ChatID,
			&p.LastLoginDate, &p.RemindersEnabled,
			&p.CreatedAt, &p.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("ошибка сканирования строки: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ошибка чтения строк: %w", err)
	}
	return out, nil
}
