// Package admin — repository.go работает с таблицами admin_sessions и admin_login_attempts.
// Две реализации: PostgreSQL (pgx) и SQLite (database/sql).
package admin

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository хранит сессии и попытки входа.
type Repository interface {
	SaveSession(ctx context.Context, s Session) error
	// GetSession возвращает сессию или nil, если её нет.
	GetSession(ctx context.Context, userID int64) (*Session, error)
	DeleteSession(ctx context.Context, userID int64) error
	LogAttempt(ctx context.Context, userID int64, success bool, at time.Time) error
	FailedAttemptsSince(ctx context.Context, userID int64, since time.Time) (int, error)
}

// PostgresRepository работает с админ-таблицами в PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository создаёт репозиторий.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// SaveSession создаёт или продлевает сессию администратора.
func (r *PostgresRepository) SaveSession(ctx context.Context, s Session) error {
	query := `
		INSERT INTO admin_sessions (user_id, authenticated_at, expires_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id) DO UPDATE SET
			authenticated_at = EXCLUDED.authenticated_at,
			expires_at = EXCLUDED.expires_at
	`
	if _, err := r.db.Exec(ctx, query, s.UserID, s.AuthenticatedAt, s.ExpiresAt); err != nil {
		return fmt.Errorf("ошибка создания сессии: %w", err)
	}
	return nil
}

func (r *PostgresRepository) GetSession(ctx context.Context, userID int64) (*Session, error) {
	query := `SELECT user_id, authenticated_at, expires_at FROM admin_sessions WHERE user_id = $1`
	var s Session
	err := r.db.QueryRow(ctx, query, userID).Scan(&s.UserID, &s.AuthenticatedAt, &s.ExpiresAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения сессии: %w", err)
	}
	return &s, nil
}

func (r *PostgresRepository) DeleteSession(ctx context.Context, userID int64) error {
	_, err := r.db.Exec(ctx, `DELETE FROM admin_sessions WHERE user_id = $1`, userID)
	return err
}

// LogAttempt записывает попытку входа.
func (r *PostgresRepository) LogAttempt(ctx context.Context, userID int64, success bool, at time.Time) error {
	query := `INSERT INTO admin_login_attempts (user_id, success, attempt_time) VALUES ($1, $2, $3)`
	_, err := r.db.Exec(ctx, query, userID, success, at)
	return err
}

// FailedAttemptsSince возвращает количество неудачных попыток начиная с since.
func (r *PostgresRepository) FailedAttemptsSince(ctx context.Context, userID int64, since time.Time) (int, error) {
	query := `
		SELECT COUNT(*) FROM admin_login_attempts
		WHERE user_id = $1 AND success = FALSE AND attempt_time >= $2
	`
	var count int
	err := r.db.QueryRow(ctx, query, userID, since).Scan(&count)
	return count, err
}

// SQLiteRepository — то же для SQLite. Время хранится unix-секундами.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository создаёт репозиторий.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) SaveSession(ctx context.Context, s Session) error {
	query := `
		INSERT INTO admin_sessions (user_id, authenticated_at, expires_at)
		VALUES (?, ?, ?)
		ON CONFLICT (user_id) DO UPDATE SET
			authenticated_at = excluded.authenticated_at,
			expires_at = excluded.expires_at
	`
	if _, err := r.db.ExecContext(ctx, query, s.UserID, s.AuthenticatedAt.Unix(), s.ExpiresAt.Unix()); err != nil {
		return fmt.Errorf("ошибка создания сессии: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) GetSession(ctx context.Context, userID int64) (*Session, error) {
	var authAt, expAt int64
	err := r.db.QueryRowContext(ctx,
		`SELECT authenticated_at, expires_at FROM admin_sessions WHERE user_id = ?`, userID,
	).Scan(&authAt, &expAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения сессии: %w", err)
	}
	return &Session{UserID: userID, AuthenticatedAt: time.Unix(authAt, 0), ExpiresAt: time.Unix(expAt, 0)}, nil
}

func (r *SQLiteRepository) DeleteSession(ctx context.Context, userID int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM admin_sessions WHERE user_id = ?`, userID)
	return err
}

func (r *SQLiteRepository) LogAttempt(ctx context.Context, userID int64, success bool, at time.Time) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO admin_login_attempts (user_id, success, attempt_time) VALUES (?, ?, ?)`,
		userID, success, at.Unix())
	return err
}

func (r *SQLiteRepository) FailedAttemptsSince(ctx context.Context, userID int64, since time.Time) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM admin_login_attempts
		WHERE user_id = ? AND success = 0 AND attempt_time >= ?`,
		userID, since.Unix(),
	).Scan(&count)
	return count, err
}
