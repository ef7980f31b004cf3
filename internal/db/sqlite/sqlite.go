// Package sqlite — локальное хранилище на одном файле (modernc.org/sqlite, без cgo).
// Используется для разработки и небольших установок вместо PostgreSQL.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	log "github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"
)

// Open открывает (и создаёт при необходимости) базу по пути path
// и применяет схему. ":memory:" подходит для тестов.
func Open(ctx context.Context, path string) (*sql.DB, error) {
	// busy_timeout: планировщик и бот пишут одновременно
	dsn := path + "?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// SQLite допускает одного писателя, а транзакции игроков пишут всегда
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	if err := Migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}

	log.WithField("path", path).Info("SQLite открыт")
	return db, nil
}

// Migrate создаёт таблицы, если их нет. Схема повторяет postgres-версию,
// только время в admin_* хранится unix-секундами.
func Migrate(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS players (
			user_id INTEGER PRIMARY KEY,
			username TEXT,
			first_name TEXT NOT NULL DEFAULT '',
			chat_id INTEGER NOT NULL DEFAULT 0,
			snapshot TEXT NOT NULL,
			last_login_date TEXT,
			reminders_enabled INTEGER NOT NULL DEFAULT 1,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);`,
		`CREATE INDEX IF NOT EXISTS idx_players_username ON players(username);`,
		`CREATE TABLE IF NOT EXISTS admin_sessions (
			user_id INTEGER PRIMARY KEY,
			authenticated_at INTEGER NOT NULL,
			expires_at INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS admin_login_attempts (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id INTEGER NOT NULL,
			attempt_time INTEGER NOT NULL,
			success INTEGER DEFAULT 0
		);`,
		`CREATE INDEX IF NOT EXISTS idx_admin_login_attempts_user ON admin_login_attempts(user_id, attempt_time);`,
	}
	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

// WithTx выполняет fn в транзакции: коммит при nil, иначе откат.
func WithTx(ctx context.Context, db *sql.DB, fn func(tx *sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	committed = true
	return nil
}
