// Package admin реализует админ-команды с парольной аутентификацией.
// models.go описывает сессии, попытки входа и состояние диалога.
package admin

import "time"

// Session — активная сессия администратора.
type Session struct {
	UserID          int64     `db:"user_id"`
	AuthenticatedAt time.Time `db:"authenticated_at"`
	ExpiresAt       time.Time `db:"expires_at"`
}

// Active сообщает, что сессия ещё действует на момент now.
func (s *Session) Active(now time.Time) bool {
	return s != nil && now.Before(s.ExpiresAt)
}

// Dialog — состояние диалога с админом: ждём пароль или подтверждение сброса.
type Dialog struct {
	State     string
	Target    int64 // игрок, над которым действие
	ExpiresAt time.Time
}

// Возможные состояния админ-диалога
const (
	StateNone             = ""
	StateAwaitingPassword = "awaiting_password"
	StateConfirmReset     = "confirm_reset"
)

// Защита от перебора: столько неудачных попыток за окно блокируют вход
const (
	maxFailedAttempts = 3
	attemptsWindow    = time.Hour
	dialogTTL         = 5 * time.Minute
)
