// Package admin — service.go содержит аутентификацию, сессии, состояние диалога
// и действия над игроками: сброс, множитель наград, выдача валюты.
package admin

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strings"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
	"golang.org/x/crypto/argon2"

	"serotonyl.ru/habit-bot/internal/common"
	"serotonyl.ru/habit-bot/internal/features/players"
)

// Service управляет админ-командами.
type Service struct {
	repo         Repository
	players      *players.Service
	passwordHash string
	sessionTTL   time.Duration
	isAdmin      func(userID int64) bool
	now          func() time.Time

	dialogs   map[int64]*Dialog // состояния диалогов (in-memory)
	dialogsMu sync.RWMutex
}

// NewService создаёт сервис админки.
// isAdmin обычно config.Config.IsAdmin.
func NewService(repo Repository, p *players.Service, passwordHash string, sessionTTL time.Duration, isAdmin func(int64) bool) *Service {
	return &Service{
		repo:         repo,
		players:      p,
		passwordHash: passwordHash,
		sessionTTL:   sessionTTL,
		isAdmin:      isAdmin,
		now:          time.Now,
		dialogs:      make(map[int64]*Dialog),
	}
}

// IsAdmin проверяет, что пользователь в списке администраторов.
func (s *Service) IsAdmin(userID int64) bool {
	return s.isAdmin(userID)
}

// VerifyPassword проверяет пароль администратора (Argon2id).
// 3 неудачные попытки за час блокируют вход на час.
func (s *Service) VerifyPassword(ctx context.Context, userID int64, password string) error {
	if !s.isAdmin(userID) {
		return common.ErrNotAdmin
	}
	now := s.now()
	attempts, err := s.repo.FailedAttemptsSince(ctx, userID, now.Add(-attemptsWindow))
	if err != nil {
		return err
	}
	if attempts >= maxFailedAttempts {
		return common.ErrTooManyAttempts
	}

	match := verifyArgon2id(password, s.passwordHash)
	if err := s.repo.LogAttempt(ctx, userID, match, now); err != nil {
		log.WithError(err).Warn("Не удалось записать попытку входа")
	}
	if !match {
		log.WithField("user_id", userID).Warn("Неверный пароль администратора")
		return common.ErrWrongPassword
	}

	log.WithField("user_id", userID).Info("Администратор вошёл")
	return s.repo.SaveSession(ctx, Session{
		UserID:          userID,
		AuthenticatedAt: now,
		ExpiresAt:       now.Add(s.sessionTTL),
	})
}

// HasActiveSession проверяет, есть ли у пользователя действующая сессия.
func (s *Service) HasActiveSession(ctx context.Context, userID int64) bool {
	if !s.isAdmin(userID) {
		return false
	}
	sess, err := s.repo.GetSession(ctx, userID)
	if err != nil {
		log.WithError(err).Error("Ошибка проверки сессии")
		return false
	}
	return sess.Active(s.now())
}

// Logout завершает сессию.
func (s *Service) Logout(ctx context.Context, userID int64) error {
	s.ClearDialog(userID)
	return s.repo.DeleteSession(ctx, userID)
}

// Dialog возвращает текущее состояние диалога или nil.
func (s *Service) Dialog(userID int64) *Dialog {
	s.dialogsMu.RLock()
	defer s.dialogsMu.RUnlock()

	d, ok := s.dialogs[userID]
	if !ok || s.now().After(d.ExpiresAt) {
		return nil
	}
	return d
}

// SetDialog устанавливает состояние диалога с 5-минутным таймаутом.
func (s *Service) SetDialog(userID int64, state string, target int64) {
	s.dialogsMu.Lock()
	defer s.dialogsMu.Unlock()

	s.dialogs[userID] = &Dialog{State: state, Target: target, ExpiresAt: s.now().Add(dialogTTL)}
}

// ClearDialog сбрасывает состояние диалога.
func (s *Service) ClearDialog(userID int64) {
	s.dialogsMu.Lock()
	defer s.dialogsMu.Unlock()
	delete(s.dialogs, userID)
}

// ResetPlayer стирает прогресс игрока.
func (s *Service) ResetPlayer(ctx context.Context, adminID, target int64) error {
	if err := s.players.Reset(ctx, target); err != nil {
		return err
	}
	log.WithFields(log.Fields{"admin_id": adminID, "user_id": target}).Warn("Прогресс игрока сброшен")
	return nil
}

// SetMultiplier задаёт общий множитель наград игрока.
func (s *Service) SetMultiplier(ctx context.Context, adminID, target int64, value float64) error {
	if value <= 0 || value > 10 {
		return fmt.Errorf("%w: множитель должен быть в (0, 10]", common.ErrInvalidAmount)
	}
	_, err := s.players.Refresh(ctx, target, func(sess *players.Session) error {
		sess.State.Stats.RewardMultiplier = value
		return nil
	})
	if err != nil {
		return err
	}
	log.WithFields(log.Fields{"admin_id": adminID, "user_id": target, "multiplier": value}).Info("Множитель изменён")
	return nil
}

// Grant выдаёт (или забирает при отрицательных суммах) золото и самоцветы.
// Балансы не уходят ниже нуля.
func (s *Service) Grant(ctx context.Context, adminID, target, gold, gems int64) (*players.Session, error) {
	if gold == 0 && gems == 0 {
		return nil, common.ErrInvalidAmount
	}
	eng := s.players.Engine()
	sess, err := s.players.Refresh(ctx, target, func(sess *players.Session) error {
		eng.AddGold(sess.State, gold)
		eng.AddGems(sess.State, gems)
		return nil
	})
	if err != nil {
		return nil, err
	}
	log.WithFields(log.Fields{"admin_id": adminID, "user_id": target, "gold": gold, "gems": gems}).Info("Выдача валюты")
	return sess, nil
}

// --- Криптографические утилиты ---

// Параметры Argon2id для новых хешей
const (
	argonMemory      uint32 = 64 * 1024
	argonIterations  uint32 = 3
	argonParallelism uint8  = 2
	argonKeyLength   uint32 = 32
	argonSaltLength         = 16
)

// HashPassword создаёт хеш вида $argon2id$v=19$m=65536,t=3,p=2$<salt>$<hash>.
func HashPassword(password string) (string, error) {
	salt := make([]byte, argonSaltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("ошибка генерации соли: %w", err)
	}
	hash := argon2.IDKey([]byte(password), salt, argonIterations, argonMemory, argonParallelism, argonKeyLength)
	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, argonMemory, argonIterations, argonParallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(hash)), nil
}

// verifyArgon2id проверяет пароль по хешу Argon2id.
func verifyArgon2id(password, encodedHash string) bool {
	parts := strings.Split(encodedHash, "$")
	if len(parts) != 6 {
		log.Error("Некорректный формат хеша Argon2id")
		return false
	}

	var memory, iterations uint32
	var parallelism uint8
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &memory, &iterations, &parallelism); err != nil {
		log.WithError(err).Error("Ошибка парсинга параметров Argon2id")
		return false
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		log.WithError(err).Error("Ошибка декодирования соли")
		return false
	}
	expectedHash, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		log.WithError(err).Error("Ошибка декодирования хеша")
		return false
	}

	computedHash := argon2.IDKey([]byte(password), salt, iterations, memory, parallelism, uint32(len(expectedHash)))

	// Сравниваем в постоянном времени
	return subtle.ConstantTimeCompare(computedHash, expectedHash) == 1
}
