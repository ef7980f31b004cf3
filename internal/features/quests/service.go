// Package quests — квесты игрока: системные (двигаются событиями)
// и собственные, которые игрок сдаёт вручную.
package quests

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	log "github.com/sirupsen/logrus"

	"serotonyl.ru/habit-bot/internal/common"
	"serotonyl.ru/habit-bot/internal/engine"
	"serotonyl.ru/habit-bot/internal/features/players"
)

// Награда по умолчанию за свой квест
const (
	DefaultRewardGold int64 = 50
	DefaultRewardXP   int64 = 25
)

// Service управляет квестами.
type Service struct {
	players *players.Service
	engine  *engine.Engine
}

// NewService создаёт сервис квестов.
func NewService(p *players.Service) *Service {
	return &Service{players: p, engine: p.Engine()}
}

// ResolveQuest находит квест по номеру из списка !квесты или по ID.
func ResolveQuest(s *engine.State, ref string) (*engine.Quest, error) {
	ref = strings.TrimSpace(ref)
	if n, err := strconv.Atoi(ref); err == nil {
		if n < 1 || n > len(s.Quests) {
			return nil, fmt.Errorf("%w: номер %d", common.ErrQuestNotFound, n)
		}
		return &s.Quests[n-1], nil
	}
	if q, ok := s.Quest(ref); ok {
		return q, nil
	}
	return nil, fmt.Errorf("%w: %q", common.ErrQuestNotFound, ref)
}

// ParseDraft разбирает «Название | цель | золото самоцветы опыт | срок».
func ParseDraft(text string) (engine.QuestDraft, error) {
	parts := strings.Split(text, "|")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	d := engine.QuestDraft{
		Title:       parts[0],
		RewardGold:  DefaultRewardGold,
		RewardXP:    DefaultRewardXP,
		MaxProgress: 1,
	}
	if d.Title == "" {
		return d, common.ErrEmptyTitle
	}
	if len(parts) > 4 {
		return d, fmt.Errorf("%w: слишком много полей", common.ErrInvalidAmount)
	}
	if len(parts) > 1 && parts[1] != "" {
		n, err := strconv.Atoi(parts[1])
		if err != nil || n < 1 {
			return d, fmt.Errorf("%w: цель %q", common.ErrInvalidAmount, parts[1])
		}
		d.MaxProgress = n
	}
	if len(parts) > 2 && parts[2] != "" {
		nums := strings.Fields(parts[2])
		if len(nums) > 3 {
			return d, fmt.Errorf("%w: награда — золото, самоцветы и опыт", common.ErrInvalidAmount)
		}
		vals := []*int64{&d.RewardGold, &d.RewardGems, &d.RewardXP}
		for i, s := range nums {
			v, err := strconv.ParseInt(s, 10, 64)
			if err != nil || v < 0 {
				return d, fmt.Errorf("%w: %q", common.ErrInvalidAmount, s)
			}
			*vals[i] = v
		}
	}
	if len(parts) > 3 {
		d.Deadline = parts[3]
	}
	return d, nil
}

// List открывает состояние игрока для показа квестов.
func (s *Service) List(ctx context.Context, id players.Identity) (*players.Session, error) {
	return s.players.Do(ctx, id, nil)
}

// Create добавляет свой квест.
func (s *Service) Create(ctx context.Context, id players.Identity, d engine.QuestDraft) (engine.Quest, *players.Session, error) {
	var quest engine.Quest
	sess, err := s.players.Do(ctx, id, func(sess *players.Session) error {
		var err error
		quest, err = s.engine.CreateQuest(sess.State, d)
		return err
	})
	if err == nil {
		log.WithFields(log.Fields{"user_id": id.UserID, "quest": quest.Title}).Info("Новый квест")
	}
	return quest, sess, err
}

// Complete сдаёт свой квест вручную.
func (s *Service) Complete(ctx context.Context, id players.Identity, ref string) (engine.Quest, *players.Session, error) {
	var quest engine.Quest
	sess, err := s.players.Do(ctx, id, func(sess *players.Session) error {
		q, err := ResolveQuest(sess.State, ref)
		if err != nil {
			return err
		}
		quest, err = s.engine.CompleteQuest(sess.State, q.ID)
		return err
	})
	return quest, sess, err
}

// Claim забирает награду за выполненный квест.
func (s *Service) Claim(ctx context.Context, id players.Identity, ref string) (engine.ClaimResult, *players.Session, error) {
	var res engine.ClaimResult
	sess, err := s.players.Do(ctx, id, func(sess *players.Session) error {
		q, err := ResolveQuest(sess.State, ref)
		if err != nil {
			return err
		}
		res, err = s.engine.ClaimQuestReward(sess.State, q.ID)
		return err
	})
	if err == nil {
		log.WithFields(log.Fields{
			"user_id": id.UserID,
			"quest":   res.Quest.Title,
			"gold":    res.Gold,
			"gems":    res.Gems,
		}).Debug("Награда за квест")
	}
	return res, sess, err
}

// ClaimAll забирает все готовые награды разом.
func (s *Service) ClaimAll(ctx context.Context, id players.Identity) ([]engine.ClaimResult, *players.Session, error) {
	var out []engine.ClaimResult
	sess, err := s.players.Do(ctx, id, func(sess *players.Session) error {
		// награда может закрыть следующий квест, поэтому идём до неподвижной точки
		for {
			claimed := false
			for i := range sess.State.Quests {
				if sess.State.Quests[i].Status != engine.QuestCompleted {
					continue
				}
				res, err := s.engine.ClaimQuestReward(sess.State, sess.State.Quests[i].ID)
				if err != nil {
					return err
				}
				out = append(out, res)
				claimed = true
			}
			if !claimed {
				return nil
			}
		}
	})
	return out, sess, err
}

// Delete удаляет свой квест.
func (s *Service) Delete(ctx context.Context, id players.Identity, ref string) (engine.Quest, *players.Session, error) {
	var quest engine.Quest
	sess, err := s.players.Do(ctx, id, func(sess *players.Session) error {
		q, err := ResolveQuest(sess.State, ref)
		if err != nil {
			return err
		}
		quest = *q
		return s.engine.DeleteQuest(sess.State, q.ID)
	})
	return quest, sess, err
}
