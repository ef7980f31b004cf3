// Package economy — service.go: покупки в магазине и лесной сбор.
// Все списания и начисления идут через движок внутри players.Service.Do.
package economy

import (
	"context"
	"strconv"
	"strings"

	log "github.com/sirupsen/logrus"

	"serotonyl.ru/habit-bot/internal/common"
	"serotonyl.ru/habit-bot/internal/engine"
	"serotonyl.ru/habit-bot/internal/features/players"
)

// Service управляет экономикой игрока.
type Service struct {
	players *players.Service
	engine  *engine.Engine
	opts    Options
}

// NewService создаёт сервис экономики.
func NewService(p *players.Service, opts Options) *Service {
	return &Service{players: p, engine: p.Engine(), opts: opts}
}

// Profile возвращает профиль игрока.
func (s *Service) Profile(ctx context.Context, id players.Identity) (Profile, *players.Session, error) {
	sess, err := s.players.Do(ctx, id, nil)
	if err != nil {
		return Profile{}, sess, err
	}
	return NewProfile(sess.State), sess, nil
}

// Catalog — товары магазина.
func (s *Service) Catalog() ([]engine.ShopItem, error) {
	if !s.opts.ShopEnabled {
		return nil, common.ErrFeatureDisabled
	}
	return s.engine.Catalog(), nil
}

// Buy покупает товар. Номер из каталога тоже подходит.
func (s *Service) Buy(ctx context.Context, id players.Identity, ref, category string) (engine.PurchaseResult, *players.Session, error) {
	if !s.opts.ShopEnabled {
		return engine.PurchaseResult{}, nil, common.ErrFeatureDisabled
	}
	itemID := s.resolveItem(ref)

	var res engine.PurchaseResult
	sess, err := s.players.Do(ctx, id, func(sess *players.Session) error {
		var err error
		res, err = s.engine.BuyShopItem(sess.State, itemID, category)
		return err
	})
	if err == nil {
		log.WithFields(log.Fields{
			"user_id":  id.UserID,
			"item":     res.Item.ID,
			"category": res.Category,
		}).Info("Покупка в магазине")
	}
	return res, sess, err
}

func (s *Service) resolveItem(ref string) string {
	ref = strings.TrimSpace(ref)
	catalog := s.engine.Catalog()
	for i, it := range catalog {
		if ref == it.ID || ref == strconv.Itoa(i+1) || strings.EqualFold(ref, it.Name) {
			return it.ID
		}
	}
	return ref
}

// Harvest — лесной сбор, не чаще раза в день.
func (s *Service) Harvest(ctx context.Context, id players.Identity) (engine.HarvestResult, *players.Session, error) {
	if !s.opts.HarvestEnabled {
		return engine.HarvestResult{}, nil, common.ErrFeatureDisabled
	}
	var res engine.HarvestResult
	sess, err := s.players.Do(ctx, id, func(sess *players.Session) error {
		if harvestedToday(sess.State, common.FormatDate(s.engine.Today())) {
			return common.ErrHarvestDone
		}
		res = s.engine.Harvest(sess.State)
		return nil
	})
	return res, sess, err
}

// harvestedToday — в истории уже есть сбор за сегодня.
// Записи идут от новых к старым, поэтому смотрим до первой вчерашней.
func harvestedToday(s *engine.State, today string) bool {
	for _, l := range s.HistoryLogs {
		if !strings.HasPrefix(l.Date, today) {
			return false
		}
		if l.Kind == engine.LogHarvest {
			return true
		}
	}
	return false
}
