// Package engine — ledger.go ведёт кошелёк и уровень игрока.
//
// Правила:
//   - золото и самоцветы никогда не уходят в минус;
//   - опыт переливается в уровни, порог растёт в XPGrowth раз (с округлением вниз);
//   - уровень никогда не уменьшается, отрицательный опыт только обнуляет xp.
package engine

import (
	"math"

	"serotonyl.ru/habit-bot/internal/common"
)

// AddGold меняет баланс золота на amount и обновляет квест «total_gold».
func (e *Engine) AddGold(s *State, amount int64) {
	if amount == 0 {
		return
	}
	s.Stats.Gold = max(0, s.Stats.Gold+amount)
	e.fireValue(s, TriggerTotalGold, clampInt(s.Stats.Gold))
}

// AddGems меняет баланс самоцветов на amount.
func (e *Engine) AddGems(s *State, amount int64) {
	s.Stats.Gems = max(0, s.Stats.Gems+amount)
}

// AddXP начисляет опыт и возвращает количество полученных уровней.
func (e *Engine) AddXP(s *State, amount int64) int {
	st := &s.Stats
	if st.MaxXP <= 0 {
		st.MaxXP = e.balance.Start.MaxXP
	}
	st.XP += amount
	if st.XP < 0 {
		st.XP = 0
	}

	gained := 0
	for st.XP >= st.MaxXP {
		st.XP -= st.MaxXP
		st.Level++
		gained++
		st.MaxXP = max(st.MaxXP+1, int64(math.Floor(float64(st.MaxXP)*e.balance.XPGrowth)))
	}
	if gained > 0 {
		st.Title = e.balance.TitleFor(st.Level)
		e.fireValue(s, TriggerLevelUp, st.Level)
	}
	return gained
}

// Spend списывает золото и самоцветы. Если чего-то не хватает —
// ErrInsufficientFunds, и баланс не меняется.
func (e *Engine) Spend(s *State, gold, gems int64) error {
	if gold < 0 || gems < 0 {
		return common.ErrInvalidAmount
	}
	if s.Stats.Gold < gold || s.Stats.Gems < gems {
		return common.ErrInsufficientFunds
	}
	e.AddGold(s, -gold)
	e.AddGems(s, -gems)
	return nil
}

// scaleReward — floor(base × global × category).
func scaleReward(base int64, global, category float64) int64 {
	if base <= 0 {
		return 0
	}
	return int64(math.Floor(float64(base) * global * category))
}

// categoryMultiplier — множитель категории, по умолчанию 1.
func (s *State) categoryMultiplier(category string) float64 {
	if m, ok := s.Stats.CategoryMultipliers[category]; ok && m > 0 {
		return m
	}
	return 1
}

func clampInt(v int64) int {
	if v > math.MaxInt32 {
		return math.MaxInt32
	}
	return int(v)
}
