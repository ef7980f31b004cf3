// Package config — balance.go загружает игровой баланс из YAML.
// По умолчанию берётся встроенный balance.yaml, BALANCE_FILE его заменяет.
package config

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"serotonyl.ru/habit-bot/internal/engine"
)

//go:embed balance.yaml
var defaultBalanceYAML []byte

// LoadBalance читает баланс из файла path (или встроенный, если path пустой).
// Поля, которых нет в файле, остаются значениями по умолчанию.
func LoadBalance(path string) (engine.Balance, error) {
	data := defaultBalanceYAML
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return engine.Balance{}, fmt.Errorf("не удалось прочитать баланс %s: %w", path, err)
		}
		data = b
	}
	return ParseBalance(data)
}

// ParseBalance разбирает YAML поверх баланса по умолчанию и проверяет его.
func ParseBalance(data []byte) (engine.Balance, error) {
	b := engine.DefaultBalance()
	if err := yaml.Unmarshal(data, &b); err != nil {
		return engine.Balance{}, fmt.Errorf("некорректный YAML баланса: %w", err)
	}
	if err := ValidateBalance(b); err != nil {
		return engine.Balance{}, err
	}
	return b, nil
}

// ValidateBalance отсекает значения, при которых экономика ломается.
func ValidateBalance(b engine.Balance) error {
	if b.XPGrowth <= 1 {
		return fmt.Errorf("xp_growth должен быть > 1, получено %v", b.XPGrowth)
	}
	if b.Start.MaxXP <= 0 {
		return fmt.Errorf("start.max_xp должен быть > 0")
	}
	if b.Start.Gold < 0 || b.Start.Gems < 0 {
		return fmt.Errorf("стартовые валюты не могут быть отрицательными")
	}
	if b.PenaltyPerDay < 0 {
		return fmt.Errorf("penalty_per_day не может быть отрицательным")
	}
	if b.HarvestMin < 0 || b.HarvestMax < b.HarvestMin {
		return fmt.Errorf("некорректный диапазон сбора %d..%d", b.HarvestMin, b.HarvestMax)
	}
	seen := make(map[string]bool, len(b.Shop))
	for _, it := range b.Shop {
		if it.ID == "" || seen[it.ID] {
			return fmt.Errorf("товар с пустым или повторяющимся id %q", it.ID)
		}
		seen[it.ID] = true
		if it.CostGold < 0 || it.CostGems < 0 {
			return fmt.Errorf("товар %s: отрицательная цена", it.ID)
		}
		switch it.Effect {
		case engine.EffectSlotUpgrade, engine.EffectUnlockCategory:
		case engine.EffectMultiplierUpgrade, engine.EffectCategoryMultiplier:
			if it.Value <= 0 {
				return fmt.Errorf("товар %s: множитель должен быть > 0", it.ID)
			}
		default:
			return fmt.Errorf("товар %s: неизвестный эффект %q", it.ID, it.Effect)
		}
	}
	return nil
}
