// Package engine — shop.go: каталог магазина и покупка улучшений.
package engine

import (
	"fmt"
	"strings"

	"serotonyl.ru/habit-bot/internal/common"
)

// ShopEffect — что даёт покупка.
type ShopEffect string

const (
	EffectSlotUpgrade        ShopEffect = "slot_upgrade"        // +Value слотов для привычек
	EffectMultiplierUpgrade  ShopEffect = "multiplier_upgrade"  // общий множитель × Value
	EffectUnlockCategory     ShopEffect = "unlock_category"     // новая своя категория
	EffectCategoryMultiplier ShopEffect = "category_multiplier" // множитель категории = Value
)

// ShopItem — товар в магазине.
type ShopItem struct {
	ID          string     `yaml:"id" json:"id"`
	Name        string     `yaml:"name" json:"name"`
	Description string     `yaml:"description" json:"description"`
	CostGold    int64      `yaml:"cost_gold" json:"costGold"`
	CostGems    int64      `yaml:"cost_gems" json:"costGems"`
	Effect      ShopEffect `yaml:"effect" json:"effect"`
	Value       float64    `yaml:"value" json:"value"`
	MinLevel    int        `yaml:"min_level" json:"minLevel"`
}

// NeedsCategory — для покупки нужно указать категорию.
func (i ShopItem) NeedsCategory() bool {
	return i.Effect == EffectUnlockCategory || i.Effect == EffectCategoryMultiplier
}

// DefaultShop — стандартный каталог.
func DefaultShop() []ShopItem {
	return []ShopItem{
		{ID: "slot_1", Name: "Oak Shelf Expansion", Description: "Adds 1 extra slot for habits.",
			CostGold: 200, Effect: EffectSlotUpgrade, Value: 1, MinLevel: 1},
		{ID: "cat_unlock", Name: "Custom Category Permit", Description: "Mint a new custom category.",
			CostGems: 50, Effect: EffectUnlockCategory, MinLevel: 3},
		{ID: "cat_boost", Name: "Felix Felicis Brew", Description: "1.5x rewards for a selected category.",
			CostGems: 150, Effect: EffectCategoryMultiplier, Value: 1.5, MinLevel: 5},
		{ID: "catalyst", Name: "Philosopher's Catalyst", Description: "1.1x rewards for every habit.",
			CostGold: 1000, CostGems: 100, Effect: EffectMultiplierUpgrade, Value: 1.1, MinLevel: 10},
	}
}

// ShopItem ищет товар по ID.
func (e *Engine) ShopItem(id string) (ShopItem, bool) {
	for _, it := range e.balance.Shop {
		if it.ID == id {
			return it, true
		}
	}
	return ShopItem{}, false
}

// Catalog возвращает каталог магазина.
func (e *Engine) Catalog() []ShopItem {
	return e.balance.Shop
}

// PurchaseResult — итог покупки.
type PurchaseResult struct {
	Item      ShopItem
	Category  string
	Completed []Quest
}

// BuyShopItem покупает товар. Все проверки (уровень, деньги, категория)
// идут до списания, так что отказ ничего не меняет.
func (e *Engine) BuyShopItem(s *State, itemID, category string) (PurchaseResult, error) {
	item, ok := e.ShopItem(itemID)
	if !ok {
		return PurchaseResult{}, common.ErrItemNotFound
	}
	if s.Stats.Level < item.MinLevel {
		return PurchaseResult{}, fmt.Errorf("%w: нужен уровень %d", common.ErrLevelTooLow, item.MinLevel)
	}
	category = strings.TrimSpace(category)
	if item.NeedsCategory() && category == "" {
		return PurchaseResult{}, common.ErrCategoryRequired
	}
	if item.Effect == EffectUnlockCategory && hasCategory(s.Stats.CustomCategories, category) {
		return PurchaseResult{}, common.ErrCategoryExists
	}

	before := questStatuses(s)
	if err := e.Spend(s, item.CostGold, item.CostGems); err != nil {
		return PurchaseResult{}, err
	}

	st := &s.Stats
	switch item.Effect {
	case EffectSlotUpgrade:
		st.HabitSlots += max(1, int(item.Value))
	case EffectMultiplierUpgrade:
		st.RewardMultiplier *= item.Value
	case EffectUnlockCategory:
		st.CustomCategories = append(st.CustomCategories, category)
	case EffectCategoryMultiplier:
		if st.CategoryMultipliers == nil {
			st.CategoryMultipliers = map[string]float64{}
		}
		current := st.CategoryMultipliers[category]
		if current <= 0 {
			current = 1
		}
		st.CategoryMultipliers[category] = current * item.Value
	}

	e.logHistory(s, LogShop, item.Name, FormatRewardSummary(-item.CostGold, -item.CostGems, 0))
	e.Fire(s, TriggerShopPurchase)

	return PurchaseResult{Item: item, Category: category, Completed: newlyCompleted(before, s)}, nil
}

func hasCategory(list []string, name string) bool {
	for _, c := range list {
		if strings.EqualFold(c, name) {
			return true
		}
	}
	return false
}
