package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatRewardSummary(t *testing.T) {
	assert.Equal(t, "+30g, +50XP", FormatRewardSummary(30, 0, 50))
	assert.Equal(t, "+30g, +1gems, +50XP", FormatRewardSummary(30, 1, 50))
	assert.Equal(t, "-200g, -5gems", FormatRewardSummary(-200, -5, 0))
	assert.Equal(t, "+10gems", FormatRewardSummary(0, 10, 0))
	assert.Equal(t, "", FormatRewardSummary(0, 0, 0))
}

func TestParseRewardSummary(t *testing.T) {
	assert.Equal(t, RewardTotals{Gold: 30, Gems: 1, XP: 50}, ParseRewardSummary("+30g, +1gems, +50XP"))
	assert.Equal(t, RewardTotals{Gems: 10}, ParseRewardSummary("+10gems"))
	assert.Equal(t, RewardTotals{Gold: -200, Gems: -5}, ParseRewardSummary("-200g, -5gems"))
	// Старые записи бывают без знака
	assert.Equal(t, RewardTotals{Gold: 15, XP: 20}, ParseRewardSummary("15g, 20XP"))
	assert.Equal(t, RewardTotals{}, ParseRewardSummary("nothing here"))
}

func TestAnalyze(t *testing.T) {
	logs := []HistoryLog{
		{Date: "2026-05-03", Kind: LogShop, Message: "Oak Shelf Expansion", RewardSummary: "-200g"},
		{Date: "2026-05-03", Kind: LogHabit, Message: "Run|Health|bolt", RewardSummary: "+10g, +12XP"},
		{Date: "2026-05-02", Kind: LogQuest, Message: "First Brew", RewardSummary: "+20g, +2gems, +50XP"},
		{Date: "2026-05-02", Kind: LogPenalty, Message: "Missed days penalty", RewardSummary: "-50g"},
		{Date: "2026-05-01", Kind: LogHarvest, Message: "Wild Harvest Complete", RewardSummary: "+30g, +30XP"},
		{Date: "2026-05-01", Kind: LogHabit, Message: "Read|Knowledge|book", RewardSummary: "+5g, +5XP"},
		{Date: "2026-04-20", Kind: LogHabit, Message: "Run|Health|bolt", RewardSummary: "+10g, +12XP"},
	}

	r := Analyze(logs, "2026-05-01", "2026-05-03")

	assert.Equal(t, 3, r.Completed)
	assert.Equal(t, int64(65), r.GoldEarned)
	assert.Equal(t, int64(2), r.GemsEarned)
	assert.Equal(t, int64(97), r.XPEarned)
	assert.Equal(t, int64(200), r.GoldSpent)
	assert.Equal(t, int64(50), r.Penalties)
	assert.Equal(t, 3, r.ActiveDays)
	assert.Equal(t, []string{"Health", "Knowledge"}, r.Categories)

	all := Analyze(logs, "", "")
	assert.Equal(t, 4, all.Completed)
	assert.Equal(t, 4, all.ActiveDays)
}

func TestSplitHabitMessage(t *testing.T) {
	title, cat, icon := SplitHabitMessage("Run|Health|bolt")
	assert.Equal(t, "Run", title)
	assert.Equal(t, "Health", cat)
	assert.Equal(t, "bolt", icon)

	title, cat, _ = SplitHabitMessage("Mastery: Run (x20)")
	assert.Equal(t, "Mastery: Run (x20)", title)
	assert.Empty(t, cat)
}
