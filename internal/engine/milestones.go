// Package engine — milestones.go: долгосрочные достижения («сертификаты»),
// которые считаются по истории, а не хранятся в состоянии.
package engine

// MilestoneTier — ступень достижения.
type MilestoneTier struct {
	Threshold int64
	Name      string
}

// Milestone — достижение с текущим значением и полученной ступенью.
type Milestone struct {
	ID          string
	Title       string
	Description string
	Tiers       []MilestoneTier
	Value       int64
	Reached     int // сколько ступеней пройдено
}

// Tier возвращает название последней пройденной ступени или "".
func (m Milestone) Tier() string {
	if m.Reached == 0 {
		return ""
	}
	return m.Tiers[m.Reached-1].Name
}

// Next возвращает следующую ступень. ok=false, если пройдены все.
func (m Milestone) Next() (MilestoneTier, bool) {
	if m.Reached >= len(m.Tiers) {
		return MilestoneTier{}, false
	}
	return m.Tiers[m.Reached], true
}

func tiers(novice, specialist, expert, master int64) []MilestoneTier {
	return []MilestoneTier{
		{novice, "Novice"}, {specialist, "Specialist"}, {expert, "Expert"}, {master, "Master"},
	}
}

// Milestones считает достижения по журналу событий.
func Milestones(logs []HistoryLog) []Milestone {
	var commissions, harvests, gold int64
	dailyTitle := ""
	for _, q := range SystemQuests() {
		if q.ID == "sq_daily_commission" {
			dailyTitle = q.Title
		}
	}

	for _, l := range logs {
		switch {
		case l.Kind == LogQuest && l.Message == dailyTitle:
			commissions++
		case l.Kind == LogHarvest:
			harvests++
		}
		if l.Kind == LogHabit || l.Kind == LogQuest || l.Kind == LogHarvest {
			gold += max(0, ParseRewardSummary(l.RewardSummary).Gold)
		}
	}

	list := []Milestone{
		{ID: "consistent_brewer", Title: "Consistent Brewer",
			Description: "Total daily commissions completed.",
			Tiers:       tiers(30, 90, 180, 365), Value: commissions},
		{ID: "wild_gatherer", Title: "Wild Gatherer",
			Description: "Total wild harvests completed.",
			Tiers:       tiers(25, 50, 100, 200), Value: harvests},
		{ID: "wealth_accumulator", Title: "Wealth Accumulator",
			Description: "Total gold earned (lifetime).",
			Tiers:       tiers(1000, 5000, 20000, 100000), Value: gold},
	}
	for i := range list {
		for _, t := range list[i].Tiers {
			if list[i].Value >= t.Threshold {
				list[i].Reached++
			}
		}
	}
	return list
}
