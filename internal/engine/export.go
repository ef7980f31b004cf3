package engine

import (
	"encoding/csv"
	"fmt"
	"io"
)

// WriteHistoryCSV выгружает журнал событий в CSV: Date, Activity, Type, Rewards.
func WriteHistoryCSV(w io.Writer, logs []HistoryLog) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"Date", "Activity", "Type", "Rewards"}); err != nil {
		return fmt.Errorf("csv header: %w", err)
	}
	for _, l := range logs {
		if err := cw.Write([]string{l.Date, l.Message, string(l.Kind), l.RewardSummary}); err != nil {
			return fmt.Errorf("csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}
