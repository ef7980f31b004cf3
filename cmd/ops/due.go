package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"serotonyl.ru/habit-bot/internal/common"
	"serotonyl.ru/habit-bot/internal/engine"
	"serotonyl.ru/habit-bot/internal/features/habits"
)

// newDueCmd показывает ближайшие даты по расписанию, например:
//
//	ops due "каждые 2 недели сб" --from 2026-03-02 --count 4
func newDueCmd() *cobra.Command {
	var (
		from  string
		count int
	)
	cmd := &cobra.Command{
		Use:   "due <расписание>",
		Short: "Ближайшие даты привычки по расписанию",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := habits.ParseSchedule(args[0])
			if err != nil {
				return err
			}
			start := common.Day(time.Now())
			if from != "" {
				d, ok := common.ParseDate(from, time.Local)
				if !ok {
					return fmt.Errorf("некорректная дата %q, нужен формат 2006-01-02", from)
				}
				start = d
			}
			habitStart := start
			if habits.CalendarQuarters(args[0]) {
				habitStart = time.Date(start.Year(), time.January, 1, 0, 0, 0, 0, start.Location())
			}
			dates := Upcoming(engine.Habit{Recurrence: r, StartDate: common.FormatDate(habitStart)}, start, count)

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "📅 %s\n", habits.Describe(r))
			if len(dates) == 0 {
				fmt.Fprintln(out, "Ни одной даты в ближайший год")
				return nil
			}
			for _, d := range dates {
				fmt.Fprintf(out, "- %s %s\n", common.FormatDateRu(d), weekdayRu[d.Weekday()])
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&from, "from", "", "дата начала (2006-01-02), по умолчанию сегодня")
	cmd.Flags().IntVar(&count, "count", 5, "сколько дат показать")
	return cmd
}

var weekdayRu = map[time.Weekday]string{
	time.Monday: "пн", time.Tuesday: "вт", time.Wednesday: "ср", time.Thursday: "чт",
	time.Friday: "пт", time.Saturday: "сб", time.Sunday: "вс",
}

// Upcoming возвращает до n дат, начиная с from включительно, когда привычка по расписанию.
func Upcoming(h engine.Habit, from time.Time, n int) []time.Time {
	var out []time.Time
	day := common.Day(from)
	if engine.IsDue(h, day) {
		out = append(out, day)
	}
	for len(out) < n {
		day = engine.NextDueDate(h, day)
		if engine.IsFarFuture(day) {
			break
		}
		out = append(out, day)
	}
	if len(out) > n {
		out = out[:n]
	}
	return out
}
