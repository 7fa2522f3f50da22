package main

import (
	"github.com/spf13/cobra"
)

func newStatsCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show patient and visit statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			stats, err := a.stats.ComputeStats(cmd.Context())
			if err != nil {
				return err
			}

			renderFields(a.out,
				"Total patients", itoa(stats.TotalPatients),
				"Total visits", itoa(stats.TotalVisits),
				"Visits today", itoa(stats.TodayVisits),
				"Visits this month", itoa(stats.MonthVisits),
			)

			table := newTable(a.out, "Month", "New patients", "Visits", "Total")
			for _, m := range stats.Monthly {
				table.Append([]string{m.MonthYear, itoa(m.NewPatients), itoa(m.Visits), itoa(m.Total)})
			}
			table.Render()
			return nil
		},
	}
}
