package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/sunstone-app/sunstone/internal/types"
)

var statusDate string

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show today's missions, time budget, and rewards",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()

		date := statusDate
		if date == "" {
			date = engine.Today()
		}

		cyan := color.New(color.FgCyan, color.Bold).SprintFunc()
		yellow := color.New(color.FgYellow).SprintFunc()
		green := color.New(color.FgGreen).SprintFunc()
		gray := color.New(color.FgHiBlack).SprintFunc()

		fmt.Printf("\n%s\n\n", cyan(fmt.Sprintf("=== Sunstone %s ===", date)))

		tc, err := engine.TimeContext(ctx, userID)
		if err != nil {
			fatal(err)
		}
		fmt.Printf("%s\n", yellow("Time budget:"))
		if tc.WindDownActive() {
			fmt.Printf("  %s (%d min to midnight)\n", yellow("wind-down active"), tc.EffectiveMinutesToMidnight)
		} else {
			fmt.Printf("  %d min to cutoff, %d min to midnight\n",
				tc.EffectiveMinutesToCutoff, tc.EffectiveMinutesToMidnight)
		}
		fmt.Println()

		recs, err := engine.Assignments(ctx, userID, date)
		if err != nil {
			fatal(err)
		}
		fmt.Printf("%s\n", yellow("Missions:"))
		if len(recs) == 0 {
			fmt.Printf("  %s\n", gray("none; run `sunstone plan` to generate a plan"))
		}
		for _, rec := range recs {
			icon, paint := "○", gray
			switch rec.Assignment.Status {
			case types.AssignmentCompleted:
				icon, paint = "●", green
			case types.AssignmentPending:
				icon, paint = "○", color.New(color.FgWhite).SprintFunc()
			case types.AssignmentArchived:
				icon = "×"
			}
			fmt.Printf("  %s %-32s %-10s %3d min  +%d  %s\n",
				paint(icon), rec.Mission.Title, rec.Mission.Category,
				rec.Mission.DurationMinutes, rec.Mission.Reward,
				gray(rec.Assignment.ID))
		}
		fmt.Println()

		summary, err := engine.RewardSummary(ctx, userID)
		if err != nil {
			fatal(err)
		}
		if len(summary) > 0 {
			fmt.Printf("%s\n", yellow("Rewards earned:"))
			total := 0
			for category, amount := range summary {
				fmt.Printf("  %-12s %d\n", category, amount)
				total += amount
			}
			fmt.Printf("  %-12s %s\n", "total", green(fmt.Sprintf("%d", total)))
		}
	},
}

var logLimit int

var logCmd = &cobra.Command{
	Use:   "log",
	Short: "Show the audit trail",
	Run: func(cmd *cobra.Command, args []string) {
		events, err := engine.AuditTrail(cmd.Context(), userID, logLimit)
		if err != nil {
			fatal(err)
		}

		gray := color.New(color.FgHiBlack).SprintFunc()
		for _, e := range events {
			fmt.Printf("%s  %-20s %s\n",
				gray(e.Timestamp.Format("2006-01-02 15:04:05")), e.Type, e.Message)
		}
		if len(events) == 0 {
			fmt.Printf("%s\n", gray("no audit events yet"))
		}
	},
}

func init() {
	statusCmd.Flags().StringVar(&statusDate, "date", "", "date (YYYY-MM-DD, default today)")
	logCmd.Flags().IntVar(&logLimit, "limit", 20, "number of events to show")
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(logCmd)
}
