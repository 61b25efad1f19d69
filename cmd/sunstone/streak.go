package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var streakDate string

var streakCmd = &cobra.Command{
	Use:   "streak",
	Short: "Check the streak and inject a recovery mission if warranted",
	Long: `Run the streak check: resets shields at the start of a new ISO week,
then, if nothing was completed today and a shield remains, injects a single
recovery mission.`,
	Run: func(cmd *cobra.Command, args []string) {
		date := streakDate
		if date == "" {
			date = engine.Today()
		}

		check, err := engine.CheckStreak(cmd.Context(), userID, date)
		if err != nil {
			fatal(err)
		}

		green := color.New(color.FgGreen).SprintFunc()
		yellow := color.New(color.FgYellow).SprintFunc()
		gray := color.New(color.FgHiBlack).SprintFunc()

		if check.ShieldsReset {
			fmt.Printf("%s\n", yellow("Shields replenished for the new week."))
		}
		fmt.Printf("Completed today: %d, shields: %d\n", check.CompletedToday, check.ShieldsRemaining)

		switch {
		case check.Recovery != nil:
			fmt.Printf("%s assignment %s\n", green("Recovery mission ready:"), check.Recovery.ID)
			fmt.Printf("  %s\n", gray(fmt.Sprintf("complete it with `sunstone recover %s`", check.Recovery.ID)))
		case check.CompletedToday > 0:
			fmt.Printf("%s\n", gray("Streak intact; no recovery needed."))
		default:
			fmt.Printf("%s\n", gray("No shields left; the streak cannot be recovered this week."))
		}
	},
}

func init() {
	streakCmd.Flags().StringVar(&streakDate, "date", "", "date (YYYY-MM-DD, default today)")
	rootCmd.AddCommand(streakCmd)
}
