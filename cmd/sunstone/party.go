package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	partyDate  string
	partyApply bool
)

var partyCmd = &cobra.Command{
	Use:   "party",
	Short: "Propose supportive missions from your party roster",
	Long: `Deterministically draft up to two additive missions from the party
roster. Party missions supplement the daily plan; they never replace it.
Use --apply to assign them.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()

		date := partyDate
		if date == "" {
			date = engine.Today()
		}

		doc, err := engine.ProposeParty(ctx, userID, date, nil)
		if err != nil {
			fatal(err)
		}

		cyan := color.New(color.FgCyan, color.Bold).SprintFunc()
		gray := color.New(color.FgHiBlack).SprintFunc()
		red := color.New(color.FgRed).SprintFunc()
		green := color.New(color.FgGreen).SprintFunc()

		fmt.Printf("\n%s\n", cyan("=== Party suggestions ==="))
		if doc.Count == 0 {
			fmt.Printf("  %s\n", gray(doc.Notes))
			return
		}
		for _, sug := range doc.Suggestions {
			fmt.Printf("  %s %s (%s): %s (%s, %d min, +%d)\n",
				sug.Member.Emoji, sug.Member.Name, sug.Member.Role,
				sug.Mission.Title, sug.Mission.Category,
				sug.Mission.DurationMinutes, sug.Mission.Reward)
			fmt.Printf("    %s\n", gray(sug.Reason))
		}

		if !partyApply {
			fmt.Printf("\nRe-run with %s to assign them.\n", cyan("--apply"))
			return
		}

		outcome, errs, err := engine.ApplyParty(ctx, userID, date, "cli", doc)
		if err != nil {
			fatal(err)
		}
		if len(errs) > 0 {
			fmt.Printf("%s\n", red("Party suggestions rejected:"))
			for _, e := range errs {
				fmt.Printf("  - %s\n", e)
			}
			return
		}
		fmt.Printf("\n%s %d party mission(s) assigned\n", green("Applied:"), outcome.CreatedMissions)
	},
}

var moodCmd = &cobra.Command{
	Use:   "mood [mood]",
	Short: "Suggest gentle micro actions for right now",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		signals := map[string]any{}
		if len(args) == 1 {
			signals["mood"] = args[0]
		}

		suggestions, err := engine.SuggestMoodActions(cmd.Context(), userID, signals)
		if err != nil {
			fatal(err)
		}

		gray := color.New(color.FgHiBlack).SprintFunc()
		for _, s := range suggestions {
			fmt.Printf("  %s %s (%s, %d min)\n", s.Emoji, s.Title, s.Category, s.Minutes)
			fmt.Printf("    %s\n", gray(s.Reason))
		}
	},
}

func init() {
	partyCmd.Flags().StringVar(&partyDate, "date", "", "date (YYYY-MM-DD, default today)")
	partyCmd.Flags().BoolVar(&partyApply, "apply", false, "assign the suggested missions")
	rootCmd.AddCommand(partyCmd)
	rootCmd.AddCommand(moodCmd)
}
