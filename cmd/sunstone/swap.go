package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/sunstone-app/sunstone/internal/mission"
)

var (
	swapDate   string
	swapIntent string
	swapApply  bool
)

var swapCmd = &cobra.Command{
	Use:   "swap",
	Short: "Propose swaps for today's remaining missions",
	Long: `Compute the time-policy swap ceiling, ask the proposal collaborator for
replacements against the pending missions, and validate the result. Use
--apply to archive the targets and create the replacements.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()

		date := swapDate
		if date == "" {
			date = engine.Today()
		}

		req := mission.SwapRequest{
			UserID: userID,
			Date:   date,
			Intent: swapIntent,
			Source: "cli",
		}

		result, err := engine.ProposeSwaps(ctx, req)
		if err != nil {
			fatal(err)
		}

		yellow := color.New(color.FgYellow).SprintFunc()
		red := color.New(color.FgRed).SprintFunc()
		gray := color.New(color.FgHiBlack).SprintFunc()
		cyan := color.New(color.FgCyan, color.Bold).SprintFunc()

		if result.Reason != "" {
			fmt.Printf("%s %s\n", yellow("No swaps proposed:"), result.Reason)
			return
		}
		if len(result.Errors) > 0 {
			fmt.Printf("%s\n", red("Swap candidate rejected:"))
			for _, e := range result.Errors {
				fmt.Printf("  - %s\n", e)
			}
			return
		}

		doc := result.Doc
		fmt.Printf("\n%s %s\n", cyan("=== Swap proposal ==="), gray(fmt.Sprintf("(ceiling %d)", result.Ceiling)))

		if doc.SwapCount == 0 {
			fmt.Printf("  No swaps needed: %s\n", doc.NoSwapReason)
			return
		}
		for _, repl := range doc.Replacements {
			fmt.Printf("  %s -> %s (%s, %d min, +%d)\n",
				repl.ReplaceTitle, repl.NewMission.Title,
				repl.NewMission.Category, repl.NewMission.DurationMinutes, repl.NewMission.Reward)
			if repl.Reason != "" {
				fmt.Printf("    %s\n", gray(repl.Reason))
			}
		}

		if !swapApply {
			fmt.Printf("\nRe-run with %s to apply.\n", cyan("--apply"))
			return
		}

		applied, err := engine.ApplySwaps(ctx, req, doc)
		if err != nil {
			fatal(err)
		}
		if !applied.Applied() {
			fmt.Printf("%s\n", red("Swap document no longer valid:"))
			for _, e := range applied.Errors {
				fmt.Printf("  - %s\n", e)
			}
			return
		}

		green := color.New(color.FgGreen).SprintFunc()
		fmt.Printf("\n%s %d mission(s) swapped, %d micro(s) created\n",
			green("Applied:"), len(applied.ReplacedTitles), applied.CreatedMicros)
	},
}

func init() {
	swapCmd.Flags().StringVar(&swapDate, "date", "", "date (YYYY-MM-DD, default today)")
	swapCmd.Flags().StringVar(&swapIntent, "intent", "", "free-text intent hint")
	swapCmd.Flags().BoolVar(&swapApply, "apply", false, "apply the proposed swaps")
	rootCmd.AddCommand(swapCmd)
}
