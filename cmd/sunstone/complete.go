package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var completeCmd = &cobra.Command{
	Use:   "complete <assignment-id>",
	Short: "Complete an assigned mission",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		outcome, err := engine.Complete(cmd.Context(), userID, args[0], "cli")
		if err != nil {
			fatal(err)
		}

		green := color.New(color.FgGreen).SprintFunc()
		gray := color.New(color.FgHiBlack).SprintFunc()

		if outcome.AlreadyCompleted {
			fmt.Printf("%s\n", gray(fmt.Sprintf("%q was already completed.", outcome.Record.Mission.Title)))
			return
		}
		fmt.Printf("%s %q  +%d\n", green("Completed:"), outcome.Record.Mission.Title, outcome.Awarded)
	},
}

var microCmd = &cobra.Command{
	Use:   "micro <assignment-id>",
	Short: "Complete a micro mission (strict path)",
	Long: `Complete a category=micro assignment through the strict path: the
wind-down gate, the per-parent limit, and the per-day micro reward cap all
apply. Refusals are reported without mutating anything.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		result, err := engine.CompleteMicro(cmd.Context(), userID, args[0])
		if err != nil {
			fatal(err)
		}

		green := color.New(color.FgGreen).SprintFunc()
		red := color.New(color.FgRed).SprintFunc()
		gray := color.New(color.FgHiBlack).SprintFunc()

		if !result.OK {
			fmt.Printf("%s\n", red("Micro not completed:"))
			for _, e := range result.Errors {
				fmt.Printf("  - %s\n", e)
			}
			return
		}
		if result.AlreadyCompleted {
			fmt.Printf("%s\n", gray("Micro was already completed."))
			return
		}
		fmt.Printf("%s %q  +%d\n", green("Micro completed:"), result.Record.Mission.Title, result.Awarded)
		if result.Clamped {
			fmt.Printf("  %s\n", gray("reward clamped by the daily micro cap"))
		}
	},
}

var recoverCmd = &cobra.Command{
	Use:   "recover <assignment-id>",
	Short: "Complete a recovery mission",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		outcome, err := engine.CompleteRecovery(cmd.Context(), userID, args[0])
		if err != nil {
			fatal(err)
		}

		green := color.New(color.FgGreen).SprintFunc()
		gray := color.New(color.FgHiBlack).SprintFunc()

		if outcome.AlreadyCompleted {
			fmt.Printf("%s\n", gray("Recovery was already completed."))
			return
		}
		fmt.Printf("%s streak is now %d, %d shield(s) left  +%d\n",
			green("Streak recovered:"), outcome.StreakCount, outcome.ShieldsRemaining, outcome.Awarded)
	},
}

func init() {
	rootCmd.AddCommand(completeCmd)
	rootCmd.AddCommand(microCmd)
	rootCmd.AddCommand(recoverCmd)
}
