package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/sunstone-app/sunstone/internal/mission"
	"github.com/sunstone-app/sunstone/internal/types"
)

var (
	planDate    string
	planMinutes int
	planIntent  string
	planAssign  bool
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Generate and preview today's mission plan",
	Long: `Ask the proposal collaborator for a full-day plan, validate it against
the structural and time-budget rules, and persist it as a preview. Use
--assign to materialize it immediately.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()

		date := planDate
		if date == "" {
			date = engine.Today()
		}

		req := mission.PlanRequest{
			UserID:     userID,
			Date:       date,
			MinutesCap: planMinutes,
			Intent:     planIntent,
			Source:     "cli",
		}

		result, err := engine.GeneratePlan(ctx, req)
		if err != nil {
			fatal(err)
		}

		yellow := color.New(color.FgYellow).SprintFunc()
		red := color.New(color.FgRed).SprintFunc()

		if result.Reason != "" {
			fmt.Printf("%s %s\n", yellow("No plan generated:"), result.Reason)
			return
		}
		if len(result.Errors) > 0 {
			fmt.Printf("%s\n", red("Plan candidate rejected:"))
			for _, e := range result.Errors {
				fmt.Printf("  - %s\n", e)
			}
			return
		}

		run := result.Run
		printPlanRun(run)

		if !planAssign {
			fmt.Printf("\nRun %s to assign it.\n",
				color.New(color.FgCyan).Sprintf("sunstone assign %s", run.ID))
			return
		}

		assign, err := engine.AssignPlan(ctx, userID, run.ID)
		if err != nil {
			fatal(err)
		}
		printAssignResult(assign)
	},
}

var assignCmd = &cobra.Command{
	Use:   "assign <plan-run-id>",
	Short: "Assign a previewed plan run",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		assign, err := engine.AssignPlan(cmd.Context(), userID, args[0])
		if err != nil {
			fatal(err)
		}
		printAssignResult(assign)
	},
}

func printPlanRun(run *types.PlanRun) {
	cyan := color.New(color.FgCyan, color.Bold).SprintFunc()
	gray := color.New(color.FgHiBlack).SprintFunc()

	fmt.Printf("\n%s\n", cyan(fmt.Sprintf("=== Plan v%d (%s) ===", run.Version, run.Status)))
	fmt.Printf("%s\n\n", gray(fmt.Sprintf("run %s, %s", run.ID, run.Date)))

	if run.Meta.Plan == nil {
		fmt.Println("  (empty plan)")
		return
	}
	for _, m := range run.Meta.Plan.Missions {
		fmt.Printf("  %-32s %-10s %-6s %3d min  +%d\n",
			m.Title, m.Category, m.Difficulty, m.DurationMinutes, m.Reward)
		if m.Micro != nil {
			fmt.Printf("    %s\n", gray(fmt.Sprintf("micro: %s (%d min)", m.Micro.Title, m.Micro.DurationMinutes)))
		}
	}
	fmt.Printf("\n  Total: %d min (cap %d)\n", run.Meta.Plan.TotalMinutes(), run.Meta.MinutesCap)
}

func printAssignResult(assign *mission.AssignResult) {
	green := color.New(color.FgGreen).SprintFunc()
	gray := color.New(color.FgHiBlack).SprintFunc()

	if assign.AlreadyAssigned {
		fmt.Printf("%s\n", gray("Plan was already assigned; nothing changed."))
		return
	}
	fmt.Printf("%s %d missions, %d micros created\n",
		green("Assigned:"), assign.CreatedMissions, assign.CreatedMicros)
	if assign.SupersededRunID != "" {
		fmt.Printf("  %s\n", gray(fmt.Sprintf("superseded run %s (%d pending archived)",
			assign.SupersededRunID, assign.ArchivedPending)))
	}
}

func init() {
	planCmd.Flags().StringVar(&planDate, "date", "", "plan date (YYYY-MM-DD, default today)")
	planCmd.Flags().IntVar(&planMinutes, "minutes", 0, "daily minutes cap (default from config)")
	planCmd.Flags().StringVar(&planIntent, "intent", "", "free-text intent hint for the planner")
	planCmd.Flags().BoolVar(&planAssign, "assign", false, "assign the plan immediately")
	rootCmd.AddCommand(planCmd)
	rootCmd.AddCommand(assignCmd)
}
