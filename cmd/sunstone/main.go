// Command sunstone is the daily mission planner CLI: it generates,
// validates, and assigns mission plans, applies swaps, and records
// completions and streak recoveries.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/sunstone-app/sunstone/internal/ai"
	"github.com/sunstone-app/sunstone/internal/config"
	"github.com/sunstone-app/sunstone/internal/mission"
	"github.com/sunstone-app/sunstone/internal/planning"
	"github.com/sunstone-app/sunstone/internal/storage"
	"github.com/sunstone-app/sunstone/internal/timectx"
	"github.com/sunstone-app/sunstone/internal/types"
)

var (
	cfgFile string
	userID  string
	dbPath  string

	cfg    *config.Config
	store  storage.Storage
	engine *mission.Engine
)

var rootCmd = &cobra.Command{
	Use:   "sunstone",
	Short: "Daily mission planner",
	Long: `Sunstone generates a validated daily mission plan, keeps it honest
against your day-end cutoff, and tracks completions, micro bonuses, and
streak recovery.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(cfgFile)
		if err != nil {
			return err
		}
		if dbPath != "" {
			cfg.Database.Path = dbPath
		}

		store, err = storage.NewStorage(cmd.Context(), &storage.Config{Path: cfg.Database.Path})
		if err != nil {
			return fmt.Errorf("failed to open storage: %w", err)
		}

		var proposer types.Proposer
		if !cfg.Planner.Disabled {
			planner, err := ai.NewPlanner(&ai.Config{
				Model:     cfg.Planner.Model,
				SwapModel: cfg.Planner.SwapModel,
			})
			if err != nil {
				// No API key is a degraded mode, not a startup failure.
				slog.Warn("proposal collaborator unavailable", "error", err)
			} else {
				proposer = planner
			}
		}

		rules := planning.DefaultRules()
		rules.Denylist = append(rules.Denylist, cfg.Plan.ExtraDenylist...)

		policy := timectx.New()
		policy.DayEnd = cfg.Plan.DayEnd

		engine, err = mission.New(&mission.Config{
			Store:      store,
			Proposer:   proposer,
			Policy:     policy,
			Rules:      &rules,
			MinutesCap: cfg.Plan.MinutesCap,
		})
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if store != nil {
			store.Close()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", config.DefaultPath(), "config file path")
	rootCmd.PersistentFlags().StringVarP(&userID, "user", "u", "local", "user identifier")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "override database path")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// fatal prints an error and exits. Commands use it after engine calls fail.
func fatal(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}
