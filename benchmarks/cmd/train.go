package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/zeu5/selfplay-rl/benchmarks/tictactoe"
	"github.com/zeu5/selfplay-rl/core"
	"github.com/zeu5/selfplay-rl/model"
	"github.com/zeu5/selfplay-rl/util"
)

func TrainCommand() *cobra.Command {
	var resume bool
	cmd := &cobra.Command{
		Use:   "train",
		Short: "Train an agent against the configured opponent and store it",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, done := interruptContext()
			defer done()

			store, closeStore, err := openStore(ctx)
			if err != nil {
				return err
			}
			defer closeStore()

			opponent, err := tictactoe.OpponentFromFlags(ctx, flags, store)
			if err != nil {
				return err
			}
			log := logger.WithFields(logrus.Fields{"opponent": flags.Opponent, "model": flags.ModelName})
			setup := tictactoe.NewSetup(tictactoe.ConfigFromFlags(flags, opponent), log)

			agent, _ := setup.QAgent()
			if resume {
				err := model.Load(ctx, store, flags.ModelName, agent)
				switch {
				case errors.Is(err, model.ErrNotFound):
					log.Info("no stored model, starting fresh")
				case err != nil:
					return err
				default:
					log.WithFields(agent.Report()).Info("resuming stored model")
				}
			}

			cmp := core.NewComparison()
			cmp.Logger = log
			cmp.AddExperiment(&core.Experiment{
				Name:       "train",
				Runner:     setup.Runner,
				OnComplete: tictactoe.SaveOnComplete(store, flags.ModelName),
			})
			addSequentialAnalyses(cmp)

			results := cmp.Run(ctx, 1, runConfig())
			result, ok := results["train"]
			if !ok {
				return core.ErrCancelled
			}
			if result.IsError() {
				return result.Error
			}

			stats := agent.Stats()
			fmt.Fprintf(cmd.OutOrStdout(),
				"trained %d episodes: avg reward %.3f, win rate %.3f, epsilon %.3f, %d states\n",
				stats.Episodes, stats.AvgReward, stats.WinRate, stats.Epsilon, stats.QTableSize)
			if result.Eval != nil {
				fmt.Fprintf(cmd.OutOrStdout(), "greedy evaluation: %s\n", result.Eval)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&resume, "resume", false, "Continue training the stored model")
	return cmd
}

// addSequentialAnalyses registers the parallel analyses of a comparison on a
// sequential one, as run 0.
func addSequentialAnalyses(cmp *core.Comparison) {
	parallel := core.NewParallelComparison()
	tictactoe.AddAnalyses(parallel, flags)
	for name, a := range parallel.Analyzers {
		cmp.AddAnalysis(name, a.NewAnalyzer("train", 0), parallel.Comparators[name].NewComparator(0))
	}
}

func EvalCommand() *cobra.Command {
	var games int
	cmd := &cobra.Command{
		Use:   "eval",
		Short: "Play greedy games with a stored agent",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			store, closeStore, err := openStore(ctx)
			if err != nil {
				return err
			}
			defer closeStore()

			opponent, err := tictactoe.OpponentFromFlags(ctx, flags, store)
			if err != nil {
				return err
			}
			setup := tictactoe.NewSetup(tictactoe.ConfigFromFlags(flags, opponent), logger.WithField("model", flags.ModelName))
			agent, _ := setup.QAgent()
			if err := model.Load(ctx, store, flags.ModelName, agent); err != nil {
				return err
			}

			result := core.Evaluate(setup.Runner, games, flags.Horizon)
			logger.WithFields(logrus.Fields{
				"win_rate":  result.WinRate(),
				"draw_rate": result.DrawRate(),
				"loss_rate": result.LossRate(),
			}).Debug("evaluation finished")
			fmt.Fprintln(cmd.OutOrStdout(), result.String())
			return nil
		},
	}
	cmd.Flags().IntVar(&games, "games", flags.EvalGames, "Number of greedy games")
	return cmd
}

func CompareCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compare",
		Short: "Train agent variants in parallel and compare their outcome curves",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, done := interruptContext()
			defer done()

			store, closeStore, err := openStore(ctx)
			if err != nil {
				return err
			}
			defer closeStore()

			opponent, err := tictactoe.OpponentFromFlags(ctx, flags, store)
			if err != nil {
				return err
			}
			cmp := tictactoe.PrepareComparison(flags, opponent, store)
			cmp.Logger = logrus.NewEntry(logger)
			results := cmp.Run(ctx, flags.NumRuns, runConfig(), flags.Parallelism)

			for _, name := range util.SortedKeys(results) {
				r := results[name]
				entry := logger.WithFields(logrus.Fields{"experiment": name, "episodes": r.CompletedEpisodes})
				if r.IsError() {
					entry.WithError(r.Error).Error("experiment failed")
					continue
				}
				if r.Eval != nil {
					fmt.Fprintf(cmd.OutOrStdout(), "%-20s %s\n", name, r.Eval)
				}
			}
			return nil
		},
	}
	return cmd
}
