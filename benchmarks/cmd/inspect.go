package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/logrusorgru/aurora"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"

	"github.com/zeu5/selfplay-rl/benchmarks/tictactoe"
	"github.com/zeu5/selfplay-rl/model"
	"github.com/zeu5/selfplay-rl/policies"
)

func InspectCommand() *cobra.Command {
	var noColor bool
	cmd := &cobra.Command{
		Use:   "inspect [board]",
		Short: "Show a stored agent's values for a board, e.g. \"x.o/.x./...\"",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			board := tictactoe.EmptyBoard()
			if len(args) == 1 {
				b, err := tictactoe.ParseBoard(args[0])
				if err != nil {
					return err
				}
				board = b
			}

			ctx := context.Background()
			store, closeStore, err := openStore(ctx)
			if err != nil {
				return err
			}
			defer closeStore()

			m, err := model.Read(ctx, store, flags.ModelName)
			if err != nil {
				return err
			}
			agent, err := model.NewAgent(m, tictactoe.Hyperparameters(flags), policies.NewRand(flags.Seed))
			if err != nil {
				return err
			}

			out := termenv.NewOutput(os.Stdout)
			au := aurora.NewAurora(!noColor)
			if noColor {
				out = termenv.NewOutput(os.Stdout, termenv.WithProfile(termenv.Ascii))
			}

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "%s to move\n\n", board.ToMove())
			fmt.Fprintln(w, tictactoe.RenderBoard(out, board))

			env := tictactoe.NewEnv()
			actions := env.LegalActions(board)
			if len(actions) == 0 {
				fmt.Fprintf(w, "game over: %s\n", env.Winner(board))
				return nil
			}
			values, seen := agent.Table().Row(board.Key())
			if !seen {
				fmt.Fprintln(w, au.Yellow("state not in the table, values default to 0"))
			}
			best := agent.SelectAction(board, actions, false)
			fmt.Fprintln(w, tictactoe.RenderQValues(au, board, values, best))
			fmt.Fprintf(w, "greedy move: %d\n", best)

			stats := agent.Stats()
			fmt.Fprintf(w, "\nmodel %s: %d episodes, avg reward %.3f, win rate %.3f, epsilon %.3f, %d states\n",
				flags.ModelName, stats.Episodes, stats.AvgReward, stats.WinRate, stats.Epsilon, stats.QTableSize)
			return nil
		},
	}
	cmd.Flags().BoolVar(&noColor, "no-color", false, "Disable coloured output")
	return cmd
}
