package cmd

import "github.com/spf13/cobra"

func RootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "selfplay",
		Short: "Tabular Q-learning through self-play on tic-tac-toe",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			UpdateFlags()
			if err := flags.Record(); err != nil {
				logger.WithError(err).Warn("could not record configuration")
			}
		},
	}
	AddFlags(cmd)

	cmd.AddCommand(
		TrainCommand(),
		EvalCommand(),
		CompareCommand(),
		InspectCommand(),
	)

	return cmd
}
