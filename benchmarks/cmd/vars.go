package cmd

import (
	"context"
	"os"
	"os/signal"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/zeu5/selfplay-rl/benchmarks/common"
	"github.com/zeu5/selfplay-rl/core"
	"github.com/zeu5/selfplay-rl/model"
)

var (
	flags  *common.Flags = common.DefaultFlags()
	logger *logrus.Logger = logrus.StandardLogger()
)

// AddFlags applies .env and SELFPLAY_* overrides to the defaults and binds the flags.
func AddFlags(cmd *cobra.Command) {
	flags.LoadEnv()
	flags.AddFlags(cmd.PersistentFlags())
}

// UpdateFlags finishes the configuration once the command line is parsed.
func UpdateFlags() {
	logger = flags.Logger()
	if flags.ModelName == "" {
		flags.ModelName = "tictactoe-" + uuid.NewString()
	}
}

func runConfig() *core.RunConfig {
	return &core.RunConfig{
		Episodes:    flags.Episodes,
		Horizon:     flags.Horizon,
		SampleEvery: flags.SampleEvery,
		EvalGames:   flags.EvalGames,
	}
}

// interruptContext is cancelled on an interrupt or when done is called.
func interruptContext() (context.Context, func()) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt) // channel for interrupts from os

	doneCh := make(chan struct{}) // channel for done signal from application

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		select {
		case <-sigCh:
			logger.Warn("interrupted, stopping after the current episode")
		case <-doneCh:
		}
		signal.Stop(sigCh)
		cancel()
	}()
	return ctx, func() { close(doneCh) }
}

func openStore(ctx context.Context) (model.BlobStore, func() error, error) {
	store, closeFn, err := model.OpenStore(ctx, flags.StoreConfig())
	if err != nil {
		return nil, closeFn, err
	}
	logger.WithField("store", flags.Store).Debug("model store opened")
	return store, closeFn, nil
}
