package tictactoe

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/zeu5/selfplay-rl/analysis"
	"github.com/zeu5/selfplay-rl/benchmarks/common"
	"github.com/zeu5/selfplay-rl/core"
	"github.com/zeu5/selfplay-rl/model"
	"github.com/zeu5/selfplay-rl/policies"
)

type Config struct {
	Agent       core.AgentConstructor
	Opponent    core.PolicyConstructor
	AgentPlayer core.Player
	Horizon     int
	Seed        uint64
}

// Setup is one agent wired to a tic-tac-toe environment and an opponent.
type Setup struct {
	Env    *Env
	Agent  core.Agent
	Runner *core.Runner[Board]
}

func NewSetup(cfg Config, log *logrus.Entry) *Setup {
	env := NewEnv()
	agent := cfg.Agent.NewAgent(cfg.Seed)
	opponent := cfg.Opponent
	if opponent == nil {
		opponent = &policies.RandomPolicyConstructor{}
	}
	runner := core.NewRunner(core.RunnerConfig[Board]{
		Environment: env,
		Agent:       agent,
		Opponent:    opponent.NewPolicy(agent),
		AgentPlayer: cfg.AgentPlayer,
		Horizon:     cfg.Horizon,
		Logger:      log,
	})
	return &Setup{Env: env, Agent: agent, Runner: runner}
}

// QAgent returns the QLearningAgent behind the setup's agent.
func (s *Setup) QAgent() (*policies.QLearningAgent, bool) {
	return policies.AsQLearning(s.Agent)
}

// RunnerConstructor builds independent setups for parallel experiments. Instances
// get distinct seeds derived from the configured one.
type RunnerConstructor struct {
	Config Config
}

var _ core.RunnerConstructor = &RunnerConstructor{}

func (c *RunnerConstructor) NewRunner(instance int, log *logrus.Entry) core.EpisodeRunner {
	cfg := c.Config
	if cfg.Seed != 0 {
		cfg.Seed += uint64(instance)
	}
	return NewSetup(cfg, log).Runner
}

func Hyperparameters(flags *common.Flags) policies.Hyperparameters {
	return flags.Hyperparameters(Cells, Cells)
}

func agentPlayer(flags *common.Flags) core.Player {
	if flags.AgentPlayer == 2 {
		return core.Player2
	}
	return core.Player1
}

// ConfigFromFlags builds the configuration of a single training setup.
func ConfigFromFlags(flags *common.Flags, opponent core.PolicyConstructor) Config {
	return Config{
		Agent:       policies.NewQLearningAgentConstructor(Hyperparameters(flags)),
		Opponent:    opponent,
		AgentPlayer: agentPlayer(flags),
		Horizon:     flags.Horizon,
		Seed:        flags.Seed,
	}
}

// OpponentFromFlags resolves the opponent policy, loading the opponent model from
// store when needed.
func OpponentFromFlags(ctx context.Context, flags *common.Flags, store model.BlobStore) (core.PolicyConstructor, error) {
	switch flags.Opponent {
	case "", "random":
		return &policies.RandomPolicyConstructor{}, nil
	case "model", "softmax":
		if flags.OpponentModel == "" {
			return nil, fmt.Errorf("opponent %s needs --opponent-model", flags.Opponent)
		}
		m, err := model.Read(ctx, store, flags.OpponentModel)
		if err != nil {
			return nil, err
		}
		frozen, err := model.NewAgent(m, Hyperparameters(flags), policies.NewRand(flags.Seed))
		if err != nil {
			return nil, err
		}
		if flags.Opponent == "softmax" {
			return &policies.SoftmaxPolicyConstructor{Frozen: frozen.Table(), Temperature: flags.Temperature}, nil
		}
		return &policies.AgentPolicyConstructor{Frozen: frozen}, nil
	}
	return nil, fmt.Errorf("unknown opponent %q", flags.Opponent)
}

// AddAnalyses registers the analyses shared by the training and comparison commands.
func AddAnalyses(cmp *core.ParallelComparison, flags *common.Flags) {
	if flags.Debug {
		cmp.AddAnalysis("Debug", analysis.NewPrintDebugAnalyzerConstructor(flags.SavePath, flags.Episodes-10, StateToString), analysis.NewNoOpComparatorConstructor())
	}
	cmp.AddAnalysis("Invalid", analysis.NewInvalidAnalyzerConstructor(flags.SavePath, StateToString), analysis.NewNoOpComparatorConstructor())
	cmp.AddAnalysis("Coverage", analysis.NewCoverageAnalyzerConstructor(), analysis.NewCoverageComparatorConstructor(flags.SavePath))
	cmp.AddAnalysis("Outcomes", analysis.NewOutcomeAnalyzerConstructor(flags.SampleEvery), analysis.NewOutcomeComparatorConstructor(flags.SavePath))
}

// PrepareComparison trains agent variants side by side, each with its own table.
// Trained agents are saved to store under "<model>-<experiment>".
func PrepareComparison(flags *common.Flags, opponent core.PolicyConstructor, store model.BlobStore) *core.ParallelComparison {
	cmp := core.NewParallelComparison()
	AddAnalyses(cmp, flags)

	base := ConfigFromFlags(flags, opponent)
	variants := []struct {
		name   string
		modify func(*policies.Hyperparameters, *Config)
	}{
		{"QLearning", func(*policies.Hyperparameters, *Config) {}},
		{"QLearningSlowDecay", func(p *policies.Hyperparameters, _ *Config) { p.EpsilonDecay = 0.999 }},
		{"QLearningLowLR", func(p *policies.Hyperparameters, _ *Config) { p.LearningRate = 0.1 }},
		{"QLearningSecond", func(_ *policies.Hyperparameters, c *Config) { c.AgentPlayer = core.Player2 }},
	}
	for _, v := range variants {
		params := Hyperparameters(flags)
		cfg := base
		v.modify(&params, &cfg)
		cfg.Agent = policies.NewQLearningAgentConstructor(params)
		addVariant(cmp, v.name, cfg, flags, store)
	}

	ucb := base
	ucb.Agent = policies.NewUCBAgentConstructor(Hyperparameters(flags), flags.UCBConstant)
	addVariant(cmp, "UCB", ucb, flags, store)
	return cmp
}

func addVariant(cmp *core.ParallelComparison, name string, cfg Config, flags *common.Flags, store model.BlobStore) {
	cmp.AddExperiment(&core.ParallelExperiment{
		Name:       name,
		Runner:     &RunnerConstructor{Config: cfg},
		OnComplete: SaveOnComplete(store, flags.ModelName+"-"+name),
	})
}

// SaveOnComplete stores the trained agent of a runner under name.
func SaveOnComplete(store model.BlobStore, name string) func(core.EpisodeRunner) error {
	return func(r core.EpisodeRunner) error {
		if store == nil {
			return nil
		}
		runner, ok := r.(*core.Runner[Board])
		if !ok {
			return nil
		}
		agent, ok := policies.AsQLearning(runner.Agent())
		if !ok {
			return nil
		}
		return model.Save(context.Background(), store, name, agent)
	}
}

// StateToString renders a state for trace dumps.
func StateToString(s core.State) string {
	b, ok := s.(Board)
	if !ok {
		return string(s.Key())
	}
	return b.String()
}
