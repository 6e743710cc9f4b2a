package policies

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeu5/selfplay-rl/core"
)

type keyState string

func (k keyState) Key() core.StateKey { return core.StateKey(k) }

func testParams() Hyperparameters {
	return DefaultHyperparameters(9, 9)
}

func allActions(n int) []core.Action {
	out := make([]core.Action, n)
	for i := range out {
		out[i] = core.Action(i)
	}
	return out
}

func TestNewAgentIsEmpty(t *testing.T) {
	agent := NewQLearningAgent(testParams(), NewRand(1))

	assert.Equal(t, 1.0, agent.Epsilon())

	stats := agent.Stats()
	assert.Equal(t, 0, stats.Episodes)
	assert.Equal(t, 0.0, stats.AvgReward)
	assert.Equal(t, 0.0, stats.WinRate)
	assert.Equal(t, 0, stats.QTableSize)

	// reading an unseen state creates its zero row
	assert.Equal(t, 0.0, agent.Value(keyState("000000000"), 4))
	stats = agent.Stats()
	assert.Equal(t, 1, stats.QTableSize)
	assert.Equal(t, 9, stats.TotalQValues)
}

func TestUpdateTerminalConvergesToReward(t *testing.T) {
	agent := NewQLearningAgent(testParams(), NewRand(1))
	s := keyState("s")

	for i := 0; i < 60; i++ {
		agent.Update(s, 3, 1, keyState("t"), true)
	}
	assert.InDelta(t, 1.0, agent.Value(s, 3), 1e-9)

	for i := 0; i < 60; i++ {
		agent.Update(s, 3, -1, keyState("t"), true)
	}
	assert.InDelta(t, -1.0, agent.Value(s, 3), 1e-9)
}

func TestUpdateArithmetic(t *testing.T) {
	params := testParams()
	agent := NewQLearningAgent(params, NewRand(1))
	s, next := keyState("s"), keyState("n")

	// terminal: 0 + 0.5 * (1 - 0)
	agent.Update(s, 0, 1, next, true)
	assert.InDelta(t, 0.5, agent.Value(s, 0), 1e-12)
	assert.False(t, agent.Table().Exists(next.Key()))

	// unseen next state bootstraps from zero and stays unseen
	agent.Update(s, 1, 0, next, false)
	assert.InDelta(t, 0.0, agent.Value(s, 1), 1e-12)
	assert.False(t, agent.Table().Exists(next.Key()))

	// the max over the next row includes every stored action
	agent.Table().Set(next.Key(), 8, 2)
	agent.Update(s, 2, 0, next, false)
	assert.InDelta(t, 0.5*0.9*2, agent.Value(s, 2), 1e-12)

	// done ignores the next row
	agent.Update(s, 3, 0, next, true)
	assert.InDelta(t, 0.0, agent.Value(s, 3), 1e-12)
}

func TestUpdateWithNegativeNextRow(t *testing.T) {
	agent := NewQLearningAgent(testParams(), NewRand(1))
	next := keyState("n")
	for a := 0; a < 9; a++ {
		agent.Table().Set(next.Key(), core.Action(a), -1)
	}
	agent.Update(keyState("s"), 0, 0, next, false)
	assert.InDelta(t, 0.5*0.9*-1, agent.Value(keyState("s"), 0), 1e-12)
}

func TestEpsilonDecaysMonotonically(t *testing.T) {
	agent := NewQLearningAgent(testParams(), NewRand(1))

	prev := agent.Epsilon()
	for i := 0; i < 1000; i++ {
		agent.EndEpisode(0)
		eps := agent.Epsilon()
		require.LessOrEqual(t, eps, prev)
		require.GreaterOrEqual(t, eps, 0.05)
		prev = eps
	}
	assert.Equal(t, 0.05, agent.Epsilon())
	assert.Equal(t, 1000, agent.Stats().Episodes)
}

func TestEpsilonSingleDecay(t *testing.T) {
	agent := NewQLearningAgent(testParams(), NewRand(1))
	agent.EndEpisode(1)
	assert.InDelta(t, 0.99, agent.Epsilon(), 1e-12)

	// needs ceil(log(0.05)/log(0.99)) = 299 decays to reach the floor
	for i := 1; i < 298; i++ {
		agent.DecayEpsilon()
	}
	assert.Greater(t, agent.Epsilon(), 0.05)
	agent.DecayEpsilon()
	assert.Equal(t, 0.05, agent.Epsilon())
}

func TestGreedySelectionIsDeterministic(t *testing.T) {
	agent := NewQLearningAgent(testParams(), NewRand(7))
	s := keyState("s")
	agent.Table().Set(s.Key(), 6, 0.3)
	agent.Table().Set(s.Key(), 2, 0.7)

	for i := 0; i < 50; i++ {
		assert.Equal(t, core.Action(2), agent.SelectAction(s, allActions(9), false))
	}
	// only legal actions are considered
	assert.Equal(t, core.Action(6), agent.SelectAction(s, []core.Action{0, 6, 8}, false))
}

func TestGreedyTieGoesToFirstAction(t *testing.T) {
	agent := NewQLearningAgent(testParams(), NewRand(7))
	assert.Equal(t, core.Action(4), agent.SelectAction(keyState("s"), []core.Action{4, 0, 8}, false))
	assert.Equal(t, core.Action(0), agent.SelectAction(keyState("t"), allActions(9), false))
}

func TestExplorationStaysLegal(t *testing.T) {
	agent := NewQLearningAgent(testParams(), NewRand(3))
	legal := []core.Action{1, 5, 7}
	seen := make(map[core.Action]bool)
	for i := 0; i < 300; i++ {
		a := agent.SelectAction(keyState("s"), legal, true)
		assert.Contains(t, legal, a)
		seen[a] = true
	}
	// epsilon is 1, so every legal action shows up
	assert.Len(t, seen, 3)
}

func TestSelectActionPanicsWithoutActions(t *testing.T) {
	agent := NewQLearningAgent(testParams(), NewRand(3))
	assert.Panics(t, func() { agent.SelectAction(keyState("s"), nil, false) })
}

func TestReseedReproducesExploration(t *testing.T) {
	agent := NewQLearningAgent(testParams(), NewRand(11))
	pick := func() []core.Action {
		out := make([]core.Action, 20)
		for i := range out {
			out[i] = agent.SelectAction(keyState("s"), allActions(9), true)
		}
		return out
	}
	agent.Reseed(5)
	first := pick()
	agent.Reseed(5)
	assert.Equal(t, first, pick())
}

func TestStatsAndReport(t *testing.T) {
	agent := NewQLearningAgent(testParams(), NewRand(1))
	for _, r := range []float64{1, 1, 0, -1} {
		agent.EndEpisode(r)
	}
	stats := agent.Stats()
	assert.Equal(t, 4, stats.Episodes)
	assert.InDelta(t, 0.25, stats.AvgReward, 1e-12)
	assert.InDelta(t, 0.5, stats.WinRate, 1e-12)

	report := agent.Report()
	assert.Equal(t, 4, report["episodes"])
	assert.Contains(t, report, "epsilon")

	agent.ResetStats()
	assert.Equal(t, 0, agent.Stats().Episodes)
	// resetting statistics keeps epsilon
	assert.Less(t, agent.Epsilon(), 1.0)
}

func TestTrainingStatsCopyIsIndependent(t *testing.T) {
	agent := NewQLearningAgent(testParams(), NewRand(1))
	agent.EndEpisode(1)
	snapshot := agent.TrainingStats()
	agent.EndEpisode(-1)

	assert.Equal(t, 1, snapshot.Episodes)
	assert.Equal(t, []float64{1}, snapshot.Rewards)
}

func TestConstructorUsesSeed(t *testing.T) {
	c := NewQLearningAgentConstructor(testParams())
	a := c.NewAgent(9).(*QLearningAgent)
	b := c.NewAgent(9).(*QLearningAgent)
	for i := 0; i < 10; i++ {
		assert.Equal(t, a.Rand().Uint64(), b.Rand().Uint64())
	}
	assert.NotSame(t, a.Table(), b.Table())
}
