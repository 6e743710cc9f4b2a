package policies

import (
	"math"
	"time"

	"github.com/sirupsen/logrus"
	erand "golang.org/x/exp/rand"

	"github.com/zeu5/selfplay-rl/core"
)

// Hyperparameters of a QLearningAgent. Values outside their documented ranges are
// accepted as given.
type Hyperparameters struct {
	StateSize      int     `json:"stateSize"`
	ActionSize     int     `json:"actionSize"`
	LearningRate   float64 `json:"learningRate"`
	DiscountFactor float64 `json:"discountFactor"`
	Epsilon        float64 `json:"epsilon"`
	EpsilonDecay   float64 `json:"epsilonDecay"`
	EpsilonMin     float64 `json:"epsilonMin"`
}

func DefaultHyperparameters(stateSize, actionSize int) Hyperparameters {
	return Hyperparameters{
		StateSize:      stateSize,
		ActionSize:     actionSize,
		LearningRate:   0.5,
		DiscountFactor: 0.9,
		Epsilon:        1.0,
		EpsilonDecay:   0.99,
		EpsilonMin:     0.05,
	}
}

// NewRand returns the generator used by an agent. A zero seed seeds from the clock.
func NewRand(seed uint64) *erand.Rand {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return erand.New(erand.NewSource(seed))
}

// QLearningAgent is a tabular Q-learning agent with an epsilon-greedy policy. It owns
// its table, statistics and random generator and is not safe for concurrent use.
type QLearningAgent struct {
	params  Hyperparameters
	epsilon float64
	qTable  *QTable
	stats   *TrainingStats
	rand    *erand.Rand
}

var _ core.Agent = &QLearningAgent{}
var _ core.Reporter = &QLearningAgent{}

func NewQLearningAgent(params Hyperparameters, rand *erand.Rand) *QLearningAgent {
	if rand == nil {
		rand = NewRand(0)
	}
	return &QLearningAgent{
		params:  params,
		epsilon: params.Epsilon,
		qTable:  NewQTable(params.ActionSize),
		stats:   NewTrainingStats(),
		rand:    rand,
	}
}

// QLearner returns the agent itself. Agents built on a QLearningAgent expose it
// through the same method.
func (q *QLearningAgent) QLearner() *QLearningAgent {
	return q
}

// AsQLearning unwraps the QLearningAgent behind agent, if there is one.
func AsQLearning(agent core.Agent) (*QLearningAgent, bool) {
	l, ok := agent.(interface{ QLearner() *QLearningAgent })
	if !ok {
		return nil, false
	}
	return l.QLearner(), true
}

func (q *QLearningAgent) Params() Hyperparameters {
	return q.params
}

func (q *QLearningAgent) Epsilon() float64 {
	return q.epsilon
}

// Rand is the agent's generator. Opponents that should share the agent's stream of
// randomness are built from it.
func (q *QLearningAgent) Rand() *erand.Rand {
	return q.rand
}

func (q *QLearningAgent) Reseed(seed uint64) {
	q.rand.Seed(seed)
}

// Table returns the live table.
func (q *QLearningAgent) Table() *QTable {
	return q.qTable
}

// TrainingStats returns a copy of the recorded statistics.
func (q *QLearningAgent) TrainingStats() *TrainingStats {
	return q.stats.Copy()
}

func (q *QLearningAgent) ResetStats() {
	q.stats.Reset()
}

// Value returns Q(state, action), initializing the state's row on first access.
func (q *QLearningAgent) Value(state core.State, action core.Action) float64 {
	return q.qTable.Get(state.Key(), action)
}

// SelectAction picks uniformly among actions with probability epsilon when explore is
// set, otherwise the action with the highest value, ties going to the first one in
// the given order. actions must not be empty.
func (q *QLearningAgent) SelectAction(state core.State, actions []core.Action, explore bool) core.Action {
	if len(actions) == 0 {
		panic("policies: SelectAction called without legal actions")
	}
	if explore && q.rand.Float64() < q.epsilon {
		return actions[q.rand.Intn(len(actions))]
	}
	best, _ := q.qTable.MaxAmong(state.Key(), actions)
	return best
}

// Update applies the Q-learning backup
//
//	Q(s,a) += lr * (reward + gamma * max_a' Q(next,a') - Q(s,a))
//
// with the max taken over every action stored for next, legal or not, and zero when
// done is set or next was never seen.
func (q *QLearningAgent) Update(state core.State, action core.Action, reward float64, next core.State, done bool) {
	stateKey := state.Key()
	current := q.qTable.Get(stateKey, action)
	maxNext := 0.0
	if !done {
		maxNext = q.qTable.Max(next.Key(), 0)
	}
	newVal := current + q.params.LearningRate*(reward+q.params.DiscountFactor*maxNext-current)
	q.qTable.Set(stateKey, action, newVal)
}

// DecayEpsilon multiplies epsilon by the decay factor, never going below EpsilonMin.
func (q *QLearningAgent) DecayEpsilon() {
	q.epsilon = math.Max(q.params.EpsilonMin, q.epsilon*q.params.EpsilonDecay)
}

// EndEpisode records the reward of a completed training episode and decays epsilon.
func (q *QLearningAgent) EndEpisode(reward float64) {
	q.stats.Record(reward)
	q.DecayEpsilon()
}

// Restore replaces the table, epsilon and statistics at once. The agent takes
// ownership of table and stats.
func (q *QLearningAgent) Restore(table *QTable, epsilon float64, stats *TrainingStats) {
	if stats == nil {
		stats = NewTrainingStats()
	}
	q.qTable = table
	q.epsilon = epsilon
	q.stats = stats
}

func (q *QLearningAgent) Stats() Stats {
	return Stats{
		Episodes:     q.stats.Episodes,
		AvgReward:    q.stats.AvgReward(),
		WinRate:      q.stats.WinRate(),
		Epsilon:      q.epsilon,
		QTableSize:   q.qTable.Size(),
		TotalQValues: q.qTable.TotalEntries(),
	}
}

func (q *QLearningAgent) Report() logrus.Fields {
	s := q.Stats()
	return logrus.Fields{
		"episodes":   s.Episodes,
		"avg_reward": s.AvgReward,
		"win_rate":   s.WinRate,
		"epsilon":    s.Epsilon,
		"q_states":   s.QTableSize,
	}
}

type QLearningAgentConstructor struct {
	Params Hyperparameters
}

var _ core.AgentConstructor = &QLearningAgentConstructor{}

func NewQLearningAgentConstructor(params Hyperparameters) *QLearningAgentConstructor {
	return &QLearningAgentConstructor{Params: params}
}

func (c *QLearningAgentConstructor) NewAgent(seed uint64) core.Agent {
	return NewQLearningAgent(c.Params, NewRand(seed))
}
