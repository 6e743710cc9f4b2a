package policies

import (
	"math"

	erand "golang.org/x/exp/rand"

	"github.com/zeu5/selfplay-rl/core"
)

// UCBAgent learns with the same backup as QLearningAgent but explores by adding a
// visit count bonus to the values instead of drawing random moves.
//
//	score(s,a) = Q(s,a) + c * sqrt(ln(N(s)+1) / (N(s,a)+1))
//
// Visit counts live only in memory; a saved model keeps the values alone.
type UCBAgent struct {
	*QLearningAgent

	constant float64
	visits   *QTable
}

var _ core.Agent = &UCBAgent{}
var _ core.Reporter = &UCBAgent{}

func NewUCBAgent(params Hyperparameters, constant float64, rand *erand.Rand) *UCBAgent {
	return &UCBAgent{
		QLearningAgent: NewQLearningAgent(params, rand),
		constant:       constant,
		visits:         NewQTable(params.ActionSize),
	}
}

// Visits returns how often action was updated in state.
func (u *UCBAgent) Visits(state core.State, action core.Action) int {
	row, ok := u.visits.Row(state.Key())
	if !ok {
		return 0
	}
	return int(row[action])
}

// SelectAction picks the action with the highest bonus adjusted value when explore is
// set and the greedy action otherwise. Ties go to the first action.
func (u *UCBAgent) SelectAction(state core.State, actions []core.Action, explore bool) core.Action {
	if !explore {
		return u.QLearningAgent.SelectAction(state, actions, false)
	}
	if len(actions) == 0 {
		panic("policies: SelectAction called without legal actions")
	}

	key := state.Key()
	counts, _ := u.visits.Row(key)
	total := 0.0
	for _, a := range actions {
		if counts != nil {
			total += counts[a]
		}
	}

	best := actions[0]
	bestScore := math.Inf(-1)
	for _, a := range actions {
		n := 0.0
		if counts != nil {
			n = counts[a]
		}
		score := u.Table().Get(key, a) + u.constant*math.Sqrt(math.Log(total+1)/(n+1))
		if score > bestScore {
			best = a
			bestScore = score
		}
	}
	return best
}

func (u *UCBAgent) Update(state core.State, action core.Action, reward float64, next core.State, done bool) {
	key := state.Key()
	u.visits.Set(key, action, u.visits.Get(key, action)+1)
	u.QLearningAgent.Update(state, action, reward, next, done)
}

type UCBAgentConstructor struct {
	Params   Hyperparameters
	Constant float64
}

var _ core.AgentConstructor = &UCBAgentConstructor{}

func NewUCBAgentConstructor(params Hyperparameters, constant float64) *UCBAgentConstructor {
	return &UCBAgentConstructor{Params: params, Constant: constant}
}

func (c *UCBAgentConstructor) NewAgent(seed uint64) core.Agent {
	return NewUCBAgent(c.Params, c.Constant, NewRand(seed))
}
