package policies

import (
	erand "golang.org/x/exp/rand"

	"github.com/zeu5/selfplay-rl/core"
)

// RandomPolicy picks uniformly among the legal actions.
type RandomPolicy struct {
	rand *erand.Rand
}

var _ core.Policy = &RandomPolicy{}

func NewRandomPolicy(rand *erand.Rand) *RandomPolicy {
	if rand == nil {
		rand = NewRand(0)
	}
	return &RandomPolicy{
		rand: rand,
	}
}

func (r *RandomPolicy) PickAction(_ core.State, actions []core.Action) core.Action {
	i := r.rand.Intn(len(actions))
	return actions[i]
}

// RandomPolicyConstructor draws from the learning agent's generator when the agent
// exposes one, so that one seed reproduces a whole training run.
type RandomPolicyConstructor struct{}

var _ core.PolicyConstructor = &RandomPolicyConstructor{}

func (r *RandomPolicyConstructor) NewPolicy(agent core.Agent) core.Policy {
	if q, ok := AsQLearning(agent); ok {
		return NewRandomPolicy(q.Rand())
	}
	return NewRandomPolicy(nil)
}
