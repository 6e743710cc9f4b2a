package policies

import "github.com/zeu5/selfplay-rl/core"

// AgentPolicy lets a trained agent play the opposing side without learning.
type AgentPolicy struct {
	agent   *QLearningAgent
	explore bool
}

var _ core.Policy = &AgentPolicy{}

func NewAgentPolicy(agent *QLearningAgent, explore bool) *AgentPolicy {
	return &AgentPolicy{agent: agent, explore: explore}
}

func (a *AgentPolicy) PickAction(state core.State, actions []core.Action) core.Action {
	return a.agent.SelectAction(state, actions, a.explore)
}

// AgentPolicyConstructor builds opponents from a frozen agent. Every call returns a
// policy over its own deep copy of the table.
type AgentPolicyConstructor struct {
	Frozen  *QLearningAgent
	Explore bool
}

var _ core.PolicyConstructor = &AgentPolicyConstructor{}

func (c *AgentPolicyConstructor) NewPolicy(learner core.Agent) core.Policy {
	rand := NewRand(0)
	if q, ok := AsQLearning(learner); ok {
		rand = q.Rand()
	}
	clone := NewQLearningAgent(c.Frozen.Params(), rand)
	clone.Restore(c.Frozen.Table().Copy(), c.Frozen.Epsilon(), c.Frozen.TrainingStats())
	return NewAgentPolicy(clone, c.Explore)
}
