package core

// Policy picks moves for a side that does not learn, e.g. the opponent.
type Policy interface {
	PickAction(State, []Action) Action
}

// Agent is the learning side of an episode.
type Agent interface {
	// SelectAction picks one of actions, exploring when explore is set.
	SelectAction(state State, actions []Action, explore bool) Action
	// Update applies one Q-learning backup for a transition.
	Update(state State, action Action, reward float64, next State, done bool)
	// EndEpisode records the terminal reward of a training episode and decays epsilon.
	EndEpisode(reward float64)
}

type PolicyConstructor interface {
	NewPolicy(Agent) Policy
}

type AgentConstructor interface {
	NewAgent(seed uint64) Agent
}
