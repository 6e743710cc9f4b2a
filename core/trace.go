package core

// Step is one ply of an episode.
type Step struct {
	State     State
	Action    Action
	Player    Player
	NextState State
	// Agent is set when the learning agent chose the action.
	Agent bool

	Misc map[string]interface{}
}

type Trace struct {
	steps []*Step
}

func NewTrace() *Trace {
	return &Trace{
		steps: make([]*Step, 0),
	}
}

func (t *Trace) AddStep(s *Step) {
	t.steps = append(t.steps, s)
}

func (t *Trace) Step(i int) *Step {
	return t.steps[i]
}

func (t *Trace) Len() int {
	return len(t.steps)
}

func (t *Trace) Last() *Step {
	if len(t.steps) == 0 {
		return nil
	}
	return t.steps[len(t.steps)-1]
}

// Decisions returns the steps taken by the learning agent, in play order.
func (t *Trace) Decisions() []*Step {
	out := make([]*Step, 0, len(t.steps)/2+1)
	for _, s := range t.steps {
		if s.Agent {
			out = append(out, s)
		}
	}
	return out
}
