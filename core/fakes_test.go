package core

import (
	"fmt"
	"strings"
)

// lineState is the sequence of actions played so far.
type lineState struct {
	moves []Action
}

func (s lineState) Key() StateKey {
	var sb strings.Builder
	sb.WriteString("s")
	for _, m := range s.moves {
		sb.WriteString(fmt.Sprint(int(m)))
	}
	return StateKey(sb.String())
}

func keyOf(moves ...Action) StateKey {
	return lineState{moves: moves}.Key()
}

// lineEnv offers actions 0 and 1 as legal, rejects 2 and declares winner once winAt
// actions were played. With noMovesAt set, no action is legal from that ply on.
type lineEnv struct {
	winAt     int
	winner    Winner
	noMovesAt int
}

var _ Environment[lineState] = &lineEnv{}

func (e *lineEnv) Reset() lineState {
	return lineState{}
}

func (e *lineEnv) LegalActions(s lineState) []Action {
	if e.noMovesAt > 0 && len(s.moves) >= e.noMovesAt {
		return nil
	}
	return []Action{0, 1}
}

func (e *lineEnv) Apply(s lineState, a Action, _ Player) (lineState, error) {
	if a != 0 && a != 1 {
		return s, fmt.Errorf("%w: %d", ErrInvalidAction, a)
	}
	moves := make([]Action, len(s.moves), len(s.moves)+1)
	copy(moves, s.moves)
	return lineState{moves: append(moves, a)}, nil
}

func (e *lineEnv) Winner(s lineState) Winner {
	if e.winAt > 0 && len(s.moves) >= e.winAt {
		return e.winner
	}
	return WinnerNone
}

type update struct {
	state  StateKey
	action Action
	reward float64
	next   StateKey
	done   bool
}

// scriptedAgent plays its actions in a loop and records what it is told.
type scriptedAgent struct {
	actions  []Action
	i        int
	updates  []update
	ends     []float64
	explored []bool
}

var _ Agent = &scriptedAgent{}

func (a *scriptedAgent) SelectAction(_ State, _ []Action, explore bool) Action {
	a.explored = append(a.explored, explore)
	act := a.actions[a.i%len(a.actions)]
	a.i++
	return act
}

func (a *scriptedAgent) Update(state State, action Action, reward float64, next State, done bool) {
	a.updates = append(a.updates, update{state.Key(), action, reward, next.Key(), done})
}

func (a *scriptedAgent) EndEpisode(reward float64) {
	a.ends = append(a.ends, reward)
}

type scriptedPolicy struct {
	actions []Action
	i       int
}

func (p *scriptedPolicy) PickAction(_ State, _ []Action) Action {
	act := p.actions[p.i%len(p.actions)]
	p.i++
	return act
}

func newLineRunner(env *lineEnv, agent *scriptedAgent, opponent Policy, player Player, horizon int) *Runner[lineState] {
	return NewRunner(RunnerConfig[lineState]{
		Environment: env,
		Agent:       agent,
		Opponent:    opponent,
		AgentPlayer: player,
		Horizon:     horizon,
	})
}
