package core

import (
	"errors"

	"github.com/sirupsen/logrus"
)

// DefaultHorizon caps the number of plies of an episode when no horizon is configured.
const DefaultHorizon = 100

// Outcome is how an episode ended, seen from the learning agent.
type Outcome int

const (
	OutcomeWin Outcome = iota
	OutcomeDraw
	OutcomeLoss
	// OutcomeInvalid ends an episode in which a side played an illegal action.
	OutcomeInvalid
	// OutcomeTruncated ends an episode that reached the ply cap.
	OutcomeTruncated
)

func (o Outcome) String() string {
	switch o {
	case OutcomeWin:
		return "win"
	case OutcomeDraw:
		return "draw"
	case OutcomeLoss:
		return "loss"
	case OutcomeInvalid:
		return "invalid"
	case OutcomeTruncated:
		return "truncated"
	}
	return "unknown"
}

type EpisodeResult struct {
	Outcome Outcome
	// Reward is the terminal reward: +1 win, 0 draw, -1 loss or invalid agent move.
	Reward float64
	// InvalidBy is the player that played the illegal action, if any.
	InvalidBy   Player
	AgentPlayer Player
	Plies       int
	FinalState  State
	Trace       *Trace
}

// Voided reports whether the opponent broke the rules. Such episodes carry no
// learning signal.
func (r *EpisodeResult) Voided() bool {
	return r.Outcome == OutcomeInvalid && r.InvalidBy != r.AgentPlayer
}

// EpisodeRunner plays one episode.
type EpisodeRunner interface {
	RunEpisode(*EpisodeContext) *EpisodeResult
}

type RunnerConfig[S State] struct {
	Environment Environment[S]
	Agent       Agent
	Opponent    Policy
	// AgentPlayer is the side of the learning agent, Player1 when unset.
	AgentPlayer Player
	Horizon     int
	Logger      *logrus.Entry
}

// Runner drives episodes between a learning agent and an opponent policy and
// backpropagates the terminal reward over the agent's decisions.
type Runner[S State] struct {
	env         Environment[S]
	agent       Agent
	opponent    Policy
	agentPlayer Player
	horizon     int
	log         *logrus.Entry
}

var _ EpisodeRunner = &Runner[State]{}

func NewRunner[S State](cfg RunnerConfig[S]) *Runner[S] {
	r := &Runner[S]{
		env:         cfg.Environment,
		agent:       cfg.Agent,
		opponent:    cfg.Opponent,
		agentPlayer: cfg.AgentPlayer,
		horizon:     cfg.Horizon,
		log:         cfg.Logger,
	}
	if r.agentPlayer == NoPlayer {
		r.agentPlayer = Player1
	}
	if r.horizon <= 0 {
		r.horizon = DefaultHorizon
	}
	if r.log == nil {
		r.log = logrus.NewEntry(logrus.StandardLogger())
	}
	return r
}

func (r *Runner[S]) Agent() Agent {
	return r.agent
}

func (r *Runner[S]) AgentPlayer() Player {
	return r.agentPlayer
}

// RunEpisode plays a full episode. With eCtx.Learn set the agent explores, the
// trajectory is backpropagated and the agent's statistics are updated.
func (r *Runner[S]) RunEpisode(eCtx *EpisodeContext) *EpisodeResult {
	horizon := r.horizon
	if eCtx.Horizon > 0 {
		horizon = eCtx.Horizon
	}

	trace := NewTrace()
	result := &EpisodeResult{Trace: trace, AgentPlayer: r.agentPlayer}
	state := r.env.Reset()
	toMove := Player1

PlyLoop:
	for ply := 0; ; ply++ {
		if ply >= horizon {
			result.Outcome = OutcomeTruncated
			break
		}
		actions := r.env.LegalActions(state)
		if len(actions) == 0 {
			// no moves left without a winner
			result.Outcome = OutcomeDraw
			break
		}

		isAgent := toMove == r.agentPlayer
		var action Action
		if isAgent {
			action = r.agent.SelectAction(state, actions, eCtx.Learn)
		} else {
			action = r.opponent.PickAction(state, actions)
		}

		step := &Step{State: state, Action: action, Player: toMove, Agent: isAgent}
		next, err := r.env.Apply(state, action, toMove)
		if err != nil {
			step.NextState = state
			step.Misc = map[string]interface{}{"error": err.Error()}
			trace.AddStep(step)
			result.Outcome = OutcomeInvalid
			result.InvalidBy = toMove
			if !errors.Is(err, ErrInvalidAction) {
				r.log.WithError(err).Warn("environment rejected action")
			}
			break PlyLoop
		}
		step.NextState = next
		trace.AddStep(step)
		state = next

		switch w := r.env.Winner(state); w {
		case WinnerNone:
		case WinnerDraw:
			result.Outcome = OutcomeDraw
			break PlyLoop
		default:
			if w.Player() == r.agentPlayer {
				result.Outcome = OutcomeWin
			} else {
				result.Outcome = OutcomeLoss
			}
			break PlyLoop
		}
		toMove = toMove.Other()
	}

	result.Plies = trace.Len()
	result.FinalState = state
	result.Reward = r.reward(result)

	if eCtx.Learn {
		if !result.Voided() {
			r.backpropagate(trace, state, result.Reward)
		}
		r.agent.EndEpisode(result.Reward)
	}
	r.log.WithFields(logrus.Fields{
		"episode": eCtx.Episode,
		"outcome": result.Outcome.String(),
		"plies":   result.Plies,
	}).Trace("episode finished")
	return result
}

func (r *Runner[S]) reward(result *EpisodeResult) float64 {
	switch result.Outcome {
	case OutcomeWin:
		return 1
	case OutcomeLoss:
		return -1
	case OutcomeInvalid:
		if result.InvalidBy == r.agentPlayer {
			return -1
		}
	}
	return 0
}

// backpropagate updates every agent decision of the trace, last one first. The last
// decision receives the terminal reward; earlier ones receive zero reward and bootstrap
// from the state of the decision that followed them.
func (r *Runner[S]) backpropagate(trace *Trace, final State, reward float64) {
	decisions := trace.Decisions()
	for i := len(decisions) - 1; i >= 0; i-- {
		d := decisions[i]
		if i == len(decisions)-1 {
			r.agent.Update(d.State, d.Action, reward, final, true)
			continue
		}
		r.agent.Update(d.State, d.Action, 0, decisions[i+1].State, false)
	}
}
