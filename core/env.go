package core

import "errors"

// ErrInvalidAction is returned (wrapped) by Environment.Apply when the action is not
// legal in the given state.
var ErrInvalidAction = errors.New("invalid action")

// Action identifies one of the game-defined moves, 0..ActionSize-1.
type Action int

// Player identifies the side to move.
type Player int

const (
	NoPlayer Player = iota
	Player1
	Player2
)

// Other returns the opponent of p.
func (p Player) Other() Player {
	switch p {
	case Player1:
		return Player2
	case Player2:
		return Player1
	}
	return NoPlayer
}

func (p Player) String() string {
	switch p {
	case Player1:
		return "player1"
	case Player2:
		return "player2"
	}
	return "none"
}

// Winner is the result of evaluating a position.
type Winner int

const (
	WinnerNone Winner = iota
	WinnerDraw
	WinnerPlayer1
	WinnerPlayer2
)

// Player returns the player that won, NoPlayer for ongoing games and draws.
func (w Winner) Player() Player {
	switch w {
	case WinnerPlayer1:
		return Player1
	case WinnerPlayer2:
		return Player2
	}
	return NoPlayer
}

func (w Winner) String() string {
	switch w {
	case WinnerDraw:
		return "draw"
	case WinnerPlayer1, WinnerPlayer2:
		return w.Player().String() + " wins"
	}
	return "none"
}

// State is a canonical game position. Implementations are immutable values.
type State interface {
	Key() StateKey
}

// Environment supplies the rules of a two-player game over states of type S.
type Environment[S State] interface {
	// Reset returns the initial position.
	Reset() S
	// LegalActions returns a non-empty ordered list for non-terminal states.
	LegalActions(S) []Action
	// Apply plays action for player and returns the resulting state. Illegal actions
	// return an error wrapping ErrInvalidAction.
	Apply(S, Action, Player) (S, error)
	Winner(S) Winner
}

type EpisodeContext struct {
	Run     int
	Episode int
	Horizon int
	// Learn enables exploration, backpropagation and statistics for the episode.
	Learn bool
}

func NewEpisodeContext(run, episode, horizon int, learn bool) *EpisodeContext {
	return &EpisodeContext{
		Run:     run,
		Episode: episode,
		Horizon: horizon,
		Learn:   learn,
	}
}

// EnvironmentConstructor builds a fresh environment for a worker.
type EnvironmentConstructor[S State] interface {
	// NewEnvironment creates a new environment with the given instance number.
	NewEnvironment(int) Environment[S]
}
