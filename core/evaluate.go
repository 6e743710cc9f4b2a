package core

import "fmt"

// EvalResult counts the outcomes of greedy evaluation games.
type EvalResult struct {
	Games     int
	Wins      int
	Draws     int
	Losses    int
	Invalid   int
	Truncated int
}

func (e *EvalResult) add(o Outcome) {
	e.Games++
	switch o {
	case OutcomeWin:
		e.Wins++
	case OutcomeDraw:
		e.Draws++
	case OutcomeLoss:
		e.Losses++
	case OutcomeInvalid:
		e.Invalid++
	case OutcomeTruncated:
		e.Truncated++
	}
}

func (e *EvalResult) rate(n int) float64 {
	if e.Games == 0 {
		return 0
	}
	return float64(n) / float64(e.Games)
}

func (e *EvalResult) WinRate() float64  { return e.rate(e.Wins) }
func (e *EvalResult) DrawRate() float64 { return e.rate(e.Draws) }
func (e *EvalResult) LossRate() float64 { return e.rate(e.Losses) }

func (e *EvalResult) String() string {
	return fmt.Sprintf(
		"games=%d wins=%d draws=%d losses=%d invalid=%d truncated=%d win_rate=%.3f loss_rate=%.3f",
		e.Games, e.Wins, e.Draws, e.Losses, e.Invalid, e.Truncated, e.WinRate(), e.LossRate(),
	)
}

// Evaluate plays games greedy episodes. Nothing is learned and the agent's
// statistics are left untouched.
func Evaluate(runner EpisodeRunner, games, horizon int) *EvalResult {
	result := &EvalResult{}
	for i := 0; i < games; i++ {
		eCtx := NewEpisodeContext(0, i, horizon, false)
		result.add(runner.RunEpisode(eCtx).Outcome)
	}
	return result
}
