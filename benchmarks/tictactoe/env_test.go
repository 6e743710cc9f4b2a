package tictactoe

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeu5/selfplay-rl/core"
)

func mustParse(t *testing.T, s string) Board {
	t.Helper()
	b, err := ParseBoard(s)
	require.NoError(t, err)
	return b
}

func TestResetIsEmpty(t *testing.T) {
	env := NewEnv()
	b := env.Reset()
	assert.Equal(t, core.StateKey("000000000"), b.Key())
	assert.Equal(t, core.Player1, b.ToMove())
	assert.Equal(t, []core.Action{0, 1, 2, 3, 4, 5, 6, 7, 8}, env.LegalActions(b))
	assert.Equal(t, core.WinnerNone, env.Winner(b))
}

func TestApplyAlternatesMarkers(t *testing.T) {
	env := NewEnv()
	b := env.Reset()

	b1, err := env.Apply(b, 4, core.Player1)
	require.NoError(t, err)
	assert.Equal(t, core.StateKey("000010000"), b1.Key())
	assert.Equal(t, core.Player2, b1.ToMove())
	// the original board is unchanged
	assert.Equal(t, core.StateKey("000000000"), b.Key())

	b2, err := env.Apply(b1, 0, core.Player2)
	require.NoError(t, err)
	assert.Equal(t, core.StateKey("200010000"), b2.Key())
	assert.Equal(t, []core.Action{1, 2, 3, 5, 6, 7, 8}, env.LegalActions(b2))
}

func TestApplyRejectsIllegalMoves(t *testing.T) {
	env := NewEnv()
	b := mustParse(t, "x../.o./...")

	tests := []struct {
		name   string
		board  Board
		action core.Action
		player core.Player
	}{
		{"occupied", b, 0, core.Player1},
		{"negative", b, -1, core.Player1},
		{"out of range", b, 9, core.Player1},
		{"wrong player", b, 2, core.Player2},
		{"game over", mustParse(t, "xxx/oo./..."), 5, core.Player2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next, err := env.Apply(tt.board, tt.action, tt.player)
			assert.ErrorIs(t, err, core.ErrInvalidAction)
			assert.Equal(t, tt.board.Key(), next.Key())
		})
	}
}

func TestWinner(t *testing.T) {
	env := NewEnv()
	tests := []struct {
		board string
		want  core.Winner
	}{
		{"xxx/oo./...", core.WinnerPlayer1},
		{"oo./xxx/x..", core.WinnerPlayer1},
		{"x../x.o/xo.", core.WinnerPlayer1},
		{"x.o/.xo/..x", core.WinnerPlayer1},
		{"xxo/xo./o..", core.WinnerPlayer2},
		{"x.o/x.o/.xo", core.WinnerPlayer2},
		{"xox/xoo/oxx", core.WinnerDraw},
		{"xo./.../...", core.WinnerNone},
	}
	for _, tt := range tests {
		t.Run(tt.board, func(t *testing.T) {
			assert.Equal(t, tt.want, env.Winner(mustParse(t, tt.board)))
		})
	}
}

func TestNoLegalActionsOnceOver(t *testing.T) {
	env := NewEnv()
	assert.Empty(t, env.LegalActions(mustParse(t, "xxx/oo./...")))
	assert.Empty(t, env.LegalActions(mustParse(t, "xox/xoo/oxx")))
}

func TestParseBoard(t *testing.T) {
	b := mustParse(t, "X.O / .x. / ..o")
	assert.Equal(t, core.StateKey("102010002"), b.Key())
	assert.Equal(t, "x.o/.x./..o", b.String())

	same := mustParse(t, "102010002")
	assert.Equal(t, b, same)

	_, err := ParseBoard("x.o/...")
	assert.ErrorIs(t, err, core.ErrWrongLength)
	_, err = ParseBoard("x.o/.../....")
	assert.ErrorIs(t, err, core.ErrWrongLength)
	_, err = ParseBoard("x.o/.?./...")
	assert.Error(t, err)
}

func TestBoardFromKey(t *testing.T) {
	b, err := BoardFromKey("120010002")
	require.NoError(t, err)
	assert.Equal(t, "xo./.x./..o", b.String())
	assert.Equal(t, int8(Circle), b.Cell(1))

	_, err = BoardFromKey("123000000")
	assert.ErrorIs(t, err, core.ErrInvalidCell)
	_, err = BoardFromKey("12")
	assert.ErrorIs(t, err, core.ErrWrongLength)
}
