package tictactoe

import (
	"fmt"
	"strings"

	"github.com/zeu5/selfplay-rl/core"
)

const (
	Cells = 9

	Empty  = 0
	Cross  = 1
	Circle = 2
)

var encoder = core.NewEncoder(Cells)

// rows, columns and diagonals as bitboards
var winningPatterns = [8]uint16{
	0b111000000, 0b000111000, 0b000000111,
	0b100100100, 0b010010010, 0b001001001,
	0b100010001, 0b001010100,
}

// Board is an immutable tic-tac-toe position. Player1 plays Cross and moves first.
type Board struct {
	cells [Cells]int8
	key   core.StateKey
}

var _ core.State = Board{}

func newBoard(cells [Cells]int8) Board {
	ints := make([]int, Cells)
	for i, c := range cells {
		ints[i] = int(c)
	}
	return Board{cells: cells, key: encoder.MustEncode(ints)}
}

func EmptyBoard() Board {
	return newBoard([Cells]int8{})
}

// ParseBoard reads nine cells written as x, o and . (or 1, 2, 0), row by row.
// Whitespace and '|' separators are ignored.
func ParseBoard(s string) (Board, error) {
	var cells [Cells]int8
	n := 0
	for _, r := range strings.ToLower(s) {
		var c int8
		switch r {
		case ' ', '\t', '\n', '|', '/':
			continue
		case '.', '-', '_', '0':
			c = Empty
		case 'x', '1':
			c = Cross
		case 'o', '2':
			c = Circle
		default:
			return Board{}, fmt.Errorf("unexpected %q in board", r)
		}
		if n == Cells {
			return Board{}, fmt.Errorf("%w: more than %d cells", core.ErrWrongLength, Cells)
		}
		cells[n] = c
		n++
	}
	if n != Cells {
		return Board{}, fmt.Errorf("%w: got %d cells, want %d", core.ErrWrongLength, n, Cells)
	}
	return newBoard(cells), nil
}

// BoardFromKey rebuilds a board from its state key.
func BoardFromKey(key core.StateKey) (Board, error) {
	ints, err := encoder.Decode(key)
	if err != nil {
		return Board{}, err
	}
	var cells [Cells]int8
	for i, c := range ints {
		if c > Circle {
			return Board{}, fmt.Errorf("%w: cell %d = %d", core.ErrInvalidCell, i, c)
		}
		cells[i] = int8(c)
	}
	return newBoard(cells), nil
}

func (b Board) Key() core.StateKey {
	return b.key
}

func (b Board) Cell(i int) int8 {
	return b.cells[i]
}

func (b Board) bitboard(marker int8) uint16 {
	var bb uint16
	for i, c := range b.cells {
		if c == marker {
			bb |= 1 << (Cells - 1 - i)
		}
	}
	return bb
}

// ToMove derives the side to move from the marker counts.
func (b Board) ToMove() core.Player {
	crosses, circles := 0, 0
	for _, c := range b.cells {
		switch c {
		case Cross:
			crosses++
		case Circle:
			circles++
		}
	}
	if crosses > circles {
		return core.Player2
	}
	return core.Player1
}

func (b Board) String() string {
	var sb strings.Builder
	for i, c := range b.cells {
		sb.WriteByte(".xo"[c])
		if i%3 == 2 && i != Cells-1 {
			sb.WriteByte('/')
		}
	}
	return sb.String()
}

func markerOf(p core.Player) int8 {
	if p == core.Player2 {
		return Circle
	}
	return Cross
}

// Env is the tic-tac-toe rule set.
type Env struct{}

var _ core.Environment[Board] = &Env{}

func NewEnv() *Env {
	return &Env{}
}

func (e *Env) Reset() Board {
	return EmptyBoard()
}

// LegalActions lists the empty cells in index order, none once the game is over.
func (e *Env) LegalActions(b Board) []core.Action {
	if e.Winner(b) != core.WinnerNone {
		return nil
	}
	actions := make([]core.Action, 0, Cells)
	for i, c := range b.cells {
		if c == Empty {
			actions = append(actions, core.Action(i))
		}
	}
	return actions
}

func (e *Env) Apply(b Board, action core.Action, player core.Player) (Board, error) {
	if action < 0 || int(action) >= Cells {
		return b, fmt.Errorf("%w: cell %d out of range", core.ErrInvalidAction, action)
	}
	if b.cells[action] != Empty {
		return b, fmt.Errorf("%w: cell %d is taken", core.ErrInvalidAction, action)
	}
	if player != b.ToMove() {
		return b, fmt.Errorf("%w: %s is not to move", core.ErrInvalidAction, player)
	}
	if e.Winner(b) != core.WinnerNone {
		return b, fmt.Errorf("%w: game is over", core.ErrInvalidAction)
	}
	cells := b.cells
	cells[action] = markerOf(player)
	return newBoard(cells), nil
}

func (e *Env) Winner(b Board) core.Winner {
	crossbb := b.bitboard(Cross)
	circlebb := b.bitboard(Circle)
	for _, pattern := range winningPatterns {
		if crossbb&pattern == pattern {
			return core.WinnerPlayer1
		}
		if circlebb&pattern == pattern {
			return core.WinnerPlayer2
		}
	}
	if crossbb|circlebb == 0b111111111 {
		return core.WinnerDraw
	}
	return core.WinnerNone
}

type EnvConstructor struct{}

var _ core.EnvironmentConstructor[Board] = &EnvConstructor{}

func (EnvConstructor) NewEnvironment(_ int) core.Environment[Board] {
	return NewEnv()
}
