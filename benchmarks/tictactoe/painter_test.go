package tictactoe

import (
	"bytes"
	"strings"
	"testing"

	"github.com/logrusorgru/aurora"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
)

func TestRenderBoardPlain(t *testing.T) {
	out := termenv.NewOutput(new(bytes.Buffer), termenv.WithProfile(termenv.Ascii))
	b := mustParse(t, "x.o/.../...")

	want := " X | 1 | O \n" +
		"---+---+---\n" +
		" 3 | 4 | 5 \n" +
		"---+---+---\n" +
		" 6 | 7 | 8 \n"
	assert.Equal(t, want, RenderBoard(out, b))
}

func TestRenderQValuesPlain(t *testing.T) {
	au := aurora.NewAurora(false)
	b := mustParse(t, "x../.../...")
	values := []float64{0, 0.5, -0.25, 0, 0, 0, 0, 0, 1}

	lines := strings.Split(strings.TrimRight(RenderQValues(au, b, values, 8), "\n"), "\n")
	assert.Len(t, lines, 3)
	assert.Equal(t, "      X |  0.500 | -0.250 ", lines[0])
	assert.Contains(t, lines[2], "  1.000 ")

	// a state with no stored row renders zeros
	empty := RenderQValues(au, b, nil, 1)
	assert.Equal(t, 8, strings.Count(empty, "  0.000 "))
}
