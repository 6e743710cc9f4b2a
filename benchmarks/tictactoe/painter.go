package tictactoe

import (
	"fmt"
	"strings"

	"github.com/logrusorgru/aurora"
	"github.com/muesli/termenv"

	"github.com/zeu5/selfplay-rl/core"
)

// RenderBoard draws the board as three rows, crosses and circles coloured when the
// output supports it.
func RenderBoard(out *termenv.Output, b Board) string {
	var sb strings.Builder
	for row := 0; row < 3; row++ {
		for col := 0; col < 3; col++ {
			i := row*3 + col
			var cell termenv.Style
			switch b.cells[i] {
			case Cross:
				cell = out.String(" X ").Foreground(out.Color("9")).Bold()
			case Circle:
				cell = out.String(" O ").Foreground(out.Color("12")).Bold()
			default:
				cell = out.String(fmt.Sprintf(" %d ", i)).Faint()
			}
			sb.WriteString(cell.String())
			if col < 2 {
				sb.WriteString("|")
			}
		}
		sb.WriteString("\n")
		if row < 2 {
			sb.WriteString("---+---+---\n")
		}
	}
	return sb.String()
}

// RenderQValues draws the value of every empty cell, the greedy choice in green and
// negative values in red.
func RenderQValues(au aurora.Aurora, b Board, values []float64, best core.Action) string {
	var sb strings.Builder
	for row := 0; row < 3; row++ {
		for col := 0; col < 3; col++ {
			i := row*3 + col
			switch {
			case b.cells[i] == Cross:
				sb.WriteString(fmt.Sprintf("%7s ", "X"))
			case b.cells[i] == Circle:
				sb.WriteString(fmt.Sprintf("%7s ", "O"))
			default:
				v := 0.0
				if i < len(values) {
					v = values[i]
				}
				s := fmt.Sprintf("%7.3f ", v)
				switch {
				case core.Action(i) == best:
					sb.WriteString(au.Green(s).String())
				case v < 0:
					sb.WriteString(au.Red(s).String())
				default:
					sb.WriteString(au.Blue(s).String())
				}
			}
			if col < 2 {
				sb.WriteString(au.White("|").String())
			}
		}
		sb.WriteString("\n")
	}
	return sb.String()
}
