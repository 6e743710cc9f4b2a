package analysis

import (
	"bytes"
	"fmt"
	"os"
	"path"

	"github.com/zeu5/selfplay-rl/core"
)

// StatePrinter renders a state for trace dumps.
type StatePrinter func(core.State) string

func defaultStatePrinter(s core.State) string {
	if s == nil {
		return "<nil>"
	}
	return string(s.Key())
}

func printerOrDefault(p StatePrinter) StatePrinter {
	if p == nil {
		return defaultStatePrinter
	}
	return p
}

func stepToString(step *core.Step, printer StatePrinter) string {
	who := "opponent"
	if step.Agent {
		who = "agent"
	}
	out := fmt.Sprintf(
		"State: %s\nPlayer: %s (%s)\nAction: %d\nNext State: %s\n",
		printer(step.State), step.Player, who, step.Action, printer(step.NextState),
	)
	if errMsg, ok := step.Misc["error"]; ok {
		out += fmt.Sprintf("Error: %v\n", errMsg)
	}
	return out
}

func resultToString(result *core.EpisodeResult, printer StatePrinter) string {
	buf := new(bytes.Buffer)
	buf.WriteString(fmt.Sprintf("Outcome: %s\nReward: %v\nAgent: %s\nPlies: %d\n",
		result.Outcome, result.Reward, result.AgentPlayer, result.Plies))
	if result.InvalidBy != core.NoPlayer {
		buf.WriteString(fmt.Sprintf("Invalid by: %s\n", result.InvalidBy))
	}
	buf.WriteString("\n")
	if result.Trace != nil {
		for i := 0; i < result.Trace.Len(); i++ {
			buf.WriteString(fmt.Sprintf("Step %d\n%s\n", i, stepToString(result.Trace.Step(i), printer)))
		}
	}
	if result.FinalState != nil {
		buf.WriteString(fmt.Sprintf("Final State: %s\n", printer(result.FinalState)))
	}
	return buf.String()
}

func ensureDir(dir string) string {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		os.MkdirAll(dir, 0755)
	}
	return dir
}

func episodeFile(dir, exp, kind string, eCtx *core.EpisodeContext) string {
	fileName := fmt.Sprintf("%d_%s_%d.txt", eCtx.Run, kind, eCtx.Episode)
	if exp != "" {
		fileName = fmt.Sprintf("%d_%s_%s_%d.txt", eCtx.Run, exp, kind, eCtx.Episode)
	}
	return path.Join(dir, fileName)
}
