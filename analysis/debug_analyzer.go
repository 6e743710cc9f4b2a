package analysis

import (
	"os"
	"path"

	"github.com/zeu5/selfplay-rl/core"
)

type PrintDebugAnalyzer struct {
	// savePath is the path to save the trace
	savePath string
	exp      string
	printer  StatePrinter
	// will save the trace to the file only after the episode number exceeds this threshold
	thresholdEpisode int
}

var _ core.Analyzer = &PrintDebugAnalyzer{}

func NewPrintDebugAnalyzer(savePath string, threshold int, printer StatePrinter) *PrintDebugAnalyzer {
	return &PrintDebugAnalyzer{
		savePath:         ensureDir(path.Join(savePath, "traces")),
		thresholdEpisode: threshold,
		printer:          printerOrDefault(printer),
	}
}

func (a *PrintDebugAnalyzer) Analyze(eCtx *core.EpisodeContext, result *core.EpisodeResult) {
	if eCtx.Episode < a.thresholdEpisode {
		return
	}
	os.WriteFile(episodeFile(a.savePath, a.exp, "trace", eCtx), []byte(resultToString(result, a.printer)), 0644)
}

func (a *PrintDebugAnalyzer) DataSet() core.DataSet {
	return nil
}

func (a *PrintDebugAnalyzer) Reset() {
	// do nothing
}

type PrintDebugAnalyzerConstructor struct {
	SavePath         string
	ThresholdEpisode int
	Printer          StatePrinter
}

var _ core.AnalyzerConstructor = &PrintDebugAnalyzerConstructor{}

func NewPrintDebugAnalyzerConstructor(savePath string, thresholdEpisode int, printer StatePrinter) *PrintDebugAnalyzerConstructor {
	return &PrintDebugAnalyzerConstructor{
		SavePath:         savePath,
		ThresholdEpisode: thresholdEpisode,
		Printer:          printer,
	}
}

func (c *PrintDebugAnalyzerConstructor) NewAnalyzer(exp string, _ int) core.Analyzer {
	a := NewPrintDebugAnalyzer(c.SavePath, c.ThresholdEpisode, c.Printer)
	a.exp = exp
	return a
}
