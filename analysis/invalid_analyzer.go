package analysis

import (
	"os"
	"path"

	"github.com/zeu5/selfplay-rl/core"
)

// InvalidAnalyzer dumps the trace of every episode that ended on an illegal action or
// hit the ply cap.
type InvalidAnalyzer struct {
	savePath string
	exp      string
	printer  StatePrinter
	count    int
}

var _ core.Analyzer = &InvalidAnalyzer{}

func NewInvalidAnalyzer(savePath string, printer StatePrinter) *InvalidAnalyzer {
	return &InvalidAnalyzer{
		savePath: ensureDir(path.Join(savePath, "invalid")),
		printer:  printerOrDefault(printer),
	}
}

func (a *InvalidAnalyzer) Analyze(eCtx *core.EpisodeContext, result *core.EpisodeResult) {
	var kind string
	switch result.Outcome {
	case core.OutcomeInvalid:
		kind = "invalid"
	case core.OutcomeTruncated:
		kind = "truncated"
	default:
		return
	}
	a.count++
	os.WriteFile(episodeFile(a.savePath, a.exp, kind, eCtx), []byte(resultToString(result, a.printer)), 0644)
}

// DataSet is the number of dumped episodes.
func (a *InvalidAnalyzer) DataSet() core.DataSet {
	return a.count
}

func (a *InvalidAnalyzer) Reset() {
	a.count = 0
}

type InvalidAnalyzerConstructor struct {
	SavePath string
	Printer  StatePrinter
}

var _ core.AnalyzerConstructor = &InvalidAnalyzerConstructor{}

func NewInvalidAnalyzerConstructor(savePath string, printer StatePrinter) *InvalidAnalyzerConstructor {
	return &InvalidAnalyzerConstructor{
		SavePath: savePath,
		Printer:  printer,
	}
}

func (c *InvalidAnalyzerConstructor) NewAnalyzer(exp string, _ int) core.Analyzer {
	a := NewInvalidAnalyzer(c.SavePath, c.Printer)
	a.exp = exp
	return a
}
