package analysis

import (
	"fmt"
	"os"
	"path"
	"strconv"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
	"gonum.org/v1/gonum/stat"

	"github.com/zeu5/selfplay-rl/core"
	"github.com/zeu5/selfplay-rl/util"
)

type outcomeDataset struct {
	Episodes  []int     `json:"episodes"`
	WinRate   []float64 `json:"winRate"`
	DrawRate  []float64 `json:"drawRate"`
	LossRate  []float64 `json:"lossRate"`
	AvgReward []float64 `json:"avgReward"`
}

func newOutcomeDataset() *outcomeDataset {
	return &outcomeDataset{
		Episodes:  make([]int, 0),
		WinRate:   make([]float64, 0),
		DrawRate:  make([]float64, 0),
		LossRate:  make([]float64, 0),
		AvgReward: make([]float64, 0),
	}
}

func (o *outcomeDataset) Copy() *outcomeDataset {
	return &outcomeDataset{
		Episodes:  util.CopyIntSlice(o.Episodes),
		WinRate:   util.CopyFloatSlice(o.WinRate),
		DrawRate:  util.CopyFloatSlice(o.DrawRate),
		LossRate:  util.CopyFloatSlice(o.LossRate),
		AvgReward: util.CopyFloatSlice(o.AvgReward),
	}
}

// OutcomeAnalyzer samples win, draw and loss rates over windows of consecutive
// training episodes.
type OutcomeAnalyzer struct {
	window int

	wins    []float64
	draws   []float64
	losses  []float64
	rewards []float64

	dataset *outcomeDataset
}

var _ core.Analyzer = &OutcomeAnalyzer{}

func NewOutcomeAnalyzer(window int) *OutcomeAnalyzer {
	if window <= 0 {
		window = 100
	}
	a := &OutcomeAnalyzer{window: window}
	a.Reset()
	return a
}

func indicator(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

func (a *OutcomeAnalyzer) Analyze(eCtx *core.EpisodeContext, result *core.EpisodeResult) {
	a.wins = append(a.wins, indicator(result.Outcome == core.OutcomeWin))
	a.draws = append(a.draws, indicator(result.Outcome == core.OutcomeDraw))
	a.losses = append(a.losses, indicator(result.Outcome == core.OutcomeLoss))
	a.rewards = append(a.rewards, result.Reward)

	if len(a.wins) < a.window {
		return
	}
	a.dataset.Episodes = append(a.dataset.Episodes, eCtx.Episode+1)
	a.dataset.WinRate = append(a.dataset.WinRate, stat.Mean(a.wins, nil))
	a.dataset.DrawRate = append(a.dataset.DrawRate, stat.Mean(a.draws, nil))
	a.dataset.LossRate = append(a.dataset.LossRate, stat.Mean(a.losses, nil))
	a.dataset.AvgReward = append(a.dataset.AvgReward, stat.Mean(a.rewards, nil))

	a.wins = a.wins[:0]
	a.draws = a.draws[:0]
	a.losses = a.losses[:0]
	a.rewards = a.rewards[:0]
}

func (a *OutcomeAnalyzer) DataSet() core.DataSet {
	return a.dataset.Copy()
}

func (a *OutcomeAnalyzer) Reset() {
	a.wins = make([]float64, 0, a.window)
	a.draws = make([]float64, 0, a.window)
	a.losses = make([]float64, 0, a.window)
	a.rewards = make([]float64, 0, a.window)
	a.dataset = newOutcomeDataset()
}

type OutcomeAnalyzerConstructor struct {
	Window int
}

var _ core.AnalyzerConstructor = &OutcomeAnalyzerConstructor{}

func NewOutcomeAnalyzerConstructor(window int) *OutcomeAnalyzerConstructor {
	return &OutcomeAnalyzerConstructor{Window: window}
}

func (c *OutcomeAnalyzerConstructor) NewAnalyzer(_ string, _ int) core.Analyzer {
	return NewOutcomeAnalyzer(c.Window)
}

// OutcomeComparator saves the sampled rates of every experiment as JSON, along with
// an HTML page charting them.
type OutcomeComparator struct {
	savePath string
}

var _ core.Comparator = &OutcomeComparator{}

func NewOutcomeComparator(savePath string) *OutcomeComparator {
	return &OutcomeComparator{savePath: savePath}
}

func (c *OutcomeComparator) Compare(experimentNames []string, datasets []core.DataSet) {
	out := make(map[string]*outcomeDataset)
	for i, name := range experimentNames {
		ds, ok := datasets[i].(*outcomeDataset)
		if !ok {
			continue
		}
		out[name] = ds
	}
	util.SaveJson(path.Join(c.savePath, "outcomes.json"), out)

	if len(out) == 0 {
		return
	}
	page := components.NewPage()
	page.AddCharts(
		outcomeChart("Win rate", out, func(d *outcomeDataset) []float64 { return d.WinRate }),
		outcomeChart("Loss rate", out, func(d *outcomeDataset) []float64 { return d.LossRate }),
		outcomeChart("Average reward", out, func(d *outcomeDataset) []float64 { return d.AvgReward }),
	)
	f, err := os.Create(path.Join(c.savePath, "outcomes.html"))
	if err != nil {
		return
	}
	defer f.Close()
	page.Render(f)
}

func outcomeChart(title string, datasets map[string]*outcomeDataset, values func(*outcomeDataset) []float64) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: title}),
		charts.WithTooltipOpts(opts.Tooltip{Trigger: "axis"}),
	)

	names := util.SortedKeys(datasets)
	longest := 0
	for _, name := range names {
		if n := len(datasets[name].Episodes); n > longest {
			longest = n
			xs := make([]string, n)
			for i, ep := range datasets[name].Episodes {
				xs[i] = fmt.Sprintf("%d", ep)
			}
			line.SetXAxis(xs)
		}
	}
	for _, name := range names {
		vs := values(datasets[name])
		items := make([]opts.LineData, len(vs))
		for i, v := range vs {
			items[i] = opts.LineData{Value: v}
		}
		line.AddSeries(name, items)
	}
	return line
}

type OutcomeComparatorConstructor struct {
	savePath string
}

var _ core.ComparatorConstructor = &OutcomeComparatorConstructor{}

func NewOutcomeComparatorConstructor(savePath string) *OutcomeComparatorConstructor {
	return &OutcomeComparatorConstructor{savePath: savePath}
}

func (c *OutcomeComparatorConstructor) NewComparator(run int) core.Comparator {
	return NewOutcomeComparator(path.Join(c.savePath, strconv.Itoa(run)))
}
