package core

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"
	"github.com/zeu5/selfplay-rl/util"
)

var ErrCancelled = errors.New("context cancelled")

// Reporter is implemented by agents that describe their training progress.
type Reporter interface {
	Report() logrus.Fields
}

type agentHolder interface {
	Agent() Agent
}

type experimentRunContext struct {
	run       int
	ctx       context.Context
	analyzers map[string]Analyzer
	log       *logrus.Entry
	output    *util.ParallelOutput

	*RunConfig
}

type ExperimentResult struct {
	CompletedEpisodes int
	Outcomes          map[string]int
	Eval              *EvalResult

	Error    error
	Datasets map[string]DataSet
}

func (r *ExperimentResult) IsError() bool {
	return r.Error != nil
}

func report(runner EpisodeRunner) logrus.Fields {
	h, ok := runner.(agentHolder)
	if !ok {
		return logrus.Fields{}
	}
	rep, ok := h.Agent().(Reporter)
	if !ok {
		return logrus.Fields{}
	}
	return rep.Report()
}

func (e *Experiment) run(ctx *experimentRunContext) *ExperimentResult {
	result := &ExperimentResult{
		Outcomes: make(map[string]int),
		Datasets: make(map[string]DataSet),
	}
	log := ctx.log.WithFields(logrus.Fields{"experiment": e.Name, "run": ctx.run})

EpisodeLoop:
	for episode := 0; episode < ctx.Episodes; episode++ {
		select {
		case <-ctx.ctx.Done():
			result.Error = ErrCancelled
			break EpisodeLoop
		default:
		}

		eCtx := NewEpisodeContext(ctx.run, episode, ctx.Horizon, true)
		episodeResult := e.Runner.RunEpisode(eCtx)
		result.CompletedEpisodes++
		result.Outcomes[episodeResult.Outcome.String()]++

		for _, a := range ctx.analyzers {
			a.Analyze(eCtx, episodeResult)
		}

		if ctx.SampleEvery > 0 && (episode+1)%ctx.SampleEvery == 0 {
			fields := report(e.Runner)
			if ctx.output != nil {
				ctx.output.Set(fmt.Sprintf(
					"Experiment: %s, Run %d, Episode %d/%d, Stats: %v",
					e.Name, ctx.run, episode+1, ctx.Episodes, fields,
				))
			} else {
				log.WithFields(fields).Infof("episode %d/%d", episode+1, ctx.Episodes)
			}
		}
	}
	if result.Error != nil {
		log.WithError(result.Error).Warn("experiment stopped")
		return result
	}

	if ctx.EvalGames > 0 {
		result.Eval = Evaluate(e.Runner, ctx.EvalGames, ctx.Horizon)
		log.WithFields(logrus.Fields{
			"win_rate":  result.Eval.WinRate(),
			"draw_rate": result.Eval.DrawRate(),
			"loss_rate": result.Eval.LossRate(),
		}).Info("greedy evaluation")
	}

	for name, a := range ctx.analyzers {
		result.Datasets[name] = a.DataSet()
	}

	if e.OnComplete != nil {
		if err := e.OnComplete(e.Runner); err != nil {
			result.Error = fmt.Errorf("completing experiment %s: %w", e.Name, err)
		}
	}
	return result
}

// Run trains every experiment sequentially, runs times.
func (c *Comparison) Run(ctx context.Context, runs int, rConfig *RunConfig) map[string]*ExperimentResult {
	var results map[string]*ExperimentResult
	for run := 0; run < runs; run++ {
		select {
		case <-ctx.Done():
			return results
		default:
		}

		results = make(map[string]*ExperimentResult)

		for _, e := range c.Experiments {
			select {
			case <-ctx.Done():
				return results
			default:
			}
			eCtx := &experimentRunContext{
				run:       run,
				ctx:       ctx,
				analyzers: make(map[string]Analyzer),
				log:       c.Logger,
				RunConfig: rConfig,
			}

			for name, a := range c.Analyzers {
				a.Reset()
				eCtx.analyzers[name] = a
			}

			results[e.Name] = e.run(eCtx)
		}

		compare(results, c.analyzerNames(), func(name string) Comparator { return c.Comparators[name] })
	}
	return results
}

func (c *Comparison) analyzerNames() []string {
	names := make([]string, 0, len(c.Analyzers))
	for name := range c.Analyzers {
		names = append(names, name)
	}
	return names
}

// compare gathers the datasets of each analyzer across experiments and hands them to
// the matching comparator.
func compare(results map[string]*ExperimentResult, analyzerNames []string, comparator func(string) Comparator) {
	datasets := make(map[string][]DataSet)
	experimentNames := make([]string, 0)
	for name, result := range results {
		experimentNames = append(experimentNames, name)
		for _, aName := range analyzerNames {
			if result.IsError() {
				datasets[aName] = append(datasets[aName], nil)
			} else {
				datasets[aName] = append(datasets[aName], result.Datasets[aName])
			}
		}
	}
	for _, aName := range analyzerNames {
		if cmp := comparator(aName); cmp != nil {
			cmp.Compare(experimentNames, datasets[aName])
		}
	}
}

// parallelWorker is a worker that runs experiments
type parallelWorker struct {
	id int
}

// parallelWork is a struct that contains all the information needed to run an experiment
type parallelWork struct {
	experiment *ParallelExperiment
	comp       *ParallelComparison
	runNumber  int
	// instance distinguishes the experiments of a run
	instance   int
	output     *util.ParallelOutput
	rConfig    *RunConfig
	wg         *sync.WaitGroup
}

// parallelResult is a struct that contains the result of running an experiment
type parallelResult struct {
	experimentName string
	run            int
	result         *ExperimentResult
}

// Worker main loop that consumes work from a channel
func (w *parallelWorker) run(ctx context.Context, workCh <-chan *parallelWork, resultsCh chan<- *parallelResult) {
	for {
		select {
		case <-ctx.Done():
			return
		case work, more := <-workCh:
			if !more {
				return
			}
			resultsCh <- w.runWork(ctx, work)
			work.wg.Done()
		}
	}
}

// Run an experiment by constructing the experiment context and a fresh runner
func (w *parallelWorker) runWork(ctx context.Context, work *parallelWork) *parallelResult {
	log := work.comp.Logger.WithField("worker", w.id)
	eCtx := &experimentRunContext{
		run:       work.runNumber,
		ctx:       ctx,
		analyzers: make(map[string]Analyzer),
		log:       log,
		output:    work.output,
		RunConfig: work.rConfig,
	}

	for name, aC := range work.comp.Analyzers {
		eCtx.analyzers[name] = aC.NewAnalyzer(work.experiment.Name, work.runNumber)
	}

	exp := &Experiment{
		Name:       work.experiment.Name,
		Runner:     work.experiment.Runner.NewRunner(work.instance, log.WithField("experiment", work.experiment.Name)),
		OnComplete: work.experiment.OnComplete,
	}

	return &parallelResult{
		experimentName: work.experiment.Name,
		run:            work.runNumber,
		result:         exp.run(eCtx),
	}
}

// Run trains all experiments of the comparison on parallelism workers, runs times.
// Every experiment owns its own runner; nothing learned is shared between workers.
func (c *ParallelComparison) Run(ctx context.Context, runs int, rConfig *RunConfig, parallelism int) map[string]*ExperimentResult {
	if parallelism < 1 {
		parallelism = 1
	}
	var results map[string]*ExperimentResult
	for run := 0; run < runs; run++ {
		select {
		case <-ctx.Done():
			return results
		default:
		}
		wg := new(sync.WaitGroup)
		printer := util.NewTerminalPrinter(util.DefaultPrintFrequency)

		// outputs are registered before the printer starts reading them
		works := make([]*parallelWork, len(c.Experiments))
		for i, e := range c.Experiments {
			works[i] = &parallelWork{
				experiment: e,
				comp:       c,
				runNumber:  run,
				instance:   i,
				rConfig:    rConfig,
				wg:         wg,
				output:     printer.NewOutput(),
			}
		}
		printer.Start(ctx)
		printer.Write(fmt.Sprintf("Run %d\n", run))

		workCh := make(chan *parallelWork, len(works))
		resultsCh := make(chan *parallelResult, len(works))

		for i := 0; i < parallelism; i++ {
			w := &parallelWorker{id: i}
			go w.run(ctx, workCh, resultsCh)
		}

		for _, work := range works {
			wg.Add(1)
			workCh <- work
		}
		close(workCh)

		// Wait for all work to finish
		done := make(chan struct{})
		go func() {
			wg.Wait()
			close(done)
		}()
		select {
		case <-done:
		case <-ctx.Done():
			printer.Stop()
			return results
		}
		close(resultsCh)
		printer.Stop()

		results = make(map[string]*ExperimentResult)
		for r := range resultsCh {
			results[r.experimentName] = r.result
		}

		names := make([]string, 0, len(c.Analyzers))
		for name := range c.Analyzers {
			names = append(names, name)
		}
		compare(results, names, func(name string) Comparator {
			cc, ok := c.Comparators[name]
			if !ok {
				return nil
			}
			return cc.NewComparator(run)
		})
	}
	return results
}
