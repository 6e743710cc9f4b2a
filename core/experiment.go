package core

import "github.com/sirupsen/logrus"

// ParallelExperiment describes an experiment whose runner is built inside a worker.
type ParallelExperiment struct {
	Name   string
	Runner RunnerConstructor
	// OnComplete is called from the worker with the trained runner.
	OnComplete func(EpisodeRunner) error
}

// RunnerConstructor builds a runner owning its own environment, agent and table.
type RunnerConstructor interface {
	NewRunner(instance int, log *logrus.Entry) EpisodeRunner
}

type DataSet interface{}

type Analyzer interface {
	Analyze(*EpisodeContext, *EpisodeResult)
	DataSet() DataSet
	Reset()
}

type AnalyzerConstructor interface {
	// new analyzer based on experiment name and run
	NewAnalyzer(string, int) Analyzer
}

type Comparator interface {
	Compare([]string, []DataSet)
}

type ComparatorConstructor interface {
	NewComparator(int) Comparator
}

type ParallelComparison struct {
	Experiments []*ParallelExperiment
	Analyzers   map[string]AnalyzerConstructor
	Comparators map[string]ComparatorConstructor
	Logger      *logrus.Entry
}

type RunConfig struct {
	Episodes int
	Horizon  int
	// SampleEvery is the number of episodes between progress samples.
	SampleEvery int
	// EvalGames greedy games are played after training when positive.
	EvalGames int
}

func NewParallelComparison() *ParallelComparison {
	return &ParallelComparison{
		Analyzers:   make(map[string]AnalyzerConstructor),
		Comparators: make(map[string]ComparatorConstructor),
		Experiments: make([]*ParallelExperiment, 0),
		Logger:      logrus.NewEntry(logrus.StandardLogger()),
	}
}

func (c *ParallelComparison) AddExperiment(e *ParallelExperiment) {
	c.Experiments = append(c.Experiments, e)
}

func (c *ParallelComparison) AddAnalysis(name string, a AnalyzerConstructor, cmp ComparatorConstructor) {
	c.Analyzers[name] = a
	c.Comparators[name] = cmp
}

// Experiment trains one runner.
type Experiment struct {
	Name   string
	Runner EpisodeRunner
	// OnComplete is called with the trained runner after a successful run.
	OnComplete func(EpisodeRunner) error
}

type Comparison struct {
	Experiments []*Experiment
	Analyzers   map[string]Analyzer
	Comparators map[string]Comparator
	Logger      *logrus.Entry
}

func NewComparison() *Comparison {
	return &Comparison{
		Analyzers:   make(map[string]Analyzer),
		Comparators: make(map[string]Comparator),
		Experiments: make([]*Experiment, 0),
		Logger:      logrus.NewEntry(logrus.StandardLogger()),
	}
}

func (c *Comparison) AddExperiment(e *Experiment) {
	c.Experiments = append(c.Experiments, e)
}

func (c *Comparison) AddAnalysis(name string, a Analyzer, cmp Comparator) {
	c.Analyzers[name] = a
	c.Comparators[name] = cmp
}
