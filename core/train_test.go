package core

import (
	"context"
	"sort"
	"sync"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingAnalyzer struct {
	episodes  int
	onEpisode func(int)
}

func (a *countingAnalyzer) Analyze(eCtx *EpisodeContext, _ *EpisodeResult) {
	a.episodes++
	if a.onEpisode != nil {
		a.onEpisode(eCtx.Episode)
	}
}

func (a *countingAnalyzer) DataSet() DataSet { return a.episodes }
func (a *countingAnalyzer) Reset()           { a.episodes = 0 }

type countingAnalyzerConstructor struct{}

func (countingAnalyzerConstructor) NewAnalyzer(string, int) Analyzer {
	return &countingAnalyzer{}
}

type recordingComparator struct {
	lock     sync.Mutex
	calls    int
	names    []string
	datasets []DataSet
}

func (c *recordingComparator) Compare(names []string, datasets []DataSet) {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.calls++
	c.names = names
	c.datasets = datasets
}

type recordingComparatorConstructor struct {
	cmp  *recordingComparator
	runs []int
}

func (c *recordingComparatorConstructor) NewComparator(run int) Comparator {
	c.runs = append(c.runs, run)
	return c.cmp
}

type lineRunnerConstructor struct {
	lock      sync.Mutex
	instances []int
}

func (c *lineRunnerConstructor) NewRunner(instance int, log *logrus.Entry) EpisodeRunner {
	c.lock.Lock()
	c.instances = append(c.instances, instance)
	c.lock.Unlock()
	return NewRunner(RunnerConfig[lineState]{
		Environment: &lineEnv{winAt: 3, winner: WinnerPlayer1},
		Agent:       &scriptedAgent{actions: []Action{0}},
		Opponent:    &scriptedPolicy{actions: []Action{1}},
		Logger:      log,
	})
}

func TestComparisonRun(t *testing.T) {
	agent := &scriptedAgent{actions: []Action{0}}
	runner := newLineRunner(&lineEnv{winAt: 3, winner: WinnerPlayer1}, agent, &scriptedPolicy{actions: []Action{1}}, Player1, 0)

	completed := 0
	cmp := NewComparison()
	cmp.AddExperiment(&Experiment{
		Name:   "line",
		Runner: runner,
		OnComplete: func(r EpisodeRunner) error {
			completed++
			assert.Same(t, runner, r)
			return nil
		},
	})
	comparator := &recordingComparator{}
	cmp.AddAnalysis("count", &countingAnalyzer{}, comparator)

	results := cmp.Run(context.Background(), 1, &RunConfig{Episodes: 5, EvalGames: 3})

	require.Contains(t, results, "line")
	result := results["line"]
	assert.NoError(t, result.Error)
	assert.Equal(t, 5, result.CompletedEpisodes)
	assert.Equal(t, map[string]int{"win": 5}, result.Outcomes)
	require.NotNil(t, result.Eval)
	assert.Equal(t, 3, result.Eval.Wins)
	assert.Equal(t, 1, completed)

	// evaluation games do not learn
	assert.Len(t, agent.ends, 5)

	assert.Equal(t, 1, comparator.calls)
	assert.Equal(t, []string{"line"}, comparator.names)
	assert.Equal(t, []DataSet{5}, comparator.datasets)
}

func TestComparisonCancelStopsBetweenEpisodes(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	agent := &scriptedAgent{actions: []Action{0}}
	runner := newLineRunner(&lineEnv{winAt: 3, winner: WinnerPlayer1}, agent, &scriptedPolicy{actions: []Action{1}}, Player1, 0)

	completed := false
	cmp := NewComparison()
	cmp.AddExperiment(&Experiment{
		Name:       "line",
		Runner:     runner,
		OnComplete: func(EpisodeRunner) error { completed = true; return nil },
	})
	cmp.AddAnalysis("count", &countingAnalyzer{onEpisode: func(episode int) {
		if episode == 1 {
			cancel()
		}
	}}, &recordingComparator{})

	results := cmp.Run(ctx, 1, &RunConfig{Episodes: 100, EvalGames: 10})

	require.Contains(t, results, "line")
	result := results["line"]
	assert.ErrorIs(t, result.Error, ErrCancelled)
	assert.Equal(t, 2, result.CompletedEpisodes)
	assert.Nil(t, result.Eval)
	assert.False(t, completed)
	// the interrupted episode was finished with its update
	assert.Len(t, agent.ends, 2)
}

func TestParallelComparisonRun(t *testing.T) {
	cmp := NewParallelComparison()
	runners := &lineRunnerConstructor{}
	var lock sync.Mutex
	done := make([]string, 0)
	for _, name := range []string{"a", "b", "c"} {
		cmp.AddExperiment(&ParallelExperiment{
			Name:   name,
			Runner: runners,
			OnComplete: func(EpisodeRunner) error {
				lock.Lock()
				defer lock.Unlock()
				done = append(done, name)
				return nil
			},
		})
	}
	comparators := &recordingComparatorConstructor{cmp: &recordingComparator{}}
	cmp.AddAnalysis("count", countingAnalyzerConstructor{}, comparators)

	results := cmp.Run(context.Background(), 2, &RunConfig{Episodes: 4, SampleEvery: 2}, 2)

	require.Len(t, results, 3)
	for name, r := range results {
		assert.NoError(t, r.Error, name)
		assert.Equal(t, 4, r.CompletedEpisodes, name)
		assert.Equal(t, 4, r.Datasets["count"], name)
	}
	sort.Strings(done)
	assert.Equal(t, []string{"a", "a", "b", "b", "c", "c"}, done)
	assert.Equal(t, []int{0, 1}, comparators.runs)
	assert.Len(t, comparators.cmp.names, 3)

	sort.Ints(runners.instances)
	assert.Equal(t, []int{0, 0, 1, 1, 2, 2}, runners.instances)
}
