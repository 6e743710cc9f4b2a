package policies

import (
	"math"

	erand "golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/sampleuv"

	"github.com/zeu5/selfplay-rl/core"
)

// SoftmaxPolicy samples legal actions with probability proportional to
// exp(Q(s,a)/temperature) over a fixed table. It never writes to the table.
type SoftmaxPolicy struct {
	qTable      *QTable
	Temperature float64

	rand erand.Source
}

var _ core.Policy = &SoftmaxPolicy{}

func NewSoftmaxPolicy(table *QTable, temperature float64, src erand.Source) *SoftmaxPolicy {
	if temperature <= 0 {
		temperature = 1
	}
	if src == nil {
		src = NewRand(0)
	}
	return &SoftmaxPolicy{
		qTable:      table,
		Temperature: temperature,
		rand:        src,
	}
}

// Weights returns the sampling probability of each action in order.
func (s *SoftmaxPolicy) Weights(state core.State, actions []core.Action) []float64 {
	row, seen := s.qTable.Row(state.Key())

	vals := make([]float64, len(actions))
	for i, a := range actions {
		if seen && int(a) < len(row) {
			vals[i] = row[a] / s.Temperature
		}
	}
	largestValue := vals[0]
	for _, v := range vals[1:] {
		if v > largestValue {
			largestValue = v
		}
	}

	// Normalizing
	sum := 0.0
	for i := range vals {
		vals[i] = math.Exp(vals[i] - largestValue)
		sum += vals[i]
	}
	for i := range vals {
		vals[i] /= sum
	}
	return vals
}

func (s *SoftmaxPolicy) PickAction(state core.State, actions []core.Action) core.Action {
	weights := s.Weights(state, actions)
	i, ok := sampleuv.NewWeighted(weights, s.rand).Take()
	if !ok {
		return actions[0]
	}
	return actions[i]
}

type SoftmaxPolicyConstructor struct {
	Frozen      *QTable
	Temperature float64
}

var _ core.PolicyConstructor = &SoftmaxPolicyConstructor{}

func (c *SoftmaxPolicyConstructor) NewPolicy(learner core.Agent) core.Policy {
	var src erand.Source
	if q, ok := AsQLearning(learner); ok {
		src = q.Rand()
	}
	return NewSoftmaxPolicy(c.Frozen.Copy(), c.Temperature, src)
}
