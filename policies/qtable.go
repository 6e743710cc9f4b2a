package policies

import (
	"github.com/zeu5/selfplay-rl/core"
	"github.com/zeu5/selfplay-rl/util"
)

// QTable is a sparse map from state key to a row of action values. Rows are created
// with one zero entry per action the first time a state is touched and are never
// removed.
type QTable struct {
	actionSize int
	table      map[core.StateKey][]float64
}

func NewQTable(actionSize int) *QTable {
	return &QTable{
		actionSize: actionSize,
		table:      make(map[core.StateKey][]float64),
	}
}

func (q *QTable) ActionSize() int {
	return q.actionSize
}

func (q *QTable) row(state core.StateKey) []float64 {
	values, ok := q.table[state]
	if !ok {
		values = make([]float64, q.actionSize)
		q.table[state] = values
	}
	return values
}

// Get returns the value of action in state, materializing the state's row.
func (q *QTable) Get(state core.StateKey, action core.Action) float64 {
	return q.row(state)[action]
}

func (q *QTable) Set(state core.StateKey, action core.Action, val float64) {
	q.row(state)[action] = val
}

// Row returns the stored row without materializing it.
func (q *QTable) Row(state core.StateKey) ([]float64, bool) {
	values, ok := q.table[state]
	return values, ok
}

// Max returns the largest value stored for state across all actions, or def when
// the state has never been seen. Nothing is materialized.
func (q *QTable) Max(state core.StateKey, def float64) float64 {
	values, ok := q.table[state]
	if !ok || len(values) == 0 {
		return def
	}
	maxVal := values[0]
	for _, val := range values[1:] {
		if val > maxVal {
			maxVal = val
		}
	}
	return maxVal
}

// MaxAmong returns the action among actions with the largest value in state. Ties go
// to the earliest action in the given order.
func (q *QTable) MaxAmong(state core.StateKey, actions []core.Action) (core.Action, float64) {
	values := q.row(state)
	best := actions[0]
	bestVal := values[best]
	for _, a := range actions[1:] {
		if values[a] > bestVal {
			best = a
			bestVal = values[a]
		}
	}
	return best, bestVal
}

func (q *QTable) Exists(state core.StateKey) bool {
	_, ok := q.table[state]
	return ok
}

// Size is the number of distinct states.
func (q *QTable) Size() int {
	return len(q.table)
}

// TotalEntries is the number of stored state-action values.
func (q *QTable) TotalEntries() int {
	total := 0
	for _, values := range q.table {
		total += len(values)
	}
	return total
}

// Copy returns a deep copy.
func (q *QTable) Copy() *QTable {
	out := NewQTable(q.actionSize)
	for state, values := range q.table {
		out.table[state] = util.CopyFloatSlice(values)
	}
	return out
}

// Each calls fn for every state in increasing key order.
func (q *QTable) Each(fn func(core.StateKey, []float64)) {
	for _, state := range util.SortedKeys(q.table) {
		fn(state, q.table[state])
	}
}
