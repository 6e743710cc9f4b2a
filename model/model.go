// Package model converts agents to and from a portable JSON record and moves those
// records in and out of blob stores.
package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	erand "golang.org/x/exp/rand"

	"github.com/zeu5/selfplay-rl/core"
	"github.com/zeu5/selfplay-rl/policies"
)

// ErrMalformedModel is returned when persisted data cannot be parsed or lacks the
// mandatory qTable field.
var ErrMalformedModel = errors.New("malformed model")

// Model is the persisted form of an agent.
type Model struct {
	QTable          map[core.StateKey]map[core.Action]float64 `json:"qTable"`
	Epsilon         *float64                                  `json:"epsilon,omitempty"`
	TrainingStats   *policies.TrainingStats                   `json:"trainingStats,omitempty"`
	Hyperparameters *policies.Hyperparameters                 `json:"hyperparameters,omitempty"`
	Timestamp       time.Time                                 `json:"timestamp"`
	RunID           string                                    `json:"runId,omitempty"`
}

// Export takes a deep snapshot of agent. The agent is not modified.
func Export(agent *policies.QLearningAgent) *Model {
	table := make(map[core.StateKey]map[core.Action]float64, agent.Table().Size())
	agent.Table().Each(func(state core.StateKey, values []float64) {
		row := make(map[core.Action]float64, len(values))
		for a, v := range values {
			row[core.Action(a)] = v
		}
		table[state] = row
	})
	epsilon := agent.Epsilon()
	params := agent.Params()
	return &Model{
		QTable:          table,
		Epsilon:         &epsilon,
		TrainingStats:   agent.TrainingStats(),
		Hyperparameters: &params,
		Timestamp:       time.Now().UTC(),
		RunID:           uuid.NewString(),
	}
}

func Encode(m *Model) ([]byte, error) {
	bs, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("encoding model: %w", err)
	}
	return bs, nil
}

// Decode parses data and checks that the mandatory qTable field is present.
func Decode(data []byte) (*Model, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrMalformedModel, err)
	}
	if q, ok := raw["qTable"]; !ok || string(q) == "null" {
		return nil, fmt.Errorf("%w: missing qTable", ErrMalformedModel)
	}
	m := &Model{}
	if err := json.Unmarshal(data, m); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrMalformedModel, err)
	}
	return m, nil
}

// table builds a QTable from the persisted rows, validating every key and action.
func (m *Model) table(params policies.Hyperparameters) (*policies.QTable, error) {
	encoder := core.NewEncoder(params.StateSize)
	table := policies.NewQTable(params.ActionSize)
	for state, row := range m.QTable {
		if err := encoder.Validate(state); err != nil {
			return nil, fmt.Errorf("%w: %s", ErrMalformedModel, err)
		}
		for action, value := range row {
			if action < 0 || int(action) >= params.ActionSize {
				return nil, fmt.Errorf("%w: state %q has action %d outside 0..%d", ErrMalformedModel, string(state), action, params.ActionSize-1)
			}
			table.Set(state, action, value)
		}
		// a state persisted with an empty row still counts as seen
		if len(row) == 0 {
			table.Get(state, 0)
		}
	}
	return table, nil
}

// Apply installs the model into agent. The model is validated against the agent's
// hyperparameters first; on error the agent is left untouched. A missing epsilon falls
// back to EpsilonMin and missing statistics to empty ones.
func (m *Model) Apply(agent *policies.QLearningAgent) error {
	if m.QTable == nil {
		return fmt.Errorf("%w: missing qTable", ErrMalformedModel)
	}
	params := agent.Params()
	table, err := m.table(params)
	if err != nil {
		return err
	}
	epsilon := params.EpsilonMin
	if m.Epsilon != nil {
		epsilon = *m.Epsilon
	}
	stats := policies.NewTrainingStats()
	if m.TrainingStats != nil {
		stats = m.TrainingStats.Copy()
	}
	agent.Restore(table, epsilon, stats)
	return nil
}

// Import decodes data and installs it into agent. Nothing changes on error.
func Import(agent *policies.QLearningAgent, data []byte) error {
	m, err := Decode(data)
	if err != nil {
		return err
	}
	return m.Apply(agent)
}

// NewAgent builds a fresh agent from the model's own hyperparameters, falling back to
// defaults when the model carries none.
func NewAgent(m *Model, defaults policies.Hyperparameters, rand *erand.Rand) (*policies.QLearningAgent, error) {
	params := defaults
	if m.Hyperparameters != nil {
		params = *m.Hyperparameters
	}
	agent := policies.NewQLearningAgent(params, rand)
	if err := m.Apply(agent); err != nil {
		return nil, err
	}
	return agent, nil
}
