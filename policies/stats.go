package policies

import (
	"gonum.org/v1/gonum/stat"

	"github.com/zeu5/selfplay-rl/util"
)

// TrainingStats holds the terminal reward of every completed training episode.
type TrainingStats struct {
	Episodes int       `json:"episodes"`
	Rewards  []float64 `json:"rewards"`
}

func NewTrainingStats() *TrainingStats {
	return &TrainingStats{Rewards: make([]float64, 0)}
}

func (t *TrainingStats) Record(reward float64) {
	t.Episodes++
	t.Rewards = append(t.Rewards, reward)
}

func (t *TrainingStats) Reset() {
	t.Episodes = 0
	t.Rewards = make([]float64, 0)
}

// AvgReward is the mean of all recorded rewards, 0 when there are none.
func (t *TrainingStats) AvgReward() float64 {
	if len(t.Rewards) == 0 {
		return 0
	}
	return stat.Mean(t.Rewards, nil)
}

// WinRate is the fraction of episodes that ended with a +1 reward.
func (t *TrainingStats) WinRate() float64 {
	if len(t.Rewards) == 0 {
		return 0
	}
	wins := 0
	for _, r := range t.Rewards {
		if r >= 1 {
			wins++
		}
	}
	return float64(wins) / float64(len(t.Rewards))
}

func (t *TrainingStats) Copy() *TrainingStats {
	return &TrainingStats{
		Episodes: t.Episodes,
		Rewards:  util.CopyFloatSlice(t.Rewards),
	}
}

// Stats is the summary reported for an agent.
type Stats struct {
	Episodes     int     `json:"episodes"`
	AvgReward    float64 `json:"avgReward"`
	WinRate      float64 `json:"winRate"`
	Epsilon      float64 `json:"epsilon"`
	QTableSize   int     `json:"qTableSize"`
	TotalQValues int     `json:"totalQValues"`
}
