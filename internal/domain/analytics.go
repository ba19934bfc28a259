package domain

import "math"

// Analytics are running per-room counters over revealed rounds.
type Analytics struct {
	TotalRounds     int `json:"totalRounds"`
	ConsensusRounds int `json:"consensusRounds"`
	ConsensusRate   int `json:"consensusRate"`
}

// Record counts one reveal. Counters only ever grow.
func (a *Analytics) Record(consensus bool) {
	a.TotalRounds++
	if consensus {
		a.ConsensusRounds++
	}
	a.ConsensusRate = int(math.Round(float64(a.ConsensusRounds) / float64(a.TotalRounds) * 100))
}
