package domain

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

const MaxEstimateLen = 16

// Estimate is a vote value: a number like 5 or 0.5, or a marker like "?".
type Estimate string

// Float reports the numeric value when the estimate parses as a finite number.
func (e Estimate) Float() (float64, bool) {
	s := strings.TrimSpace(string(e))
	// ParseFloat also takes hex floats and digit separators; votes are plain decimals.
	if s == "" || strings.ContainsAny(s, "xX_") {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, false
	}
	return f, true
}

func (e Estimate) MarshalJSON() ([]byte, error) {
	if f, ok := e.Float(); ok {
		return []byte(strconv.FormatFloat(f, 'f', -1, 64)), nil
	}
	return json.Marshal(string(e))
}

// UnmarshalJSON accepts both JSON numbers and strings.
func (e *Estimate) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*e = Estimate(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("%w: estimate must be a number or a string", ErrValidation)
	}
	*e = Estimate(n.String())
	return nil
}

// Normalize validates a submitted estimate.
func (e Estimate) Normalize() (Estimate, error) {
	s := truncate(strings.TrimSpace(string(e)), MaxEstimateLen)
	if s == "" {
		return "", ErrEstimateEmpty
	}
	return Estimate(s), nil
}

// Tally is the aggregate of one revealed round.
type Tally struct {
	Average    float64 `json:"average"`
	Consensus  bool    `json:"consensus"`
	TotalVotes int     `json:"totalVotes"`
}

// Summarize computes the tally. Non-numeric votes count toward TotalVotes
// only; a round without numeric votes is never a consensus.
func Summarize(votes map[MemberID]Estimate) Tally {
	t := Tally{TotalVotes: len(votes)}
	var (
		sum      float64
		numeric  int
		distinct = make(map[float64]struct{})
	)
	for _, v := range votes {
		f, ok := v.Float()
		if !ok {
			continue
		}
		sum += f
		numeric++
		distinct[f] = struct{}{}
	}
	if numeric > 0 {
		t.Average = math.Round(sum/float64(numeric)*10) / 10
	}
	t.Consensus = numeric > 0 && len(distinct) == 1
	return t
}
