package betting

import (
	"math"

	"github.com/evdnx/gobs/types"
)

// Outcome classifies the most recent closed trade(s).
type Outcome int

const (
	Indeterminate Outcome = iota
	Win
	Loss
)

func (o Outcome) String() string {
	switch o {
	case Win:
		return "win"
	case Loss:
		return "loss"
	default:
		return "indeterminate"
	}
}

// State is derived from a history snapshot on every call and never stored.
type State struct {
	LastSize    float64
	Outcome     Outcome
	AllTimeHigh bool

	// Closed is the number of records carrying a realized P&L.
	Closed int
}

// DeriveState scans the history once. Records are validated on the way; the
// slice is only read.
func DeriveState(history []types.TransactionRecord) (State, error) {
	var st State
	var prev, last, cum float64 // prev is the P&L before the latest one
	peak, peakIdx, closed := math.Inf(-1), -1, 0
	for i, rec := range history {
		if !finite(rec.Units) {
			return State{}, &RecordError{Index: i, Field: "units", Value: rec.Units}
		}
		if !finite(rec.PL) {
			return State{}, &RecordError{Index: i, Field: "pl", Value: rec.PL}
		}
		if rec.Units != 0 {
			st.LastSize = math.Abs(rec.Units)
		}
		if rec.PL == 0 {
			continue
		}
		prev, last = last, rec.PL
		cum += rec.PL
		// first occurrence of the maximum wins
		if cum > peak {
			peak, peakIdx = cum, closed
		}
		closed++
	}
	st.Closed = closed
	if st.Closed == 0 {
		return st, nil
	}
	st.Outcome = classify(st.Closed, prev, last)
	st.AllTimeHigh = peakIdx == st.Closed-1
	return st, nil
}

// classify looks at the latest P&L and the one before it.
func classify(n int, prev, last float64) Outcome {
	if n < 2 {
		return Indeterminate
	}
	switch {
	case last < 0 && last < prev:
		return Loss
	case last > 0 && last+prev > 0:
		return Win
	default:
		return Indeterminate
	}
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
