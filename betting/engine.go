package betting

import (
	"github.com/evdnx/gobs/logger"
	"github.com/evdnx/gobs/types"
)

// Inputs is everything a strategy arm may look at.
type Inputs struct {
	UnitSize    float64
	LastSize    float64
	InitSize    *float64 // nil when the caller gave none
	Outcome     Outcome
	AllTimeHigh bool
}

type sizeFunc func(in Inputs) float64

var arms = map[StrategyKind]sizeFunc{
	Martingale:  martingale,
	Paroli:      paroli,
	DAlembert:   dAlembert,
	Pyramid:     pyramid,
	OscarsGrind: oscarsGrind,
	Constant:    constant,
}

// Engine computes the size of the next trade for a fixed strategy.
// It keeps no state between calls and is safe for concurrent use.
type Engine struct {
	kind StrategyKind
	log  logger.Logger
}

type Option func(*Engine)

// WithLogger receives the debug trace of every calculation.
func WithLogger(l logger.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.log = l
		}
	}
}

// New resolves the strategy name once. An unknown name fails with
// ErrInvalidStrategy.
func New(strategy string, opts ...Option) (*Engine, error) {
	kind, err := ParseStrategy(strategy)
	if err != nil {
		return nil, err
	}
	e := &Engine{kind: kind, log: logger.NewNop()}
	for _, opt := range opts {
		opt(e)
	}
	e.log.Info("betting_strategy", logger.String("strategy", kind.String()))
	return e, nil
}

// Strategy returns the kind chosen at construction.
func (e *Engine) Strategy() StrategyKind { return e.kind }

// Init wraps an initial size for CalculateSize.
func Init(size float64) *float64 { return &size }

// CalculateSize returns the size of the next trade. history is ordered oldest
// first and is never modified. initSize, when given, replaces unitSize as the
// reset target.
func (e *Engine) CalculateSize(unitSize float64, history []types.TransactionRecord, initSize *float64) (float64, error) {
	size, _, err := e.Explain(unitSize, history, initSize)
	return size, err
}

// Explain is CalculateSize that also hands back the derived state.
func (e *Engine) Explain(unitSize float64, history []types.TransactionRecord, initSize *float64) (float64, State, error) {
	if !finite(unitSize) || unitSize <= 0 {
		return 0, State{}, ErrInvalidUnitSize
	}
	if initSize != nil && (!finite(*initSize) || *initSize < 0) {
		return 0, State{}, ErrInvalidInitSize
	}
	st, err := DeriveState(history)
	if err != nil {
		return 0, State{}, err
	}
	e.log.Debug("sizing_state",
		logger.Float64("last_size", st.LastSize),
		logger.String("outcome", st.Outcome.String()),
		logger.Bool("all_time_high", st.AllTimeHigh),
		logger.Int("closed", st.Closed),
	)

	in := Inputs{
		UnitSize:    unitSize,
		LastSize:    st.LastSize,
		InitSize:    initSize,
		Outcome:     st.Outcome,
		AllTimeHigh: st.AllTimeHigh,
	}
	var size float64
	switch {
	case e.kind == Constant:
		// flat stake regardless of history
		size = constant(in)
	case st.Outcome == Indeterminate:
		size = fallback(in)
	default:
		arm, ok := arms[e.kind]
		if !ok {
			return 0, st, &StrategyError{Name: e.kind.String()}
		}
		size = arm(in)
	}
	e.log.Debug("sizing_result",
		logger.String("strategy", e.kind.String()),
		logger.Float64("size", size),
	)
	return size, st, nil
}

// fallback picks the first non‑zero of last size, init size and unit size.
// A zero last size is treated as "no last size".
func fallback(in Inputs) float64 {
	if in.LastSize != 0 {
		return in.LastSize
	}
	return resetSize(in)
}

func resetSize(in Inputs) float64 {
	if in.InitSize != nil && *in.InitSize != 0 {
		return *in.InitSize
	}
	return in.UnitSize
}

func martingale(in Inputs) float64 {
	if in.Outcome == Win {
		return in.UnitSize
	}
	return in.LastSize * 2
}

func paroli(in Inputs) float64 {
	if in.Outcome == Win {
		return in.LastSize * 2
	}
	return in.UnitSize
}

func dAlembert(in Inputs) float64 {
	if in.Outcome == Win {
		return in.UnitSize
	}
	return in.LastSize + in.UnitSize
}

func pyramid(in Inputs) float64 {
	switch {
	case in.Outcome != Win:
		return in.LastSize + in.UnitSize
	case in.LastSize < in.UnitSize:
		return in.LastSize
	default:
		return in.LastSize - in.UnitSize
	}
}

// oscarsGrind restarts the cycle whenever cumulative P&L sits at a new high.
func oscarsGrind(in Inputs) float64 {
	switch {
	case in.AllTimeHigh:
		return resetSize(in)
	case in.Outcome == Win:
		return in.LastSize + in.UnitSize
	default:
		return in.LastSize
	}
}

func constant(in Inputs) float64 {
	return in.UnitSize
}
