package betting

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidStrategy is a configuration mistake and is never retried.
	ErrInvalidStrategy = errors.New("invalid strategy")
	// ErrMalformedRecord marks a history entry whose units or pl is not a finite number.
	ErrMalformedRecord = errors.New("malformed transaction record")
	ErrInvalidUnitSize = errors.New("unit size must be a positive finite number")
	ErrInvalidInitSize = errors.New("init size must be a non-negative finite number")
)

// StrategyError carries the name that failed to resolve.
type StrategyError struct {
	Name string
}

func (e *StrategyError) Error() string {
	return fmt.Sprintf("%v: %s", ErrInvalidStrategy, e.Name)
}

func (e *StrategyError) Unwrap() error { return ErrInvalidStrategy }

// RecordError points at the offending history entry.
type RecordError struct {
	Index int
	Field string
	Value float64
}

func (e *RecordError) Error() string {
	return fmt.Sprintf("%v: record %d has %s=%v", ErrMalformedRecord, e.Index, e.Field, e.Value)
}

func (e *RecordError) Unwrap() error { return ErrMalformedRecord }

// Reason is a short label for err, used as a metrics label.
func Reason(err error) string {
	switch {
	case errors.Is(err, ErrMalformedRecord):
		return "malformed_record"
	case errors.Is(err, ErrInvalidStrategy):
		return "invalid_strategy"
	case errors.Is(err, ErrInvalidUnitSize), errors.Is(err, ErrInvalidInitSize):
		return "invalid_input"
	default:
		return "other"
	}
}
