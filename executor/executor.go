package executor

import (
	"context"
	"errors"
	"math"
	"sync"

	"github.com/evdnx/gobs/logger"
	"github.com/evdnx/gobs/metrics"
	"github.com/evdnx/gobs/types"
)

var ErrInsufficientCash = errors.New("paper executor: insufficient cash")

type Executor interface {
	Submit(o types.Order) error
	// For back‑testing we expose the portfolio state
	Equity() float64
	Position(symbol string) (qty float64, avgPrice float64)
	// Transactions returns the fill history of symbol, oldest first.
	Transactions(ctx context.Context, symbol string) ([]types.TransactionRecord, error)
}

// Very simple paper‑trader – perfect fills, no slippage. Every fill is
// journaled as a transaction; the part of a fill that reduces an open
// position books realized P&L against the average entry price.
type PaperExecutor struct {
	mu        sync.Mutex
	log       logger.Logger
	equity    float64
	positions map[string]float64 // qty (positive = long, negative = short)
	avgPrice  map[string]float64
	txns      []types.TransactionRecord
}

func NewPaperExecutor(startEquity float64, log logger.Logger) *PaperExecutor {
	if log == nil {
		log = logger.NewNop()
	}
	return &PaperExecutor{
		log:       log,
		equity:    startEquity,
		positions: make(map[string]float64),
		avgPrice:  make(map[string]float64),
	}
}

func (p *PaperExecutor) Submit(o types.Order) error {
	if o.Qty == 0 {
		return nil
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	// market fill – price = current market price (passed in Order.Price)
	delta := o.Qty
	if o.Side == types.Sell {
		delta = -o.Qty
	}
	cost := o.Price * o.Qty
	if o.Side == types.Buy && cost > p.equity {
		p.log.Warn("order_rejected",
			logger.String("symbol", o.Symbol),
			logger.Float64("cost", cost),
			logger.Float64("equity", p.equity),
		)
		return ErrInsufficientCash
	}
	if o.Side == types.Buy {
		p.equity -= cost
	} else {
		p.equity += cost
	}

	pl := p.fill(o.Symbol, delta, o.Price)
	p.txns = append(p.txns, types.TransactionRecord{Instrument: o.Symbol, Units: delta, PL: pl})

	metrics.EquityGauge.Set(p.equity)
	metrics.PositionsOpen.WithLabelValues(o.Symbol).Set(p.positions[o.Symbol])
	p.log.Info("order_filled",
		logger.String("symbol", o.Symbol),
		logger.String("side", string(o.Side)),
		logger.Float64("qty", o.Qty),
		logger.Float64("price", o.Price),
		logger.Float64("pl", pl),
		logger.Float64("equity", p.equity),
	)
	return nil
}

// fill applies a signed quantity and returns the realized P&L.
func (p *PaperExecutor) fill(sym string, delta, price float64) float64 {
	qty, avg := p.positions[sym], p.avgPrice[sym]
	if qty == 0 || math.Signbit(qty) == math.Signbit(delta) {
		// opening or adding: simple VWAP for avg price
		newQty := qty + delta
		p.avgPrice[sym] = (math.Abs(qty)*avg + math.Abs(delta)*price) / math.Abs(newQty)
		p.positions[sym] = newQty
		return 0
	}
	closed := math.Min(math.Abs(delta), math.Abs(qty))
	pl := closed * (price - avg) * math.Copysign(1, qty)
	newQty := qty + delta
	switch {
	case newQty == 0:
		delete(p.avgPrice, sym)
	case math.Signbit(newQty) != math.Signbit(qty):
		// flipped through zero: the remainder opens at this price
		p.avgPrice[sym] = price
	}
	p.positions[sym] = newQty
	return pl
}

func (p *PaperExecutor) Equity() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.equity
}

func (p *PaperExecutor) Position(sym string) (float64, float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.positions[sym], p.avgPrice[sym]
}

// Transactions returns a copy of the fills for sym; an empty sym returns all.
func (p *PaperExecutor) Transactions(_ context.Context, sym string) ([]types.TransactionRecord, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]types.TransactionRecord, 0, len(p.txns))
	for _, t := range p.txns {
		if sym == "" || t.Instrument == sym {
			out = append(out, t)
		}
	}
	return out, nil
}
