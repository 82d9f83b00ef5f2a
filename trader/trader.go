package trader

import (
	"context"
	"math"

	"github.com/evdnx/gobs/betting"
	"github.com/evdnx/gobs/config"
	"github.com/evdnx/gobs/executor"
	"github.com/evdnx/gobs/history"
	"github.com/evdnx/gobs/logger"
	"github.com/evdnx/gobs/metrics"
	"github.com/evdnx/gobs/risk"
	"github.com/evdnx/gobs/types"
)

// HistoryProvider supplies the ordered transaction history of an instrument.
// Both the paper executor and the journal satisfy it.
type HistoryProvider interface {
	Transactions(ctx context.Context, instrument string) ([]types.TransactionRecord, error)
}

// Trader places orders for one symbol once a trade decision has been made
// elsewhere; it only decides how large they are.
type Trader struct {
	Exec    executor.Executor
	History HistoryProvider
	Log     logger.Logger
	Cfg     config.SizingConfig
	Engine  *betting.Engine
	Symbol  string
}

// NewTrader validates the config and resolves the betting system. A nil
// history provider falls back to the executor's own fills.
func NewTrader(symbol string, cfg config.SizingConfig,
	exec executor.Executor, hist HistoryProvider, log logger.Logger) (*Trader, error) {

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = logger.NewNop()
	}
	engine, err := betting.New(cfg.BettingSystem, betting.WithLogger(log))
	if err != nil {
		return nil, err
	}
	if hist == nil {
		hist = exec
	}
	return &Trader{
		Exec:    exec,
		History: hist,
		Log:     log,
		Cfg:     cfg,
		Engine:  engine,
		Symbol:  symbol,
	}, nil
}

// NextSize sizes the next order from the latest history snapshot, rounded to
// the broker's lot constraints.
func (t *Trader) NextSize(ctx context.Context) (float64, betting.State, error) {
	recs, err := t.History.Transactions(ctx, t.Symbol)
	if err != nil {
		metrics.SizingErrors.WithLabelValues("history").Inc()
		return 0, betting.State{}, err
	}
	recs = history.Tail(recs, t.Cfg.ScannedTransactionCount)

	size, st, err := t.Engine.Explain(t.Cfg.UnitSize, recs, t.initSize())
	if err != nil {
		metrics.SizingErrors.WithLabelValues(betting.Reason(err)).Inc()
		t.Log.Error("sizing_failed", logger.String("symbol", t.Symbol), logger.Err(err))
		return 0, st, err
	}
	strategy := t.Engine.Strategy().String()
	metrics.SizesCalculated.WithLabelValues(strategy, st.Outcome.String()).Inc()
	metrics.NextSize.WithLabelValues(strategy).Set(size)
	return risk.RoundQty(size, t.Cfg), st, nil
}

// initSize prefers the configured value, then the account-derived one.
func (t *Trader) initSize() *float64 {
	if t.Cfg.InitSize > 0 {
		return betting.Init(t.Cfg.InitSize)
	}
	if units := risk.MarginUnits(t.Exec.Equity(), t.Cfg.UnitMarginRatio, t.Cfg.MarginPerUnit, t.Cfg); units > 0 {
		return betting.Init(units)
	}
	return nil
}

// Open enters side at price. An opposite position is closed first so its
// realized P&L feeds the sizing; an existing position on the same side is kept.
func (t *Trader) Open(ctx context.Context, side types.Side, price float64) error {
	qty, _ := t.Exec.Position(t.Symbol)
	switch {
	case qty > 0 && side == types.Buy, qty < 0 && side == types.Sell:
		return nil
	case qty != 0:
		if err := t.Close(ctx, price); err != nil {
			return err
		}
	}

	size, st, err := t.NextSize(ctx)
	if err != nil {
		return err
	}
	if size <= 0 {
		t.Log.Warn("size_below_min",
			logger.String("symbol", t.Symbol),
			logger.Float64("min_qty", t.Cfg.MinQty),
		)
		return nil
	}
	o := types.Order{
		Symbol:  t.Symbol,
		Side:    side,
		Qty:     size,
		Price:   price,
		Comment: st.Outcome.String(),
	}
	return t.submitOrder(o, "open")
}

// Close flattens the current position at the supplied price.
func (t *Trader) Close(_ context.Context, price float64) error {
	qty, _ := t.Exec.Position(t.Symbol)
	if qty == 0 {
		return nil
	}
	side := types.Sell
	if qty < 0 {
		side = types.Buy
	}
	o := types.Order{
		Symbol:  t.Symbol,
		Side:    side,
		Qty:     math.Abs(qty),
		Price:   price,
		Comment: "close",
	}
	return t.submitOrder(o, "close")
}

// submitOrder is a thin wrapper that records metrics and logs.
func (t *Trader) submitOrder(o types.Order, ctx string) error {
	err := t.Exec.Submit(o)
	if err != nil {
		t.Log.Error("order_submit_failed",
			logger.String("symbol", o.Symbol),
			logger.String("side", string(o.Side)),
			logger.Float64("qty", o.Qty),
			logger.Err(err),
		)
		return err
	}
	t.Log.Info("order_submitted",
		logger.String("symbol", o.Symbol),
		logger.String("side", string(o.Side)),
		logger.Float64("qty", o.Qty),
		logger.Float64("price", o.Price),
		logger.String("ctx", ctx),
	)
	metrics.OrdersSubmitted.WithLabelValues(t.Engine.Strategy().String()).Inc()
	return nil
}
