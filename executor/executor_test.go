package executor

import (
	"context"
	"errors"
	"testing"

	"github.com/evdnx/gobs/types"
)

func TestPaperExecutor_SubmitAndPosition(t *testing.T) {
	ex := NewPaperExecutor(10_000, nil)

	o := types.Order{
		Symbol: "BTCUSD",
		Side:   types.Buy,
		Qty:    0.5,
		Price:  20_000,
	}
	if err := ex.Submit(o); err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if eq := ex.Equity(); eq != 0 {
		t.Fatalf("expected equity 0 after buying 0.5*20000, got %v", eq)
	}
	qty, avg := ex.Position("BTCUSD")
	if qty != 0.5 || avg != 20_000 {
		t.Fatalf("unexpected position: qty=%v avg=%v", qty, avg)
	}
}

func TestPaperExecutor_InsufficientCash(t *testing.T) {
	ex := NewPaperExecutor(1000, nil)
	o := types.Order{
		Symbol: "ETHUSD",
		Side:   types.Buy,
		Qty:    1,
		Price:  2000,
	}
	if err := ex.Submit(o); !errors.Is(err, ErrInsufficientCash) {
		t.Fatalf("expected ErrInsufficientCash, got %v", err)
	}
	if eq := ex.Equity(); eq != 1000 {
		t.Fatalf("equity should stay unchanged on insufficient cash")
	}
	txns, _ := ex.Transactions(context.Background(), "ETHUSD")
	if len(txns) != 0 {
		t.Fatalf("rejected order must not be journaled, got %v", txns)
	}
}

func TestPaperExecutor_RealizedPLOnClose(t *testing.T) {
	ex := NewPaperExecutor(10_000, nil)
	steps := []types.Order{
		{Symbol: "EUR_USD", Side: types.Buy, Qty: 10, Price: 100},
		{Symbol: "EUR_USD", Side: types.Sell, Qty: 10, Price: 98.5},
		{Symbol: "EUR_USD", Side: types.Sell, Qty: 20, Price: 100},
		{Symbol: "EUR_USD", Side: types.Buy, Qty: 20, Price: 101.5},
	}
	for _, o := range steps {
		if err := ex.Submit(o); err != nil {
			t.Fatalf("submit %+v failed: %v", o, err)
		}
	}
	want := []types.TransactionRecord{
		{Instrument: "EUR_USD", Units: 10, PL: 0},
		{Instrument: "EUR_USD", Units: -10, PL: -15},
		{Instrument: "EUR_USD", Units: -20, PL: 0},
		{Instrument: "EUR_USD", Units: 20, PL: -30},
	}
	got, err := ex.Transactions(context.Background(), "EUR_USD")
	if err != nil {
		t.Fatalf("transactions: %v", err)
	}
	if len(got) != len(want) {
		t.Fatalf("expected %d transactions, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("txn %d: expected %+v, got %+v", i, want[i], got[i])
		}
	}
	if qty, _ := ex.Position("EUR_USD"); qty != 0 {
		t.Fatalf("expected flat position, got %v", qty)
	}
}

func TestPaperExecutor_FlipOpensAtFillPrice(t *testing.T) {
	ex := NewPaperExecutor(10_000, nil)
	_ = ex.Submit(types.Order{Symbol: "X", Side: types.Buy, Qty: 5, Price: 10})
	if err := ex.Submit(types.Order{Symbol: "X", Side: types.Sell, Qty: 8, Price: 12}); err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	qty, avg := ex.Position("X")
	if qty != -3 || avg != 12 {
		t.Fatalf("expected short 3 @ 12, got %v @ %v", qty, avg)
	}
	txns, _ := ex.Transactions(context.Background(), "")
	if last := txns[len(txns)-1]; last.PL != 10 {
		t.Fatalf("expected realized pl 10 on the closed part, got %v", last.PL)
	}
}
