package risk

import (
	"github.com/evdnx/gobs/config"
	"github.com/shopspring/decimal"
)

// CalcQty sizes a trade so that hitting the stop loses equity*maxRisk.
func CalcQty(equity, maxRisk, stopLossPct, price float64, cfg config.SizingConfig) float64 {
	// Dollar risk per trade
	riskAmt := equity * maxRisk
	// Stop‑loss distance in dollars
	slDist := price * stopLossPct
	if slDist == 0 {
		return 0
	}
	return RoundQty(riskAmt/slDist, cfg)
}

// MarginUnits derives an initial size from the account: the number of units
// whose margin equals unitMarginRatio of nav.
func MarginUnits(nav, unitMarginRatio, marginPerUnit float64, cfg config.SizingConfig) float64 {
	if nav <= 0 || unitMarginRatio <= 0 || marginPerUnit <= 0 {
		return 0
	}
	return RoundQty(nav*unitMarginRatio/marginPerUnit, cfg)
}

// RoundQty floors qty to the broker step, rounds to QuantityPrecision and
// returns 0 below MinQty. A non-positive StepSize skips the step.
func RoundQty(qty float64, cfg config.SizingConfig) float64 {
	if qty <= 0 {
		return 0
	}
	d := decimal.NewFromFloat(qty)
	if cfg.StepSize > 0 {
		step := decimal.NewFromFloat(cfg.StepSize)
		d = d.Div(step).Floor().Mul(step)
	}
	d = d.Round(int32(cfg.QuantityPrecision))
	out, _ := d.Float64()
	if out < cfg.MinQty {
		return 0
	}
	return out
}
