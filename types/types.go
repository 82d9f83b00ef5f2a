package types

type Side string

const (
	Buy  Side = "BUY"
	Sell Side = "SELL"
)

type Order struct {
	Symbol string
	Side   Side
	Qty    float64
	Price  float64 // limit price; 0 = market
	// meta
	Comment string
}

// TransactionRecord is one entry of an instrument's trade history.
// Units is signed (direction in the sign, 0 = no position change, e.g. a
// financing entry). PL is the realized profit or loss, 0 when nothing closed.
type TransactionRecord struct {
	Instrument string
	Units      float64
	PL         float64
}
