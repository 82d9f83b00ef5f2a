package history

import (
	"testing"

	"github.com/evdnx/gobs/betting"
	"github.com/evdnx/gobs/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeNumericStrings(t *testing.T) {
	recs, err := Decode([]RawRecord{
		{Instrument: "EUR_USD", Units: "10", PL: "0.0000"},
		{Instrument: "EUR_USD", Units: "-10", PL: "-15.25"},
		{Instrument: "EUR_USD", Units: "", PL: "0.13"},
	})
	require.NoError(t, err)
	assert.Equal(t, []types.TransactionRecord{
		{Instrument: "EUR_USD", Units: 10, PL: 0},
		{Instrument: "EUR_USD", Units: -10, PL: -15.25},
		{Instrument: "EUR_USD", Units: 0, PL: 0.13},
	}, recs)
}

func TestDecodeRejectsNonNumeric(t *testing.T) {
	_, err := Decode([]RawRecord{{Units: "10", PL: "1"}, {Units: "ten", PL: "0"}})
	require.Error(t, err)
	assert.ErrorIs(t, err, betting.ErrMalformedRecord)
	assert.Contains(t, err.Error(), "record 1")
}

func TestDecodeJSONBrokerEnvelope(t *testing.T) {
	data := []byte(`{
		"lastTransactionID": "42",
		"transactions": [
			{"id": "40", "type": "ORDER_FILL", "instrument": "USD_JPY", "units": "1000", "pl": "0.0000"},
			{"id": "41", "type": "DAILY_FINANCING", "instrument": "USD_JPY", "financing": "-0.12"},
			{"id": "42", "type": "ORDER_FILL", "instrument": "USD_JPY", "units": -1000, "pl": -230.5}
		]
	}`)
	recs, err := DecodeJSON(data)
	require.NoError(t, err)
	require.Len(t, recs, 3)
	assert.Equal(t, types.TransactionRecord{Instrument: "USD_JPY", Units: 1000}, recs[0])
	assert.Equal(t, types.TransactionRecord{Instrument: "USD_JPY"}, recs[1])
	assert.Equal(t, types.TransactionRecord{Instrument: "USD_JPY", Units: -1000, PL: -230.5}, recs[2])
}

func TestDecodeJSONBareArray(t *testing.T) {
	recs, err := DecodeJSON([]byte(`[{"units":"10","pl":"0"},{"units":"10","pl":"-15"},{"units":"20","pl":"-30"}]`))
	require.NoError(t, err)
	e, err := betting.New("Martingale")
	require.NoError(t, err)
	size, err := e.CalculateSize(10, recs, nil)
	require.NoError(t, err)
	assert.Equal(t, 40.0, size)
}

func TestDecodeJSONEdgeCases(t *testing.T) {
	recs, err := DecodeJSON([]byte("  "))
	require.NoError(t, err)
	assert.Empty(t, recs)

	recs, err = DecodeJSON([]byte(`{"lastTransactionID":"1"}`))
	require.NoError(t, err)
	assert.Empty(t, recs)

	_, err = DecodeJSON([]byte(`[{"units":{"v":1},"pl":"0"}]`))
	assert.ErrorIs(t, err, betting.ErrMalformedRecord)

	_, err = DecodeJSON([]byte(`[{"units":"1x","pl":"0"}]`))
	assert.ErrorIs(t, err, betting.ErrMalformedRecord)

	_, err = DecodeJSON([]byte(`[{"units":"1","pl":"1e400"}]`))
	assert.ErrorIs(t, err, betting.ErrMalformedRecord)
}

func TestFilterAndTail(t *testing.T) {
	recs := []types.TransactionRecord{
		{Instrument: "EUR_USD", Units: 1},
		{Instrument: "USD_JPY", Units: 2},
		{Instrument: "EUR_USD", Units: 3},
		{Instrument: "EUR_USD", Units: 4},
	}
	eur := FilterInstrument(recs, "EUR_USD")
	assert.Len(t, eur, 3)
	assert.Len(t, FilterInstrument(recs, ""), 4)

	assert.Equal(t, []types.TransactionRecord{{Instrument: "EUR_USD", Units: 3}, {Instrument: "EUR_USD", Units: 4}}, Tail(eur, 2))
	assert.Len(t, Tail(eur, 0), 3)
	assert.Len(t, Tail(eur, 10), 3)
}

func TestDecodeTransaction(t *testing.T) {
	rec, err := DecodeTransaction([]byte(`{"instrument":"GBP_USD","units":"-250","pl":"12.5"}`))
	require.NoError(t, err)
	assert.Equal(t, types.TransactionRecord{Instrument: "GBP_USD", Units: -250, PL: 12.5}, rec)

	_, err = DecodeTransaction([]byte(`{"units":true}`))
	assert.ErrorIs(t, err, betting.ErrMalformedRecord)
}
