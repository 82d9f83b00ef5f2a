// Package history turns broker transaction listings into the ordered records
// the sizing engine consumes.
package history

import (
	"bytes"
	"math"

	"github.com/buger/jsonparser"
	"github.com/evdnx/gobs/betting"
	"github.com/evdnx/gobs/types"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// RawRecord is a transaction as brokers usually deliver it: numbers as strings.
type RawRecord struct {
	Instrument string
	Units      string
	PL         string
}

// Decode converts raw records, oldest first. An empty field reads as 0; a
// field that is not a number fails the whole call with ErrMalformedRecord.
func Decode(raw []RawRecord) ([]types.TransactionRecord, error) {
	out := make([]types.TransactionRecord, len(raw))
	for i, r := range raw {
		units, err := parseNumber(r.Units)
		if err != nil {
			return nil, errors.Wrapf(err, "record %d: units %q", i, r.Units)
		}
		pl, err := parseNumber(r.PL)
		if err != nil {
			return nil, errors.Wrapf(err, "record %d: pl %q", i, r.PL)
		}
		out[i] = types.TransactionRecord{Instrument: r.Instrument, Units: units, PL: pl}
	}
	return out, nil
}

// DecodeJSON accepts either a bare array of transactions or an object with a
// "transactions" array. units and pl may be JSON strings or numbers.
func DecodeJSON(data []byte) ([]types.TransactionRecord, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, nil
	}
	var path []string
	if data[0] == '{' {
		path = []string{"transactions"}
	}

	var raw []RawRecord
	var firstErr error
	_, err := jsonparser.ArrayEach(data, func(value []byte, _ jsonparser.ValueType, _ int, err error) {
		if firstErr != nil {
			return
		}
		if err != nil {
			firstErr = err
			return
		}
		r, err := rawFromJSON(value, len(raw))
		if err != nil {
			firstErr = err
			return
		}
		raw = append(raw, r)
	}, path...)
	if err != nil {
		if errors.Is(err, jsonparser.KeyPathNotFoundError) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "decode transactions")
	}
	if firstErr != nil {
		return nil, firstErr
	}
	return Decode(raw)
}

// DecodeTransaction decodes a single JSON transaction object.
func DecodeTransaction(data []byte) (types.TransactionRecord, error) {
	r, err := rawFromJSON(data, 0)
	if err != nil {
		return types.TransactionRecord{}, err
	}
	recs, err := Decode([]RawRecord{r})
	if err != nil {
		return types.TransactionRecord{}, err
	}
	return recs[0], nil
}

func rawFromJSON(value []byte, idx int) (RawRecord, error) {
	var r RawRecord
	var err error
	if r.Units, err = numericField(value, "units"); err != nil {
		return r, errors.Wrapf(err, "record %d", idx)
	}
	if r.PL, err = numericField(value, "pl"); err != nil {
		return r, errors.Wrapf(err, "record %d", idx)
	}
	r.Instrument, _ = jsonparser.GetString(value, "instrument")
	return r, nil
}

func numericField(value []byte, key string) (string, error) {
	v, typ, _, err := jsonparser.Get(value, key)
	switch {
	case errors.Is(err, jsonparser.KeyPathNotFoundError):
		return "", nil
	case err != nil:
		return "", err
	}
	switch typ {
	case jsonparser.String, jsonparser.Number:
		return string(v), nil
	case jsonparser.Null:
		return "", nil
	default:
		return "", errors.Wrapf(betting.ErrMalformedRecord, "%s is a %s", key, typ)
	}
}

func parseNumber(s string) (float64, error) {
	if s == "" {
		return 0, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, errors.Wrap(betting.ErrMalformedRecord, err.Error())
	}
	f, _ := d.Float64()
	if math.IsInf(f, 0) {
		return 0, errors.Wrapf(betting.ErrMalformedRecord, "%s overflows float64", s)
	}
	return f, nil
}

// FilterInstrument keeps the records of one instrument. An empty instrument
// keeps everything.
func FilterInstrument(recs []types.TransactionRecord, instrument string) []types.TransactionRecord {
	if instrument == "" {
		return recs
	}
	out := make([]types.TransactionRecord, 0, len(recs))
	for _, r := range recs {
		if r.Instrument == instrument {
			out = append(out, r)
		}
	}
	return out
}

// Tail returns the last n records; n <= 0 returns all of them.
func Tail(recs []types.TransactionRecord, n int) []types.TransactionRecord {
	if n <= 0 || n >= len(recs) {
		return recs
	}
	return recs[len(recs)-n:]
}
