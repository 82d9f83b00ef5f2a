// Package journal is an append-only transaction log shared by the components
// that place trades and the ones that size them.
package journal

import (
	"context"
	"database/sql"
	"strconv"
	"sync"

	"github.com/evdnx/gobs/history"
	"github.com/evdnx/gobs/types"
	"github.com/pkg/errors"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS transactions (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	instrument TEXT NOT NULL,
	units      TEXT NOT NULL,
	pl         TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_transactions_instrument ON transactions(instrument, id);`

// Journal stores transactions in a SQLite database. Writers are serialised;
// every read returns an independent snapshot.
type Journal struct {
	mu sync.Mutex
	db *sql.DB
}

// Open creates the database file and schema if needed.
func Open(ctx context.Context, path string) (*Journal, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.Wrapf(err, "open journal %s", path)
	}
	db.SetMaxOpenConns(1)
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "create journal schema")
	}
	return &Journal{db: db}, nil
}

// Append adds rec at the end of the log.
func (j *Journal) Append(ctx context.Context, rec types.TransactionRecord) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	_, err := j.db.ExecContext(ctx,
		`INSERT INTO transactions (instrument, units, pl) VALUES (?, ?, ?)`,
		rec.Instrument, formatFloat(rec.Units), formatFloat(rec.PL))
	return errors.Wrap(err, "append transaction")
}

// Transactions returns the log of instrument, oldest first. An empty
// instrument returns every entry.
func (j *Journal) Transactions(ctx context.Context, instrument string) ([]types.TransactionRecord, error) {
	rows, err := j.db.QueryContext(ctx,
		`SELECT instrument, units, pl FROM transactions
		 WHERE ? = '' OR instrument = ? ORDER BY id`, instrument, instrument)
	if err != nil {
		return nil, errors.Wrap(err, "query transactions")
	}
	defer rows.Close()

	var raw []history.RawRecord
	for rows.Next() {
		var r history.RawRecord
		if err := rows.Scan(&r.Instrument, &r.Units, &r.PL); err != nil {
			return nil, errors.Wrap(err, "scan transaction")
		}
		raw = append(raw, r)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "iterate transactions")
	}
	return history.Decode(raw)
}

func (j *Journal) Close() error {
	return j.db.Close()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
