package journal

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	"github.com/evdnx/gobs/betting"
	"github.com/evdnx/gobs/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTemp(t *testing.T) *Journal {
	t.Helper()
	j, err := Open(context.Background(), filepath.Join(t.TempDir(), "journal.db"))
	require.NoError(t, err)
	t.Cleanup(func() { j.Close() })
	return j
}

func TestAppendAndSnapshotInOrder(t *testing.T) {
	ctx := context.Background()
	j := openTemp(t)
	in := []types.TransactionRecord{
		{Instrument: "EUR_USD", Units: 10},
		{Instrument: "USD_JPY", Units: 3, PL: 1.5},
		{Instrument: "EUR_USD", Units: -10, PL: -15},
		{Instrument: "EUR_USD", Units: 20, PL: 0},
		{Instrument: "EUR_USD", Units: -20, PL: -30},
	}
	for _, r := range in {
		require.NoError(t, j.Append(ctx, r))
	}

	eur, err := j.Transactions(ctx, "EUR_USD")
	require.NoError(t, err)
	assert.Equal(t, []types.TransactionRecord{in[0], in[2], in[3], in[4]}, eur)

	all, err := j.Transactions(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, in, all)

	e, err := betting.New("martingale")
	require.NoError(t, err)
	size, err := e.CalculateSize(10, eur, nil)
	require.NoError(t, err)
	assert.Equal(t, 40.0, size)
}

func TestSnapshotIsIndependent(t *testing.T) {
	ctx := context.Background()
	j := openTemp(t)
	require.NoError(t, j.Append(ctx, types.TransactionRecord{Instrument: "X", Units: 1}))

	snap, err := j.Transactions(ctx, "X")
	require.NoError(t, err)
	require.NoError(t, j.Append(ctx, types.TransactionRecord{Instrument: "X", Units: 2}))
	assert.Len(t, snap, 1)
}

func TestConcurrentAppends(t *testing.T) {
	ctx := context.Background()
	j := openTemp(t)
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			assert.NoError(t, j.Append(ctx, types.TransactionRecord{Instrument: "X", Units: float64(i + 1)}))
		}(i)
	}
	wg.Wait()
	recs, err := j.Transactions(ctx, "X")
	require.NoError(t, err)
	assert.Len(t, recs, 20)
}

func TestEmptyJournal(t *testing.T) {
	recs, err := openTemp(t).Transactions(context.Background(), "EUR_USD")
	require.NoError(t, err)
	assert.Empty(t, recs)
}
