package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/evdnx/gobs/betting"
	"github.com/evdnx/gobs/config"
	"github.com/evdnx/gobs/history"
	"github.com/evdnx/gobs/journal"
	"github.com/evdnx/gobs/logger"
	"github.com/evdnx/gobs/types"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/urfave/cli/v2"
)

var strategiesCommand = &cli.Command{
	Name:   "strategies",
	Usage:  "list the supported betting systems",
	Action: listStrategies,
}

var sizeFlags = []cli.Flag{
	&cli.StringFlag{Name: "betting-system", Aliases: []string{"b"}, Usage: "constant, martingale, paroli, dalembert, pyramid, oscarsgrind"},
	&cli.Float64Flag{Name: "unit-size", Aliases: []string{"u"}, Usage: "base stake in instrument units"},
	&cli.Float64Flag{Name: "init-size", Usage: "reset target replacing the unit size"},
	&cli.StringFlag{Name: "instrument", Aliases: []string{"i"}, Usage: "only consider this instrument, e.g. EUR_USD"},
	&cli.IntFlag{Name: "scanned-transaction-count", Usage: "only consider the latest N transactions (0 = all)"},
	&cli.StringFlag{Name: "journal", Aliases: []string{"j"}, Usage: "SQLite transaction journal"},
}

var sizeCommand = &cli.Command{
	Name:  "size",
	Usage: "print the size of the next trade",
	Flags: append([]cli.Flag{
		&cli.StringFlag{Name: "history", Usage: "JSON transaction listing, - for stdin"},
		&cli.BoolFlag{Name: "table", Usage: "show the derived state as a table"},
	}, sizeFlags...),
	Action: sizeNext,
}

var recordCommand = &cli.Command{
	Name:  "record",
	Usage: "append a transaction to the journal",
	Flags: []cli.Flag{
		&cli.StringFlag{Name: "journal", Aliases: []string{"j"}, Usage: "SQLite transaction journal"},
		&cli.StringFlag{Name: "instrument", Aliases: []string{"i"}, Required: true},
		&cli.StringFlag{Name: "units", Required: true, Usage: "signed fill size"},
		&cli.StringFlag{Name: "pl", Value: "0", Usage: "realized profit or loss"},
	},
	Action: recordTransaction,
}

func listStrategies(c *cli.Context) error {
	for _, k := range betting.Strategies() {
		fmt.Fprintln(c.App.Writer, k.String())
	}
	return nil
}

// loadConfig layers command flags over the config file and environment.
func loadConfig(c *cli.Context) (config.SizingConfig, logger.Logger, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return cfg, nil, err
	}
	if c.IsSet("betting-system") {
		cfg.BettingSystem = c.String("betting-system")
	}
	if c.IsSet("unit-size") {
		cfg.UnitSize = c.Float64("unit-size")
	}
	if c.IsSet("init-size") {
		cfg.InitSize = c.Float64("init-size")
	}
	if c.IsSet("instrument") {
		cfg.Instrument = c.String("instrument")
	}
	if c.IsSet("scanned-transaction-count") {
		cfg.ScannedTransactionCount = c.Int("scanned-transaction-count")
	}
	if c.IsSet("journal") {
		cfg.JournalPath = c.String("journal")
	}
	switch {
	case c.Bool("debug"):
		cfg.Log.Level = "debug"
	case c.Bool("info"):
		cfg.Log.Level = "info"
	}
	if err := cfg.Validate(); err != nil {
		return cfg, nil, err
	}
	log, err := logger.New(cfg.Log)
	if err != nil {
		return cfg, nil, err
	}
	log.Debug("config_loaded",
		logger.String("betting_system", cfg.BettingSystem),
		logger.Float64("unit_size", cfg.UnitSize),
		logger.String("instrument", cfg.Instrument),
	)
	return cfg, log, nil
}

func initSize(cfg config.SizingConfig) *float64 {
	if cfg.InitSize > 0 {
		return betting.Init(cfg.InitSize)
	}
	return nil
}

func sizeNext(c *cli.Context) error {
	cfg, log, err := loadConfig(c)
	if err != nil {
		return err
	}
	recs, err := readHistory(c.Context, c.String("history"), cfg, c.App.Reader)
	if err != nil {
		return err
	}
	engine, err := betting.New(cfg.BettingSystem, betting.WithLogger(log))
	if err != nil {
		return err
	}
	size, st, err := engine.Explain(cfg.UnitSize, recs, initSize(cfg))
	if err != nil {
		return err
	}
	if !c.Bool("table") {
		fmt.Fprintln(c.App.Writer, strconv.FormatFloat(size, 'f', -1, 64))
		return nil
	}
	renderState(c.App.Writer, engine.Strategy(), st, size)
	return nil
}

// readHistory loads the snapshot from a JSON file or the journal, newest
// ScannedTransactionCount records of cfg.Instrument.
func readHistory(ctx context.Context, path string, cfg config.SizingConfig, stdin io.Reader) ([]types.TransactionRecord, error) {
	var recs []types.TransactionRecord
	switch {
	case path != "" && cfg.JournalPath != "":
		return nil, errors.New("use either --history or --journal")
	case path != "":
		var data []byte
		var err error
		if path == "-" {
			data, err = io.ReadAll(stdin)
		} else {
			data, err = os.ReadFile(path)
		}
		if err != nil {
			return nil, err
		}
		if recs, err = history.DecodeJSON(data); err != nil {
			return nil, err
		}
		recs = history.FilterInstrument(recs, cfg.Instrument)
	case cfg.JournalPath != "":
		j, err := journal.Open(ctx, cfg.JournalPath)
		if err != nil {
			return nil, err
		}
		defer j.Close()
		if recs, err = j.Transactions(ctx, cfg.Instrument); err != nil {
			return nil, err
		}
	}
	return history.Tail(recs, cfg.ScannedTransactionCount), nil
}

func renderState(w io.Writer, k betting.StrategyKind, st betting.State, size float64) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"Strategy", "Last Size", "Outcome", "All-Time High", "Closed", "Next Size"})
	t.AppendRow(table.Row{k.String(), st.LastSize, st.Outcome.String(), st.AllTimeHigh, st.Closed, size})
	t.Render()
}

func recordTransaction(c *cli.Context) error {
	cfg, log, err := loadConfig(c)
	if err != nil {
		return err
	}
	if cfg.JournalPath == "" {
		return errors.New("a journal is required (--journal or GOBS_JOURNAL)")
	}
	recs, err := history.Decode([]history.RawRecord{{
		Instrument: cfg.Instrument,
		Units:      c.String("units"),
		PL:         c.String("pl"),
	}})
	if err != nil {
		return err
	}
	j, err := journal.Open(c.Context, cfg.JournalPath)
	if err != nil {
		return err
	}
	defer j.Close()
	if err := j.Append(c.Context, recs[0]); err != nil {
		return err
	}
	log.Info("transaction_recorded",
		logger.String("instrument", recs[0].Instrument),
		logger.Float64("units", recs[0].Units),
		logger.Float64("pl", recs[0].PL),
	)
	return nil
}
