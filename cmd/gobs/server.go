package main

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/evdnx/gobs/betting"
	"github.com/evdnx/gobs/config"
	"github.com/evdnx/gobs/history"
	"github.com/evdnx/gobs/journal"
	"github.com/evdnx/gobs/logger"
	"github.com/evdnx/gobs/metrics"
	"github.com/evdnx/gobs/risk"
	"github.com/gorilla/mux"
	"github.com/urfave/cli/v2"
)

const (
	defaultListenAddr = ":8080"
	maxBodyBytes      = 1 << 16
	shutdownTimeout   = 5 * time.Second
)

var serveCommand = &cli.Command{
	Name:  "serve",
	Usage: "serve next sizes and accept fills over HTTP, backed by the journal",
	Flags: append([]cli.Flag{
		&cli.StringFlag{Name: "listen", Aliases: []string{"l"}, Usage: "listen address (default " + defaultListenAddr + ")"},
	}, sizeFlags...),
	Action: serve,
}

// route mirrors one entry of the HTTP routing table.
type route struct {
	Name        string
	Method      string
	Pattern     string
	HandlerFunc http.HandlerFunc
}

type sizeResponse struct {
	Instrument  string  `json:"instrument"`
	Strategy    string  `json:"strategy"`
	Size        float64 `json:"size"`
	Qty         float64 `json:"qty"`
	LastSize    float64 `json:"last_size"`
	Outcome     string  `json:"outcome"`
	AllTimeHigh bool    `json:"all_time_high"`
	Closed      int     `json:"closed"`
}

type transactionResponse struct {
	Instrument string  `json:"instrument"`
	Units      float64 `json:"units"`
	PL         float64 `json:"pl"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// server answers sizing requests from the journal. The engine is shared by
// every request.
type server struct {
	cfg     config.SizingConfig
	journal *journal.Journal
	engine  *betting.Engine
	log     logger.Logger
}

func newServer(cfg config.SizingConfig, j *journal.Journal, log logger.Logger) (*server, error) {
	engine, err := betting.New(cfg.BettingSystem, betting.WithLogger(log))
	if err != nil {
		return nil, err
	}
	return &server{cfg: cfg, journal: j, engine: engine, log: log}, nil
}

func (s *server) router() *mux.Router {
	r := mux.NewRouter().StrictSlash(true)
	routes := []route{
		{"NextSize", http.MethodGet, "/v1/size/{instrument}", s.nextSize},
		{"RecordTransaction", http.MethodPost, "/v1/transactions/{instrument}", s.recordTransaction},
		{"Transactions", http.MethodGet, "/v1/transactions/{instrument}", s.transactions},
		{"Strategies", http.MethodGet, "/v1/strategies", s.strategies},
	}
	for _, rt := range routes {
		r.Methods(rt.Method).
			Path(rt.Pattern).
			Name(rt.Name).
			Handler(s.logRequests(rt.HandlerFunc, rt.Name))
	}
	r.Methods(http.MethodGet).Path("/metrics").Name("Metrics").Handler(metrics.Handler())
	return r
}

func (s *server) logRequests(inner http.Handler, name string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		inner.ServeHTTP(w, r)
		s.log.Debug("http_request",
			logger.String("method", r.Method),
			logger.String("uri", r.RequestURI),
			logger.String("route", name),
			logger.Any("elapsed", time.Since(start)),
		)
	})
}

func (s *server) nextSize(w http.ResponseWriter, r *http.Request) {
	instrument := mux.Vars(r)["instrument"]
	q := r.URL.Query()

	unit := s.cfg.UnitSize
	if v := q.Get("unit_size"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			s.fail(w, http.StatusBadRequest, errors.New("unit_size must be a number"))
			return
		}
		unit = f
	}
	reset := initSize(s.cfg)
	if v := q.Get("init_size"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			s.fail(w, http.StatusBadRequest, errors.New("init_size must be a number"))
			return
		}
		reset = betting.Init(f)
	}

	recs, err := s.journal.Transactions(r.Context(), instrument)
	if err != nil {
		metrics.SizingErrors.WithLabelValues("history").Inc()
		s.fail(w, http.StatusInternalServerError, err)
		return
	}
	recs = history.Tail(recs, s.cfg.ScannedTransactionCount)

	size, st, err := s.engine.Explain(unit, recs, reset)
	if err != nil {
		metrics.SizingErrors.WithLabelValues(betting.Reason(err)).Inc()
		s.fail(w, statusFor(err), err)
		return
	}
	strategy := s.engine.Strategy().String()
	metrics.SizesCalculated.WithLabelValues(strategy, st.Outcome.String()).Inc()
	metrics.NextSize.WithLabelValues(strategy).Set(size)

	writeJSON(w, http.StatusOK, sizeResponse{
		Instrument:  instrument,
		Strategy:    strategy,
		Size:        size,
		Qty:         risk.RoundQty(size, s.cfg),
		LastSize:    st.LastSize,
		Outcome:     st.Outcome.String(),
		AllTimeHigh: st.AllTimeHigh,
		Closed:      st.Closed,
	})
}

func (s *server) recordTransaction(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		s.fail(w, http.StatusBadRequest, err)
		return
	}
	rec, err := history.DecodeTransaction(body)
	if err != nil {
		s.fail(w, http.StatusBadRequest, err)
		return
	}
	rec.Instrument = mux.Vars(r)["instrument"]
	if err := s.journal.Append(r.Context(), rec); err != nil {
		s.fail(w, http.StatusInternalServerError, err)
		return
	}
	s.log.Info("transaction_recorded",
		logger.String("instrument", rec.Instrument),
		logger.Float64("units", rec.Units),
		logger.Float64("pl", rec.PL),
	)
	writeJSON(w, http.StatusCreated, transactionResponse{rec.Instrument, rec.Units, rec.PL})
}

func (s *server) transactions(w http.ResponseWriter, r *http.Request) {
	recs, err := s.journal.Transactions(r.Context(), mux.Vars(r)["instrument"])
	if err != nil {
		s.fail(w, statusFor(err), err)
		return
	}
	out := make([]transactionResponse, 0, len(recs))
	for _, rec := range recs {
		out = append(out, transactionResponse{rec.Instrument, rec.Units, rec.PL})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *server) strategies(w http.ResponseWriter, _ *http.Request) {
	kinds := betting.Strategies()
	names := make([]string, 0, len(kinds))
	for _, k := range kinds {
		names = append(names, k.String())
	}
	writeJSON(w, http.StatusOK, names)
}

func (s *server) fail(w http.ResponseWriter, status int, err error) {
	if status >= http.StatusInternalServerError {
		s.log.Error("http_error", logger.Int("status", status), logger.Err(err))
	} else {
		s.log.Warn("http_bad_request", logger.Int("status", status), logger.Err(err))
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// statusFor maps caller mistakes to 400 and everything else to 500.
func statusFor(err error) int {
	if betting.Reason(err) == "other" {
		return http.StatusInternalServerError
	}
	return http.StatusBadRequest
}

func serve(c *cli.Context) error {
	cfg, log, err := loadConfig(c)
	if err != nil {
		return err
	}
	if c.IsSet("listen") {
		cfg.ListenAddr = c.String("listen")
	}
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = defaultListenAddr
	}
	if cfg.JournalPath == "" {
		return errors.New("a journal is required (--journal or GOBS_JOURNAL)")
	}
	j, err := journal.Open(c.Context, cfg.JournalPath)
	if err != nil {
		return err
	}
	defer j.Close()

	s, err := newServer(cfg, j, log)
	if err != nil {
		return err
	}
	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           s.router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("http_listening", logger.String("addr", cfg.ListenAddr),
			logger.String("strategy", s.engine.Strategy().String()))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-c.Context.Done():
	}
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	log.Info("http_shutdown")
	return srv.Shutdown(ctx)
}
