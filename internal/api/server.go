// Package api serves read-only JSON views of the portfolio and the Prometheus metrics.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"PortfolioLens/internal/calculator"
	"PortfolioLens/internal/collector"
	"PortfolioLens/internal/holdings"
	"PortfolioLens/internal/model"
	"PortfolioLens/internal/recorder"
)

// Portfolio exposes the current book.
type Portfolio interface {
	Book() model.Book
	Summary() model.Summary
	Watchlist() []model.WatchlistEntry
}

// Market computes the analysis views.
type Market interface {
	Performance(ctx context.Context, positions []model.Position, days int, now time.Time) (model.PerformanceReport, error)
	Risk(ctx context.Context, ticker string, now time.Time) (model.RiskReport, error)
	Research(ctx context.Context, ticker string) (model.ResearchSnapshot, error)
}

// Transactions lists the trade log.
type Transactions interface {
	ListTransactions(ctx context.Context, f recorder.TransactionFilter) ([]model.Transaction, error)
}

// Config holds server dependencies.
type Config struct {
	Addr         string
	Portfolio    Portfolio
	Market       Market
	Transactions Transactions
	Gatherer     prometheus.Gatherer
	Log          zerolog.Logger
}

// Server is the HTTP API.
type Server struct {
	router    *chi.Mux
	server    *http.Server
	portfolio Portfolio
	market    Market
	txs       Transactions
	now       func() time.Time
	log       zerolog.Logger
}

// New creates the server and registers its routes.
func New(cfg Config) *Server {
	s := &Server{
		router:    chi.NewRouter(),
		portfolio: cfg.Portfolio,
		market:    cfg.Market,
		txs:       cfg.Transactions,
		now:       func() time.Time { return time.Now().UTC() },
		log:       cfg.Log.With().Str("component", "api").Logger(),
	}
	gatherer := cfg.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.RequestID)
	s.router.Use(s.loggingMiddleware)
	s.router.Use(middleware.Timeout(60 * time.Second))
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	s.router.Get("/healthz", s.handleHealth)
	s.router.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	s.router.Route("/api", func(r chi.Router) {
		r.Get("/portfolio", s.handlePortfolio)
		r.Get("/performance", s.handlePerformance)
		r.Get("/risk/{ticker}", s.handleRisk)
		r.Get("/research/{ticker}", s.handleResearch)
		r.Get("/watchlist", s.handleWatchlist)
		r.Get("/transactions", s.handleTransactions)
	})

	s.server = &http.Server{
		Addr:         cfg.Addr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 90 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

// Handler returns the routed handler.
func (s *Server) Handler() http.Handler { return s.router }

// Start serves until Shutdown. It returns nil after a graceful shutdown.
func (s *Server) Start() error {
	s.log.Info().Str("addr", s.server.Addr).Msg("starting HTTP server")
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info().Msg("shutting down HTTP server")
	return s.server.Shutdown(ctx)
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.log.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("duration", time.Since(start)).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("HTTP request")
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type portfolioResponse struct {
	Summary     model.Summary    `json:"summary"`
	Positions   []model.Position `json:"positions"`
	LastRefresh time.Time        `json:"last_refresh"`
}

func (s *Server) handlePortfolio(w http.ResponseWriter, _ *http.Request) {
	book := s.portfolio.Book()
	s.writeJSON(w, http.StatusOK, portfolioResponse{
		Summary:     s.portfolio.Summary(),
		Positions:   book.Positions,
		LastRefresh: book.LastRefresh,
	})
}

func (s *Server) handlePerformance(w http.ResponseWriter, r *http.Request) {
	days := 30
	if v := r.URL.Query().Get("days"); v != "" {
		d, err := strconv.Atoi(v)
		if err != nil || !slices.Contains(collector.PerformanceRanges, d) {
			s.writeError(w, http.StatusBadRequest, "days must be one of 30, 90, 180, 365, 1095, 1825")
			return
		}
		days = d
	}
	report, err := s.market.Performance(r.Context(), s.portfolio.Book().Positions, days, s.now())
	if err != nil {
		s.writeError(w, analysisStatus(err), err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleRisk(w http.ResponseWriter, r *http.Request) {
	ticker := holdings.NormalizeTicker(chi.URLParam(r, "ticker"))
	report, err := s.market.Risk(r.Context(), ticker, s.now())
	if err != nil {
		s.writeError(w, analysisStatus(err), err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleResearch(w http.ResponseWriter, r *http.Request) {
	ticker := holdings.NormalizeTicker(chi.URLParam(r, "ticker"))
	snap, err := s.market.Research(r.Context(), ticker)
	if err != nil {
		s.writeError(w, analysisStatus(err), err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handleWatchlist(w http.ResponseWriter, _ *http.Request) {
	entries := s.portfolio.Watchlist()
	if entries == nil {
		entries = []model.WatchlistEntry{}
	}
	s.writeJSON(w, http.StatusOK, entries)
}

func (s *Server) handleTransactions(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var f recorder.TransactionFilter
	var err error
	if f.From, err = parseDay(q.Get("from")); err != nil {
		s.writeError(w, http.StatusBadRequest, "from must be YYYY-MM-DD")
		return
	}
	if f.To, err = parseDay(q.Get("to")); err != nil {
		s.writeError(w, http.StatusBadRequest, "to must be YYYY-MM-DD")
		return
	}
	f.Ticker = holdings.NormalizeTicker(q.Get("ticker"))
	switch strings.ToLower(q.Get("type")) {
	case "":
	case "buy":
		f.Type = model.TransactionBuy
	case "sell":
		f.Type = model.TransactionSell
	default:
		s.writeError(w, http.StatusBadRequest, "type must be buy or sell")
		return
	}

	txs, err := s.txs.ListTransactions(r.Context(), f)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if txs == nil {
		txs = []model.Transaction{}
	}
	s.writeJSON(w, http.StatusOK, txs)
}

func parseDay(v string) (time.Time, error) {
	if v == "" {
		return time.Time{}, nil
	}
	return time.Parse(time.DateOnly, v)
}

// analysisStatus maps calculation failures to 422 and everything else, mostly provider
// failures, to 502.
func analysisStatus(err error) int {
	switch {
	case errors.Is(err, calculator.ErrAlignmentEmpty),
		errors.Is(err, calculator.ErrInsufficientData),
		errors.Is(err, calculator.ErrMissing):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusBadGateway
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.log.Error().Err(err).Msg("failed to encode JSON response")
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"error": message})
}
