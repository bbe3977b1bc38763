// Package server exposes the pricing core over HTTP.
//
// Routes:
//
//	GET  /health    liveness
//	POST /price     one contract → valuation
//	POST /batch     contracts → index-aligned valuations
//	POST /strike    strike for a target delta
//	POST /scenario  scenario document → report rows
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/contactkeval/option-pricer/internal/config"
	"github.com/contactkeval/option-pricer/internal/logger"
	"github.com/contactkeval/option-pricer/internal/pricing"
	"github.com/contactkeval/option-pricer/internal/report"
	"github.com/contactkeval/option-pricer/internal/scenario"
)

const maxBodyBytes = 1 << 20

// ContractRequest is the wire form of a contract. Rate falls back to the
// server's configured rate when omitted.
type ContractRequest struct {
	Type       string   `json:"type"`
	Spot       float64  `json:"spot"`
	Strike     float64  `json:"strike"`
	Years      float64  `json:"years"`
	Rate       *float64 `json:"rate,omitempty"`
	Volatility float64  `json:"volatility"`
}

// PriceResponse carries the valuation plus the per-point conversions callers
// most often get wrong.
type PriceResponse struct {
	Valuation    pricing.Valuation `json:"valuation"`
	VegaPerPoint float64           `json:"vega_per_point"`
	ThetaPerDay  float64           `json:"theta_per_day"`
}

// BatchItem is one slot of a batch response.
type BatchItem struct {
	Index     int                `json:"index"`
	Valuation *pricing.Valuation `json:"valuation,omitempty"`
	Error     string             `json:"error,omitempty"`
}

// StrikeRequest asks for the strike matching a target delta.
type StrikeRequest struct {
	Type       string   `json:"type"`
	Spot       float64  `json:"spot"`
	Delta      float64  `json:"delta"`
	Years      float64  `json:"years"`
	Rate       *float64 `json:"rate,omitempty"`
	Volatility float64  `json:"volatility"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Server routes HTTP requests to the pricing core.
type Server struct {
	rate    float64
	workers int
	router  *mux.Router
}

// New builds a server using the rate and worker settings from cfg.
func New(cfg config.Config) *Server {
	s := &Server{rate: cfg.RiskFreeRate, workers: cfg.Workers, router: mux.NewRouter()}

	s.router.Use(requestID)
	s.router.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	s.router.HandleFunc("/price", s.handlePrice).Methods(http.MethodPost)
	s.router.HandleFunc("/batch", s.handleBatch).Methods(http.MethodPost)
	s.router.HandleFunc("/strike", s.handleStrike).Methods(http.MethodPost)
	s.router.HandleFunc("/scenario", s.handleScenario).Methods(http.MethodPost)
	return s
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Infof("event=server_start listen=%s", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		logger.Infof("event=server_stop listen=%s", addr)
		return srv.Shutdown(shutdownCtx)
	}
}

func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-Id")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-Id", id)

		start := time.Now()
		next.ServeHTTP(w, r)
		logger.WithFields(map[string]any{
			"request_id": id,
			"method":     r.Method,
			"path":       r.URL.Path,
			"elapsed":    time.Since(start).String(),
		}).Debug("request")
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handlePrice(w http.ResponseWriter, r *http.Request) {
	var req ContractRequest
	if !decode(w, r, &req) {
		return
	}

	c, err := s.contract(req)
	if err != nil {
		writeError(w, err)
		return
	}
	v, err := pricing.Valuate(c)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, PriceResponse{
		Valuation:    v,
		VegaPerPoint: v.VegaPerPoint(),
		ThetaPerDay:  v.ThetaPerDay(),
	})
}

func (s *Server) handleBatch(w http.ResponseWriter, r *http.Request) {
	var reqs []ContractRequest
	if !decode(w, r, &reqs) {
		return
	}

	items := make([]BatchItem, len(reqs))
	contracts := make([]pricing.OptionContract, len(reqs))
	for i, req := range reqs {
		items[i].Index = i
		c, err := s.contract(req)
		if err != nil {
			items[i].Error = err.Error()
			continue
		}
		contracts[i] = c
	}

	// unconstructed slots fail inside Valuate and keep their construction error
	for _, res := range pricing.ValuateBatch(r.Context(), contracts, s.workers) {
		if items[res.Index].Error != "" {
			continue
		}
		if res.Err != nil {
			items[res.Index].Error = res.Err.Error()
			continue
		}
		v := res.Valuation
		items[res.Index].Valuation = &v
	}

	writeJSON(w, http.StatusOK, items)
}

func (s *Server) handleStrike(w http.ResponseWriter, r *http.Request) {
	var req StrikeRequest
	if !decode(w, r, &req) {
		return
	}

	typ, err := pricing.ParseOptionType(req.Type)
	if err != nil {
		writeError(w, err)
		return
	}
	rate := s.rate
	if req.Rate != nil {
		rate = *req.Rate
	}

	strike, err := pricing.StrikeFromDelta(typ, req.Spot, req.Delta, req.Years, rate, req.Volatility)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]float64{"strike": strike})
}

func (s *Server) handleScenario(w http.ResponseWriter, r *http.Request) {
	var sc scenario.Scenario
	if !decode(w, r, &sc) {
		return
	}

	legs, err := sc.Resolve(s.rate)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report.Result{Scenario: sc.Name, Rows: report.FromResolved(legs)})
}

func (s *Server) contract(req ContractRequest) (pricing.OptionContract, error) {
	typ, err := pricing.ParseOptionType(req.Type)
	if err != nil {
		return pricing.OptionContract{}, err
	}
	rate := s.rate
	if req.Rate != nil {
		rate = *req.Rate
	}
	return pricing.NewOptionContract(typ, req.Spot, req.Strike, req.Years, rate, req.Volatility)
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "malformed request: " + err.Error()})
		return false
	}
	return true
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, pricing.ErrInvalidParameter),
		errors.Is(err, pricing.ErrNumericOverflow),
		errors.Is(err, scenario.ErrInvalidStrikeExpression),
		errors.Is(err, scenario.ErrLegIndexOutOfRange),
		errors.Is(err, scenario.ErrMissingExpiry):
		status = http.StatusUnprocessableEntity
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Errorf("event=encode_response_failed err=%v", err)
	}
}
