// Package server exposes the calculation engines over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"github.com/shopspring/decimal"
	"github.com/valyala/fasthttp"
	"github.com/vorsorge/rentenplan/internal/calculation"
	"github.com/vorsorge/rentenplan/internal/compare"
	"github.com/vorsorge/rentenplan/internal/domain"
	"github.com/vorsorge/rentenplan/internal/formscript"
	"github.com/vorsorge/rentenplan/internal/store"
)

const (
	apiPrefix   = "/api/v1"
	plansPrefix = apiPrefix + "/plans"
)

// ErrorResponse is the body of every non-2xx answer
type ErrorResponse struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

// Server handles the JSON API. Create it with New.
type Server struct {
	Rules    domain.TaxYearRules
	Defaults domain.SimulationParams

	Engine  *calculation.CalculationEngine
	Compare *compare.CompareEngine
	Taxes   *calculation.TaxCalculator
	Script  *formscript.Generator
	Store   store.Repository
	Logger  calculation.Logger

	MaxBodySize int
}

// DefaultParams are the values a partial simulation request is merged onto
func DefaultParams(rules domain.TaxYearRules) domain.SimulationParams {
	return domain.SimulationParams{
		Product:             domain.ProductSpec{Type: domain.ProductFund},
		CurrentAge:          30,
		RetirementAge:       67,
		FinalAge:            85,
		MonthlyContribution: decimal.NewFromInt(100),
		ExpectedReturn:      decimal.RequireFromString("0.05"),
		ManagementFee:       decimal.RequireFromString("0.002"),
		FrontLoadMode:       domain.FrontLoadFirstYear,
		TaxSettings:         domain.DefaultTaxSettings(rules, domain.Single),
	}
}

// New wires the engines for one tax year. A nil repository selects the in-memory store.
// Money is encoded as JSON numbers only when the process has set
// decimal.MarshalJSONWithoutQuotes; the rentenplan binary does so at startup.
func New(rules domain.TaxYearRules, repo store.Repository, logger calculation.Logger) *Server {
	if repo == nil {
		repo = store.NewMemoryRepository()
	}
	if logger == nil {
		logger = calculation.NopLogger{}
	}
	engine := calculation.NewCalculationEngineWithRules(rules)
	engine.SetLogger(logger)
	return &Server{
		Rules:       rules,
		Defaults:    DefaultParams(rules),
		Engine:      engine,
		Compare:     compare.NewCompareEngine(engine),
		Taxes:       calculation.NewTaxCalculatorWithRules(rules),
		Script:      formscript.NewGenerator(rules),
		Store:       repo,
		Logger:      logger,
		MaxBodySize: 1 << 20,
	}
}

// Handler returns the request router
func (s *Server) Handler() fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		start := time.Now()
		s.route(ctx)
		s.Logger.Debugf("%s %s -> %d (%s)", ctx.Method(), ctx.Path(), ctx.Response.StatusCode(), time.Since(start))
	}
}

func (s *Server) route(ctx *fasthttp.RequestCtx) {
	path := strings.TrimSuffix(string(ctx.Path()), "/")

	switch path {
	case "/health":
		if allow(ctx, fasthttp.MethodGet) {
			writeJSON(ctx, fasthttp.StatusOK, map[string]any{"status": "ok", "taxYear": s.Rules.Year})
		}
	case apiPrefix + "/simulate":
		if allow(ctx, fasthttp.MethodPost) {
			s.handleSimulate(ctx)
		}
	case apiPrefix + "/compare":
		if allow(ctx, fasthttp.MethodPost) {
			s.handleCompare(ctx)
		}
	case apiPrefix + "/income-tax":
		if allow(ctx, fasthttp.MethodPost) {
			s.handleIncomeTax(ctx)
		}
	case apiPrefix + "/report":
		if allow(ctx, fasthttp.MethodPost) {
			s.handleReport(ctx)
		}
	case apiPrefix + "/form-script":
		if allow(ctx, fasthttp.MethodGet) {
			s.handleFormScript(ctx)
		}
	case plansPrefix:
		if allow(ctx, fasthttp.MethodGet, fasthttp.MethodPost) {
			if ctx.IsPost() {
				s.handleSavePlan(ctx)
			} else {
				s.handleListPlans(ctx)
			}
		}
	default:
		if id, ok := strings.CutPrefix(path, plansPrefix+"/"); ok && id != "" && !strings.Contains(id, "/") {
			if allow(ctx, fasthttp.MethodGet, fasthttp.MethodDelete) {
				if ctx.IsDelete() {
					s.handleDeletePlan(ctx, id)
				} else {
					s.handleLoadPlan(ctx, id)
				}
			}
			return
		}
		writeError(ctx, fasthttp.StatusNotFound, "not found: "+path, "")
	}
}

// ListenAndServe serves until ctx ends, then shuts down gracefully
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &fasthttp.Server{
		Handler:            s.Handler(),
		Name:               "rentenplan",
		MaxRequestBodySize: s.MaxBodySize,
		ReadTimeout:        30 * time.Second,
		WriteTimeout:       60 * time.Second,
		IdleTimeout:        2 * time.Minute,
	}

	errCh := make(chan error, 1)
	go func() {
		s.Logger.Infof("listening on %s (tax year %d)", addr, s.Rules.Year)
		errCh <- srv.ListenAndServe(addr)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.ShutdownWithContext(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown failed: %w", err)
		}
		return nil
	}
}

func allow(ctx *fasthttp.RequestCtx, methods ...string) bool {
	m := string(ctx.Method())
	for _, allowed := range methods {
		if m == allowed {
			return true
		}
	}
	ctx.Response.Header.Set("Allow", strings.Join(methods, ", "))
	writeError(ctx, fasthttp.StatusMethodNotAllowed, "method not allowed: "+m, "")
	return false
}

func writeJSON(ctx *fasthttp.RequestCtx, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		ctx.Error("failed to encode response", fasthttp.StatusInternalServerError)
		return
	}
	ctx.SetContentType("application/json")
	ctx.SetStatusCode(status)
	ctx.SetBody(data)
}

func writeError(ctx *fasthttp.RequestCtx, status int, message, field string) {
	writeJSON(ctx, status, ErrorResponse{Status: status, Message: message, Field: field})
}

// writeFailure maps an engine error to a status code
func (s *Server) writeFailure(ctx *fasthttp.RequestCtx, err error) {
	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr):
		writeError(ctx, fasthttp.StatusUnprocessableEntity, err.Error(), verr.Field)
	case errors.Is(err, store.ErrNotFound):
		writeError(ctx, fasthttp.StatusNotFound, err.Error(), "")
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		writeError(ctx, fasthttp.StatusServiceUnavailable, err.Error(), "")
	default:
		s.Logger.Errorf("%s %s: %v", ctx.Method(), ctx.Path(), err)
		writeError(ctx, fasthttp.StatusInternalServerError, "internal error", "")
	}
}

// decode parses the request body into v; it writes a 400 and returns false on failure
func decode(ctx *fasthttp.RequestCtx, v any) bool {
	body := ctx.PostBody()
	if len(body) == 0 {
		writeError(ctx, fasthttp.StatusBadRequest, "request body is required", "")
		return false
	}
	if err := json.Unmarshal(body, v); err != nil {
		writeError(ctx, fasthttp.StatusBadRequest, "invalid request body: "+err.Error(), "")
		return false
	}
	return true
}
