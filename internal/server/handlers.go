package server

import (
	"bytes"
	"context"
	"time"

	json "github.com/goccy/go-json"
	"github.com/valyala/fasthttp"
	"github.com/vorsorge/rentenplan/internal/compare"
	"github.com/vorsorge/rentenplan/internal/domain"
	"github.com/vorsorge/rentenplan/internal/report"
)

const requestTimeout = 30 * time.Second

// CompareRequest is the body of /compare and /report
type CompareRequest struct {
	Plans        []json.RawMessage `json:"plans"`
	Milestones   []int             `json:"milestones,omitempty"`
	BaseScenario string            `json:"baseScenario,omitempty"`
	Title        string            `json:"title,omitempty"`
}

// mergeParams decodes a partial plan on top of the defaults. Fields absent from the
// JSON keep their default value.
func (s *Server) mergeParams(raw []byte) (domain.SimulationParams, error) {
	params := s.Defaults
	params.MilestoneAges = append([]int(nil), s.Defaults.MilestoneAges...)
	if err := json.Unmarshal(raw, &params); err != nil {
		return domain.SimulationParams{}, err
	}
	return params, nil
}

func (s *Server) handleSimulate(ctx *fasthttp.RequestCtx) {
	body := ctx.PostBody()
	if len(bytes.TrimSpace(body)) == 0 {
		body = []byte("{}")
	}
	params, err := s.mergeParams(body)
	if err != nil {
		writeError(ctx, fasthttp.StatusBadRequest, "invalid request body: "+err.Error(), "")
		return
	}

	reqCtx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()
	result, err := s.Engine.Simulate(reqCtx, params)
	if err != nil {
		s.writeFailure(ctx, err)
		return
	}
	writeJSON(ctx, fasthttp.StatusOK, result)
}

// comparePlans decodes and runs a comparison request; it writes the error response itself
func (s *Server) comparePlans(ctx *fasthttp.RequestCtx) (*CompareRequest, []domain.SimulationParams, *compare.ComparisonSummary, bool) {
	var req CompareRequest
	if !decode(ctx, &req) {
		return nil, nil, nil, false
	}
	if len(req.Plans) == 0 {
		writeError(ctx, fasthttp.StatusUnprocessableEntity, "at least one plan is required", "plans")
		return nil, nil, nil, false
	}

	plans := make([]domain.SimulationParams, len(req.Plans))
	for i, raw := range req.Plans {
		p, err := s.mergeParams(raw)
		if err != nil {
			writeError(ctx, fasthttp.StatusBadRequest, "invalid plan: "+err.Error(), "plans")
			return nil, nil, nil, false
		}
		plans[i] = p
	}

	reqCtx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()
	summary, err := s.Compare.Compare(reqCtx, plans, compare.CompareOptions{
		BaseScenarioName: req.BaseScenario,
		Milestones:       req.Milestones,
	})
	if err != nil {
		s.writeFailure(ctx, err)
		return nil, nil, nil, false
	}
	return &req, plans, summary, true
}

func (s *Server) handleCompare(ctx *fasthttp.RequestCtx) {
	if _, _, summary, ok := s.comparePlans(ctx); ok {
		writeJSON(ctx, fasthttp.StatusOK, summary)
	}
}

func (s *Server) handleReport(ctx *fasthttp.RequestCtx) {
	req, plans, summary, ok := s.comparePlans(ctx)
	if !ok {
		return
	}
	script, err := s.Script.Script()
	if err != nil {
		s.writeFailure(ctx, err)
		return
	}
	pdf, err := report.GeneratePDF(report.Input{
		Title:   req.Title,
		Summary: summary,
		Plans:   plans,
		Rules:   s.Rules,
		Script:  script,
	})
	if err != nil {
		s.writeFailure(ctx, err)
		return
	}
	ctx.SetContentType("application/pdf")
	ctx.Response.Header.Set("Content-Disposition", `attachment; filename="rentenplan.pdf"`)
	ctx.SetStatusCode(fasthttp.StatusOK)
	ctx.SetBody(pdf)
}

func (s *Server) handleIncomeTax(ctx *fasthttp.RequestCtx) {
	var input domain.TaxCalculationInput
	if !decode(ctx, &input) {
		return
	}
	switch input.MaritalStatus {
	case "", domain.Single, domain.Married:
	default:
		writeError(ctx, fasthttp.StatusUnprocessableEntity,
			"maritalStatus must be single or married, got "+string(input.MaritalStatus), "maritalStatus")
		return
	}
	if input.Children < 0 {
		writeError(ctx, fasthttp.StatusUnprocessableEntity, "children must not be negative", "children")
		return
	}
	writeJSON(ctx, fasthttp.StatusOK, s.Taxes.Income.Calculate(input))
}

func (s *Server) handleFormScript(ctx *fasthttp.RequestCtx) {
	var buf bytes.Buffer
	if err := s.Script.Generate(&buf); err != nil {
		s.writeFailure(ctx, err)
		return
	}
	ctx.SetContentType("application/javascript; charset=utf-8")
	ctx.SetStatusCode(fasthttp.StatusOK)
	ctx.SetBody(buf.Bytes())
}

func (s *Server) handleSavePlan(ctx *fasthttp.RequestCtx) {
	var draft domain.PlanDraft
	if !decode(ctx, &draft) {
		return
	}
	reqCtx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()
	saved, err := s.Store.Save(reqCtx, draft)
	if err != nil {
		s.writeFailure(ctx, err)
		return
	}
	status := fasthttp.StatusOK
	if draft.ID == "" {
		status = fasthttp.StatusCreated
	}
	writeJSON(ctx, status, saved)
}

func (s *Server) handleListPlans(ctx *fasthttp.RequestCtx) {
	reqCtx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()
	drafts, err := s.Store.List(reqCtx)
	if err != nil {
		s.writeFailure(ctx, err)
		return
	}
	writeJSON(ctx, fasthttp.StatusOK, drafts)
}

func (s *Server) handleLoadPlan(ctx *fasthttp.RequestCtx, id string) {
	reqCtx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()
	draft, err := s.Store.Load(reqCtx, id)
	if err != nil {
		s.writeFailure(ctx, err)
		return
	}
	writeJSON(ctx, fasthttp.StatusOK, draft)
}

func (s *Server) handleDeletePlan(ctx *fasthttp.RequestCtx, id string) {
	reqCtx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()
	if err := s.Store.Delete(reqCtx, id); err != nil {
		s.writeFailure(ctx, err)
		return
	}
	ctx.SetStatusCode(fasthttp.StatusNoContent)
}
