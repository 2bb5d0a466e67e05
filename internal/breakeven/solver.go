package breakeven

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/vorsorge/rentenplan/internal/calculation"
	"github.com/vorsorge/rentenplan/internal/compare"
	"github.com/vorsorge/rentenplan/internal/domain"
	"github.com/vorsorge/rentenplan/internal/transform"
)

var two = decimal.NewFromInt(2)

// Solver finds break-even parameter values by bisection
type Solver struct {
	CalcEngine *calculation.CalculationEngine
	Options    SolverOptions
	metrics    *compare.MetricsCalculator
}

// NewSolver creates a new break-even solver
func NewSolver(calcEngine *calculation.CalculationEngine, options SolverOptions) *Solver {
	return &Solver{
		CalcEngine: calcEngine,
		Options:    options,
		metrics:    compare.NewMetricsCalculator(),
	}
}

// NewDefaultSolver creates a solver with default options
func NewDefaultSolver(calcEngine *calculation.CalculationEngine) *Solver {
	return NewSolver(calcEngine, DefaultSolverOptions())
}

// sample is one evaluated parameter value
type sample struct {
	value  decimal.Decimal
	metric decimal.Decimal
	diff   decimal.Decimal // metric - goal
	result *domain.SimulationResult
}

// Solve searches the request range for the value at which the goal metric is met.
// The metric has to cross the goal inside the range; a miss at both ends returns
// an error wrapping ErrNotBracketed.
func (s *Solver) Solve(ctx context.Context, req Request) (*Result, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if req.MaxIterations == 0 {
		req.MaxIterations = s.Options.MaxIterations
	}
	if req.Tolerance.IsZero() {
		req.Tolerance = s.Options.Tolerance
	}
	if req.Age == 0 && req.Goal != GoalMonthlyPayout {
		req.Age = req.Plan.FinalAge
	}

	goal := req.TargetValue
	if req.Goal == GoalMatchPlan {
		ref, err := s.CalcEngine.Simulate(ctx, *req.Reference)
		if err != nil {
			return nil, &BreakEvenError{Operation: "solve", Message: "failed to calculate reference plan", Cause: err}
		}
		goal = s.metric(req, ref)
	}

	baseValue, _ := req.Target.Get(req.Plan)
	base, err := s.evaluate(ctx, req, baseValue, goal)
	if err != nil {
		return nil, err
	}

	lo, hi := DefaultBounds(req.Target, req.Plan)
	if req.Min != nil {
		lo = *req.Min
	}
	if req.Max != nil {
		hi = *req.Max
	}

	result := &Result{
		Target:     req.Target,
		Goal:       req.Goal,
		Age:        req.Age,
		BaseValue:  baseValue,
		BaseMetric: base.metric,
		GoalMetric: goal,
	}
	finish := func(p sample, success bool, info string, iterations int) *Result {
		result.Value = p.value
		result.Metric = p.metric
		result.Simulation = p.result
		result.Success = success
		result.ConvergenceInfo = info
		result.Iterations = iterations
		return result
	}

	low, err := s.evaluate(ctx, req, lo, goal)
	if err != nil {
		return nil, err
	}
	high, err := s.evaluate(ctx, req, hi, goal)
	if err != nil {
		return nil, err
	}
	iterations := 2

	if low.diff.Abs().LessThanOrEqual(req.Tolerance) {
		return finish(low, true, "goal met at the lower bound", iterations), nil
	}
	if high.diff.Abs().LessThanOrEqual(req.Tolerance) {
		return finish(high, true, "goal met at the upper bound", iterations), nil
	}
	if low.diff.Sign() == high.diff.Sign() {
		return nil, &BreakEvenError{
			Operation: "solve",
			Message: fmt.Sprintf("%s between %s and %s yields %s to %s, goal %s",
				req.Target, lo, hi, low.metric.StringFixed(2), high.metric.StringFixed(2), goal.StringFixed(2)),
			Cause: ErrNotBracketed,
		}
	}

	step := resolution(req.Target)
	for iterations < req.MaxIterations {
		if hi.Sub(lo).LessThanOrEqual(step) {
			info := "bracket converged"
			if req.Target.IsAge() {
				info = "closest whole age"
			}
			return finish(closer(low, high), true, info, iterations), nil
		}

		mid := lo.Add(hi).Div(two).Round(places(req.Target))
		if req.Target.IsAge() {
			mid = mid.Floor()
		}
		if mid.Equal(lo) || mid.Equal(hi) {
			return finish(closer(low, high), true, "bracket converged", iterations), nil
		}

		iterations++
		m, err := s.evaluate(ctx, req, mid, goal)
		if err != nil {
			return nil, err
		}
		if m.diff.Abs().LessThanOrEqual(req.Tolerance) {
			return finish(m, true, fmt.Sprintf("converged within %s EUR", req.Tolerance), iterations), nil
		}

		if m.diff.Sign() == low.diff.Sign() {
			lo, low = mid, m
		} else {
			hi, high = mid, m
		}
	}

	return finish(closer(low, high), false, fmt.Sprintf("max iterations (%d) reached", req.MaxIterations), iterations), nil
}

// evaluate simulates the plan with the target parameter set to value
func (s *Solver) evaluate(ctx context.Context, req Request, value, goal decimal.Decimal) (sample, error) {
	if err := ctx.Err(); err != nil {
		return sample{}, err
	}

	plan, err := transform.ApplyTransforms(req.Plan, []transform.PlanTransform{
		&transform.SetParameter{Parameter: req.Target, Value: value},
	})
	if err != nil {
		return sample{}, &BreakEvenError{Operation: "solve", Message: "failed to apply " + string(req.Target), Cause: err}
	}

	res, err := s.CalcEngine.Simulate(ctx, plan)
	if err != nil {
		return sample{}, &BreakEvenError{Operation: "solve", Message: "failed to calculate plan", Cause: err}
	}

	metric := s.metric(req, res)
	return sample{value: value, metric: metric, diff: metric.Sub(goal), result: res}, nil
}

// metric reads the goal figure from a simulation
func (s *Solver) metric(req Request, res *domain.SimulationResult) decimal.Decimal {
	if req.Goal == GoalMonthlyPayout && req.Age == 0 {
		for _, y := range res.Years {
			if y.IsPayout() {
				return y.NetPayout.Div(decimal.NewFromInt(12)).Round(2)
			}
		}
		return decimal.Zero
	}

	row := s.metrics.CalculateMetrics(compare.ScenarioResult{Name: res.Name, ProductType: res.ProductType, Result: res}, req.Age)
	if req.Goal == GoalMonthlyPayout {
		return row.MonthlyNetPayout
	}
	return row.NetWealth
}

func closer(a, b sample) sample {
	if b.diff.Abs().LessThan(a.diff.Abs()) {
		return b
	}
	return a
}

// resolution is the smallest step worth distinguishing for a parameter
func resolution(p transform.Parameter) decimal.Decimal {
	return decimal.New(1, -places(p))
}

func places(p transform.Parameter) int32 {
	switch {
	case p.IsAge():
		return 0
	case p.IsRate():
		return 6
	default:
		return 2
	}
}
