// Package breakeven solves for the plan parameter at which a goal is just met, e.g. the
// fund return that matches a Rürup pension at 85 or the contribution that yields a
// target monthly payout.
package breakeven

import (
	"errors"

	"github.com/shopspring/decimal"
	"github.com/vorsorge/rentenplan/internal/domain"
	"github.com/vorsorge/rentenplan/internal/transform"
)

// Goal defines what outcome to achieve
type Goal string

const (
	GoalMatchPlan     Goal = "match_plan"     // net wealth equal to a reference plan
	GoalNetWealth     Goal = "net_wealth"     // net wealth equal to a target amount
	GoalMonthlyPayout Goal = "monthly_payout" // monthly net payout equal to a target amount
)

// ErrNotBracketed is returned when the goal is missed at both ends of the search range
var ErrNotBracketed = errors.New("goal is not reached anywhere in the search range")

// Request defines one break-even search
type Request struct {
	Plan   domain.SimulationParams
	Target transform.Parameter
	Goal   Goal

	// Reference is the plan to match for GoalMatchPlan
	Reference *domain.SimulationParams
	// TargetValue is the amount to reach for GoalNetWealth and GoalMonthlyPayout
	TargetValue decimal.Decimal
	// Age at which the metric is read. Zero means the final age for net wealth
	// and the first payout year for the monthly payout.
	Age int

	// Search range; nil uses DefaultBounds
	Min *decimal.Decimal
	Max *decimal.Decimal

	MaxIterations int
	Tolerance     decimal.Decimal // in euros
}

// Result contains the outcome of a break-even search
type Result struct {
	Target          transform.Parameter `json:"target"`
	Goal            Goal                `json:"goal"`
	Age             int                 `json:"age"`
	Success         bool                `json:"success"`
	Iterations      int                 `json:"iterations"`
	ConvergenceInfo string              `json:"convergenceInfo"`

	// Value is the break-even parameter value, BaseValue the plan's own
	Value     decimal.Decimal `json:"value"`
	BaseValue decimal.Decimal `json:"baseValue"`

	// Metric is reached at Value; Goal is what had to be matched
	Metric     decimal.Decimal `json:"metric"`
	GoalMetric decimal.Decimal `json:"goalMetric"`
	BaseMetric decimal.Decimal `json:"baseMetric"`

	Simulation *domain.SimulationResult `json:"simulation,omitempty"`
}

// MultiResult collects searches over several parameters for the same goal
type MultiResult struct {
	Results         []Result `json:"results"`
	Failed          []string `json:"failed,omitempty"`
	Recommendations []string `json:"recommendations"`
}

// SolverOptions configures the solver algorithm
type SolverOptions struct {
	Tolerance     decimal.Decimal // convergence tolerance in euros
	MaxIterations int
	Parallelism   int // concurrent searches in SolveAll, 0 = unlimited
}

// DefaultSolverOptions returns default solver configuration
func DefaultSolverOptions() SolverOptions {
	return SolverOptions{
		Tolerance:     decimal.NewFromInt(1),
		MaxIterations: 60,
	}
}

// DefaultBounds returns the search range used when the request does not set one
func DefaultBounds(target transform.Parameter, plan domain.SimulationParams) (decimal.Decimal, decimal.Decimal) {
	switch target {
	case transform.ExpectedReturn:
		return decimal.RequireFromString("-0.05"), decimal.RequireFromString("0.15")
	case transform.ManagementFee:
		return decimal.Zero, decimal.RequireFromString("0.05")
	case transform.FrontLoadFee:
		return decimal.Zero, decimal.RequireFromString("0.10")
	case transform.MonthlyContribution, transform.PayoutMonthly:
		return decimal.Zero, decimal.NewFromInt(10000)
	case transform.StartInvestment:
		return decimal.Zero, decimal.NewFromInt(1000000)
	case transform.RetirementAge:
		hi := plan.FinalAge
		if hi < plan.CurrentAge {
			hi = plan.CurrentAge
		}
		return decimal.NewFromInt(int64(plan.CurrentAge)), decimal.NewFromInt(int64(hi))
	case transform.FinalAge:
		lo := plan.RetirementAge
		if lo < plan.CurrentAge {
			lo = plan.CurrentAge
		}
		return decimal.NewFromInt(int64(lo)), decimal.NewFromInt(int64(lo + 40))
	default:
		return decimal.Zero, decimal.Zero
	}
}

// Validate checks if the request is internally consistent
func (r *Request) Validate() error {
	if _, err := r.Target.Get(r.Plan); err != nil {
		return &BreakEvenError{Operation: "validate_request", Message: "unsupported target", Cause: err}
	}

	switch r.Goal {
	case GoalMatchPlan:
		if r.Reference == nil {
			return &BreakEvenError{Operation: "validate_request", Message: "match_plan requires a reference plan"}
		}
	case GoalNetWealth, GoalMonthlyPayout:
		if r.TargetValue.IsNegative() {
			return &BreakEvenError{Operation: "validate_request", Message: "target value must not be negative"}
		}
	default:
		return &BreakEvenError{Operation: "validate_request", Message: "unsupported goal: " + string(r.Goal)}
	}

	if r.Min != nil && r.Max != nil && r.Min.GreaterThan(*r.Max) {
		return &BreakEvenError{Operation: "validate_request", Message: "min cannot be greater than max"}
	}
	if r.Age < 0 {
		return &BreakEvenError{Operation: "validate_request", Message: "age must not be negative"}
	}

	return nil
}

// BreakEvenError represents errors from break-even solver
type BreakEvenError struct {
	Operation string
	Message   string
	Cause     error
}

func (e *BreakEvenError) Error() string {
	if e.Cause != nil {
		return e.Operation + ": " + e.Message + ": " + e.Cause.Error()
	}
	return e.Operation + ": " + e.Message
}

func (e *BreakEvenError) Unwrap() error {
	return e.Cause
}
