package calculation

import (
	"context"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
	"github.com/vorsorge/rentenplan/internal/domain"
)

// MaxAge bounds every age input
const MaxAge = 120

// CalculationEngine runs product simulations for one tax year
type CalculationEngine struct {
	Rules  domain.TaxYearRules
	Taxes  *TaxCalculator
	Logger Logger
	Debug  bool // Enable per-year debug output
}

// NewCalculationEngine creates a calculation engine for the built-in tax year
func NewCalculationEngine() *CalculationEngine {
	return NewCalculationEngineWithRules(domain.Rules2024())
}

// NewCalculationEngineWithRules creates a calculation engine for a configured tax year
func NewCalculationEngineWithRules(rules domain.TaxYearRules) *CalculationEngine {
	return &CalculationEngine{
		Rules:  rules,
		Taxes:  NewTaxCalculatorWithRules(rules),
		Logger: NopLogger{},
	}
}

// SetLogger replaces the engine logger; nil resets to a no-op logger
func (ce *CalculationEngine) SetLogger(l Logger) {
	if l == nil {
		ce.Logger = NopLogger{}
		return
	}
	ce.Logger = l
}

// ValidateParams rejects structurally invalid input. Unusual but meaningful values
// (zero contribution, negative expected return) pass.
func ValidateParams(p domain.SimulationParams) error {
	ages := []struct {
		field string
		value int
	}{
		{"currentAge", p.CurrentAge},
		{"retirementAge", p.RetirementAge},
		{"finalAge", p.FinalAge},
	}
	for _, a := range ages {
		if a.value < 0 || a.value > MaxAge {
			return domain.NewValidationError(a.field, "must be between 0 and %d, got %d", MaxAge, a.value)
		}
	}
	if p.RetirementAge < p.CurrentAge {
		return domain.NewValidationError("retirementAge", "must not be before currentAge (%d < %d)", p.RetirementAge, p.CurrentAge)
	}
	if p.FinalAge < p.CurrentAge {
		return domain.NewValidationError("finalAge", "must not be before currentAge (%d < %d)", p.FinalAge, p.CurrentAge)
	}
	if p.ExpectedReturn.Sub(positive(p.ManagementFee)).LessThanOrEqual(one.Neg()) {
		return domain.NewValidationError("expectedReturn", "return net of management fee must be above -100%%, got %s%%",
			p.ExpectedReturn.Sub(positive(p.ManagementFee)).Mul(hundred).StringFixed(2))
	}
	if p.FrontLoadFee.GreaterThan(one) {
		return domain.NewValidationError("frontLoadFee", "must not exceed 100%%, got %s%%", p.FrontLoadFee.Mul(hundred).StringFixed(2))
	}
	switch p.FrontLoadMode {
	case "", domain.FrontLoadFirstYear, domain.FrontLoadPerContribution:
	default:
		return domain.NewValidationError("frontLoadMode", "unknown mode %q (use %q or %q)",
			p.FrontLoadMode, domain.FrontLoadFirstYear, domain.FrontLoadPerContribution)
	}
	for _, m := range p.MilestoneAges {
		if m < 0 || m > MaxAge {
			return domain.NewValidationError("milestoneAges", "must be between 0 and %d, got %d", MaxAge, m)
		}
	}
	return nil
}

// Simulate projects one product year by year from CurrentAge to FinalAge
func (ce *CalculationEngine) Simulate(ctx context.Context, params domain.SimulationParams) (*domain.SimulationResult, error) {
	if err := ValidateParams(params); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	product, ok := params.Product.Resolve()
	result := &domain.SimulationResult{
		Name:          params.Name,
		ProductType:   product.Type(),
		TaxYear:       ce.Rules.Year,
		MonthlyPayout: decimal.Zero,
	}
	if !ok {
		msg := fmt.Sprintf("unknown product type %q, payouts taxed as a private annuity (Ertragsanteil)", params.Product.Type)
		ce.Logger.Warnf("%s: %s", params.Name, msg)
		result.Warnings = append(result.Warnings, msg)
	}

	p := normalizeParams(params, ce.Rules)
	settings := p.TaxSettings.Normalize(ce.Rules)

	years, err := ce.project(ctx, p, product, settings, result)
	if err != nil {
		return nil, err
	}
	result.Years = years
	result.Summary = ce.summarize(result, MilestoneAges(p))

	ce.Logger.Debugf("%s: simulated %d years (%s), final gross %s", p.Name, len(years), product.Type(), result.Final().GrossValue.StringFixed(2))
	return result, nil
}

// MilestoneAges returns the sorted, de-duplicated milestone ages of a parameter set,
// defaulting to retirement age, 67 and 85
func MilestoneAges(p domain.SimulationParams) []int {
	ages := p.MilestoneAges
	if len(ages) == 0 {
		ages = []int{p.RetirementAge, 67, 85}
	}
	seen := make(map[int]bool, len(ages))
	out := make([]int, 0, len(ages))
	for _, a := range ages {
		if !seen[a] {
			seen[a] = true
			out = append(out, a)
		}
	}
	sort.Ints(out)
	return out
}

func (ce *CalculationEngine) summarize(result *domain.SimulationResult, milestones []int) map[int]domain.MilestoneSummary {
	summary := make(map[int]domain.MilestoneSummary, len(milestones))
	for _, age := range milestones {
		rec, ok := result.RecordAt(age)
		if !ok {
			continue
		}
		summary[age] = domain.MilestoneSummary{
			Age:                age,
			RecordAge:          rec.Age,
			GrossValue:         rec.GrossValue,
			NetValue:           rec.NetValue,
			TotalTax:           rec.CumulativeTaxPaid,
			TotalFees:          rec.CumulativeFees,
			TotalContributions: rec.CumulativeContributions,
			TotalWithdrawn:     rec.CumulativeWithdrawn,
			TotalNetPayout:     rec.CumulativeNetPayout,
			MonthlyNetPayout:   rec.NetPayout.Div(twelve).Round(2),
		}
	}
	return summary
}

// normalizeParams clamps negative money inputs to zero and fills defaults
func normalizeParams(p domain.SimulationParams, rules domain.TaxYearRules) domain.SimulationParams {
	out := p
	out.StartInvestment = positive(p.StartInvestment)
	out.MonthlyContribution = positive(p.MonthlyContribution)
	out.FrontLoadFee = positive(p.FrontLoadFee)
	out.ManagementFee = positive(p.ManagementFee)
	out.PayoutMonthly = positive(p.PayoutMonthly)
	if out.FrontLoadMode == "" {
		out.FrontLoadMode = domain.FrontLoadFirstYear
	}
	if out.StartYear <= 0 {
		out.StartYear = rules.Year
	}
	if p.ExistingPension != nil {
		out.ExistingPension = &domain.ExistingPension{
			MonthlyContribution: positive(p.ExistingPension.MonthlyContribution),
			GuaranteedMonthly:   positive(p.ExistingPension.GuaranteedMonthly),
		}
	}
	return out
}
