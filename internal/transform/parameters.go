package transform

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/vorsorge/rentenplan/internal/domain"
)

// Parameter names a numeric plan field a transform or the break-even solver can set
type Parameter string

const (
	MonthlyContribution Parameter = "monthly_contribution"
	StartInvestment     Parameter = "start_investment"
	ExpectedReturn      Parameter = "expected_return"
	ManagementFee       Parameter = "management_fee"
	FrontLoadFee        Parameter = "front_load_fee"
	PayoutMonthly       Parameter = "payout_monthly"
	RetirementAge       Parameter = "retirement_age"
	FinalAge            Parameter = "final_age"
)

// Parameters lists every settable field
var Parameters = []Parameter{
	MonthlyContribution,
	StartInvestment,
	ExpectedReturn,
	ManagementFee,
	FrontLoadFee,
	PayoutMonthly,
	RetirementAge,
	FinalAge,
}

// IsAge reports whether the parameter only takes whole years
func (p Parameter) IsAge() bool {
	return p == RetirementAge || p == FinalAge
}

// IsRate reports whether the parameter is a fraction (0.05 = 5%)
func (p Parameter) IsRate() bool {
	return p == ExpectedReturn || p == ManagementFee || p == FrontLoadFee
}

// Label is the German name of the parameter
func (p Parameter) Label() string {
	switch p {
	case MonthlyContribution:
		return "Monatlicher Beitrag"
	case StartInvestment:
		return "Einmalbeitrag"
	case ExpectedReturn:
		return "Erwartete Rendite"
	case ManagementFee:
		return "Laufende Kosten"
	case FrontLoadFee:
		return "Abschlusskosten"
	case PayoutMonthly:
		return "Monatliche Entnahme"
	case RetirementAge:
		return "Rentenbeginn"
	case FinalAge:
		return "Planungshorizont"
	default:
		return string(p)
	}
}

// FormatValue renders a parameter value for descriptions
func (p Parameter) FormatValue(v decimal.Decimal) string {
	switch {
	case p.IsAge():
		return v.Truncate(0).String()
	case p.IsRate():
		return v.Mul(decimal.NewFromInt(100)).Round(2).String() + "%"
	default:
		return v.StringFixed(2) + " EUR"
	}
}

// Get reads the parameter from a plan
func (p Parameter) Get(plan domain.SimulationParams) (decimal.Decimal, error) {
	switch p {
	case MonthlyContribution:
		return plan.MonthlyContribution, nil
	case StartInvestment:
		return plan.StartInvestment, nil
	case ExpectedReturn:
		return plan.ExpectedReturn, nil
	case ManagementFee:
		return plan.ManagementFee, nil
	case FrontLoadFee:
		return plan.FrontLoadFee, nil
	case PayoutMonthly:
		return plan.PayoutMonthly, nil
	case RetirementAge:
		return decimal.NewFromInt(int64(plan.RetirementAge)), nil
	case FinalAge:
		return decimal.NewFromInt(int64(plan.FinalAge)), nil
	default:
		return decimal.Zero, fmt.Errorf("unknown parameter %q", p)
	}
}

// SetParameter sets one numeric plan field to an absolute value
type SetParameter struct {
	Parameter Parameter
	Value     decimal.Decimal
}

func (sp *SetParameter) Name() string {
	return "set_" + string(sp.Parameter)
}

func (sp *SetParameter) Description() string {
	return fmt.Sprintf("%s %s", sp.Parameter.Label(), sp.Parameter.FormatValue(sp.Value))
}

func (sp *SetParameter) Validate(base domain.SimulationParams) error {
	if _, err := sp.Parameter.Get(base); err != nil {
		return NewTransformError(sp.Name(), "validate", "unsupported parameter", err)
	}

	switch {
	case sp.Parameter.IsAge():
		if !sp.Value.Equal(sp.Value.Truncate(0)) {
			return NewTransformError(sp.Name(), "validate", fmt.Sprintf("age must be a whole number, got %s", sp.Value), nil)
		}
		if sp.Value.IntPart() < int64(base.CurrentAge) {
			return NewTransformError(sp.Name(), "validate",
				fmt.Sprintf("age %s is before the current age %d", sp.Value, base.CurrentAge), nil)
		}
	case sp.Parameter == ExpectedReturn:
		if sp.Value.LessThanOrEqual(decimal.NewFromInt(-1)) {
			return NewTransformError(sp.Name(), "validate", fmt.Sprintf("return must be above -100%%, got %s", sp.Value), nil)
		}
	case sp.Parameter.IsRate():
		if sp.Value.IsNegative() || sp.Value.GreaterThan(decimal.NewFromInt(1)) {
			return NewTransformError(sp.Name(), "validate", fmt.Sprintf("fee must be between 0 and 1, got %s", sp.Value), nil)
		}
	default:
		if sp.Value.IsNegative() {
			return NewTransformError(sp.Name(), "validate", fmt.Sprintf("amount must not be negative, got %s", sp.Value), nil)
		}
	}
	return nil
}

func (sp *SetParameter) Apply(base domain.SimulationParams) (domain.SimulationParams, error) {
	modified := clone(base)

	switch sp.Parameter {
	case MonthlyContribution:
		modified.MonthlyContribution = sp.Value
	case StartInvestment:
		modified.StartInvestment = sp.Value
	case ExpectedReturn:
		modified.ExpectedReturn = sp.Value
	case ManagementFee:
		modified.ManagementFee = sp.Value
	case FrontLoadFee:
		modified.FrontLoadFee = sp.Value
	case PayoutMonthly:
		modified.PayoutMonthly = sp.Value
	case RetirementAge:
		modified.RetirementAge = int(sp.Value.IntPart())
	case FinalAge:
		modified.FinalAge = int(sp.Value.IntPart())
	default:
		return domain.SimulationParams{}, NewTransformError(sp.Name(), "apply", fmt.Sprintf("unknown parameter %q", sp.Parameter), nil)
	}

	return modified, nil
}

// PostponeRetirement moves the start of the payout phase by a number of years.
// Negative values retire earlier.
type PostponeRetirement struct {
	Years int
}

func (pr *PostponeRetirement) Name() string {
	return "postpone_retirement"
}

func (pr *PostponeRetirement) Description() string {
	if pr.Years < 0 {
		return fmt.Sprintf("Rentenbeginn %d Jahre früher", -pr.Years)
	}
	return fmt.Sprintf("Rentenbeginn %d Jahre später", pr.Years)
}

func (pr *PostponeRetirement) Validate(base domain.SimulationParams) error {
	age := base.RetirementAge + pr.Years
	if age < base.CurrentAge {
		return NewTransformError(pr.Name(), "validate",
			fmt.Sprintf("retirement at %d would be before the current age %d", age, base.CurrentAge), nil)
	}
	return nil
}

func (pr *PostponeRetirement) Apply(base domain.SimulationParams) (domain.SimulationParams, error) {
	modified := clone(base)
	modified.RetirementAge += pr.Years
	return modified, nil
}

// SetProduct switches the plan to another vehicle with the same contributions.
type SetProduct struct {
	Product domain.ProductSpec
}

func (sp *SetProduct) Name() string {
	return "set_product"
}

func (sp *SetProduct) Description() string {
	return sp.Product.Type.DisplayName()
}

func (sp *SetProduct) Validate(domain.SimulationParams) error {
	if _, ok := sp.Product.Resolve(); !ok {
		return NewTransformError(sp.Name(), "validate", fmt.Sprintf("unknown product type %q", sp.Product.Type), nil)
	}
	return nil
}

func (sp *SetProduct) Apply(base domain.SimulationParams) (domain.SimulationParams, error) {
	modified := clone(base)
	modified.Product = sp.Product
	return modified, nil
}
