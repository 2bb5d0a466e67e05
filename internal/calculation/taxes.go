package calculation

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/vorsorge/rentenplan/internal/domain"
)

// TAX CALCULATION ASSUMPTIONS:
//
// 1. Income tax follows the §32a EStG formula of the configured tax year
//    - Taxable income is rounded down to whole euros before the formula is applied
//    - The resulting tax is rounded down to whole euros
//    - Joint assessment uses the splitting procedure: 2 x tax(income / 2)
//
// 2. Solidarity surcharge is 5.5% of the income tax, but only above the exemption
//    threshold, and never more than 11.9% of the amount over that threshold
//
// 3. Church tax is charged on the income tax reduced by the solidarity surcharge
//
// 4. Child relief deducts child allowance plus care/education allowance per child.
//    The comparison against child benefit (Günstigerprüfung) is not performed.

var (
	one     = decimal.NewFromInt(1)
	two     = decimal.NewFromInt(2)
	hundred = decimal.NewFromInt(100)
	tenK    = decimal.NewFromInt(10000)
	twelve  = decimal.NewFromInt(12)
)

// IncomeTaxCalculator handles progressive income tax, solidarity surcharge and church tax
type IncomeTaxCalculator struct {
	Rules domain.TaxYearRules
}

// NewIncomeTaxCalculator creates an income tax calculator for the given tax year table
func NewIncomeTaxCalculator(rules domain.TaxYearRules) *IncomeTaxCalculator {
	return &IncomeTaxCalculator{Rules: rules}
}

// CalculateIncomeTax returns the assessed income tax in whole euros
func (itc *IncomeTaxCalculator) CalculateIncomeTax(taxableIncome decimal.Decimal, status domain.MaritalStatus) decimal.Decimal {
	if status.IsMarried() {
		return itc.tariff(taxableIncome.Div(two)).Mul(two)
	}
	return itc.tariff(taxableIncome)
}

// tariff applies the basic table to a single income
func (itc *IncomeTaxCalculator) tariff(income decimal.Decimal) decimal.Decimal {
	r := itc.Rules.IncomeTax
	x := income.Floor()
	if x.LessThanOrEqual(r.BasicAllowance) {
		return decimal.Zero
	}

	var tax decimal.Decimal
	switch {
	case x.LessThanOrEqual(r.Zone1Limit):
		y := x.Sub(r.BasicAllowance).Div(tenK)
		tax = r.Zone1Quadratic.Mul(y).Add(r.Zone1Linear).Mul(y)
	case x.LessThanOrEqual(r.Zone2Limit):
		z := x.Sub(r.Zone1Limit).Div(tenK)
		tax = r.Zone2Quadratic.Mul(z).Add(r.Zone2Linear).Mul(z).Add(r.Zone2Constant)
	case x.LessThanOrEqual(r.Zone3Limit):
		tax = r.Zone3Rate.Mul(x).Sub(r.Zone3Subtract)
	default:
		tax = r.Zone4Rate.Mul(x).Sub(r.Zone4Subtract)
	}

	if tax.IsNegative() {
		return decimal.Zero
	}
	return tax.Floor()
}

// CalculateSolidaritySurcharge returns the surcharge on an assessed income tax
func (itc *IncomeTaxCalculator) CalculateSolidaritySurcharge(incomeTax decimal.Decimal, status domain.MaritalStatus) decimal.Decimal {
	s := itc.Rules.Solidarity
	allowance := s.AllowanceSingle
	if status.IsMarried() {
		allowance = s.AllowanceMarried
	}
	if incomeTax.LessThanOrEqual(allowance) {
		return decimal.Zero
	}

	full := incomeTax.Mul(s.Rate).Floor()
	phaseIn := incomeTax.Sub(allowance).Mul(s.PhaseInRate).Floor()
	return decimal.Min(full, phaseIn)
}

// CalculateChurchTax returns church tax at the given rate (0.08 or 0.09 in practice)
func (itc *IncomeTaxCalculator) CalculateChurchTax(incomeTax, solidarity, rate decimal.Decimal) decimal.Decimal {
	if rate.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}
	base := incomeTax.Sub(solidarity)
	if base.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}
	return base.Mul(rate).Floor()
}

// CalculateMarginalRate returns the marginal income tax rate in percent.
// Under splitting the rate is the one of the halved income.
func (itc *IncomeTaxCalculator) CalculateMarginalRate(taxableIncome decimal.Decimal, status domain.MaritalStatus) decimal.Decimal {
	r := itc.Rules.IncomeTax
	x := taxableIncome.Floor()
	if status.IsMarried() {
		x = taxableIncome.Div(two).Floor()
	}

	switch {
	case x.LessThanOrEqual(r.BasicAllowance):
		return decimal.Zero
	case x.LessThanOrEqual(r.Zone1Limit):
		y := x.Sub(r.BasicAllowance).Div(tenK)
		return two.Mul(r.Zone1Quadratic).Mul(y).Add(r.Zone1Linear).Div(hundred).Round(2)
	case x.LessThanOrEqual(r.Zone2Limit):
		z := x.Sub(r.Zone1Limit).Div(tenK)
		return two.Mul(r.Zone2Quadratic).Mul(z).Add(r.Zone2Linear).Div(hundred).Round(2)
	case x.LessThanOrEqual(r.Zone3Limit):
		return r.Zone3Rate.Mul(hundred)
	default:
		return r.Zone4Rate.Mul(hundred)
	}
}

// BracketLabel names the tariff zone an income falls into
func (itc *IncomeTaxCalculator) BracketLabel(taxableIncome decimal.Decimal, status domain.MaritalStatus) string {
	r := itc.Rules.IncomeTax
	x := taxableIncome.Floor()
	if status.IsMarried() {
		x = taxableIncome.Div(two).Floor()
	}

	switch {
	case x.LessThanOrEqual(r.BasicAllowance):
		return "Grundfreibetrag"
	case x.LessThanOrEqual(r.Zone1Limit):
		return "Progressionszone I"
	case x.LessThanOrEqual(r.Zone2Limit):
		return "Progressionszone II"
	case x.LessThanOrEqual(r.Zone3Limit):
		return fmt.Sprintf("Proportionalzone (%s%%)", r.Zone3Rate.Mul(hundred).String())
	default:
		return fmt.Sprintf("Spitzensteuersatz (%s%%)", r.Zone4Rate.Mul(hundred).String())
	}
}

// TaxableIncome derives the taxable income from gross income and deductions, floored at zero
func (itc *IncomeTaxCalculator) TaxableIncome(input domain.TaxCalculationInput) decimal.Decimal {
	taxable := input.GrossIncome.
		Sub(positive(input.SpecialExpenses)).
		Sub(positive(input.ExtraordinaryExpenses))
	if input.Children > 0 {
		taxable = taxable.Sub(itc.Rules.ChildRelief.PerChild().Mul(decimal.NewFromInt(int64(input.Children))))
	}
	return positive(taxable)
}

// Calculate runs a complete income tax assessment
func (itc *IncomeTaxCalculator) Calculate(input domain.TaxCalculationInput) domain.TaxCalculationResult {
	gross := positive(input.GrossIncome)
	input.GrossIncome = gross
	status := input.MaritalStatus
	if status == "" {
		status = domain.Single
	}

	taxable := itc.TaxableIncome(input)
	incomeTax := itc.CalculateIncomeTax(taxable, status)
	soli := itc.CalculateSolidaritySurcharge(incomeTax, status)
	churchTax := itc.CalculateChurchTax(incomeTax, soli, unitInterval(input.ChurchTaxRate))
	total := incomeTax.Add(soli).Add(churchTax)

	average := decimal.Zero
	if gross.GreaterThan(decimal.Zero) {
		average = total.Div(gross).Mul(hundred).Round(2)
	}

	return domain.TaxCalculationResult{
		GrossIncome:         gross,
		TaxableIncome:       taxable.Floor(),
		IncomeTax:           incomeTax,
		SolidaritySurcharge: soli,
		ChurchTax:           churchTax,
		TotalTax:            total,
		NetIncome:           gross.Sub(total),
		AverageTaxRate:      average,
		MarginalTaxRate:     itc.CalculateMarginalRate(taxable, status),
		Bracket:             itc.BracketLabel(taxable, status),
	}
}

// TaxCalculator bundles the three tax engines for one tax year
type TaxCalculator struct {
	Income     *IncomeTaxCalculator
	Investment *InvestmentTaxCalculator
	Pension    *PensionTaxCalculator
}

// NewTaxCalculator creates all tax engines for the built-in tax year
func NewTaxCalculator() *TaxCalculator {
	return NewTaxCalculatorWithRules(domain.Rules2024())
}

// NewTaxCalculatorWithRules creates all tax engines for a configured tax year
func NewTaxCalculatorWithRules(rules domain.TaxYearRules) *TaxCalculator {
	investment := NewInvestmentTaxCalculator(rules)
	return &TaxCalculator{
		Income:     NewIncomeTaxCalculator(rules),
		Investment: investment,
		Pension:    NewPensionTaxCalculator(rules, investment),
	}
}

func positive(v decimal.Decimal) decimal.Decimal {
	if v.IsNegative() {
		return decimal.Zero
	}
	return v
}

func unitInterval(v decimal.Decimal) decimal.Decimal {
	if v.IsNegative() {
		return decimal.Zero
	}
	if v.GreaterThan(one) {
		return one
	}
	return v
}
