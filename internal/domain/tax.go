package domain

import (
	"github.com/shopspring/decimal"
)

// MaritalStatus selects single assessment or joint assessment with income splitting
type MaritalStatus string

const (
	Single  MaritalStatus = "single"
	Married MaritalStatus = "married"
)

// IsMarried reports whether income splitting applies
func (m MaritalStatus) IsMarried() bool {
	return m == Married
}

// TaxSettings configures investment and payout taxation for one simulation run
type TaxSettings struct {
	BaseRatePercent       decimal.Decimal `json:"baseRatePercent" yaml:"base_rate_percent"`              // Basiszins, percent (2.29 = 2.29%)
	AllowanceAnnual       decimal.Decimal `json:"allowanceAnnual" yaml:"allowance_annual"`               // Sparerpauschbetrag
	PartialExemptionRate  decimal.Decimal `json:"partialExemptionRate" yaml:"partial_exemption_rate"`    // Teilfreistellung, fraction
	UseHalfIncomeTaxation bool            `json:"useHalfIncomeTaxation" yaml:"use_half_income_taxation"` // from age 62
	ChurchTaxRate         decimal.Decimal `json:"churchTaxRate" yaml:"church_tax_rate"`                  // 0, 0.08 or 0.09
	PayoutTaxRate         decimal.Decimal `json:"payoutTaxRate" yaml:"payout_tax_rate"`                  // personal rate on pension payments
}

// DefaultTaxSettings returns the settings a single saver in an equity fund would use
func DefaultTaxSettings(rules TaxYearRules, status MaritalStatus) TaxSettings {
	allowance := rules.CapitalGains.SaverAllowanceSingle
	if status.IsMarried() {
		allowance = rules.CapitalGains.SaverAllowanceMarried
	}
	return TaxSettings{
		BaseRatePercent:      rules.CapitalGains.BaseRatePercent,
		AllowanceAnnual:      allowance,
		PartialExemptionRate: rules.CapitalGains.PartialExemptionEquity,
		PayoutTaxRate:        rules.Pension.DefaultPayoutTaxRate,
	}
}

// Normalize clamps negative values to zero and fills an unset payout rate.
// Allowance and exemption are kept as given: zero is a valid choice for both.
func (ts TaxSettings) Normalize(rules TaxYearRules) TaxSettings {
	out := ts
	out.BaseRatePercent = nonNegative(ts.BaseRatePercent)
	out.AllowanceAnnual = nonNegative(ts.AllowanceAnnual)
	out.PartialExemptionRate = clampUnit(ts.PartialExemptionRate)
	out.ChurchTaxRate = clampUnit(ts.ChurchTaxRate)
	if ts.PayoutTaxRate.LessThanOrEqual(decimal.Zero) {
		out.PayoutTaxRate = rules.Pension.DefaultPayoutTaxRate
	} else {
		out.PayoutTaxRate = clampUnit(ts.PayoutTaxRate)
	}
	return out
}

// IsZero reports whether no setting was given at all
func (ts TaxSettings) IsZero() bool {
	return ts.BaseRatePercent.IsZero() && ts.AllowanceAnnual.IsZero() && ts.PartialExemptionRate.IsZero() &&
		!ts.UseHalfIncomeTaxation && ts.ChurchTaxRate.IsZero() && ts.PayoutTaxRate.IsZero()
}

// TaxCalculationInput holds the personal data for an income tax assessment
type TaxCalculationInput struct {
	GrossIncome           decimal.Decimal `json:"grossIncome" yaml:"gross_income"`
	MaritalStatus         MaritalStatus   `json:"maritalStatus" yaml:"marital_status"`
	ChurchTaxRate         decimal.Decimal `json:"churchTaxRate" yaml:"church_tax_rate"`
	SpecialExpenses       decimal.Decimal `json:"specialExpenses" yaml:"special_expenses"`
	ExtraordinaryExpenses decimal.Decimal `json:"extraordinaryExpenses" yaml:"extraordinary_expenses"`
	Children              int             `json:"children" yaml:"children"`
}

// TaxCalculationResult is the outcome of an income tax assessment
type TaxCalculationResult struct {
	GrossIncome         decimal.Decimal `json:"grossIncome"`
	TaxableIncome       decimal.Decimal `json:"taxableIncome"`
	IncomeTax           decimal.Decimal `json:"incomeTax"`
	SolidaritySurcharge decimal.Decimal `json:"solidaritySurcharge"`
	ChurchTax           decimal.Decimal `json:"churchTax"`
	TotalTax            decimal.Decimal `json:"totalTax"`
	NetIncome           decimal.Decimal `json:"netIncome"`
	AverageTaxRate      decimal.Decimal `json:"averageTaxRate"`  // percent
	MarginalTaxRate     decimal.Decimal `json:"marginalTaxRate"` // percent
	Bracket             string          `json:"bracket"`
}

func nonNegative(v decimal.Decimal) decimal.Decimal {
	if v.IsNegative() {
		return decimal.Zero
	}
	return v
}

func clampUnit(v decimal.Decimal) decimal.Decimal {
	if v.IsNegative() {
		return decimal.Zero
	}
	if v.GreaterThan(decimal.NewFromInt(1)) {
		return decimal.NewFromInt(1)
	}
	return v
}
