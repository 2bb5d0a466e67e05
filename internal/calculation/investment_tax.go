package calculation

import (
	"github.com/shopspring/decimal"
	"github.com/vorsorge/rentenplan/internal/domain"
)

// FundTaxResult is the annual tax on a fund held in a custody account
type FundTaxResult struct {
	Vorabpauschale decimal.Decimal `json:"vorabpauschale"`
	TaxableBase    decimal.Decimal `json:"taxableBase"` // after partial exemption and allowance
	AllowanceUsed  decimal.Decimal `json:"allowanceUsed"`
	TotalTax       decimal.Decimal `json:"totalTax"`
}

// SaleTaxResult is the tax on a (partial) fund sale
type SaleTaxResult struct {
	TaxableGain   decimal.Decimal `json:"taxableGain"`
	AllowanceUsed decimal.Decimal `json:"allowanceUsed"`
	Tax           decimal.Decimal `json:"tax"`
}

// InvestmentTaxCalculator handles taxation of fund savings plans (InvStG)
type InvestmentTaxCalculator struct {
	Rules domain.CapitalGainsRules
}

// NewInvestmentTaxCalculator creates an investment tax calculator for a tax year
func NewInvestmentTaxCalculator(rules domain.TaxYearRules) *InvestmentTaxCalculator {
	return &InvestmentTaxCalculator{Rules: rules.CapitalGains}
}

// CalculateVorabpauschale returns the advance lump sum for one year.
//
// The basis is openingValue x baseRatePercent/100 x the base-yield factor (0.7).
// It is capped at the gain actually earned on the opening value after management
// costs, so the lump sum never exceeds the real gain and is never negative.
func (itc *InvestmentTaxCalculator) CalculateVorabpauschale(openingValue, baseRatePercent, managementFeeRate, actualGain decimal.Decimal) decimal.Decimal {
	if openingValue.LessThanOrEqual(decimal.Zero) || baseRatePercent.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}

	basis := openingValue.Mul(baseRatePercent).Div(hundred).Mul(itc.Rules.BaseYieldFactor)
	earned := actualGain.Sub(openingValue.Mul(positive(managementFeeRate)))
	if earned.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}
	return decimal.Min(basis, earned).Truncate(2)
}

// CapitalGainsTax returns withholding tax plus solidarity surcharge plus church tax on a base.
// With church tax the reduced base rate of §32d(1) EStG applies.
func (itc *InvestmentTaxCalculator) CapitalGainsTax(base, churchTaxRate decimal.Decimal) decimal.Decimal {
	if base.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}
	k := unitInterval(churchTaxRate)
	flat := itc.Rules.FlatRate
	tax := base.Mul(flat)
	if k.GreaterThan(decimal.Zero) {
		tax = tax.Div(one.Add(flat.Mul(k)))
	}
	soli := tax.Mul(itc.Rules.SolidarityRate)
	church := tax.Mul(k)
	return tax.Add(soli).Add(church).Round(2)
}

// CalculateFundTax computes the annual tax on the Vorabpauschale of a fund.
// allowanceUsed is the part of this year's saver allowance consumed already.
func (itc *InvestmentTaxCalculator) CalculateFundTax(openingValue, actualGain, managementFeeRate decimal.Decimal, settings domain.TaxSettings, allowanceUsed decimal.Decimal) FundTaxResult {
	vorab := itc.CalculateVorabpauschale(openingValue, settings.BaseRatePercent, managementFeeRate, actualGain)
	if vorab.IsZero() {
		return FundTaxResult{Vorabpauschale: decimal.Zero, TaxableBase: decimal.Zero, AllowanceUsed: decimal.Zero, TotalTax: decimal.Zero}
	}

	taxable := vorab.Mul(one.Sub(unitInterval(settings.PartialExemptionRate)))
	used, base := itc.applyAllowance(taxable, settings.AllowanceAnnual, allowanceUsed)

	return FundTaxResult{
		Vorabpauschale: vorab,
		TaxableBase:    base,
		AllowanceUsed:  used,
		TotalTax:       itc.CapitalGainsTax(base, settings.ChurchTaxRate),
	}
}

// CalculateFinalSaleTax taxes a realized gain, crediting Vorabpauschale amounts taxed in earlier years
func (itc *InvestmentTaxCalculator) CalculateFinalSaleTax(realizedGain, vorabpauschaleTaxed decimal.Decimal, settings domain.TaxSettings, allowanceUsed decimal.Decimal) SaleTaxResult {
	gain := realizedGain.Sub(positive(vorabpauschaleTaxed))
	if gain.LessThanOrEqual(decimal.Zero) {
		return SaleTaxResult{TaxableGain: decimal.Zero, AllowanceUsed: decimal.Zero, Tax: decimal.Zero}
	}

	taxable := gain.Mul(one.Sub(unitInterval(settings.PartialExemptionRate)))
	used, base := itc.applyAllowance(taxable, settings.AllowanceAnnual, allowanceUsed)

	return SaleTaxResult{
		TaxableGain:   base,
		AllowanceUsed: used,
		Tax:           itc.CapitalGainsTax(base, settings.ChurchTaxRate),
	}
}

// applyAllowance consumes the remaining allowance and returns (consumed, remaining base)
func (itc *InvestmentTaxCalculator) applyAllowance(taxable, allowance, alreadyUsed decimal.Decimal) (decimal.Decimal, decimal.Decimal) {
	remaining := positive(allowance.Sub(positive(alreadyUsed)))
	used := decimal.Min(taxable, remaining)
	return used, taxable.Sub(used)
}
