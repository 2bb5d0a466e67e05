package calculation

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/vorsorge/rentenplan/internal/domain"
)

// TaxationMethod names the regime applied to a payout
type TaxationMethod string

const (
	MethodHalfIncome    TaxationMethod = "half_income"   // Halbeinkünfteverfahren, §20(1) Nr. 6 EStG
	MethodFull          TaxationMethod = "full"          // nachgelagerte Besteuerung
	MethodErtragsanteil TaxationMethod = "ertragsanteil" // §22 Nr. 1 Satz 3 a) bb) EStG
	MethodCapitalGains  TaxationMethod = "capital_gains" // taxed on sale, not as a pension
)

// PensionPayment describes one monthly pension payment and its context
type PensionPayment struct {
	MonthlyPension     decimal.Decimal
	GuaranteedPension  decimal.Decimal // the payment never falls below this
	TotalContributions decimal.Decimal
	Age                int
	StartAge           int // age at the first payment, used for the Ertragsanteil
}

// PensionTaxResult is the tax on a monthly payment
type PensionTaxResult struct {
	Method        TaxationMethod  `json:"method"`
	Payment       decimal.Decimal `json:"payment"`
	TaxableShare  decimal.Decimal `json:"taxableShare"` // fraction
	TaxableAmount decimal.Decimal `json:"taxableAmount"`
	Tax           decimal.Decimal `json:"tax"`
}

// LumpSumTaxResult is the tax on a capital payout instead of a pension
type LumpSumTaxResult struct {
	Method        TaxationMethod  `json:"method"`
	Gain          decimal.Decimal `json:"gain"`
	TaxableAmount decimal.Decimal `json:"taxableAmount"`
	Tax           decimal.Decimal `json:"tax"`
}

// PensionTaxCalculator handles the taxation of pension payouts
type PensionTaxCalculator struct {
	Rules      domain.PensionRules
	Investment *InvestmentTaxCalculator
}

// NewPensionTaxCalculator creates a pension tax calculator; lump sums that miss the
// half-income conditions are taxed through the investment calculator
func NewPensionTaxCalculator(rules domain.TaxYearRules, investment *InvestmentTaxCalculator) *PensionTaxCalculator {
	if investment == nil {
		investment = NewInvestmentTaxCalculator(rules)
	}
	return &PensionTaxCalculator{Rules: rules.Pension, Investment: investment}
}

// CalculatePensionTax taxes a monthly payment. With half-income taxation enabled and the
// minimum age reached, half of the payment is taxable, otherwise all of it.
func (ptc *PensionTaxCalculator) CalculatePensionTax(payment PensionPayment, settings domain.TaxSettings) PensionTaxResult {
	if settings.UseHalfIncomeTaxation && payment.Age >= ptc.Rules.HalfIncomeMinAge {
		return ptc.taxShare(payment, MethodHalfIncome, ptc.Rules.HalfIncomeShare, settings)
	}
	return ptc.taxShare(payment, MethodFull, one, settings)
}

// ErtragsanteilPercent returns the taxable share in percent for a pension starting at age
func (ptc *PensionTaxCalculator) ErtragsanteilPercent(startAge int) decimal.Decimal {
	pct := decimal.Zero
	found := false
	for _, band := range ptc.Rules.Ertragsanteil {
		if band.FromAge <= startAge {
			pct = band.Percent
			found = true
		}
	}
	if !found && len(ptc.Rules.Ertragsanteil) > 0 {
		return ptc.Rules.Ertragsanteil[0].Percent
	}
	return pct
}

// CalculateErtragsanteilTax taxes only the yield share of a lifelong private annuity
func (ptc *PensionTaxCalculator) CalculateErtragsanteilTax(payment PensionPayment, settings domain.TaxSettings) PensionTaxResult {
	startAge := payment.StartAge
	if startAge <= 0 {
		startAge = payment.Age
	}
	share := ptc.ErtragsanteilPercent(startAge).Div(hundred)
	return ptc.taxShare(payment, MethodErtragsanteil, share, settings)
}

// TaxForProduct dispatches on the product variant. Fund plans are taxed on sale and
// return a zero result here.
func (ptc *PensionTaxCalculator) TaxForProduct(product domain.Product, payment PensionPayment, settings domain.TaxSettings) PensionTaxResult {
	switch product.(type) {
	case domain.FundPlan:
		return PensionTaxResult{Method: MethodCapitalGains, Payment: payment.MonthlyPension, TaxableShare: decimal.Zero, TaxableAmount: decimal.Zero, Tax: decimal.Zero}
	case domain.InsurancePension:
		if settings.UseHalfIncomeTaxation && payment.Age >= ptc.Rules.HalfIncomeMinAge {
			return ptc.taxShare(payment, MethodHalfIncome, ptc.Rules.HalfIncomeShare, settings)
		}
		return ptc.CalculateErtragsanteilTax(payment, settings)
	case domain.RiesterPension, domain.RuerupPension, domain.OccupationalPension:
		return ptc.taxShare(payment, MethodFull, one, settings)
	case domain.UnknownProduct:
		return ptc.CalculateErtragsanteilTax(payment, settings)
	default:
		panic(fmt.Sprintf("unhandled product %T", product))
	}
}

// CalculateLumpSumTax taxes a one-off capital payout. From the minimum age and after the
// minimum holding period half of the gain is taxed at the personal rate; otherwise the
// whole gain is subject to withholding tax.
func (ptc *PensionTaxCalculator) CalculateLumpSumTax(capital, contributions decimal.Decimal, age, yearsHeld int, settings domain.TaxSettings) LumpSumTaxResult {
	gain := positive(capital.Sub(contributions))
	if gain.IsZero() {
		return LumpSumTaxResult{Method: MethodCapitalGains, Gain: gain, TaxableAmount: decimal.Zero, Tax: decimal.Zero}
	}

	if age >= ptc.Rules.HalfIncomeMinAge && yearsHeld >= ptc.Rules.HalfIncomeMinYearsHeld {
		taxable := gain.Mul(ptc.Rules.HalfIncomeShare)
		return LumpSumTaxResult{
			Method:        MethodHalfIncome,
			Gain:          gain,
			TaxableAmount: taxable,
			Tax:           taxable.Mul(settings.PayoutTaxRate).Round(2),
		}
	}

	return LumpSumTaxResult{
		Method:        MethodCapitalGains,
		Gain:          gain,
		TaxableAmount: gain,
		Tax:           ptc.Investment.CapitalGainsTax(gain, settings.ChurchTaxRate),
	}
}

func (ptc *PensionTaxCalculator) taxShare(payment PensionPayment, method TaxationMethod, share decimal.Decimal, settings domain.TaxSettings) PensionTaxResult {
	amount := decimal.Max(positive(payment.MonthlyPension), positive(payment.GuaranteedPension))
	taxable := amount.Mul(share)
	return PensionTaxResult{
		Method:        method,
		Payment:       amount,
		TaxableShare:  share,
		TaxableAmount: taxable,
		Tax:           taxable.Mul(positive(settings.PayoutTaxRate)).Round(2),
	}
}
