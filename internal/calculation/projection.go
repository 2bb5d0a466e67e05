package calculation

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/vorsorge/rentenplan/internal/domain"
)

// portfolio is the running state of one simulation
type portfolio struct {
	value      decimal.Decimal
	costBasis  decimal.Decimal
	vorabTaxed decimal.Decimal // advance lump sums taxed on units still held

	cumTax       decimal.Decimal
	cumAllowance decimal.Decimal
	cumContrib   decimal.Decimal
	cumWithdrawn decimal.Decimal
	cumNetPayout decimal.Decimal
	cumFees      decimal.Decimal

	payoutStarted  bool
	payoutAnnual   decimal.Decimal // planned fund withdrawal per year
	relevel        bool            // recompute payoutAnnual from the remaining value every year
	monthlyPension decimal.Decimal
	guaranteed     decimal.Decimal
	pensionStart   int
}

// project runs the year loop. Years are indexed 0..FinalAge-CurrentAge inclusive.
func (ce *CalculationEngine) project(ctx context.Context, p domain.SimulationParams, product domain.Product, settings domain.TaxSettings, result *domain.SimulationResult) ([]domain.YearlyData, error) {
	st := &portfolio{
		value:      p.StartInvestment,
		costBasis:  p.StartInvestment,
		cumContrib: p.StartInvestment,
	}
	if p.ExistingPension != nil {
		st.guaranteed = p.ExistingPension.GuaranteedMonthly
	}

	_, isFund := product.(domain.FundPlan)
	years := make([]domain.YearlyData, 0, p.Years())

	for i := 0; i < p.Years(); i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		age := p.CurrentAge + i
		rec := domain.YearlyData{
			Age:            age,
			Year:           p.StartYear + i,
			Contribution:   decimal.Zero,
			Subsidy:        decimal.Zero,
			Fees:           decimal.Zero,
			Vorabpauschale: decimal.Zero,
			InvestmentTax:  decimal.Zero,
			Withdrawal:     decimal.Zero,
			PayoutTax:      decimal.Zero,
			NetPayout:      decimal.Zero,
		}
		allowanceUsed := decimal.Zero
		var heldAllYear decimal.Decimal

		if age < p.RetirementAge {
			rec.Phase = domain.PhaseAccumulation
			heldAllYear = st.value
			ce.accumulate(st, &rec, p, product, i)
		} else {
			rec.Phase = domain.PhasePayout
			if !st.payoutStarted {
				ce.startPayout(st, p, product, age, result)
			}
			if isFund {
				allowanceUsed = ce.withdrawFund(st, &rec, p, settings, age)
			} else {
				ce.payAnnuity(st, &rec, p, product, settings, age)
			}
			heldAllYear = st.value
		}

		ce.grow(st, &rec, p, isFund, heldAllYear, settings, allowanceUsed)

		rec.GrossValue = st.value.Round(2)
		rec.NetValue = rec.GrossValue
		if isFund {
			rec.NetValue = ce.liquidationValue(st, settings).Round(2)
		}
		rec.CumulativeTaxPaid = st.cumTax.Round(2)
		rec.CumulativeAllowanceUsed = st.cumAllowance.Round(2)
		rec.CumulativeContributions = st.cumContrib.Round(2)
		st.cumNetPayout = st.cumNetPayout.Add(rec.NetPayout)
		rec.CumulativeWithdrawn = st.cumWithdrawn.Round(2)
		rec.CumulativeNetPayout = st.cumNetPayout.Round(2)
		rec.CumulativeFees = st.cumFees.Round(2)

		if ce.Debug {
			ce.Logger.Debugf("age %d (%s): gross=%s net=%s tax=%s payout=%s",
				age, rec.Phase, rec.GrossValue.StringFixed(2), rec.NetValue.StringFixed(2),
				rec.InvestmentTax.Add(rec.PayoutTax).StringFixed(2), rec.NetPayout.StringFixed(2))
		}

		if isFund && rec.IsPayout() && st.value.LessThanOrEqual(decimal.Zero) && age < p.FinalAge {
			rec.Depleted = true
			result.Depleted = true
			result.DepletedAtAge = age
			years = append(years, rec)
			ce.Logger.Infof("%s: portfolio depleted at age %d", p.Name, age)
			break
		}
		years = append(years, rec)
	}
	return years, nil
}

// accumulate books the year's contribution, subsidies and front-load fee
func (ce *CalculationEngine) accumulate(st *portfolio, rec *domain.YearlyData, p domain.SimulationParams, product domain.Product, yearIndex int) {
	own := p.MonthlyContribution.Mul(twelve)
	if p.ExistingPension != nil {
		own = own.Add(p.ExistingPension.MonthlyContribution.Mul(twelve))
	}
	subsidy := ce.subsidy(product, own)
	invested := own.Add(subsidy)

	fee := decimal.Zero
	if p.FrontLoadMode == domain.FrontLoadPerContribution || yearIndex == 0 {
		fee = invested.Mul(p.FrontLoadFee)
	}

	st.value = st.value.Add(invested).Sub(fee)
	st.costBasis = st.costBasis.Add(invested)
	st.cumContrib = st.cumContrib.Add(own)
	st.cumFees = st.cumFees.Add(fee)

	rec.Contribution = own.Round(2)
	rec.Subsidy = subsidy.Round(2)
	rec.Fees = rec.Fees.Add(fee)
}

// subsidy returns state allowances or employer contributions on top of the saver's own money
func (ce *CalculationEngine) subsidy(product domain.Product, own decimal.Decimal) decimal.Decimal {
	if own.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}
	s := ce.Rules.Subsidies
	switch v := product.(type) {
	case domain.RiesterPension:
		return s.RiesterBasicAllowance.Add(s.RiesterChildAllowance.Mul(decimal.NewFromInt(int64(v.Children))))
	case domain.OccupationalPension:
		return own.Mul(decimal.Max(v.EmployerSubsidyRate, s.OccupationalEmployerMin))
	default:
		return decimal.Zero
	}
}

// startPayout fixes the payout plan in the first payout year
func (ce *CalculationEngine) startPayout(st *portfolio, p domain.SimulationParams, product domain.Product, age int, result *domain.SimulationResult) {
	st.payoutStarted = true
	st.pensionStart = age

	switch v := product.(type) {
	case domain.FundPlan:
		if p.PayoutMonthly.GreaterThan(decimal.Zero) {
			st.payoutAnnual = p.PayoutMonthly.Mul(twelve)
		} else {
			st.relevel = true
			st.payoutAnnual = AnnuityDuePayment(st.value, p.ExpectedReturn.Sub(p.ManagementFee), p.FinalAge-age+1)
		}
		result.MonthlyPayout = st.payoutAnnual.Div(twelve).Round(2)
	case domain.InsurancePension:
		if v.LumpSum {
			result.MonthlyPayout = decimal.Zero
			return
		}
		st.monthlyPension = ce.convert(st.value, domain.AnnuityFactorOf(v), st.guaranteed)
		result.MonthlyPayout = st.monthlyPension
	default:
		st.monthlyPension = ce.convert(st.value, domain.AnnuityFactorOf(product), st.guaranteed)
		result.MonthlyPayout = st.monthlyPension
	}
}

// convert turns capital into a monthly pension, never below the guaranteed amount
func (ce *CalculationEngine) convert(capital, factor, guaranteed decimal.Decimal) decimal.Decimal {
	monthly := capital.Div(tenK).Mul(factor).Round(2)
	return decimal.Max(monthly, guaranteed)
}

// withdrawFund sells units for the year's withdrawal and returns the allowance consumed
func (ce *CalculationEngine) withdrawFund(st *portfolio, rec *domain.YearlyData, p domain.SimulationParams, settings domain.TaxSettings, age int) decimal.Decimal {
	if st.value.LessThanOrEqual(decimal.Zero) {
		st.value = decimal.Zero
		return decimal.Zero
	}

	// taxes on the units held reduce the capital, so the level amount is recomputed
	// from what is left to still reach FinalAge
	if st.relevel {
		st.payoutAnnual = AnnuityDuePayment(st.value, p.ExpectedReturn.Sub(p.ManagementFee), p.FinalAge-age+1)
	}
	withdrawal := decimal.Min(st.payoutAnnual, st.value)
	if age >= p.FinalAge {
		withdrawal = st.value
	}
	share := withdrawal.Div(st.value)
	costOut := st.costBasis.Mul(share)
	credit := st.vorabTaxed.Mul(share)

	sale := ce.Taxes.Investment.CalculateFinalSaleTax(withdrawal.Sub(costOut), credit, settings, decimal.Zero)

	st.value = st.value.Sub(withdrawal)
	st.costBasis = st.costBasis.Sub(costOut)
	st.vorabTaxed = st.vorabTaxed.Sub(credit)
	st.cumWithdrawn = st.cumWithdrawn.Add(withdrawal)
	st.cumTax = st.cumTax.Add(sale.Tax)
	st.cumAllowance = st.cumAllowance.Add(sale.AllowanceUsed)

	rec.Withdrawal = withdrawal.Round(2)
	rec.PayoutTax = sale.Tax
	rec.NetPayout = withdrawal.Sub(sale.Tax).Round(2)
	return sale.AllowanceUsed
}

// payAnnuity pays the pension (or the lump sum) of an insurance-type product
func (ce *CalculationEngine) payAnnuity(st *portfolio, rec *domain.YearlyData, p domain.SimulationParams, product domain.Product, settings domain.TaxSettings, age int) {
	if ins, ok := product.(domain.InsurancePension); ok && ins.LumpSum {
		if age != st.pensionStart || st.value.LessThanOrEqual(decimal.Zero) {
			return
		}
		capital := st.value
		lump := ce.Taxes.Pension.CalculateLumpSumTax(capital, st.cumContrib, age, age-p.CurrentAge, settings)
		st.value = decimal.Zero
		st.cumWithdrawn = st.cumWithdrawn.Add(capital)
		st.cumTax = st.cumTax.Add(lump.Tax)
		rec.Withdrawal = capital.Round(2)
		rec.PayoutTax = lump.Tax
		rec.NetPayout = capital.Sub(lump.Tax).Round(2)
		return
	}

	payment := PensionPayment{
		MonthlyPension:     st.monthlyPension,
		GuaranteedPension:  st.guaranteed,
		TotalContributions: st.cumContrib,
		Age:                age,
		StartAge:           st.pensionStart,
	}
	taxed := ce.Taxes.Pension.TaxForProduct(product, payment, settings)
	annual := taxed.Payment.Mul(twelve)
	annualTax := taxed.Tax.Mul(twelve)

	st.value = positive(st.value.Sub(annual))
	st.cumWithdrawn = st.cumWithdrawn.Add(annual)
	st.cumTax = st.cumTax.Add(annualTax)

	rec.Withdrawal = annual.Round(2)
	rec.PayoutTax = annualTax
	rec.NetPayout = annual.Sub(annualTax).Round(2)
}

// grow applies the net return to the portfolio and, for fund plans, the annual
// advance lump-sum tax on units held all year
func (ce *CalculationEngine) grow(st *portfolio, rec *domain.YearlyData, p domain.SimulationParams, isFund bool, heldAllYear decimal.Decimal, settings domain.TaxSettings, allowanceUsed decimal.Decimal) {
	if st.value.LessThanOrEqual(decimal.Zero) {
		st.value = decimal.Zero
		rec.Growth = decimal.Zero
		rec.Fees = rec.Fees.Round(2)
		return
	}

	managementCost := st.value.Mul(p.ManagementFee)
	growth := st.value.Mul(p.ExpectedReturn).Sub(managementCost)
	st.value = positive(st.value.Add(growth))
	st.cumFees = st.cumFees.Add(managementCost)
	rec.Growth = growth.Round(2)
	rec.Fees = rec.Fees.Add(managementCost).Round(2)

	if !isFund {
		return
	}

	fundTax := ce.Taxes.Investment.CalculateFundTax(heldAllYear, heldAllYear.Mul(p.ExpectedReturn), p.ManagementFee, settings, allowanceUsed)
	tax := decimal.Min(fundTax.TotalTax, st.value)
	st.value = st.value.Sub(tax)
	st.vorabTaxed = st.vorabTaxed.Add(fundTax.Vorabpauschale)
	st.cumTax = st.cumTax.Add(tax)
	st.cumAllowance = st.cumAllowance.Add(fundTax.AllowanceUsed)

	rec.Vorabpauschale = fundTax.Vorabpauschale
	rec.InvestmentTax = tax
}

// liquidationValue is the fund value after the tax a full sale would trigger
func (ce *CalculationEngine) liquidationValue(st *portfolio, settings domain.TaxSettings) decimal.Decimal {
	if st.value.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}
	sale := ce.Taxes.Investment.CalculateFinalSaleTax(st.value.Sub(st.costBasis), st.vorabTaxed, settings, decimal.Zero)
	return positive(st.value.Sub(sale.Tax))
}

// AnnuityDuePayment returns the level annual payment, made at the start of each year,
// that consumes presentValue over n years at the given rate
func AnnuityDuePayment(presentValue, rate decimal.Decimal, n int) decimal.Decimal {
	if presentValue.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}
	if n <= 1 {
		return presentValue
	}
	if rate.IsZero() {
		return presentValue.Div(decimal.NewFromInt(int64(n))).Round(2)
	}

	growth := one.Add(rate)
	pow := one
	for i := 0; i < n; i++ {
		pow = pow.Mul(growth)
	}
	denominator := pow.Sub(one).Mul(growth)
	if denominator.IsZero() {
		return presentValue.Div(decimal.NewFromInt(int64(n))).Round(2)
	}
	return presentValue.Mul(rate).Mul(pow).Div(denominator).Round(2)
}
