package domain

import (
	"github.com/shopspring/decimal"
)

// Phase marks whether a simulated year is saving or paying out
type Phase string

const (
	PhaseAccumulation Phase = "accumulation"
	PhasePayout       Phase = "payout"
)

// FrontLoadMode selects how the front-load fee (Ausgabeaufschlag / Abschlusskosten) is charged
type FrontLoadMode string

const (
	// FrontLoadFirstYear charges the fee on the first year's contributions only
	FrontLoadFirstYear FrontLoadMode = "first_year"
	// FrontLoadPerContribution charges the fee on every contribution
	FrontLoadPerContribution FrontLoadMode = "per_contribution"
)

// ExistingPension describes a contract the saver already holds
type ExistingPension struct {
	MonthlyContribution decimal.Decimal `json:"monthlyContribution" yaml:"monthly_contribution"`
	GuaranteedMonthly   decimal.Decimal `json:"guaranteedMonthly" yaml:"guaranteed_monthly"`
}

// SimulationParams is the complete input for one product simulation
type SimulationParams struct {
	Name    string      `json:"name" yaml:"name"`
	Product ProductSpec `json:"product" yaml:"product"`

	CurrentAge    int `json:"currentAge" yaml:"current_age"`
	RetirementAge int `json:"retirementAge" yaml:"retirement_age"`
	FinalAge      int `json:"finalAge" yaml:"final_age"`
	StartYear     int `json:"startYear,omitempty" yaml:"start_year,omitempty"`

	StartInvestment     decimal.Decimal `json:"startInvestment" yaml:"start_investment"`
	MonthlyContribution decimal.Decimal `json:"monthlyContribution" yaml:"monthly_contribution"`
	ExpectedReturn      decimal.Decimal `json:"expectedReturn" yaml:"expected_return"` // fraction
	FrontLoadFee        decimal.Decimal `json:"frontLoadFee" yaml:"front_load_fee"`    // fraction
	FrontLoadMode       FrontLoadMode   `json:"frontLoadMode,omitempty" yaml:"front_load_mode,omitempty"`
	ManagementFee       decimal.Decimal `json:"managementFee" yaml:"management_fee"` // fraction, annual

	// PayoutMonthly is the desired monthly withdrawal from a fund plan.
	// Zero plans a level withdrawal that lasts until FinalAge.
	PayoutMonthly decimal.Decimal `json:"payoutMonthly,omitempty" yaml:"payout_monthly,omitempty"`

	TaxSettings     TaxSettings      `json:"taxSettings" yaml:"tax_settings"`
	ExistingPension *ExistingPension `json:"existingPension,omitempty" yaml:"existing_pension,omitempty"`

	MilestoneAges []int `json:"milestoneAges,omitempty" yaml:"milestone_ages,omitempty"`
}

// Years returns the number of simulated years (inclusive of both end ages)
func (p SimulationParams) Years() int {
	if p.FinalAge < p.CurrentAge {
		return 0
	}
	return p.FinalAge - p.CurrentAge + 1
}

// YearlyData is one simulated year
type YearlyData struct {
	Age   int   `json:"age"`
	Year  int   `json:"year"`
	Phase Phase `json:"phase"`

	GrossValue decimal.Decimal `json:"grossValue"`
	NetValue   decimal.Decimal `json:"netValue"`

	Contribution   decimal.Decimal `json:"contribution"`
	Subsidy        decimal.Decimal `json:"subsidy"`
	Growth         decimal.Decimal `json:"growth"`
	Fees           decimal.Decimal `json:"fees"`
	Vorabpauschale decimal.Decimal `json:"vorabpauschale"`
	InvestmentTax  decimal.Decimal `json:"investmentTax"`
	Withdrawal     decimal.Decimal `json:"withdrawal"`
	PayoutTax      decimal.Decimal `json:"payoutTax"`
	NetPayout      decimal.Decimal `json:"netPayout"`

	CumulativeTaxPaid       decimal.Decimal `json:"cumulativeTaxPaid"`
	CumulativeAllowanceUsed decimal.Decimal `json:"cumulativeAllowanceUsed"`
	CumulativeContributions decimal.Decimal `json:"cumulativeContributions"`
	CumulativeWithdrawn     decimal.Decimal `json:"cumulativeWithdrawn"`
	CumulativeNetPayout     decimal.Decimal `json:"cumulativeNetPayout"`
	CumulativeFees          decimal.Decimal `json:"cumulativeFees"`

	Depleted bool `json:"depleted"`
}

// IsPayout reports whether the record belongs to the payout phase
func (y YearlyData) IsPayout() bool {
	return y.Phase == PhasePayout
}

// MilestoneSummary condenses the record selected for a milestone age
type MilestoneSummary struct {
	Age                int             `json:"age"`
	RecordAge          int             `json:"recordAge"` // age of the record actually used
	GrossValue         decimal.Decimal `json:"grossValue"`
	NetValue           decimal.Decimal `json:"netValue"`
	TotalTax           decimal.Decimal `json:"totalTax"`
	TotalFees          decimal.Decimal `json:"totalFees"`
	TotalContributions decimal.Decimal `json:"totalContributions"`
	TotalWithdrawn     decimal.Decimal `json:"totalWithdrawn"`
	TotalNetPayout     decimal.Decimal `json:"totalNetPayout"`
	MonthlyNetPayout   decimal.Decimal `json:"monthlyNetPayout"`
}

// NetWealth is what the saver has received after tax plus what a full exit would still yield
func (m MilestoneSummary) NetWealth() decimal.Decimal {
	return m.NetValue.Add(m.TotalNetPayout)
}

// SimulationResult is the full projection for one parameter set
type SimulationResult struct {
	Name          string                   `json:"name"`
	ProductType   ProductType              `json:"productType"`
	TaxYear       int                      `json:"taxYear"`
	Years         []YearlyData             `json:"years"`
	Summary       map[int]MilestoneSummary `json:"summary"`
	Depleted      bool                     `json:"depleted"`
	DepletedAtAge int                      `json:"depletedAtAge,omitempty"`
	MonthlyPayout decimal.Decimal          `json:"monthlyPayout"` // gross, first payout year
	Warnings      []string                 `json:"warnings,omitempty"`
}

// Final returns the last simulated year, or a zero record if nothing was simulated
func (r *SimulationResult) Final() YearlyData {
	if r == nil || len(r.Years) == 0 {
		return YearlyData{}
	}
	return r.Years[len(r.Years)-1]
}

// RecordAt returns the first record with the given age; if the age lies beyond the
// simulated range the last record is used, before the range the first one.
func (r *SimulationResult) RecordAt(age int) (YearlyData, bool) {
	if r == nil || len(r.Years) == 0 {
		return YearlyData{}, false
	}
	for _, y := range r.Years {
		if y.Age == age {
			return y, true
		}
	}
	if age < r.Years[0].Age {
		return r.Years[0], true
	}
	return r.Years[len(r.Years)-1], true
}
