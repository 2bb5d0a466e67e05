package domain

import (
	"github.com/shopspring/decimal"
)

// TaxYearRules contains every statutory constant the engines need for one tax year.
// The engines never hard-code these values; a new tax year is added by supplying
// another table (see config.LoadRegulatoryFile).
type TaxYearRules struct {
	Year int `yaml:"year" json:"year"`

	IncomeTax    IncomeTaxRules    `yaml:"income_tax" json:"incomeTax"`
	Solidarity   SolidarityRules   `yaml:"solidarity" json:"solidarity"`
	ChildRelief  ChildReliefRules  `yaml:"child_relief" json:"childRelief"`
	CapitalGains CapitalGainsRules `yaml:"capital_gains" json:"capitalGains"`
	Pension      PensionRules      `yaml:"pension" json:"pension"`
	Subsidies    SubsidyRules      `yaml:"subsidies" json:"subsidies"`
}

// IncomeTaxRules describes the §32a EStG tariff zones
type IncomeTaxRules struct {
	BasicAllowance decimal.Decimal `yaml:"basic_allowance" json:"basicAllowance"`
	Zone1Limit     decimal.Decimal `yaml:"zone1_limit" json:"zone1Limit"`
	Zone2Limit     decimal.Decimal `yaml:"zone2_limit" json:"zone2Limit"`
	Zone3Limit     decimal.Decimal `yaml:"zone3_limit" json:"zone3Limit"`

	// Zone 1: (Zone1Quadratic*y + Zone1Linear)*y, y = (x - BasicAllowance)/10000
	Zone1Quadratic decimal.Decimal `yaml:"zone1_quadratic" json:"zone1Quadratic"`
	Zone1Linear    decimal.Decimal `yaml:"zone1_linear" json:"zone1Linear"`

	// Zone 2: (Zone2Quadratic*z + Zone2Linear)*z + Zone2Constant, z = (x - Zone1Limit)/10000
	Zone2Quadratic decimal.Decimal `yaml:"zone2_quadratic" json:"zone2Quadratic"`
	Zone2Linear    decimal.Decimal `yaml:"zone2_linear" json:"zone2Linear"`
	Zone2Constant  decimal.Decimal `yaml:"zone2_constant" json:"zone2Constant"`

	Zone3Rate     decimal.Decimal `yaml:"zone3_rate" json:"zone3Rate"`
	Zone3Subtract decimal.Decimal `yaml:"zone3_subtract" json:"zone3Subtract"`
	Zone4Rate     decimal.Decimal `yaml:"zone4_rate" json:"zone4Rate"`
	Zone4Subtract decimal.Decimal `yaml:"zone4_subtract" json:"zone4Subtract"`
}

// SolidarityRules contains the solidarity surcharge thresholds and rates
type SolidarityRules struct {
	AllowanceSingle  decimal.Decimal `yaml:"allowance_single" json:"allowanceSingle"`
	AllowanceMarried decimal.Decimal `yaml:"allowance_married" json:"allowanceMarried"`
	PhaseInRate      decimal.Decimal `yaml:"phase_in_rate" json:"phaseInRate"`
	Rate             decimal.Decimal `yaml:"rate" json:"rate"`
}

// ChildReliefRules contains the per-child allowances deducted from taxable income
type ChildReliefRules struct {
	ChildAllowance   decimal.Decimal `yaml:"child_allowance" json:"childAllowance"`
	CareAndEducation decimal.Decimal `yaml:"care_and_education" json:"careAndEducation"`
}

// PerChild returns the total allowance per child
func (c ChildReliefRules) PerChild() decimal.Decimal {
	return c.ChildAllowance.Add(c.CareAndEducation)
}

// CapitalGainsRules contains flat-rate investment taxation parameters
type CapitalGainsRules struct {
	FlatRate               decimal.Decimal `yaml:"flat_rate" json:"flatRate"`
	SolidarityRate         decimal.Decimal `yaml:"solidarity_rate" json:"solidarityRate"`
	SaverAllowanceSingle   decimal.Decimal `yaml:"saver_allowance_single" json:"saverAllowanceSingle"`
	SaverAllowanceMarried  decimal.Decimal `yaml:"saver_allowance_married" json:"saverAllowanceMarried"`
	PartialExemptionEquity decimal.Decimal `yaml:"partial_exemption_equity" json:"partialExemptionEquity"`
	BaseRatePercent        decimal.Decimal `yaml:"base_rate_percent" json:"baseRatePercent"`
	BaseYieldFactor        decimal.Decimal `yaml:"base_yield_factor" json:"baseYieldFactor"`
}

// ErtragsanteilBand maps a starting age (inclusive) to the taxable income portion
type ErtragsanteilBand struct {
	FromAge int             `yaml:"from_age" json:"fromAge"`
	Percent decimal.Decimal `yaml:"percent" json:"percent"`
}

// PensionRules contains payout taxation parameters
type PensionRules struct {
	HalfIncomeMinAge       int                 `yaml:"half_income_min_age" json:"halfIncomeMinAge"`
	HalfIncomeMinYearsHeld int                 `yaml:"half_income_min_years_held" json:"halfIncomeMinYearsHeld"`
	HalfIncomeShare        decimal.Decimal     `yaml:"half_income_share" json:"halfIncomeShare"`
	DefaultPayoutTaxRate   decimal.Decimal     `yaml:"default_payout_tax_rate" json:"defaultPayoutTaxRate"`
	Ertragsanteil          []ErtragsanteilBand `yaml:"ertragsanteil" json:"ertragsanteil"`
}

// SubsidyRules contains state and employer contributions added to pension products
type SubsidyRules struct {
	RiesterBasicAllowance   decimal.Decimal `yaml:"riester_basic_allowance" json:"riesterBasicAllowance"`
	RiesterChildAllowance   decimal.Decimal `yaml:"riester_child_allowance" json:"riesterChildAllowance"`
	OccupationalEmployerMin decimal.Decimal `yaml:"occupational_employer_min" json:"occupationalEmployerMin"`
}

func d(v string) decimal.Decimal { return decimal.RequireFromString(v) }

// Rules2024 returns the built-in table for the 2024 German tax year.
func Rules2024() TaxYearRules {
	return TaxYearRules{
		Year: 2024,
		IncomeTax: IncomeTaxRules{
			BasicAllowance: d("11604"),
			Zone1Limit:     d("17005"),
			Zone2Limit:     d("66760"),
			Zone3Limit:     d("277826"),
			Zone1Quadratic: d("922.98"),
			Zone1Linear:    d("1400"),
			Zone2Quadratic: d("181.19"),
			Zone2Linear:    d("2397"),
			Zone2Constant:  d("1025.38"),
			Zone3Rate:      d("0.42"),
			Zone3Subtract:  d("10602.13"),
			Zone4Rate:      d("0.45"),
			Zone4Subtract:  d("18936.88"),
		},
		Solidarity: SolidarityRules{
			AllowanceSingle:  d("18472"),
			AllowanceMarried: d("36936"),
			PhaseInRate:      d("0.119"),
			Rate:             d("0.055"),
		},
		ChildRelief: ChildReliefRules{
			ChildAllowance:   d("6384"),
			CareAndEducation: d("2928"),
		},
		CapitalGains: CapitalGainsRules{
			FlatRate:               d("0.25"),
			SolidarityRate:         d("0.055"),
			SaverAllowanceSingle:   d("1000"),
			SaverAllowanceMarried:  d("2000"),
			PartialExemptionEquity: d("0.15"),
			BaseRatePercent:        d("2.29"),
			BaseYieldFactor:        d("0.7"),
		},
		Pension: PensionRules{
			HalfIncomeMinAge:       62,
			HalfIncomeMinYearsHeld: 12,
			HalfIncomeShare:        d("0.5"),
			DefaultPayoutTaxRate:   d("0.25"),
			Ertragsanteil:          ertragsanteilTable(),
		},
		Subsidies: SubsidyRules{
			RiesterBasicAllowance:   d("175"),
			RiesterChildAllowance:   d("300"),
			OccupationalEmployerMin: d("0.15"),
		},
	}
}

// ertragsanteilTable is the §22 Nr. 1 Satz 3 a) bb) EStG table
func ertragsanteilTable() []ErtragsanteilBand {
	bands := []struct {
		from int
		pct  int64
	}{
		{0, 59}, {2, 58}, {4, 57}, {6, 56}, {9, 55}, {11, 54}, {13, 53}, {15, 52},
		{17, 51}, {19, 50}, {21, 49}, {23, 48}, {25, 47}, {27, 46}, {28, 45}, {30, 44},
		{32, 43}, {33, 42}, {35, 41}, {36, 40}, {38, 39}, {39, 38}, {41, 37}, {42, 36},
		{43, 35}, {45, 34}, {46, 33}, {48, 32}, {49, 31}, {50, 30}, {51, 29}, {53, 28},
		{54, 27}, {55, 26}, {57, 25}, {58, 24}, {59, 23}, {60, 22}, {62, 21}, {63, 20},
		{64, 19}, {65, 18}, {67, 17}, {68, 16}, {69, 15}, {71, 14}, {72, 13}, {74, 12},
		{75, 11}, {76, 10}, {78, 9}, {80, 8}, {81, 7}, {83, 6}, {85, 5}, {88, 4},
		{92, 3}, {94, 2}, {97, 1},
	}
	out := make([]ErtragsanteilBand, len(bands))
	for i, b := range bands {
		out[i] = ErtragsanteilBand{FromAge: b.from, Percent: decimal.NewFromInt(b.pct)}
	}
	return out
}

// RegulatoryConfig is the on-disk form of additional tax-year tables
type RegulatoryConfig struct {
	Metadata RegulatoryMetadata `yaml:"metadata" json:"metadata"`
	Years    []TaxYearRules     `yaml:"years" json:"years"`
}

// RegulatoryMetadata contains information about the regulatory data
type RegulatoryMetadata struct {
	LastUpdated string `yaml:"last_updated" json:"last_updated"`
	Description string `yaml:"description" json:"description"`
}
