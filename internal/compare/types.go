package compare

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
	"github.com/vorsorge/rentenplan/internal/domain"
)

// ScenarioResult pairs a compared plan with its projection
type ScenarioResult struct {
	Name        string                   `json:"name"`
	ProductType domain.ProductType       `json:"productType"`
	Result      *domain.SimulationResult `json:"result"`
}

// ComparisonResult holds one plan's figures at a milestone age
type ComparisonResult struct {
	ScenarioName string             `json:"scenarioName"`
	ProductType  domain.ProductType `json:"productType"`
	Age          int                `json:"age"`
	RecordAge    int                `json:"recordAge"`

	// Key Metrics
	GrossValue         decimal.Decimal `json:"grossValue"`
	NetValue           decimal.Decimal `json:"netValue"`
	NetWealth          decimal.Decimal `json:"netWealth"` // net value + net payouts received
	TotalTax           decimal.Decimal `json:"totalTax"`
	TotalFees          decimal.Decimal `json:"totalFees"`
	TotalContributions decimal.Decimal `json:"totalContributions"`
	TotalWithdrawn     decimal.Decimal `json:"totalWithdrawn"`
	MonthlyNetPayout   decimal.Decimal `json:"monthlyNetPayout"`
	EffectiveTaxRatio  decimal.Decimal `json:"effectiveTaxRatio"` // totalTax / totalWithdrawn
	Depleted           bool            `json:"depleted"`

	// Comparison to Base
	AdvantageAbsolute decimal.Decimal `json:"advantageAbsolute"`
	AdvantagePercent  decimal.Decimal `json:"advantagePercent"`
	TaxDiffFromBase   decimal.Decimal `json:"taxDiffFromBase"`
}

// ComparisonSummary aligns several projections by age
type ComparisonSummary struct {
	BaseScenarioName string                     `json:"baseScenarioName"`
	Milestones       []int                      `json:"milestones"`
	Scenarios        []ScenarioResult           `json:"scenarios"`
	ByMilestone      map[int][]ComparisonResult `json:"byMilestone"`
	BestByMilestone  map[int]string             `json:"bestByMilestone"`
	Recommendations  []string                   `json:"recommendations"`
	ConfigPath       string                     `json:"configPath,omitempty"`
}

// MetricsCalculator extracts key metrics from simulation results
type MetricsCalculator struct{}

// NewMetricsCalculator creates a new metrics calculator
func NewMetricsCalculator() *MetricsCalculator {
	return &MetricsCalculator{}
}

// CalculateMetrics computes the comparison metrics of one scenario at a milestone age
func (mc *MetricsCalculator) CalculateMetrics(scenario ScenarioResult, age int) ComparisonResult {
	rec, _ := scenario.Result.RecordAt(age)

	result := ComparisonResult{
		ScenarioName:       scenario.Name,
		ProductType:        scenario.ProductType,
		Age:                age,
		RecordAge:          rec.Age,
		GrossValue:         rec.GrossValue,
		NetValue:           rec.NetValue,
		NetWealth:          rec.NetValue.Add(rec.CumulativeNetPayout),
		TotalTax:           rec.CumulativeTaxPaid,
		TotalFees:          rec.CumulativeFees,
		TotalContributions: rec.CumulativeContributions,
		TotalWithdrawn:     rec.CumulativeWithdrawn,
		MonthlyNetPayout:   rec.NetPayout.Div(decimal.NewFromInt(12)).Round(2),
		EffectiveTaxRatio:  EffectiveTaxRatio(rec.CumulativeTaxPaid, rec.CumulativeWithdrawn),
		Depleted:           scenario.Result.Depleted && scenario.Result.DepletedAtAge <= age,
	}
	return result
}

// CalculateComparison computes the deltas between a scenario and the base at the same milestone
func (mc *MetricsCalculator) CalculateComparison(scenario, base ComparisonResult) ComparisonResult {
	scenario.AdvantageAbsolute = scenario.NetWealth.Sub(base.NetWealth)
	scenario.AdvantagePercent = decimal.Zero
	if !base.NetWealth.IsZero() {
		scenario.AdvantagePercent = scenario.AdvantageAbsolute.
			Div(base.NetWealth.Abs()).
			Mul(decimal.NewFromInt(100)).
			Round(2)
	}
	scenario.TaxDiffFromBase = scenario.TotalTax.Sub(base.TotalTax)
	return scenario
}

// EffectiveTaxRatio returns totalTax / totalWithdrawn, zero when nothing was withdrawn
func EffectiveTaxRatio(totalTax, totalWithdrawn decimal.Decimal) decimal.Decimal {
	if totalWithdrawn.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}
	return totalTax.Div(totalWithdrawn).Round(4)
}

// GenerateRecommendations creates recommendations based on comparison results
func GenerateRecommendations(summary *ComparisonSummary) []string {
	recommendations := []string{}

	if len(summary.Scenarios) < 2 {
		return recommendations
	}

	// Best net wealth per milestone
	for _, age := range summary.Milestones {
		rows := summary.ByMilestone[age]
		best := bestByNetWealth(rows)
		if best == nil || best.ScenarioName == summary.BaseScenarioName || !best.AdvantageAbsolute.IsPositive() {
			continue
		}
		recommendations = append(recommendations,
			fmt.Sprintf("Best at age %d: %s provides %s EUR more net wealth than %s (%s%%)",
				age, best.ScenarioName, best.AdvantageAbsolute.StringFixed(0), summary.BaseScenarioName, best.AdvantagePercent.StringFixed(1)))
	}

	// Lowest effective tax ratio over the whole projection
	var lowest *ScenarioResult
	lowestRatio := decimal.Zero
	for i := range summary.Scenarios {
		final := summary.Scenarios[i].Result.Final()
		if final.CumulativeWithdrawn.IsZero() {
			continue
		}
		ratio := EffectiveTaxRatio(final.CumulativeTaxPaid, final.CumulativeWithdrawn)
		if lowest == nil || ratio.LessThan(lowestRatio) {
			lowest = &summary.Scenarios[i]
			lowestRatio = ratio
		}
	}
	if lowest != nil {
		recommendations = append(recommendations,
			fmt.Sprintf("Lowest Taxes: %s pays %s%% of its payouts in tax",
				lowest.Name, lowestRatio.Mul(decimal.NewFromInt(100)).StringFixed(1)))
	}

	// Highest monthly payout
	var highest *ScenarioResult
	for i := range summary.Scenarios {
		if highest == nil || summary.Scenarios[i].Result.MonthlyPayout.GreaterThan(highest.Result.MonthlyPayout) {
			highest = &summary.Scenarios[i]
		}
	}
	if highest != nil && highest.Result.MonthlyPayout.IsPositive() {
		recommendations = append(recommendations,
			fmt.Sprintf("Highest Payout: %s pays %s EUR gross per month",
				highest.Name, highest.Result.MonthlyPayout.StringFixed(2)))
	}

	// Depletion warnings
	for _, s := range summary.Scenarios {
		if s.Result.Depleted {
			recommendations = append(recommendations,
				fmt.Sprintf("Warning: %s runs out of capital at age %d", s.Name, s.Result.DepletedAtAge))
		}
	}

	return recommendations
}

func bestByNetWealth(rows []ComparisonResult) *ComparisonResult {
	var best *ComparisonResult
	for i := range rows {
		if best == nil || rows[i].NetWealth.GreaterThan(best.NetWealth) {
			best = &rows[i]
		}
	}
	return best
}

// unionMilestones merges the milestone ages of all results, sorted
func unionMilestones(results []ScenarioResult) []int {
	seen := map[int]bool{}
	var ages []int
	for _, r := range results {
		for age := range r.Result.Summary {
			if !seen[age] {
				seen[age] = true
				ages = append(ages, age)
			}
		}
	}
	sort.Ints(ages)
	return ages
}
