package compare

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vorsorge/rentenplan/internal/domain"
)

func testPlans() []domain.SimulationParams {
	rules := domain.Rules2024()
	settings := domain.DefaultTaxSettings(rules, domain.Single)
	return []domain.SimulationParams{
		{
			Name:                "A",
			Product:             domain.ProductSpec{Type: domain.ProductFund},
			CurrentAge:          30,
			RetirementAge:       40,
			FinalAge:            39,
			MonthlyContribution: decimal.NewFromInt(500),
			TaxSettings:         settings,
		},
		{
			Name:                "B",
			Product:             domain.ProductSpec{Type: domain.ProductInsurancePension},
			CurrentAge:          30,
			RetirementAge:       40,
			FinalAge:            39,
			MonthlyContribution: decimal.NewFromInt(600),
			TaxSettings:         settings,
		},
	}
}

func TestCompareEngine_Compare(t *testing.T) {
	engine := NewCompareEngine(nil)

	summary, err := engine.Compare(context.Background(), testPlans(), CompareOptions{Milestones: []int{39, 35}})
	require.NoError(t, err)

	assert.Equal(t, "A", summary.BaseScenarioName)
	assert.Equal(t, []int{35, 39}, summary.Milestones)
	require.Len(t, summary.Scenarios, 2)
	assert.Equal(t, "A", summary.Scenarios[0].Name, "input order is kept")
	assert.Equal(t, domain.ProductInsurancePension, summary.Scenarios[1].ProductType)

	rows := summary.ByMilestone[39]
	require.Len(t, rows, 2)
	assert.True(t, rows[0].NetWealth.Equal(decimal.NewFromInt(60000)), "got %s", rows[0].NetWealth)
	assert.True(t, rows[0].AdvantageAbsolute.IsZero())
	assert.True(t, rows[1].AdvantageAbsolute.Equal(decimal.NewFromInt(12000)), "got %s", rows[1].AdvantageAbsolute)
	assert.True(t, rows[1].AdvantagePercent.Equal(decimal.NewFromInt(20)), "got %s", rows[1].AdvantagePercent)
	assert.True(t, rows[1].EffectiveTaxRatio.IsZero(), "nothing withdrawn")

	early := summary.ByMilestone[35]
	assert.True(t, early[1].AdvantageAbsolute.Equal(decimal.NewFromInt(7200)))

	assert.Equal(t, "B", summary.BestByMilestone[39])
	require.NotEmpty(t, summary.Recommendations)
	assert.Contains(t, summary.Recommendations[0], "Best at age 35: B provides 7200 EUR more net wealth than A")
}

func TestCompareEngine_Compare_DefaultMilestones(t *testing.T) {
	engine := NewCompareEngine(nil)

	summary, err := engine.Compare(context.Background(), testPlans(), CompareOptions{})
	require.NoError(t, err)

	assert.Equal(t, []int{40, 67, 85}, summary.Milestones)
	for _, age := range summary.Milestones {
		assert.Equal(t, 39, summary.ByMilestone[age][0].RecordAge, "last record beyond the simulated range")
	}
}

func TestCompareEngine_Compare_BaseScenario(t *testing.T) {
	engine := NewCompareEngine(nil)

	summary, err := engine.Compare(context.Background(), testPlans(), CompareOptions{BaseScenarioName: "B", Milestones: []int{39}, Parallelism: 1})
	require.NoError(t, err)
	assert.Equal(t, "B", summary.BaseScenarioName)
	assert.True(t, summary.ByMilestone[39][0].AdvantageAbsolute.Equal(decimal.NewFromInt(-12000)))

	_, err = engine.Compare(context.Background(), testPlans(), CompareOptions{BaseScenarioName: "missing"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "base scenario missing not found")
}

func TestCompareEngine_Compare_Errors(t *testing.T) {
	engine := NewCompareEngine(nil)

	_, err := engine.Compare(context.Background(), nil, CompareOptions{})
	require.Error(t, err)

	plans := testPlans()
	plans[1].RetirementAge = 20
	_, err = engine.Compare(context.Background(), plans, CompareOptions{})
	require.Error(t, err)

	var verr *domain.ValidationError
	require.True(t, errors.As(err, &verr), "validation error must survive wrapping")
	assert.Equal(t, "retirementAge", verr.Field)
	assert.True(t, strings.Contains(err.Error(), "failed to calculate scenario B"))
}

func TestCompareEngine_ScenarioNames(t *testing.T) {
	plans := testPlans()
	plans[0].Name = ""
	plans[1].Name = ""
	plans[1].Product.Type = ""

	names := scenarioNames(plans)
	assert.Equal(t, []string{"Fondssparplan", "Fondssparplan (2)"}, names)
}

func TestEffectiveTaxRatio(t *testing.T) {
	assert.True(t, EffectiveTaxRatio(decimal.NewFromInt(100), decimal.Zero).IsZero())
	assert.True(t, EffectiveTaxRatio(decimal.NewFromInt(250), decimal.NewFromInt(1000)).Equal(decimal.RequireFromString("0.25")))
}

func TestGenerateRecommendations_Payouts(t *testing.T) {
	engine := NewCompareEngine(nil)

	plans := testPlans()
	for i := range plans {
		plans[i].CurrentAge = 60
		plans[i].RetirementAge = 60
		plans[i].FinalAge = 70
		plans[i].MonthlyContribution = decimal.Zero
		plans[i].StartInvestment = decimal.NewFromInt(100000)
	}
	plans[0].PayoutMonthly = decimal.NewFromInt(2000)

	summary, err := engine.Compare(context.Background(), plans, CompareOptions{Milestones: []int{70}})
	require.NoError(t, err)

	joined := strings.Join(summary.Recommendations, "\n")
	assert.Contains(t, joined, "Highest Payout: A pays 2000.00 EUR gross per month")
	assert.Contains(t, joined, "Warning: A runs out of capital at age 64")
	assert.Contains(t, joined, "Lowest Taxes:")
}
