package calculation

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vorsorge/rentenplan/internal/domain"
)

func TestNewCalculationEngine(t *testing.T) {
	engine := NewCalculationEngine()

	assert.NotNil(t, engine, "Should create engine")
	assert.NotNil(t, engine.Taxes, "Should initialize tax calculators")
	assert.NotNil(t, engine.Taxes.Income)
	assert.NotNil(t, engine.Taxes.Investment)
	assert.NotNil(t, engine.Taxes.Pension)
	assert.NotNil(t, engine.Logger, "Should initialize logger")
	assert.Equal(t, 2024, engine.Rules.Year)
}

func TestCalculationEngine_SetLogger(t *testing.T) {
	engine := NewCalculationEngine()

	// Test setting a custom logger
	customLogger := &TestLogger{}
	engine.SetLogger(customLogger)

	assert.Equal(t, customLogger, engine.Logger, "Should set custom logger")

	// Test setting nil logger (should use no-op logger)
	engine.SetLogger(nil)

	assert.NotNil(t, engine.Logger, "Should not be nil")
	assert.IsType(t, NopLogger{}, engine.Logger, "Should be no-op logger")
}

func fundParams() domain.SimulationParams {
	rules := domain.Rules2024()
	return domain.SimulationParams{
		Name:                "ETF",
		Product:             domain.ProductSpec{Type: domain.ProductFund},
		CurrentAge:          30,
		RetirementAge:       40,
		FinalAge:            39,
		MonthlyContribution: decimal.NewFromInt(500),
		TaxSettings:         domain.DefaultTaxSettings(rules, domain.Single),
	}
}

func TestSimulate_ScenarioD_ZeroGrowthFund(t *testing.T) {
	engine := NewCalculationEngine()

	result, err := engine.Simulate(context.Background(), fundParams())
	require.NoError(t, err)

	require.Len(t, result.Years, 10)
	final := result.Final()
	assert.Equal(t, 39, final.Age)
	assert.True(t, final.GrossValue.Equal(decimal.NewFromInt(60000)), "got %s", final.GrossValue)
	assert.True(t, final.NetValue.Equal(decimal.NewFromInt(60000)), "no gain, no latent tax: %s", final.NetValue)
	assert.True(t, final.CumulativeTaxPaid.IsZero())
	assert.True(t, final.CumulativeContributions.Equal(decimal.NewFromInt(60000)))
	for _, y := range result.Years {
		assert.Equal(t, domain.PhaseAccumulation, y.Phase)
		assert.True(t, y.Vorabpauschale.IsZero())
	}
	assert.False(t, result.Depleted)
}

func TestSimulate_ZeroGrowthKeepsContributions(t *testing.T) {
	engine := NewCalculationEngine()

	for _, product := range domain.ProductTypes {
		if product == domain.ProductRiester || product == domain.ProductOccupational {
			continue // subsidised products add money on top
		}
		t.Run(string(product), func(t *testing.T) {
			params := fundParams()
			params.Product = domain.ProductSpec{Type: product}
			params.StartInvestment = decimal.NewFromInt(10000)

			result, err := engine.Simulate(context.Background(), params)
			require.NoError(t, err)
			assert.True(t, result.Final().GrossValue.Equal(decimal.NewFromInt(70000)), "got %s", result.Final().GrossValue)
		})
	}
}

func TestSimulate_FrontLoadModes(t *testing.T) {
	engine := NewCalculationEngine()

	params := fundParams()
	params.FinalAge = 32
	params.MonthlyContribution = decimal.NewFromInt(100)
	params.FrontLoadFee = decimal.RequireFromString("0.05")

	tests := []struct {
		mode     domain.FrontLoadMode
		expected int64
	}{
		{"", 3540},
		{domain.FrontLoadFirstYear, 3540},
		{domain.FrontLoadPerContribution, 3420},
	}

	for _, tt := range tests {
		params.FrontLoadMode = tt.mode
		result, err := engine.Simulate(context.Background(), params)
		require.NoError(t, err)
		assert.True(t, result.Final().GrossValue.Equal(decimal.NewFromInt(tt.expected)),
			"mode %q: expected %d, got %s", tt.mode, tt.expected, result.Final().GrossValue)
		assert.True(t, result.Final().CumulativeFees.Equal(decimal.NewFromInt(3600-tt.expected)))
	}
}

func TestSimulate_ValidationErrors(t *testing.T) {
	engine := NewCalculationEngine()

	tests := []struct {
		name   string
		modify func(*domain.SimulationParams)
		field  string
	}{
		{"retirement before current age", func(p *domain.SimulationParams) { p.RetirementAge = 25 }, "retirementAge"},
		{"final before current age", func(p *domain.SimulationParams) { p.FinalAge = 29 }, "finalAge"},
		{"age out of range", func(p *domain.SimulationParams) { p.FinalAge = 130 }, "finalAge"},
		{"negative age", func(p *domain.SimulationParams) { p.CurrentAge = -1 }, "currentAge"},
		{"return wipes out capital", func(p *domain.SimulationParams) { p.ExpectedReturn = decimal.NewFromInt(-1) }, "expectedReturn"},
		{"fee above 100%", func(p *domain.SimulationParams) { p.FrontLoadFee = decimal.RequireFromString("1.5") }, "frontLoadFee"},
		{"unknown front-load mode", func(p *domain.SimulationParams) { p.FrontLoadMode = "monthly" }, "frontLoadMode"},
		{"milestone out of range", func(p *domain.SimulationParams) { p.MilestoneAges = []int{200} }, "milestoneAges"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			params := fundParams()
			tt.modify(&params)

			result, err := engine.Simulate(context.Background(), params)
			require.Error(t, err)
			assert.Nil(t, result)

			var verr *domain.ValidationError
			require.True(t, errors.As(err, &verr), "expected ValidationError, got %T", err)
			assert.Equal(t, tt.field, verr.Field)
		})
	}
}

func TestSimulate_UnusualValuesAreAccepted(t *testing.T) {
	engine := NewCalculationEngine()

	params := fundParams()
	params.MonthlyContribution = decimal.Zero
	params.StartInvestment = decimal.NewFromInt(-5000)
	params.ExpectedReturn = decimal.RequireFromString("-0.2")

	result, err := engine.Simulate(context.Background(), params)
	require.NoError(t, err)
	assert.True(t, result.Final().GrossValue.IsZero())
}

func TestSimulate_FinalAgeBeforeRetirementIsAccumulationOnly(t *testing.T) {
	engine := NewCalculationEngine()

	result, err := engine.Simulate(context.Background(), fundParams())
	require.NoError(t, err)

	for _, y := range result.Years {
		assert.False(t, y.IsPayout())
	}
	assert.True(t, result.MonthlyPayout.IsZero())
}

func TestSimulate_NetNeverAboveGross(t *testing.T) {
	engine := NewCalculationEngine()

	for _, product := range domain.ProductTypes {
		params := fundParams()
		params.Product = domain.ProductSpec{Type: product}
		params.RetirementAge = 67
		params.FinalAge = 90
		params.ExpectedReturn = decimal.RequireFromString("0.07")
		params.ManagementFee = decimal.RequireFromString("0.005")

		result, err := engine.Simulate(context.Background(), params)
		require.NoError(t, err)
		for _, y := range result.Years {
			assert.True(t, y.NetValue.LessThanOrEqual(y.GrossValue), "%s age %d: net %s > gross %s", product, y.Age, y.NetValue, y.GrossValue)
			assert.False(t, y.GrossValue.IsNegative())
		}
	}
}

func TestSimulate_AllowanceConservation(t *testing.T) {
	engine := NewCalculationEngine()

	params := fundParams()
	params.StartInvestment = decimal.NewFromInt(50000)
	params.RetirementAge = 60
	params.FinalAge = 85
	params.ExpectedReturn = decimal.RequireFromString("0.08")

	result, err := engine.Simulate(context.Background(), params)
	require.NoError(t, err)

	allowance := params.TaxSettings.AllowanceAnnual
	for i, y := range result.Years {
		limit := allowance.Mul(decimal.NewFromInt(int64(i + 1)))
		assert.True(t, y.CumulativeAllowanceUsed.LessThanOrEqual(limit),
			"age %d: used %s of %s", y.Age, y.CumulativeAllowanceUsed, limit)
	}
	assert.True(t, result.Final().CumulativeTaxPaid.GreaterThan(decimal.Zero))
}

func TestSimulate_FundLevelWithdrawalLastsToFinalAge(t *testing.T) {
	engine := NewCalculationEngine()

	params := fundParams()
	params.CurrentAge = 60
	params.RetirementAge = 60
	params.FinalAge = 64
	params.MonthlyContribution = decimal.Zero
	params.StartInvestment = decimal.NewFromInt(60000)

	result, err := engine.Simulate(context.Background(), params)
	require.NoError(t, err)

	require.Len(t, result.Years, 5)
	assert.False(t, result.Depleted)
	assert.True(t, result.MonthlyPayout.Equal(decimal.NewFromInt(1000)), "got %s", result.MonthlyPayout)
	for _, y := range result.Years {
		assert.True(t, y.Withdrawal.Equal(decimal.NewFromInt(12000)), "age %d: %s", y.Age, y.Withdrawal)
		assert.True(t, y.PayoutTax.IsZero(), "no gain to tax")
	}
	assert.True(t, result.Final().GrossValue.IsZero())
	assert.True(t, result.Final().CumulativeWithdrawn.Equal(decimal.NewFromInt(60000)))
}

func TestSimulate_FundWithdrawalWithTaxesLastsToFinalAge(t *testing.T) {
	engine := NewCalculationEngine()

	params := fundParams()
	params.CurrentAge = 60
	params.RetirementAge = 60
	params.FinalAge = 85
	params.MonthlyContribution = decimal.Zero
	params.StartInvestment = decimal.NewFromInt(500000)
	params.ExpectedReturn = decimal.RequireFromString("0.07")
	params.ManagementFee = decimal.RequireFromString("0.002")

	result, err := engine.Simulate(context.Background(), params)
	require.NoError(t, err)

	require.Len(t, result.Years, 26)
	assert.False(t, result.Depleted, "depleted at %d", result.DepletedAtAge)
	assert.Equal(t, 85, result.Final().Age)
	assert.True(t, result.Final().GrossValue.IsZero(), "got %s", result.Final().GrossValue)
	require.Contains(t, result.Summary, 85)
	assert.Equal(t, 85, result.Summary[85].RecordAge)

	// the first year withdraws the advertised monthly amount
	assert.InDelta(t, result.MonthlyPayout.Mul(decimal.NewFromInt(12)).InexactFloat64(), result.Years[0].Withdrawal.InexactFloat64(), 0.1)
	for _, y := range result.Years {
		assert.True(t, y.Withdrawal.IsPositive(), "age %d withdraws nothing", y.Age)
	}
	// the advance lump-sum tax is paid during the payout phase
	assert.True(t, result.Years[1].InvestmentTax.IsPositive())
}

func TestSimulate_FundDepletesEarly(t *testing.T) {
	engine := NewCalculationEngine()

	params := fundParams()
	params.CurrentAge = 60
	params.RetirementAge = 60
	params.FinalAge = 80
	params.MonthlyContribution = decimal.Zero
	params.StartInvestment = decimal.NewFromInt(50000)
	params.PayoutMonthly = decimal.NewFromInt(1000)

	result, err := engine.Simulate(context.Background(), params)
	require.NoError(t, err, "depletion is not an error")

	assert.True(t, result.Depleted)
	assert.Equal(t, 64, result.DepletedAtAge)
	require.Len(t, result.Years, 5)
	assert.True(t, result.Final().Depleted)
	assert.True(t, result.Final().Withdrawal.Equal(decimal.NewFromInt(2000)))
}

func TestSimulate_InsurancePensionPayout(t *testing.T) {
	engine := NewCalculationEngine()

	params := fundParams()
	params.Product = domain.ProductSpec{Type: domain.ProductInsurancePension}
	params.CurrentAge = 67
	params.RetirementAge = 67
	params.FinalAge = 69
	params.MonthlyContribution = decimal.Zero
	params.StartInvestment = decimal.NewFromInt(100000)

	result, err := engine.Simulate(context.Background(), params)
	require.NoError(t, err)

	// 100,000 / 10,000 x 28
	assert.True(t, result.MonthlyPayout.Equal(decimal.NewFromInt(280)), "got %s", result.MonthlyPayout)

	first := result.Years[0]
	assert.True(t, first.Withdrawal.Equal(decimal.NewFromInt(3360)))
	// 17% Ertragsanteil at 67, taxed at 25%: 280 x 0.17 x 0.25 x 12
	assert.True(t, first.PayoutTax.Equal(decimal.RequireFromString("142.8")), "got %s", first.PayoutTax)
	assert.True(t, first.NetPayout.Equal(decimal.RequireFromString("3217.2")))
	assert.True(t, first.GrossValue.Equal(decimal.NewFromInt(96640)))
	assert.True(t, first.InvestmentTax.IsZero(), "insurance wrappers are tax deferred")
}

func TestSimulate_GuaranteedPensionIsTheFloor(t *testing.T) {
	engine := NewCalculationEngine()

	params := fundParams()
	params.Product = domain.ProductSpec{Type: domain.ProductRuerup}
	params.CurrentAge = 67
	params.RetirementAge = 67
	params.FinalAge = 68
	params.MonthlyContribution = decimal.Zero
	params.StartInvestment = decimal.NewFromInt(10000)
	params.ExistingPension = &domain.ExistingPension{GuaranteedMonthly: decimal.NewFromInt(500)}

	result, err := engine.Simulate(context.Background(), params)
	require.NoError(t, err)

	assert.True(t, result.MonthlyPayout.Equal(decimal.NewFromInt(500)))
	// payments continue although the reserve is exhausted
	assert.True(t, result.Final().GrossValue.IsZero())
	assert.True(t, result.Final().Withdrawal.Equal(decimal.NewFromInt(6000)))
}

func TestSimulate_LumpSumPayout(t *testing.T) {
	engine := NewCalculationEngine()

	params := fundParams()
	params.Product = domain.ProductSpec{Type: domain.ProductInsurancePension, LumpSum: true}
	params.CurrentAge = 50
	params.RetirementAge = 65
	params.FinalAge = 70
	params.ExpectedReturn = decimal.RequireFromString("0.05")

	result, err := engine.Simulate(context.Background(), params)
	require.NoError(t, err)

	atRetirement, ok := result.RecordAt(65)
	require.True(t, ok)
	assert.True(t, atRetirement.Withdrawal.GreaterThan(atRetirement.CumulativeContributions))
	assert.True(t, atRetirement.PayoutTax.GreaterThan(decimal.Zero))
	assert.True(t, atRetirement.GrossValue.IsZero())
	assert.True(t, result.MonthlyPayout.IsZero())

	later, _ := result.RecordAt(70)
	assert.True(t, later.Withdrawal.IsZero())
	assert.False(t, result.Depleted)
}

func TestSimulate_Subsidies(t *testing.T) {
	engine := NewCalculationEngine()

	params := fundParams()
	params.FinalAge = 30
	params.MonthlyContribution = decimal.NewFromInt(100)

	params.Product = domain.ProductSpec{Type: domain.ProductRiester, Children: 2}
	result, err := engine.Simulate(context.Background(), params)
	require.NoError(t, err)
	assert.True(t, result.Years[0].Subsidy.Equal(decimal.NewFromInt(775)), "got %s", result.Years[0].Subsidy)
	assert.True(t, result.Final().GrossValue.Equal(decimal.NewFromInt(1975)))
	assert.True(t, result.Final().CumulativeContributions.Equal(decimal.NewFromInt(1200)))

	params.Product = domain.ProductSpec{Type: domain.ProductOccupational}
	result, err = engine.Simulate(context.Background(), params)
	require.NoError(t, err)
	assert.True(t, result.Years[0].Subsidy.Equal(decimal.NewFromInt(180)), "minimum employer subsidy applies")

	params.Product = domain.ProductSpec{Type: domain.ProductOccupational, EmployerSubsidyRate: decimal.RequireFromString("0.5")}
	result, err = engine.Simulate(context.Background(), params)
	require.NoError(t, err)
	assert.True(t, result.Years[0].Subsidy.Equal(decimal.NewFromInt(600)))
}

func TestSimulate_UnknownProductIsFlagged(t *testing.T) {
	engine := NewCalculationEngine()
	logger := &TestLogger{}
	engine.SetLogger(logger)

	params := fundParams()
	params.Product = domain.ProductSpec{Type: "crypto"}

	result, err := engine.Simulate(context.Background(), params)
	require.NoError(t, err)

	assert.Equal(t, domain.ProductType("crypto"), result.ProductType)
	require.Len(t, result.Warnings, 1)
	assert.Contains(t, result.Warnings[0], "Ertragsanteil")
	assert.Contains(t, logger.messages, "WARN: %s: %s")
}

func TestSimulate_Milestones(t *testing.T) {
	engine := NewCalculationEngine()

	result, err := engine.Simulate(context.Background(), fundParams())
	require.NoError(t, err)

	require.Len(t, result.Summary, 3)
	for _, age := range []int{40, 67, 85} {
		m, ok := result.Summary[age]
		require.True(t, ok, "milestone %d", age)
		assert.Equal(t, 39, m.RecordAge, "beyond the simulated range the last record is used")
		assert.True(t, m.GrossValue.Equal(decimal.NewFromInt(60000)))
	}

	params := fundParams()
	params.MilestoneAges = []int{35, 20, 35}
	result, err = engine.Simulate(context.Background(), params)
	require.NoError(t, err)
	require.Len(t, result.Summary, 2)
	assert.Equal(t, 30, result.Summary[20].RecordAge, "before the range the first record is used")
	assert.True(t, result.Summary[35].TotalContributions.Equal(decimal.NewFromInt(36000)))
}

func TestSimulate_Deterministic(t *testing.T) {
	engine := NewCalculationEngine()

	params := fundParams()
	params.RetirementAge = 67
	params.FinalAge = 90
	params.ExpectedReturn = decimal.RequireFromString("0.06")

	first, err := engine.Simulate(context.Background(), params)
	require.NoError(t, err)
	second, err := engine.Simulate(context.Background(), params)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestSimulate_Cancelled(t *testing.T) {
	engine := NewCalculationEngine()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := engine.Simulate(ctx, fundParams())
	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, result)
}

func TestAnnuityDuePayment(t *testing.T) {
	assert.True(t, AnnuityDuePayment(decimal.NewFromInt(60000), decimal.Zero, 5).Equal(decimal.NewFromInt(12000)))
	assert.True(t, AnnuityDuePayment(decimal.NewFromInt(60000), decimal.RequireFromString("0.05"), 1).Equal(decimal.NewFromInt(60000)))
	assert.True(t, AnnuityDuePayment(decimal.Zero, decimal.RequireFromString("0.05"), 10).IsZero())

	// 10,000 at 5% over 2 years: p + p/1.05 = 10,000
	p := AnnuityDuePayment(decimal.NewFromInt(10000), decimal.RequireFromString("0.05"), 2)
	assert.True(t, p.Equal(decimal.RequireFromString("5121.95")), "got %s", p)
}

// TestLogger is a simple logger for testing
type TestLogger struct {
	messages []string
}

func (tl *TestLogger) Debugf(format string, args ...interface{}) {
	tl.messages = append(tl.messages, "DEBUG: "+format)
}

func (tl *TestLogger) Infof(format string, args ...interface{}) {
	tl.messages = append(tl.messages, "INFO: "+format)
}

func (tl *TestLogger) Warnf(format string, args ...interface{}) {
	tl.messages = append(tl.messages, "WARN: "+format)
}

func (tl *TestLogger) Errorf(format string, args ...interface{}) {
	tl.messages = append(tl.messages, "ERROR: "+format)
}
