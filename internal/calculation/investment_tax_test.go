package calculation

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/vorsorge/rentenplan/internal/domain"
)

func defaultSettings() domain.TaxSettings {
	rules := domain.Rules2024()
	return domain.DefaultTaxSettings(rules, domain.Single).Normalize(rules)
}

func TestCalculateVorabpauschale(t *testing.T) {
	calc := NewInvestmentTaxCalculator(domain.Rules2024())
	base := decimal.RequireFromString("2.29")

	tests := []struct {
		name       string
		opening    decimal.Decimal
		feeRate    decimal.Decimal
		actualGain decimal.Decimal
		expected   decimal.Decimal
	}{
		{"basis below gain", decimal.NewFromInt(100000), decimal.Zero, decimal.NewFromInt(7000), decimal.NewFromInt(1603)},
		{"capped at actual gain", decimal.NewFromInt(100000), decimal.Zero, decimal.NewFromInt(1000), decimal.NewFromInt(1000)},
		{"management cost reduces the cap", decimal.NewFromInt(100000), decimal.RequireFromString("0.01"), decimal.NewFromInt(1500), decimal.NewFromInt(500)},
		{"loss year", decimal.NewFromInt(100000), decimal.Zero, decimal.NewFromInt(-8000), decimal.Zero},
		{"no gain", decimal.NewFromInt(60000), decimal.Zero, decimal.Zero, decimal.Zero},
		{"empty portfolio", decimal.Zero, decimal.Zero, decimal.NewFromInt(100), decimal.Zero},
		{"negative opening value", decimal.NewFromInt(-100), decimal.Zero, decimal.NewFromInt(100), decimal.Zero},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := calc.CalculateVorabpauschale(tt.opening, base, tt.feeRate, tt.actualGain)
			assert.True(t, result.Equal(tt.expected), "Expected %s, got %s", tt.expected, result)
		})
	}
}

func TestCalculateVorabpauschale_NeverExceedsGain(t *testing.T) {
	calc := NewInvestmentTaxCalculator(domain.Rules2024())

	openings := []int64{0, 1, 5000, 100000, 2500000}
	gains := []string{"0", "0.01", "10", "1602.99", "50000"}
	rates := []string{"0", "2.29", "4.5", "10"}
	fees := []string{"0", "0.002", "0.02"}

	for _, o := range openings {
		for _, g := range gains {
			for _, r := range rates {
				for _, f := range fees {
					gain := decimal.RequireFromString(g)
					v := calc.CalculateVorabpauschale(decimal.NewFromInt(o), decimal.RequireFromString(r), decimal.RequireFromString(f), gain)
					assert.True(t, v.LessThanOrEqual(gain), "opening %d gain %s rate %s fee %s: %s", o, g, r, f, v)
					assert.False(t, v.IsNegative())
				}
			}
		}
	}
}

func TestCapitalGainsTax(t *testing.T) {
	calc := NewInvestmentTaxCalculator(domain.Rules2024())

	// 25% x 1.055
	assert.True(t, calc.CapitalGainsTax(decimal.NewFromInt(1000), decimal.Zero).Equal(decimal.RequireFromString("263.75")))
	// reduced base rate with 9% church tax: 250 / 1.0225 x (1 + 0.055 + 0.09)
	assert.True(t, calc.CapitalGainsTax(decimal.NewFromInt(1000), decimal.RequireFromString("0.09")).Equal(decimal.RequireFromString("279.95")))
	assert.True(t, calc.CapitalGainsTax(decimal.NewFromInt(-10), decimal.Zero).IsZero())
}

func TestCalculateFundTax(t *testing.T) {
	calc := NewInvestmentTaxCalculator(domain.Rules2024())
	settings := defaultSettings()

	t.Run("allowance absorbs part of the base", func(t *testing.T) {
		result := calc.CalculateFundTax(decimal.NewFromInt(100000), decimal.NewFromInt(7000), decimal.Zero, settings, decimal.Zero)

		assert.True(t, result.Vorabpauschale.Equal(decimal.NewFromInt(1603)))
		assert.True(t, result.AllowanceUsed.Equal(decimal.NewFromInt(1000)))
		// 1603 x 0.85 - 1000
		assert.True(t, result.TaxableBase.Equal(decimal.RequireFromString("362.55")), "got %s", result.TaxableBase)
		assert.True(t, result.TotalTax.Equal(decimal.RequireFromString("95.62")), "got %s", result.TotalTax)
	})

	t.Run("allowance already consumed", func(t *testing.T) {
		result := calc.CalculateFundTax(decimal.NewFromInt(100000), decimal.NewFromInt(7000), decimal.Zero, settings, decimal.NewFromInt(1000))

		assert.True(t, result.AllowanceUsed.IsZero())
		assert.True(t, result.TotalTax.Equal(decimal.RequireFromString("359.37")), "got %s", result.TotalTax)
	})

	t.Run("small base fully covered", func(t *testing.T) {
		result := calc.CalculateFundTax(decimal.NewFromInt(10000), decimal.NewFromInt(700), decimal.Zero, settings, decimal.Zero)

		assert.True(t, result.Vorabpauschale.Equal(decimal.RequireFromString("160.3")))
		assert.True(t, result.TotalTax.IsZero())
		assert.True(t, result.AllowanceUsed.LessThanOrEqual(settings.AllowanceAnnual))
	})

	t.Run("zero growth means zero tax", func(t *testing.T) {
		result := calc.CalculateFundTax(decimal.NewFromInt(60000), decimal.Zero, decimal.Zero, settings, decimal.Zero)

		assert.True(t, result.TotalTax.IsZero())
		assert.True(t, result.Vorabpauschale.IsZero())
	})
}

func TestCalculateFinalSaleTax(t *testing.T) {
	calc := NewInvestmentTaxCalculator(domain.Rules2024())
	settings := defaultSettings()

	t.Run("credits prior advance lump sums", func(t *testing.T) {
		result := calc.CalculateFinalSaleTax(decimal.NewFromInt(10000), decimal.NewFromInt(2000), settings, decimal.Zero)

		// (10000 - 2000) x 0.85 - 1000 = 5800
		assert.True(t, result.TaxableGain.Equal(decimal.NewFromInt(5800)), "got %s", result.TaxableGain)
		assert.True(t, result.Tax.Equal(decimal.RequireFromString("1529.75")), "got %s", result.Tax)
	})

	t.Run("no double taxation", func(t *testing.T) {
		result := calc.CalculateFinalSaleTax(decimal.NewFromInt(1500), decimal.NewFromInt(2000), settings, decimal.Zero)

		assert.True(t, result.Tax.IsZero())
		assert.True(t, result.AllowanceUsed.IsZero())
	})

	t.Run("loss", func(t *testing.T) {
		result := calc.CalculateFinalSaleTax(decimal.NewFromInt(-3000), decimal.Zero, settings, decimal.Zero)
		assert.True(t, result.Tax.IsZero())
	})

	t.Run("respects allowance used earlier in the year", func(t *testing.T) {
		fresh := calc.CalculateFinalSaleTax(decimal.NewFromInt(5000), decimal.Zero, settings, decimal.Zero)
		used := calc.CalculateFinalSaleTax(decimal.NewFromInt(5000), decimal.Zero, settings, decimal.NewFromInt(600))

		assert.True(t, fresh.AllowanceUsed.Equal(decimal.NewFromInt(1000)))
		assert.True(t, used.AllowanceUsed.Equal(decimal.NewFromInt(400)))
		assert.True(t, used.Tax.GreaterThan(fresh.Tax))
	})
}
