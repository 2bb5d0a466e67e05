package calculation

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/vorsorge/rentenplan/internal/domain"
)

func newPensionTaxCalculator() *PensionTaxCalculator {
	return NewPensionTaxCalculator(domain.Rules2024(), nil)
}

func TestCalculatePensionTax(t *testing.T) {
	calc := newPensionTaxCalculator()

	tests := []struct {
		name       string
		halfIncome bool
		age        int
		monthly    int64
		guaranteed int64
		method     TaxationMethod
		expected   string
	}{
		{"half income from 62", true, 65, 1000, 0, MethodHalfIncome, "125"},
		{"half income exactly at 62", true, 62, 1000, 0, MethodHalfIncome, "125"},
		{"too young for half income", true, 61, 1000, 0, MethodFull, "250"},
		{"half income disabled", false, 65, 1000, 0, MethodFull, "250"},
		{"guaranteed amount is the floor", false, 65, 1000, 1200, MethodFull, "300"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			settings := defaultSettings()
			settings.UseHalfIncomeTaxation = tt.halfIncome
			result := calc.CalculatePensionTax(PensionPayment{
				MonthlyPension:    decimal.NewFromInt(tt.monthly),
				GuaranteedPension: decimal.NewFromInt(tt.guaranteed),
				Age:               tt.age,
			}, settings)

			assert.Equal(t, tt.method, result.Method)
			assert.True(t, result.Tax.Equal(decimal.RequireFromString(tt.expected)), "Expected %s, got %s", tt.expected, result.Tax)
		})
	}
}

func TestErtragsanteilPercent(t *testing.T) {
	calc := newPensionTaxCalculator()

	tests := map[int]int64{
		50:  30,
		60:  22,
		62:  21,
		65:  18,
		66:  18,
		67:  17,
		70:  15,
		85:  5,
		100: 1,
	}
	for age, expected := range tests {
		result := calc.ErtragsanteilPercent(age)
		assert.True(t, result.Equal(decimal.NewFromInt(expected)), "age %d: expected %d, got %s", age, expected, result)
	}
}

func TestErtragsanteilPercent_DecreasesWithAge(t *testing.T) {
	calc := newPensionTaxCalculator()
	previous := calc.ErtragsanteilPercent(0)
	for age := 1; age <= 100; age++ {
		current := calc.ErtragsanteilPercent(age)
		assert.True(t, current.LessThanOrEqual(previous), "share rose at age %d", age)
		previous = current
	}
}

func TestTaxForProduct(t *testing.T) {
	calc := newPensionTaxCalculator()
	payment := PensionPayment{MonthlyPension: decimal.NewFromInt(1000), Age: 67, StartAge: 67}

	tests := []struct {
		name       string
		product    domain.Product
		halfIncome bool
		method     TaxationMethod
		expected   string
	}{
		{"insurance pension without half income", domain.InsurancePension{}, false, MethodErtragsanteil, "42.5"},
		{"insurance pension with half income", domain.InsurancePension{}, true, MethodHalfIncome, "125"},
		{"riester is fully taxed", domain.RiesterPension{}, true, MethodFull, "250"},
		{"ruerup is fully taxed", domain.RuerupPension{}, false, MethodFull, "250"},
		{"occupational is fully taxed", domain.OccupationalPension{}, false, MethodFull, "250"},
		{"unknown falls back to Ertragsanteil", domain.UnknownProduct{Identifier: "crypto"}, true, MethodErtragsanteil, "42.5"},
		{"fund plans are taxed on sale", domain.FundPlan{}, false, MethodCapitalGains, "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			settings := defaultSettings()
			settings.UseHalfIncomeTaxation = tt.halfIncome
			result := calc.TaxForProduct(tt.product, payment, settings)

			assert.Equal(t, tt.method, result.Method)
			assert.True(t, result.Tax.Equal(decimal.RequireFromString(tt.expected)), "Expected %s, got %s", tt.expected, result.Tax)
		})
	}
}

func TestCalculateLumpSumTax(t *testing.T) {
	calc := newPensionTaxCalculator()
	settings := defaultSettings()
	capital := decimal.NewFromInt(100000)
	contributions := decimal.NewFromInt(60000)

	t.Run("half income after 62 and 12 years", func(t *testing.T) {
		result := calc.CalculateLumpSumTax(capital, contributions, 65, 25, settings)
		assert.Equal(t, MethodHalfIncome, result.Method)
		assert.True(t, result.TaxableAmount.Equal(decimal.NewFromInt(20000)))
		assert.True(t, result.Tax.Equal(decimal.NewFromInt(5000)), "got %s", result.Tax)
	})

	t.Run("too short a holding period", func(t *testing.T) {
		result := calc.CalculateLumpSumTax(capital, contributions, 65, 10, settings)
		assert.Equal(t, MethodCapitalGains, result.Method)
		assert.True(t, result.Tax.Equal(decimal.NewFromInt(10550)), "got %s", result.Tax)
	})

	t.Run("no gain", func(t *testing.T) {
		result := calc.CalculateLumpSumTax(decimal.NewFromInt(50000), contributions, 65, 25, settings)
		assert.True(t, result.Tax.IsZero())
	})
}
