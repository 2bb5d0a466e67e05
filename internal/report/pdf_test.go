package report

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vorsorge/rentenplan/internal/compare"
	"github.com/vorsorge/rentenplan/internal/domain"
	"github.com/vorsorge/rentenplan/internal/formscript"
)

func testInput(t *testing.T) Input {
	t.Helper()
	rules := domain.Rules2024()
	plans := []domain.SimulationParams{
		{
			Name:                "ETF-Sparplan",
			Product:             domain.ProductSpec{Type: domain.ProductFund},
			CurrentAge:          55,
			RetirementAge:       60,
			FinalAge:            70,
			MonthlyContribution: decimal.NewFromInt(400),
			ExpectedReturn:      decimal.RequireFromString("0.05"),
			ManagementFee:       decimal.RequireFromString("0.002"),
			TaxSettings:         domain.DefaultTaxSettings(rules, domain.Single),
		},
		{
			Name:                "Rürup",
			Product:             domain.ProductSpec{Type: domain.ProductRuerup},
			CurrentAge:          55,
			RetirementAge:       60,
			FinalAge:            70,
			MonthlyContribution: decimal.NewFromInt(400),
			ExpectedReturn:      decimal.RequireFromString("0.04"),
			ManagementFee:       decimal.RequireFromString("0.01"),
			FrontLoadFee:        decimal.RequireFromString("0.03"),
			TaxSettings:         domain.DefaultTaxSettings(rules, domain.Single),
		},
	}
	summary, err := compare.NewCompareEngine(nil).Compare(context.Background(), plans, compare.CompareOptions{Milestones: []int{60, 67}})
	require.NoError(t, err)

	return Input{
		Summary:     summary,
		Plans:       plans,
		Rules:       rules,
		GeneratedAt: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestGeneratePDF(t *testing.T) {
	pdf, err := GeneratePDF(testInput(t))
	require.NoError(t, err)

	assert.True(t, bytes.HasPrefix(pdf, []byte("%PDF-")), "Should start with the PDF header")
	assert.True(t, bytes.Contains(pdf, []byte("%%EOF")), "Should be a complete document")
	assert.False(t, bytes.Contains(pdf, []byte("/JavaScript")), "no script attached by default")
}

func TestGeneratePDF_WithScript(t *testing.T) {
	in := testInput(t)
	script, err := formscript.NewGenerator(in.Rules).Script()
	require.NoError(t, err)
	in.Script = script

	pdf, err := GeneratePDF(in)
	require.NoError(t, err)

	assert.True(t, bytes.Contains(pdf, []byte("/JavaScript")))
	assert.True(t, bytes.Contains(pdf, []byte("function selfTest")))
	assert.True(t, bytes.Contains(pdf, []byte("RP_FIXTURES")))
}

func TestGeneratePDF_Deterministic(t *testing.T) {
	in := testInput(t)
	first, err := GeneratePDF(in)
	require.NoError(t, err)
	second, err := GeneratePDF(in)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestGeneratePDF_Empty(t *testing.T) {
	_, err := GeneratePDF(Input{})
	require.Error(t, err)

	var verr *domain.ValidationError
	assert.True(t, errors.As(err, &verr))
	assert.Equal(t, "summary", verr.Field)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "Private R.", truncate("Private Rentenversicherung", 10))
	assert.Equal(t, "Rürup", truncate("Rürup", 5))
}

func TestPercent(t *testing.T) {
	assert.Equal(t, "5,00 %", percent(decimal.RequireFromString("0.05")))
}
