package transform

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vorsorge/rentenplan/internal/domain"
)

func basePlan() domain.SimulationParams {
	return domain.SimulationParams{
		Name:                "ETF",
		Product:             domain.ProductSpec{Type: domain.ProductFund},
		CurrentAge:          40,
		RetirementAge:       67,
		FinalAge:            90,
		MonthlyContribution: decimal.NewFromInt(200),
		ExpectedReturn:      decimal.RequireFromString("0.05"),
		ManagementFee:       decimal.RequireFromString("0.002"),
		MilestoneAges:       []int{67, 85},
	}
}

func TestApplyTransforms_InOrder(t *testing.T) {
	base := basePlan()

	got, err := ApplyTransforms(base, []PlanTransform{
		&SetParameter{Parameter: RetirementAge, Value: decimal.NewFromInt(63)},
		&PostponeRetirement{Years: 2},
		&SetParameter{Parameter: MonthlyContribution, Value: decimal.NewFromInt(350)},
	})
	require.NoError(t, err)
	assert.Equal(t, 65, got.RetirementAge)
	assert.True(t, got.MonthlyContribution.Equal(decimal.NewFromInt(350)))

	// base untouched
	assert.Equal(t, 67, base.RetirementAge)
	assert.True(t, base.MonthlyContribution.Equal(decimal.NewFromInt(200)))
}

func TestApplyTransforms_NoTransformsCopies(t *testing.T) {
	base := basePlan()
	got, err := ApplyTransforms(base, nil)
	require.NoError(t, err)

	got.MilestoneAges[0] = 99
	assert.Equal(t, 67, base.MilestoneAges[0])
}

func TestApplyTransforms_Errors(t *testing.T) {
	_, err := ApplyTransforms(basePlan(), []PlanTransform{nil})
	assert.EqualError(t, err, "transform at index 0 is nil")

	_, err = ApplyTransforms(basePlan(), []PlanTransform{&PostponeRetirement{Years: -30}})
	require.Error(t, err)
	var terr *TransformError
	require.True(t, errors.As(err, &terr))
	assert.Equal(t, "postpone_retirement", terr.TransformName)
	assert.Contains(t, err.Error(), "before the current age 40")
}

func TestSetParameter_Validate(t *testing.T) {
	tests := []struct {
		name    string
		param   Parameter
		value   string
		wantErr string
	}{
		{"contribution", MonthlyContribution, "500", ""},
		{"negative contribution", MonthlyContribution, "-1", "must not be negative"},
		{"negative return", ExpectedReturn, "-0.5", ""},
		{"total loss", ExpectedReturn, "-1", "above -100%"},
		{"fee", ManagementFee, "0.015", ""},
		{"fee above one", FrontLoadFee, "1.5", "between 0 and 1"},
		{"fractional age", RetirementAge, "65.5", "whole number"},
		{"age before current", FinalAge, "39", "before the current age"},
		{"unknown", Parameter("bonus"), "1", "unsupported parameter"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sp := &SetParameter{Parameter: tt.param, Value: decimal.RequireFromString(tt.value)}
			err := sp.Validate(basePlan())
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestParameter_GetMatchesApply(t *testing.T) {
	for _, p := range Parameters {
		value := decimal.RequireFromString("0.07")
		if p.IsAge() {
			value = decimal.NewFromInt(70)
		}
		got, err := (&SetParameter{Parameter: p, Value: value}).Apply(basePlan())
		require.NoError(t, err, p)
		read, err := p.Get(got)
		require.NoError(t, err)
		assert.True(t, read.Equal(value), "%s: %s", p, read)
	}
}

func TestVariant(t *testing.T) {
	v, err := Variant(basePlan(),
		&SetParameter{Parameter: ExpectedReturn, Value: decimal.RequireFromString("0.07")},
		&PostponeRetirement{Years: 2},
	)
	require.NoError(t, err)
	assert.Equal(t, "ETF, Erwartete Rendite 7%, Rentenbeginn 2 Jahre später", v.Name)
	assert.Equal(t, 69, v.RetirementAge)
}

func TestSetProduct(t *testing.T) {
	sp := &SetProduct{Product: domain.ProductSpec{Type: domain.ProductRuerup}}
	got, err := ApplyTransforms(basePlan(), []PlanTransform{sp})
	require.NoError(t, err)
	assert.Equal(t, domain.ProductRuerup, got.Product.Type)
	assert.Equal(t, "Rürup-Rente", sp.Description())

	_, err = ApplyTransforms(basePlan(), []PlanTransform{&SetProduct{Product: domain.ProductSpec{Type: "bauspar"}}})
	assert.Error(t, err)
}
