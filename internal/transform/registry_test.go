package transform

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vorsorge/rentenplan/internal/domain"
)

func TestRegistry_List(t *testing.T) {
	names := NewTransformRegistry().List()
	assert.Len(t, names, len(Parameters)+2)
	assert.Contains(t, names, "set_expected_return")
	assert.Contains(t, names, "postpone_retirement")
	assert.Contains(t, names, "set_product")
	assert.IsIncreasing(t, names)
}

func TestRegistry_ParseTransformSpec(t *testing.T) {
	r := NewTransformRegistry()

	tr, err := r.ParseTransformSpec("set_expected_return:value=6%")
	require.NoError(t, err)
	sp, ok := tr.(*SetParameter)
	require.True(t, ok)
	assert.True(t, sp.Value.Equal(decimal.RequireFromString("0.06")), sp.Value.String())

	tr, err = r.ParseTransformSpec("set_monthly_contribution: value = 300")
	require.NoError(t, err)
	assert.True(t, tr.(*SetParameter).Value.Equal(decimal.NewFromInt(300)))

	tr, err = r.ParseTransformSpec("postpone_retirement:years=-2")
	require.NoError(t, err)
	assert.Equal(t, -2, tr.(*PostponeRetirement).Years)

	tr, err = r.ParseTransformSpec("set_product:type=riester,children=2,annuity_factor=30")
	require.NoError(t, err)
	prod := tr.(*SetProduct).Product
	assert.Equal(t, domain.ProductRiester, prod.Type)
	assert.Equal(t, 2, prod.Children)
	assert.True(t, prod.AnnuityFactor.Equal(decimal.NewFromInt(30)))
}

func TestRegistry_ParseErrors(t *testing.T) {
	r := NewTransformRegistry()

	tests := []struct {
		spec    string
		wantErr string
	}{
		{"", "invalid transform spec"},
		{"set_bonus:value=1", "unknown transform: set_bonus"},
		{"set_expected_return:0.06", "expected 'key=value'"},
		{"set_expected_return:", "requires 'value'"},
		{"set_expected_return:value=viel", "invalid value"},
		{"postpone_retirement:years=1.5", "invalid years"},
		{"set_product:children=2", "requires 'type'"},
	}
	for _, tt := range tests {
		t.Run(tt.spec, func(t *testing.T) {
			_, err := r.ParseTransformSpec(tt.spec)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestRegistry_ParseTransformSpecs(t *testing.T) {
	ts, err := NewTransformRegistry().ParseTransformSpecs("set_management_fee:value=0.01; postpone_retirement:years=1;")
	require.NoError(t, err)
	require.Len(t, ts, 2)

	got, err := ApplyTransforms(basePlan(), ts)
	require.NoError(t, err)
	assert.True(t, got.ManagementFee.Equal(decimal.RequireFromString("0.01")))
	assert.Equal(t, 68, got.RetirementAge)
}
