package components

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParameterSlider_Steps(t *testing.T) {
	s := NewParameterSlider("fee", "Kosten", 0.3, 0, 1, 0.25)
	assert.Equal(t, 0.25, s.Value, "initial value snaps to the step grid")

	assert.True(t, s.Increment())
	assert.Equal(t, 0.5, s.Value)
	assert.True(t, s.Increment())
	assert.True(t, s.Increment())
	assert.Equal(t, 1.0, s.Value)
	assert.False(t, s.Increment(), "clamped at max")

	for s.Decrement() {
	}
	assert.Equal(t, 0.0, s.Value)
	assert.Equal(t, 0.0, s.Percentage())
}

func TestParameterSlider_NoFloatDrift(t *testing.T) {
	s := NewParameterSlider("r", "Rendite", 0, 0, 12, 0.1)
	for i := 0; i < 30; i++ {
		s.Increment()
	}
	assert.Equal(t, 3.0, s.Value)
}

func TestParameterSlider_Render(t *testing.T) {
	s := NewParameterSlider("r", "Rendite", 5.25, 0, 12, 0.25).WithUnit(" %")
	assert.Equal(t, "5,25 %", s.FormatValue(s.Value))
	assert.Contains(t, s.Render(), "Rendite")
	assert.Contains(t, s.RenderCompact(), "5,25 %")

	s.SetFocused(true).WithDescription("jährlich")
	assert.Contains(t, s.Render(), "jährlich", "description shows when focused")
}

func TestMetricCard_Delta(t *testing.T) {
	card := NewMoneyCard("Netto", decimal.NewFromInt(1234))
	assert.Equal(t, "1.234,00 €", card.Value)
	assert.Nil(t, card.WithDelta(decimal.Zero).Trend)

	card.WithDelta(decimal.NewFromInt(-50))
	require.NotNil(t, card.Trend)
	assert.False(t, card.Trend.IsPositive)
	assert.Equal(t, "-50,00 €", card.Trend.Change)

	card.WithDelta(decimal.NewFromInt(50))
	assert.Equal(t, "+50,00 €", card.Trend.Change)
	assert.Contains(t, card.Render(), "Netto")
}

func TestMetricGrid(t *testing.T) {
	assert.Empty(t, MetricGrid(nil, 2))

	cards := []*MetricCard{NewMetricCard("A", "1"), NewMetricCard("B", "2"), NewMetricCard("C", "3")}
	out := MetricGrid(cards, 0)
	for _, label := range []string{"A", "B", "C"} {
		assert.Contains(t, out, label)
	}
}

func TestASCIIChart(t *testing.T) {
	assert.Contains(t, NewASCIIChart("x").Render(), "Keine Daten")

	chart := NewASCIIChart("Nettowert").
		WithSize(40, 5).
		AddSeries("ETF", []float64{0, 50, 100}, "#fff").
		AddSeries("Rente", []float64{100, 100, 100}, "#000").
		WithLabels([]string{"60", "61", "62"})

	grid := chart.Grid()
	require.Len(t, grid, 5)
	width := len(grid[0])
	assert.Equal(t, '●', grid[len(grid)-1][0], "series start bottom left")
	assert.Equal(t, '■', grid[0][width-1], "flat series at the top right")

	out := chart.Render()
	assert.Contains(t, out, "Nettowert")
	assert.Contains(t, out, "ETF")
	assert.Contains(t, out, "62")
}

func TestASCIIChart_FlatSingleSeries(t *testing.T) {
	chart := NewASCIIChart("").WithSize(30, 4).AddSeries("A", []float64{7}, "#fff")
	grid := chart.Grid()
	marks := 0
	for _, row := range grid {
		marks += strings.Count(string(row), "●")
	}
	assert.Equal(t, 1, marks)
}

func TestFormatChartValue(t *testing.T) {
	assert.Equal(t, "1,5 Mio €", formatChartValue(1_500_000))
	assert.Equal(t, "250 T€", formatChartValue(250_000))
	assert.Equal(t, "-12 €", formatChartValue(-12))
}
