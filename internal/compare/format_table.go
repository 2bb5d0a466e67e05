package compare

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// TableFormatter formats comparison results as a console table
type TableFormatter struct{}

// Format generates a formatted table comparing plans at each milestone
func (tf *TableFormatter) Format(summary *ComparisonSummary) string {
	var sb strings.Builder

	// Header
	sb.WriteString("RETIREMENT PLAN COMPARISON\n")
	sb.WriteString(strings.Repeat("=", 96) + "\n")
	sb.WriteString(fmt.Sprintf("Base Scenario: %s\n", summary.BaseScenarioName))
	if summary.ConfigPath != "" {
		sb.WriteString(fmt.Sprintf("Configuration: %s\n", summary.ConfigPath))
	}

	// Column widths
	nameWidth := 28
	numWidth := 13

	for _, age := range summary.Milestones {
		sb.WriteString(fmt.Sprintf("\nAGE %d\n", age))
		sb.WriteString(fmt.Sprintf("%-*s %*s %*s %*s %*s %*s\n",
			nameWidth, "Scenario",
			numWidth, "Net Value",
			numWidth, "Net Payouts",
			numWidth, "Net Wealth",
			numWidth, "Taxes",
			numWidth, "vs Base"))
		sb.WriteString(strings.Repeat("-", 96) + "\n")

		for _, row := range summary.ByMilestone[age] {
			sb.WriteString(tf.formatRow(row, nameWidth, numWidth, row.ScenarioName == summary.BaseScenarioName,
				summary.BestByMilestone[age] == row.ScenarioName))
		}
	}
	sb.WriteString(strings.Repeat("=", 96) + "\n")

	// Recommendations
	if len(summary.Recommendations) > 0 {
		sb.WriteString("\nRECOMMENDATIONS\n")
		sb.WriteString(strings.Repeat("-", 96) + "\n")
		for _, rec := range summary.Recommendations {
			sb.WriteString(fmt.Sprintf("• %s\n", rec))
		}
		sb.WriteString("\n")
	}

	return sb.String()
}

// formatRow formats a single scenario row
func (tf *TableFormatter) formatRow(result ComparisonResult, nameWidth, numWidth int, isBase, isBest bool) string {
	name := result.ScenarioName
	if isBase {
		name += " (base)"
	}
	if isBest {
		name = "* " + name
	}

	delta := "-"
	if !isBase {
		delta = tf.deltaSymbol(result.AdvantageAbsolute) + tf.formatDecimal(result.AdvantageAbsolute)
	}
	value := tf.formatDecimal(result.NetValue)
	if result.Depleted {
		value = "depleted"
	}

	return fmt.Sprintf("%-*s %*s %*s %*s %*s %*s\n",
		nameWidth, tf.truncate(name, nameWidth),
		numWidth, value,
		numWidth, tf.formatDecimal(result.NetWealth.Sub(result.NetValue)),
		numWidth, tf.formatDecimal(result.NetWealth),
		numWidth, tf.formatDecimal(result.TotalTax),
		numWidth, delta)
}

// formatDecimal formats a decimal for display (in thousands)
func (tf *TableFormatter) formatDecimal(d decimal.Decimal) string {
	if d.Abs().GreaterThanOrEqual(decimal.NewFromInt(1000000)) {
		// Format in millions
		millions := d.Div(decimal.NewFromInt(1000000))
		return "€" + millions.StringFixed(2) + "M"
	} else if d.Abs().GreaterThanOrEqual(decimal.NewFromInt(1000)) {
		// Format in thousands
		thousands := d.Div(decimal.NewFromInt(1000))
		return "€" + thousands.StringFixed(1) + "K"
	}
	return "€" + d.StringFixed(0)
}

// deltaSymbol returns a + sign for positive deltas; negative values carry their own sign
func (tf *TableFormatter) deltaSymbol(delta decimal.Decimal) string {
	if delta.IsPositive() {
		return "+"
	}
	return ""
}

// truncate truncates a string to maxLen runes
func (tf *TableFormatter) truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen-3]) + "..."
}

// FormatCompact creates a compact single-line summary at the last milestone
func (tf *TableFormatter) FormatCompact(summary *ComparisonSummary) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Base: %s | ", summary.BaseScenarioName))
	if len(summary.Milestones) == 0 {
		return sb.String()
	}
	age := summary.Milestones[len(summary.Milestones)-1]

	first := true
	for _, row := range summary.ByMilestone[age] {
		if row.ScenarioName == summary.BaseScenarioName {
			continue
		}
		if !first {
			sb.WriteString(" | ")
		}
		first = false
		change := "="
		if row.AdvantageAbsolute.IsPositive() {
			change = "+" + tf.formatDecimal(row.AdvantageAbsolute)
		} else if row.AdvantageAbsolute.IsNegative() {
			change = tf.formatDecimal(row.AdvantageAbsolute)
		}
		sb.WriteString(fmt.Sprintf("%s: %s", row.ScenarioName, change))
	}

	return sb.String()
}
