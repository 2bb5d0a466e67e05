package output

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/vorsorge/rentenplan/internal/domain"
)

var hundred = decimal.NewFromInt(100)

// ConsoleVerboseFormatter renders the detailed console report: assumptions,
// milestones and the full year-by-year table.
type ConsoleVerboseFormatter struct {
	// Rules feeds the assumptions block; the built-in year is used when nil
	Rules *domain.TaxYearRules
}

func (c ConsoleVerboseFormatter) Name() string { return "console" }

func (c ConsoleVerboseFormatter) Format(result *domain.SimulationResult) ([]byte, error) {
	var buf bytes.Buffer

	rules := domain.Rules2024()
	if c.Rules != nil {
		rules = *c.Rules
	}

	fmt.Fprintln(&buf, strings.Repeat("=", 113))
	fmt.Fprintf(&buf, "DETAILED RETIREMENT PROJECTION: %s (%s)\n", result.Name, result.ProductType.DisplayName())
	fmt.Fprintln(&buf, strings.Repeat("=", 113))
	fmt.Fprintln(&buf)
	fmt.Fprintln(&buf, "KEY ASSUMPTIONS:")
	for _, a := range KeyAssumptions(rules) {
		fmt.Fprintf(&buf, "• %s\n", a)
	}
	fmt.Fprintln(&buf)

	for _, w := range result.Warnings {
		fmt.Fprintf(&buf, "WARNING: %s\n", w)
	}
	if len(result.Warnings) > 0 {
		fmt.Fprintln(&buf)
	}

	writeMilestones(&buf, result)

	fmt.Fprintln(&buf, "YEAR-BY-YEAR PROJECTION")
	fmt.Fprintln(&buf, strings.Repeat("-", 113))
	fmt.Fprintf(&buf, "%-4s %-5s %-5s %14s %14s %12s %12s %12s %12s %12s\n",
		"Age", "Year", "Phase", "Gross", "Net", "Contrib.", "Growth", "Tax", "Fees", "Net Payout")
	fmt.Fprintln(&buf, strings.Repeat("-", 113))
	for _, y := range result.Years {
		phase := "save"
		if y.IsPayout() {
			phase = "pay"
		}
		fmt.Fprintf(&buf, "%-4d %-5d %-5s %14s %14s %12s %12s %12s %12s %12s\n",
			y.Age, y.Year, phase,
			y.GrossValue.StringFixed(2),
			y.NetValue.StringFixed(2),
			y.Contribution.Add(y.Subsidy).StringFixed(2),
			y.Growth.StringFixed(2),
			y.InvestmentTax.Add(y.PayoutTax).StringFixed(2),
			y.Fees.StringFixed(2),
			y.NetPayout.StringFixed(2))
	}
	fmt.Fprintln(&buf, strings.Repeat("-", 113))

	final := result.Final()
	fmt.Fprintln(&buf)
	fmt.Fprintln(&buf, "TOTALS")
	fmt.Fprintln(&buf, "======")
	fmt.Fprintf(&buf, "Contributions:    %s\n", FormatCurrency(final.CumulativeContributions))
	fmt.Fprintf(&buf, "Taxes paid:       %s\n", FormatCurrency(final.CumulativeTaxPaid))
	fmt.Fprintf(&buf, "Allowance used:   %s\n", FormatCurrency(final.CumulativeAllowanceUsed))
	fmt.Fprintf(&buf, "Fees:             %s\n", FormatCurrency(final.CumulativeFees))
	fmt.Fprintf(&buf, "Withdrawn:        %s\n", FormatCurrency(final.CumulativeWithdrawn))
	fmt.Fprintf(&buf, "Net payouts:      %s\n", FormatCurrency(final.CumulativeNetPayout))
	if result.Depleted {
		fmt.Fprintf(&buf, "Capital runs out at age %d\n", result.DepletedAtAge)
	}

	return buf.Bytes(), nil
}

// writeMilestones prints the milestone summaries in age order
func writeMilestones(buf *bytes.Buffer, result *domain.SimulationResult) {
	fmt.Fprintln(buf, "MILESTONES")
	fmt.Fprintln(buf, strings.Repeat("-", 80))
	fmt.Fprintf(buf, "%-6s %18s %18s %18s %16s\n", "Age", "Gross Value", "Net Value", "Net Wealth", "Monthly Net")
	for _, age := range sortedMilestones(result) {
		m := result.Summary[age]
		label := fmt.Sprintf("%d", age)
		if m.RecordAge != age {
			label = fmt.Sprintf("%d*", age)
		}
		fmt.Fprintf(buf, "%-6s %18s %18s %18s %16s\n", label,
			FormatCurrency(m.GrossValue), FormatCurrency(m.NetValue), FormatCurrency(m.NetWealth()), FormatCurrency(m.MonthlyNetPayout))
	}
	fmt.Fprintln(buf, "* outside the projected range, nearest year shown")
	fmt.Fprintln(buf)
}
