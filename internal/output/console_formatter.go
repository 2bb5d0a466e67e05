package output

import (
	"bytes"
	"fmt"
	"sort"

	"github.com/vorsorge/rentenplan/internal/domain"
)

// ConsoleFormatter prints a short summary of one projection
type ConsoleFormatter struct{}

func (c ConsoleFormatter) Name() string { return "console-lite" }

func (c ConsoleFormatter) Format(result *domain.SimulationResult) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintln(&buf, "RETIREMENT PROJECTION SUMMARY")
	fmt.Fprintln(&buf, "=============================")
	fmt.Fprintf(&buf, "Plan: %s (%s), tax year %d\n", result.Name, result.ProductType.DisplayName(), result.TaxYear)

	for _, age := range sortedMilestones(result) {
		m := result.Summary[age]
		fmt.Fprintf(&buf, "Age %d: net %s, taxes %s", age, FormatCurrency(m.NetValue), FormatCurrency(m.TotalTax))
		if m.MonthlyNetPayout.IsPositive() {
			fmt.Fprintf(&buf, ", %s/month", FormatCurrency(m.MonthlyNetPayout))
		}
		fmt.Fprintln(&buf)
	}

	if result.MonthlyPayout.IsPositive() {
		fmt.Fprintf(&buf, "Gross monthly payout: %s\n", FormatCurrency(result.MonthlyPayout))
	}
	if result.Depleted {
		fmt.Fprintf(&buf, "Capital runs out at age %d\n", result.DepletedAtAge)
	}
	return buf.Bytes(), nil
}

func sortedMilestones(result *domain.SimulationResult) []int {
	ages := make([]int, 0, len(result.Summary))
	for age := range result.Summary {
		ages = append(ages, age)
	}
	sort.Ints(ages)
	return ages
}
