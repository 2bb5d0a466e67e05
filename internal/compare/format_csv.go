package compare

import (
	"encoding/csv"
	"fmt"
	"strings"
)

// CSVFormatter formats comparison results as CSV, one row per scenario and milestone
type CSVFormatter struct{}

// Format generates CSV output for comparison results
func (cf *CSVFormatter) Format(summary *ComparisonSummary) (string, error) {
	var sb strings.Builder
	writer := csv.NewWriter(&sb)

	// Write header
	header := []string{
		"Age",
		"Scenario",
		"Type",
		"Product",
		"Gross Value",
		"Net Value",
		"Net Wealth",
		"Total Contributions",
		"Total Withdrawn",
		"Total Tax",
		"Total Fees",
		"Effective Tax Ratio",
		"Advantage vs Base",
		"Advantage %",
	}
	if err := writer.Write(header); err != nil {
		return "", err
	}

	for _, age := range summary.Milestones {
		for _, row := range summary.ByMilestone[age] {
			scenarioType := "alternative"
			if row.ScenarioName == summary.BaseScenarioName {
				scenarioType = "base"
			}
			if err := writer.Write(cf.formatRow(row, scenarioType)); err != nil {
				return "", err
			}
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return "", err
	}

	return sb.String(), nil
}

// formatRow formats a comparison result as a CSV row
func (cf *CSVFormatter) formatRow(result ComparisonResult, scenarioType string) []string {
	return []string{
		formatInt(result.Age),
		result.ScenarioName,
		scenarioType,
		string(result.ProductType),
		result.GrossValue.StringFixed(2),
		result.NetValue.StringFixed(2),
		result.NetWealth.StringFixed(2),
		result.TotalContributions.StringFixed(2),
		result.TotalWithdrawn.StringFixed(2),
		result.TotalTax.StringFixed(2),
		result.TotalFees.StringFixed(2),
		result.EffectiveTaxRatio.StringFixed(4),
		result.AdvantageAbsolute.StringFixed(2),
		result.AdvantagePercent.StringFixed(2),
	}
}

func formatInt(i int) string {
	return fmt.Sprintf("%d", i)
}
