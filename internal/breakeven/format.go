package breakeven

import (
	"fmt"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/shopspring/decimal"
	"github.com/vorsorge/rentenplan/internal/output"
)

// TableFormatter formats break-even results as a console table
type TableFormatter struct{}

// Format generates a formatted table for one result
func (tf *TableFormatter) Format(result *Result) string {
	var sb strings.Builder

	sb.WriteString("BREAK-EVEN ANALYSIS\n")
	sb.WriteString(strings.Repeat("=", 72) + "\n")
	fmt.Fprintf(&sb, "Parameter:    %s (%s)\n", result.Target, result.Target.Label())
	fmt.Fprintf(&sb, "Goal:         %s\n", tf.goalText(result))
	fmt.Fprintf(&sb, "Status:       %s\n", tf.formatStatus(result.Success))
	fmt.Fprintf(&sb, "Iterations:   %d\n", result.Iterations)
	if result.ConvergenceInfo != "" {
		fmt.Fprintf(&sb, "Convergence:  %s\n", result.ConvergenceInfo)
	}
	sb.WriteString("\n")

	sb.WriteString(fmt.Sprintf("%-22s %18s %18s\n", "", "Current plan", "Break-even"))
	sb.WriteString(strings.Repeat("-", 72) + "\n")
	fmt.Fprintf(&sb, "%-22s %18s %18s\n", result.Target.Label(),
		result.Target.FormatValue(result.BaseValue), result.Target.FormatValue(result.Value))
	fmt.Fprintf(&sb, "%-22s %18s %18s\n", tf.metricName(result.Goal),
		output.FormatCurrency(result.BaseMetric), output.FormatCurrency(result.Metric))
	fmt.Fprintf(&sb, "%-22s %18s %18s\n", "Difference to goal",
		tf.formatDelta(result.BaseMetric.Sub(result.GoalMetric)), tf.formatDelta(result.Metric.Sub(result.GoalMetric)))
	sb.WriteString("\n")

	return sb.String()
}

// FormatMulti formats the results of SolveAll
func (tf *TableFormatter) FormatMulti(result *MultiResult) string {
	var sb strings.Builder

	sb.WriteString("BREAK-EVEN ANALYSIS BY PARAMETER\n")
	sb.WriteString(strings.Repeat("=", 72) + "\n")
	if len(result.Results) > 0 {
		fmt.Fprintf(&sb, "Goal: %s\n\n", tf.goalText(&result.Results[0]))
	}

	fmt.Fprintf(&sb, "%-22s %14s %14s %18s\n", "Parameter", "Current", "Break-even", "Metric")
	sb.WriteString(strings.Repeat("-", 72) + "\n")
	for _, r := range result.Results {
		value := r.Target.FormatValue(r.Value)
		if !r.Success {
			value = "~" + value
		}
		fmt.Fprintf(&sb, "%-22s %14s %14s %18s\n",
			tf.truncate(string(r.Target), 22), r.Target.FormatValue(r.BaseValue), value, output.FormatCurrency(r.Metric))
	}
	sb.WriteString("\n")

	if len(result.Failed) > 0 {
		sb.WriteString("NOT REACHABLE\n")
		sb.WriteString(strings.Repeat("-", 72) + "\n")
		for _, f := range result.Failed {
			fmt.Fprintf(&sb, "• %s\n", f)
		}
		sb.WriteString("\n")
	}

	if len(result.Recommendations) > 0 {
		sb.WriteString("RECOMMENDATIONS\n")
		sb.WriteString(strings.Repeat("-", 72) + "\n")
		for _, rec := range result.Recommendations {
			fmt.Fprintf(&sb, "• %s\n", rec)
		}
		sb.WriteString("\n")
	}

	return sb.String()
}

// JSONFormatter formats results as JSON
type JSONFormatter struct {
	Pretty bool
}

// Format generates JSON output for a Result or MultiResult
func (jf *JSONFormatter) Format(result any) (string, error) {
	var data []byte
	var err error

	if jf.Pretty {
		data, err = json.MarshalIndent(result, "", "  ")
	} else {
		data, err = json.Marshal(result)
	}

	if err != nil {
		return "", err
	}

	return string(data), nil
}

// Helper methods

func (tf *TableFormatter) goalText(r *Result) string {
	at := fmt.Sprintf("at age %d", r.Age)
	if r.Age == 0 {
		at = "in the first payout year"
	}
	switch r.Goal {
	case GoalMatchPlan:
		return fmt.Sprintf("match the reference plan's net wealth of %s %s", output.FormatCurrency(r.GoalMetric), at)
	case GoalMonthlyPayout:
		return fmt.Sprintf("monthly net payout of %s %s", output.FormatCurrency(r.GoalMetric), at)
	default:
		return fmt.Sprintf("net wealth of %s %s", output.FormatCurrency(r.GoalMetric), at)
	}
}

func (tf *TableFormatter) metricName(g Goal) string {
	if g == GoalMonthlyPayout {
		return "Monthly net payout"
	}
	return "Net wealth"
}

func (tf *TableFormatter) formatStatus(success bool) string {
	if success {
		return "✓ Converged"
	}
	return "⚠ Did not converge"
}

func (tf *TableFormatter) formatDelta(d decimal.Decimal) string {
	if d.Round(2).IsPositive() {
		return "+" + output.FormatCurrency(d)
	}
	return output.FormatCurrency(d)
}

func (tf *TableFormatter) truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
