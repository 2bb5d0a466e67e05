package output

import (
	"bytes"
	"encoding/csv"
	"strconv"

	"github.com/vorsorge/rentenplan/internal/domain"
)

// CSVSummarizer implements the simple summary CSV output (one row per milestone).
type CSVSummarizer struct{}

func (c CSVSummarizer) Name() string { return "csv" }

func (c CSVSummarizer) Format(result *domain.SimulationResult) ([]byte, error) {
	buf := &bytes.Buffer{}
	w := csv.NewWriter(buf)
	header := []string{"Plan", "Product", "Age", "RecordAge", "GrossValue", "NetValue", "NetWealth", "TotalTax", "TotalFees", "TotalContributions", "TotalWithdrawn", "MonthlyNetPayout"}
	if err := w.Write(header); err != nil {
		return nil, err
	}
	for _, age := range sortedMilestones(result) {
		m := result.Summary[age]
		row := []string{
			result.Name,
			string(result.ProductType),
			strconv.Itoa(m.Age),
			strconv.Itoa(m.RecordAge),
			m.GrossValue.StringFixed(2),
			m.NetValue.StringFixed(2),
			m.NetWealth().StringFixed(2),
			m.TotalTax.StringFixed(2),
			m.TotalFees.StringFixed(2),
			m.TotalContributions.StringFixed(2),
			m.TotalWithdrawn.StringFixed(2),
			m.MonthlyNetPayout.StringFixed(2),
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

// DetailedCSVFormatter writes every simulated year
type DetailedCSVFormatter struct{}

func (c DetailedCSVFormatter) Name() string { return "detailed-csv" }

func (c DetailedCSVFormatter) Format(result *domain.SimulationResult) ([]byte, error) {
	buf := &bytes.Buffer{}
	w := csv.NewWriter(buf)
	header := []string{
		"Age", "Year", "Phase", "GrossValue", "NetValue", "Contribution", "Subsidy", "Growth", "Fees",
		"Vorabpauschale", "InvestmentTax", "Withdrawal", "PayoutTax", "NetPayout",
		"CumulativeTaxPaid", "CumulativeAllowanceUsed", "CumulativeContributions", "CumulativeWithdrawn", "CumulativeFees", "Depleted",
	}
	if err := w.Write(header); err != nil {
		return nil, err
	}
	for _, y := range result.Years {
		row := []string{
			strconv.Itoa(y.Age),
			strconv.Itoa(y.Year),
			string(y.Phase),
			y.GrossValue.StringFixed(2),
			y.NetValue.StringFixed(2),
			y.Contribution.StringFixed(2),
			y.Subsidy.StringFixed(2),
			y.Growth.StringFixed(2),
			y.Fees.StringFixed(2),
			y.Vorabpauschale.StringFixed(2),
			y.InvestmentTax.StringFixed(2),
			y.Withdrawal.StringFixed(2),
			y.PayoutTax.StringFixed(2),
			y.NetPayout.StringFixed(2),
			y.CumulativeTaxPaid.StringFixed(2),
			y.CumulativeAllowanceUsed.StringFixed(2),
			y.CumulativeContributions.StringFixed(2),
			y.CumulativeWithdrawn.StringFixed(2),
			y.CumulativeFees.StringFixed(2),
			strconv.FormatBool(y.Depleted),
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}
