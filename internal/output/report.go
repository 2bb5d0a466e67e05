package output

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/vorsorge/rentenplan/internal/domain"
	"gopkg.in/yaml.v3"
)

// GenerateReport writes a result in the named format to w
func GenerateReport(w io.Writer, result *domain.SimulationResult, format string) error {
	f := GetFormatterByName(format)
	if f == nil {
		return fmt.Errorf("unsupported format: %s (available: %s)", format, strings.Join(AvailableFormatterNames(), ", "))
	}
	data, err := f.Format(result)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

// FormatIncomeTax renders an income tax assessment as text
func FormatIncomeTax(result domain.TaxCalculationResult) string {
	var sb strings.Builder
	fmt.Fprintln(&sb, "EINKOMMENSTEUER")
	fmt.Fprintln(&sb, strings.Repeat("=", 44))
	fmt.Fprintf(&sb, "Bruttoeinkommen:         %18s\n", FormatCurrency(result.GrossIncome))
	fmt.Fprintf(&sb, "Zu versteuerndes Eink.:  %18s\n", FormatCurrency(result.TaxableIncome))
	fmt.Fprintln(&sb, strings.Repeat("-", 44))
	fmt.Fprintf(&sb, "Einkommensteuer:         %18s\n", FormatCurrency(result.IncomeTax))
	fmt.Fprintf(&sb, "Solidaritätszuschlag:    %18s\n", FormatCurrency(result.SolidaritySurcharge))
	fmt.Fprintf(&sb, "Kirchensteuer:           %18s\n", FormatCurrency(result.ChurchTax))
	fmt.Fprintf(&sb, "Steuern gesamt:          %18s\n", FormatCurrency(result.TotalTax))
	fmt.Fprintln(&sb, strings.Repeat("-", 44))
	fmt.Fprintf(&sb, "Netto:                   %18s\n", FormatCurrency(result.NetIncome))
	fmt.Fprintf(&sb, "Durchschnittssteuersatz: %18s\n", FormatPercentage(result.AverageTaxRate))
	fmt.Fprintf(&sb, "Grenzsteuersatz:         %18s\n", FormatPercentage(result.MarginalTaxRate))
	fmt.Fprintf(&sb, "Zone:                    %18s\n", result.Bracket)
	return sb.String()
}

// SaveConfiguration saves a configuration to a file
func SaveConfiguration(config *domain.Configuration, filename string) error {
	data, err := yaml.Marshal(config)
	if err != nil {
		return err
	}

	return os.WriteFile(filename, data, 0644)
}

// FormatCurrency formats a decimal as euros in German notation (1.234,56 €)
func FormatCurrency(amount decimal.Decimal) string {
	s := amount.Abs().StringFixed(2)
	intPart, frac := s[:len(s)-3], s[len(s)-2:]

	var grouped strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			grouped.WriteByte('.')
		}
		grouped.WriteRune(r)
	}

	sign := ""
	if amount.Round(2).IsNegative() {
		sign = "-"
	}
	return sign + grouped.String() + "," + frac + " €"
}

// FormatPercentage formats a percent number (42 = 42 %)
func FormatPercentage(amount decimal.Decimal) string {
	return strings.Replace(amount.StringFixed(2), ".", ",", 1) + " %"
}
