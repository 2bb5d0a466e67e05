// Package report renders the PDF comparison report.
package report

import (
	"bytes"
	"fmt"
	"strconv"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/shopspring/decimal"
	"github.com/vorsorge/rentenplan/internal/compare"
	"github.com/vorsorge/rentenplan/internal/domain"
	"github.com/vorsorge/rentenplan/internal/output"
)

const (
	pageWidth    = 210.0
	marginLeft   = 15.0
	marginRight  = 15.0
	marginTop    = 15.0
	marginBottom = 20.0
	contentWidth = pageWidth - marginLeft - marginRight
)

// Input is everything a comparison report shows
type Input struct {
	Title   string
	Summary *compare.ComparisonSummary
	// Plans are the merged parameters in scenario order; optional
	Plans []domain.SimulationParams
	Rules domain.TaxYearRules
	// Script is attached as document-level JavaScript when not empty
	Script      string
	GeneratedAt time.Time
}

// PDFReport builds the report document
type PDFReport struct {
	pdf *fpdf.Fpdf
	tr  func(string) string
	in  Input
}

// GeneratePDF renders the comparison report and returns the PDF bytes
func GeneratePDF(in Input) ([]byte, error) {
	if in.Summary == nil || len(in.Summary.Scenarios) == 0 {
		return nil, domain.NewValidationError("summary", "nothing to report")
	}
	if in.Title == "" {
		in.Title = "Altersvorsorge-Vergleich"
	}
	if in.GeneratedAt.IsZero() {
		in.GeneratedAt = time.Now()
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	r := &PDFReport{
		pdf: pdf,
		tr:  pdf.UnicodeTranslatorFromDescriptor(""),
		in:  in,
	}

	pdf.SetMargins(marginLeft, marginTop, marginRight)
	pdf.SetAutoPageBreak(true, marginBottom)
	pdf.SetTitle(in.Title, true)
	pdf.SetCreator("rentenplan", true)
	pdf.SetCreationDate(in.GeneratedAt)
	pdf.SetModificationDate(in.GeneratedAt)
	pdf.SetCatalogSort(true)
	pdf.AliasNbPages("")
	pdf.SetFooterFunc(r.footer)
	if in.Script != "" {
		pdf.SetJavascript(in.Script)
	}

	r.addTitlePage()
	r.addParameters()
	r.addMilestones()
	for _, s := range in.Summary.Scenarios {
		r.addYearlyTable(s)
	}

	if err := pdf.Error(); err != nil {
		return nil, fmt.Errorf("failed to build PDF: %w", err)
	}
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to write PDF: %w", err)
	}
	return buf.Bytes(), nil
}

func (r *PDFReport) footer() {
	r.pdf.SetY(-15)
	r.pdf.SetFont("Arial", "I", 8)
	r.pdf.SetTextColor(120, 120, 120)
	r.pdf.CellFormat(0, 10, fmt.Sprintf("Seite %d/{nb}", r.pdf.PageNo()), "", 0, "C", false, 0, "")
}

func (r *PDFReport) addTitlePage() {
	r.pdf.AddPage()

	r.pdf.SetFont("Arial", "B", 28)
	r.pdf.SetTextColor(0, 51, 102)
	r.pdf.Ln(50)
	r.pdf.CellFormat(contentWidth, 15, r.tr(r.in.Title), "", 1, "C", false, 0, "")

	r.pdf.SetFont("Arial", "", 14)
	r.pdf.SetTextColor(80, 80, 80)
	r.pdf.Ln(10)
	r.pdf.CellFormat(contentWidth, 10, r.tr(fmt.Sprintf("Steuerjahr %d", r.in.Rules.Year)), "", 1, "C", false, 0, "")

	r.pdf.SetFont("Arial", "I", 11)
	r.pdf.Ln(15)
	r.pdf.CellFormat(contentWidth, 8, r.tr("Erstellt am "+r.in.GeneratedAt.Format("02.01.2006")), "", 1, "C", false, 0, "")

	r.pdf.Ln(20)
	r.pdf.SetFillColor(245, 247, 250)
	r.pdf.SetDrawColor(200, 200, 200)
	r.pdf.SetFont("Arial", "B", 12)
	r.pdf.SetTextColor(0, 51, 102)
	r.pdf.CellFormat(contentWidth, 8, r.tr("Verglichene Produkte"), "1", 1, "C", true, 0, "")

	r.pdf.SetFont("Arial", "", 11)
	r.pdf.SetTextColor(50, 50, 50)
	for _, s := range r.in.Summary.Scenarios {
		label := fmt.Sprintf("%s (%s)", s.Name, s.ProductType.DisplayName())
		if s.Name == r.in.Summary.BaseScenarioName {
			label += " - Basis"
		}
		r.pdf.CellFormat(contentWidth, 7, r.tr(label), "LR", 1, "C", true, 0, "")
	}
	r.pdf.CellFormat(contentWidth, 1, "", "LRB", 1, "C", true, 0, "")

	if len(r.in.Summary.Recommendations) > 0 {
		r.pdf.Ln(10)
		r.pdf.SetFont("Arial", "B", 12)
		r.pdf.SetTextColor(0, 51, 102)
		r.pdf.CellFormat(contentWidth, 8, r.tr("Empfehlungen"), "", 1, "L", false, 0, "")
		r.pdf.SetFont("Arial", "", 10)
		r.pdf.SetTextColor(50, 50, 50)
		for _, rec := range r.in.Summary.Recommendations {
			r.pdf.MultiCell(contentWidth, 5, r.tr("- "+rec), "", "L", false)
		}
	}

	r.pdf.Ln(15)
	r.pdf.SetFont("Arial", "I", 9)
	r.pdf.SetTextColor(120, 120, 120)
	r.pdf.MultiCell(contentWidth, 4.5, r.tr(
		"Dieses Dokument dient ausschließlich der Information und stellt keine Anlage- oder Steuerberatung dar. "+
			"Alle Werte sind Modellrechnungen auf Basis der angegebenen Annahmen."), "", "C", false)
}

func (r *PDFReport) addParameters() {
	r.pdf.AddPage()
	r.drawSectionHeader("Annahmen")

	r.pdf.SetFont("Arial", "", 9)
	r.pdf.SetTextColor(50, 50, 50)
	for _, a := range output.KeyAssumptions(r.in.Rules) {
		r.pdf.MultiCell(contentWidth, 4.5, r.tr("- "+a), "", "L", false)
	}
	r.pdf.Ln(5)

	if len(r.in.Plans) == 0 {
		return
	}

	r.drawSectionHeader("Parameter")
	headers := []string{"Plan", "Alter", "Rente ab", "Bis", "Start", "Monatlich", "Rendite", "Kosten", "Ausgabeaufschl."}
	widths := []float64{36, 14, 16, 12, 24, 22, 18, 18, 20}
	r.drawTableHeader(headers, widths)
	for i, p := range r.in.Plans {
		name := p.Name
		if i < len(r.in.Summary.Scenarios) {
			name = r.in.Summary.Scenarios[i].Name
		}
		r.drawTableRow([]string{
			truncate(name, 20),
			strconv.Itoa(p.CurrentAge),
			strconv.Itoa(p.RetirementAge),
			strconv.Itoa(p.FinalAge),
			output.FormatCurrency(p.StartInvestment),
			output.FormatCurrency(p.MonthlyContribution),
			percent(p.ExpectedReturn),
			percent(p.ManagementFee),
			percent(p.FrontLoadFee),
		}, widths, false)
	}
}

func (r *PDFReport) addMilestones() {
	r.pdf.AddPage()
	r.drawSectionHeader("Vergleich nach Alter")

	headers := []string{"Plan", "Netto-Vermögen", "Netto-Wert", "Steuern", "Kosten", "Vorteil", "Rente netto/M."}
	widths := []float64{40, 26, 24, 22, 20, 24, 24}
	summary := r.in.Summary
	for _, age := range summary.Milestones {
		r.pdf.SetFont("Arial", "B", 11)
		r.pdf.SetTextColor(0, 51, 102)
		r.pdf.CellFormat(contentWidth, 8, r.tr(fmt.Sprintf("Alter %d", age)), "", 1, "L", false, 0, "")
		r.drawTableHeader(headers, widths)
		for _, row := range summary.ByMilestone[age] {
			name := row.ScenarioName
			if row.ScenarioName == summary.BaseScenarioName {
				name += " (Basis)"
			}
			best := summary.BestByMilestone[age] == row.ScenarioName
			r.drawTableRow([]string{
				truncate(name, 22),
				output.FormatCurrency(row.NetWealth),
				output.FormatCurrency(row.NetValue),
				output.FormatCurrency(row.TotalTax),
				output.FormatCurrency(row.TotalFees),
				output.FormatCurrency(row.AdvantageAbsolute),
				output.FormatCurrency(row.MonthlyNetPayout),
			}, widths, best)
		}
		r.pdf.Ln(4)
	}
}

func (r *PDFReport) addYearlyTable(s compare.ScenarioResult) {
	r.pdf.AddPage()
	r.drawSectionHeader(fmt.Sprintf("%s - Jahresverlauf", s.Name))

	if s.Result.Depleted {
		r.pdf.SetFont("Arial", "B", 10)
		r.pdf.SetTextColor(180, 0, 0)
		r.pdf.CellFormat(contentWidth, 6, r.tr(fmt.Sprintf("Kapital aufgebraucht mit %d Jahren", s.Result.DepletedAtAge)), "", 1, "L", false, 0, "")
	}

	headers := []string{"Alter", "Jahr", "Brutto", "Netto", "Einzahlung", "Zuwachs", "Steuern", "Auszahlung"}
	widths := []float64{12, 14, 26, 26, 24, 26, 24, 28}
	r.drawTableHeader(headers, widths)
	prev := domain.PhaseAccumulation
	for _, y := range s.Result.Years {
		// first payout year is highlighted
		firstPayout := y.IsPayout() && prev != domain.PhasePayout
		prev = y.Phase
		r.drawTableRow([]string{
			strconv.Itoa(y.Age),
			strconv.Itoa(y.Year),
			output.FormatCurrency(y.GrossValue),
			output.FormatCurrency(y.NetValue),
			output.FormatCurrency(y.Contribution.Add(y.Subsidy)),
			output.FormatCurrency(y.Growth),
			output.FormatCurrency(y.InvestmentTax.Add(y.PayoutTax)),
			output.FormatCurrency(y.NetPayout),
		}, widths, firstPayout)
	}
}

func (r *PDFReport) drawSectionHeader(title string) {
	r.pdf.SetFont("Arial", "B", 16)
	r.pdf.SetTextColor(0, 51, 102)
	r.pdf.CellFormat(contentWidth, 10, r.tr(title), "", 1, "L", false, 0, "")
	r.pdf.SetDrawColor(0, 51, 102)
	r.pdf.Line(marginLeft, r.pdf.GetY(), marginLeft+contentWidth, r.pdf.GetY())
	r.pdf.Ln(5)
}

func (r *PDFReport) drawTableHeader(headers []string, widths []float64) {
	r.pdf.SetFillColor(0, 51, 102)
	r.pdf.SetTextColor(255, 255, 255)
	r.pdf.SetFont("Arial", "B", 8)

	for i, header := range headers {
		align := "L"
		if i > 0 {
			align = "R"
		}
		r.pdf.CellFormat(widths[i], 6, r.tr(header), "1", 0, align, true, 0, "")
	}
	r.pdf.Ln(-1)
}

func (r *PDFReport) drawTableRow(cells []string, widths []float64, isBold bool) {
	r.pdf.SetFillColor(250, 250, 250)
	r.pdf.SetTextColor(50, 50, 50)

	if isBold {
		r.pdf.SetFont("Arial", "B", 8)
		r.pdf.SetFillColor(240, 240, 240)
	} else {
		r.pdf.SetFont("Arial", "", 8)
	}

	for i, cell := range cells {
		align := "L"
		if i > 0 {
			align = "R"
		}
		r.pdf.CellFormat(widths[i], 5, r.tr(cell), "1", 0, align, true, 0, "")
	}
	r.pdf.Ln(-1)
}

func percent(v decimal.Decimal) string {
	return output.FormatPercentage(v.Mul(decimal.NewFromInt(100)))
}

func truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen-1]) + "."
}
