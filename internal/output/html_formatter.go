package output

import (
	"bytes"
	_ "embed"
	"html/template"

	"github.com/vorsorge/rentenplan/internal/domain"
)

// HTMLFormatter produces a standalone HTML page for one projection
type HTMLFormatter struct{}

func (h HTMLFormatter) Name() string { return "html" }

//go:embed templates/report.html.tmpl
var htmlTemplateSource string

var htmlTemplate = template.Must(template.New("report").Funcs(template.FuncMap{
	"curr": FormatCurrency,
	"pct":  FormatPercentage,
}).Parse(htmlTemplateSource))

func (h HTMLFormatter) Format(result *domain.SimulationResult) ([]byte, error) {
	var buf bytes.Buffer
	milestones := make([]domain.MilestoneSummary, 0, len(result.Summary))
	for _, age := range sortedMilestones(result) {
		milestones = append(milestones, result.Summary[age])
	}
	data := struct {
		*domain.SimulationResult
		ProductName string
		Milestones  []domain.MilestoneSummary
		Assumptions []string
	}{result, result.ProductType.DisplayName(), milestones, KeyAssumptions(domain.Rules2024())}
	if err := htmlTemplate.Execute(&buf, data); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
