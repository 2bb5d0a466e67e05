package scenes

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vorsorge/rentenplan/internal/compare"
	"github.com/vorsorge/rentenplan/internal/domain"
	"github.com/vorsorge/rentenplan/internal/tui/components"
	"github.com/vorsorge/rentenplan/internal/tui/tuistyles"
)

const defaultVisibleYears = 10

type resultsKeyMap struct {
	Up, Down, NextPlan, PrevPlan key.Binding
}

var resultsKeys = resultsKeyMap{
	Up:       key.NewBinding(key.WithKeys("up", "k")),
	Down:     key.NewBinding(key.WithKeys("down", "j")),
	NextPlan: key.NewBinding(key.WithKeys("tab", "right", "l")),
	PrevPlan: key.NewBinding(key.WithKeys("shift+tab", "left", "h")),
}

// ResultsModel shows the yearly projection of one plan
type ResultsModel struct {
	summary  *compare.ComparisonSummary
	selected int
	offset   int // first year row shown
	width    int
	height   int
}

// NewResultsModel creates a new results scene model
func NewResultsModel() *ResultsModel {
	return &ResultsModel{}
}

// SetSummary updates the projections to display
func (m *ResultsModel) SetSummary(summary *compare.ComparisonSummary) {
	m.summary = summary
	if summary == nil || m.selected >= len(summary.Scenarios) {
		m.selected = 0
	}
	m.clampOffset()
}

// Select focuses a plan by index
func (m *ResultsModel) Select(i int) {
	if i < 0 {
		return
	}
	m.selected = i
	if m.summary != nil && i >= len(m.summary.Scenarios) {
		m.selected = 0
	}
	m.clampOffset()
}

// Selected returns the plan in focus, or nil
func (m *ResultsModel) Selected() *compare.ScenarioResult {
	if m.summary == nil || m.selected >= len(m.summary.Scenarios) {
		return nil
	}
	return &m.summary.Scenarios[m.selected]
}

// SetSize updates the scene dimensions
func (m *ResultsModel) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.clampOffset()
}

// Update handles messages for the results scene
func (m *ResultsModel) Update(msg tea.Msg) (*ResultsModel, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok || m.summary == nil || len(m.summary.Scenarios) == 0 {
		return m, nil
	}
	n := len(m.summary.Scenarios)
	switch {
	case key.Matches(keyMsg, resultsKeys.Up):
		m.offset--
	case key.Matches(keyMsg, resultsKeys.Down):
		m.offset++
	case key.Matches(keyMsg, resultsKeys.NextPlan):
		m.selected = (m.selected + 1) % n
	case key.Matches(keyMsg, resultsKeys.PrevPlan):
		m.selected = (m.selected - 1 + n) % n
	}
	m.clampOffset()
	return m, nil
}

func (m *ResultsModel) visibleYears() int {
	// header, cards, chart and help take about 30 lines
	if m.height > 40 {
		return m.height - 30
	}
	return defaultVisibleYears
}

func (m *ResultsModel) clampOffset() {
	sel := m.Selected()
	if sel == nil {
		m.offset = 0
		return
	}
	maxOffset := max(0, len(sel.Result.Years)-m.visibleYears())
	m.offset = min(max(m.offset, 0), maxOffset)
}

// View renders the results scene
func (m *ResultsModel) View() string {
	sel := m.Selected()
	if sel == nil {
		return "Noch kein Ergebnis. Parameter anpassen oder Konfiguration laden."
	}
	res := sel.Result

	title := tuistyles.TitleStyle.Render(fmt.Sprintf("%s – %s", sel.Name, sel.ProductType.DisplayName()))
	parts := []string{title, m.renderCards(res), "", m.renderChart(), "", m.renderYears(res)}
	if res.Depleted {
		parts = append(parts, tuistyles.MetricNegativeStyle.Render(fmt.Sprintf("Kapital aufgebraucht mit %d Jahren", res.DepletedAtAge)))
	}
	for _, w := range res.Warnings {
		parts = append(parts, tuistyles.InfoStyle.Render("Hinweis: "+w))
	}
	parts = append(parts, "", tuistyles.HelpDescStyle.Render("←/→ Plan wechseln • ↑/↓ blättern"))

	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (m *ResultsModel) renderCards(res *domain.SimulationResult) string {
	final := res.Final()
	cards := []*components.MetricCard{
		components.NewMoneyCard("Einzahlungen", final.CumulativeContributions),
		components.NewMoneyCard("Netto-Vermögen", final.NetValue.Add(final.CumulativeNetPayout)),
		components.NewMoneyCard("Steuern gesamt", final.CumulativeTaxPaid),
		components.NewMoneyCard("Kosten gesamt", final.CumulativeFees),
	}
	if res.MonthlyPayout.IsPositive() {
		cards = append(cards, components.NewMoneyCard("Monatsrente brutto", res.MonthlyPayout))
	}
	return components.MetricGrid(cards, len(cards))
}

// renderChart plots the net value of every plan over age
func (m *ResultsModel) renderChart() string {
	width := 70
	if m.width > 20 {
		width = min(m.width-4, 100)
	}
	chart := components.NewASCIIChart("Nettowert nach Alter").
		WithSize(width, 10).
		WithXAxisLabel("Alter")

	var labels []string
	for i, sc := range m.summary.Scenarios {
		points := make([]float64, len(sc.Result.Years))
		for j, y := range sc.Result.Years {
			points[j] = y.NetValue.InexactFloat64()
		}
		chart.AddSeries(sc.Name, points, tuistyles.ChartColors(i))
		if i == m.selected {
			labels = make([]string, len(sc.Result.Years))
			for j, y := range sc.Result.Years {
				labels[j] = strconv.Itoa(y.Age)
			}
		}
	}
	return chart.WithLabels(labels).Render()
}

func (m *ResultsModel) renderYears(res *domain.SimulationResult) string {
	cols := []struct {
		title string
		width int
	}{
		{"Alter", 6}, {"Phase", 8}, {"Beitrag", 13}, {"Zulage", 11}, {"Steuer", 12},
		{"Auszahlung", 13}, {"Netto", 13}, {"Nettowert", 15},
	}

	var b strings.Builder
	for _, c := range cols {
		b.WriteString(tuistyles.TableHeaderStyle.Width(c.width).Align(lipgloss.Right).Render(c.title))
	}

	end := min(len(res.Years), m.offset+m.visibleYears())
	for _, y := range res.Years[m.offset:end] {
		phase := "Sparen"
		if y.IsPayout() {
			phase = "Rente"
		}
		cells := []string{
			strconv.Itoa(y.Age),
			phase,
			tuistyles.FormatCurrency(y.Contribution),
			tuistyles.FormatCurrency(y.Subsidy),
			tuistyles.FormatCurrency(y.InvestmentTax.Add(y.PayoutTax)),
			tuistyles.FormatCurrency(y.Withdrawal),
			tuistyles.FormatCurrency(y.NetPayout),
			tuistyles.FormatCurrency(y.NetValue),
		}
		style := tuistyles.TableCellStyle
		if y.Depleted {
			style = tuistyles.MetricNegativeStyle
		}
		b.WriteString("\n")
		for i, c := range cols {
			b.WriteString(style.Width(c.width).Align(lipgloss.Right).Render(cells[i]))
		}
	}
	if len(res.Years) > end || m.offset > 0 {
		b.WriteString("\n")
		b.WriteString(tuistyles.SubtitleStyle.Render(fmt.Sprintf("Jahre %d–%d von %d", m.offset+1, end, len(res.Years))))
	}
	return b.String()
}
