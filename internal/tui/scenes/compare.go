package scenes

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vorsorge/rentenplan/internal/compare"
	"github.com/vorsorge/rentenplan/internal/tui/components"
	"github.com/vorsorge/rentenplan/internal/tui/tuistyles"
)

const (
	planColumnWidth  = 24
	valueColumnWidth = 16
)

var (
	prevMilestone = key.NewBinding(key.WithKeys("left", "h"))
	nextMilestone = key.NewBinding(key.WithKeys("right", "l"))
)

// CompareModel shows every plan at every milestone age
type CompareModel struct {
	summary     *compare.ComparisonSummary
	cursor      int // selected milestone
	calculating bool
	err         error
	width       int
	height      int
}

// NewCompareModel creates a new compare scene model
func NewCompareModel() *CompareModel {
	return &CompareModel{}
}

// SetSummary stores a finished comparison
func (m *CompareModel) SetSummary(summary *compare.ComparisonSummary) {
	m.summary = summary
	m.err = nil
	m.calculating = false
	if summary != nil && m.cursor >= len(summary.Milestones) {
		m.cursor = 0
	}
}

// SetCalculating marks a pending recalculation
func (m *CompareModel) SetCalculating(on bool) {
	m.calculating = on
}

// SetError shows a failed calculation. The last good summary stays visible.
func (m *CompareModel) SetError(err error) {
	m.err = err
	m.calculating = false
}

// SelectedMilestone returns the milestone age in focus, or 0 without a summary
func (m *CompareModel) SelectedMilestone() int {
	if m.summary == nil || len(m.summary.Milestones) == 0 {
		return 0
	}
	return m.summary.Milestones[m.cursor]
}

// SetSize updates the model dimensions
func (m *CompareModel) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// Update handles messages for the compare scene
func (m *CompareModel) Update(msg tea.Msg) (*CompareModel, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok || m.summary == nil || len(m.summary.Milestones) == 0 {
		return m, nil
	}
	switch {
	case key.Matches(keyMsg, prevMilestone):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(keyMsg, nextMilestone):
		if m.cursor < len(m.summary.Milestones)-1 {
			m.cursor++
		}
	}
	return m, nil
}

// View renders the compare scene
func (m *CompareModel) View() string {
	var parts []string
	switch {
	case m.err != nil:
		parts = append(parts, tuistyles.MetricNegativeStyle.Render("Berechnung fehlgeschlagen: "+m.err.Error()))
	case m.calculating:
		parts = append(parts, tuistyles.InfoStyle.Render("Berechnung läuft …"))
	}
	if m.summary == nil {
		if len(parts) == 0 {
			parts = append(parts, "Noch kein Ergebnis.")
		}
		return lipgloss.JoinVertical(lipgloss.Left, parts...)
	}

	parts = append(parts,
		tuistyles.SubtitleStyle.Render("Netto-Vermögen je Alter (Basis: "+m.summary.BaseScenarioName+")"),
		m.renderMatrix(),
		"",
		m.renderMilestoneCards(),
	)
	if len(m.summary.Recommendations) > 0 {
		recs := make([]string, len(m.summary.Recommendations))
		for i, r := range m.summary.Recommendations {
			recs[i] = "• " + r
		}
		parts = append(parts, "", tuistyles.InfoStyle.Render(strings.Join(recs, "\n")))
	}
	parts = append(parts, "", tuistyles.HelpDescStyle.Render("←/→ Alter wählen"))

	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

// renderMatrix draws plans as rows and milestone ages as columns
func (m *CompareModel) renderMatrix() string {
	s := m.summary
	name := lipgloss.NewStyle().Width(planColumnWidth)
	cell := lipgloss.NewStyle().Width(valueColumnWidth).Align(lipgloss.Right)

	header := []string{tuistyles.TableHeaderStyle.Inherit(name).Render("Plan")}
	for i, age := range s.Milestones {
		label := fmt.Sprintf("Alter %d", age)
		if i == m.cursor {
			label = "▸ " + label
		}
		header = append(header, tuistyles.TableHeaderStyle.Inherit(cell).Render(label))
	}
	lines := []string{lipgloss.JoinHorizontal(lipgloss.Top, header...)}

	for i, sc := range s.Scenarios {
		row := []string{name.Render(truncate(sc.Name, planColumnWidth-1))}
		for _, age := range s.Milestones {
			rows := s.ByMilestone[age]
			if i >= len(rows) {
				row = append(row, cell.Render("–"))
				continue
			}
			value := tuistyles.FormatCurrency(rows[i].NetWealth)
			style := tuistyles.TableCellStyle
			if s.BestByMilestone[age] == sc.Name {
				style = tuistyles.TableHighlightStyle
			}
			if rows[i].Depleted {
				value += "!"
			}
			row = append(row, style.Inherit(cell).Render(value))
		}
		lines = append(lines, lipgloss.JoinHorizontal(lipgloss.Top, row...))
	}
	return strings.Join(lines, "\n")
}

// renderMilestoneCards shows the details of every plan at the selected age
func (m *CompareModel) renderMilestoneCards() string {
	age := m.SelectedMilestone()
	rows := m.summary.ByMilestone[age]
	cards := make([]*components.MetricCard, 0, len(rows))
	for _, r := range rows {
		desc := fmt.Sprintf("Steuern %s\nKosten %s", tuistyles.FormatCurrency(r.TotalTax), tuistyles.FormatCurrency(r.TotalFees))
		if r.MonthlyNetPayout.IsPositive() {
			desc += "\nmtl. netto " + tuistyles.FormatCurrency(r.MonthlyNetPayout)
		}
		card := components.NewMoneyCard(r.ScenarioName, r.NetWealth).
			WithDescription(desc).
			WithHighlight(m.summary.BestByMilestone[age] == r.ScenarioName)
		if r.ScenarioName != m.summary.BaseScenarioName {
			card.WithDelta(r.AdvantageAbsolute)
		}
		cards = append(cards, card)
	}

	columns := 3
	if m.width > 0 {
		columns = max(1, m.width/30)
	}
	return components.MetricGrid(cards, columns)
}

// truncate shortens s to n runes
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 1 {
		return string(r[:n])
	}
	return string(r[:n-1]) + "…"
}
