package scenes

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"github.com/vorsorge/rentenplan/internal/domain"
	"github.com/vorsorge/rentenplan/internal/transform"
	"github.com/vorsorge/rentenplan/internal/tui/components"
	"github.com/vorsorge/rentenplan/internal/tui/tuimsg"
	"github.com/vorsorge/rentenplan/internal/tui/tuistyles"
)

var hundred = decimal.NewFromInt(100)

// slider keys are the transform parameter names
const (
	paramMonthly    = string(transform.MonthlyContribution)
	paramStart      = string(transform.StartInvestment)
	paramReturn     = string(transform.ExpectedReturn)
	paramFee        = string(transform.ManagementFee)
	paramFrontLoad  = string(transform.FrontLoadFee)
	paramRetirement = string(transform.RetirementAge)
)

type parameterKeyMap struct {
	Up, Down, Left, Right, NextPlan, PrevPlan, Reset key.Binding
}

var parameterKeys = parameterKeyMap{
	Up:       key.NewBinding(key.WithKeys("up", "k")),
	Down:     key.NewBinding(key.WithKeys("down", "j")),
	Left:     key.NewBinding(key.WithKeys("left", "h", "-")),
	Right:    key.NewBinding(key.WithKeys("right", "l", "+")),
	NextPlan: key.NewBinding(key.WithKeys("tab")),
	PrevPlan: key.NewBinding(key.WithKeys("shift+tab")),
	Reset:    key.NewBinding(key.WithKeys("u")),
}

// ParametersModel edits the plans with arrow-key sliders
type ParametersModel struct {
	plans         []domain.SimulationParams
	original      []domain.SimulationParams
	selectedPlan  int
	sliders       []*components.ParameterSlider
	focusedSlider int
	width         int
	height        int
	modified      bool
}

// NewParametersModel creates a new parameters scene model
func NewParametersModel() *ParametersModel {
	return &ParametersModel{}
}

// SetPlans replaces the plans being edited; they become the reset point
func (m *ParametersModel) SetPlans(plans []domain.SimulationParams) {
	m.plans = clonePlans(plans)
	m.original = clonePlans(plans)
	m.modified = false
	if m.selectedPlan >= len(m.plans) {
		m.selectedPlan = 0
	}
	m.buildSliders()
}

// Plans returns a copy of the edited plans
func (m *ParametersModel) Plans() []domain.SimulationParams {
	return clonePlans(m.plans)
}

// SelectedPlan is the index of the plan shown
func (m *ParametersModel) SelectedPlan() int {
	return m.selectedPlan
}

// Modified reports whether any slider moved since the last SetPlans
func (m *ParametersModel) Modified() bool {
	return m.modified
}

// Sliders exposes the sliders of the selected plan
func (m *ParametersModel) Sliders() []*components.ParameterSlider {
	return m.sliders
}

// SetSize updates the scene dimensions
func (m *ParametersModel) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// buildSliders creates the sliders for the selected plan
func (m *ParametersModel) buildSliders() {
	m.sliders = nil
	if m.selectedPlan >= len(m.plans) {
		return
	}
	p := m.plans[m.selectedPlan]

	maxAge := max(p.FinalAge, p.RetirementAge, p.CurrentAge)
	m.sliders = []*components.ParameterSlider{
		components.NewParameterSlider(paramMonthly, transform.MonthlyContribution.Label(), p.MonthlyContribution.InexactFloat64(), 0, 2000, 25).
			WithFormat("%.0f").WithUnit(" €").WithWidth(40).
			WithDescription("Sparrate pro Monat bis zum Rentenbeginn"),
		components.NewParameterSlider(paramStart, transform.StartInvestment.Label(), p.StartInvestment.InexactFloat64(), 0, 200000, 1000).
			WithFormat("%.0f").WithUnit(" €").WithWidth(40).
			WithDescription("Anlagebetrag zu Beginn"),
		components.NewParameterSlider(paramReturn, transform.ExpectedReturn.Label(), p.ExpectedReturn.Mul(hundred).InexactFloat64(), 0, 12, 0.25).
			WithUnit(" %").WithWidth(40).
			WithDescription("Jährliche Bruttorendite vor Kosten"),
		components.NewParameterSlider(paramFee, transform.ManagementFee.Label(), p.ManagementFee.Mul(hundred).InexactFloat64(), 0, 3, 0.05).
			WithUnit(" %").WithWidth(40).
			WithDescription("Verwaltungskosten pro Jahr (TER)"),
		components.NewParameterSlider(paramFrontLoad, transform.FrontLoadFee.Label(), p.FrontLoadFee.Mul(hundred).InexactFloat64(), 0, 8, 0.5).
			WithFormat("%.1f").WithUnit(" %").WithWidth(40).
			WithDescription("Ausgabeaufschlag auf die Beiträge"),
		components.NewParameterSlider(paramRetirement, transform.RetirementAge.Label(), float64(p.RetirementAge), float64(p.CurrentAge), float64(maxAge), 1).
			WithFormat("%.0f").WithUnit(" Jahre").WithWidth(40).
			WithDescription("Alter bei Beginn der Auszahlung"),
	}

	if m.focusedSlider >= len(m.sliders) {
		m.focusedSlider = 0
	}
	m.sliders[m.focusedSlider].SetFocused(true)
}

// Update handles messages for the parameters scene
func (m *ParametersModel) Update(msg tea.Msg) (*ParametersModel, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok || len(m.sliders) == 0 {
		return m, nil
	}

	switch {
	case key.Matches(keyMsg, parameterKeys.Up):
		m.moveFocus(-1)
	case key.Matches(keyMsg, parameterKeys.Down):
		m.moveFocus(1)
	case key.Matches(keyMsg, parameterKeys.Left):
		if s := m.sliders[m.focusedSlider]; s.Decrement() {
			return m, m.applyChange(s)
		}
	case key.Matches(keyMsg, parameterKeys.Right):
		if s := m.sliders[m.focusedSlider]; s.Increment() {
			return m, m.applyChange(s)
		}
	case key.Matches(keyMsg, parameterKeys.NextPlan):
		return m, m.selectPlan(m.selectedPlan + 1)
	case key.Matches(keyMsg, parameterKeys.PrevPlan):
		return m, m.selectPlan(m.selectedPlan - 1)
	case key.Matches(keyMsg, parameterKeys.Reset):
		if !m.modified {
			return m, nil
		}
		m.plans = clonePlans(m.original)
		m.modified = false
		m.buildSliders()
		return m, m.plansChanged()
	}

	return m, nil
}

func (m *ParametersModel) moveFocus(delta int) {
	next := m.focusedSlider + delta
	if next < 0 || next >= len(m.sliders) {
		return
	}
	m.sliders[m.focusedSlider].SetFocused(false)
	m.focusedSlider = next
	m.sliders[next].SetFocused(true)
}

// selectPlan switches plans, wrapping around
func (m *ParametersModel) selectPlan(i int) tea.Cmd {
	if len(m.plans) < 2 {
		return nil
	}
	m.selectedPlan = (i + len(m.plans)) % len(m.plans)
	m.buildSliders()
	index := m.selectedPlan
	return func() tea.Msg { return tuimsg.PlanFocusedMsg{Index: index} }
}

// applyChange writes one slider's value back into the selected plan.
// Untouched parameters keep their exact configured value.
func (m *ParametersModel) applyChange(s *components.ParameterSlider) tea.Cmd {
	param := transform.Parameter(s.Key)
	v := decimal.NewFromFloat(s.Value)
	if param.IsRate() {
		v = v.Div(hundred)
	}

	plan, err := transform.ApplyTransforms(m.plans[m.selectedPlan], []transform.PlanTransform{
		&transform.SetParameter{Parameter: param, Value: v},
	})
	if err != nil {
		// slider bounds keep values valid; ignore the edit otherwise
		return nil
	}
	m.plans[m.selectedPlan] = plan
	m.modified = true
	return m.plansChanged()
}

func (m *ParametersModel) plansChanged() tea.Cmd {
	plans := clonePlans(m.plans)
	return func() tea.Msg { return tuimsg.PlansChangedMsg{Plans: plans} }
}

// View renders the parameters scene
func (m *ParametersModel) View() string {
	if len(m.plans) == 0 {
		return "Keine Pläne geladen."
	}

	sliders := make([]string, 0, len(m.sliders))
	for _, s := range m.sliders {
		sliders = append(sliders, s.Render())
	}
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(tuistyles.ColorBorder).
		Padding(1, 2).
		Render(strings.Join(sliders, "\n\n"))

	parts := []string{m.renderPlanTabs(), "", box}
	if m.modified {
		parts = append(parts, "", tuistyles.InfoStyle.Bold(true).Render("Geändert (u: zurücksetzen)"))
	}
	parts = append(parts, "", tuistyles.HelpDescStyle.Render("↑/↓ Parameter • ←/→ anpassen • Tab Plan wechseln • u zurücksetzen"))

	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (m *ParametersModel) renderPlanTabs() string {
	normal := lipgloss.NewStyle().Foreground(tuistyles.ColorForeground).Padding(0, 1)
	selected := lipgloss.NewStyle().
		Foreground(tuistyles.ColorAccent).
		Background(tuistyles.ColorBorder).
		Bold(true).
		Padding(0, 1)

	tabs := make([]string, len(m.plans))
	for i, p := range m.plans {
		label := p.Name + " (" + string(p.Product.Type) + ")"
		if i == m.selectedPlan {
			tabs[i] = selected.Render(label)
		} else {
			tabs[i] = normal.Render(label)
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func clonePlans(plans []domain.SimulationParams) []domain.SimulationParams {
	if plans == nil {
		return nil
	}
	out := make([]domain.SimulationParams, len(plans))
	for i, p := range plans {
		p.MilestoneAges = append([]int(nil), p.MilestoneAges...)
		out[i] = p
	}
	return out
}
