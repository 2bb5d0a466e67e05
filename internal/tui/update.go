package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/vorsorge/rentenplan/internal/calculation"
	"github.com/vorsorge/rentenplan/internal/compare"
	"github.com/vorsorge/rentenplan/internal/domain"
	"github.com/vorsorge/rentenplan/internal/store"
)

type globalKeyMap struct {
	Quit, Help, Back, Parameters, Compare, Results, Save key.Binding
}

var globalKeys = globalKeyMap{
	Quit:       key.NewBinding(key.WithKeys("ctrl+c", "q")),
	Help:       key.NewBinding(key.WithKeys("?")),
	Back:       key.NewBinding(key.WithKeys("esc")),
	Parameters: key.NewBinding(key.WithKeys("p", "1")),
	Compare:    key.NewBinding(key.WithKeys("c", "2")),
	Results:    key.NewBinding(key.WithKeys("r", "3")),
	Save:       key.NewBinding(key.WithKeys("ctrl+s")),
}

// Update handles all messages and updates the model state
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.parametersModel.SetSize(msg.Width, msg.Height)
		m.compareModel.SetSize(msg.Width, msg.Height)
		m.resultsModel.SetSize(msg.Width, msg.Height)
		return m, nil

	case NavigateMsg:
		if msg.Scene != m.currentScene {
			m.previousScene = m.currentScene
			m.currentScene = msg.Scene
		}
		return m, nil

	case ErrorMsg:
		m.loading = false
		m.err = msg.Err
		return m, nil

	case ConfigLoadedMsg:
		m.loading = false
		m.config = msg.Config
		m.rules = msg.Rules
		m.plans = msg.Plans

		engine := calculation.NewCalculationEngineWithRules(msg.Rules)
		engine.SetLogger(m.opts.Logger)
		m.compareEngine = compare.NewCompareEngine(engine)
		m.session = store.NewSession(draftFromConfig(msg.Config, msg.Plans))

		m.parametersModel.SetPlans(msg.Plans)
		return m.startCalculation()

	case PlansChangedMsg:
		m.plans = msg.Plans
		if m.session != nil {
			plans := msg.Plans
			m.session.Update(func(d *domain.PlanDraft) { d.Plans = plans })
		}
		m.seq++
		m.calculating = true
		m.compareModel.SetCalculating(true)
		return m, debounceCmd(m.opts.Debounce, m.seq)

	case PlanFocusedMsg:
		m.resultsModel.Select(msg.Index)
		return m, nil

	case recalcTickMsg:
		if msg.Seq != m.seq {
			// superseded by a later edit
			return m, nil
		}
		return m, compareCmd(m.compareEngine, m.plans, m.milestones(), msg.Seq)

	case ComparisonCompleteMsg:
		if msg.Seq != m.seq {
			return m, nil
		}
		m.calculating = false
		if msg.Err != nil {
			m.opts.Logger.Warnf("recalculation failed: %v", msg.Err)
			m.compareModel.SetError(msg.Err)
			return m, nil
		}
		m.summary = msg.Summary
		m.compareModel.SetSummary(msg.Summary)
		m.resultsModel.SetSummary(msg.Summary)
		return m, nil

	case SaveDraftMsg:
		if m.session == nil || m.opts.Repository == nil {
			m.status = "Speichern nicht verfügbar"
			return m, nil
		}
		m.status = "Speichere …"
		return m, saveCmd(m.session, m.opts.Repository)

	case DraftSavedMsg:
		if msg.Err != nil {
			m.status = "Speichern fehlgeschlagen: " + msg.Err.Error()
			return m, nil
		}
		m.status = fmt.Sprintf("Gespeichert %s", msg.Draft.UpdatedAt.Format("15:04:05"))
		return m, nil
	}

	return m.updateCurrentScene(msg)
}

// startCalculation runs the comparison for the current plans right away
func (m Model) startCalculation() (tea.Model, tea.Cmd) {
	if m.compareEngine == nil || len(m.plans) == 0 {
		return m, nil
	}
	m.seq++
	m.calculating = true
	m.compareModel.SetCalculating(true)
	return m, compareCmd(m.compareEngine, m.plans, m.milestones(), m.seq)
}

// milestones are the configured ages; empty means the union of the plans' ages
func (m Model) milestones() []int {
	if m.config == nil {
		return nil
	}
	return m.config.Milestones
}

// handleKeyPress processes keyboard input
func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.err != nil {
		if key.Matches(msg, globalKeys.Quit) {
			return m, tea.Quit
		}
		// any other key dismisses the error once a configuration is loaded
		if m.config != nil {
			m.err = nil
		}
		return m, nil
	}

	switch {
	case key.Matches(msg, globalKeys.Quit):
		return m, tea.Quit
	case key.Matches(msg, globalKeys.Help):
		return m, navigate(SceneHelp)
	case key.Matches(msg, globalKeys.Back):
		if m.currentScene != m.previousScene {
			return m, navigate(m.previousScene)
		}
		return m, nil
	case key.Matches(msg, globalKeys.Parameters):
		return m, navigate(SceneParameters)
	case key.Matches(msg, globalKeys.Compare):
		return m, navigate(SceneCompare)
	case key.Matches(msg, globalKeys.Results):
		return m, navigate(SceneResults)
	case key.Matches(msg, globalKeys.Save):
		return m, func() tea.Msg { return SaveDraftMsg{} }
	}

	return m.updateCurrentScene(msg)
}

func navigate(s Scene) tea.Cmd {
	return func() tea.Msg { return NavigateMsg{Scene: s} }
}

// updateCurrentScene delegates updates to the current scene's model
func (m Model) updateCurrentScene(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.currentScene {
	case SceneParameters:
		m.parametersModel, cmd = m.parametersModel.Update(msg)
	case SceneCompare:
		m.compareModel, cmd = m.compareModel.Update(msg)
	case SceneResults:
		m.resultsModel, cmd = m.resultsModel.Update(msg)
	}
	return m, cmd
}
