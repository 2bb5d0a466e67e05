// Package tui is the interactive terminal front end: plans are tuned with sliders and
// the comparison is recalculated shortly after the last change.
package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vorsorge/rentenplan/internal/calculation"
	"github.com/vorsorge/rentenplan/internal/compare"
	"github.com/vorsorge/rentenplan/internal/config"
	"github.com/vorsorge/rentenplan/internal/domain"
	"github.com/vorsorge/rentenplan/internal/store"
	"github.com/vorsorge/rentenplan/internal/tui/scenes"
)

// DefaultDebounce is the quiet period after an edit before recalculating
const DefaultDebounce = 300 * time.Millisecond

const calcTimeout = 10 * time.Second

// Options configure a TUI session
type Options struct {
	ConfigPath     string
	RegulatoryPath string

	// Repository enables ctrl+s; nil disables saving
	Repository store.Repository
	Debounce   time.Duration
	Logger     calculation.Logger
}

// Model represents the entire application state
type Model struct {
	currentScene  Scene
	previousScene Scene

	width  int
	height int

	opts   Options
	config *domain.Configuration
	rules  domain.TaxYearRules
	plans  []domain.SimulationParams

	compareEngine *compare.CompareEngine
	session       *store.Session

	// seq increases with every edit; only the newest calculation is applied
	seq         uint64
	calculating bool
	summary     *compare.ComparisonSummary

	parametersModel *scenes.ParametersModel
	compareModel    *scenes.CompareModel
	resultsModel    *scenes.ResultsModel

	status  string
	err     error
	loading bool
}

// NewModel creates a new application model
func NewModel(opts Options) Model {
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	if opts.Logger == nil {
		opts.Logger = calculation.NopLogger{}
	}
	return Model{
		currentScene:    SceneParameters,
		opts:            opts,
		parametersModel: scenes.NewParametersModel(),
		compareModel:    scenes.NewCompareModel(),
		resultsModel:    scenes.NewResultsModel(),
		loading:         true,
		width:           80,
		height:          24,
	}
}

// Init loads the configuration
func (m Model) Init() tea.Cmd {
	return loadConfigCmd(m.opts.ConfigPath, m.opts.RegulatoryPath)
}

// loadConfigCmd returns a command that loads and merges the configuration file
func loadConfigCmd(path, regulatoryPath string) tea.Cmd {
	return func() tea.Msg {
		parser := config.NewInputParser()
		cfg, rules, err := parser.LoadFromFileWithRegulatory(path, regulatoryPath)
		if err != nil {
			return ErrorMsg{Err: err}
		}
		return ConfigLoadedMsg{
			Config: cfg,
			Rules:  rules,
			Plans:  parser.MergeParams(cfg, rules),
		}
	}
}

// debounceCmd fires a recalcTickMsg for seq once the quiet period has passed
func debounceCmd(d time.Duration, seq uint64) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg {
		return recalcTickMsg{Seq: seq}
	})
}

// compareCmd runs the comparison off the UI goroutine
func compareCmd(engine *compare.CompareEngine, plans []domain.SimulationParams, milestones []int, seq uint64) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), calcTimeout)
		defer cancel()
		summary, err := engine.Compare(ctx, plans, compare.CompareOptions{Milestones: milestones})
		return ComparisonCompleteMsg{Seq: seq, Summary: summary, Err: err}
	}
}

// saveCmd stores the session draft
func saveCmd(session *store.Session, repo store.Repository) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), calcTimeout)
		defer cancel()
		draft, err := session.Save(ctx, repo)
		return DraftSavedMsg{Draft: draft, Err: err}
	}
}

// draftFromConfig seeds the session with the loaded plans
func draftFromConfig(cfg *domain.Configuration, plans []domain.SimulationParams) domain.PlanDraft {
	return domain.PlanDraft{
		Name:       cfg.Profile.Name,
		Profile:    cfg.Profile,
		Plans:      plans,
		Milestones: cfg.Milestones,
	}
}

// Summary returns the last applied comparison
func (m Model) Summary() *compare.ComparisonSummary {
	return m.summary
}

// Plans returns the current plans
func (m Model) Plans() []domain.SimulationParams {
	return m.plans
}

// String returns the German scene title
func (s Scene) String() string {
	switch s {
	case SceneParameters:
		return "Parameter"
	case SceneCompare:
		return "Vergleich"
	case SceneResults:
		return "Verlauf"
	case SceneHelp:
		return "Hilfe"
	default:
		return "Unbekannt"
	}
}
