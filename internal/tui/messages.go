package tui

import (
	"github.com/vorsorge/rentenplan/internal/compare"
	"github.com/vorsorge/rentenplan/internal/domain"
	"github.com/vorsorge/rentenplan/internal/tui/tuimsg"
)

// Scene represents different screens in the TUI
type Scene int

const (
	SceneParameters Scene = iota
	SceneCompare
	SceneResults
	SceneHelp
)

// Messages from the scenes
type (
	PlansChangedMsg = tuimsg.PlansChangedMsg
	PlanFocusedMsg  = tuimsg.PlanFocusedMsg
)

// NavigateMsg switches to a different scene
type NavigateMsg struct {
	Scene Scene
}

// ErrorMsg displays a fatal error to the user
type ErrorMsg struct {
	Err error
}

// ConfigLoadedMsg signals the configuration file has been parsed and merged
type ConfigLoadedMsg struct {
	Config *domain.Configuration
	Rules  domain.TaxYearRules
	Plans  []domain.SimulationParams
}

// recalcTickMsg fires when the debounce delay after an edit has passed.
// Only the tick carrying the latest sequence number starts a calculation.
type recalcTickMsg struct {
	Seq uint64
}

// ComparisonCompleteMsg carries the result of a comparison run
type ComparisonCompleteMsg struct {
	Seq     uint64
	Summary *compare.ComparisonSummary
	Err     error
}

// SaveDraftMsg asks the model to store the current plans
type SaveDraftMsg struct{}

// DraftSavedMsg reports the outcome of a save
type DraftSavedMsg struct {
	Draft domain.PlanDraft
	Err   error
}
