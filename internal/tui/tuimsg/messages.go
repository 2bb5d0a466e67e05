// Package tuimsg holds the messages scenes send to the root model.
package tuimsg

import (
	"github.com/vorsorge/rentenplan/internal/domain"
)

// PlansChangedMsg carries the edited plans after a parameter change
type PlansChangedMsg struct {
	Plans []domain.SimulationParams
}

// PlanFocusedMsg signals the user switched to another plan
type PlanFocusedMsg struct {
	Index int
}
