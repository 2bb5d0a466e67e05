// Package transform modifies plans in small, composable steps. Transforms back the
// what-if variants of the CLI and the break-even solver.
package transform

import (
	"fmt"

	"github.com/vorsorge/rentenplan/internal/domain"
)

// PlanTransform changes one aspect of a plan.
// Apply never modifies its argument.
type PlanTransform interface {
	// Apply returns the modified plan.
	Apply(base domain.SimulationParams) (domain.SimulationParams, error)

	// Name returns the registry identifier (e.g. "postpone_retirement").
	Name() string

	// Description returns a human-readable description of the change.
	Description() string

	// Validate checks the transform against the plan it will be applied to.
	Validate(base domain.SimulationParams) error
}

// ApplyTransforms applies transforms in order, each one receiving the output of the previous.
func ApplyTransforms(base domain.SimulationParams, transforms []PlanTransform) (domain.SimulationParams, error) {
	current := clone(base)

	for i, t := range transforms {
		if t == nil {
			return domain.SimulationParams{}, fmt.Errorf("transform at index %d is nil", i)
		}
		if err := t.Validate(current); err != nil {
			return domain.SimulationParams{}, fmt.Errorf("transform %s validation failed: %w", t.Name(), err)
		}

		next, err := t.Apply(current)
		if err != nil {
			return domain.SimulationParams{}, fmt.Errorf("transform %s failed: %w", t.Name(), err)
		}
		current = next
	}

	return current, nil
}

// Variant applies transforms to a copy of base and names it after the changes,
// so it can be compared side by side with the original.
func Variant(base domain.SimulationParams, transforms ...PlanTransform) (domain.SimulationParams, error) {
	v, err := ApplyTransforms(base, transforms)
	if err != nil {
		return domain.SimulationParams{}, err
	}
	v.Name = base.Name
	for _, t := range transforms {
		v.Name += ", " + t.Description()
	}
	return v, nil
}

// clone copies the slice fields so transforms can never alias the caller's plan
func clone(p domain.SimulationParams) domain.SimulationParams {
	p.MilestoneAges = append([]int(nil), p.MilestoneAges...)
	if p.ExistingPension != nil {
		ep := *p.ExistingPension
		p.ExistingPension = &ep
	}
	return p
}

// TransformError represents an error that occurred during transformation.
type TransformError struct {
	TransformName string
	Operation     string
	Reason        string
	Err           error
}

func (e *TransformError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("transform %s (%s): %s: %v", e.TransformName, e.Operation, e.Reason, e.Err)
	}
	return fmt.Sprintf("transform %s (%s): %s", e.TransformName, e.Operation, e.Reason)
}

func (e *TransformError) Unwrap() error {
	return e.Err
}

// NewTransformError creates a new TransformError.
func NewTransformError(transformName, operation, reason string, err error) error {
	return &TransformError{
		TransformName: transformName,
		Operation:     operation,
		Reason:        reason,
		Err:           err,
	}
}
