package domain

import "time"

// Configuration is the top-level input file
type Configuration struct {
	TaxYear int `yaml:"tax_year" json:"taxYear"`

	// Profile feeds the income tax assessment and the shared plan defaults
	Profile Profile `yaml:"profile" json:"profile"`

	// Defaults apply to every plan field left unset
	Defaults SimulationParams   `yaml:"defaults" json:"defaults"`
	Plans    []SimulationParams `yaml:"plans" json:"plans"`

	Milestones []int `yaml:"milestones,omitempty" json:"milestones,omitempty"`
}

// Profile contains the saver's personal data
type Profile struct {
	Name          string              `yaml:"name" json:"name"`
	CurrentAge    int                 `yaml:"current_age" json:"currentAge"`
	RetirementAge int                 `yaml:"retirement_age" json:"retirementAge"`
	FinalAge      int                 `yaml:"final_age" json:"finalAge"`
	IncomeTax     TaxCalculationInput `yaml:"income_tax" json:"incomeTax"`
}

// PlanDraft is saved user input. Simulation results are never stored.
type PlanDraft struct {
	ID         string             `json:"id"`
	Name       string             `json:"name"`
	Profile    Profile            `json:"profile"`
	Plans      []SimulationParams `json:"plans"`
	Milestones []int              `json:"milestones,omitempty"`
	CreatedAt  time.Time          `json:"createdAt"`
	UpdatedAt  time.Time          `json:"updatedAt"`
}
