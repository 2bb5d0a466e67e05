package config

import (
	"fmt"
	"os"

	"github.com/shopspring/decimal"
	"github.com/vorsorge/rentenplan/internal/calculation"
	"github.com/vorsorge/rentenplan/internal/domain"
	"gopkg.in/yaml.v3"
)

// InputParser handles parsing of input configuration files
type InputParser struct{}

// NewInputParser creates a new input parser
func NewInputParser() *InputParser {
	return &InputParser{}
}

// LoadFromFile loads configuration from a YAML or JSON file
func (ip *InputParser) LoadFromFile(filename string) (*domain.Configuration, error) {
	config, _, err := ip.LoadFromFileWithRegulatory(filename, "")
	return config, err
}

// LoadFromFileWithRegulatory loads configuration and resolves its tax year, optionally
// from an additional tax-year file
func (ip *InputParser) LoadFromFileWithRegulatory(filename, regulatoryFile string) (*domain.Configuration, domain.TaxYearRules, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, domain.TaxYearRules{}, fmt.Errorf("failed to read file %s: %w", filename, err)
	}

	config, err := ip.Parse(data)
	if err != nil {
		return nil, domain.TaxYearRules{}, err
	}

	var extra *domain.RegulatoryConfig
	if regulatoryFile != "" {
		extra, err = ip.LoadRegulatoryConfig(regulatoryFile)
		if err != nil {
			return nil, domain.TaxYearRules{}, err
		}
	}
	rules, err := RulesForYear(config.TaxYear, extra)
	if err != nil {
		return nil, domain.TaxYearRules{}, err
	}

	// Validate the configuration
	if err := ip.ValidateConfiguration(config, rules); err != nil {
		return nil, domain.TaxYearRules{}, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, rules, nil
}

// Parse decodes a configuration document. JSON input is accepted as YAML.
func (ip *InputParser) Parse(data []byte) (*domain.Configuration, error) {
	var config domain.Configuration
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	return &config, nil
}

// ValidateConfiguration validates the loaded configuration against a tax year
func (ip *InputParser) ValidateConfiguration(config *domain.Configuration, rules domain.TaxYearRules) error {
	if err := ip.validateProfile(&config.Profile); err != nil {
		return fmt.Errorf("profile validation failed: %w", err)
	}

	if len(config.Plans) == 0 {
		return domain.NewValidationError("plans", "no plans provided")
	}

	for i, params := range ip.MergeParams(config, rules) {
		if err := calculation.ValidateParams(params); err != nil {
			return fmt.Errorf("plan %d (%s) validation failed: %w", i, params.Name, err)
		}
	}

	return nil
}

// validateProfile validates the saver's personal data
func (ip *InputParser) validateProfile(profile *domain.Profile) error {
	switch profile.IncomeTax.MaritalStatus {
	case "", domain.Single, domain.Married:
	default:
		return domain.NewValidationError("maritalStatus", "must be %q or %q, got %q", domain.Single, domain.Married, profile.IncomeTax.MaritalStatus)
	}
	if profile.IncomeTax.GrossIncome.IsNegative() {
		return domain.NewValidationError("grossIncome", "cannot be negative")
	}
	if profile.IncomeTax.Children < 0 {
		return domain.NewValidationError("children", "cannot be negative")
	}
	if profile.CurrentAge != 0 && profile.RetirementAge != 0 && profile.RetirementAge < profile.CurrentAge {
		return domain.NewValidationError("retirementAge", "must not be before currentAge (%d < %d)", profile.RetirementAge, profile.CurrentAge)
	}
	return nil
}

// MergeParams returns the plans with every unset field filled from the defaults
// block and the profile. The configuration itself is not modified.
func (ip *InputParser) MergeParams(config *domain.Configuration, rules domain.TaxYearRules) []domain.SimulationParams {
	defaults := config.Defaults
	status := config.Profile.IncomeTax.MaritalStatus

	fallbackSettings := domain.DefaultTaxSettings(rules, status)
	fallbackSettings.ChurchTaxRate = config.Profile.IncomeTax.ChurchTaxRate

	out := make([]domain.SimulationParams, len(config.Plans))
	for i, plan := range config.Plans {
		p := plan

		if p.Product.Type == "" {
			p.Product = defaults.Product
		}
		p.CurrentAge = firstInt(p.CurrentAge, defaults.CurrentAge, config.Profile.CurrentAge)
		p.RetirementAge = firstInt(p.RetirementAge, defaults.RetirementAge, config.Profile.RetirementAge)
		p.FinalAge = firstInt(p.FinalAge, defaults.FinalAge, config.Profile.FinalAge)
		p.StartYear = firstInt(p.StartYear, defaults.StartYear)

		p.StartInvestment = firstDecimal(p.StartInvestment, defaults.StartInvestment)
		p.MonthlyContribution = firstDecimal(p.MonthlyContribution, defaults.MonthlyContribution)
		p.ExpectedReturn = firstDecimal(p.ExpectedReturn, defaults.ExpectedReturn)
		p.FrontLoadFee = firstDecimal(p.FrontLoadFee, defaults.FrontLoadFee)
		p.ManagementFee = firstDecimal(p.ManagementFee, defaults.ManagementFee)
		p.PayoutMonthly = firstDecimal(p.PayoutMonthly, defaults.PayoutMonthly)
		if p.FrontLoadMode == "" {
			p.FrontLoadMode = defaults.FrontLoadMode
		}

		if p.TaxSettings.IsZero() {
			p.TaxSettings = defaults.TaxSettings
		}
		if p.TaxSettings.IsZero() {
			p.TaxSettings = fallbackSettings
		}
		if p.ExistingPension == nil {
			p.ExistingPension = defaults.ExistingPension
		}
		if len(p.MilestoneAges) == 0 {
			p.MilestoneAges = defaults.MilestoneAges
		}
		if len(p.MilestoneAges) == 0 {
			p.MilestoneAges = config.Milestones
		}

		out[i] = p
	}
	return out
}

func firstInt(values ...int) int {
	for _, v := range values {
		if v != 0 {
			return v
		}
	}
	return 0
}

func firstDecimal(values ...decimal.Decimal) decimal.Decimal {
	for _, v := range values {
		if !v.IsZero() {
			return v
		}
	}
	return decimal.Zero
}
