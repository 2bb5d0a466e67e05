package config

import (
	"fmt"
	"os"
	"sort"

	"github.com/shopspring/decimal"
	"github.com/vorsorge/rentenplan/internal/domain"
	"gopkg.in/yaml.v3"
)

// regulatoryFile mirrors domain.RegulatoryConfig but keeps each year as a raw node
// so that it can be decoded on top of the built-in table.
type regulatoryFile struct {
	Metadata domain.RegulatoryMetadata `yaml:"metadata"`
	Years    []yaml.Node               `yaml:"years"`
}

// LoadRegulatoryConfig loads additional tax-year tables. Every year starts as a copy
// of the built-in 2024 table; the file only needs the constants that changed.
func (ip *InputParser) LoadRegulatoryConfig(filename string) (*domain.RegulatoryConfig, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read regulatory config file %s: %w", filename, err)
	}
	return ip.ParseRegulatoryConfig(data)
}

// ParseRegulatoryConfig decodes and validates a tax-year document
func (ip *InputParser) ParseRegulatoryConfig(data []byte) (*domain.RegulatoryConfig, error) {
	var raw regulatoryFile
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse regulatory YAML: %w", err)
	}

	config := &domain.RegulatoryConfig{Metadata: raw.Metadata}
	for i := range raw.Years {
		rules := domain.Rules2024()
		if err := raw.Years[i].Decode(&rules); err != nil {
			return nil, fmt.Errorf("failed to parse regulatory YAML: year entry %d: %w", i, err)
		}
		config.Years = append(config.Years, rules)
	}

	if err := ip.validateRegulatoryConfig(config); err != nil {
		return nil, fmt.Errorf("regulatory config validation failed: %w", err)
	}
	return config, nil
}

// validateRegulatoryConfig checks that every table is internally consistent
func (ip *InputParser) validateRegulatoryConfig(config *domain.RegulatoryConfig) error {
	seen := map[int]bool{}
	for _, rules := range config.Years {
		if rules.Year < 2020 || rules.Year > 2100 {
			return fmt.Errorf("regulatory data year %d seems invalid", rules.Year)
		}
		if seen[rules.Year] {
			return fmt.Errorf("regulatory data year %d defined twice", rules.Year)
		}
		seen[rules.Year] = true

		it := rules.IncomeTax
		if !(it.BasicAllowance.IsPositive() &&
			it.BasicAllowance.LessThan(it.Zone1Limit) &&
			it.Zone1Limit.LessThan(it.Zone2Limit) &&
			it.Zone2Limit.LessThan(it.Zone3Limit)) {
			return fmt.Errorf("year %d: income tax zone limits must be positive and increasing", rules.Year)
		}
		for name, rate := range map[string]decimal.Decimal{
			"zone3 rate":        it.Zone3Rate,
			"zone4 rate":        it.Zone4Rate,
			"flat rate":         rules.CapitalGains.FlatRate,
			"solidarity rate":   rules.Solidarity.Rate,
			"half income share": rules.Pension.HalfIncomeShare,
		} {
			if !rate.IsPositive() || rate.GreaterThan(decimal.NewFromInt(1)) {
				return fmt.Errorf("year %d: %s must be in (0, 1], got %s", rules.Year, name, rate)
			}
		}
		if rules.CapitalGains.SaverAllowanceSingle.IsNegative() || rules.CapitalGains.SaverAllowanceMarried.IsNegative() {
			return fmt.Errorf("year %d: saver allowance cannot be negative", rules.Year)
		}
		if len(rules.Pension.Ertragsanteil) == 0 {
			return fmt.Errorf("year %d: Ertragsanteil table is required", rules.Year)
		}
		if !sort.SliceIsSorted(rules.Pension.Ertragsanteil, func(i, j int) bool {
			return rules.Pension.Ertragsanteil[i].FromAge < rules.Pension.Ertragsanteil[j].FromAge
		}) {
			return fmt.Errorf("year %d: Ertragsanteil table must be sorted by age", rules.Year)
		}
	}
	return nil
}

// RulesForYear resolves the table for a tax year. Zero selects the built-in year.
// Tables from extra take precedence over the built-in one.
func RulesForYear(year int, extra *domain.RegulatoryConfig) (domain.TaxYearRules, error) {
	builtin := domain.Rules2024()
	if year == 0 {
		year = builtin.Year
	}
	if extra != nil {
		for _, rules := range extra.Years {
			if rules.Year == year {
				return rules, nil
			}
		}
	}
	if year == builtin.Year {
		return builtin, nil
	}
	return domain.TaxYearRules{}, domain.NewValidationError("taxYear", "no tax rules for year %d (available: %v)", year, AvailableYears(extra))
}

// AvailableYears lists the tax years that can be selected
func AvailableYears(extra *domain.RegulatoryConfig) []int {
	years := []int{domain.Rules2024().Year}
	if extra != nil {
		for _, rules := range extra.Years {
			if rules.Year != years[0] {
				years = append(years, rules.Year)
			}
		}
	}
	sort.Ints(years)
	return years
}
