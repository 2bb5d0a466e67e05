package main

import (
	"fmt"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"github.com/vorsorge/rentenplan/internal/calculation"
	"github.com/vorsorge/rentenplan/internal/config"
	"github.com/vorsorge/rentenplan/internal/domain"
	"github.com/vorsorge/rentenplan/internal/output"
)

func incomeTaxCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "income-tax [gross-income]",
		Short: "Assess German income tax, solidarity surcharge and church tax",
		Long: `Assess the income tax of one year.

Examples:
  rentenplan income-tax 60000
  rentenplan income-tax 120000 --married --church-tax 0.09 --children 2
  rentenplan income-tax --list-years
`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			extra, err := loadRegulatory(cmd)
			if err != nil {
				return err
			}

			if list, _ := cmd.Flags().GetBool("list-years"); list {
				years := config.AvailableYears(extra)
				parts := make([]string, len(years))
				for i, y := range years {
					parts[i] = fmt.Sprint(y)
				}
				fmt.Fprintln(cmd.OutOrStdout(), strings.Join(parts, "\n"))
				return nil
			}
			if len(args) == 0 {
				return fmt.Errorf("gross income required (use --list-years to see supported tax years)")
			}

			gross, err := decimal.NewFromString(args[0])
			if err != nil {
				return fmt.Errorf("invalid gross income %q: %w", args[0], err)
			}
			year, _ := cmd.Flags().GetInt("year")
			rules, err := config.RulesForYear(year, extra)
			if err != nil {
				return err
			}

			input := domain.TaxCalculationInput{GrossIncome: gross, MaritalStatus: domain.Single}
			if married, _ := cmd.Flags().GetBool("married"); married {
				input.MaritalStatus = domain.Married
			}
			church, _ := cmd.Flags().GetString("church-tax")
			if input.ChurchTaxRate, err = decimal.NewFromString(church); err != nil {
				return fmt.Errorf("invalid church tax rate %q: %w", church, err)
			}
			special, _ := cmd.Flags().GetString("special-expenses")
			if input.SpecialExpenses, err = decimal.NewFromString(special); err != nil {
				return fmt.Errorf("invalid special expenses %q: %w", special, err)
			}
			input.Children, _ = cmd.Flags().GetInt("children")
			if input.Children < 0 {
				return domain.NewValidationError("children", "cannot be negative")
			}

			calc := calculation.NewTaxCalculatorWithRules(rules)
			result := calc.Income.Calculate(input)

			if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
				data, err := json.MarshalIndent(result, "", "  ")
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(data))
				return nil
			}
			fmt.Fprint(cmd.OutOrStdout(), output.FormatIncomeTax(result))
			return nil
		},
	}
	cmd.Flags().Int("year", 2024, "Tax year")
	cmd.Flags().Bool("married", false, "Joint assessment (splitting)")
	cmd.Flags().String("church-tax", "0", "Church tax rate (0, 0.08 or 0.09)")
	cmd.Flags().String("special-expenses", "0", "Deductible special expenses")
	cmd.Flags().Int("children", 0, "Number of children for the child allowance check")
	cmd.Flags().Bool("json", false, "Print the assessment as JSON")
	cmd.Flags().Bool("list-years", false, "List the supported tax years")
	cmd.Flags().String("regulatory-config", "", "Path to an additional tax-year file")
	return cmd
}

// loadRegulatory reads the optional --regulatory-config file
func loadRegulatory(cmd *cobra.Command) (*domain.RegulatoryConfig, error) {
	path, _ := cmd.Flags().GetString("regulatory-config")
	if path == "" {
		return nil, nil
	}
	return config.NewInputParser().LoadRegulatoryConfig(path)
}
