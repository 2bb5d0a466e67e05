package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"runtime/debug"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"github.com/vorsorge/rentenplan/internal/calculation"
	"github.com/vorsorge/rentenplan/internal/compare"
	"github.com/vorsorge/rentenplan/internal/config"
	"github.com/vorsorge/rentenplan/internal/domain"
	"github.com/vorsorge/rentenplan/internal/output"
)

// simpleCLILogger implements calculation.Logger using the standard log package
type simpleCLILogger struct{}

func (simpleCLILogger) Debugf(format string, args ...any) { log.Printf("DEBUG: "+format, args...) }
func (simpleCLILogger) Infof(format string, args ...any)  { log.Printf("INFO: "+format, args...) }
func (simpleCLILogger) Warnf(format string, args ...any)  { log.Printf("WARN: "+format, args...) }
func (simpleCLILogger) Errorf(format string, args ...any) { log.Printf("ERROR: "+format, args...) }

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func init() {
	// every command and the HTTP API write money as JSON numbers
	decimal.MarshalJSONWithoutQuotes = true
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "rentenplan",
		Short: "Altersvorsorge-Rechner für Deutschland",
		Long: `Projects German retirement products (fund savings plan, private pension insurance,
Riester, Rürup, occupational pension) year by year, including income tax,
Vorabpauschale, payout taxation and subsidies, and compares them by age.`,
		SilenceUsage: true,
	}
	root.PersistentFlags().Bool("debug", false, "Enable debug output for detailed calculations")

	root.AddCommand(
		calculateCmd(),
		compareCmd(),
		breakEvenCmd(),
		validateCmd(),
		incomeTaxCmd(),
		scriptCmd(),
		reportCmd(),
		serveCmd(),
		tuiCmd(),
		exampleCmd(),
		versionCmd(),
	)
	return root
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "rentenplan %s (commit %s, built %s)\n", version, commit, date)
			if info := buildInfo(); info != "" {
				fmt.Fprintln(cmd.OutOrStdout(), info)
			}
		},
	}
}

func buildInfo() string {
	if bi, ok := debug.ReadBuildInfo(); ok && bi != nil {
		return bi.String()
	}
	return ""
}

// logger returns the CLI logger when --debug is set
func logger(cmd *cobra.Command) calculation.Logger {
	if on, _ := cmd.Flags().GetBool("debug"); on {
		return simpleCLILogger{}
	}
	return calculation.NopLogger{}
}

// loadedConfig is a parsed input file with its plans merged against the defaults
type loadedConfig struct {
	Config *domain.Configuration
	Rules  domain.TaxYearRules
	Plans  []domain.SimulationParams
}

func loadConfig(cmd *cobra.Command, path string) (*loadedConfig, error) {
	parser := config.NewInputParser()
	regulatoryFile, _ := cmd.Flags().GetString("regulatory-config")
	cfg, rules, err := parser.LoadFromFileWithRegulatory(path, regulatoryFile)
	if err != nil {
		return nil, err
	}
	return &loadedConfig{Config: cfg, Rules: rules, Plans: parser.MergeParams(cfg, rules)}, nil
}

// selectPlans filters by name; an empty name keeps every plan
func selectPlans(plans []domain.SimulationParams, name string) ([]domain.SimulationParams, error) {
	if name == "" {
		return plans, nil
	}
	for _, p := range plans {
		if strings.EqualFold(p.Name, name) {
			return []domain.SimulationParams{p}, nil
		}
	}
	return nil, fmt.Errorf("plan %q not found", name)
}

func newEngine(cmd *cobra.Command, rules domain.TaxYearRules) *calculation.CalculationEngine {
	engine := calculation.NewCalculationEngineWithRules(rules)
	engine.SetLogger(logger(cmd))
	return engine
}

func calculateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "calculate [input-file]",
		Short: "Project every plan of a configuration year by year",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := loadConfig(cmd, args[0])
			if err != nil {
				return err
			}
			planName, _ := cmd.Flags().GetString("plan")
			plans, err := selectPlans(loaded.Plans, planName)
			if err != nil {
				return err
			}

			format, _ := cmd.Flags().GetString("format")
			f := output.GetFormatterByName(format)
			if f == nil {
				return fmt.Errorf("unknown format %q (available: %s; aliases: %s)", format,
					strings.Join(output.AvailableFormatterNames(), ", "), strings.Join(output.AvailableFormatAliases(), ", "))
			}
			save, _ := cmd.Flags().GetBool("save")

			engine := newEngine(cmd, loaded.Rules)
			for _, p := range plans {
				result, err := engine.Simulate(commandContext(cmd), p)
				if err != nil {
					return fmt.Errorf("plan %s: %w", p.Name, err)
				}
				if save {
					name, err := output.WriteFormatted(f, result, fileExtension(f.Name()))
					if err != nil {
						return err
					}
					fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", p.Name, name)
					continue
				}
				data, err := f.Format(result)
				if err != nil {
					return err
				}
				cmd.OutOrStdout().Write(data)
			}
			return nil
		},
	}
	cmd.Flags().StringP("format", "f", "console", "Output format ("+strings.Join(output.AvailableFormatterNames(), ", ")+")")
	cmd.Flags().String("plan", "", "Only calculate the plan with this name")
	cmd.Flags().Bool("save", false, "Write each result to a timestamped file instead of stdout")
	cmd.Flags().String("regulatory-config", "", "Path to an additional tax-year file")
	return cmd
}

func fileExtension(formatter string) string {
	switch formatter {
	case "csv", "detailed-csv":
		return "csv"
	case "json":
		return "json"
	case "html":
		return "html"
	default:
		return "txt"
	}
}

func validateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate [input-file]",
		Short: "Validate a configuration file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := loadConfig(cmd, args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Configuration file %s is valid (%d plans, tax year %d)\n",
				args[0], len(loaded.Plans), loaded.Rules.Year)
			return nil
		},
	}
	cmd.Flags().String("regulatory-config", "", "Path to an additional tax-year file")
	return cmd
}

func compareCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compare [input-file]",
		Short: "Compare all plans of a configuration at milestone ages",
		Long: `Simulate every plan and align the results by age.

Examples:
  rentenplan compare plans.yaml
  rentenplan compare plans.yaml --base ETF --milestones 67,75,85 --format csv
  rentenplan compare plans.yaml --what-if "ETF-Sparplan=set_expected_return:value=7%;postpone_retirement:years=2"

Transforms for --what-if:
  set_<parameter>:value=<v>   parameters: monthly_contribution, start_investment, expected_return,
                              management_fee, front_load_fee, payout_monthly, retirement_age, final_age
  postpone_retirement:years=<n>
  set_product:type=<product>[,annuity_factor=<f>,children=<n>,employer_subsidy_rate=<r>,lump_sum=true]
`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			summary, _, err := runComparison(cmd, args[0])
			if err != nil {
				return err
			}

			format, _ := cmd.Flags().GetString("format")
			var out string
			switch strings.ToLower(format) {
			case "csv":
				out, err = (&compare.CSVFormatter{}).Format(summary)
			case "json":
				out, err = (&compare.JSONFormatter{Pretty: true}).Format(summary)
			case "compact":
				out = (&compare.TableFormatter{}).FormatCompact(summary)
			case "table", "console", "":
				out = (&compare.TableFormatter{}).Format(summary)
			default:
				return fmt.Errorf("unknown output format: %s (valid: table, compact, csv, json)", format)
			}
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), out)
			return nil
		},
	}
	addComparisonFlags(cmd)
	cmd.Flags().StringP("format", "f", "table", "Output format (table, compact, csv, json)")
	return cmd
}

func addComparisonFlags(cmd *cobra.Command) {
	cmd.Flags().String("base", "", "Plan to compare against (default: first plan)")
	cmd.Flags().IntSlice("milestones", nil, "Ages to compare at (default: configured milestones)")
	cmd.Flags().Int("parallel", 0, "Maximum plans simulated concurrently (0 = all)")
	cmd.Flags().StringArray("what-if", nil, "Add a modified copy of a plan: <plan>=<transform>[;<transform>...]")
	cmd.Flags().String("regulatory-config", "", "Path to an additional tax-year file")
}

// runComparison loads a configuration and compares its plans
func runComparison(cmd *cobra.Command, path string) (*compare.ComparisonSummary, *loadedConfig, error) {
	loaded, err := loadConfig(cmd, path)
	if err != nil {
		return nil, nil, err
	}

	base, _ := cmd.Flags().GetString("base")
	milestones, _ := cmd.Flags().GetIntSlice("milestones")
	if len(milestones) == 0 {
		milestones = loaded.Config.Milestones
	}
	parallel, _ := cmd.Flags().GetInt("parallel")
	whatIfs, _ := cmd.Flags().GetStringArray("what-if")
	if loaded.Plans, err = applyWhatIfs(loaded.Plans, whatIfs); err != nil {
		return nil, nil, err
	}

	ce := compare.NewCompareEngine(newEngine(cmd, loaded.Rules))
	summary, err := ce.Compare(commandContext(cmd), loaded.Plans, compare.CompareOptions{
		BaseScenarioName: base,
		Milestones:       milestones,
		Parallelism:      parallel,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("comparison failed: %w", err)
	}
	summary.ConfigPath = path
	return summary, loaded, nil
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func exampleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "example [output-file]",
		Short: "Write an example configuration file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := output.SaveConfiguration(exampleConfiguration(), args[0]); err != nil {
				return fmt.Errorf("failed to write example: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Example configuration written to %s\n", args[0])
			return nil
		},
	}
}
