package main

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"github.com/vorsorge/rentenplan/internal/breakeven"
	"github.com/vorsorge/rentenplan/internal/domain"
	"github.com/vorsorge/rentenplan/internal/transform"
)

func breakEvenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "breakeven [input-file]",
		Short: "Find the parameter value at which a plan reaches a goal",
		Long: `Search for the break-even value of one plan parameter.

Goals (exactly one):
  --match <plan>         net wealth of another plan in the file
  --net-wealth <EUR>     a net wealth amount
  --monthly-payout <EUR> a monthly net payout

Examples:
  rentenplan breakeven plans.yaml --plan ETF-Sparplan --param expected_return --match Rürup --age 85
  rentenplan breakeven plans.yaml --plan ETF-Sparplan --param monthly_contribution --net-wealth 250000
  rentenplan breakeven plans.yaml --plan ETF-Sparplan --all --monthly-payout 800
`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := loadConfig(cmd, args[0])
			if err != nil {
				return err
			}
			planName, _ := cmd.Flags().GetString("plan")
			if planName == "" {
				planName = loaded.Plans[0].Name
			}
			plans, err := selectPlans(loaded.Plans, planName)
			if err != nil {
				return err
			}

			req, err := breakEvenRequest(cmd, plans[0], loaded.Plans)
			if err != nil {
				return err
			}

			solver := breakeven.NewDefaultSolver(newEngine(cmd, loaded.Rules))
			format, _ := cmd.Flags().GetString("format")
			all, _ := cmd.Flags().GetBool("all")

			var out string
			if all {
				multi, err := solver.SolveAll(commandContext(cmd), req, nil)
				if err != nil {
					return err
				}
				if format == "json" {
					out, err = (&breakeven.JSONFormatter{Pretty: true}).Format(multi)
				} else {
					out = (&breakeven.TableFormatter{}).FormatMulti(multi)
				}
				if err != nil {
					return err
				}
			} else {
				res, err := solver.Solve(commandContext(cmd), req)
				if err != nil {
					return err
				}
				if format == "json" {
					out, err = (&breakeven.JSONFormatter{Pretty: true}).Format(res)
				} else {
					out = (&breakeven.TableFormatter{}).Format(res)
				}
				if err != nil {
					return err
				}
			}
			fmt.Fprintln(cmd.OutOrStdout(), out)
			return nil
		},
	}
	cmd.Flags().String("plan", "", "Plan to vary (default: first plan)")
	cmd.Flags().String("param", string(transform.ExpectedReturn), "Parameter to solve for ("+parameterNames()+")")
	cmd.Flags().Bool("all", false, "Solve for every parameter")
	cmd.Flags().String("match", "", "Reach the net wealth of this plan")
	cmd.Flags().String("net-wealth", "", "Reach this net wealth in EUR")
	cmd.Flags().String("monthly-payout", "", "Reach this monthly net payout in EUR")
	cmd.Flags().Int("age", 0, "Age at which the goal is measured (default: final age, or first payout year)")
	cmd.Flags().String("min", "", "Lower end of the search range")
	cmd.Flags().String("max", "", "Upper end of the search range")
	cmd.Flags().StringP("format", "f", "table", "Output format (table, json)")
	cmd.Flags().String("regulatory-config", "", "Path to an additional tax-year file")
	return cmd
}

func breakEvenRequest(cmd *cobra.Command, plan domain.SimulationParams, all []domain.SimulationParams) (breakeven.Request, error) {
	param, _ := cmd.Flags().GetString("param")
	age, _ := cmd.Flags().GetInt("age")
	req := breakeven.Request{Plan: plan, Target: transform.Parameter(param), Age: age}

	match, _ := cmd.Flags().GetString("match")
	wealth, _ := cmd.Flags().GetString("net-wealth")
	payout, _ := cmd.Flags().GetString("monthly-payout")

	goals := 0
	for _, g := range []string{match, wealth, payout} {
		if g != "" {
			goals++
		}
	}
	if goals != 1 {
		return req, fmt.Errorf("exactly one of --match, --net-wealth or --monthly-payout is required")
	}

	var err error
	switch {
	case match != "":
		ref, err := selectPlans(all, match)
		if err != nil {
			return req, err
		}
		req.Goal = breakeven.GoalMatchPlan
		req.Reference = &ref[0]
	case wealth != "":
		req.Goal = breakeven.GoalNetWealth
		if req.TargetValue, err = decimal.NewFromString(wealth); err != nil {
			return req, fmt.Errorf("invalid --net-wealth %q: %w", wealth, err)
		}
	default:
		req.Goal = breakeven.GoalMonthlyPayout
		if req.TargetValue, err = decimal.NewFromString(payout); err != nil {
			return req, fmt.Errorf("invalid --monthly-payout %q: %w", payout, err)
		}
	}

	for _, bound := range []struct {
		flag string
		dst  **decimal.Decimal
	}{{"min", &req.Min}, {"max", &req.Max}} {
		s, _ := cmd.Flags().GetString(bound.flag)
		if s == "" {
			continue
		}
		v, err := decimal.NewFromString(s)
		if err != nil {
			return req, fmt.Errorf("invalid --%s %q: %w", bound.flag, s, err)
		}
		*bound.dst = &v
	}

	return req, nil
}

func parameterNames() string {
	names := make([]string, len(transform.Parameters))
	for i, p := range transform.Parameters {
		names[i] = string(p)
	}
	return strings.Join(names, ", ")
}

// applyWhatIfs appends a variant for every "<plan>=<transform>[;<transform>...]" spec
func applyWhatIfs(plans []domain.SimulationParams, specs []string) ([]domain.SimulationParams, error) {
	if len(specs) == 0 {
		return plans, nil
	}
	registry := transform.NewTransformRegistry()
	out := append([]domain.SimulationParams(nil), plans...)
	for _, spec := range specs {
		name, transforms, ok := strings.Cut(spec, "=")
		if !ok {
			return nil, fmt.Errorf("invalid --what-if %q, expected <plan>=<transform>", spec)
		}
		base, err := selectPlans(plans, strings.TrimSpace(name))
		if err != nil {
			return nil, err
		}
		ts, err := registry.ParseTransformSpecs(transforms)
		if err != nil {
			return nil, err
		}
		variant, err := transform.Variant(base[0], ts...)
		if err != nil {
			return nil, err
		}
		out = append(out, variant)
	}
	return out, nil
}
