package compare

import (
	"context"
	"fmt"

	"github.com/vorsorge/rentenplan/internal/calculation"
	"github.com/vorsorge/rentenplan/internal/domain"
	"golang.org/x/sync/errgroup"
)

// CompareEngine orchestrates plan comparison
type CompareEngine struct {
	CalcEngine        *calculation.CalculationEngine
	MetricsCalculator *MetricsCalculator
}

// NewCompareEngine creates a new comparison engine
func NewCompareEngine(calcEngine *calculation.CalculationEngine) *CompareEngine {
	if calcEngine == nil {
		calcEngine = calculation.NewCalculationEngine()
	}
	return &CompareEngine{
		CalcEngine:        calcEngine,
		MetricsCalculator: NewMetricsCalculator(),
	}
}

// CompareOptions configures comparison behavior
type CompareOptions struct {
	BaseScenarioName string // Plan to compare against; the first plan when empty
	Milestones       []int  // Ages to align on; union of the plans' milestones when empty
	Parallelism      int    // Maximum concurrent simulations; unlimited when <= 0
}

// Compare simulates every plan independently and aligns the results by age.
// Plans run concurrently; results keep the input order.
func (ce *CompareEngine) Compare(ctx context.Context, plans []domain.SimulationParams, options CompareOptions) (*ComparisonSummary, error) {
	if len(plans) == 0 {
		return nil, domain.NewValidationError("plans", "at least one plan is required")
	}

	names := scenarioNames(plans)
	baseIndex := 0
	if options.BaseScenarioName != "" {
		baseIndex = -1
		for i, name := range names {
			if name == options.BaseScenarioName {
				baseIndex = i
				break
			}
		}
		if baseIndex < 0 {
			return nil, fmt.Errorf("base scenario %s not found in plans", options.BaseScenarioName)
		}
	}

	results := make([]ScenarioResult, len(plans))
	g, gctx := errgroup.WithContext(ctx)
	if options.Parallelism > 0 {
		g.SetLimit(options.Parallelism)
	}
	for i := range plans {
		params := plans[i]
		params.Name = names[i]
		g.Go(func() error {
			res, err := ce.CalcEngine.Simulate(gctx, params)
			if err != nil {
				return fmt.Errorf("failed to calculate scenario %s: %w", params.Name, err)
			}
			results[i] = ScenarioResult{Name: params.Name, ProductType: res.ProductType, Result: res}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	milestones := options.Milestones
	if len(milestones) == 0 {
		milestones = unionMilestones(results)
	} else {
		milestones = calculation.MilestoneAges(domain.SimulationParams{MilestoneAges: milestones})
	}

	summary := &ComparisonSummary{
		BaseScenarioName: names[baseIndex],
		Milestones:       milestones,
		Scenarios:        results,
		ByMilestone:      make(map[int][]ComparisonResult, len(milestones)),
		BestByMilestone:  make(map[int]string, len(milestones)),
	}

	for _, age := range milestones {
		base := ce.MetricsCalculator.CalculateMetrics(results[baseIndex], age)
		rows := make([]ComparisonResult, 0, len(results))
		for _, r := range results {
			row := ce.MetricsCalculator.CalculateMetrics(r, age)
			rows = append(rows, ce.MetricsCalculator.CalculateComparison(row, base))
		}
		summary.ByMilestone[age] = rows
		if best := bestByNetWealth(rows); best != nil {
			summary.BestByMilestone[age] = best.ScenarioName
		}
	}

	// Generate recommendations
	summary.Recommendations = GenerateRecommendations(summary)

	return summary, nil
}

// scenarioNames fills empty plan names from the product and makes duplicates unique
func scenarioNames(plans []domain.SimulationParams) []string {
	names := make([]string, len(plans))
	used := map[string]int{}
	for i, p := range plans {
		name := p.Name
		if name == "" {
			productType := p.Product.Type
			if productType == "" {
				productType = domain.ProductFund
			}
			name = productType.DisplayName()
		}
		used[name]++
		if used[name] > 1 {
			name = fmt.Sprintf("%s (%d)", name, used[name])
		}
		names[i] = name
	}
	return names
}
