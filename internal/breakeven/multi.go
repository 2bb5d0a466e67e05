package breakeven

import (
	"context"
	"errors"
	"fmt"

	"github.com/vorsorge/rentenplan/internal/transform"
	"golang.org/x/sync/errgroup"
)

// SolveAll runs the same goal once per target parameter. Targets whose range
// does not contain a break-even point are listed in Failed instead of aborting the run.
func (s *Solver) SolveAll(ctx context.Context, req Request, targets []transform.Parameter) (*MultiResult, error) {
	if len(targets) == 0 {
		targets = transform.Parameters
	}

	results := make([]*Result, len(targets))
	failures := make([]string, len(targets))

	g, gctx := errgroup.WithContext(ctx)
	if s.Options.Parallelism > 0 {
		g.SetLimit(s.Options.Parallelism)
	}
	for i, target := range targets {
		r := req
		r.Target = target
		r.Min, r.Max = nil, nil
		g.Go(func() error {
			res, err := s.Solve(gctx, r)
			if err != nil {
				var berr *BreakEvenError
				if errors.As(err, &berr) {
					failures[i] = fmt.Sprintf("%s: %v", target, err)
					return nil
				}
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	multi := &MultiResult{}
	for i := range targets {
		if results[i] != nil {
			multi.Results = append(multi.Results, *results[i])
		}
		if failures[i] != "" {
			multi.Failed = append(multi.Failed, failures[i])
		}
	}
	if len(multi.Results) == 0 {
		return nil, &BreakEvenError{
			Operation: "solve_all",
			Message:   "no parameter reaches the goal within its default range",
		}
	}
	multi.Recommendations = recommendations(multi.Results)
	return multi, nil
}

// recommendations describes each successful search as a change from the plan's own value
func recommendations(results []Result) []string {
	var out []string
	for _, r := range results {
		if !r.Success {
			continue
		}
		if r.Value.Equal(r.BaseValue) {
			out = append(out, fmt.Sprintf("%s: the current value %s already meets the goal",
				r.Target, r.Target.FormatValue(r.BaseValue)))
			continue
		}
		direction := "raise"
		if r.Value.LessThan(r.BaseValue) {
			direction = "lower"
		}
		out = append(out, fmt.Sprintf("%s: %s from %s to %s",
			r.Target, direction, r.Target.FormatValue(r.BaseValue), r.Target.FormatValue(r.Value)))
	}
	return out
}
