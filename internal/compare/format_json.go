package compare

import (
	json "github.com/goccy/go-json"
)

// JSONFormatter formats comparison results as JSON
type JSONFormatter struct {
	Pretty       bool // If true, format with indentation
	IncludeYears bool // If false, the yearly records of each scenario are left out
}

// Format generates JSON output for comparison results
func (jf *JSONFormatter) Format(summary *ComparisonSummary) (string, error) {
	out := summary
	if !jf.IncludeYears {
		out = withoutYears(summary)
	}

	var data []byte
	var err error

	if jf.Pretty {
		data, err = json.MarshalIndent(out, "", "  ")
	} else {
		data, err = json.Marshal(out)
	}

	if err != nil {
		return "", err
	}

	return string(data), nil
}

// withoutYears returns a shallow copy whose scenario results carry no yearly records
func withoutYears(summary *ComparisonSummary) *ComparisonSummary {
	cp := *summary
	cp.Scenarios = make([]ScenarioResult, len(summary.Scenarios))
	for i, s := range summary.Scenarios {
		cp.Scenarios[i] = s
		if s.Result != nil {
			res := *s.Result
			res.Years = nil
			cp.Scenarios[i].Result = &res
		}
	}
	return &cp
}
