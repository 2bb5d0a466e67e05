package output

import (
	json "github.com/goccy/go-json"
	"github.com/vorsorge/rentenplan/internal/domain"
)

// JSONFormatter writes the full result as JSON
type JSONFormatter struct {
	Pretty bool
}

func (j JSONFormatter) Name() string { return "json" }

func (j JSONFormatter) Format(result *domain.SimulationResult) ([]byte, error) {
	if j.Pretty {
		return json.MarshalIndent(result, "", "  ")
	}
	return json.Marshal(result)
}
