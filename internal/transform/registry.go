package transform

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/vorsorge/rentenplan/internal/domain"
)

// TransformRegistry provides a central registry for all available transforms.
// It enables creation of transforms from string parameters, useful for CLI commands.
type TransformRegistry struct {
	factories map[string]TransformFactory
}

// TransformFactory is a function that creates a transform from parameters.
type TransformFactory func(params map[string]string) (PlanTransform, error)

// NewTransformRegistry creates a new registry with all built-in transforms registered.
func NewTransformRegistry() *TransformRegistry {
	registry := &TransformRegistry{
		factories: make(map[string]TransformFactory),
	}

	for _, p := range Parameters {
		registry.Register("set_"+string(p), setParameterFactory(p))
	}
	registry.Register("postpone_retirement", createPostponeRetirement)
	registry.Register("set_product", createSetProduct)

	return registry
}

// Register adds a transform factory to the registry.
func (r *TransformRegistry) Register(name string, factory TransformFactory) {
	r.factories[name] = factory
}

// Create creates a transform by name with the given parameters.
func (r *TransformRegistry) Create(name string, params map[string]string) (PlanTransform, error) {
	factory, exists := r.factories[name]
	if !exists {
		return nil, fmt.Errorf("unknown transform: %s (available: %s)", name, strings.Join(r.List(), ", "))
	}

	return factory(params)
}

// List returns the names of all registered transforms, sorted.
func (r *TransformRegistry) List() []string {
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ParseTransformSpec parses a transform specification string.
// Format: "transform_name:param1=value1,param2=value2"
// Example: "set_expected_return:value=0.06"
func (r *TransformRegistry) ParseTransformSpec(spec string) (PlanTransform, error) {
	name, paramsStr, _ := strings.Cut(spec, ":")
	name = strings.TrimSpace(name)
	paramsStr = strings.TrimSpace(paramsStr)
	if name == "" {
		return nil, fmt.Errorf("invalid transform spec format, expected 'name:params', got: %q", spec)
	}

	params := make(map[string]string)
	if paramsStr != "" {
		for _, paramPair := range strings.Split(paramsStr, ",") {
			k, v, ok := strings.Cut(paramPair, "=")
			if !ok {
				return nil, fmt.Errorf("invalid parameter format, expected 'key=value', got: %s", paramPair)
			}
			params[strings.TrimSpace(k)] = strings.TrimSpace(v)
		}
	}

	return r.Create(name, params)
}

// ParseTransformSpecs parses several specs separated by ';'
func (r *TransformRegistry) ParseTransformSpecs(specs string) ([]PlanTransform, error) {
	var out []PlanTransform
	for _, spec := range strings.Split(specs, ";") {
		if strings.TrimSpace(spec) == "" {
			continue
		}
		t, err := r.ParseTransformSpec(spec)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

// Factory functions for each transform

func setParameterFactory(p Parameter) TransformFactory {
	return func(params map[string]string) (PlanTransform, error) {
		valueStr, ok := params["value"]
		if !ok {
			return nil, fmt.Errorf("set_%s requires 'value' parameter", p)
		}
		value, err := decimal.NewFromString(strings.TrimSuffix(valueStr, "%"))
		if err != nil {
			return nil, fmt.Errorf("invalid value: %w", err)
		}
		// "6%" and "0.06" mean the same rate
		if p.IsRate() && strings.HasSuffix(valueStr, "%") {
			value = value.Div(decimal.NewFromInt(100))
		}
		return &SetParameter{Parameter: p, Value: value}, nil
	}
}

func createPostponeRetirement(params map[string]string) (PlanTransform, error) {
	yearsStr, ok := params["years"]
	if !ok {
		return nil, fmt.Errorf("postpone_retirement requires 'years' parameter")
	}

	years, err := strconv.Atoi(yearsStr)
	if err != nil {
		return nil, fmt.Errorf("invalid years value: %w", err)
	}

	return &PostponeRetirement{Years: years}, nil
}

func createSetProduct(params map[string]string) (PlanTransform, error) {
	typ, ok := params["type"]
	if !ok {
		return nil, fmt.Errorf("set_product requires 'type' parameter")
	}

	spec := domain.ProductSpec{Type: domain.ProductType(typ)}
	if v, ok := params["annuity_factor"]; ok {
		f, err := decimal.NewFromString(v)
		if err != nil {
			return nil, fmt.Errorf("invalid annuity_factor value: %w", err)
		}
		spec.AnnuityFactor = f
	}
	if v, ok := params["children"]; ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid children value: %w", err)
		}
		spec.Children = n
	}
	if v, ok := params["employer_subsidy_rate"]; ok {
		r, err := decimal.NewFromString(v)
		if err != nil {
			return nil, fmt.Errorf("invalid employer_subsidy_rate value: %w", err)
		}
		spec.EmployerSubsidyRate = r
	}
	if v, ok := params["lump_sum"]; ok {
		spec.LumpSum = v == "true" || v == "yes" || v == "1"
	}

	return &SetProduct{Product: spec}, nil
}
