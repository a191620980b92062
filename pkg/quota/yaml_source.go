package quota

import (
	"context"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// yamlPlan is the on-disk plan shape. Limits use -1 or the string
// "unlimited" for uncapped resources.
type yamlPlan struct {
	Name        string               `yaml:"name"`
	Description string               `yaml:"description"`
	Limits      map[string]yamlLimit `yaml:"limits"`
	Features    []string             `yaml:"features"`
	Public      bool                 `yaml:"public"`
}

type yamlLimit struct {
	limit Limit
}

func (l *yamlLimit) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err == nil && s == "unlimited" {
		l.limit = Unlimited
		return nil
	}

	var n int64
	if err := node.Decode(&n); err != nil {
		return fmt.Errorf("limit must be a non-negative integer, -1 or %q: %w", "unlimited", err)
	}
	switch {
	case n == unlimitedWire:
		l.limit = Unlimited
	case n < 0:
		return fmt.Errorf("invalid limit %d", n)
	default:
		l.limit = LimitOf(n)
	}
	return nil
}

// fileSource loads the plan table from a YAML file on each Load call, so a
// config reload can pick up catalog changes at restart.
type fileSource struct {
	path string
}

// NewYAMLSource returns a Source reading plans from the YAML file at path.
func NewYAMLSource(path string) Source {
	return &fileSource{path: path}
}

func (s *fileSource) Load(ctx context.Context) (map[string]Plan, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, err
	}
	return ParseYAML(data)
}

// ParseYAML decodes a plan table from YAML. Document shape:
//
//	free:
//	  name: Free
//	  limits:
//	    recipes: 50
//	    shopping_lists: 5
//	  features: [basic_recipes]
//	pro:
//	  name: Pro
//	  limits:
//	    recipes: unlimited
//	    shopping_lists: -1
func ParseYAML(data []byte) (map[string]Plan, error) {
	var raw map[string]yamlPlan
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, errors.Join(ErrInvalidPlanConfiguration, err)
	}

	plans := make(map[string]Plan, len(raw))
	for id, yp := range raw {
		plan := Plan{
			ID:          id,
			Name:        yp.Name,
			Description: yp.Description,
			Limits:      make(map[Resource]Limit, len(yp.Limits)),
			Features:    make([]Feature, 0, len(yp.Features)),
			Public:      yp.Public,
		}
		for res, yl := range yp.Limits {
			plan.Limits[Resource(res)] = yl.limit
		}
		for _, f := range yp.Features {
			plan.Features = append(plan.Features, Feature(f))
		}
		plans[id] = plan
	}
	return plans, nil
}
