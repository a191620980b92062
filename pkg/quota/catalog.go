package quota

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
)

// Source defines how plans are loaded into the catalog.
type Source interface {
	Load(ctx context.Context) (map[string]Plan, error)
}

// Catalog is the static plan table. It is immutable after construction and
// safe for unsynchronized concurrent reads.
type Catalog struct {
	plans map[string]Plan
}

// NewCatalog loads and validates plans from the given source.
func NewCatalog(ctx context.Context, src Source) (*Catalog, error) {
	plans, err := src.Load(ctx)
	if err != nil {
		return nil, errors.Join(ErrFailedToLoadPlans, err)
	}
	if plans == nil {
		plans = make(map[string]Plan)
	}
	if err := validatePlans(plans); err != nil {
		return nil, err
	}
	return &Catalog{plans: plans}, nil
}

// Plan returns the plan for the given ID. An unknown ID is a data-integrity
// problem: accounts are only ever assigned plans that exist in the catalog.
func (c *Catalog) Plan(id string) (Plan, error) {
	plan, ok := c.plans[id]
	if !ok {
		return Plan{}, fmt.Errorf("%w: %q", ErrPlanNotFound, id)
	}
	return plan, nil
}

// LimitsFor returns a copy of the plan's resource limits.
func (c *Catalog) LimitsFor(id string) (map[Resource]Limit, error) {
	plan, err := c.Plan(id)
	if err != nil {
		return nil, err
	}
	return maps.Clone(plan.Limits), nil
}

// FeaturesFor returns a copy of the plan's feature set.
func (c *Catalog) FeaturesFor(id string) ([]Feature, error) {
	plan, err := c.Plan(id)
	if err != nil {
		return nil, err
	}
	return slices.Clone(plan.Features), nil
}

// HasFeature reports whether the plan grants the feature. Unknown plans
// grant nothing.
func (c *Catalog) HasFeature(id string, f Feature) bool {
	plan, ok := c.plans[id]
	if !ok {
		return false
	}
	return slices.Contains(plan.Features, f)
}

// PlanIDs returns all catalog plan IDs in sorted order.
func (c *Catalog) PlanIDs() []string {
	ids := make([]string, 0, len(c.plans))
	for id := range c.plans {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// validatePlans checks plan configurations for internal consistency.
func validatePlans(plans map[string]Plan) error {
	for id, plan := range plans {
		if id == "" {
			return errors.Join(ErrInvalidPlanConfiguration,
				errors.New("plan with empty ID"))
		}
		if plan.ID != "" && plan.ID != id {
			return errors.Join(ErrInvalidPlanConfiguration,
				fmt.Errorf("plan key %q does not match plan ID %q", id, plan.ID))
		}
	}
	return nil
}
