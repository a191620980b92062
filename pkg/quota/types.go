package quota

import (
	"encoding/json"
	"fmt"
)

// Resource represents a countable, plan-limited entity type.
type Resource string

// Predefined resource types.
const (
	ResourceRecipes       Resource = "recipes"
	ResourceShoppingLists Resource = "shopping_lists"
	// extend via catalog data + counter registration, no core changes needed
)

// Feature is a string type representing a plan-specific capability flag.
type Feature string

// Predefined feature flags for plans.
const (
	FeatureBasicRecipes       Feature = "basic_recipes"
	FeatureBasicMealPlanning  Feature = "basic_meal_planning"
	FeatureUnlimitedRecipes   Feature = "unlimited_recipes"
	FeatureAIRecommendations  Feature = "ai_recommendations"
	FeatureAdvancedPlanning   Feature = "advanced_meal_planning"
	FeatureNutritionAnalysis  Feature = "nutritional_analysis"
	FeatureRecipeImport       Feature = "recipe_import"
	FeatureFamilySharing      Feature = "family_sharing_4"
	FeatureEverythingInPro    Feature = "everything_in_pro"
	FeatureUnlimitedFamily    Feature = "unlimited_family_members"
	FeatureKidsCookingMode    Feature = "kids_cooking_mode"
	FeatureDietaryManagement  Feature = "dietary_restriction_management"
	FeaturePrioritySupport    Feature = "priority_support"
)

// unlimitedWire is the JSON sentinel for an unlimited cap, kept for API
// compatibility with clients that predate the tagged Limit type.
const unlimitedWire int64 = -1

// Limit is the maximum count of a resource a plan permits, or Unlimited.
// The zero value is a finite cap of zero, which denies every creation.
// Using a tagged value instead of a -1 sentinel keeps unlimited handling
// explicit at every call site.
type Limit struct {
	cap       int64
	unlimited bool
}

// Unlimited is the Limit that never caps a resource.
var Unlimited = Limit{unlimited: true}

// LimitOf returns a finite Limit with the given cap. Panics on negative caps:
// a negative cap is always a catalog construction bug, not runtime input.
func LimitOf(cap int64) Limit {
	if cap < 0 {
		panic(fmt.Sprintf("quota: negative limit cap %d", cap))
	}
	return Limit{cap: cap}
}

// IsUnlimited reports whether the limit never caps the resource.
func (l Limit) IsUnlimited() bool { return l.unlimited }

// Cap returns the finite cap. Meaningless for unlimited limits; callers must
// check IsUnlimited first.
func (l Limit) Cap() int64 { return l.cap }

// Allows reports whether one more resource may be created at the given
// current count.
func (l Limit) Allows(current int64) bool {
	if l.unlimited {
		return true
	}
	return current < l.cap
}

func (l Limit) String() string {
	if l.unlimited {
		return "unlimited"
	}
	return fmt.Sprintf("%d", l.cap)
}

// MarshalJSON encodes finite caps as their number and unlimited as -1.
func (l Limit) MarshalJSON() ([]byte, error) {
	if l.unlimited {
		return json.Marshal(unlimitedWire)
	}
	return json.Marshal(l.cap)
}

// UnmarshalJSON accepts a non-negative cap or the -1 unlimited sentinel.
func (l *Limit) UnmarshalJSON(data []byte) error {
	var n int64
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	switch {
	case n == unlimitedWire:
		*l = Unlimited
	case n < 0:
		return fmt.Errorf("quota: invalid limit %d", n)
	default:
		*l = Limit{cap: n}
	}
	return nil
}

// Severity classifies a resource's usage for advisory display.
type Severity string

const (
	SeverityNormal    Severity = "normal"     // percentage below 80
	SeverityNearLimit Severity = "near_limit" // percentage 80-99
	SeverityAtLimit   Severity = "at_limit"   // current >= limit
)

// Severity thresholds are fixed design constants, not per-plan configuration.
const (
	nearLimitPct = 80
	atLimitPct   = 100
)

// Snapshot is the computed usage state for one resource kind.
// Percentage is nil for unlimited resources; it is clamped to [0,100] for
// display even though Current may transiently exceed the cap.
type Snapshot struct {
	Current    int64    `json:"current"`
	Limit      Limit    `json:"limit"`
	Percentage *int     `json:"percentage,omitempty"`
	Severity   Severity `json:"severity,omitempty"`
}

// AtLimit reports whether no further creations are allowed.
func (s Snapshot) AtLimit() bool {
	return !s.Limit.Allows(s.Current)
}

// UsageReport is the full advisory view for one account: every limited
// resource's snapshot plus the plan's feature set.
type UsageReport struct {
	PlanID   string                `json:"plan"`
	PlanName string                `json:"plan_name,omitempty"`
	Usage    map[Resource]Snapshot `json:"usage"`
	Features []Feature             `json:"features"`
}
