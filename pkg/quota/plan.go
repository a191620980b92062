package quota

// Plan describes a subscription tier and its resource/feature constraints.
type Plan struct {
	ID          string
	Name        string
	Description string
	Limits      map[Resource]Limit
	Features    []Feature
	Public      bool // available for self-service signup
}

// DefaultPlans returns the built-in plan table: the free tier caps recipes
// and shopping lists, paid tiers are unlimited. Deployments override this
// via a YAML source.
func DefaultPlans() map[string]Plan {
	return map[string]Plan{
		"free": {
			ID:   "free",
			Name: "Free",
			Limits: map[Resource]Limit{
				ResourceRecipes:       LimitOf(50),
				ResourceShoppingLists: LimitOf(5),
			},
			Features: []Feature{
				FeatureBasicRecipes,
				FeatureBasicMealPlanning,
			},
			Public: true,
		},
		"pro": {
			ID:   "pro",
			Name: "Pro",
			Limits: map[Resource]Limit{
				ResourceRecipes:       Unlimited,
				ResourceShoppingLists: Unlimited,
			},
			Features: []Feature{
				FeatureUnlimitedRecipes,
				FeatureAIRecommendations,
				FeatureAdvancedPlanning,
				FeatureNutritionAnalysis,
				FeatureRecipeImport,
				FeatureFamilySharing,
			},
			Public: true,
		},
		"family": {
			ID:   "family",
			Name: "Family",
			Limits: map[Resource]Limit{
				ResourceRecipes:       Unlimited,
				ResourceShoppingLists: Unlimited,
			},
			Features: []Feature{
				FeatureEverythingInPro,
				FeatureUnlimitedFamily,
				FeatureKidsCookingMode,
				FeatureDietaryManagement,
				FeaturePrioritySupport,
			},
			Public: true,
		},
	}
}
