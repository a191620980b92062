// Package quota provides plan-tiered resource limits and feature gating for
// the meal-planning backend. Accounts belong to a subscription plan (free,
// pro, family); each plan caps countable resources (recipes, shopping lists)
// and grants a set of features (AI recommendations, nutritional analysis).
//
// The package has three roles:
//
//   - Catalog: the static plan table, loaded once at startup from memory or
//     YAML and read-only thereafter.
//   - Evaluate: a pure function turning (plan, counts) into per-resource
//     usage snapshots with percentage and severity, for advisory UI.
//   - Service: the admission and feature gate invoked before every
//     resource-creating mutation. It is fail-closed: if the count cannot be
//     verified the creation is denied, never allowed.
//
// The advisory report and the admission gate share the same evaluation
// logic, so a client-displayed warning and a server-side denial can never
// disagree about classification, only about staleness.
//
// Enforcement points. The gate's read-then-decide is inherently racy under
// concurrent creations. Two disciplines close the race:
//
//   - Store-level (preferred): the resource store performs the insert
//     conditionally on the count, in one atomic operation (see the recipe
//     and shoppinglist modules' CreateUnderLimit). The gate then acts as a
//     friendly pre-check and the store is authoritative.
//   - Serializer: when the store has no conditional insert, wrap the
//     CanCreate call and the write in Serializer.Do keyed by
//     SerializedKey(accountID, resource). KeyedMutex serves a single
//     instance, RedisLock serves many.
//
// Relying on the unserialized pre-check alone is a correctness bug.
//
// Basic usage:
//
//	catalog, err := quota.NewCatalog(ctx, quota.NewInMemSource(quota.DefaultPlans()))
//	counters := quota.NewRegistry()
//	counters.Register(quota.ResourceRecipes, recipeStore.CountByAccount)
//
//	svc := quota.NewService(catalog, counters, resolver, logger)
//
//	if d := svc.CanCreate(ctx, accountID, quota.ResourceRecipes); !d.Allowed {
//		// render d.Reason / d.Limit to the caller
//	}
package quota
