package quota

import "errors"

// Domain errors for quota operations
var (
	// Catalog errors
	ErrPlanNotFound             = errors.New("quota.errors.plan_not_found")
	ErrPlanIDNotInContext       = errors.New("quota.errors.plan_id_not_in_context")
	ErrInvalidPlanConfiguration = errors.New("quota.errors.invalid_plan_configuration")
	ErrFailedToLoadPlans        = errors.New("quota.errors.failed_to_load_plans")

	// Admission errors
	ErrLimitReached        = errors.New("quota.errors.limit_reached")
	ErrUnknownResource     = errors.New("quota.errors.unknown_resource")
	ErrNoCounterRegistered = errors.New("quota.errors.no_counter_registered")
	ErrStoreUnavailable    = errors.New("quota.errors.store_unavailable")

	// Feature errors
	ErrFeatureNotAvailable = errors.New("quota.errors.feature_not_available")

	// Serialization errors
	ErrLockNotAcquired = errors.New("quota.errors.lock_not_acquired")
)
