package quota

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
)

// Reason identifies why an admission decision denied.
type Reason string

const (
	ReasonLimitReached       Reason = "limit_reached"
	ReasonServiceUnavailable Reason = "service_unavailable"
	ReasonConfigurationError Reason = "configuration_error"
	ReasonFeatureMissing     Reason = "feature_missing"
)

// Decision is the explicit result of an admission or feature check. Callers
// branch on Reason to render the appropriate response; denials are never
// raised as panics and never silently converted to allows.
type Decision struct {
	Allowed  bool
	Reason   Reason // empty when Allowed
	Resource Resource
	Feature  Feature
	Limit    Limit // the resolved plan limit for resource checks
	Current  int64 // count at decision time; negative means unknown
	err      error
}

// Err returns the denial as a sentinel-wrapped error, or nil when allowed.
func (d Decision) Err() error {
	if d.Allowed {
		return nil
	}
	var sentinel error
	switch d.Reason {
	case ReasonLimitReached:
		sentinel = ErrLimitReached
	case ReasonServiceUnavailable:
		sentinel = ErrStoreUnavailable
	case ReasonFeatureMissing:
		sentinel = ErrFeatureNotAvailable
	default:
		sentinel = ErrInvalidPlanConfiguration
	}
	if d.err != nil {
		return errors.Join(sentinel, d.err)
	}
	return sentinel
}

func allow() Decision {
	return Decision{Allowed: true}
}

func deny(reason Reason, err error) Decision {
	return Decision{Reason: reason, err: err}
}

// Service is the authoritative quota and feature gate. Decisions are a pure
// function of (plan limit, current count): the service holds no mutable state
// beyond the immutable catalog and never caches counts across requests.
type Service interface {
	// CanCreate decides whether the account may create one more resource of
	// the given kind. Fail-closed: any dependency failure denies. The
	// decision carries the resolved Limit either way, so callers performing
	// a conditional write need no second plan lookup.
	CanCreate(ctx context.Context, accountID uuid.UUID, res Resource) Decision

	// LimitFor returns the account's plan limit for the resource, for stores
	// that enforce the cap atomically at write time.
	LimitFor(ctx context.Context, accountID uuid.UUID, res Resource) (Limit, error)

	// Report computes the full advisory usage report for the account. It runs
	// the same evaluator as CanCreate, so advisory and authoritative views can
	// only differ by staleness, never by classification.
	Report(ctx context.Context, accountID uuid.UUID) (UsageReport, error)

	// HasFeature reports whether the account's plan grants the feature.
	HasFeature(ctx context.Context, accountID uuid.UUID, f Feature) bool

	// CheckFeature is HasFeature with a full Decision for error rendering.
	CheckFeature(ctx context.Context, accountID uuid.UUID, f Feature) Decision
}

type service struct {
	catalog  *Catalog
	counters CounterRegistry
	resolver PlanResolver
	log      *slog.Logger
}

// NewService builds a quota Service from a catalog, counter registry and plan
// resolver. A nil resolver falls back to context-based resolution; a nil
// logger falls back to slog.Default.
func NewService(catalog *Catalog, counters CounterRegistry, resolver PlanResolver, log *slog.Logger) Service {
	if catalog == nil {
		panic("quota: nil catalog")
	}
	if counters == nil {
		counters = NewRegistry()
	}
	if resolver == nil {
		resolver = PlanIDContextResolver
	}
	if log == nil {
		log = slog.Default()
	}
	return &service{
		catalog:  catalog,
		counters: counters,
		resolver: resolver,
		log:      log,
	}
}

// plan resolves the account's plan, classifying failures: resolver errors are
// transient store problems, unknown plan IDs are data-integrity anomalies.
func (s *service) plan(ctx context.Context, accountID uuid.UUID) (Plan, Decision) {
	planID, err := s.resolver(ctx, accountID)
	if err != nil {
		s.log.ErrorContext(ctx, "plan resolution failed",
			slog.String("account_id", accountID.String()),
			slog.Any("error", err))
		return Plan{}, deny(ReasonServiceUnavailable, err)
	}

	plan, err := s.catalog.Plan(planID)
	if err != nil {
		// An account assigned to a plan missing from the catalog is an
		// operational anomaly, not a user error.
		s.log.ErrorContext(ctx, "account has unknown plan",
			slog.String("account_id", accountID.String()),
			slog.String("plan_id", planID),
			slog.Any("error", err))
		return Plan{}, deny(ReasonConfigurationError, err)
	}
	return plan, allow()
}

func (s *service) CanCreate(ctx context.Context, accountID uuid.UUID, res Resource) Decision {
	plan, d := s.plan(ctx, accountID)
	if !d.Allowed {
		d.Resource = res
		return d
	}

	limit, ok := plan.Limits[res]
	if !ok {
		s.log.ErrorContext(ctx, "resource not in plan limits",
			slog.String("plan_id", plan.ID),
			slog.String("resource", string(res)))
		d = deny(ReasonConfigurationError, fmt.Errorf("%w: %q", ErrUnknownResource, res))
		d.Resource = res
		return d
	}

	// Unlimited resources never count and never deny.
	if limit.IsUnlimited() {
		return Decision{Allowed: true, Resource: res, Limit: limit}
	}

	counter, ok := s.counters[res]
	if !ok {
		d = deny(ReasonConfigurationError, fmt.Errorf("%w: %q", ErrNoCounterRegistered, res))
		d.Resource = res
		return d
	}

	current, err := counter(ctx, accountID)
	if err != nil {
		// Fail-closed: an unverifiable count must deny, or an outage would
		// permit unbounded creation.
		s.log.ErrorContext(ctx, "resource count unavailable",
			slog.String("account_id", accountID.String()),
			slog.String("resource", string(res)),
			slog.Any("error", err))
		d = deny(ReasonServiceUnavailable, errors.Join(ErrStoreUnavailable, err))
		d.Resource = res
		return d
	}

	if !limit.Allows(current) {
		return Decision{
			Reason:   ReasonLimitReached,
			Resource: res,
			Limit:    limit,
			Current:  current,
		}
	}
	return Decision{Allowed: true, Resource: res, Limit: limit, Current: current}
}

func (s *service) LimitFor(ctx context.Context, accountID uuid.UUID, res Resource) (Limit, error) {
	plan, d := s.plan(ctx, accountID)
	if !d.Allowed {
		return Limit{}, d.Err()
	}
	limit, ok := plan.Limits[res]
	if !ok {
		return Limit{}, fmt.Errorf("%w: %q", ErrUnknownResource, res)
	}
	return limit, nil
}

func (s *service) Report(ctx context.Context, accountID uuid.UUID) (UsageReport, error) {
	plan, d := s.plan(ctx, accountID)
	if !d.Allowed {
		return UsageReport{}, d.Err()
	}

	// Unlimited resources are counted too: the report shows real usage for
	// every resource, the limit only decides whether a percentage applies.
	counts := make(map[Resource]int64, len(plan.Limits))
	for res := range plan.Limits {
		counter, ok := s.counters[res]
		if !ok {
			return UsageReport{}, fmt.Errorf("%w: %q", ErrNoCounterRegistered, res)
		}
		current, err := counter(ctx, accountID)
		if err != nil {
			return UsageReport{}, errors.Join(ErrStoreUnavailable, err)
		}
		counts[res] = current
	}

	return Evaluate(plan, counts), nil
}

func (s *service) HasFeature(ctx context.Context, accountID uuid.UUID, f Feature) bool {
	return s.CheckFeature(ctx, accountID, f).Allowed
}

func (s *service) CheckFeature(ctx context.Context, accountID uuid.UUID, f Feature) Decision {
	plan, d := s.plan(ctx, accountID)
	if !d.Allowed {
		d.Feature = f
		return d
	}
	if !s.catalog.HasFeature(plan.ID, f) {
		d = deny(ReasonFeatureMissing, fmt.Errorf("%w: %q", ErrFeatureNotAvailable, f))
		d.Feature = f
		return d
	}
	return allow()
}
