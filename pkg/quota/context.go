package quota

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// PlanResolver resolves the active plan ID for a given account. Plan
// assignment is owned by the external account/subscription store; this
// package only reads it.
type PlanResolver func(ctx context.Context, accountID uuid.UUID) (string, error)

type planIDCtxKey struct{}

// SetPlanIDToContext stores the plan ID in the context for downstream access.
func SetPlanIDToContext(ctx context.Context, planID string) context.Context {
	return context.WithValue(ctx, planIDCtxKey{}, planID)
}

// GetPlanIDFromContext retrieves the plan ID from the context, if present.
func GetPlanIDFromContext(ctx context.Context) (string, bool) {
	planID, ok := ctx.Value(planIDCtxKey{}).(string)
	return planID, ok
}

// PlanIDContextResolver is the default resolver: gets plan ID from context or
// returns an error. Useful when upstream middleware has already resolved the
// account's subscription.
func PlanIDContextResolver(ctx context.Context, _ uuid.UUID) (string, error) {
	planID, ok := GetPlanIDFromContext(ctx)
	if !ok {
		return "", errors.Join(ErrPlanNotFound, ErrPlanIDNotInContext)
	}
	return planID, nil
}
