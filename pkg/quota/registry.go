package quota

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// CounterFunc returns the current usage for an account's resource. It must
// re-read the authoritative store on every call (no caching) and honor the
// context deadline; a timeout is treated as store unavailability.
type CounterFunc func(ctx context.Context, accountID uuid.UUID) (int64, error)

// CounterRegistry maps a Resource to its CounterFunc.
// Not thread-safe: register all counters at startup only.
type CounterRegistry map[Resource]CounterFunc

// NewRegistry returns a new, empty CounterRegistry.
func NewRegistry() CounterRegistry {
	return make(CounterRegistry)
}

// Register sets or replaces the CounterFunc for the given resource. Panics if fn is nil.
func (r CounterRegistry) Register(res Resource, fn CounterFunc) {
	if fn == nil {
		panic(fmt.Sprintf("quota: CounterFunc for resource %q cannot be nil", res))
	}
	r[res] = fn
}
