package quota

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// Serializer runs fn while holding mutual exclusion for key. It closes the
// check-then-act window between reading a count and creating the resource:
// for stores without an atomic conditional insert, wrapping the admission
// check and the write in Do is the authoritative enforcement point.
type Serializer interface {
	Do(ctx context.Context, key string, fn func(ctx context.Context) error) error
}

// SerializedKey is the canonical lock key for one account/resource pair.
func SerializedKey(accountID uuid.UUID, res Resource) string {
	return "quota:" + accountID.String() + ":" + string(res)
}

// GuardedCreate is the enforcement path for stores without an atomic
// conditional insert: it serializes the admission check and the write per
// (account, resource), making the check-then-act sequence authoritative.
// create runs only when the gate allows; a denial is returned as the
// decision's error.
func GuardedCreate(ctx context.Context, svc Service, ser Serializer, accountID uuid.UUID, res Resource, create func(ctx context.Context) error) error {
	return ser.Do(ctx, SerializedKey(accountID, res), func(ctx context.Context) error {
		if d := svc.CanCreate(ctx, accountID, res); !d.Allowed {
			return d.Err()
		}
		return create(ctx)
	})
}

// KeyedMutex is an in-process Serializer: one mutex per key, evicted when the
// last waiter releases it. Suitable for single-instance deployments; use
// RedisLock when several instances write the same store.
type KeyedMutex struct {
	mu    sync.Mutex
	locks map[string]*keyLock
}

type keyLock struct {
	ch      chan struct{} // buffered size 1, token = lock held
	waiters int
}

// NewKeyedMutex returns an empty KeyedMutex.
func NewKeyedMutex() *KeyedMutex {
	return &KeyedMutex{locks: make(map[string]*keyLock)}
}

func (m *KeyedMutex) Do(ctx context.Context, key string, fn func(ctx context.Context) error) error {
	l := m.acquireRef(key)
	defer m.releaseRef(key, l)

	select {
	case l.ch <- struct{}{}:
	case <-ctx.Done():
		return ctx.Err()
	}
	defer func() { <-l.ch }()

	return fn(ctx)
}

func (m *KeyedMutex) acquireRef(key string) *keyLock {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.locks[key]
	if !ok {
		l = &keyLock{ch: make(chan struct{}, 1)}
		m.locks[key] = l
	}
	l.waiters++
	return l
}

func (m *KeyedMutex) releaseRef(key string, l *keyLock) {
	m.mu.Lock()
	defer m.mu.Unlock()
	l.waiters--
	if l.waiters == 0 {
		delete(m.locks, key)
	}
}
