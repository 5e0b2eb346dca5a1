package replica

import (
	"context"
	"reflect"
	"sync"
)

var (
	registry   = make(map[reflect.Type]*structPlan)
	registryMu sync.RWMutex
)

// planFor returns a cached struct plan or builds a new one.
func planFor(rt reflect.Type) (*structPlan, error) {
	// Fast path: read-lock cache check
	registryMu.RLock()
	if cached, ok := registry[rt]; ok {
		registryMu.RUnlock()
		return cached, nil
	}
	registryMu.RUnlock()

	// Slow path: build and cache with write-lock
	registryMu.Lock()
	defer registryMu.Unlock()

	// Double-check pattern
	if cached, ok := registry[rt]; ok {
		return cached, nil
	}

	plan, err := buildStructPlan(rt)
	if err != nil {
		return nil, err
	}

	registry[rt] = plan
	emitStructScanned(context.Background(), plan.typeName, len(plan.fields))
	return plan, nil
}

// Reset clears the struct plan registry.
// This is primarily useful for test isolation.
func Reset() {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry = make(map[reflect.Type]*structPlan)
}
