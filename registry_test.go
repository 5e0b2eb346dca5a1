package replica

import (
	"reflect"
	"sync"
	"testing"
)

type cacheTestUser struct {
	Name string `record:"name"`
}

func TestPlanFor_Caching(t *testing.T) {
	Reset()

	rt := reflect.TypeFor[cacheTestUser]()
	p1, err := planFor(rt)
	if err != nil {
		t.Fatalf("planFor() error: %v", err)
	}
	p2, err := planFor(rt)
	if err != nil {
		t.Fatalf("planFor() error: %v", err)
	}
	if p1 != p2 {
		t.Error("planFor() should return cached plan")
	}
	if len(p1.fields) != 1 || p1.fields[0].key != "name" {
		t.Errorf("plan fields = %+v, want single name field", p1.fields)
	}
}

func TestPlanFor_Concurrent(t *testing.T) {
	Reset()

	rt := reflect.TypeFor[cacheTestUser]()
	plans := make([]*structPlan, 8)
	var wg sync.WaitGroup
	for i := range plans {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			plans[i], _ = planFor(rt)
		}(i)
	}
	wg.Wait()

	for i, p := range plans {
		if p != plans[0] {
			t.Errorf("plan %d differs from plan 0", i)
		}
	}
}

func TestReset(t *testing.T) {
	rt := reflect.TypeFor[cacheTestUser]()
	p1, _ := planFor(rt)

	Reset()

	p2, _ := planFor(rt)
	if p1 == p2 {
		t.Error("Reset() should clear cache, new plan expected")
	}
}
