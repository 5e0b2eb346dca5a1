package replica

import (
	"fmt"
	"math"
	"reflect"
)

// Equal reports whether a and b are value-equal: same kinds, equal scalars,
// records with the same keys in the same order and pairwise equal values,
// sequences with pairwise equal elements. Funcs are equal when they share a
// name and body; opaque values when their payloads compare equal. Unlike
// IEEE comparison, NaN floats are equal to each other, so a record holding
// NaN is equal to its clone.
//
// Equal terminates on cyclic input: a pair of containers already under
// comparison is assumed equal.
func Equal(a, b Value) bool {
	e := equaler{seen: make(map[[2]any]struct{})}
	return e.equal(a, b)
}

type equaler struct {
	seen map[[2]any]struct{}
}

func (e *equaler) equal(a, b Value) bool {
	if a.kind != b.kind {
		return false
	}
	switch a.kind {
	case KindNull:
		return true
	case KindFloat:
		fa, _ := a.AsFloat()
		fb, _ := b.AsFloat()
		return fa == fb || (math.IsNaN(fa) && math.IsNaN(fb))
	case KindBool, KindInt, KindString:
		return a.data == b.data
	case KindRecord:
		ra, _ := a.AsRecord()
		rb, _ := b.AsRecord()
		return e.records(ra, rb)
	case KindSequence:
		sa, _ := a.AsSequence()
		sb, _ := b.AsSequence()
		return e.sequences(sa, sb)
	case KindFunc:
		fa, _ := a.AsFunc()
		fb, _ := b.AsFunc()
		if fa == fb {
			return true
		}
		return fa.Name == fb.Name && sameFunc(fa.Call, fb.Call)
	case KindOpaque:
		return opaqueEqual(a.data, b.data)
	}
	return false
}

func (e *equaler) records(a, b *Record) bool {
	if a == b {
		return true
	}
	if a.Len() != b.Len() {
		return false
	}
	pair := [2]any{a, b}
	if _, ok := e.seen[pair]; ok {
		return true
	}
	e.seen[pair] = struct{}{}
	for i, k := range a.keys {
		if b.keys[i] != k {
			return false
		}
		if !e.equal(a.entries[k], b.entries[k]) {
			return false
		}
	}
	return true
}

func (e *equaler) sequences(a, b *Sequence) bool {
	if a == b {
		return true
	}
	if a.Len() != b.Len() {
		return false
	}
	pair := [2]any{a, b}
	if _, ok := e.seen[pair]; ok {
		return true
	}
	e.seen[pair] = struct{}{}
	for i := range a.elems {
		if !e.equal(a.elems[i], b.elems[i]) {
			return false
		}
	}
	return true
}

// sameFunc compares func bodies by code pointer. Closures over different
// variables that share code compare equal.
func sameFunc(a, b func(args ...Value) (Value, error)) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return reflect.ValueOf(a).Pointer() == reflect.ValueOf(b).Pointer()
}

func opaqueEqual(a, b any) bool {
	ta, tb := reflect.TypeOf(a), reflect.TypeOf(b)
	if ta != tb {
		return false
	}
	if ta.Comparable() {
		return a == b
	}
	return reflect.DeepEqual(a, b)
}

func typeName(x any) string {
	return fmt.Sprintf("%T", x)
}
