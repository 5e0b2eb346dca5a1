// Package testing provides test fixtures and assertions for replica.
package testing

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/zoobzio/replica"
)

// Greet is the callable member carried by Person.
func Greet(args ...replica.Value) (replica.Value, error) {
	return replica.String("namaste"), nil
}

// Person returns {naam: "Utkarsh", age: 25, greet: <callable>}.
func Person() *replica.Record {
	return replica.NewRecord().
		Set("naam", replica.String("Utkarsh")).
		Set("age", replica.Int(25)).
		Set("greet", replica.FuncOf("greet", Greet))
}

// Nested returns a record exercising every data kind at several depths.
func Nested() *replica.Record {
	address := replica.NewRecord().
		Set("city", replica.String("Pune")).
		Set("zip", replica.String("411001"))
	profile := replica.NewRecord().
		Set("name", replica.String("Utkarsh")).
		Set("address", replica.RecordOf(address))
	scores := replica.NewSequence(
		replica.Int(1),
		replica.Float(2.5),
		replica.RecordOf(replica.NewRecord().Set("x", replica.Int(1))),
		replica.SequenceOf(replica.NewSequence(replica.String("deep"))),
	)
	return replica.NewRecord().
		Set("profile", replica.RecordOf(profile)).
		Set("tags", replica.SequenceOf(replica.NewSequence(replica.String("a"), replica.String("b")))).
		Set("scores", replica.SequenceOf(scores)).
		Set("active", replica.Bool(true)).
		Set("ratio", replica.Float(0.75)).
		Set("nothing", replica.Null())
}

// SelfReferential returns a = {}; a.self = a.
func SelfReferential() *replica.Record {
	a := replica.NewRecord()
	a.Set("self", replica.RecordOf(a))
	return a
}

// SequenceCycle returns {items: s} where s contains itself.
func SequenceCycle() *replica.Record {
	s := replica.NewSequence(replica.Int(1))
	s.Append(replica.SequenceOf(s))
	return replica.NewRecord().Set("items", replica.SequenceOf(s))
}

// Diamond returns {left: shared, right: shared}: shared structure, no cycle.
func Diamond() *replica.Record {
	shared := replica.NewRecord().Set("v", replica.Int(1))
	return replica.NewRecord().
		Set("left", replica.RecordOf(shared)).
		Set("right", replica.RecordOf(shared))
}

// Handle is an opaque payload with no clone support.
type Handle struct {
	Name string
}

// Counter is an opaque payload that clones itself.
type Counter struct {
	N *int
}

// Clone implements replica.Cloner[any].
func (c Counter) Clone() any {
	n := *c.N
	return Counter{N: &n}
}

// AssertEqual fails tb when got is not value-equal to want, reporting a
// structural diff.
func AssertEqual(tb testing.TB, want, got *replica.Record) {
	tb.Helper()
	if replica.Equal(replica.RecordOf(want), replica.RecordOf(got)) {
		return
	}
	tb.Errorf("records differ (-want +got):\n%s", cmp.Diff(want.Interface(), got.Interface()))
	if w, g := want.Keys(), got.Keys(); !cmp.Equal(w, g) {
		tb.Errorf("key order = %v, want %v", g, w)
	}
}
