// Package replica produces structurally independent copies of ordered records.
//
// A Record is an ordered mapping from string keys to Values. A Value is a
// tagged variant: null, bool, int, float, string, a nested Record, a
// Sequence, a callable Func, or an opaque host value. DeepClone copies a
// record so that no nested record or sequence is shared with the source.
//
// # Basic Usage
//
//	person := replica.NewRecord().
//	    Set("naam", replica.String("Utkarsh")).
//	    Set("age", replica.Int(25)).
//	    Set("greet", replica.FuncOf("greet", greet))
//
//	clone, err := replica.DeepClone(person, replica.WithExclude("greet"))
//	// clone holds naam and age, in that order
//
// # Aliasing
//
// ShallowAlias returns the record itself. Writes through the alias are
// visible on the source; writes to a DeepClone result never are:
//
//	alias := replica.ShallowAlias(person)
//	alias.Set("naam", replica.String("Modified")) // person changes too
//
// # Cycles
//
// A record or sequence that contains itself cannot be deep-copied:
//
//	a := replica.NewRecord()
//	a.Set("self", replica.RecordOf(a))
//	_, err := replica.DeepClone(a) // errors.Is(err, replica.ErrCyclicStructure)
//
// Detection follows identity, not value: the same record reached twice on
// separate branches is not a cycle and is copied twice.
//
// # Options
//
//   - WithExclude: drop top-level keys
//   - WithRedact: replace top-level values with a fixed string
//   - WithoutFuncs: drop callables at every depth
//   - WithOpaque: share, reject or drop opaque host values
//   - WithMaxDepth: bound nesting
//
// # Structs
//
// FromStruct reads a Go struct into a record in field order, honoring the
// record tag:
//
//	type User struct {
//	    Name  string `record:"naam"`
//	    Token string `record:"-"`
//	}
//
// # Codec Providers
//
// The following order-preserving codecs are available as sub-packages:
//
//   - json - JSON encoding (application/json)
//   - yaml - YAML encoding (application/yaml)
//   - msgpack - MessagePack encoding (application/msgpack)
//   - bson - BSON encoding (application/bson)
//
// # Events
//
// Clone, struct scan and codec operations emit capitan signals
// (SignalCloneStart, SignalCloneComplete, SignalStructScanned,
// SignalEncode, SignalDecode).
package replica
