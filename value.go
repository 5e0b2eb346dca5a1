package replica

import (
	"fmt"
	"reflect"
)

// Kind identifies the variant held by a Value.
type Kind uint8

const (
	// KindNull is the absent value.
	KindNull Kind = iota
	// KindBool holds a bool.
	KindBool
	// KindInt holds an int64.
	KindInt
	// KindFloat holds a float64.
	KindFloat
	// KindString holds a string.
	KindString
	// KindRecord holds a *Record.
	KindRecord
	// KindSequence holds a *Sequence.
	KindSequence
	// KindFunc holds a callable member.
	KindFunc
	// KindOpaque holds a host value the cloner cannot look inside.
	KindOpaque
)

var kindNames = [...]string{
	KindNull:     "null",
	KindBool:     "bool",
	KindInt:      "int",
	KindFloat:    "float",
	KindString:   "string",
	KindRecord:   "record",
	KindSequence: "sequence",
	KindFunc:     "func",
	KindOpaque:   "opaque",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", k)
}

// IsScalar reports whether values of this kind are copied by value.
func (k Kind) IsScalar() bool {
	return k <= KindString
}

// Value is a tagged variant over the kinds a Record may hold.
// The zero Value is null.
type Value struct {
	kind Kind
	data any
}

// Func is a callable member of a Record.
type Func struct {
	Name string
	Call func(args ...Value) (Value, error)
}

// Invoke calls the function. A Func without a body returns null.
func (f *Func) Invoke(args ...Value) (Value, error) {
	if f == nil || f.Call == nil {
		return Null(), nil
	}
	return f.Call(args...)
}

// Null returns the null value.
func Null() Value { return Value{} }

// Bool wraps b.
func Bool(b bool) Value { return Value{kind: KindBool, data: b} }

// Int wraps i.
func Int(i int64) Value { return Value{kind: KindInt, data: i} }

// Float wraps f.
func Float(f float64) Value { return Value{kind: KindFloat, data: f} }

// String wraps s.
func String(s string) Value { return Value{kind: KindString, data: s} }

// RecordOf wraps r. A nil record is null.
func RecordOf(r *Record) Value {
	if r == nil {
		return Null()
	}
	return Value{kind: KindRecord, data: r}
}

// SequenceOf wraps s. A nil sequence is null.
func SequenceOf(s *Sequence) Value {
	if s == nil {
		return Null()
	}
	return Value{kind: KindSequence, data: s}
}

// FuncOf wraps a named callable.
func FuncOf(name string, call func(args ...Value) (Value, error)) Value {
	return Value{kind: KindFunc, data: &Func{Name: name, Call: call}}
}

// OpaqueOf wraps a host value such as a file or connection handle.
// A nil payload is null.
func OpaqueOf(x any) Value {
	if x == nil {
		return Null()
	}
	return Value{kind: KindOpaque, data: x}
}

// Kind returns the variant tag.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether v is null.
func (v Value) IsNull() bool { return v.kind == KindNull }

// AsBool returns the bool held by v.
func (v Value) AsBool() (bool, bool) {
	b, ok := v.data.(bool)
	return b, ok && v.kind == KindBool
}

// AsInt returns the int64 held by v.
func (v Value) AsInt() (int64, bool) {
	i, ok := v.data.(int64)
	return i, ok && v.kind == KindInt
}

// AsFloat returns the float64 held by v.
func (v Value) AsFloat() (float64, bool) {
	f, ok := v.data.(float64)
	return f, ok && v.kind == KindFloat
}

// AsString returns the string held by v.
func (v Value) AsString() (string, bool) {
	s, ok := v.data.(string)
	return s, ok && v.kind == KindString
}

// AsRecord returns the record held by v.
func (v Value) AsRecord() (*Record, bool) {
	r, ok := v.data.(*Record)
	return r, ok && v.kind == KindRecord
}

// AsSequence returns the sequence held by v.
func (v Value) AsSequence() (*Sequence, bool) {
	s, ok := v.data.(*Sequence)
	return s, ok && v.kind == KindSequence
}

// AsFunc returns the callable held by v.
func (v Value) AsFunc() (*Func, bool) {
	f, ok := v.data.(*Func)
	return f, ok && v.kind == KindFunc
}

// AsOpaque returns the host value held by v.
func (v Value) AsOpaque() (any, bool) {
	return v.data, v.kind == KindOpaque
}

// Interface exports v as plain Go data: records become map[string]any,
// sequences []any, funcs *Func and opaque values their payload.
// v must be acyclic.
func (v Value) Interface() any {
	switch v.kind {
	case KindRecord:
		r, _ := v.AsRecord()
		return r.Interface()
	case KindSequence:
		s, _ := v.AsSequence()
		return s.Interface()
	default:
		return v.data
	}
}

// Of converts plain Go data into a Value.
//
// Maps with string keys become records with sorted keys, slices and arrays
// become sequences, structs become records in field order (see FromStruct),
// funcs become callables and anything without a natural mapping is wrapped
// as opaque. Pointer cycles fail with *CyclicStructureError.
func Of(x any) (Value, error) {
	c := newConverter()
	return c.convert(reflect.ValueOf(x))
}

var (
	valueType    = reflect.TypeFor[Value]()
	recordType   = reflect.TypeFor[*Record]()
	sequenceType = reflect.TypeFor[*Sequence]()
	funcType     = reflect.TypeFor[*Func]()
	callType     = reflect.TypeFor[func(args ...Value) (Value, error)]()
	errorType    = reflect.TypeFor[error]()
)

// funcFromReflect adapts an arbitrary Go func into a callable. Arguments are
// exported with Interface and results converted back with Of; a trailing
// error result is returned as the call error.
func funcFromReflect(fn reflect.Value) *Func {
	ft := fn.Type()
	name := ft.String()
	if ft == callType {
		call := fn.Interface().(func(args ...Value) (Value, error))
		return &Func{Name: name, Call: call}
	}
	return &Func{
		Name: name,
		Call: func(args ...Value) (Value, error) {
			if !ft.IsVariadic() && len(args) != ft.NumIn() {
				return Null(), fmt.Errorf("%s: want %d arguments, got %d", name, ft.NumIn(), len(args))
			}
			if ft.IsVariadic() && len(args) < ft.NumIn()-1 {
				return Null(), fmt.Errorf("%s: want at least %d arguments, got %d", name, ft.NumIn()-1, len(args))
			}
			in := make([]reflect.Value, len(args))
			for i, a := range args {
				want := ft.In(min(i, ft.NumIn()-1))
				if ft.IsVariadic() && i >= ft.NumIn()-1 {
					want = want.Elem()
				}
				x := a.Interface()
				if x == nil {
					in[i] = reflect.Zero(want)
					continue
				}
				rv := reflect.ValueOf(x)
				switch {
				case rv.Type().AssignableTo(want):
					in[i] = rv
				case isNumeric(rv.Kind()) && isNumeric(want.Kind()):
					in[i] = rv.Convert(want)
				default:
					return Null(), fmt.Errorf("%s: argument %d: cannot use %s as %s", name, i, rv.Type(), want)
				}
			}
			out := fn.Call(in)
			if n := len(out); n > 0 && ft.Out(n-1) == errorType {
				if err, _ := out[n-1].Interface().(error); err != nil {
					return Null(), err
				}
				out = out[:n-1]
			}
			if len(out) == 0 {
				return Null(), nil
			}
			return Of(out[0].Interface())
		},
	}
}

func isNumeric(k reflect.Kind) bool {
	return k >= reflect.Int && k <= reflect.Float64
}
