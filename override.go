package replica

import "reflect"

// RecordMarshaler lets a type build its own record. Of and FromStruct call
// MarshalRecord instead of walking the value with reflection, which suits
// generated code and types whose fields do not map one to one onto keys.
type RecordMarshaler interface {
	MarshalRecord() (*Record, error)
}

var marshalerType = reflect.TypeFor[RecordMarshaler]()

// marshalRecord reports whether rv supplies its own record and, if so,
// returns it. Errors are annotated with the current path.
func (c *converter) marshalRecord(rv reflect.Value) (Value, bool, error) {
	if rv.Kind() == reflect.Interface || !rv.CanInterface() || !rv.Type().Implements(marshalerType) {
		return Null(), false, nil
	}
	if rv.Kind() == reflect.Pointer && rv.IsNil() {
		return Null(), true, nil
	}
	r, err := rv.Interface().(RecordMarshaler).MarshalRecord()
	if err != nil {
		return Null(), true, &TransformError{Path: c.path.String(), Op: "marshal", Err: err}
	}
	return RecordOf(r), true, nil
}
