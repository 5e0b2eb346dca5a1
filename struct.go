package replica

import (
	"reflect"
	"sort"
	"strings"

	"github.com/zoobzio/sentinel"
)

func init() {
	// Register the record tag with sentinel
	sentinel.Tag("record")
}

// structPlan describes how to read a struct type into a record.
type structPlan struct {
	typeName string
	fields   []structFieldPlan
}

// structFieldPlan describes a single exported field.
type structFieldPlan struct {
	index     []int  // reflect.Value.FieldByIndex access path
	key       string // record key
	omitEmpty bool   // skip zero values
}

// FromStruct converts a struct (or pointer to struct) into a record whose
// keys follow field declaration order.
//
// Field behavior is declared with the record tag:
//
//	type User struct {
//	    Name  string            `record:"naam"`
//	    Age   int               `record:",omitempty"`
//	    Token string            `record:"-"`
//	    Greet func() string
//	}
//
// Nested structs become records, slices and arrays sequences, maps with
// string keys records with sorted keys, funcs callables. Other values are
// wrapped as opaque. Pointer cycles fail with *CyclicStructureError.
func FromStruct[T any](v T) (*Record, error) {
	rt := reflect.TypeFor[T]()
	if rt.Kind() == reflect.Struct {
		// Seed sentinel's metadata cache for the top-level type
		sentinel.Scan[T]()
	}

	rv := reflect.ValueOf(&v).Elem()
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return nil, nil
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return nil, &UnsupportedValueError{Path: "$", Type: rt.String()}
	}

	c := newConverter()
	out, err := c.convert(reflect.ValueOf(v))
	if err != nil {
		return nil, err
	}
	r, _ := out.AsRecord()
	return r, nil
}

// buildStructPlan creates a plan for rt from sentinel metadata.
func buildStructPlan(rt reflect.Type) (*structPlan, error) {
	meta := scanType(rt)
	plan := &structPlan{
		typeName: meta.TypeName,
		fields:   make([]structFieldPlan, 0, len(meta.Fields)),
	}

	seen := make(map[string]string, len(meta.Fields))
	for _, field := range meta.Fields {
		if !rt.FieldByIndex(field.Index).IsExported() {
			continue
		}

		key, omitEmpty, skip, ok := parseRecordTag(field.Tags["record"])
		if !ok {
			return nil, &TagError{Type: meta.TypeName, Field: field.Name, Tag: field.Tags["record"]}
		}
		if skip {
			continue
		}
		if key == "" {
			key = field.Name
		}
		if prev, dup := seen[key]; dup {
			return nil, &TagError{Type: meta.TypeName, Field: field.Name, Tag: key + " (also used by " + prev + ")"}
		}
		seen[key] = field.Name

		plan.fields = append(plan.fields, structFieldPlan{
			index:     field.Index,
			key:       key,
			omitEmpty: omitEmpty,
		})
	}

	return plan, nil
}

// scanType returns sentinel metadata for rt, scanning by reflection when
// sentinel has not seen the type.
func scanType(rt reflect.Type) sentinel.Metadata {
	if meta, ok := sentinel.Lookup(rt.String()); ok {
		return meta
	}

	meta := sentinel.Metadata{
		TypeName:    rt.Name(),
		PackageName: rt.PkgPath(),
		Fields:      make([]sentinel.FieldMetadata, 0, rt.NumField()),
	}

	for i := 0; i < rt.NumField(); i++ {
		sf := rt.Field(i)
		if !sf.IsExported() {
			continue
		}

		fm := sentinel.FieldMetadata{
			Name:        sf.Name,
			Type:        sf.Type.String(),
			ReflectType: sf.Type,
			Index:       sf.Index,
			Tags:        map[string]string{},
		}
		if val, ok := sf.Tag.Lookup("record"); ok {
			fm.Tags["record"] = val
		}

		switch sf.Type.Kind() {
		case reflect.Struct:
			fm.Kind = sentinel.KindStruct
		case reflect.Ptr:
			fm.Kind = sentinel.KindPointer
		case reflect.Slice, reflect.Array:
			fm.Kind = sentinel.KindSlice
		case reflect.Map:
			fm.Kind = sentinel.KindMap
		case reflect.Interface:
			fm.Kind = sentinel.KindInterface
		default:
			fm.Kind = sentinel.KindScalar
		}

		meta.Fields = append(meta.Fields, fm)
	}

	return meta
}

// parseRecordTag splits `name,omitempty`. ok is false for unknown options.
func parseRecordTag(tag string) (key string, omitEmpty, skip, ok bool) {
	if tag == "-" {
		return "", false, true, true
	}
	parts := strings.Split(tag, ",")
	for _, opt := range parts[1:] {
		switch opt {
		case "omitempty":
			omitEmpty = true
		default:
			return "", false, false, false
		}
	}
	return parts[0], omitEmpty, false, true
}

// visitKey identifies a Go reference by type and address.
type visitKey struct {
	typ reflect.Type
	ptr uintptr
}

// converter turns reflected Go data into values.
type converter struct {
	visiting map[visitKey]struct{}
	path     path
}

func newConverter() *converter {
	return &converter{visiting: make(map[visitKey]struct{})}
}

// enter tracks a reference on the current path. Zero-length slices and nil
// references never close a cycle.
func (c *converter) enter(rv reflect.Value) (visitKey, bool, error) {
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map:
	case reflect.Slice:
		if rv.Len() == 0 {
			return visitKey{}, false, nil
		}
	default:
		return visitKey{}, false, nil
	}
	key := visitKey{typ: rv.Type(), ptr: rv.Pointer()}
	if _, ok := c.visiting[key]; ok {
		return key, false, &CyclicStructureError{Path: c.path.String()}
	}
	c.visiting[key] = struct{}{}
	return key, true, nil
}

func (c *converter) convert(rv reflect.Value) (Value, error) {
	if !rv.IsValid() {
		return Null(), nil
	}

	switch rv.Type() {
	case valueType:
		return rv.Interface().(Value), nil
	case recordType:
		return RecordOf(rv.Interface().(*Record)), nil
	case sequenceType:
		return SequenceOf(rv.Interface().(*Sequence)), nil
	case funcType:
		f := rv.Interface().(*Func)
		if f == nil {
			return Null(), nil
		}
		return Value{kind: KindFunc, data: f}, nil
	}

	if v, ok, err := c.marshalRecord(rv); ok {
		return v, err
	}

	switch rv.Kind() {
	case reflect.Bool:
		return Bool(rv.Bool()), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return Int(rv.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		u := rv.Uint()
		if u > 1<<63-1 {
			return Float(float64(u)), nil
		}
		return Int(int64(u)), nil
	case reflect.Float32, reflect.Float64:
		return Float(rv.Float()), nil
	case reflect.String:
		return String(rv.String()), nil

	case reflect.Interface:
		if rv.IsNil() {
			return Null(), nil
		}
		return c.convert(rv.Elem())

	case reflect.Pointer:
		if rv.IsNil() {
			return Null(), nil
		}
		key, entered, err := c.enter(rv)
		if err != nil {
			return Null(), err
		}
		if entered {
			defer delete(c.visiting, key)
		}
		return c.convert(rv.Elem())

	case reflect.Struct:
		return c.structValue(rv)

	case reflect.Slice, reflect.Array:
		if rv.Kind() == reflect.Slice && rv.IsNil() {
			return Null(), nil
		}
		key, entered, err := c.enter(rv)
		if err != nil {
			return Null(), err
		}
		if entered {
			defer delete(c.visiting, key)
		}
		seq := &Sequence{elems: make([]Value, 0, rv.Len())}
		for i := 0; i < rv.Len(); i++ {
			c.path.pushIndex(i)
			ev, err := c.convert(rv.Index(i))
			c.path.pop()
			if err != nil {
				return Null(), err
			}
			seq.elems = append(seq.elems, ev)
		}
		return SequenceOf(seq), nil

	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return OpaqueOf(rv.Interface()), nil
		}
		if rv.IsNil() {
			return Null(), nil
		}
		key, entered, err := c.enter(rv)
		if err != nil {
			return Null(), err
		}
		if entered {
			defer delete(c.visiting, key)
		}
		keys := make([]string, 0, rv.Len())
		for _, k := range rv.MapKeys() {
			keys = append(keys, k.String())
		}
		sort.Strings(keys)
		rec := newRecordSize(len(keys))
		for _, k := range keys {
			c.path.pushKey(k)
			ev, err := c.convert(rv.MapIndex(reflect.ValueOf(k).Convert(rv.Type().Key())))
			c.path.pop()
			if err != nil {
				return Null(), err
			}
			rec.Set(k, ev)
		}
		return RecordOf(rec), nil

	case reflect.Func:
		if rv.IsNil() {
			return Null(), nil
		}
		return Value{kind: KindFunc, data: funcFromReflect(rv)}, nil
	}

	// Channels, complex numbers and unsafe pointers have no record shape.
	if !rv.CanInterface() {
		return Null(), &UnsupportedValueError{Path: c.path.String(), Type: rv.Type().String()}
	}
	return OpaqueOf(rv.Interface()), nil
}

func (c *converter) structValue(rv reflect.Value) (Value, error) {
	plan, err := planFor(rv.Type())
	if err != nil {
		return Null(), err
	}
	// Types like time.Time keep all state unexported.
	if len(plan.fields) == 0 && rv.NumField() > 0 && rv.CanInterface() {
		return OpaqueOf(rv.Interface()), nil
	}
	rec := newRecordSize(len(plan.fields))
	for _, f := range plan.fields {
		fv := rv.FieldByIndex(f.index)
		if f.omitEmpty && fv.IsZero() {
			continue
		}
		c.path.pushKey(f.key)
		ev, err := c.convert(fv)
		c.path.pop()
		if err != nil {
			return Null(), err
		}
		rec.Set(f.key, ev)
	}
	return RecordOf(rec), nil
}
