package replica

import (
	"context"
	"time"
)

// Cloner allows host types wrapped in opaque values to provide deep copy logic.
//
// The Clone method must return a deep copy where modifications to the clone
// do not affect the original value. For types containing pointers, slices, or maps,
// ensure these are also copied to achieve true isolation.
//
// Opaque payloads implementing Cloner[any] are always cloned through it,
// whatever the configured OpaquePolicy:
//
//	func (c Counter) Clone() any { return Counter{n: c.n} }
type Cloner[T any] interface {
	Clone() T
}

// RecordCloner produces structurally independent copies of records.
// Options are fixed at construction, so a RecordCloner is safe for
// concurrent use; each call keeps its own traversal state.
type RecordCloner struct {
	opts options
}

// New creates a RecordCloner.
func New(opts ...Option) *RecordCloner {
	return &RecordCloner{opts: buildOptions(opts)}
}

// DeepClone returns a copy of source that shares no records or sequences
// with it. Scalars are copied by value, nested records and sequences are
// cloned recursively, and key order is preserved. Keys named by WithExclude
// are absent from the result.
//
// A record or sequence that contains itself fails with *CyclicStructureError.
// On error no partial result is returned. A nil source yields nil.
func DeepClone(source *Record, opts ...Option) (*Record, error) {
	return New(opts...).Clone(context.Background(), source)
}

// ShallowAlias returns source itself. Mutations through the alias are
// visible on the source, which is precisely what DeepClone avoids.
func ShallowAlias(source *Record) *Record {
	return source
}

// Clone deep-copies source. See DeepClone.
func (c *RecordCloner) Clone(ctx context.Context, source *Record) (*Record, error) {
	if source == nil {
		return nil, nil
	}

	start := time.Now()
	emitCloneStart(ctx, source.Len())

	w := c.walker()
	out, err := w.record(source, 1, true)

	emitCloneComplete(ctx, out.Len(), w.excluded, w.nodes, time.Since(start), err)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// CloneValue deep-copies a single value. When v is a record, top-level
// exclusion and member transforms apply to it. A value dropped by policy comes
// back as null.
func (c *RecordCloner) CloneValue(_ context.Context, v Value) (Value, error) {
	w := c.walker()
	out, _, err := w.value(v, 0, true)
	if err != nil {
		return Null(), err
	}
	return out, nil
}

func (c *RecordCloner) walker() *walker {
	return &walker{
		opts:     &c.opts,
		visiting: make(map[any]struct{}),
	}
}

// walker holds per-call traversal state.
type walker struct {
	opts     *options
	visiting map[any]struct{} // *Record or *Sequence currently on the stack
	path     path
	nodes    int
	excluded int
}

// enter marks a container as being visited. A container already on the
// stack closes a cycle; one reached twice on separate branches does not.
func (w *walker) enter(ptr any, depth int) error {
	if _, ok := w.visiting[ptr]; ok {
		return &CyclicStructureError{Path: w.path.String()}
	}
	if w.opts.maxDepth > 0 && depth > w.opts.maxDepth {
		return &DepthError{Path: w.path.String(), Limit: w.opts.maxDepth}
	}
	w.visiting[ptr] = struct{}{}
	w.nodes++
	return nil
}

func (w *walker) leave(ptr any) {
	delete(w.visiting, ptr)
}

func (w *walker) record(src *Record, depth int, top bool) (*Record, error) {
	if err := w.enter(src, depth); err != nil {
		return nil, err
	}
	defer w.leave(src)

	dst := newRecordSize(src.Len())
	for _, k := range src.keys {
		v := src.entries[k]
		if top {
			if _, ok := w.opts.exclude[k]; ok {
				w.excluded++
				continue
			}
			if t, ok := w.opts.transforms[k]; ok {
				tv, err := w.transform(t, k, v, depth)
				if err != nil {
					return nil, err
				}
				dst.Set(k, tv)
				continue
			}
		}

		w.path.pushKey(k)
		cv, keep, err := w.value(v, depth, false)
		w.path.pop()
		if err != nil {
			return nil, err
		}
		if !keep {
			w.excluded++
			continue
		}
		dst.Set(k, cv)
	}
	return dst, nil
}

func (w *walker) sequence(src *Sequence, depth int) (*Sequence, error) {
	if err := w.enter(src, depth); err != nil {
		return nil, err
	}
	defer w.leave(src)

	dst := &Sequence{elems: make([]Value, 0, len(src.elems))}
	for i, v := range src.elems {
		w.path.pushIndex(i)
		cv, keep, err := w.value(v, depth, false)
		w.path.pop()
		if err != nil {
			return nil, err
		}
		if keep {
			dst.elems = append(dst.elems, cv)
		}
	}
	return dst, nil
}

// value clones v found at the given container depth. keep is false when
// the value is dropped by policy.
func (w *walker) value(v Value, depth int, top bool) (out Value, keep bool, err error) {
	switch v.kind {
	case KindNull, KindBool, KindInt, KindFloat, KindString:
		w.nodes++
		return v, true, nil

	case KindRecord:
		src, _ := v.AsRecord()
		r, err := w.record(src, depth+1, top)
		if err != nil {
			return Null(), false, err
		}
		return RecordOf(r), true, nil

	case KindSequence:
		src, _ := v.AsSequence()
		s, err := w.sequence(src, depth+1)
		if err != nil {
			return Null(), false, err
		}
		return SequenceOf(s), true, nil

	case KindFunc:
		if w.opts.dropFuncs {
			return Null(), false, nil
		}
		w.nodes++
		f, _ := v.AsFunc()
		return Value{kind: KindFunc, data: &Func{Name: f.Name, Call: f.Call}}, true, nil

	case KindOpaque:
		x, _ := v.AsOpaque()
		if cl, ok := x.(Cloner[any]); ok {
			w.nodes++
			return OpaqueOf(cl.Clone()), true, nil
		}
		switch w.opts.opaque {
		case OpaqueReject:
			return Null(), false, &UnsupportedValueError{Path: w.path.String(), Type: typeName(x)}
		case OpaqueDrop:
			return Null(), false, nil
		default:
			w.nodes++
			return v, true, nil
		}

	default:
		return Null(), false, &UnsupportedValueError{Path: w.path.String(), Type: v.kind.String()}
	}
}
