package replica

// Walk visits every value under r depth-first in key order, calling fn with
// the value's path ($.a.b[2]) for each scalar, func and opaque value.
// Records and sequences are entered, not passed to fn.
//
// Walk fails with *CyclicStructureError when a container contains itself
// and stops at the first error returned by fn.
func Walk(r *Record, fn func(path string, v Value) error) error {
	if r == nil {
		return nil
	}
	w := &leafWalker{fn: fn, visiting: make(map[any]struct{})}
	return w.record(r)
}

type leafWalker struct {
	fn       func(string, Value) error
	visiting map[any]struct{}
	path     path
}

func (w *leafWalker) enter(ptr any) error {
	if _, ok := w.visiting[ptr]; ok {
		return &CyclicStructureError{Path: w.path.String()}
	}
	w.visiting[ptr] = struct{}{}
	return nil
}

func (w *leafWalker) record(r *Record) error {
	if err := w.enter(r); err != nil {
		return err
	}
	defer delete(w.visiting, r)
	for _, k := range r.keys {
		w.path.pushKey(k)
		err := w.value(r.entries[k])
		w.path.pop()
		if err != nil {
			return err
		}
	}
	return nil
}

func (w *leafWalker) sequence(s *Sequence) error {
	if err := w.enter(s); err != nil {
		return err
	}
	defer delete(w.visiting, s)
	for i, v := range s.elems {
		w.path.pushIndex(i)
		err := w.value(v)
		w.path.pop()
		if err != nil {
			return err
		}
	}
	return nil
}

func (w *leafWalker) value(v Value) error {
	switch v.kind {
	case KindRecord:
		r, _ := v.AsRecord()
		return w.record(r)
	case KindSequence:
		s, _ := v.AsSequence()
		return w.sequence(s)
	default:
		return w.fn(w.path.String(), v)
	}
}

// CheckEncodable reports the first func or opaque value under r, or a
// cycle. Codecs call it before writing anything.
func CheckEncodable(r *Record) error {
	return Walk(r, func(p string, v Value) error {
		switch v.Kind() {
		case KindFunc, KindOpaque:
			return Unencodable(p, v)
		}
		return nil
	})
}
