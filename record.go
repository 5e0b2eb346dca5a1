package replica

import "fmt"

// Record is an ordered mapping from string keys to values.
//
// Keys enumerate in insertion order. Setting an existing key replaces its
// value in place; deleting a key removes it from the order. A Record is not
// safe for concurrent mutation.
type Record struct {
	keys    []string
	entries map[string]Value
}

// NewRecord returns an empty record.
func NewRecord() *Record {
	return &Record{entries: make(map[string]Value)}
}

// newRecordSize returns an empty record with room for n keys.
func newRecordSize(n int) *Record {
	return &Record{
		keys:    make([]string, 0, n),
		entries: make(map[string]Value, n),
	}
}

// Set stores v under key and returns the record for chaining.
func (r *Record) Set(key string, v Value) *Record {
	if r.entries == nil {
		r.entries = make(map[string]Value)
	}
	if _, ok := r.entries[key]; !ok {
		r.keys = append(r.keys, key)
	}
	r.entries[key] = v
	return r
}

// Get returns the value stored under key.
func (r *Record) Get(key string) (Value, bool) {
	if r == nil {
		return Null(), false
	}
	v, ok := r.entries[key]
	return v, ok
}

// Has reports whether key is present.
func (r *Record) Has(key string) bool {
	_, ok := r.Get(key)
	return ok
}

// Delete removes key, reporting whether it was present.
func (r *Record) Delete(key string) bool {
	if r == nil {
		return false
	}
	if _, ok := r.entries[key]; !ok {
		return false
	}
	delete(r.entries, key)
	for i, k := range r.keys {
		if k == key {
			r.keys = append(r.keys[:i], r.keys[i+1:]...)
			break
		}
	}
	return true
}

// Keys returns the keys in insertion order. The slice is a copy.
func (r *Record) Keys() []string {
	if r == nil {
		return nil
	}
	keys := make([]string, len(r.keys))
	copy(keys, r.keys)
	return keys
}

// Len returns the number of keys.
func (r *Record) Len() int {
	if r == nil {
		return 0
	}
	return len(r.keys)
}

// Range calls fn for each entry in order until fn returns false.
func (r *Record) Range(fn func(key string, v Value) bool) {
	if r == nil {
		return
	}
	for _, k := range r.keys {
		if !fn(k, r.entries[k]) {
			return
		}
	}
}

// Equal reports whether r and o hold value-equal entries in the same order.
func (r *Record) Equal(o *Record) bool {
	return Equal(RecordOf(r), RecordOf(o))
}

// Interface exports the record as a plain map. r must be acyclic.
func (r *Record) Interface() map[string]any {
	if r == nil {
		return nil
	}
	out := make(map[string]any, len(r.keys))
	for _, k := range r.keys {
		out[k] = r.entries[k].Interface()
	}
	return out
}

// Sequence is an ordered list of values.
type Sequence struct {
	elems []Value
}

// NewSequence returns a sequence holding elems.
func NewSequence(elems ...Value) *Sequence {
	s := &Sequence{elems: make([]Value, len(elems))}
	copy(s.elems, elems)
	return s
}

// Len returns the number of elements.
func (s *Sequence) Len() int {
	if s == nil {
		return 0
	}
	return len(s.elems)
}

// At returns the element at index i.
func (s *Sequence) At(i int) (Value, bool) {
	if s == nil || i < 0 || i >= len(s.elems) {
		return Null(), false
	}
	return s.elems[i], true
}

// SetAt replaces the element at index i.
func (s *Sequence) SetAt(i int, v Value) error {
	if i < 0 || i >= s.Len() {
		return fmt.Errorf("index %d out of range [0:%d]", i, s.Len())
	}
	s.elems[i] = v
	return nil
}

// Append adds values to the end and returns the sequence for chaining.
func (s *Sequence) Append(vs ...Value) *Sequence {
	s.elems = append(s.elems, vs...)
	return s
}

// Values returns a copy of the elements.
func (s *Sequence) Values() []Value {
	if s == nil {
		return nil
	}
	out := make([]Value, len(s.elems))
	copy(out, s.elems)
	return out
}

// Range calls fn for each element in order until fn returns false.
func (s *Sequence) Range(fn func(i int, v Value) bool) {
	if s == nil {
		return
	}
	for i, v := range s.elems {
		if !fn(i, v) {
			return
		}
	}
}

// Equal reports whether s and o hold value-equal elements.
func (s *Sequence) Equal(o *Sequence) bool {
	return Equal(SequenceOf(s), SequenceOf(o))
}

// Interface exports the sequence as a plain slice. s must be acyclic.
func (s *Sequence) Interface() []any {
	if s == nil {
		return nil
	}
	out := make([]any, len(s.elems))
	for i, v := range s.elems {
		out[i] = v.Interface()
	}
	return out
}
