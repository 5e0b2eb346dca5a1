package replica_test

import (
	"context"
	"errors"
	"math"
	"os"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/zoobzio/replica"
	replicatest "github.com/zoobzio/replica/testing"
)

func mustClone(t *testing.T, src *replica.Record, opts ...replica.Option) *replica.Record {
	t.Helper()
	clone, err := replica.DeepClone(src, opts...)
	if err != nil {
		t.Fatalf("DeepClone() error: %v", err)
	}
	return clone
}

func TestDeepClone_ValueEqual(t *testing.T) {
	tests := []struct {
		name string
		src  *replica.Record
	}{
		{"empty", replica.NewRecord()},
		{"person", replicatest.Person()},
		{"nested", replicatest.Nested()},
		{"diamond", replicatest.Diamond()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clone := mustClone(t, tt.src)
			replicatest.AssertEqual(t, tt.src, clone)
			if clone == tt.src {
				t.Error("DeepClone() returned the source record")
			}
		})
	}
}

func TestDeepClone_NaNValueEqual(t *testing.T) {
	src := replica.NewRecord().
		Set("x", replica.Float(math.NaN())).
		Set("xs", replica.SequenceOf(replica.NewSequence(replica.Float(math.NaN()))))

	clone := mustClone(t, src)
	if !replica.Equal(replica.RecordOf(src), replica.RecordOf(clone)) {
		t.Error("clone holding NaN should equal its source")
	}
}

func TestDeepClone_Nil(t *testing.T) {
	clone, err := replica.DeepClone(nil)
	if err != nil {
		t.Fatalf("DeepClone(nil) error: %v", err)
	}
	if clone != nil {
		t.Errorf("DeepClone(nil) = %v, want nil", clone)
	}
}

func TestDeepClone_Independence(t *testing.T) {
	src := replicatest.Nested()
	clone := mustClone(t, src)

	// Mutate the clone at every nested path
	cp, _ := clone.Get("profile")
	cprofile, _ := cp.AsRecord()
	ca, _ := cprofile.Get("address")
	caddr, _ := ca.AsRecord()
	caddr.Set("city", replica.String("Mumbai"))
	cprofile.Set("extra", replica.Bool(true))

	ct, _ := clone.Get("tags")
	ctags, _ := ct.AsSequence()
	if err := ctags.SetAt(0, replica.String("z")); err != nil {
		t.Fatalf("SetAt() error: %v", err)
	}
	ctags.Append(replica.String("c"))

	cs, _ := clone.Get("scores")
	cscores, _ := cs.AsSequence()
	inner, _ := cscores.At(2)
	innerRec, _ := inner.AsRecord()
	innerRec.Set("x", replica.Int(99))
	deep, _ := cscores.At(3)
	deepSeq, _ := deep.AsSequence()
	if err := deepSeq.SetAt(0, replica.String("changed")); err != nil {
		t.Fatalf("SetAt() error: %v", err)
	}

	clone.Set("active", replica.Bool(false))

	replicatest.AssertEqual(t, replicatest.Nested(), src)
}

func TestDeepClone_IndependenceReverse(t *testing.T) {
	src := replicatest.Nested()
	clone := mustClone(t, src)

	sp, _ := src.Get("profile")
	sprofile, _ := sp.AsRecord()
	sprofile.Delete("name")
	st, _ := src.Get("tags")
	stags, _ := st.AsSequence()
	stags.Append(replica.String("new"))
	src.Set("ratio", replica.Float(1))

	replicatest.AssertEqual(t, replicatest.Nested(), clone)
}

func TestDeepClone_Idempotent(t *testing.T) {
	once := mustClone(t, replicatest.Nested())
	twice := mustClone(t, once)
	replicatest.AssertEqual(t, once, twice)

	f1, err := replica.Fingerprint(once)
	if err != nil {
		t.Fatalf("Fingerprint() error: %v", err)
	}
	f2, err := replica.Fingerprint(twice)
	if err != nil {
		t.Fatalf("Fingerprint() error: %v", err)
	}
	if f1 != f2 {
		t.Errorf("Fingerprint() = %s, want %s", f2, f1)
	}
}

func TestDeepClone_ExcludeKeys(t *testing.T) {
	clone := mustClone(t, replicatest.Person(), replica.WithExclude("greet"))

	want := replica.NewRecord().
		Set("naam", replica.String("Utkarsh")).
		Set("age", replica.Int(25))
	replicatest.AssertEqual(t, want, clone)

	if clone.Has("greet") {
		t.Error("clone should not contain greet")
	}
}

func TestDeepClone_ExcludeTopLevelOnly(t *testing.T) {
	src := replica.NewRecord().
		Set("id", replica.Int(1)).
		Set("child", replica.RecordOf(replica.NewRecord().Set("id", replica.Int(2))))

	clone := mustClone(t, src, replica.WithExclude("id"))

	if clone.Has("id") {
		t.Error("top-level id should be excluded")
	}
	c, _ := clone.Get("child")
	child, _ := c.AsRecord()
	if !child.Has("id") {
		t.Error("nested id should be kept")
	}
}

func TestDeepClone_ExcludeMissingKey(t *testing.T) {
	clone := mustClone(t, replicatest.Person(), replica.WithExclude("missing"))
	replicatest.AssertEqual(t, replicatest.Person(), clone)
}

func TestDeepClone_Cycle(t *testing.T) {
	_, err := replica.DeepClone(replicatest.SelfReferential())
	if !errors.Is(err, replica.ErrCyclicStructure) {
		t.Fatalf("DeepClone() error = %v, want ErrCyclicStructure", err)
	}

	var cycErr *replica.CyclicStructureError
	if !errors.As(err, &cycErr) {
		t.Fatalf("DeepClone() error should be *CyclicStructureError, got %T", err)
	}
	if cycErr.Path != "$.self" {
		t.Errorf("Path = %q, want %q", cycErr.Path, "$.self")
	}
}

func TestDeepClone_IndirectCycle(t *testing.T) {
	a := replica.NewRecord()
	b := replica.NewRecord()
	a.Set("b", replica.RecordOf(b))
	b.Set("list", replica.SequenceOf(replica.NewSequence(replica.Int(1), replica.RecordOf(a))))

	_, err := replica.DeepClone(a)
	var cycErr *replica.CyclicStructureError
	if !errors.As(err, &cycErr) {
		t.Fatalf("DeepClone() error = %v, want *CyclicStructureError", err)
	}
	if cycErr.Path != "$.b.list[1]" {
		t.Errorf("Path = %q, want %q", cycErr.Path, "$.b.list[1]")
	}
}

func TestDeepClone_SequenceCycle(t *testing.T) {
	_, err := replica.DeepClone(replicatest.SequenceCycle())
	if !errors.Is(err, replica.ErrCyclicStructure) {
		t.Fatalf("DeepClone() error = %v, want ErrCyclicStructure", err)
	}
}

func TestDeepClone_CycleBehindExcludedKey(t *testing.T) {
	a := replica.NewRecord().Set("keep", replica.Int(1))
	a.Set("self", replica.RecordOf(a))

	clone := mustClone(t, a, replica.WithExclude("self"))
	if clone.Len() != 1 {
		t.Errorf("clone Len() = %d, want 1", clone.Len())
	}
}

func TestDeepClone_SharedIsNotCycle(t *testing.T) {
	clone := mustClone(t, replicatest.Diamond())

	l, _ := clone.Get("left")
	r, _ := clone.Get("right")
	left, _ := l.AsRecord()
	right, _ := r.AsRecord()
	if left == right {
		t.Error("shared source record should be cloned per branch")
	}
	left.Set("v", replica.Int(2))
	if v, _ := right.Get("v"); !replica.Equal(v, replica.Int(1)) {
		t.Error("mutating one branch affected the other")
	}
}

func TestShallowAlias_Contrast(t *testing.T) {
	source := replica.NewRecord().Set("naam", replica.String("Utkarsh"))

	alias := replica.ShallowAlias(source)
	alias.Set("naam", replica.String("Modified"))
	if v, _ := source.Get("naam"); !replica.Equal(v, replica.String("Modified")) {
		t.Errorf("source naam = %v, want Modified through alias", v.Interface())
	}

	source = replica.NewRecord().Set("naam", replica.String("Utkarsh"))
	clone := mustClone(t, source)
	clone.Set("naam", replica.String("Modified"))
	if v, _ := source.Get("naam"); !replica.Equal(v, replica.String("Utkarsh")) {
		t.Errorf("source naam = %v, want Utkarsh", v.Interface())
	}
}

func TestDeepClone_OrderPreserved(t *testing.T) {
	src := replica.NewRecord().
		Set("a", replica.Int(1)).
		Set("b", replica.Int(2)).
		Set("c", replica.Int(3))

	clone := mustClone(t, src)
	if diff := cmp.Diff([]string{"a", "b", "c"}, clone.Keys()); diff != "" {
		t.Errorf("Keys() mismatch (-want +got):\n%s", diff)
	}

	clone = mustClone(t, src, replica.WithExclude("b"))
	if diff := cmp.Diff([]string{"a", "c"}, clone.Keys()); diff != "" {
		t.Errorf("Keys() mismatch (-want +got):\n%s", diff)
	}
}

func TestDeepClone_WithoutFuncs(t *testing.T) {
	src := replicatest.Person()
	src.Set("nested", replica.RecordOf(replica.NewRecord().
		Set("fn", replica.FuncOf("fn", replicatest.Greet)).
		Set("n", replica.Int(1))))
	src.Set("list", replica.SequenceOf(replica.NewSequence(
		replica.FuncOf("fn", replicatest.Greet), replica.Int(2))))

	clone := mustClone(t, src, replica.WithoutFuncs())

	if clone.Has("greet") {
		t.Error("top-level func should be dropped")
	}
	n, _ := clone.Get("nested")
	nested, _ := n.AsRecord()
	if nested.Has("fn") || !nested.Has("n") {
		t.Errorf("nested keys = %v, want [n]", nested.Keys())
	}
	l, _ := clone.Get("list")
	list, _ := l.AsSequence()
	if list.Len() != 1 {
		t.Errorf("list Len() = %d, want 1", list.Len())
	}
}

func TestDeepClone_FuncCopied(t *testing.T) {
	src := replicatest.Person()
	clone := mustClone(t, src)

	g, _ := clone.Get("greet")
	fn, _ := g.AsFunc()
	fn.Name = "renamed"

	sg, _ := src.Get("greet")
	sfn, _ := sg.AsFunc()
	if sfn.Name != "greet" {
		t.Errorf("source func Name = %q, want %q", sfn.Name, "greet")
	}
	out, err := fn.Invoke()
	if err != nil {
		t.Fatalf("Invoke() error: %v", err)
	}
	if s, _ := out.AsString(); s != "namaste" {
		t.Errorf("Invoke() = %q, want namaste", s)
	}
}

func TestDeepClone_Opaque(t *testing.T) {
	f, err := os.Open(os.DevNull)
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	defer f.Close()

	src := replica.NewRecord().
		Set("file", replica.OpaqueOf(f)).
		Set("n", replica.Int(1))

	t.Run("share", func(t *testing.T) {
		clone := mustClone(t, src)
		v, _ := clone.Get("file")
		x, _ := v.AsOpaque()
		if x != f {
			t.Error("shared handle should be the same object")
		}
	})

	t.Run("reject", func(t *testing.T) {
		_, err := replica.DeepClone(src, replica.WithOpaque(replica.OpaqueReject))
		var uErr *replica.UnsupportedValueError
		if !errors.As(err, &uErr) {
			t.Fatalf("DeepClone() error = %v, want *UnsupportedValueError", err)
		}
		if uErr.Path != "$.file" || uErr.Type != "*os.File" {
			t.Errorf("error = %+v, want path $.file type *os.File", uErr)
		}
		if !errors.Is(err, replica.ErrUnsupportedValue) {
			t.Error("error should match ErrUnsupportedValue")
		}
	})

	t.Run("drop", func(t *testing.T) {
		clone := mustClone(t, src, replica.WithOpaque(replica.OpaqueDrop))
		if diff := cmp.Diff([]string{"n"}, clone.Keys()); diff != "" {
			t.Errorf("Keys() mismatch (-want +got):\n%s", diff)
		}
	})
}

func TestDeepClone_OpaqueCloner(t *testing.T) {
	n := 1
	src := replica.NewRecord().Set("counter", replica.OpaqueOf(replicatest.Counter{N: &n}))

	clone := mustClone(t, src, replica.WithOpaque(replica.OpaqueReject))

	v, _ := clone.Get("counter")
	x, _ := v.AsOpaque()
	c := x.(replicatest.Counter)
	*c.N = 5
	if n != 1 {
		t.Errorf("source counter = %d, want 1", n)
	}
}

func TestDeepClone_Redact(t *testing.T) {
	src := replicatest.Person()
	clone := mustClone(t, src, replica.WithRedact("***", "naam"), replica.WithExclude("greet"))

	want := replica.NewRecord().
		Set("naam", replica.String("***")).
		Set("age", replica.Int(25))
	replicatest.AssertEqual(t, want, clone)
}

func TestDeepClone_MaxDepth(t *testing.T) {
	src := replicatest.Nested()

	_, err := replica.DeepClone(src, replica.WithMaxDepth(2))
	var dErr *replica.DepthError
	if !errors.As(err, &dErr) {
		t.Fatalf("DeepClone() error = %v, want *DepthError", err)
	}
	if dErr.Path != "$.profile.address" {
		t.Errorf("Path = %q, want %q", dErr.Path, "$.profile.address")
	}

	if _, err := replica.DeepClone(src, replica.WithMaxDepth(3)); err != nil {
		t.Errorf("DeepClone() with depth 3 error: %v", err)
	}
	if _, err := replica.DeepClone(src, replica.WithMaxDepth(0)); err != nil {
		t.Errorf("DeepClone() unlimited error: %v", err)
	}
}

func TestRecordCloner_CloneValue(t *testing.T) {
	c := replica.New(replica.WithExclude("greet"))

	v, err := c.CloneValue(context.Background(), replica.RecordOf(replicatest.Person()))
	if err != nil {
		t.Fatalf("CloneValue() error: %v", err)
	}
	r, ok := v.AsRecord()
	if !ok || r.Has("greet") {
		t.Error("CloneValue() should apply exclusion to a record")
	}

	seq := replica.NewSequence(replica.Int(1))
	v, err = c.CloneValue(context.Background(), replica.SequenceOf(seq))
	if err != nil {
		t.Fatalf("CloneValue() error: %v", err)
	}
	s, _ := v.AsSequence()
	if s == seq || s.Len() != 1 {
		t.Error("CloneValue() should copy sequences")
	}

	v, err = c.CloneValue(context.Background(), replica.String("x"))
	if err != nil || !replica.Equal(v, replica.String("x")) {
		t.Errorf("CloneValue(scalar) = %v, %v", v.Interface(), err)
	}
}

func TestRecordCloner_Concurrent(t *testing.T) {
	c := replica.New(replica.WithExclude("greet"))
	src := replicatest.Nested()

	var wg sync.WaitGroup
	errs := make(chan error, 16)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			clone, err := c.Clone(context.Background(), src)
			if err != nil {
				errs <- err
				return
			}
			clone.Set("active", replica.Bool(false))
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Errorf("Clone() error: %v", err)
	}
	replicatest.AssertEqual(t, replicatest.Nested(), src)
}
