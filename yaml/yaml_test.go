package yaml

import (
	"errors"
	"math"
	"strconv"
	"strings"
	"testing"

	"github.com/zoobzio/replica"
	replicatest "github.com/zoobzio/replica/testing"
)

func TestNew(t *testing.T) {
	c := New()
	if c == nil {
		t.Error("New() should return non-nil codec")
	}
}

func TestContentType(t *testing.T) {
	c := New()
	if c.ContentType() != "application/yaml" {
		t.Errorf("ContentType() = %q, want %q", c.ContentType(), "application/yaml")
	}
}

func TestEncode_KeyOrder(t *testing.T) {
	c := New()

	r := replica.NewRecord().
		Set("zeta", replica.Int(1)).
		Set("alpha", replica.String("a")).
		Set("mid", replica.Bool(false))

	data, err := c.Encode(r)
	if err != nil {
		t.Fatalf("Encode() error: %v", err)
	}

	want := "zeta: 1\nalpha: a\nmid: false\n"
	if string(data) != want {
		t.Errorf("Encode() = %q, want %q", data, want)
	}
}

func TestRoundTrip(t *testing.T) {
	c := New()
	original := replicatest.Nested()

	data, err := c.Encode(original)
	if err != nil {
		t.Fatalf("Encode() error: %v", err)
	}
	restored, err := c.Decode(data)
	if err != nil {
		t.Fatalf("Decode() error: %v", err)
	}

	replicatest.AssertEqual(t, original, restored)
}

func TestRoundTrip_ScalarsKeepKind(t *testing.T) {
	c := New()

	tests := []struct {
		name string
		v    replica.Value
	}{
		{"int", replica.Int(-7)},
		{"integral float", replica.Float(3)},
		{"fraction", replica.Float(0.125)},
		{"exponent", replica.Float(1e21)},
		{"numeric string", replica.String("123")},
		{"bool string", replica.String("true")},
		{"null string", replica.String("null")},
		{"empty string", replica.String("")},
		{"null", replica.Null()},
		{"inf", replica.Float(math.Inf(1))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := replica.NewRecord().Set("v", tt.v)
			data, err := c.Encode(r)
			if err != nil {
				t.Fatalf("Encode() error: %v", err)
			}
			restored, err := c.Decode(data)
			if err != nil {
				t.Fatalf("Decode(%q) error: %v", data, err)
			}
			got, _ := restored.Get("v")
			if !replica.Equal(got, tt.v) {
				t.Errorf("round-trip of %q = %v (%s), want %v (%s)", data, got.Interface(), got.Kind(), tt.v.Interface(), tt.v.Kind())
			}
		})
	}
}

func TestDecode_Anchors(t *testing.T) {
	c := New()

	input := `
base: &b
  city: Pune
home: *b
`
	r, err := c.Decode([]byte(input))
	if err != nil {
		t.Fatalf("Decode() error: %v", err)
	}

	h, _ := r.Get("home")
	home, ok := h.AsRecord()
	if !ok {
		t.Fatalf("home kind = %s, want record", h.Kind())
	}
	if city, _ := home.Get("city"); !replica.Equal(city, replica.String("Pune")) {
		t.Errorf("home.city = %v, want Pune", city.Interface())
	}
}

func TestDecode_AliasCycle(t *testing.T) {
	c := New()

	tests := []struct {
		name  string
		input string
		path  string
	}{
		{"sequence", "a: &x [*x]\n", "$.a[0]"},
		{"mapping", "a: &x\n  b: 1\n  self: *x\n", "$.a.self"},
		{"indirect", "a: &x\n  - b:\n      - *x\n", "$.a[0].b[0]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := c.Decode([]byte(tt.input))
			var cErr *replica.CyclicStructureError
			if !errors.As(err, &cErr) {
				t.Fatalf("Decode() error = %v, want *CyclicStructureError", err)
			}
			if cErr.Path != tt.path {
				t.Errorf("Path = %q, want %q", cErr.Path, tt.path)
			}
			if !errors.Is(err, replica.ErrCyclicStructure) {
				t.Error("error should match ErrCyclicStructure")
			}
		})
	}
}

func TestDecode_RepeatedAlias(t *testing.T) {
	input := `
tag: &t [x, y]
first: *t
second: *t
nested:
  again: *t
`
	r, err := New().Decode([]byte(input))
	if err != nil {
		t.Fatalf("Decode() error: %v", err)
	}

	want := replica.SequenceOf(replica.NewSequence(replica.String("x"), replica.String("y")))
	for _, k := range []string{"first", "second"} {
		if v, _ := r.Get(k); !replica.Equal(v, want) {
			t.Errorf("%s = %v, want [x y]", k, v.Interface())
		}
	}

	// Each expansion is its own sequence
	f, _ := r.Get("first")
	s, _ := r.Get("second")
	fs, _ := f.AsSequence()
	ss, _ := s.AsSequence()
	if fs == ss {
		t.Error("expanded aliases should not share a sequence")
	}
}

func TestDecode_ExcessiveAliasing(t *testing.T) {
	// Nine levels, each ten aliases of the one before.
	var b strings.Builder
	b.WriteString(`l0: &l0 ["lol","lol","lol","lol","lol","lol","lol","lol","lol","lol"]` + "\n")
	for i := 1; i <= 9; i++ {
		prev := "*l" + strconv.Itoa(i-1)
		refs := strings.TrimSuffix(strings.Repeat(prev+",", 10), ",")
		b.WriteString("l" + strconv.Itoa(i) + ": &l" + strconv.Itoa(i) + " [" + refs + "]\n")
	}

	_, err := New().Decode([]byte(b.String()))
	if !errors.Is(err, ErrExcessiveAliasing) {
		t.Fatalf("Decode() error = %v, want ErrExcessiveAliasing", err)
	}
}

func TestAllowedAliasRatio(t *testing.T) {
	tests := []struct {
		decoded int
		want    float64
	}{
		{0, 0.99},
		{400000, 0.99},
		{2200000, 0.545},
		{4000000, 0.10},
		{9000000, 0.10},
	}
	for _, tt := range tests {
		if got := allowedAliasRatio(tt.decoded); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("allowedAliasRatio(%d) = %v, want %v", tt.decoded, got, tt.want)
		}
	}
}

func TestFormatFloat(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{1, "1.0"},
		{0.5, "0.5"},
		{-2, "-2.0"},
		{math.Inf(1), ".inf"},
		{math.Inf(-1), "-.inf"},
		{math.NaN(), ".nan"},
	}
	for _, tt := range tests {
		if got := formatFloat(tt.in); got != tt.want {
			t.Errorf("formatFloat(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestEncode_Func(t *testing.T) {
	c := New()

	_, err := c.Encode(replicatest.Person())
	if !errors.Is(err, replica.ErrUnsupportedValue) {
		t.Errorf("Encode() error = %v, want ErrUnsupportedValue", err)
	}
}

func TestDecode_Invalid(t *testing.T) {
	c := New()

	tests := []struct {
		name  string
		input string
		msg   string
	}{
		{"syntax", "key: [unclosed", ""},
		{"sequence", "- a\n- b\n", "expected mapping"},
		{"scalar", "just text\n", "expected mapping"},
		{"empty", "", "empty document"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := c.Decode([]byte(tt.input))
			if err == nil {
				t.Fatal("Decode() should return error")
			}
			if tt.msg != "" && !strings.Contains(err.Error(), tt.msg) {
				t.Errorf("Decode() error = %v, want containing %q", err, tt.msg)
			}
		})
	}
}
