package easing

import (
	"math"
	"testing"
)

const tolerance = 1e-9

func TestEndpoints(t *testing.T) {
	for _, name := range Names() {
		t.Run(string(name), func(t *testing.T) {
			fn, ok := Lookup(string(name))
			if !ok {
				t.Fatalf("Lookup(%q) failed", name)
			}
			if got := fn(0, 10, 30, 200); math.Abs(got-10) > tolerance {
				t.Errorf("f(0) = %v, want 10", got)
			}
			if got := fn(200, 10, 30, 200); math.Abs(got-40) > tolerance {
				t.Errorf("f(d) = %v, want 40", got)
			}
		})
	}
}

func TestLinearMidpoint(t *testing.T) {
	fn := MustLookup("linear")
	if got := fn(50, 0, 10, 100); got != 5 {
		t.Errorf("linear(50) = %v, want 5", got)
	}
}

func TestMonotonicQuad(t *testing.T) {
	fn := MustLookup(string(InOutQuad))
	prev := fn(0, 0, 100, 100)
	for i := 1; i <= 100; i++ {
		v := fn(float64(i), 0, 100, 100)
		if v < prev {
			t.Fatalf("inOutQuad decreased at t=%d: %v < %v", i, v, prev)
		}
		prev = v
	}
}

func TestLookupUnknown(t *testing.T) {
	if _, ok := Lookup("wobble"); ok {
		t.Error("Lookup(wobble) should fail")
	}
}

func TestMustLookupEmptyIsLinear(t *testing.T) {
	fn := MustLookup("")
	if got := fn(1, 0, 4, 2); got != 2 {
		t.Errorf("MustLookup(\"\")(1,0,4,2) = %v, want 2", got)
	}
}

func TestMustLookupPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("MustLookup should panic for an unknown name")
		}
	}()
	MustLookup("wobble")
}

func TestNamesSorted(t *testing.T) {
	names := Names()
	if len(names) != len(table) {
		t.Fatalf("Names() returned %d names, want %d", len(names), len(table))
	}
	for i := 1; i < len(names); i++ {
		if names[i-1] >= names[i] {
			t.Fatalf("Names() not sorted at %d: %q >= %q", i, names[i-1], names[i])
		}
	}
}
