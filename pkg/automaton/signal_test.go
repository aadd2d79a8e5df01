package automaton

import (
	"encoding/json"
	"testing"
)

func TestSignalEqual(t *testing.T) {
	tests := []struct {
		name string
		a, b Signal
		want bool
	}{
		{"same id and type", Signal{ID: "x", Type: Input}, Signal{ID: "x", Type: Input}, true},
		{"different type", Signal{ID: "x", Type: Input}, Signal{ID: "x", Type: Output}, false},
		{"different id", Signal{ID: "x", Type: Input}, Signal{ID: "y", Type: Input}, false},
		{"unset left", Signal{ID: "x", Type: Unset}, Signal{ID: "x", Type: Input}, false},
		{"unset both", Signal{ID: "x", Type: Unset}, Signal{ID: "x", Type: Unset}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Equal(tt.b); got != tt.want {
				t.Errorf("Equal() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSignalEquivalent(t *testing.T) {
	tests := []struct {
		name string
		a, b Signal
		want bool
	}{
		{"input output", Signal{ID: "x", Type: Input}, Signal{ID: "x", Type: Output}, true},
		{"internal input", Signal{ID: "x", Type: Internal}, Signal{ID: "x", Type: Input}, true},
		{"output internal", Signal{ID: "x", Type: Output}, Signal{ID: "x", Type: Internal}, true},
		{"different id", Signal{ID: "x", Type: Input}, Signal{ID: "y", Type: Output}, false},
		{"always-true vs input", Signal{ID: "x", Type: AlwaysTrue}, Signal{ID: "x", Type: Input}, false},
		{"unset", Signal{ID: "x", Type: Input}, Signal{ID: "x", Type: Unset}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Equivalent(tt.b); got != tt.want {
				t.Errorf("Equivalent() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCompositeComparison(t *testing.T) {
	a := Signal{ID: "a", Type: Input}
	b := Signal{ID: "b", Type: Input}

	ab := Signal{ID: "0&1", Type: Composite, Operator: And, Terms: []Term{{a, High}, {b, Low}}}
	ba := Signal{ID: "1&0", Type: Composite, Operator: And, Terms: []Term{{b, Low}, {a, High}}}
	if !ab.Equal(ba) {
		t.Error("Composites with the same constituents in any order should be equal")
	}

	// Polarity matters
	abHigh := Signal{ID: "0&1", Type: Composite, Operator: And, Terms: []Term{{a, High}, {b, High}}}
	if ab.Equal(abHigh) {
		t.Error("Composites with different constituent polarity should differ")
	}

	// Containment is checked both ways
	onlyA := Signal{ID: "0", Type: Composite, Operator: And, Terms: []Term{{a, High}}}
	if ab.Equal(onlyA) || onlyA.Equal(ab) {
		t.Error("A composite holding a subset of constituents should not be equal")
	}

	// Same constituents under a different operator are a different guard
	orAB := Signal{ID: "0|1", Type: Composite, Operator: Or, Terms: []Term{{a, High}, {b, Low}}}
	if ab.Equivalent(orAB) {
		t.Error("AND and OR composites should not be equivalent")
	}
}

func TestSignalTypeText(t *testing.T) {
	data, err := json.Marshal(Signal{ID: "x", Type: AlwaysTrue})
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	var back Signal
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if back.Type != AlwaysTrue {
		t.Errorf("Expected always-true after round trip, got %s", back.Type)
	}

	var bad SignalType
	if err := bad.UnmarshalText([]byte("bogus")); err == nil {
		t.Error("Expected error for unknown signal type")
	}
}

func TestSignalClone(t *testing.T) {
	orig := Signal{ID: "c", Type: Composite, Terms: []Term{{Signal{ID: "a", Type: Input}, High}}}
	c := orig.Clone()
	c.Terms[0].Signal.ID = "changed"

	if orig.Terms[0].Signal.ID != "a" {
		t.Error("Clone should not share constituent storage")
	}
}

func TestSignalEventNegate(t *testing.T) {
	if Low.Negate() != High || High.Negate() != Low {
		t.Error("Negate should flip polarity")
	}
}
