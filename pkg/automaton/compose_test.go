package automaton

import (
	"errors"
	"testing"

	"github.com/dd0wney/capsl/pkg/logging"
	"github.com/dd0wney/capsl/pkg/metrics"
)

// TestComposeWithoutTransitions collapses the shared signal even when no
// transition uses it.
func TestComposeWithoutTransitions(t *testing.T) {
	a := mustNew(t, "A", []State{{ID: "s0", Initial: true}}, []Signal{{ID: "x", Type: Output}}, nil)
	b := mustNew(t, "B", []State{{ID: "t0", Initial: true}}, []Signal{{ID: "x", Type: Input}}, nil)

	p, err := Compose(a, b)
	if err != nil {
		t.Fatalf("Compose failed: %v", err)
	}

	if len(p.States) != 1 || p.States[0].ID != "s0t0" || !p.States[0].Initial {
		t.Fatalf("Expected single initial state s0t0, got %+v", p.States)
	}
	if len(p.Signals) != 1 || p.Signals[0].Type != Internal {
		t.Errorf("Expected x collapsed to internal, got %+v", p.Signals)
	}
	if len(p.Transitions) != 0 {
		t.Errorf("Expected no transitions, got %d", len(p.Transitions))
	}
	if len(p.Table) != 1 || len(p.Table[0]) != 2 {
		t.Fatalf("Expected 1x2 table, got %v", p.Table)
	}
	for _, cell := range p.Table[0] {
		if len(cell) != 1 || cell[0] != NoTransition {
			t.Errorf("Expected empty cell, got %v", cell)
		}
	}
	if p.Name != "A||B" {
		t.Errorf("Expected product name A||B, got %s", p.Name)
	}
}

// TestComposeSharedTransition synchronises both sides and drops the
// interleaved states nobody reaches.
func TestComposeSharedTransition(t *testing.T) {
	a := mustNew(t, "A",
		[]State{{ID: "s0", Initial: true}, {ID: "s1"}},
		[]Signal{{ID: "x", Type: Output}},
		[]Transition{NewTransition("s0", "x", "s1", High)},
	)
	b := mustNew(t, "B",
		[]State{{ID: "t0", Initial: true}, {ID: "t1"}},
		[]Signal{{ID: "x", Type: Input}},
		[]Transition{NewTransition("t0", "x", "t1", High)},
	)

	p, err := Compose(a, b)
	if err != nil {
		t.Fatalf("Compose failed: %v", err)
	}

	ids := stateIDs(p)
	if !ids["s0t0"] || !ids["s1t1"] {
		t.Errorf("Expected s0t0 and s1t1, got %v", ids)
	}
	if ids["s0t1"] || ids["s1t0"] {
		t.Errorf("Cross states should be absent, got %v", ids)
	}

	if len(p.Transitions) != 1 {
		t.Fatalf("Expected 1 transition, got %d", len(p.Transitions))
	}
	tr := p.Transitions[0]
	if tr.Current.ID != "s0t0" || tr.Next.ID != "s1t1" || tr.Event != High {
		t.Errorf("Unexpected transition %s -> %s (%s)", tr.Current.ID, tr.Next.ID, tr.Event)
	}
	if tr.Signal.ID != "x" || tr.Signal.Type != Internal {
		t.Errorf("Expected internal x label, got %v", tr.Signal)
	}
	if p.NumIllegal != 0 {
		t.Errorf("Expected no illegal states, got %d", p.NumIllegal)
	}
	if !tableConsistent(p) {
		t.Error("Table inconsistent with transitions")
	}
}

// TestComposeIllegalState flags a state where one side emits y and the
// other cannot take it.
func TestComposeIllegalState(t *testing.T) {
	a := mustNew(t, "A",
		[]State{{ID: "s0", Initial: true}, {ID: "s1"}},
		[]Signal{{ID: "a", Type: Output}, {ID: "y", Type: Output}},
		[]Transition{
			NewTransition("s0", "a", "s1", High),
			NewTransition("s1", "y", "s0", High),
		},
	)
	b := mustNew(t, "B",
		[]State{{ID: "t0", Initial: true}, {ID: "t1"}},
		[]Signal{{ID: "a", Type: Input}, {ID: "y", Type: Input}},
		[]Transition{
			NewTransition("t0", "a", "t1", High),
			NewTransition("t1", "a", "t1", High),
			NewTransition("t0", "y", "t0", High),
		},
	)

	p, err := Compose(a, b)
	if err != nil {
		t.Fatalf("Compose failed: %v", err)
	}

	st, ok := findState(p, "s1t1")
	if !ok {
		t.Fatalf("Expected s1t1 in product, got %v", stateIDs(p))
	}
	if !st.Illegal {
		t.Error("s1 emits y but t1 has no y input enabled; s1t1 should be illegal")
	}

	legal, _ := findState(p, "s0t0")
	if legal.Illegal {
		t.Error("s0t0 should be legal")
	}

	illegal := p.IllegalStates()
	if p.NumIllegal != 1 || len(illegal) != 1 || illegal[0].ID != "s1t1" {
		t.Errorf("Expected exactly s1t1 illegal, got %d: %v", p.NumIllegal, illegal)
	}
}

func TestComposeInterleaving(t *testing.T) {
	a := mustNew(t, "A",
		[]State{{ID: "s0", Initial: true}, {ID: "s1"}},
		[]Signal{{ID: "p", Type: Internal}},
		[]Transition{NewTransition("s0", "p", "s1", High)},
	)
	b := mustNew(t, "B",
		[]State{{ID: "t0", Initial: true}, {ID: "t1"}},
		[]Signal{{ID: "q", Type: Output}},
		[]Transition{NewTransition("t0", "q", "t1", Low)},
	)

	p, err := Compose(a, b)
	if err != nil {
		t.Fatalf("Compose failed: %v", err)
	}

	// Full diamond: both orders of p and q
	if len(p.States) != 4 {
		t.Errorf("Expected 4 states, got %v", stateIDs(p))
	}
	if len(p.Transitions) != 4 {
		t.Errorf("Expected 4 transitions, got %d", len(p.Transitions))
	}
	if len(p.Signals) != 2 {
		t.Errorf("Expected 2 signals, got %d", len(p.Signals))
	}
	if !tableConsistent(p) {
		t.Error("Table inconsistent with transitions")
	}
}

func TestComposeIncompatible(t *testing.T) {
	tests := []struct {
		name      string
		aType     SignalType
		bType     SignalType
		condition int
	}{
		{"internal in B", Input, Internal, 1},
		{"both inputs", Input, Input, 2},
		{"both outputs", Output, Output, 3},
		{"internal in A", Internal, Output, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := mustNew(t, "A", []State{{ID: "s0", Initial: true}}, []Signal{{ID: "x", Type: tt.aType}}, nil)
			b := mustNew(t, "B", []State{{ID: "t0", Initial: true}}, []Signal{{ID: "x", Type: tt.bType}}, nil)

			if b.CanComposeWith(a) {
				t.Error("Expected CanComposeWith to be false")
			}

			_, err := Compose(a, b)
			if !errors.Is(err, ErrIncompatible) {
				t.Fatalf("Expected ErrIncompatible, got %v", err)
			}
			var ce *CompatibilityError
			if !errors.As(err, &ce) {
				t.Fatalf("Expected CompatibilityError, got %T", err)
			}
			if ce.Condition != tt.condition || ce.SignalID != "x" {
				t.Errorf("Expected condition %d on x, got %d on %s", tt.condition, ce.Condition, ce.SignalID)
			}
		})
	}
}

func TestCanComposeWithDisjointAlphabets(t *testing.T) {
	a := mustNew(t, "A", []State{{ID: "s0", Initial: true}}, []Signal{{ID: "x", Type: Internal}}, nil)
	b := mustNew(t, "B", []State{{ID: "t0", Initial: true}}, []Signal{{ID: "y", Type: Internal}}, nil)

	if !a.CanComposeWith(b) || !b.CanComposeWith(a) {
		t.Error("Automata without common signal IDs are always composable")
	}
}

func TestComposeDoesNotModifyOperands(t *testing.T) {
	a := mustNew(t, "A",
		[]State{{ID: "s0", Initial: true}, {ID: "s1"}},
		[]Signal{{ID: "x", Type: Output}},
		[]Transition{NewTransition("s0", "x", "s1", High)},
	)
	b := mustNew(t, "B",
		[]State{{ID: "t0", Initial: true}},
		[]Signal{{ID: "x", Type: Input}},
		[]Transition{NewTransition("t0", "x", "t0", High)},
	)

	if _, err := Compose(a, b); err != nil {
		t.Fatalf("Compose failed: %v", err)
	}

	if a.Signals[0].Type != Output || a.Transitions[0].Signal.Type != Output {
		t.Error("Operand A should keep its output typing")
	}
	if b.Signals[0].Type != Input || b.Transitions[0].Signal.Type != Input {
		t.Error("Operand B should keep its input typing")
	}
}

func TestComposeStateIDCollision(t *testing.T) {
	a := mustNew(t, "A", []State{{ID: "s1", Initial: true}, {ID: "s", Initial: true}}, nil, nil)
	b := mustNew(t, "B", []State{{ID: "0", Initial: true}, {ID: "10", Initial: true}}, nil, nil)

	mem := logging.NewMemoryLogger(logging.DebugLevel)
	p, err := Compose(a, b, WithLogger(mem))
	if err != nil {
		t.Fatalf("Compose failed: %v", err)
	}

	// "s1"+"0" and "s"+"10" are distinct parent pairs
	if len(p.States) != 4 {
		t.Fatalf("Expected 4 distinct states, got %v", stateIDs(p))
	}
	ids := stateIDs(p)
	if !ids["s10"] || !ids["s10#1"] {
		t.Errorf("Expected s10 and s10#1, got %v", ids)
	}
	if mem.Count(logging.WarnLevel) == 0 {
		t.Error("Expected a collision warning")
	}
}

func TestComposeConflictingSignalWarns(t *testing.T) {
	a := mustNew(t, "A", []State{{ID: "s0", Initial: true}}, []Signal{{ID: "x", Type: Unset}}, nil)
	b := mustNew(t, "B", []State{{ID: "t0", Initial: true}}, []Signal{{ID: "x", Type: Unset}}, nil)

	mem := logging.NewMemoryLogger(logging.DebugLevel)
	p, err := Compose(a, b, WithLogger(mem))
	if err != nil {
		t.Fatalf("Compose failed: %v", err)
	}

	if len(p.Signals) != 1 {
		t.Errorf("Signal IDs must stay unique, got %d signals", len(p.Signals))
	}
	if mem.Count(logging.WarnLevel) == 0 {
		t.Error("Comparing unset signals should log a warning")
	}
}

func TestComposeCompositeIDCollision(t *testing.T) {
	and := func(x, y Signal) Signal {
		return Signal{ID: "0&1", Type: Composite, Operator: And, Terms: []Term{
			{Signal: x, Event: High},
			{Signal: y, Event: High},
		}}
	}
	outA, outB := Signal{ID: "a", Type: Output}, Signal{ID: "b", Type: Output}
	inC, inD := Signal{ID: "c", Type: Input}, Signal{ID: "d", Type: Input}

	a := mustNew(t, "A",
		[]State{{ID: "s0", Initial: true}, {ID: "s1"}},
		[]Signal{outA, outB, and(outA, outB)},
		[]Transition{NewTransition("s0", "0&1", "s1", High)},
	)
	b := mustNew(t, "B",
		[]State{{ID: "t0", Initial: true}, {ID: "t1"}},
		[]Signal{inC, inD, and(inC, inD)},
		[]Transition{NewTransition("t0", "0&1", "t1", High)},
	)

	mem := logging.NewMemoryLogger(logging.DebugLevel)
	p, err := Compose(a, b, WithLogger(mem))
	if err != nil {
		t.Fatalf("Compose failed: %v", err)
	}

	kept, ok := findSignal(p, "0&1")
	if !ok || kept.Terms[0].Signal.ID != "a" {
		t.Fatalf("Expected a's composite under its own ID, got %v", p.Signals)
	}
	renamed, ok := findSignal(p, "0&1#1")
	if !ok {
		t.Fatalf("Expected b's composite under a suffixed ID, got %v", p.Signals)
	}
	if renamed.Terms[0].Signal.ID != "c" || renamed.Terms[1].Signal.ID != "d" {
		t.Errorf("Renamed composite should hold c&d, got %s", renamed)
	}

	// b's move t0 -> t1 must keep its own guard
	for _, from := range []string{"s0", "s1"} {
		if !hasEdge(p, from+"t0", "0&1#1", from+"t1", High) {
			t.Errorf("Expected %st0 -> %st1 on c&d", from, from)
		}
		if hasEdge(p, from+"t0", "0&1", from+"t1", High) {
			t.Errorf("%st0 -> %st1 is labelled with a's composite", from, from)
		}
	}
	for _, tr := range p.Transitions {
		if tr.Signal.ID == "0&1" && tr.Signal.Terms[0].Signal.ID != "a" {
			t.Errorf("Transition %s -> %s carries the wrong terms", tr.Current.ID, tr.Next.ID)
		}
	}
	if mem.Count(logging.WarnLevel) == 0 {
		t.Error("Expected a rename warning")
	}
	if !tableConsistent(p) {
		t.Error("Table inconsistent after composition")
	}
}

func TestComposeEquivalentCompositesShareASignal(t *testing.T) {
	x := Signal{ID: "x", Type: Output}
	y := Signal{ID: "y", Type: Input}
	xy := Signal{ID: "x&y", Type: Composite, Operator: And, Terms: []Term{
		{Signal: x, Event: High},
		{Signal: y, Event: Low},
	}}
	yx := Signal{ID: "!y&x", Type: Composite, Operator: And, Terms: []Term{
		{Signal: y, Event: Low},
		{Signal: x, Event: High},
	}}

	a := mustNew(t, "A", []State{{ID: "s0", Initial: true}, {ID: "s1"}},
		[]Signal{{ID: "p", Type: Output}, xy},
		[]Transition{NewTransition("s0", "x&y", "s1", High)},
	)
	b := mustNew(t, "B", []State{{ID: "t0", Initial: true}, {ID: "t1"}},
		[]Signal{{ID: "q", Type: Input}, yx},
		[]Transition{NewTransition("t0", "!y&x", "t1", High)},
	)

	p, err := Compose(a, b)
	if err != nil {
		t.Fatalf("Compose failed: %v", err)
	}
	if _, ok := findSignal(p, "!y&x"); ok {
		t.Errorf("Equivalent composites should collapse, got %v", p.Signals)
	}
	if !hasEdge(p, "s0t0", "x&y", "s0t1", High) {
		t.Error("Expected b's move to use the equivalent product composite")
	}
}

func TestComposeRecordsMetrics(t *testing.T) {
	a := mustNew(t, "A", []State{{ID: "s0", Initial: true}}, []Signal{{ID: "x", Type: Output}}, nil)
	b := mustNew(t, "B", []State{{ID: "t0", Initial: true}}, []Signal{{ID: "x", Type: Output}}, nil)

	reg := metrics.NewRegistry()
	if _, err := Compose(a, b, WithMetrics(reg)); err == nil {
		t.Fatal("Expected incompatible composition")
	}

	counter, err := reg.CompositionsTotal.GetMetricWithLabelValues(metrics.StatusIncompatible)
	if err != nil {
		t.Fatalf("Failed to get metric: %v", err)
	}
	if got := testCounterValue(t, counter); got != 1 {
		t.Errorf("Expected 1 incompatible composition, got %v", got)
	}
}
