package automaton

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func mustNew(t *testing.T, name string, states []State, signals []Signal, transitions []Transition) *Automaton {
	t.Helper()
	a, err := New(states, signals, transitions, WithName(name))
	if err != nil {
		t.Fatalf("New(%s) failed: %v", name, err)
	}
	return a
}

func stateIDs(a *Automaton) map[string]bool {
	ids := make(map[string]bool, len(a.States))
	for _, st := range a.States {
		ids[st.ID] = true
	}
	return ids
}

func findState(a *Automaton, id string) (State, bool) {
	for _, st := range a.States {
		if st.ID == id {
			return st, true
		}
	}
	return State{}, false
}

func findSignal(a *Automaton, id string) (Signal, bool) {
	for _, sig := range a.Signals {
		if sig.ID == id {
			return sig, true
		}
	}
	return Signal{}, false
}

// tableConsistent reports whether every transition appears in its table cell.
func tableConsistent(a *Automaton) bool {
	for _, tr := range a.Transitions {
		row, ok := a.StateIndex(tr.Current.ID)
		if !ok || row != tr.Row {
			return false
		}
		next, ok := a.StateIndex(tr.Next.ID)
		if !ok {
			return false
		}
		sig, ok := a.SignalIndex(tr.Signal.ID)
		if !ok || Column(sig, tr.Event) != tr.Col {
			return false
		}
		found := false
		for _, n := range a.Table[row][tr.Col] {
			if n == next {
				found = true
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func testCounterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var metric dto.Metric
	if err := c.Write(&metric); err != nil {
		t.Fatalf("Failed to write metric: %v", err)
	}
	return metric.Counter.GetValue()
}
