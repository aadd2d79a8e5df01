package automaton

import "github.com/dd0wney/capsl/pkg/logging"

// ResolveSignals retypes every unset signal whose ID appears in reference
// with an input, output or internal type. Constituents of composite
// signals are resolved too, and the change is carried into transition
// labels and enabled-signal lists. It returns the number of signals
// resolved.
func (a *Automaton) ResolveSignals(reference []Signal, opts ...Option) int {
	o := newOptions(opts)

	types := make(map[string]SignalType, len(reference))
	for _, ref := range reference {
		switch ref.Type {
		case Input, Output, Internal:
			types[ref.ID] = ref.Type
		}
	}

	resolved := 0
	for i := range a.Signals {
		resolved += resolveSignal(&a.Signals[i], types)
	}

	a.Refresh()
	o.logger.Debug("signals resolved",
		logging.Automaton(a.Name),
		logging.Count(resolved),
		logging.Int("signals", len(a.Signals)),
	)
	return resolved
}

func resolveSignal(sig *Signal, types map[string]SignalType) int {
	n := 0
	if sig.Type == Unset {
		if t, ok := types[sig.ID]; ok {
			sig.Type = t
			n++
		}
	}
	for i := range sig.Terms {
		n += resolveSignal(&sig.Terms[i].Signal, types)
	}
	return n
}

// UnresolvedSignals returns the IDs of signals that are still unset.
func (a *Automaton) UnresolvedSignals() []string {
	var ids []string
	for _, sig := range a.Signals {
		if sig.Type == Unset {
			ids = append(ids, sig.ID)
		}
	}
	return ids
}
