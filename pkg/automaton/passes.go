package automaton

import (
	"strings"

	"github.com/dd0wney/capsl/pkg/algorithms"
	"github.com/dd0wney/capsl/pkg/logging"
)

// Pass is a post-processing step over a finished automaton.
type Pass func(*Automaton) error

// Apply runs the passes in order, then refreshes counts, snapshots and the
// transition table. It stops at the first failing pass.
func (a *Automaton) Apply(passes ...Pass) error {
	for _, pass := range passes {
		if err := pass(a); err != nil {
			a.Refresh()
			return err
		}
	}
	a.Refresh()
	return nil
}

// ResetPass returns a pass for rule monitors. It marks as illegal every
// state whose only outgoing transition is an always-true self-loop, then
// gives every other non-initial state a transition back to the initial
// state on the negation of its outgoing guards.
func ResetPass(logger logging.Logger) Pass {
	logger = logging.OrNop(logger)

	return func(a *Automaton) error {
		a.reindex()

		initial := -1
		for i, st := range a.States {
			if st.Initial {
				initial = i
				break
			}
		}
		if initial < 0 {
			return NewError("reset pass").Automaton(a.Name).Cause(ErrNoInitialState).Err()
		}

		outgoing := make([][]Transition, len(a.States))
		for _, t := range a.Transitions {
			row := a.mustState(t.Current.ID)
			outgoing[row] = append(outgoing[row], t)
		}

		for i, out := range outgoing {
			if len(out) == 1 && out[0].Next.ID == a.States[i].ID && out[0].Signal.Type == AlwaysTrue {
				a.States[i].Illegal = true
				logger.Debug("illegal sink", logging.Automaton(a.Name), logging.StateID(a.States[i].ID))
			}
		}

		added := 0
		for i, out := range outgoing {
			st := a.States[i]
			if st.Illegal || st.Initial || len(out) == 0 {
				continue
			}

			label, event := a.resetGuard(out)
			a.Transitions = append(a.Transitions, Transition{
				Index:   len(a.Transitions),
				Current: State{ID: st.ID, Index: i},
				Next:    State{ID: a.States[initial].ID, Index: initial},
				Signal:  label,
				Event:   event,
				Row:     NoTransition,
				Col:     NoTransition,
			})
			a.States[i].enable(label)
			added++
		}

		logger.Debug("reset transitions added", logging.Automaton(a.Name), logging.Count(added))
		return nil
	}
}

// resetGuard builds the negation of the disjunction of the given guards.
// A single guard is negated by flipping its polarity; anything else becomes
// a composite OR signal taken low. Composite guards stay nested as one
// term each, so !(a&b) is not flattened into !(a|b).
func (a *Automaton) resetGuard(out []Transition) (Signal, SignalEvent) {
	if len(out) == 1 {
		if i, ok := a.signalIndex[out[0].Signal.ID]; ok {
			return a.Signals[i], out[0].Event.Negate()
		}
	}

	terms := make([]Term, 0, len(out))
	parts := make([]string, 0, len(out))
	for _, t := range out {
		terms = append(terms, Term{Signal: t.Signal, Event: t.Event})
		if t.Signal.Type == Composite || t.Signal.Type == AlwaysTrue {
			parts = append(parts, t.Event.Prefix()+"("+t.Signal.ID+")")
			continue
		}
		parts = append(parts, t.Event.Prefix()+t.Signal.ID)
	}

	return a.AddSignal(Signal{
		ID:       strings.Join(parts, "|"),
		Type:     Composite,
		Operator: Or,
		Terms:    terms,
	}), Low
}

// TrapStates returns the states that can never leave a strongly connected
// component without accepting states. Illegal sinks are the usual case.
func (a *Automaton) TrapStates() []State {
	successors := make(map[string][]string, len(a.States))
	for _, t := range a.Transitions {
		successors[t.Current.ID] = append(successors[t.Current.ID], t.Next.ID)
	}
	next := func(id string) []string { return successors[id] }

	ids := make([]string, len(a.States))
	accepting := make(map[string]bool)
	for i, st := range a.States {
		ids[i] = st.ID
		if st.Accepting {
			accepting[st.ID] = true
		}
	}

	scc := algorithms.StronglyConnectedComponents(ids, next)
	trapped := make(map[string]bool)
	for _, comp := range scc.Components {
		if !scc.Closed(comp.ID, next) {
			continue
		}
		hasAccepting := false
		for _, id := range comp.Members {
			if accepting[id] {
				hasAccepting = true
				break
			}
		}
		if hasAccepting {
			continue
		}
		for _, id := range comp.Members {
			trapped[id] = true
		}
	}

	var out []State
	for _, st := range a.States {
		if trapped[st.ID] {
			out = append(out, st)
		}
	}
	return out
}
