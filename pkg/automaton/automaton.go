package automaton

import (
	"fmt"

	"github.com/dd0wney/capsl/pkg/logging"
)

// Automaton is an interface automaton with its derived transition table.
//
// The exported slices may be read freely. After changing them directly,
// call Refresh to restore the derived fields.
type Automaton struct {
	Name         string       `json:"name"`
	States       []State      `json:"states"`
	Signals      []Signal     `json:"signals"`
	Transitions  []Transition `json:"transitions"`
	Table        Table        `json:"table"`
	NumAccepting int          `json:"num_accepting"`
	NumIllegal   int          `json:"num_illegal"`

	stateIndex  map[string]int
	signalIndex map[string]int
}

// New builds an automaton from a state set, a signal set and a transition
// set. Transitions refer to states and signals by ID only; every other
// field is derived. Each state's enabled signals are extended with the
// signals of its outgoing transitions. Inputs are copied, never retained.
func New(states []State, signals []Signal, transitions []Transition, opts ...Option) (*Automaton, error) {
	o := newOptions(opts)
	a := &Automaton{Name: o.name}

	a.States = make([]State, len(states))
	for i, st := range states {
		a.States[i] = st.Clone()
		a.States[i].Index = i
	}
	a.Signals = make([]Signal, len(signals))
	for i, sig := range signals {
		a.Signals[i] = sig.Clone()
		a.Signals[i].Index = i
	}

	if err := a.checkUnique(); err != nil {
		return nil, err
	}
	a.reindex()

	a.Transitions = make([]Transition, 0, len(transitions))
	for _, t := range transitions {
		if err := a.AddTransition(t.Current.ID, t.Signal.ID, t.Next.ID, t.Event); err != nil {
			return nil, err
		}
	}

	a.Refresh()
	o.logger.Debug("automaton built",
		logging.Automaton(a.Name),
		logging.Int("states", len(a.States)),
		logging.Int("signals", len(a.Signals)),
		logging.Int("transitions", len(a.Transitions)),
	)
	return a, nil
}

func (a *Automaton) checkUnique() error {
	seen := make(map[string]bool, len(a.States))
	for _, st := range a.States {
		if seen[st.ID] {
			return NewError("new").Automaton(a.Name).State(st.ID).Cause(ErrDuplicateState).Err()
		}
		seen[st.ID] = true
	}
	seen = make(map[string]bool, len(a.Signals))
	for _, sig := range a.Signals {
		if seen[sig.ID] {
			return NewError("new").Automaton(a.Name).Signal(sig.ID).Cause(ErrDuplicateSignal).Err()
		}
		seen[sig.ID] = true
	}
	return nil
}

func (a *Automaton) reindex() {
	a.stateIndex = make(map[string]int, len(a.States))
	for i := range a.States {
		a.States[i].Index = i
		a.stateIndex[a.States[i].ID] = i
	}
	a.signalIndex = make(map[string]int, len(a.Signals))
	for i := range a.Signals {
		a.Signals[i].Index = i
		a.signalIndex[a.Signals[i].ID] = i
	}
}

// StateIndex returns the index of the state with the given ID.
func (a *Automaton) StateIndex(id string) (int, bool) {
	if a.stateIndex == nil {
		a.reindex()
	}
	i, ok := a.stateIndex[id]
	return i, ok
}

// SignalIndex returns the index of the signal with the given ID.
func (a *Automaton) SignalIndex(id string) (int, bool) {
	if a.signalIndex == nil {
		a.reindex()
	}
	i, ok := a.signalIndex[id]
	return i, ok
}

// mustState panics on an unknown ID. Transitions referring to states
// outside the state set are a broken invariant, not an input error.
func (a *Automaton) mustState(id string) int {
	i, ok := a.stateIndex[id]
	if !ok {
		panic(fmt.Sprintf("automaton %s: transition refers to unknown state %q", a.Name, id))
	}
	return i
}

func (a *Automaton) mustSignal(id string) int {
	i, ok := a.signalIndex[id]
	if !ok {
		panic(fmt.Sprintf("automaton %s: transition refers to unknown signal %q", a.Name, id))
	}
	return i
}

// AddSignal appends a signal unless one with the same ID exists, and
// returns the stored signal either way.
func (a *Automaton) AddSignal(sig Signal) Signal {
	if i, ok := a.SignalIndex(sig.ID); ok {
		return a.Signals[i]
	}
	sig = sig.Clone()
	sig.Index = len(a.Signals)
	a.Signals = append(a.Signals, sig)
	a.signalIndex[sig.ID] = sig.Index
	return sig
}

// AddTransition appends an edge between existing states on an existing
// signal and enables the signal in the source state. Call Refresh once
// all edges are in.
func (a *Automaton) AddTransition(current, signal, next string, event SignalEvent) error {
	from, ok := a.StateIndex(current)
	if !ok {
		return NewError("add transition").Automaton(a.Name).State(current).Cause(ErrUnknownState).Err()
	}
	to, ok := a.StateIndex(next)
	if !ok {
		return NewError("add transition").Automaton(a.Name).State(next).Cause(ErrUnknownState).Err()
	}
	sig, ok := a.SignalIndex(signal)
	if !ok {
		return NewError("add transition").Automaton(a.Name).Signal(signal).Cause(ErrUnknownSignal).Err()
	}

	a.Transitions = append(a.Transitions, Transition{
		Index:   len(a.Transitions),
		Current: State{ID: a.States[from].ID, Index: from},
		Next:    State{ID: a.States[to].ID, Index: to},
		Signal:  a.Signals[sig].Clone(),
		Event:   event,
		Row:     NoTransition,
		Col:     NoTransition,
	})
	a.States[from].enable(a.Signals[sig])
	return nil
}

// Refresh re-derives indices, counts, transition snapshots and the
// transition table after the sets have changed.
func (a *Automaton) Refresh() {
	a.reindex()
	a.syncSignals()
	a.syncTransitions()
	a.recount()
	a.BuildTransitionTable()
}

// syncSignals replaces every signal copy held by states and transitions
// with the current set entry of the same ID.
func (a *Automaton) syncSignals() {
	for i := range a.States {
		for j, sig := range a.States[i].Enabled {
			if k, ok := a.signalIndex[sig.ID]; ok {
				a.States[i].Enabled[j] = a.Signals[k].Clone()
			}
		}
	}
	for i := range a.Transitions {
		t := &a.Transitions[i]
		t.Signal = a.Signals[a.mustSignal(t.Signal.ID)].Clone()
	}
}

func (a *Automaton) syncTransitions() {
	for i := range a.Transitions {
		t := &a.Transitions[i]
		t.Index = i
		t.Current = a.States[a.mustState(t.Current.ID)].Clone()
		t.Next = a.States[a.mustState(t.Next.ID)].Clone()
	}
}

func (a *Automaton) recount() {
	a.NumAccepting, a.NumIllegal = 0, 0
	for _, st := range a.States {
		if st.Accepting {
			a.NumAccepting++
		}
		if st.Illegal {
			a.NumIllegal++
		}
	}
}

// InitialStates returns the states flagged initial.
func (a *Automaton) InitialStates() []State {
	var out []State
	for _, st := range a.States {
		if st.Initial {
			out = append(out, st)
		}
	}
	return out
}

// IllegalStates returns the states flagged illegal, in state order.
func (a *Automaton) IllegalStates() []State {
	var out []State
	for _, st := range a.States {
		if st.Illegal {
			out = append(out, st)
		}
	}
	return out
}

// Outgoing returns the indices of the transitions leaving a state.
func (a *Automaton) Outgoing(stateID string) []int {
	var out []int
	for i, t := range a.Transitions {
		if t.Current.ID == stateID {
			out = append(out, i)
		}
	}
	return out
}

// Clone returns a deep copy of the automaton.
func (a *Automaton) Clone() *Automaton {
	c := &Automaton{
		Name:         a.Name,
		NumAccepting: a.NumAccepting,
		NumIllegal:   a.NumIllegal,
		States:       make([]State, len(a.States)),
		Signals:      make([]Signal, len(a.Signals)),
		Transitions:  make([]Transition, len(a.Transitions)),
		Table:        make(Table, len(a.Table)),
	}
	for i, st := range a.States {
		c.States[i] = st.Clone()
	}
	for i, sig := range a.Signals {
		c.Signals[i] = sig.Clone()
	}
	for i, t := range a.Transitions {
		t.Current = t.Current.Clone()
		t.Next = t.Next.Clone()
		t.Signal = t.Signal.Clone()
		c.Transitions[i] = t
	}
	for r, row := range a.Table {
		c.Table[r] = make([][]int, len(row))
		for col, cell := range row {
			c.Table[r][col] = append([]int(nil), cell...)
		}
	}
	c.reindex()
	return c
}
