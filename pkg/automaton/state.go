package automaton

// State is a vertex of an automaton. Enabled lists the signals that label
// at least one outgoing transition.
type State struct {
	ID        string   `json:"id"`
	Index     int      `json:"index"`
	Initial   bool     `json:"initial,omitempty"`
	Accepting bool     `json:"accepting,omitempty"`
	Illegal   bool     `json:"illegal,omitempty"`
	Enabled   []Signal `json:"enabled,omitempty"`
}

// Clone returns a deep copy of the state.
func (s State) Clone() State {
	if s.Enabled != nil {
		enabled := make([]Signal, len(s.Enabled))
		for i, sig := range s.Enabled {
			enabled[i] = sig.Clone()
		}
		s.Enabled = enabled
	}
	return s
}

// Enables reports whether a signal with the given ID is enabled.
func (s *State) Enables(id string) bool {
	for _, sig := range s.Enabled {
		if sig.ID == id {
			return true
		}
	}
	return false
}

func (s *State) enable(sig Signal) {
	if !s.Enables(sig.ID) {
		s.Enabled = append(s.Enabled, sig.Clone())
	}
}

// Transition is a directed edge firing when Signal takes Event. Current
// and Next are snapshots of the endpoint states; Row and Col locate the
// edge in the transition table once it has been built.
type Transition struct {
	Index   int         `json:"index"`
	Current State       `json:"current"`
	Next    State       `json:"next"`
	Signal  Signal      `json:"signal"`
	Event   SignalEvent `json:"event"`
	Row     int         `json:"row"`
	Col     int         `json:"col"`
}

// NewTransition describes an edge by endpoint and signal IDs, for use
// with New.
func NewTransition(current, signal, next string, event SignalEvent) Transition {
	return Transition{
		Current: State{ID: current},
		Next:    State{ID: next},
		Signal:  Signal{ID: signal},
		Event:   event,
		Row:     NoTransition,
		Col:     NoTransition,
	}
}

// Column returns the table column for a signal index and polarity.
func Column(signalIndex int, event SignalEvent) int {
	return 2*signalIndex + int(event)
}
