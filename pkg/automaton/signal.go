package automaton

import (
	"fmt"
	"strings"
)

// SignalType classifies a signal relative to the automaton that owns it.
type SignalType int

const (
	Input SignalType = iota
	Output
	Internal
	Composite
	Unset
	AlwaysTrue
)

var signalTypeNames = map[SignalType]string{
	Input:      "input",
	Output:     "output",
	Internal:   "internal",
	Composite:  "composite",
	Unset:      "unset",
	AlwaysTrue: "always-true",
}

func (t SignalType) String() string {
	if name, ok := signalTypeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("SignalType(%d)", int(t))
}

// MarshalText implements encoding.TextMarshaler.
func (t SignalType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *SignalType) UnmarshalText(text []byte) error {
	for k, name := range signalTypeNames {
		if name == string(text) {
			*t = k
			return nil
		}
	}
	return fmt.Errorf("unknown signal type %q", text)
}

// SignalEvent is the polarity a transition fires on.
type SignalEvent int

const (
	Low SignalEvent = iota
	High
)

func (e SignalEvent) String() string {
	if e == High {
		return "high"
	}
	return "low"
}

// Negate returns the opposite polarity.
func (e SignalEvent) Negate() SignalEvent {
	if e == High {
		return Low
	}
	return High
}

// Prefix is the guard notation for the polarity: "!" for low, "" for high.
func (e SignalEvent) Prefix() string {
	if e == Low {
		return "!"
	}
	return ""
}

// MarshalText implements encoding.TextMarshaler.
func (e SignalEvent) MarshalText() ([]byte, error) {
	return []byte(e.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (e *SignalEvent) UnmarshalText(text []byte) error {
	switch string(text) {
	case "low":
		*e = Low
	case "high":
		*e = High
	default:
		return fmt.Errorf("unknown signal event %q", text)
	}
	return nil
}

// LogicOperator joins the constituents of a composite signal.
type LogicOperator int

const (
	And LogicOperator = iota
	Or
)

func (o LogicOperator) String() string {
	if o == Or {
		return "|"
	}
	return "&"
}

// MarshalText implements encoding.TextMarshaler.
func (o LogicOperator) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (o *LogicOperator) UnmarshalText(text []byte) error {
	switch string(text) {
	case "&":
		*o = And
	case "|":
		*o = Or
	default:
		return fmt.Errorf("unknown logic operator %q", text)
	}
	return nil
}

// Term is one constituent of a composite signal.
type Term struct {
	Signal Signal      `json:"signal"`
	Event  SignalEvent `json:"event"`
}

// Signal is a named event line. Composite signals are boolean
// combinations of other signals, joined by Operator.
type Signal struct {
	ID       string        `json:"id"`
	Type     SignalType    `json:"type"`
	Index    int           `json:"index"`
	Operator LogicOperator `json:"operator,omitempty"`
	Terms    []Term        `json:"terms,omitempty"`
}

// Clone returns a deep copy of the signal.
func (s Signal) Clone() Signal {
	if s.Terms != nil {
		terms := make([]Term, len(s.Terms))
		for i, t := range s.Terms {
			terms[i] = Term{Signal: t.Signal.Clone(), Event: t.Event}
		}
		s.Terms = terms
	}
	return s
}

func (s Signal) String() string {
	if s.Type != Composite {
		return fmt.Sprintf("%s(%s)", s.ID, s.Type)
	}
	parts := make([]string, len(s.Terms))
	for i, t := range s.Terms {
		parts[i] = t.Event.Prefix() + t.Signal.ID
	}
	return strings.Join(parts, s.Operator.String())
}

// Equal reports whether two signals have the same ID and type. Composite
// signals are equal when they hold the same constituents.
func (s Signal) Equal(other Signal) bool {
	ok, _ := s.compare(other, false)
	return ok
}

// Equivalent is like Equal but lets input, output and internal signals of
// the same ID stand in for each other. This is how a component's output
// is recognised as another component's input.
func (s Signal) Equivalent(other Signal) bool {
	ok, _ := s.compare(other, true)
	return ok
}

// compare returns ErrUnsetComparison when either side has no type yet.
func (s Signal) compare(other Signal, loose bool) (bool, error) {
	if s.Type == Composite && other.Type == Composite {
		return sameTerms(s, other), nil
	}
	if s.Type == Unset || other.Type == Unset {
		return false, ErrUnsetComparison
	}
	if s.ID != other.ID {
		return false, nil
	}
	if s.Type == other.Type {
		return true, nil
	}
	return loose && interchangeable(s.Type, other.Type), nil
}

func interchangeable(a, b SignalType) bool {
	io := func(t SignalType) bool { return t == Input || t == Output || t == Internal }
	return io(a) && io(b)
}

// sameTerms compares constituents both ways, so neither side may carry a
// term the other lacks.
func sameTerms(a, b Signal) bool {
	if len(a.Terms) > 1 && len(b.Terms) > 1 && a.Operator != b.Operator {
		return false
	}
	return containsTerms(a.Terms, b.Terms) && containsTerms(b.Terms, a.Terms)
}

func containsTerms(haystack, needles []Term) bool {
	for _, n := range needles {
		found := false
		for _, h := range haystack {
			if h.Event == n.Event && h.Signal.ID == n.Signal.ID && h.Signal.Type == n.Signal.Type {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}
