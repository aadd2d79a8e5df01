package automaton

// CanComposeWith reports whether other can be composed with a.
func (a *Automaton) CanComposeWith(other *Automaton) bool {
	return a.CheckCompatibility(other) == nil
}

// CheckCompatibility returns a *CompatibilityError naming the first signal
// pair that rules out composition, or nil. Pairs are only checked when the
// IDs match. The receiver plays the role of the second operand: the
// composition is other || a.
func (a *Automaton) CheckCompatibility(other *Automaton) error {
	for _, own := range a.Signals {
		for _, theirs := range other.Signals {
			if own.ID != theirs.ID {
				continue
			}
			if err := checkPair(own, theirs); err != nil {
				return err
			}
		}
	}
	return nil
}

func checkPair(own, theirs Signal) error {
	switch {
	case own.Type == Internal:
		return &CompatibilityError{SignalID: own.ID, Condition: 1, Reason: "internal signal also used by the other automaton"}
	case own.Type == Input && theirs.Type == Input:
		return &CompatibilityError{SignalID: own.ID, Condition: 2, Reason: "input of both automata"}
	case own.Type == Output && theirs.Type == Output:
		return &CompatibilityError{SignalID: own.ID, Condition: 3, Reason: "output of both automata"}
	case theirs.Type == Internal:
		return &CompatibilityError{SignalID: own.ID, Condition: 4, Reason: "internal signal of the other automaton"}
	}
	return nil
}

func sharedPair(x, y SignalType) bool {
	return (x == Input && y == Output) || (x == Output && y == Input)
}
