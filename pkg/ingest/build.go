package ingest

import (
	"errors"
	"fmt"

	"github.com/dd0wney/capsl/pkg/automaton"
	"github.com/dd0wney/capsl/pkg/logging"
	"github.com/dd0wney/capsl/pkg/validation"
)

// Validate checks the definition's tags and the references between its
// lists.
func (d *ComponentDef) Validate() error {
	if err := validation.ValidateStruct(d); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidDefinition, err)
	}

	cv := validation.NewConfigValidator(d.Name)

	states := make(map[string]bool, len(d.States))
	for _, s := range d.States {
		states[s] = true
	}
	for _, s := range d.Initial {
		cv.Custom("initial", func() error { return knownState(states, s) })
	}
	for _, s := range d.Accepting {
		cv.Custom("accepting", func() error { return knownState(states, s) })
	}

	var names []string
	names = append(names, d.Inputs...)
	names = append(names, d.Outputs...)
	names = append(names, d.Internals...)
	names = append(names, d.Props...)
	cv.Unique("signals", names)

	if err := cv.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidDefinition, err)
	}
	return nil
}

func knownState(states map[string]bool, id string) error {
	if !states[id] {
		return fmt.Errorf("state %q is not declared", id)
	}
	return nil
}

// Build validates a definition and turns it into an automaton. The first
// initial state wins. Inputs, outputs and internals keep their types;
// rule propositions start unset. Transitions guarded by "f" are dropped.
func Build(def *ComponentDef, logger logging.Logger, opts ...automaton.Option) (*automaton.Automaton, error) {
	logger = logging.OrNop(logger).With(logging.Automaton(def.Name))

	if err := def.Validate(); err != nil {
		return nil, err
	}

	accepting := make(map[string]bool, len(def.Accepting))
	for _, s := range def.Accepting {
		accepting[s] = true
	}
	states := make([]automaton.State, len(def.States))
	for i, id := range def.States {
		states[i] = automaton.State{
			ID:        id,
			Initial:   id == def.Initial[0],
			Accepting: accepting[id],
		}
	}

	var signals []automaton.Signal
	add := func(ids []string, t automaton.SignalType) {
		for _, id := range ids {
			signals = append(signals, automaton.Signal{ID: id, Type: t, Index: len(signals)})
		}
	}
	add(def.Inputs, automaton.Input)
	add(def.Outputs, automaton.Output)
	add(def.Internals, automaton.Internal)
	add(def.Props, automaton.Unset)

	var transitions []automaton.Transition
	for _, raw := range def.Transitions {
		current, expr, next, ok := splitTransition(raw)
		if !ok {
			return nil, &ParseError{Source: def.Name, Text: raw, Cause: ErrMalformedTransition}
		}

		sig, event, err := ParseGuard(expr, signals)
		if errors.Is(err, ErrFalseGuard) {
			logger.Debug("dropping always-false transition", logging.String("transition", raw))
			continue
		}
		if err != nil {
			return nil, &ParseError{Source: def.Name, Text: raw, Cause: err}
		}

		if !hasSignal(signals, sig.ID) {
			sig.Index = len(signals)
			signals = append(signals, sig)
		}
		transitions = append(transitions, automaton.NewTransition(current, sig.ID, next, event))
	}

	opts = append([]automaton.Option{automaton.WithLogger(logger), automaton.WithName(def.Name)}, opts...)
	return automaton.New(states, signals, transitions, opts...)
}

func hasSignal(signals []automaton.Signal, id string) bool {
	for _, s := range signals {
		if s.ID == id {
			return true
		}
	}
	return false
}
