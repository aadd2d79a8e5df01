package ingest

import (
	"strconv"
	"strings"

	"github.com/dd0wney/capsl/pkg/automaton"
)

// ParseGuard resolves a transition guard against a signal set. It accepts
//
//	name, !name   a signal taken high or low
//	N, !N         the same, by signal-set index
//	a&b&...       AND composite of the above
//	a|b|...       OR composite of the above
//	t             always true
//	f             never (ErrFalseGuard)
//
// Composite and always-true guards return a new signal that the caller
// adds to the set unless one with the same ID is already there. Their IDs
// are spelled with constituent names, so "0&!1" over {req, ack} becomes
// "req&!ack".
func ParseGuard(expr string, signals []automaton.Signal) (automaton.Signal, automaton.SignalEvent, error) {
	switch {
	case expr == "":
		return automaton.Signal{}, automaton.High, ErrMalformedTransition
	case expr == "f":
		return automaton.Signal{}, automaton.High, ErrFalseGuard
	case expr == "t":
		return alwaysTrue(signals), automaton.High, nil
	case strings.ContainsAny(expr, "()"):
		return automaton.Signal{}, automaton.High, ErrMalformedTransition
	}

	hasAnd := strings.Contains(expr, "&")
	hasOr := strings.Contains(expr, "|")
	if hasAnd && hasOr {
		return automaton.Signal{}, automaton.High, ErrMixedOperators
	}
	if !hasAnd && !hasOr {
		return resolveToken(expr, signals)
	}

	op, sep := automaton.And, "&"
	if hasOr {
		op, sep = automaton.Or, "|"
	}

	var terms []automaton.Term
	var parts []string
	for _, tok := range strings.Split(expr, sep) {
		sig, event, err := resolveToken(tok, signals)
		if err != nil {
			return automaton.Signal{}, automaton.High, err
		}
		terms = append(terms, automaton.Term{Signal: sig, Event: event})
		parts = append(parts, event.Prefix()+sig.ID)
	}

	return automaton.Signal{
		ID:       strings.Join(parts, sep),
		Type:     automaton.Composite,
		Operator: op,
		Terms:    terms,
	}, automaton.High, nil
}

// resolveToken matches a name first, then an index. Only atomic signals
// can be referenced.
func resolveToken(tok string, signals []automaton.Signal) (automaton.Signal, automaton.SignalEvent, error) {
	event := automaton.High
	if strings.HasPrefix(tok, "!") {
		tok, event = tok[1:], automaton.Low
	}
	if tok == "" {
		return automaton.Signal{}, event, ErrMalformedTransition
	}

	for _, sig := range signals {
		if sig.ID == tok && atomic(sig) {
			return sig, event, nil
		}
	}
	if i, err := strconv.Atoi(tok); err == nil && i >= 0 && i < len(signals) && atomic(signals[i]) {
		return signals[i], event, nil
	}
	return automaton.Signal{}, event, ErrUnknownSignal
}

func atomic(sig automaton.Signal) bool {
	return sig.Type != automaton.Composite && sig.Type != automaton.AlwaysTrue
}

// alwaysTrue builds the tautology over the atomic signals, e.g. req|!req|ack|!ack.
func alwaysTrue(signals []automaton.Signal) automaton.Signal {
	var parts []string
	var terms []automaton.Term
	for _, sig := range signals {
		if !atomic(sig) {
			continue
		}
		parts = append(parts, sig.ID, "!"+sig.ID)
		terms = append(terms,
			automaton.Term{Signal: sig, Event: automaton.High},
			automaton.Term{Signal: sig, Event: automaton.Low},
		)
	}

	id := strings.Join(parts, "|")
	if id == "" {
		id = "t"
	}
	return automaton.Signal{
		ID:       id,
		Type:     automaton.AlwaysTrue,
		Operator: automaton.Or,
		Terms:    terms,
	}
}
