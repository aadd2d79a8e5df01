package ingest

import (
	"testing"

	"github.com/dd0wney/capsl/pkg/automaton"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var guardSignals = []automaton.Signal{
	{ID: "req", Type: automaton.Unset, Index: 0},
	{ID: "ack", Type: automaton.Unset, Index: 1},
	{ID: "req&ack", Type: automaton.Composite, Index: 2},
}

func TestParseGuardAtomic(t *testing.T) {
	tests := []struct {
		expr  string
		id    string
		event automaton.SignalEvent
	}{
		{"req", "req", automaton.High},
		{"!req", "req", automaton.Low},
		{"1", "ack", automaton.High},
		{"!1", "ack", automaton.Low},
	}

	for _, tt := range tests {
		sig, event, err := ParseGuard(tt.expr, guardSignals)
		require.NoError(t, err, tt.expr)
		assert.Equal(t, tt.id, sig.ID, tt.expr)
		assert.Equal(t, tt.event, event, tt.expr)
	}
}

func TestParseGuardComposite(t *testing.T) {
	sig, event, err := ParseGuard("0&!1", guardSignals)
	require.NoError(t, err)

	assert.Equal(t, automaton.High, event)
	assert.Equal(t, "req&!ack", sig.ID)
	assert.Equal(t, automaton.Composite, sig.Type)
	assert.Equal(t, automaton.And, sig.Operator)
	require.Len(t, sig.Terms, 2)
	assert.Equal(t, "req", sig.Terms[0].Signal.ID)
	assert.Equal(t, automaton.High, sig.Terms[0].Event)
	assert.Equal(t, "ack", sig.Terms[1].Signal.ID)
	assert.Equal(t, automaton.Low, sig.Terms[1].Event)

	sig, _, err = ParseGuard("!req|ack", guardSignals)
	require.NoError(t, err)
	assert.Equal(t, automaton.Or, sig.Operator)
}

func TestParseGuardAlwaysTrue(t *testing.T) {
	sig, _, err := ParseGuard("t", guardSignals)
	require.NoError(t, err)

	// Composites are not part of the tautology
	assert.Equal(t, "req|!req|ack|!ack", sig.ID)
	assert.Equal(t, automaton.AlwaysTrue, sig.Type)
	assert.Len(t, sig.Terms, 4)

	sig, _, err = ParseGuard("t", nil)
	require.NoError(t, err)
	assert.Equal(t, "t", sig.ID)
}

func TestParseGuardErrors(t *testing.T) {
	tests := []struct {
		expr string
		want error
	}{
		{"f", ErrFalseGuard},
		{"", ErrMalformedTransition},
		{"!", ErrMalformedTransition},
		{"(0&1)", ErrMalformedTransition},
		{"0&1|2", ErrMixedOperators},
		{"grant", ErrUnknownSignal},
		{"7", ErrUnknownSignal},
		{"2", ErrUnknownSignal}, // composites cannot be constituents
		{"0&nope", ErrUnknownSignal},
	}

	for _, tt := range tests {
		_, _, err := ParseGuard(tt.expr, guardSignals)
		assert.ErrorIs(t, err, tt.want, tt.expr)
	}
}
