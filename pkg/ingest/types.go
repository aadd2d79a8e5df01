package ingest

import (
	"errors"
	"fmt"

	"github.com/dd0wney/capsl/pkg/automaton"
)

// Kind distinguishes hand-written components from translated rules.
type Kind string

const (
	KindComponent Kind = "component"
	KindRule      Kind = "rule"
)

// Common sentinel errors
var (
	ErrMalformedIA         = errors.New("malformed interface automaton file")
	ErrMalformedHOA        = errors.New("malformed HOA automaton")
	ErrMalformedTransition = errors.New("malformed transition")
	ErrMixedOperators      = errors.New("guard mixes & and |")
	ErrFalseGuard          = errors.New("guard is always false")
	ErrInvalidDefinition   = errors.New("invalid automaton definition")
	ErrTranslatorFailed    = errors.New("rule translation failed")

	// ErrUnknownSignal is shared with the automaton package so callers can
	// match either layer.
	ErrUnknownSignal = automaton.ErrUnknownSignal
)

// ComponentDef is the raw, textual description of one automaton as read
// from an .ia file or a translated rule. Transitions use the form
// "current:guard>next".
type ComponentDef struct {
	Name        string   `json:"name" validate:"required"`
	Kind        Kind     `json:"kind" validate:"oneof=component rule"`
	States      []string `json:"states" validate:"required,min=1,max=4096,unique,dive,ident"`
	Initial     []string `json:"initial" validate:"required,min=1,dive,ident"`
	Accepting   []string `json:"accepting,omitempty" validate:"dive,ident"`
	Inputs      []string `json:"inputs,omitempty" validate:"unique,dive,ident"`
	Outputs     []string `json:"outputs,omitempty" validate:"unique,dive,ident"`
	Internals   []string `json:"internals,omitempty" validate:"unique,dive,ident"`
	Props       []string `json:"props,omitempty" validate:"unique,dive,ident"`
	Transitions []string `json:"transitions" validate:"dive,required"`
}

// ParseError locates a failure in a textual input.
type ParseError struct {
	Source string // file name or rule text
	Line   int    // 1-based, 0 when unknown
	Text   string // offending content
	Cause  error
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s:%d: %q: %v", e.Source, e.Line, e.Text, e.Cause)
	}
	return fmt.Sprintf("%s: %q: %v", e.Source, e.Text, e.Cause)
}

// Unwrap returns the underlying cause for error chain support.
func (e *ParseError) Unwrap() error {
	return e.Cause
}
