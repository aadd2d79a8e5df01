package automaton

import (
	"errors"
	"fmt"
)

// Common sentinel errors
var (
	ErrIncompatible    = errors.New("automata are not composable")
	ErrUnknownState    = errors.New("unknown state")
	ErrUnknownSignal   = errors.New("unknown signal")
	ErrDuplicateState  = errors.New("duplicate state")
	ErrDuplicateSignal = errors.New("duplicate signal")
	ErrNoInitialState  = errors.New("no initial state")
	ErrUnsetComparison = errors.New("signal type not set")
)

// Error provides structured error information for automaton operations.
type Error struct {
	Op        string // Operation that failed (e.g., "new", "compose", "prune")
	Automaton string // Name of the automaton, if known
	Entity    string // Entity type (e.g., "state", "signal", "transition")
	ID        string // Entity ID (if applicable)
	Cause     error  // Underlying error
	Context   string // Additional context
}

// Error implements the error interface.
func (e *Error) Error() string {
	op := e.Op
	if e.Automaton != "" {
		op = fmt.Sprintf("%s %s", e.Op, e.Automaton)
	}
	switch {
	case e.ID != "" && e.Context != "":
		return fmt.Sprintf("%s: %s %q (%s): %v", op, e.Entity, e.ID, e.Context, e.Cause)
	case e.ID != "":
		return fmt.Sprintf("%s: %s %q: %v", op, e.Entity, e.ID, e.Cause)
	case e.Context != "":
		return fmt.Sprintf("%s (%s): %v", op, e.Context, e.Cause)
	}
	return fmt.Sprintf("%s: %v", op, e.Cause)
}

// Unwrap returns the underlying cause for error chain support.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether the target error matches this error or its cause.
func (e *Error) Is(target error) bool {
	if target == nil {
		return false
	}
	return errors.Is(e.Cause, target)
}

// ErrorBuilder provides a fluent interface for building Errors.
type ErrorBuilder struct {
	err Error
}

// NewError creates a new error builder with the given operation.
func NewError(op string) *ErrorBuilder {
	return &ErrorBuilder{err: Error{Op: op}}
}

// Automaton sets the name of the automaton the operation ran on.
func (b *ErrorBuilder) Automaton(name string) *ErrorBuilder {
	b.err.Automaton = name
	return b
}

// State sets the entity to "state" with the given ID.
func (b *ErrorBuilder) State(id string) *ErrorBuilder {
	b.err.Entity = "state"
	b.err.ID = id
	return b
}

// Signal sets the entity to "signal" with the given ID.
func (b *ErrorBuilder) Signal(id string) *ErrorBuilder {
	b.err.Entity = "signal"
	b.err.ID = id
	return b
}

// Context sets additional context information.
func (b *ErrorBuilder) Context(ctx string) *ErrorBuilder {
	b.err.Context = ctx
	return b
}

// Cause sets the underlying error cause.
func (b *ErrorBuilder) Cause(err error) *ErrorBuilder {
	b.err.Cause = err
	return b
}

// Err returns the error as an error interface.
func (b *ErrorBuilder) Err() error {
	return &b.err
}

// CompatibilityError names the signal that makes two automata
// non-composable and which of the four rules it breaks.
type CompatibilityError struct {
	SignalID  string
	Condition int
	Reason    string
}

// Error implements the error interface.
func (e *CompatibilityError) Error() string {
	return fmt.Sprintf("signal %q: %s (condition %d)", e.SignalID, e.Reason, e.Condition)
}

// Unwrap lets errors.Is match ErrIncompatible.
func (e *CompatibilityError) Unwrap() error {
	return ErrIncompatible
}
