// Package export writes finished checkers for downstream code generation
// and for people.
package export

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/dd0wney/capsl/pkg/automaton"
	"github.com/golang/snappy"
	"github.com/google/uuid"
)

// Kinds of artifact entries
const (
	KindComponent = "component"
	KindRule      = "rule"
)

// Artifact is the hand-off format of a checker: every finished automaton
// with its transition table, plus the reference alphabet.
type Artifact struct {
	ID          string             `json:"id"`
	Name        string             `json:"name"`
	GeneratedAt time.Time          `json:"generated_at"`
	Reference   []automaton.Signal `json:"reference"`
	Entries     []Entry            `json:"entries"`
}

// Entry is one automaton of an artifact.
type Entry struct {
	Kind       string               `json:"kind"`
	TrapStates []string             `json:"trap_states,omitempty"`
	Unresolved []string             `json:"unresolved,omitempty"`
	Automaton  *automaton.Automaton `json:"automaton"`
}

// NewArtifact snapshots the given automata under a fresh ID.
func NewArtifact(name string, reference []automaton.Signal, components, rules []*automaton.Automaton) *Artifact {
	art := &Artifact{
		ID:          uuid.NewString(),
		Name:        name,
		GeneratedAt: time.Now().UTC(),
		Reference:   append([]automaton.Signal(nil), reference...),
	}
	add := func(kind string, automata []*automaton.Automaton) {
		for _, a := range automata {
			var traps []string
			for _, st := range a.TrapStates() {
				traps = append(traps, st.ID)
			}
			art.Entries = append(art.Entries, Entry{
				Kind:       kind,
				TrapStates: traps,
				Unresolved: a.UnresolvedSignals(),
				Automaton:  a.Clone(),
			})
		}
	}
	add(KindComponent, components)
	add(KindRule, rules)
	return art
}

// WriteArtifact encodes the artifact as JSON, inside a snappy framed
// stream when compress is set.
func WriteArtifact(w io.Writer, art *Artifact, compress bool) error {
	if !compress {
		return encode(w, art)
	}
	sw := snappy.NewBufferedWriter(w)
	if err := encode(sw, art); err != nil {
		sw.Close()
		return err
	}
	return sw.Close()
}

func encode(w io.Writer, art *Artifact) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(art); err != nil {
		return fmt.Errorf("encode artifact: %w", err)
	}
	return nil
}

// ReadArtifact decodes an artifact written by WriteArtifact.
func ReadArtifact(r io.Reader, compressed bool) (*Artifact, error) {
	if compressed {
		r = snappy.NewReader(r)
	}
	var art Artifact
	if err := json.NewDecoder(r).Decode(&art); err != nil {
		return nil, fmt.Errorf("decode artifact: %w", err)
	}
	return &art, nil
}

// WriteArtifactFile writes the artifact to path, creating parent
// directories.
func WriteArtifactFile(path string, art *Artifact, compress bool) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WriteArtifact(f, art, compress); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
