package export

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/dd0wney/capsl/pkg/automaton"
)

var unsafeName = regexp.MustCompile(`[^A-Za-z0-9_]+`)

// MermaidDiagram renders an automaton as a Mermaid state diagram. States
// are numbered S<index> and described by their IDs; low guards are shown
// as ~signal.
func MermaidDiagram(a *automaton.Automaton) string {
	var sb strings.Builder
	sb.WriteString("stateDiagram-v2\n")

	for _, st := range a.InitialStates() {
		sb.WriteString(fmt.Sprintf("    [*] --> S%d\n", st.Index))
	}

	for _, tr := range a.Transitions {
		guard := tr.Signal.ID
		if tr.Event == automaton.Low {
			guard = "~" + guard
		}
		sb.WriteString(fmt.Sprintf("    S%d --> S%d: %s\n", tr.Current.Index, tr.Next.Index, escape(guard)))
	}

	for _, st := range a.States {
		if st.Accepting {
			sb.WriteString(fmt.Sprintf("    S%d --> [*]\n", st.Index))
		}
	}

	sb.WriteString("\n")
	var illegal []string
	for _, st := range a.States {
		sb.WriteString(fmt.Sprintf("    S%d: %s\n", st.Index, escape(st.ID)))
		if st.Illegal {
			illegal = append(illegal, fmt.Sprintf("S%d", st.Index))
		}
	}

	if len(illegal) > 0 {
		sb.WriteString("\n    classDef illegal fill:#f66,stroke:#900,color:#fff\n")
		sb.WriteString(fmt.Sprintf("    class %s illegal\n", strings.Join(illegal, ",")))
	}

	return sb.String()
}

// escape keeps '#' and ';' from being read as Mermaid entity syntax.
func escape(s string) string {
	return strings.NewReplacer("#", "#35;", ";", "#59;").Replace(s)
}

// DiagramFileName returns a file-system safe name for an automaton's
// diagram, e.g. "fifo_producer.mmd" for "fifo||producer".
func DiagramFileName(a *automaton.Automaton, index int) string {
	name := strings.Trim(unsafeName.ReplaceAllString(a.Name, "_"), "_")
	if name == "" {
		name = fmt.Sprintf("automaton%d", index)
	}
	return name + ".mmd"
}

// WriteDiagrams writes one .mmd file per automaton into dir and returns
// the paths written.
func WriteDiagrams(dir string, automata []*automaton.Automaton) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}

	var paths []string
	for i, a := range automata {
		path := filepath.Join(dir, DiagramFileName(a, i))
		if err := os.WriteFile(path, []byte(MermaidDiagram(a)), 0o644); err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}
