package automaton

import (
	"fmt"
	"io"
	"strings"
)

// NoTransition marks an empty table cell.
const NoTransition = -1

// Table maps (state row, signal column) to the indices of the successor
// states. Column 2i is signal i low, 2i+1 is signal i high. Empty cells
// hold exactly [NoTransition].
type Table [][][]int

// NewTable allocates a table with every cell empty.
func NewTable(rows, cols int) Table {
	t := make(Table, rows)
	for r := range t {
		t[r] = make([][]int, cols)
		for c := range t[r] {
			t[r][c] = []int{NoTransition}
		}
	}
	return t
}

// Add records next as a successor in the cell. Duplicates are ignored.
func (t Table) Add(row, col, next int) {
	cell := t[row][col]
	if len(cell) == 1 && cell[0] == NoTransition {
		t[row][col] = []int{next}
		return
	}
	for _, n := range cell {
		if n == next {
			return
		}
	}
	t[row][col] = append(cell, next)
}

// Cell returns the successors in a cell, or nil when it is empty.
func (t Table) Cell(row, col int) []int {
	cell := t[row][col]
	if len(cell) == 1 && cell[0] == NoTransition {
		return nil
	}
	return cell
}

// BuildTransitionTable rebuilds the table from the transition set and
// stores each transition's row and column.
func (a *Automaton) BuildTransitionTable() {
	a.reindex()
	table := NewTable(len(a.States), 2*len(a.Signals))

	for i := range a.Transitions {
		t := &a.Transitions[i]
		row := a.mustState(t.Current.ID)
		next := a.mustState(t.Next.ID)
		sig := a.mustSignal(t.Signal.ID)

		t.Current.Index = row
		t.Next.Index = next
		t.Signal.Index = sig
		t.Row = row
		t.Col = Column(sig, t.Event)

		table.Add(t.Row, t.Col, next)
	}

	a.Table = table
}

// WriteTable renders the automaton as a human-readable report: the signal
// legend, each state's enabled signals, then the transition table.
func (a *Automaton) WriteTable(w io.Writer) error {
	var b strings.Builder

	fmt.Fprintf(&b, "automaton %s: %d states, %d signals, %d transitions\n",
		a.Name, len(a.States), len(a.Signals), len(a.Transitions))

	b.WriteString("signals:\n")
	for i, s := range a.Signals {
		fmt.Fprintf(&b, "  %d: %s %s", i, s.ID, s.Type)
		if s.Type == Composite {
			fmt.Fprintf(&b, " = %s", s.String())
		}
		b.WriteString("\n")
	}

	b.WriteString("states:\n")
	for i, st := range a.States {
		fmt.Fprintf(&b, "  %d: %s%s [", i, st.ID, stateFlags(st))
		for j, sig := range st.Enabled {
			if j > 0 {
				b.WriteString(" ")
			}
			b.WriteString(sig.ID)
		}
		b.WriteString("]\n")
	}

	b.WriteString("table:\n      ")
	for i := range a.Signals {
		fmt.Fprintf(&b, " %4s %4s", fmt.Sprintf("!%d", i), fmt.Sprintf("%d", i))
	}
	b.WriteString("\n")
	for r, row := range a.Table {
		fmt.Fprintf(&b, "  %4d", r)
		for _, cell := range row {
			parts := make([]string, len(cell))
			for k, n := range cell {
				parts[k] = fmt.Sprintf("%d", n)
			}
			fmt.Fprintf(&b, " %4s", strings.Join(parts, ","))
		}
		b.WriteString("\n")
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func stateFlags(st State) string {
	var flags []string
	if st.Initial {
		flags = append(flags, "initial")
	}
	if st.Accepting {
		flags = append(flags, "accepting")
	}
	if st.Illegal {
		flags = append(flags, "illegal")
	}
	if len(flags) == 0 {
		return ""
	}
	return " (" + strings.Join(flags, ",") + ")"
}
