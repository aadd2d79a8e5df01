package automaton

import (
	"errors"
	"fmt"
	"time"

	"github.com/dd0wney/capsl/pkg/algorithms"
	"github.com/dd0wney/capsl/pkg/logging"
	"github.com/dd0wney/capsl/pkg/metrics"
	"github.com/google/uuid"
)

// statePair keys a product state by the IDs of its two parents.
type statePair struct {
	a, b string
}

// composer carries the working state of one composition.
type composer struct {
	a, b    *Automaton
	product *Automaton
	logger  logging.Logger

	shared []Signal
	// Operand signal ID to product signal index, one map per operand.
	// Equal IDs on both sides may name different composites.
	amap, bmap map[string]int
	pairs      map[statePair]int
	names   map[string]statePair
}

// Compose returns the product a || b. Signals that are an input of one
// operand and an output of the other become internal and synchronise both
// sides; all other transitions interleave. A product state is illegal when
// one parent enables a shared output that the other parent cannot receive.
// Only states reachable from an initial state are kept. The operands are
// not modified.
//
// Compose returns an error wrapping ErrIncompatible when b cannot be
// composed with a, and ErrNoInitialState when the product has no initial
// state.
func Compose(a, b *Automaton, opts ...Option) (*Automaton, error) {
	o := newOptions(opts)
	start := time.Now()
	name := o.name
	if name == "" {
		name = a.Name + "||" + b.Name
	}
	log := o.logger.With(
		logging.ComposeID(uuid.NewString()),
		logging.Automaton(name),
	)

	if err := b.CheckCompatibility(a); err != nil {
		var ce *CompatibilityError
		if errors.As(err, &ce) {
			log.Warn("automata not composable",
				logging.SignalID(ce.SignalID),
				logging.Int("condition", ce.Condition),
			)
		}
		o.metrics.RecordComposition(metrics.StatusIncompatible, time.Since(start), 0, 0, 0)
		return nil, NewError("compose").Automaton(name).Cause(err).Err()
	}

	c := &composer{
		a:       a.Clone(),
		b:       b.Clone(),
		product: &Automaton{Name: name},
		logger:  log,
		amap:    make(map[string]int),
		bmap:    make(map[string]int),
		pairs:   make(map[statePair]int),
		names:   make(map[string]statePair),
	}
	c.product.reindex()

	c.mergeSignals()
	c.seedInitialStates()
	c.mergeTransitions()
	synthesized := len(c.product.States)

	pruned, err := c.product.prune()
	if err != nil {
		log.Error("composition has no initial state", logging.Error(err))
		o.metrics.RecordComposition(metrics.StatusError, time.Since(start), 0, 0, 0)
		return nil, err
	}
	c.product.Refresh()

	log.Info("composition complete",
		logging.Int("synthesized", synthesized),
		logging.Int("pruned", pruned),
		logging.Int("states", len(c.product.States)),
		logging.Int("illegal", c.product.NumIllegal),
		logging.Int("transitions", len(c.product.Transitions)),
		logging.Latency(time.Since(start)),
	)
	o.metrics.RecordComposition(metrics.StatusSuccess, time.Since(start), synthesized, pruned, c.product.NumIllegal)
	return c.product, nil
}

// equivalent is Signal.Equivalent with a warning for untyped operands.
func (c *composer) equivalent(x, y Signal) bool {
	ok, err := x.compare(y, true)
	if err != nil {
		c.logger.Warn("comparing signals with unset type",
			logging.String("left", x.ID),
			logging.String("right", y.ID),
		)
	}
	return ok
}

// mergeSignals fills the product signal set: shared signals as internal,
// then the rest of a, then the rest of b.
func (c *composer) mergeSignals() {
	for _, sa := range c.a.Signals {
		shared := false
		for _, sb := range c.b.Signals {
			if sa.ID == sb.ID && sharedPair(sa.Type, sb.Type) {
				shared = true
				break
			}
		}
		if !shared {
			c.addSignal(sa, c.amap)
			continue
		}
		internal := Signal{ID: sa.ID, Type: Internal}
		c.shared = append(c.shared, internal)
		c.addSignal(internal, c.amap)
		c.logger.Debug("shared signal", logging.SignalID(sa.ID))
	}
	for _, sb := range c.b.Signals {
		c.addSignal(sb, c.bmap)
	}
}

// addSignal adds an operand signal to the product and records where it
// landed in m. A signal equivalent to one already present reuses it, and
// composites are matched by their terms as well as by ID. A composite that
// collides with a different signal of the same ID is added under a
// suffixed ID. Conflicting atomic signals keep the first.
func (c *composer) addSignal(sig Signal, m map[string]int) {
	p := c.product
	if i, ok := p.signalIndex[sig.ID]; ok {
		existing := p.Signals[i]
		switch {
		case c.equivalent(existing, sig):
			m[sig.ID] = i
			return
		case composite(sig) || composite(existing):
			renamed := sig
			renamed.ID = c.uniqueSignalID(sig.ID)
			c.logger.Warn("conflicting signals share an ID, renaming",
				logging.SignalID(sig.ID),
				logging.String("renamed", renamed.ID),
			)
			m[sig.ID] = p.AddSignal(renamed).Index
			return
		default:
			c.logger.Warn("conflicting signals share an ID, keeping the first",
				logging.SignalID(sig.ID),
				logging.String("kept", existing.Type.String()),
				logging.String("dropped", sig.Type.String()),
			)
			m[sig.ID] = i
			return
		}
	}
	if sig.Type == Composite {
		for i, existing := range p.Signals {
			if existing.Type == Composite && sig.Equivalent(existing) {
				m[sig.ID] = i
				return
			}
		}
	}
	m[sig.ID] = p.AddSignal(sig).Index
}

func composite(sig Signal) bool {
	return sig.Type == Composite || sig.Type == AlwaysTrue
}

// uniqueSignalID suffixes a taken product signal ID the way product state
// names are disambiguated.
func (c *composer) uniqueSignalID(id string) string {
	for n := 1; ; n++ {
		candidate := fmt.Sprintf("%s#%d", id, n)
		if _, taken := c.product.signalIndex[candidate]; !taken {
			return candidate
		}
	}
}

// productSignal maps an operand signal onto its product counterpart.
func (c *composer) productSignal(sig Signal, m map[string]int) Signal {
	if i, ok := m[sig.ID]; ok {
		return c.product.Signals[i]
	}
	panic(fmt.Sprintf("compose %s: signal %q missing from product", c.product.Name, sig.ID))
}

func (c *composer) isShared(sig Signal) bool {
	for _, s := range c.shared {
		if s.ID == sig.ID && c.equivalent(s, sig) {
			return true
		}
	}
	return false
}

// seedInitialStates creates the product of every pair of initial states up
// front, so operands without transitions still yield a product.
func (c *composer) seedInitialStates() {
	for _, sa := range c.a.InitialStates() {
		for _, sb := range c.b.InitialStates() {
			c.addState(sa, sb, nil)
		}
	}
}

// mergeTransitions synthesises product states and transitions. Shared
// transitions pair up with same-polarity partners in b; the others
// interleave against every state of the other operand.
func (c *composer) mergeTransitions() {
	for _, ta := range c.a.Transitions {
		from := c.a.States[c.a.mustState(ta.Current.ID)]
		to := c.a.States[c.a.mustState(ta.Next.ID)]
		label := c.productSignal(ta.Signal, c.amap)

		if c.isShared(ta.Signal) {
			for _, tb := range c.b.Transitions {
				if tb.Signal.ID != ta.Signal.ID || tb.Event != ta.Event || !c.equivalent(tb.Signal, ta.Signal) {
					continue
				}
				cur := c.addState(from, c.b.States[c.b.mustState(tb.Current.ID)], &label)
				next := c.addState(to, c.b.States[c.b.mustState(tb.Next.ID)], nil)
				c.addTransition(cur, next, label, ta.Event)
			}
			continue
		}

		for _, sb := range c.b.States {
			cur := c.addState(from, sb, &label)
			next := c.addState(to, sb, nil)
			c.addTransition(cur, next, label, ta.Event)
		}
	}

	for _, tb := range c.b.Transitions {
		if c.isShared(tb.Signal) {
			continue
		}
		from := c.b.States[c.b.mustState(tb.Current.ID)]
		to := c.b.States[c.b.mustState(tb.Next.ID)]
		label := c.productSignal(tb.Signal, c.bmap)

		for _, sa := range c.a.States {
			cur := c.addState(sa, from, &label)
			next := c.addState(sa, to, nil)
			c.addTransition(cur, next, label, tb.Event)
		}
	}
}

// addState returns the product state for a parent pair, creating it on
// first use, and enables the given signal on it. Illegality is sticky.
func (c *composer) addState(pa, pb State, enabled *Signal) int {
	p := c.product
	key := statePair{pa.ID, pb.ID}

	idx, ok := c.pairs[key]
	if !ok {
		idx = len(p.States)
		id := c.uniqueName(pa.ID + pb.ID)
		p.States = append(p.States, State{
			ID:      id,
			Index:   idx,
			Initial: pa.Initial && pb.Initial,
		})
		p.stateIndex[id] = idx
		c.pairs[key] = idx
		c.names[id] = key
	}

	st := &p.States[idx]
	if enabled != nil {
		st.enable(*enabled)
	}
	if !st.Illegal && c.isIllegal(pa, pb) {
		st.Illegal = true
		c.logger.Debug("illegal state", logging.StateID(st.ID))
	}
	return idx
}

// uniqueName disambiguates concatenated IDs such as "s1"+"0" and "s"+"10".
func (c *composer) uniqueName(id string) string {
	if _, taken := c.names[id]; !taken {
		return id
	}
	for n := 1; ; n++ {
		candidate := fmt.Sprintf("%s#%d", id, n)
		if _, taken := c.names[candidate]; !taken {
			c.logger.Warn("product state ID collision", logging.StateID(id), logging.String("renamed", candidate))
			return candidate
		}
	}
}

// isIllegal reports whether either parent enables a shared output that
// the other parent has no matching input enabled for.
func (c *composer) isIllegal(pa, pb State) bool {
	for _, s := range c.shared {
		if unreceived(s, pa, pb) || unreceived(s, pb, pa) {
			return true
		}
	}
	return false
}

func unreceived(shared Signal, sender, receiver State) bool {
	for _, out := range sender.Enabled {
		if out.Type != Output || !shared.Equivalent(out) {
			continue
		}
		for _, in := range receiver.Enabled {
			if in.Type == Input && in.ID == out.ID {
				return false
			}
		}
		return true
	}
	return false
}

func (c *composer) addTransition(cur, next int, label Signal, event SignalEvent) {
	p := c.product
	p.Transitions = append(p.Transitions, Transition{
		Index:   len(p.Transitions),
		Current: State{ID: p.States[cur].ID, Index: cur},
		Next:    State{ID: p.States[next].ID, Index: next},
		Signal:  label.Clone(),
		Event:   event,
		Row:     NoTransition,
		Col:     NoTransition,
	})
}

// RemoveUnreachableStates drops every state that no initial state can
// reach, along with its transitions, and returns how many were removed.
func (a *Automaton) RemoveUnreachableStates(opts ...Option) (int, error) {
	o := newOptions(opts)
	removed, err := a.prune()
	if err != nil {
		return 0, err
	}
	a.Refresh()
	o.logger.Debug("unreachable states removed",
		logging.Automaton(a.Name),
		logging.Count(removed),
	)
	return removed, nil
}

func (a *Automaton) prune() (int, error) {
	a.reindex()

	var seeds []string
	for _, st := range a.States {
		if st.Initial {
			seeds = append(seeds, st.ID)
		}
	}
	if len(seeds) == 0 {
		return 0, NewError("prune").Automaton(a.Name).Cause(ErrNoInitialState).Err()
	}

	successors := make(map[string][]string, len(a.States))
	for _, t := range a.Transitions {
		successors[t.Current.ID] = append(successors[t.Current.ID], t.Next.ID)
	}
	reached := algorithms.Reachable(seeds, func(id string) []string {
		return successors[id]
	})

	states := a.States[:0]
	for _, st := range a.States {
		if reached.Contains(st.ID) {
			states = append(states, st)
		}
	}
	removed := len(a.States) - len(states)
	a.States = states

	transitions := a.Transitions[:0]
	for _, t := range a.Transitions {
		if reached.Contains(t.Current.ID) && reached.Contains(t.Next.ID) {
			transitions = append(transitions, t)
		}
	}
	a.Transitions = transitions

	a.reindex()
	return removed, nil
}
