package automaton

import "github.com/dd0wney/capsl/pkg/logging"

// Set is a worklist of automata where new members are composed into the
// first compatible existing member.
type Set struct {
	members []*Automaton
	opts    []Option
	logger  logging.Logger
}

// NewSet returns an empty set. The options are passed on to every
// composition the set performs, except WithName: products are always
// named A||B after their operands.
func NewSet(opts ...Option) *Set {
	return &Set{
		opts:   append(opts[:len(opts):len(opts)], WithName("")),
		logger: newOptions(opts).logger,
	}
}

// Add appends an automaton without attempting composition.
func (s *Set) Add(a *Automaton) {
	s.members = append(s.members, a)
}

// AddAndCompose composes a with the first member it is compatible with;
// the product replaces that member at the end of the set. With no
// compatible member, a is appended. It reports whether a composition
// took place.
func (s *Set) AddAndCompose(a *Automaton) (bool, error) {
	for i, member := range s.members {
		if !a.CanComposeWith(member) {
			s.logger.Debug("skipping incompatible member",
				logging.Automaton(a.Name),
				logging.String("member", member.Name),
			)
			continue
		}

		product, err := Compose(a, member, s.opts...)
		if err != nil {
			return false, err
		}
		s.members = append(s.members[:i], s.members[i+1:]...)
		s.members = append(s.members, product)
		return true, nil
	}

	s.members = append(s.members, a)
	return false, nil
}

// Members returns the automata in the set, in order.
func (s *Set) Members() []*Automaton {
	return append([]*Automaton(nil), s.members...)
}

// Len returns the number of automata in the set.
func (s *Set) Len() int {
	return len(s.members)
}
