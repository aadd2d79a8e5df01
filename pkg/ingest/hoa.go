package ingest

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// ParseHOA reads the first automaton of a HOA v1 stream into a rule
// definition. States are named s<N>, atomic propositions become unset
// props, and states carrying an acceptance mark are accepting. A guard in
// disjunctive normal form that mixes & and | is split into one transition
// per disjunct.
func ParseHOA(r io.Reader, name string) (*ComponentDef, error) {
	def := &ComponentDef{Name: name, Kind: KindRule}

	scanner := bufio.NewScanner(r)
	lineNo := 0
	inBody := false
	ended := false
	current := ""
	fail := func(text string, cause error) error {
		return &ParseError{Source: name, Line: lineNo, Text: text, Cause: cause}
	}

	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		if !inBody {
			switch {
			case strings.HasPrefix(line, "Start:"):
				n, err := strconv.Atoi(strings.TrimSpace(strings.TrimPrefix(line, "Start:")))
				if err != nil {
					return nil, fail(line, ErrMalformedHOA)
				}
				def.Initial = append(def.Initial, stateName(n))
			case strings.HasPrefix(line, "AP:"):
				props, err := parseAP(strings.TrimPrefix(line, "AP:"))
				if err != nil {
					return nil, fail(line, fmt.Errorf("%w: %v", ErrMalformedHOA, err))
				}
				def.Props = props
			case line == "--BODY--":
				inBody = true
			}
			continue
		}

		if line == "--END--" {
			ended = true
			break
		}

		if strings.HasPrefix(line, "State:") {
			n, accepting, err := parseStateLine(strings.TrimPrefix(line, "State:"))
			if err != nil {
				return nil, fail(line, fmt.Errorf("%w: %v", ErrMalformedHOA, err))
			}
			current = stateName(n)
			def.States = append(def.States, current)
			if accepting {
				def.Accepting = append(def.Accepting, current)
			}
			continue
		}

		if current == "" || !strings.HasPrefix(line, "[") {
			return nil, fail(line, fmt.Errorf("%w: only explicitly labelled edges are supported", ErrMalformedHOA))
		}
		guard, dst, err := parseEdge(line)
		if err != nil {
			return nil, fail(line, fmt.Errorf("%w: %v", ErrMalformedHOA, err))
		}
		for _, g := range splitDNF(guard) {
			def.Transitions = append(def.Transitions, current+":"+g+">"+stateName(dst))
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if !ended {
		return nil, fail("", fmt.Errorf("%w: missing --BODY-- or --END--", ErrMalformedHOA))
	}

	return def, nil
}

func stateName(n int) string {
	return "s" + strconv.Itoa(n)
}

// parseAP parses `2 "req" "ack"`.
func parseAP(s string) ([]string, error) {
	s = strings.TrimSpace(s)
	countText, rest, _ := strings.Cut(s, " ")
	count, err := strconv.Atoi(countText)
	if err != nil {
		return nil, fmt.Errorf("bad AP count %q", countText)
	}

	var props []string
	rest = strings.TrimSpace(rest)
	for rest != "" {
		if rest[0] != '"' {
			return nil, fmt.Errorf("expected quoted proposition at %q", rest)
		}
		end := strings.IndexByte(rest[1:], '"')
		if end < 0 {
			return nil, fmt.Errorf("unterminated proposition %q", rest)
		}
		props = append(props, rest[1:end+1])
		rest = strings.TrimSpace(rest[end+2:])
	}

	if len(props) != count {
		return nil, fmt.Errorf("AP declares %d propositions, found %d", count, len(props))
	}
	return props, nil
}

// parseStateLine parses ` 0 "name" {0}`.
func parseStateLine(s string) (int, bool, error) {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return 0, false, fmt.Errorf("missing state number")
	}
	if strings.HasPrefix(fields[0], "[") {
		return 0, false, fmt.Errorf("state labels are not supported")
	}
	n, err := strconv.Atoi(fields[0])
	if err != nil {
		return 0, false, fmt.Errorf("bad state number %q", fields[0])
	}
	return n, strings.Contains(s, "{"), nil
}

// parseEdge parses `[0&!1] 2 {0}` and returns the guard without blanks.
func parseEdge(line string) (string, int, error) {
	rb := strings.IndexByte(line, ']')
	if rb < 0 {
		return "", 0, fmt.Errorf("unterminated label")
	}
	guard := strings.Join(strings.Fields(line[1:rb]), "")

	fields := strings.Fields(line[rb+1:])
	if len(fields) == 0 {
		return "", 0, fmt.Errorf("missing destination")
	}
	dst, err := strconv.Atoi(fields[0])
	if err != nil {
		return "", 0, fmt.Errorf("bad destination %q", fields[0])
	}
	return guard, dst, nil
}

// splitDNF splits a guard mixing & and | into its disjuncts. Pure
// conjunctions and disjunctions are kept whole.
func splitDNF(guard string) []string {
	if strings.Contains(guard, "&") && strings.Contains(guard, "|") {
		return strings.Split(guard, "|")
	}
	return []string{guard}
}
