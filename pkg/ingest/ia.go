package ingest

import (
	"bufio"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// iaSections maps a section keyword to the field it fills.
var iaSections = []string{"STATES", "INITIAL", "ACCEPTING", "INPUTS", "OUTPUTS", "INTERNALS", "TRANSITIONS"}

// ReadIA parses an interface automaton description. Each section starts
// with "DEFINE <SECTION>" and ends with "END <SECTION>"; one entry per
// line, // comments and blanks ignored.
func ReadIA(r io.Reader, name string) (*ComponentDef, error) {
	def := &ComponentDef{Name: name, Kind: KindComponent}
	fields := map[string]*[]string{
		"STATES":      &def.States,
		"INITIAL":     &def.Initial,
		"ACCEPTING":   &def.Accepting,
		"INPUTS":      &def.Inputs,
		"OUTPUTS":     &def.Outputs,
		"INTERNALS":   &def.Internals,
		"TRANSITIONS": &def.Transitions,
	}

	scanner := bufio.NewScanner(r)
	section := ""
	start := 0
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		raw := scanner.Text()

		if section == "" {
			if s := sectionOf(raw, "DEFINE"); s != "" {
				section, start = s, lineNo
			}
			continue
		}
		if s := sectionOf(raw, "END"); s != "" {
			if s != section {
				return nil, &ParseError{Source: name, Line: lineNo, Text: strings.TrimSpace(raw), Cause: ErrMalformedIA}
			}
			section = ""
			continue
		}

		if entry := stripComment(raw); entry != "" {
			*fields[section] = append(*fields[section], entry)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if section != "" {
		return nil, &ParseError{Source: name, Line: start, Text: "DEFINE " + section, Cause: ErrMalformedIA}
	}

	return def, nil
}

// ReadIAFile reads an .ia file. The component is named after the file.
func ReadIAFile(path string) (*ComponentDef, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return ReadIA(f, name)
}

func sectionOf(line, keyword string) string {
	code := line
	if i := strings.Index(code, "//"); i >= 0 {
		code = code[:i]
	}
	fields := strings.Fields(code)
	if len(fields) != 2 || fields[0] != keyword {
		return ""
	}
	for _, s := range iaSections {
		if fields[1] == s {
			return s
		}
	}
	return ""
}

// ReadRules reads one temporal rule per non-empty line; // comments are
// dropped.
func ReadRules(r io.Reader) ([]string, error) {
	var rules []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()
		if i := strings.Index(line, "//"); i >= 0 {
			line = line[:i]
		}
		if line = strings.TrimSpace(line); line != "" {
			rules = append(rules, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return rules, nil
}

// ReadRulesFile reads a rule file.
func ReadRulesFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadRules(f)
}
