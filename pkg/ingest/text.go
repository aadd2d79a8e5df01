package ingest

import "strings"

// stripComment drops a trailing // comment and every blank character.
func stripComment(line string) string {
	if i := strings.Index(line, "//"); i >= 0 {
		line = line[:i]
	}
	return strings.Join(strings.Fields(line), "")
}

// splitTransition splits "current:guard>next".
func splitTransition(s string) (current, guard, next string, ok bool) {
	colon := strings.Index(s, ":")
	if colon <= 0 {
		return "", "", "", false
	}
	arrow := strings.LastIndex(s, ">")
	if arrow <= colon+1 || arrow == len(s)-1 {
		return "", "", "", false
	}
	return s[:colon], s[colon+1 : arrow], s[arrow+1:], true
}
