package util

import (
	"regexp"
	"strings"
)

var nonDialRe = regexp.MustCompile(`[^\d\+]+`)

// NormalizePhone strips formatting characters and coerces the "00"
// international prefix into a leading "+". It does not validate length
// or country codes; providers reject numbers they cannot route.
func NormalizePhone(raw string) string {
	s := nonDialRe.ReplaceAllString(strings.TrimSpace(raw), "")

	if strings.HasPrefix(s, "00") {
		s = "+" + s[2:]
	}

	// a "+" is only meaningful at the front
	if strings.HasPrefix(s, "+") {
		s = "+" + strings.ReplaceAll(s[1:], "+", "")
	} else {
		s = strings.ReplaceAll(s, "+", "")
	}

	return s
}
