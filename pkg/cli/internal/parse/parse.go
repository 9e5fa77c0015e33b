// Package parse provides string parsing utilities for CLI commands.
package parse

import (
	"fmt"
	"strings"
)

// KeyValue parses a "key=value" or "key:value" string.
// If delimiters are provided, uses the first one found; otherwise defaults to '='.
// Returns the key, value, and a boolean indicating success.
func KeyValue(s string, delimiters ...rune) (key, value string, ok bool) {
	if len(delimiters) == 0 {
		delimiters = []rune{'='}
	}

	for i, c := range s {
		for _, d := range delimiters {
			if c == d {
				return s[:i], s[i+1:], true
			}
		}
	}
	return "", "", false
}

// Assignment is one "source=target" pair given on the command line. An
// empty Target asks for the rule to be removed.
type Assignment struct {
	Source string
	Target string
}

// Assignments parses repeated "source=target" flag values. Both sides are
// trimmed; the source must not be empty.
func Assignments(values []string) ([]Assignment, error) {
	out := make([]Assignment, 0, len(values))
	for _, v := range values {
		key, value, ok := KeyValue(v, '=')
		if !ok {
			return nil, fmt.Errorf("invalid assignment %q: expected source=target", v)
		}
		key = strings.TrimSpace(key)
		if key == "" {
			return nil, fmt.Errorf("invalid assignment %q: source is empty", v)
		}
		out = append(out, Assignment{Source: key, Target: strings.TrimSpace(value)})
	}
	return out, nil
}

// SplitTrim splits a string by separator and trims each part.
func SplitTrim(s, sep string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, sep)
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		trimmed := strings.TrimSpace(p)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
