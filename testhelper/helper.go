// Package testhelper holds helpers shared by tests.
package testhelper

import (
	"regexp"
	"strings"
	"testing"
)

var (
	leadingSpaces = regexp.MustCompile(`^\s+`)
	leadingTabs   = regexp.MustCompile(`^(\t+)`)
)

func replaceTab(match string) string {
	return strings.Repeat("    ", strings.Count(match, "\t"))
}

// TrimIndent removes the first line of src and the indent of its second line
// from every line, so documents can be written as indented raw strings.
// Remaining leading tabs become four spaces each.
func TrimIndent(t *testing.T, src string) string {
	t.Helper()

	lines := strings.Split(src, "\n")

	var indent string
	if len(lines) > 1 {
		indent = leadingSpaces.FindString(lines[1])
	}

	for i, line := range lines {
		line = strings.TrimPrefix(line, indent)
		lines[i] = leadingTabs.ReplaceAllStringFunc(line, replaceTab)
	}

	return strings.Join(lines[1:], "\n")
}
