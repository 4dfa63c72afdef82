package conventional

import (
	"fmt"
	"regexp"
	"strings"
)

// Types is the closed set of commit types, in the order they are presented.
var Types = []string{
	"feat",
	"fix",
	"docs",
	"style",
	"refactor",
	"test",
	"chore",
	"perf",
	"build",
	"ci",
	"revert",
}

var headerRe = regexp.MustCompile(`^([a-z]+)(?:\(([^()\s]+)\))?!?: (\S.*)$`)

// IsType reports whether t is one of Types.
func IsType(t string) bool {
	for _, known := range Types {
		if t == known {
			return true
		}
	}
	return false
}

// Format renders a header line. An empty scope omits the parentheses.
func Format(commitType, scope, subject string) string {
	if scope != "" {
		return fmt.Sprintf("%s(%s): %s", commitType, scope, subject)
	}
	return fmt.Sprintf("%s: %s", commitType, subject)
}

// Header is a parsed "type(scope): subject" line.
type Header struct {
	Type    string
	Scope   string
	Subject string
}

// Parse splits a header line. ok is false when the line does not follow the
// convention or names an unknown type.
func Parse(line string) (h Header, ok bool) {
	m := headerRe.FindStringSubmatch(strings.TrimSpace(line))
	if m == nil || !IsType(m[1]) {
		return Header{}, false
	}
	return Header{Type: m[1], Scope: m[2], Subject: m[3]}, true
}
