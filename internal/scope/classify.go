package scope

import (
	"strings"

	"github.com/huimingz/commitflow/internal/diff"
)

// Classify returns up to two content categories found in diffText using the
// default rules, joined with "-".
func Classify(diffText string) string {
	return DefaultRules().Classify(diffText)
}

// Classify scans file header lines first and then added/removed lines,
// testing every category on each. Categories are kept in the order they are
// first matched and capped at MaxCategories.
func (r *Rules) Classify(diffText string) string {
	if diffText == "" || r.MaxCategories == 0 || len(r.Categories) == 0 {
		return ""
	}

	lines := strings.Split(diffText, "\n")
	found := make([]string, 0, r.MaxCategories)
	seen := make(map[string]bool)

	scan := func(match func(string) bool) bool {
		for _, line := range lines {
			if !match(line) {
				continue
			}
			for _, c := range r.Categories {
				if seen[c.Name] || !c.Re.MatchString(line) {
					continue
				}
				seen[c.Name] = true
				found = append(found, c.Name)
				if len(found) >= r.MaxCategories {
					return true
				}
			}
		}
		return false
	}

	if !scan(diff.IsFileHeader) {
		scan(isContentLine)
	}

	return strings.Join(found, "-")
}

func isContentLine(line string) bool {
	return strings.HasPrefix(line, "+") || strings.HasPrefix(line, "-")
}
