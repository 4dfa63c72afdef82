package scope

import (
	"path"
	"strings"
)

// FromPaths returns the most common feature directory under the default
// features root ("flows"), or "" when no path contains it.
func FromPaths(paths []string) string {
	return DefaultRules().FromPaths(paths)
}

// FromPaths tallies the directory that follows FeaturesRoot in each path and
// returns the most frequent one. Ties go to the candidate seen first. A file
// sitting directly in the features root names the feature by its base name.
func (r *Rules) FromPaths(paths []string) string {
	if r.FeaturesRoot == "" {
		return ""
	}

	counts := make(map[string]int)
	var order []string
	for _, p := range paths {
		candidate := r.featureOf(p)
		if candidate == "" {
			continue
		}
		if counts[candidate] == 0 {
			order = append(order, candidate)
		}
		counts[candidate]++
	}

	best := ""
	for _, c := range order {
		if counts[c] > counts[best] {
			best = c
		}
	}
	return best
}

func (r *Rules) featureOf(p string) string {
	parts := strings.Split(strings.ReplaceAll(p, `\`, "/"), "/")
	for i, part := range parts {
		if part != r.FeaturesRoot {
			continue
		}
		if i+1 >= len(parts) {
			return ""
		}
		segment := parts[i+1]
		if i+2 == len(parts) {
			segment = strings.TrimSuffix(segment, path.Ext(segment))
		}
		return sanitize(segment)
	}
	return ""
}
