package scope

import (
	"strings"

	"github.com/huimingz/commitflow/internal/diff"
	"github.com/huimingz/commitflow/internal/log"
)

// Signals records what each heuristic produced for one diff and branch.
type Signals struct {
	Files   []string `json:"files"`
	Flow    string   `json:"flow"`
	Branch  string   `json:"branch"`
	Content string   `json:"content"`
	Scope   string   `json:"scope"`
}

// Resolver combines the path, branch and content heuristics into one label.
type Resolver struct {
	rules *Rules
}

// NewResolver creates a Resolver. A nil rules value selects DefaultRules.
func NewResolver(rules *Rules) *Resolver {
	if rules == nil {
		rules = DefaultRules()
	}
	return &Resolver{rules: rules}
}

// Rules returns the rule set in use.
func (r *Resolver) Rules() *Rules {
	return r.rules
}

// Resolve returns the scope label for diffText using the default rules.
func Resolve(diffText, branch string) string {
	return NewResolver(nil).Resolve(diffText, branch)
}

// Resolve returns the feature directory from the changed paths when there is
// one. Otherwise it joins the branch label and the content categories with a
// hyphen, dropping whichever is empty.
func (r *Resolver) Resolve(diffText, branch string) string {
	return r.Explain(diffText, branch).Scope
}

// Explain runs every heuristic and reports each signal alongside the
// resolved scope. Branch and content signals are only computed when no
// feature directory was found.
func (r *Resolver) Explain(diffText, branch string) Signals {
	s := Signals{Files: diff.ChangedFiles(diffText)}

	s.Flow = r.rules.FromPaths(s.Files)
	if s.Flow != "" {
		s.Scope = s.Flow
		log.Debug("Scope from feature path: %s", s.Scope)
		return s
	}

	s.Branch = r.rules.FromBranch(branch)
	s.Content = r.rules.Classify(diffText)
	s.Scope = joinNonEmpty("-", s.Branch, s.Content)
	log.Debug("Scope from branch %q and content %q: %q", s.Branch, s.Content, s.Scope)
	return s
}

func joinNonEmpty(sep string, parts ...string) string {
	kept := parts[:0:0]
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, sep)
}
