package scope

import (
	"context"
	"regexp"
	"strings"

	"github.com/huimingz/commitflow/internal/log"
)

var nonLabelChars = regexp.MustCompile(`[^\w-]`)

// BranchSource reports the name of the checked-out branch.
type BranchSource interface {
	CurrentBranch(ctx context.Context) (string, error)
}

// FromBranch derives a scope label from a branch name using the default
// rules. It returns "" when no pattern applies.
func FromBranch(branch string) string {
	return DefaultRules().FromBranch(branch)
}

// FromBranch applies the branch patterns in order and returns the first
// capture, lowercased with underscores turned into hyphens.
func (r *Rules) FromBranch(branch string) string {
	branch = strings.TrimSpace(branch)
	if branch == "" {
		return ""
	}
	for _, p := range r.BranchPatterns {
		m := p.Re.FindStringSubmatch(branch)
		if len(m) < 2 || m[1] == "" {
			continue
		}
		if label := sanitize(m[1]); label != "" {
			log.Debug("Branch %q matched pattern %q: %s", branch, p.Name, label)
			return label
		}
	}
	return ""
}

// BranchName asks src for the current branch. Any failure, including a
// panicking source or a detached HEAD, yields "".
func BranchName(ctx context.Context, src BranchSource) (branch string) {
	if src == nil {
		return ""
	}
	defer func() {
		if r := recover(); r != nil {
			log.Debug("Branch lookup panicked: %v", r)
			branch = ""
		}
	}()

	name, err := src.CurrentBranch(ctx)
	if err != nil {
		log.Debug("Branch lookup failed: %v", err)
		return ""
	}
	name = strings.TrimSpace(name)
	if name == "HEAD" {
		return ""
	}
	return name
}

// WorkflowFromBranch looks up the current branch and extracts its label.
// It never fails.
func (r *Rules) WorkflowFromBranch(ctx context.Context, src BranchSource) string {
	return r.FromBranch(BranchName(ctx, src))
}

// sanitize lowercases s, maps underscores to hyphens and drops anything that
// is not a word character or hyphen.
func sanitize(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.ReplaceAll(s, "_", "-")
	s = strings.ReplaceAll(s, " ", "-")
	s = nonLabelChars.ReplaceAllString(s, "")
	return strings.Trim(s, "-")
}
