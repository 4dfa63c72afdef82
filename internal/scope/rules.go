package scope

import (
	"errors"
	"fmt"
	"os"
	"regexp"

	"github.com/BurntSushi/toml"
)

const (
	// DefaultFeaturesRoot is the directory name whose child names a feature.
	DefaultFeaturesRoot = "flows"

	// DefaultMaxCategories caps how many content categories join the scope.
	DefaultMaxCategories = 2
)

// Pattern is a named regular expression. Branch patterns must have at least
// one capturing group; the first group is the extracted label.
type Pattern struct {
	Name string
	Re   *regexp.Regexp
}

// Rules holds the tables the heuristics evaluate. Order is significant:
// branch patterns are first-match-wins and categories are tested in order.
type Rules struct {
	BranchPatterns []Pattern
	Categories     []Pattern
	FeaturesRoot   string
	MaxCategories  int
}

// DefaultRules returns the built-in rule set.
func DefaultRules() *Rules {
	return &Rules{
		BranchPatterns: []Pattern{
			{Name: "ticket", Re: regexp.MustCompile(`([A-Z]{2,}-\d+)`)},
			{Name: "prefix", Re: regexp.MustCompile(`(?i)^(?:feature|fix|hotfix|release)/([\w-]+)`)},
			{Name: "task", Re: regexp.MustCompile(`(?i)^(?:task|issue)/([\w-]+)`)},
			{Name: "segment", Re: regexp.MustCompile(`^([^/]+)/`)},
		},
		Categories: []Pattern{
			{Name: "auth", Re: regexp.MustCompile(`(?i)auth|login|register|password|oauth|jwt|session`)},
			{Name: "ui", Re: regexp.MustCompile(`(?i)component|ui|layout|style|css|scss|jsx|tsx|vue|theme`)},
			{Name: "api", Re: regexp.MustCompile(`(?i)api|controller|route|endpoint|rest|graphql|axios|fetch`)},
			{Name: "db", Re: regexp.MustCompile(`(?i)migration|schema|repository|query|database|sql|prisma`)},
			{Name: "test", Re: regexp.MustCompile(`(?i)spec|test|cypress|jest|mocha|chai`)},
			{Name: "config", Re: regexp.MustCompile(`(?i)config|env|settings|dotenv|yaml|json`)},
		},
		FeaturesRoot:  DefaultFeaturesRoot,
		MaxCategories: DefaultMaxCategories,
	}
}

// patternEntry is one [[branch_patterns]] or [[categories]] table.
type patternEntry struct {
	Name    string `toml:"name"`
	Pattern string `toml:"pattern"`
}

// rulesFile is the on-disk shape. Pointer fields distinguish "unset" from
// zero values; unset fields keep their defaults.
type rulesFile struct {
	FeaturesRoot   *string        `toml:"features_root"`
	MaxCategories  *int           `toml:"max_categories"`
	BranchPatterns []patternEntry `toml:"branch_patterns"`
	Categories     []patternEntry `toml:"categories"`
}

// LoadRules reads a TOML rules file and applies it over DefaultRules.
// A missing file is not an error and yields the defaults. A non-empty
// branch_patterns or categories list replaces the default list entirely.
func LoadRules(path string) (*Rules, error) {
	rules := DefaultRules()
	if path == "" {
		return rules, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return rules, nil
		}
		return nil, fmt.Errorf("failed to read scope rules: %w", err)
	}

	var file rulesFile
	if _, err := toml.Decode(string(data), &file); err != nil {
		return nil, fmt.Errorf("invalid scope rules in %s: %w", path, err)
	}

	if file.FeaturesRoot != nil {
		rules.FeaturesRoot = *file.FeaturesRoot
	}
	if file.MaxCategories != nil {
		if *file.MaxCategories < 0 {
			return nil, fmt.Errorf("invalid scope rules in %s: max_categories must be non-negative", path)
		}
		rules.MaxCategories = *file.MaxCategories
	}
	if len(file.BranchPatterns) > 0 {
		patterns, err := compilePatterns("branch_patterns", file.BranchPatterns, true)
		if err != nil {
			return nil, fmt.Errorf("invalid scope rules in %s: %w", path, err)
		}
		rules.BranchPatterns = patterns
	}
	if len(file.Categories) > 0 {
		patterns, err := compilePatterns("categories", file.Categories, false)
		if err != nil {
			return nil, fmt.Errorf("invalid scope rules in %s: %w", path, err)
		}
		rules.Categories = patterns
	}

	return rules, nil
}

func compilePatterns(key string, entries []patternEntry, needGroup bool) ([]Pattern, error) {
	patterns := make([]Pattern, 0, len(entries))
	for i, e := range entries {
		if e.Name == "" {
			return nil, fmt.Errorf("%s[%d]: name is required", key, i)
		}
		re, err := regexp.Compile(e.Pattern)
		if err != nil {
			return nil, fmt.Errorf("%s[%d] (%s): %w", key, i, e.Name, err)
		}
		if needGroup && re.NumSubexp() < 1 {
			return nil, fmt.Errorf("%s[%d] (%s): pattern needs a capturing group", key, i, e.Name)
		}
		patterns = append(patterns, Pattern{Name: e.Name, Re: re})
	}
	return patterns, nil
}
