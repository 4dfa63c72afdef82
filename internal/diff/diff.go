package diff

import (
	"path"
	"strconv"
	"strings"
	"unicode/utf8"
)

// MaxPromptDiffLength is the number of diff characters embedded in a prompt.
const MaxPromptDiffLength = 3000

// headerPrefixes are the unified diff file header markers that carry a path.
// "/dev/null" never matches them, so added and deleted files are reported
// through their real side.
var headerPrefixes = []string{"+++ a/", "+++ b/", "--- a/", "--- b/"}

// ChangedFiles returns the paths named in the file header lines of a unified
// diff. Each path is reported once, in the order it was first seen. An empty
// diff yields nil.
func ChangedFiles(text string) []string {
	if text == "" {
		return nil
	}

	seen := make(map[string]struct{})
	var files []string
	for _, line := range strings.Split(text, "\n") {
		p, ok := headerPath(strings.TrimSuffix(line, "\r"))
		if !ok {
			continue
		}
		if _, dup := seen[p]; dup {
			continue
		}
		seen[p] = struct{}{}
		files = append(files, p)
	}
	return files
}

// IsFileHeader reports whether line is a "+++" or "---" file header line.
func IsFileHeader(line string) bool {
	return strings.HasPrefix(line, "+++") || strings.HasPrefix(line, "---")
}

// headerPath extracts the normalized path from a file header line.
func headerPath(line string) (string, bool) {
	if !IsFileHeader(line) {
		return "", false
	}

	// git quotes paths containing unusual characters: +++ "b/some file.go"
	if len(line) > 4 && line[4] == '"' {
		unquoted, err := strconv.Unquote(strings.TrimSpace(line[4:]))
		if err != nil {
			return "", false
		}
		line = line[:4] + unquoted
	}

	for _, prefix := range headerPrefixes {
		if !strings.HasPrefix(line, prefix) {
			continue
		}
		p := line[len(prefix):]
		// Some tools append a tab and a timestamp after the path.
		if i := strings.IndexByte(p, '\t'); i >= 0 {
			p = p[:i]
		}
		p = normalize(p)
		if p == "" {
			return "", false
		}
		return p, true
	}
	return "", false
}

// normalize converts separators to forward slashes and cleans the path.
func normalize(p string) string {
	p = strings.TrimSpace(strings.ReplaceAll(p, `\`, "/"))
	if p == "" {
		return ""
	}
	p = path.Clean(p)
	if p == "." || p == "/" {
		return ""
	}
	return strings.TrimPrefix(p, "/")
}

// Truncate returns at most limit characters of text. The cut may fall in the
// middle of a line. A non-positive limit returns text unchanged.
func Truncate(text string, limit int) string {
	if limit <= 0 || utf8.RuneCountInString(text) <= limit {
		return text
	}
	runes := []rune(text)
	return string(runes[:limit])
}
