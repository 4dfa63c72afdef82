package lang

import "strings"

// Language is an output language code such as "en" or "zh-tw".
type Language string

const (
	English            Language = "en"
	ChineseSimplified  Language = "zh"
	ChineseTraditional Language = "zh-tw"
	Japanese           Language = "ja"
	Korean             Language = "ko"
	German             Language = "de"
	French             Language = "fr"
	Spanish            Language = "es"
)

type names struct {
	english string // used in prompts
	native  string // shown to the user
}

var known = map[Language]names{
	English:            {"English", "English"},
	ChineseSimplified:  {"Simplified Chinese", "中文（简体）"},
	ChineseTraditional: {"Traditional Chinese", "中文（繁體）"},
	Japanese:           {"Japanese", "日本語"},
	Korean:             {"Korean", "한국어"},
	German:             {"German", "Deutsch"},
	French:             {"French", "Français"},
	Spanish:            {"Spanish", "Español"},
}

// String returns the language code
func (l Language) String() string {
	return string(l)
}

// IsValid reports whether l is one of the known languages
func (l Language) IsValid() bool {
	_, ok := known[l]
	return ok
}

// DisplayName returns the native name, or the code for unknown languages
func (l Language) DisplayName() string {
	if n, ok := known[l]; ok {
		return n.native
	}
	return string(l)
}

// PromptName returns the English name used when instructing a model. Unknown
// codes are passed through so any language the model understands still works.
func (l Language) PromptName() string {
	if n, ok := known[l]; ok {
		return n.english
	}
	return string(l)
}

// DefaultLanguage returns the default language
func DefaultLanguage() Language {
	return English
}

// Parse normalizes s ("ZH_TW" becomes "zh-tw"). An empty string yields the
// default language.
func Parse(s string) Language {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return DefaultLanguage()
	}
	return Language(strings.ReplaceAll(s, "_", "-"))
}
