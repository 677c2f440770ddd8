package feed

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/lysyi3m/rss-relay/app/config"
)

type Classifier struct {
	mode string
}

func NewClassifier(mode string) *Classifier {
	if mode == "" {
		mode = config.MatchSubstring
	}
	return &Classifier{mode: mode}
}

// Match returns every category whose keywords occur in text, in
// configuration order.
func (c *Classifier) Match(text string, categories []config.Category) []config.Category {
	lower := c.lower(text)

	var matched []config.Category
	for _, category := range categories {
		if c.matchesLower(lower, category) {
			matched = append(matched, category)
		}
	}
	return matched
}

func (c *Classifier) Matches(text string, category config.Category) bool {
	return c.matchesLower(c.lower(text), category)
}

func (c *Classifier) matchesLower(lower string, category config.Category) bool {
	for _, keyword := range category.Keywords() {
		if strings.TrimSpace(keyword) == "" {
			continue
		}

		keyword = c.lower(keyword)
		if c.mode == config.MatchWord {
			if containsWord(lower, strings.TrimSpace(keyword)) {
				return true
			}
			continue
		}

		if strings.Contains(lower, keyword) {
			return true
		}
	}
	return false
}

// Casers keep state, so each call gets its own.
func (c *Classifier) lower(s string) string {
	return cases.Lower(language.Und).String(s)
}

// containsWord reports whether keyword occurs in text with no letter or digit
// directly before or after it.
func containsWord(text, keyword string) bool {
	for offset := 0; offset < len(text); {
		idx := strings.Index(text[offset:], keyword)
		if idx < 0 {
			return false
		}

		start := offset + idx
		end := start + len(keyword)

		before, _ := utf8.DecodeLastRuneInString(text[:start])
		after, _ := utf8.DecodeRuneInString(text[end:])
		if !isWordRune(before) && !isWordRune(after) {
			return true
		}

		_, size := utf8.DecodeRuneInString(text[start:])
		offset = start + size
	}
	return false
}

func isWordRune(r rune) bool {
	return r != utf8.RuneError && (unicode.IsLetter(r) || unicode.IsDigit(r))
}
