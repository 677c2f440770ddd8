package feed

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/text/unicode/norm"
)

var (
	charRefPattern = regexp.MustCompile(`&(?:[a-zA-Z][a-zA-Z0-9]*|#[0-9]+|#[xX][0-9a-fA-F]+);`)
	tagPattern     = regexp.MustCompile(`<[^>]+>`)
)

// Normalize turns a raw title or summary into plain display text. Markup is
// dropped, character references that survive decoding are removed, and all
// whitespace runs collapse to a single space.
func Normalize(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return ""
	}

	text := raw
	if doc, err := goquery.NewDocumentFromReader(strings.NewReader(raw)); err == nil {
		text = doc.Text()
	}

	text = charRefPattern.ReplaceAllString(text, "")
	text = tagPattern.ReplaceAllString(text, "")
	text = strings.Join(strings.Fields(text), " ")

	return norm.NFC.String(text)
}
