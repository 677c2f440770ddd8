package relay

import (
	"fmt"
	"html"
	"unicode/utf8"
)

const ellipsis = "..."

// Truncate shortens s to max characters and marks the cut with an ellipsis.
func Truncate(s string, max int) string {
	if max <= 0 || utf8.RuneCountInString(s) <= max {
		return s
	}
	return string([]rune(s)[:max]) + ellipsis
}

// BuildMessage renders the Telegram HTML post for an item. Title and summary
// are plain text and get escaped here.
func BuildMessage(title, summary, link string) string {
	return fmt.Sprintf("📰 <b>%s</b>\n\n%s\n\n🔗 <a href='%s'>Подробнее</a>",
		html.EscapeString(title),
		html.EscapeString(summary),
		html.EscapeString(link),
	)
}

// FitCaption renders the post within limit characters by shortening the
// summary. Markup is never cut.
func FitCaption(title, summary, link string, limit int) string {
	message := BuildMessage(title, summary, link)
	if utf8.RuneCountInString(message) <= limit {
		return message
	}

	overhead := utf8.RuneCountInString(BuildMessage(title, "", link))
	budget := limit - overhead - utf8.RuneCountInString(ellipsis)
	if budget <= 0 {
		return BuildMessage(title, "", link)
	}

	// Escaped length grows with the prefix, so search for the longest fit.
	runes := []rune(summary)
	lo, hi := 0, min(budget, len(runes))
	for lo < hi {
		mid := (lo + hi + 1) / 2
		if utf8.RuneCountInString(html.EscapeString(string(runes[:mid]))) <= budget {
			lo = mid
		} else {
			hi = mid - 1
		}
	}
	if lo == 0 {
		return BuildMessage(title, "", link)
	}

	return BuildMessage(title, string(runes[:lo])+ellipsis, link)
}
