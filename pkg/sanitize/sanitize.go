// Package sanitize turns untrusted form input into plain text for outbound messages.
package sanitize

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// strict drops every tag; script/style bodies are dropped with them
var strict = bluemonday.StrictPolicy()

// maxPasses bounds the strip/unescape loop in Text
const maxPasses = 8

// Text trims the value and strips any markup, returning plain text.
// Entity-encoded markup ("&lt;b&gt;") is decoded and stripped as well, so the
// result holds no tags and Text(Text(v)) == Text(v).
func Text(value string) string {
	value = strings.TrimSpace(value)
	for i := 0; i < maxPasses && value != ""; i++ {
		// bluemonday escapes what it keeps; undo that so the composer escapes exactly once
		next := strings.TrimSpace(html.UnescapeString(strict.Sanitize(value)))
		if next == value {
			return value
		}
		value = next
	}
	if value == "" {
		return value
	}
	// still changing: keep the escaped form, which carries no markup
	return strings.TrimSpace(strict.Sanitize(value))
}

// Key keeps only ASCII letters, digits, '_', '-' and space.
func Key(key string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '_', r == '-', r == ' ':
			return r
		}
		return -1
	}, key)
}

// JoinValues flattens a multi-valued field the same way for every transport
func JoinValues(values []string) string {
	return strings.Join(values, ", ")
}

// EscapeHTML escapes text for Telegram's HTML parse mode. Invalid UTF-8 runs
// are replaced with U+FFFD first; the Bot API rejects invalid text.
func EscapeHTML(s string) string {
	return html.EscapeString(strings.ToValidUTF8(s, "\uFFFD"))
}
