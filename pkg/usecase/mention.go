package usecase

import (
	"strings"
	"unicode"
)

// ExtractMention reports whether text starts with a mention of the bot's own
// identity and returns the remainder after the mention token and any
// following whitespace. A mention appearing mid-message does not qualify.
func ExtractMention(text, botUserID string) (string, bool) {
	if botUserID == "" {
		return "", false
	}

	rest, ok := strings.CutPrefix(text, "<@"+botUserID+">")
	if !ok {
		return "", false
	}

	if rest == "" {
		return "", true
	}

	trimmed := strings.TrimLeftFunc(rest, unicode.IsSpace)
	if trimmed == rest {
		// Token is immediately followed by non-space text; this is a
		// different token, not a mention of the bot.
		return "", false
	}

	return trimmed, true
}
