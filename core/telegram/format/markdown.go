package format

import (
	"fmt"
	"regexp"
)

const (
	// MarkdownV1 denotes Telegram markdown version 1.
	MarkdownV1 = 1
	// MarkdownV2 denotes Telegram markdown version 2.
	MarkdownV2 = 2
)

var (
	mdV1Specials = regexp.MustCompile("[_*`\\[]")
	mdV2Specials = regexp.MustCompile("[" + regexp.QuoteMeta("_*[]()~`>#+-=|{}.!\\") + "]")
)

// EscapeMarkdown escapes user supplied text for the given markdown version.
func EscapeMarkdown(text string, version int) (string, error) {
	switch version {
	case MarkdownV1:
		return mdV1Specials.ReplaceAllString(text, `\$0`), nil
	case MarkdownV2:
		return mdV2Specials.ReplaceAllString(text, `\$0`), nil
	}
	return "", fmt.Errorf("unsupported markdown version: %d", version)
}

// Escape is EscapeMarkdown for version 1, the parse mode the bot sends with.
func Escape(text string) string {
	out, _ := EscapeMarkdown(text, MarkdownV1)
	return out
}
