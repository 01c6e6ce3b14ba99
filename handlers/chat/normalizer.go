package chat

import (
	"regexp"
	"strings"
)

// normalizeForSpeech cleans an extracted utterance before it is handed to
// synthesis: markdown markers and emojis read terribly out loud.
func normalizeForSpeech(text string) string {
	for _, marker := range []string{"**", "__", "~~", "*", "`"} {
		text = strings.ReplaceAll(text, marker, "")
	}
	text = removeEmojiRe.ReplaceAllString(text, "")
	text = multiSpaceRe.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

var (
	removeEmojiRe = regexp.MustCompile(`[^\p{L}\p{N}\p{P}\p{Z}]`)
	multiSpaceRe  = regexp.MustCompile(`[ \t]+`)
)
