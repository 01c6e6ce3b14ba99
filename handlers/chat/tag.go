package chat

import "regexp"

// Bracketed directives arrive inline with the streamed text, e.g.
// "[happy] Nice to meet you!". A tag only counts when it sits at the very
// start of the unconsumed buffer; brackets later in a sentence are content.
var leadingTagRe = regexp.MustCompile(`^\[([^\[\]]+)\]`)

// extractLeadingTag detects a bracketed directive at offset 0. When found
// it returns the tag name and the buffer with the token removed; otherwise
// it returns ok=false and the buffer unchanged.
func extractLeadingTag(buf string) (tag, rest string, ok bool) {
	m := leadingTagRe.FindStringSubmatch(buf)
	if m == nil {
		return "", buf, false
	}
	return m[1], buf[len(m[0]):], true
}
