package chat

import (
	"regexp"
	"strings"

	"stagelink/core"
)

var (
	// A complete sentence: anything up to the first terminal mark. Both
	// ASCII and full-width terminators count, and so does a bare newline.
	sentenceEndRe = regexp.MustCompile(`(?s)^.+?[.!?。．！？\n]`)
	// A long clause: at least 10 characters before a comma-class pause.
	clausePauseRe = regexp.MustCompile(`(?s)^.{10,}?[,、，;；]`)

	// A unit that reduces to nothing once brackets, quotes, punctuation and
	// whitespace are removed carries no speakable content.
	hollowRe = regexp.MustCompile(`^[\s\p{Ps}\p{Pe}\p{Pi}\p{Pf}"'“”‘’・…~～.!?。．！？,、，;；]*$`)
)

// Segmenter incrementally extracts complete speakable units from a growing
// text buffer. It owns the unconsumed remainder exclusively: callers feed
// chunks and receive zero or more finished utterances per chunk.
type Segmenter struct {
	buf string
	tag string
}

func NewSegmenter() *Segmenter {
	return &Segmenter{}
}

// Feed appends one stream chunk and returns every utterance that became
// complete. Re-running with no new input yields nothing: extraction only
// advances when the buffer grows a full unit.
//
// The most recently seen leading tag is applied to every utterance until a
// new tag is detected: a running annotation, not a one-shot prefix.
func (s *Segmenter) Feed(chunk string) []core.Utterance {
	s.buf += chunk

	var out []core.Utterance
	for {
		if tag, rest, ok := extractLeadingTag(s.buf); ok {
			s.tag = tag
			s.buf = strings.TrimLeft(rest, " \t")
			continue
		}

		unit, rest, ok := extractUnit(s.buf)
		if !ok {
			break
		}
		s.buf = strings.TrimLeft(rest, " \t\r\n　")

		text := strings.TrimSpace(unit)
		if hollowRe.MatchString(text) {
			// Bracket/quote-only content is consumed but produces no
			// utterance, so punctuation runs can never stall the stream.
			continue
		}
		out = append(out, core.Utterance{Tag: s.tag, Text: text})
	}
	return out
}

// extractUnit tries both unit shapes against the head of the buffer and
// takes the longer match, so a clause pause never cuts a sentence short
// when its terminal mark is already buffered.
func extractUnit(buf string) (unit, rest string, ok bool) {
	m := sentenceEndRe.FindString(buf)
	if c := clausePauseRe.FindString(buf); len(c) > len(m) {
		m = c
	}
	if m == "" {
		return "", buf, false
	}
	return m, buf[len(m):], true
}

// Buffered reports the current unconsumed remainder.
func (s *Segmenter) Buffered() string {
	return s.buf
}

// Tag reports the directive currently in effect.
func (s *Segmenter) Tag() string {
	return s.tag
}

// Close ends the stream. Whatever is left in the buffer is returned to the
// caller for logging and dropped, never flushed as a final utterance: a
// malformed trailing fragment is lost rather than mis-synthesized.
func (s *Segmenter) Close() (dropped string) {
	dropped = s.buf
	s.buf = ""
	s.tag = ""
	return dropped
}
