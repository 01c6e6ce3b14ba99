package chat

import (
	"testing"

	"stagelink/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func texts(us []core.Utterance) []string {
	out := make([]string, len(us))
	for i, u := range us {
		out[i] = u.Text
	}
	return out
}

func TestSegmenterSplitsOnSentenceEnd(t *testing.T) {
	s := NewSegmenter()

	us := s.Feed("Hello world. How are")
	require.Equal(t, []string{"Hello world."}, texts(us))
	assert.Equal(t, "How are", s.Buffered())

	us = s.Feed(" you?")
	require.Equal(t, []string{"How are you?"}, texts(us))
	assert.Empty(t, s.Buffered())
}

func TestSegmenterFullWidthTerminators(t *testing.T) {
	s := NewSegmenter()
	us := s.Feed("こんにちは。元気ですか？")
	assert.Equal(t, []string{"こんにちは。", "元気ですか？"}, texts(us))
}

func TestSegmenterNewlineEndsUnit(t *testing.T) {
	s := NewSegmenter()
	us := s.Feed("first line\nsecond line.")
	assert.Equal(t, []string{"first line", "second line."}, texts(us))
}

func TestSegmenterClausePauseNeedsLength(t *testing.T) {
	s := NewSegmenter()

	// Comma after fewer than ten characters does not split.
	us := s.Feed("short, but")
	assert.Empty(t, us)

	// A long enough clause splits at the pause.
	us = s.Feed(" it keeps going and going,")
	require.Len(t, us, 1)
	assert.Equal(t, "short, but it keeps going and going,", us[0].Text)
}

func TestSegmenterPrefersLongerUnit(t *testing.T) {
	// Both the clause pause and the sentence end are buffered; the full
	// sentence wins over the earlier comma split.
	s := NewSegmenter()
	us := s.Feed("Because of that, the plan failed.")
	assert.Equal(t, []string{"Because of that, the plan failed."}, texts(us))
}

func TestSegmenterLeadingTagIsRunningAnnotation(t *testing.T) {
	s := NewSegmenter()

	us := s.Feed("[happy] Nice to meet you! And you?")
	require.Equal(t, []string{"Nice to meet you!", "And you?"}, texts(us))
	assert.Equal(t, "happy", us[0].Tag)
	assert.Equal(t, "happy", us[1].Tag)
	assert.Equal(t, "happy", s.Tag())

	// A later tag replaces the running one.
	us = s.Feed("[sad] Goodbye.")
	require.Len(t, us, 1)
	assert.Equal(t, "sad", us[0].Tag)
}

func TestSegmenterTagOnlyAtUnitStart(t *testing.T) {
	s := NewSegmenter()

	// Brackets inside a sentence are content, not a directive.
	us := s.Feed("See [this] thing.")
	require.Len(t, us, 1)
	assert.Equal(t, "See [this] thing.", us[0].Text)
	assert.Empty(t, us[0].Tag)

	// After the previous unit is consumed, a tag at the new head counts.
	us = s.Feed("[angry] No way.")
	require.Len(t, us, 1)
	assert.Equal(t, "angry", us[0].Tag)
}

func TestSegmenterDiscardsHollowUnits(t *testing.T) {
	s := NewSegmenter()
	us := s.Feed("「」。Real content.")
	assert.Equal(t, []string{"Real content."}, texts(us))
	assert.Empty(t, s.Buffered())
}

func TestSegmenterFeedIsIncremental(t *testing.T) {
	s := NewSegmenter()
	s.Feed("incomplete")
	// Feeding nothing new extracts nothing new.
	assert.Empty(t, s.Feed(""))
	assert.Equal(t, "incomplete", s.Buffered())
}

func TestSegmenterChunkingDoesNotChangeOutput(t *testing.T) {
	input := "[happy] Hello there! This is fine. 最後です。tail"

	whole := NewSegmenter()
	want := whole.Feed(input)

	byRune := NewSegmenter()
	var got []core.Utterance
	for _, r := range input {
		got = append(got, byRune.Feed(string(r))...)
	}

	assert.Equal(t, want, got)
	assert.Equal(t, whole.Buffered(), byRune.Buffered())
}

func TestSegmenterCloseDropsRemainder(t *testing.T) {
	s := NewSegmenter()
	s.Feed("[happy] Done. trailing fragment")

	dropped := s.Close()
	assert.Equal(t, "trailing fragment", dropped)
	assert.Empty(t, s.Buffered())
	assert.Empty(t, s.Tag())
}
