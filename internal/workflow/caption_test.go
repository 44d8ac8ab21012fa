package workflow

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestBuildCaption_StripsMarkers(t *testing.T) {
	script := "HOOK: Did you know Go ships a race detector?\nBODY: It catches data races at runtime.\nCTA: Follow for more."

	caption := BuildCaption(script, nil)

	assert.NotContains(t, caption, "HOOK:")
	assert.NotContains(t, caption, "BODY:")
	assert.NotContains(t, caption, "CTA:")
	assert.Contains(t, caption, "Did you know Go ships a race detector?")
	assert.Contains(t, caption, "Follow for more.")
}

func TestBuildCaption_MarkerCaseInsensitive(t *testing.T) {
	caption := BuildCaption("hook: opening line\nbody: middle", nil)
	assert.Equal(t, "opening line\n\nmiddle", caption)
}

func TestBuildCaption_MarkerOnlyLinesDropped(t *testing.T) {
	caption := BuildCaption("HOOK:\nactual content\nCTA:", nil)
	assert.Equal(t, "actual content", caption)
}

func TestBuildCaption_AppendsHashtags(t *testing.T) {
	caption := BuildCaption("short script", []string{"tech", "#golang", "  ", "ai"})

	assert.True(t, strings.HasSuffix(caption, "\n\n#tech #golang #ai"))
}

func TestBuildCaption_HashtagsOnly(t *testing.T) {
	caption := BuildCaption("", []string{"tech"})
	assert.Equal(t, "#tech", caption)
}

func TestBuildCaption_TruncatesAtWordBoundary(t *testing.T) {
	long := strings.Repeat("word ", 600)
	caption := BuildCaption(long, []string{"tag"})

	assert.LessOrEqual(t, utf8.RuneCountInString(caption), maxCaptionLength)
	assert.True(t, strings.HasSuffix(caption, "\n\n#tag"))
	// No split words: every chunk before the hashtags is the full word.
	body := strings.TrimSuffix(caption, "\n\n#tag")
	for _, w := range strings.Fields(body) {
		assert.Equal(t, "word", w)
	}
}

func TestTruncateAtWord(t *testing.T) {
	assert.Equal(t, "hello", truncateAtWord("hello world", 8))
	assert.Equal(t, "hello world", truncateAtWord("hello world", 11))
	assert.Equal(t, "", truncateAtWord("anything", 0))
	// One word longer than the limit is hard cut.
	assert.Equal(t, "abcde", truncateAtWord("abcdefghij", 5))
}
