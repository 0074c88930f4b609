package vision

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseAnalysis_PlainJSON(t *testing.T) {
	a := ParseAnalysis(`{"description":"A red chair in a studio.","categories":["furniture"],"objects":["chair"],"scene":"studio","mood":"professional"}`)
	assert.Equal(t, "A red chair in a studio.", a.Description)
	assert.Equal(t, []string{"furniture"}, a.Categories)
	assert.Equal(t, []string{"chair"}, a.Objects)
	assert.Equal(t, "studio", a.Scene)
	assert.Equal(t, "professional", a.Mood)
}

func TestParseAnalysis_FencedCodeBlock(t *testing.T) {
	raw := "```json\n{\"description\":\"Sunset over water.\",\"scene\":\"outdoor\",\"mood\":\"serene\"}\n```"
	a := ParseAnalysis(raw)
	assert.Equal(t, "Sunset over water.", a.Description)
	assert.Equal(t, "outdoor", a.Scene)
	assert.Equal(t, "serene", a.Mood)
	// Absent arrays come back empty, not nil.
	assert.NotNil(t, a.Categories)
	assert.NotNil(t, a.Objects)
}

func TestParseAnalysis_FencedWithoutLanguageTag(t *testing.T) {
	raw := "```\n{\"description\":\"A dog.\",\"scene\":\"outdoor\",\"mood\":\"happy\"}\n```"
	a := ParseAnalysis(raw)
	assert.Equal(t, "A dog.", a.Description)
}

func TestParseAnalysis_MalformedFallsBack(t *testing.T) {
	raw := "I see a picture of a cat sitting on a windowsill."
	a := ParseAnalysis(raw)
	assert.Equal(t, raw, a.Description)
	assert.Equal(t, "unknown", a.Scene)
	assert.Equal(t, "neutral", a.Mood)
	assert.Empty(t, a.Categories)
	assert.Empty(t, a.Objects)
}

func TestParseAnalysis_FallbackTruncatesLongOutput(t *testing.T) {
	raw := strings.Repeat("x", 2000)
	a := ParseAnalysis(raw)
	assert.Len(t, a.Description, fallbackDescriptionLimit)
	assert.Equal(t, "unknown", a.Scene)
}

func TestParseAnalysis_MissingFieldsDefaulted(t *testing.T) {
	a := ParseAnalysis(`{"description":"Something."}`)
	assert.Equal(t, "unknown", a.Scene)
	assert.Equal(t, "neutral", a.Mood)
}
