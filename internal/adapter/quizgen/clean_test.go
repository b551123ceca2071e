package quizgen

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanResponse(t *testing.T) {
	const obj = `{"title":"T","questions":[]}`

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"unfenced is a no-op", obj, obj},
		{"json fence", "```json\n" + obj + "\n```", obj},
		{"json fence on one line", "```json" + obj + "```", obj},
		{"bare fence", "```\n" + obj + "\n```", obj},
		{"surrounding whitespace", "\n\n  ```json\n" + obj + "\n```  \n", obj},
		{"think block", "<think>the user wants a quiz</think>\n" + obj, obj},
		{"prose around object", "Here you go:\n" + obj + "\nEnjoy!", obj},
		{"array passes through", `[1,2,3]`, `[1,2,3]`},
		{"no json at all", "sorry", "sorry"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CleanResponse(tt.in))
		})
	}
}

func TestCleanResponse_RoundTrip(t *testing.T) {
	docs := []string{
		`{}`,
		`{"a":1}`,
		`{"title":"Größe","questions":[{"question_title":"Q","options":["a","b","c","d"],"answer":"a"}]}`,
		"{\n  \"nested\": {\"x\": [1, 2]}\n}",
	}
	for _, doc := range docs {
		assert.Equal(t, doc, CleanResponse("```json\n"+doc+"\n```"))
		assert.Equal(t, doc, CleanResponse(doc))
		assert.Equal(t, CleanResponse(doc), CleanResponse(CleanResponse(doc)))
	}
}

func TestTruncateRunes(t *testing.T) {
	s, cut := truncateRunes("short", 10)
	assert.Equal(t, "short", s)
	assert.False(t, cut)

	s, cut = truncateRunes("äöüäöü", 3)
	assert.Equal(t, "äöü", s)
	assert.True(t, cut)

	// five two-byte runes are ten bytes but only five characters
	s, cut = truncateRunes("äöüäö", 5)
	assert.Equal(t, "äöüäö", s)
	assert.False(t, cut)
}
