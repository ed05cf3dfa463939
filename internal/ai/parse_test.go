package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractJSONObject(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		want   string
		wantOK bool
	}{
		{"bare", `{"a":1}`, `{"a":1}`, true},
		{"prose around", "Sure! Here you go: {\"a\":1} hope this helps", `{"a":1}`, true},
		{"code fence", "```json\n{\"a\":[1,2]}\n```", `{"a":[1,2]}`, true},
		{"nested", `x {"a":{"b":{}}} y {"c":2}`, `{"a":{"b":{}}}`, true},
		{"brace in string", `{"s":"a } b { c"}`, `{"s":"a } b { c"}`, true},
		{"escaped quote", `{"s":"say \"}\" now"} tail`, `{"s":"say \"}\" now"}`, true},
		{"unbalanced", `{"a":1`, "", false},
		{"none", "not json", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ExtractJSONObject(tt.text)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseRanking(t *testing.T) {
	ids, err := ParseRanking("Ranked:\n{\"rankedShortcuts\": [\"b\", \"a\", 7]}")
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "a", "7"}, ids)

	ids, err = ParseRanking(`{"rankedShortcuts": []}`)
	require.NoError(t, err)
	assert.Empty(t, ids)

	for _, bad := range []string{
		"not json",
		`{"rankedShortcuts": "a,b"}`,
		`{"ranked": ["a"]}`,
		`{"rankedShortcuts": [1,}`,
	} {
		_, err := ParseRanking(bad)
		assert.ErrorIs(t, err, ErrMalformedReply, bad)
	}
}

func TestParseExplanation(t *testing.T) {
	s, err := ParseExplanation(`{"explanation": "  Splits the window vertically. "}`)
	require.NoError(t, err)
	assert.Equal(t, "Splits the window vertically.", s)

	for _, bad := range []string{"not json", `{"explanation": 3}`, `{"explanation": ""}`, `{}`} {
		_, err := ParseExplanation(bad)
		assert.ErrorIs(t, err, ErrMalformedReply, bad)
	}
}
