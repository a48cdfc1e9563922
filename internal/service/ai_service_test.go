package service

import (
	"strings"
	"testing"

	"github.com/autumsam/postpilot/internal/composer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildGenerationPromptTopicOnly(t *testing.T) {
	req := &composer.GenerationRequest{Topic: "cold brew coffee"}

	system, prompt := buildGenerationPrompt(req, nil, nil)

	assert.Contains(t, system, `{"primary": "...", "variants": ["...", "..."]}`)
	assert.Contains(t, prompt, "Write a social media post about: cold brew coffee")
	assert.NotContains(t, prompt, "Target platform")
	assert.NotContains(t, prompt, "Tone:")
}

func TestBuildGenerationPromptCustomPromptWins(t *testing.T) {
	req := &composer.GenerationRequest{
		Topic:        "ignored",
		CustomPrompt: "  announce our summer sale  ",
	}

	_, prompt := buildGenerationPrompt(req, nil, nil)

	assert.True(t, strings.HasPrefix(prompt, "announce our summer sale"))
	assert.NotContains(t, prompt, "ignored")
}

func TestBuildGenerationPromptOptions(t *testing.T) {
	req := &composer.GenerationRequest{
		Topic:        "go generics",
		PlatformHint: composer.PlatformLinkedIn,
		Tone:         composer.ToneProfessional,
		Length:       composer.LengthShort,
	}

	_, prompt := buildGenerationPrompt(req, nil, nil)

	assert.Contains(t, prompt, "Target platform: linkedin.")
	assert.Contains(t, prompt, "Tone: professional.")
	assert.Contains(t, prompt, "under 100 characters")
}

func TestBuildGenerationPromptLengthRules(t *testing.T) {
	tests := []struct {
		length composer.Length
		want   string
	}{
		{composer.LengthShort, "under 100 characters"},
		{composer.LengthMedium, "between 100 and 280 characters"},
		{composer.LengthLong, "up to 500 characters"},
	}

	for _, tt := range tests {
		_, prompt := buildGenerationPrompt(&composer.GenerationRequest{Topic: "x", Length: tt.length}, nil, nil)
		assert.Contains(t, prompt, tt.want)
	}
}

func TestBuildGenerationPromptFoldsContext(t *testing.T) {
	req := &composer.GenerationRequest{Topic: "product launch"}
	captions := []string{"our last drop sold out", "back in stock"}
	topics := []string{"#MondayMotivation", "AI tools"}

	_, prompt := buildGenerationPrompt(req, captions, topics)

	assert.Contains(t, prompt, "Match the voice of these recent posts:")
	assert.Contains(t, prompt, "- our last drop sold out")
	assert.Contains(t, prompt, "- back in stock")
	assert.Contains(t, prompt, "#MondayMotivation, AI tools")
}

func TestBuildGenerationPromptTruncatesLongCaptions(t *testing.T) {
	long := strings.Repeat("x", 300)

	_, prompt := buildGenerationPrompt(&composer.GenerationRequest{Topic: "t"}, []string{long}, nil)

	assert.Contains(t, prompt, strings.Repeat("x", 200)+"...")
	assert.NotContains(t, prompt, strings.Repeat("x", 201))
}

func TestParseCandidate(t *testing.T) {
	got, err := parseCandidate(`{"primary": " hello ", "variants": ["a", "  ", "b"]}`)
	require.NoError(t, err)

	assert.Equal(t, "hello", got.Primary)
	assert.Equal(t, []string{"a", "b"}, got.Variants)
}

func TestParseCandidateEmptyPrimaryRejected(t *testing.T) {
	_, err := parseCandidate(`{"primary": "   ", "variants": ["a"]}`)
	assert.Error(t, err)
}

func TestParseCandidateBadJSONRejected(t *testing.T) {
	_, err := parseCandidate("sorry, I cannot help with that")
	assert.Error(t, err)
}

func TestUnmarshalModelJSONStripsCodeFences(t *testing.T) {
	raw := "```json\n{\"primary\": \"fenced\", \"variants\": []}\n```"

	var out composer.Candidate
	require.NoError(t, unmarshalModelJSON(raw, &out))
	assert.Equal(t, "fenced", out.Primary)
}

func TestUnmarshalModelJSONExtractsEmbeddedObject(t *testing.T) {
	raw := `Here is your post: {"primary": "embedded", "variants": ["v"]} hope you like it`

	var out composer.Candidate
	require.NoError(t, unmarshalModelJSON(raw, &out))
	assert.Equal(t, "embedded", out.Primary)
	assert.Equal(t, []string{"v"}, out.Variants)
}

func TestUnmarshalModelJSONExtractsEmbeddedArray(t *testing.T) {
	raw := "Sure!\n[{\"topic\": \"AI\", \"engagement\": \"high\"}]"

	var out []struct {
		Topic      string `json:"topic"`
		Engagement string `json:"engagement"`
	}
	require.NoError(t, unmarshalModelJSON(raw, &out))
	require.Len(t, out, 1)
	assert.Equal(t, "AI", out[0].Topic)
}

func TestTruncateText(t *testing.T) {
	assert.Equal(t, "short", truncateText("short", 10))
	assert.Equal(t, "abc...", truncateText("abcdef", 3))
	assert.Equal(t, "héé...", truncateText("héééé", 3))
}
