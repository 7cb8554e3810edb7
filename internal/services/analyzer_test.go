package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"linguamentor/backend/internal/models"
)

func TestAnalyzeParsesScoredResponse(t *testing.T) {
	provider := &fakeProvider{response: "```json\n" + `{
		"transcription": "Hello world",
		"correction": "Hello, world.",
		"pronunciation_issues": ["world /w/"],
		"grammar_score": 92,
		"pron_score": "78",
		"cefr": "b1",
		"feedback_text": "Good start."
	}` + "\n```"}
	analyzer := NewVoiceAnalyzer(provider)

	analysis, err := analyzer.Analyze(context.Background(), "Hello world")
	require.NoError(t, err)

	assert.False(t, analysis.Degraded)
	assert.Equal(t, "Hello world", analysis.Transcription)
	assert.Equal(t, "Hello, world.", analysis.Correction)
	assert.Equal(t, []string{"world /w/"}, analysis.PronunciationIssues)
	require.NotNil(t, analysis.GrammarScore)
	assert.Equal(t, 92, *analysis.GrammarScore)
	require.NotNil(t, analysis.PronScore)
	assert.Equal(t, 78, *analysis.PronScore)
	assert.Equal(t, models.CEFRB1, analysis.CEFR)
	assert.Equal(t, "Good start.", analysis.FeedbackText)

	require.Len(t, provider.options, 1)
	assert.True(t, provider.options[0].JSON)
	assert.Contains(t, provider.prompts[0], "Hello world")
	assert.Contains(t, provider.prompts[0], "pronunciation_issues")
}

func TestAnalyzeNormalizesFields(t *testing.T) {
	provider := &fakeProvider{response: `{"pronunciation_issues": "th in 'three'", "grammar_score": 140, "pron_score": -5, "cefr": "Z9"}`}

	analysis, err := NewVoiceAnalyzer(provider).Analyze(context.Background(), "three trees")
	require.NoError(t, err)

	assert.Equal(t, "three trees", analysis.Transcription)
	assert.Equal(t, []string{"th in 'three'"}, analysis.PronunciationIssues)
	assert.Equal(t, 100, *analysis.GrammarScore)
	assert.Equal(t, 0, *analysis.PronScore)
	assert.Empty(t, analysis.CEFR)
}

func TestAnalyzeDegradesOnUnparseableResponse(t *testing.T) {
	tests := []struct {
		name     string
		response string
	}{
		{name: "plain text", response: "Nice work, keep practising."},
		{name: "array", response: `["a", "b"]`},
		{name: "broken json", response: `{"grammar_score": 80,`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			analysis, err := NewVoiceAnalyzer(&fakeProvider{response: tt.response}).Analyze(context.Background(), "Hello world")
			require.NoError(t, err)

			assert.True(t, analysis.Degraded)
			assert.Equal(t, "Hello world", analysis.Transcription)
			assert.Equal(t, tt.response, analysis.FeedbackText)
			assert.Nil(t, analysis.GrammarScore)
		})
	}
}

func TestAnalyzeReturnsProviderError(t *testing.T) {
	cause := errors.New("rate limited")
	_, err := NewVoiceAnalyzer(&fakeProvider{generateErr: cause}).Analyze(context.Background(), "Hello")
	assert.ErrorIs(t, err, cause)
}

func TestQuickFeedbackCapsTokens(t *testing.T) {
	provider := &fakeProvider{response: "Level A2. Say 'went', not 'goed'."}

	feedback, err := NewVoiceAnalyzer(provider).QuickFeedback(context.Background(), "I goed home")
	require.NoError(t, err)

	assert.Equal(t, "Level A2. Say 'went', not 'goed'.", feedback)
	assert.Equal(t, 200, provider.options[0].MaxTokens)
	assert.False(t, provider.options[0].JSON)
	assert.Contains(t, provider.prompts[0], "I goed home")
}

func TestAudioMIMEType(t *testing.T) {
	assert.Equal(t, "audio/wav", audioMIMEType("sample.WAV"))
	assert.Equal(t, "audio/mp3", audioMIMEType("a.mp3"))
	assert.Equal(t, "audio/wav", audioMIMEType("noext"))
}
