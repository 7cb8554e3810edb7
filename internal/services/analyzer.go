package services

import (
	"context"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"

	"linguamentor/backend/internal/models"
)

const (
	analysisTemperature      = 0.2
	quickFeedbackTemperature = 0.7
	quickFeedbackMaxTokens   = 200
)

// VoiceAnalyzer turns a recording into a transcript and tutor feedback using
// the configured AI provider.
type VoiceAnalyzer struct {
	provider      AIProvider
	promptBuilder *PromptBuilder
}

func NewVoiceAnalyzer(provider AIProvider) *VoiceAnalyzer {
	return &VoiceAnalyzer{
		provider:      provider,
		promptBuilder: NewPromptBuilder(),
	}
}

func (a *VoiceAnalyzer) Transcribe(ctx context.Context, filename string, audio io.Reader) (string, error) {
	return a.provider.Transcribe(ctx, filename, audio)
}

// Analyze scores a transcript. A provider error is returned as is; a response
// that is not a JSON object yields a degraded analysis carrying the raw text.
func (a *VoiceAnalyzer) Analyze(ctx context.Context, transcript string) (models.Analysis, error) {
	prompt := a.promptBuilder.BuildVoiceAnalysisPrompt(transcript)

	response, err := a.provider.GenerateText(ctx, prompt, GenerateOptions{
		Temperature: analysisTemperature,
		JSON:        true,
	})
	if err != nil {
		return models.Analysis{}, fmt.Errorf("failed to score transcript: %w", err)
	}

	return parseAnalysis(transcript, response), nil
}

// QuickFeedback returns short plain-text feedback for a transcript.
func (a *VoiceAnalyzer) QuickFeedback(ctx context.Context, transcript string) (string, error) {
	prompt := a.promptBuilder.BuildQuickFeedbackPrompt(transcript)

	feedback, err := a.provider.GenerateText(ctx, prompt, GenerateOptions{
		Temperature: quickFeedbackTemperature,
		MaxTokens:   quickFeedbackMaxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("failed to generate feedback: %w", err)
	}

	return feedback, nil
}

func parseAnalysis(transcript, response string) models.Analysis {
	jsonStr := extractJSON(response)
	if !gjson.Valid(jsonStr) {
		return degradedAnalysis(transcript, response)
	}

	parsed := gjson.Parse(jsonStr)
	if !parsed.IsObject() {
		return degradedAnalysis(transcript, response)
	}

	analysis := models.Analysis{
		Transcription:       strings.TrimSpace(parsed.Get("transcription").String()),
		Correction:          strings.TrimSpace(parsed.Get("correction").String()),
		PronunciationIssues: stringList(parsed.Get("pronunciation_issues")),
		GrammarScore:        score(parsed.Get("grammar_score")),
		PronScore:           score(parsed.Get("pron_score")),
		FeedbackText:        strings.TrimSpace(parsed.Get("feedback_text").String()),
	}
	if analysis.Transcription == "" {
		analysis.Transcription = transcript
	}
	if level, ok := models.ParseCEFRLevel(parsed.Get("cefr").String()); ok {
		analysis.CEFR = level
	}

	return analysis
}

func degradedAnalysis(transcript, response string) models.Analysis {
	return models.Analysis{
		Transcription: transcript,
		FeedbackText:  response,
		Degraded:      true,
	}
}

// score reads a number (or numeric string) and clamps it into 0-100.
func score(r gjson.Result) *int {
	var v float64
	switch r.Type {
	case gjson.Number:
		v = r.Num
	case gjson.String:
		f, err := strconv.ParseFloat(strings.TrimSpace(strings.TrimSuffix(r.Str, "%")), 64)
		if err != nil {
			return nil
		}
		v = f
	default:
		return nil
	}

	n := int(math.Round(math.Max(0, math.Min(100, v))))
	return &n
}

// stringList accepts either an array of strings or a single string.
func stringList(r gjson.Result) []string {
	if r.IsArray() {
		var out []string
		for _, item := range r.Array() {
			if s := strings.TrimSpace(item.String()); s != "" {
				out = append(out, s)
			}
		}
		return out
	}

	if r.Type == gjson.String {
		if s := strings.TrimSpace(r.Str); s != "" {
			return []string{s}
		}
	}

	return nil
}

// extractJSON tries to extract JSON from text that might contain markdown or other formatting
func extractJSON(text string) string {
	// Remove markdown code blocks
	text = strings.ReplaceAll(text, "```json", "")
	text = strings.ReplaceAll(text, "```", "")

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start != -1 && end > start {
		return text[start : end+1]
	}

	return strings.TrimSpace(text)
}
