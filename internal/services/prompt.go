package services

import (
	"fmt"
	"strings"
)

// Keys the scoring prompt asks the model to return.
var analysisKeys = []string{
	"transcription",
	"correction",
	"pronunciation_issues",
	"grammar_score",
	"pron_score",
	"cefr",
	"feedback_text",
}

type PromptBuilder struct{}

func NewPromptBuilder() *PromptBuilder {
	return &PromptBuilder{}
}

// BuildVoiceAnalysisPrompt creates the scoring prompt for a learner transcript
func (pb *PromptBuilder) BuildVoiceAnalysisPrompt(transcript string) string {
	return fmt.Sprintf(`You are a language tutor. Read the following transcript of a student's recording and produce:
1. A short suggested correction (one sentence)
2. Likely pronunciation errors (words or sounds)
3. Estimated grammar and pronunciation scores (0-100)
4. CEFR level (A1-C2)

TRANSCRIPT:
%s

Respond in JSON with the keys: %s

Use a JSON array of strings for pronunciation_issues and integers for the scores.`,
		transcript, strings.Join(analysisKeys, ", "))
}

// BuildQuickFeedbackPrompt creates the short plain-text feedback prompt used by
// the synchronous endpoint
func (pb *PromptBuilder) BuildQuickFeedbackPrompt(transcript string) string {
	return fmt.Sprintf(`You are a pronunciation and grammar tutor. Evaluate the following text:
'%s'
Give brief feedback on:
- Likely pronunciation errors
- Grammar correction
- Approximate level (A1-C2)`, transcript)
}
