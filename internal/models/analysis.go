package models

import "strings"

type CEFRLevel string

const (
	CEFRA1 CEFRLevel = "A1"
	CEFRA2 CEFRLevel = "A2"
	CEFRB1 CEFRLevel = "B1"
	CEFRB2 CEFRLevel = "B2"
	CEFRC1 CEFRLevel = "C1"
	CEFRC2 CEFRLevel = "C2"
)

// ParseCEFRLevel normalizes a label such as "b2" or " B2 " and reports
// whether it names a CEFR band.
func ParseCEFRLevel(s string) (CEFRLevel, bool) {
	level := CEFRLevel(strings.ToUpper(strings.TrimSpace(s)))
	switch level {
	case CEFRA1, CEFRA2, CEFRB1, CEFRB2, CEFRC1, CEFRC2:
		return level, true
	}
	return "", false
}

// Analysis is the scored feedback for one transcript. When the scoring
// response cannot be parsed only Transcription and FeedbackText are set and
// Degraded is true.
type Analysis struct {
	Transcription       string    `json:"transcription,omitempty" bson:"transcription,omitempty"`
	Correction          string    `json:"correction,omitempty" bson:"correction,omitempty"`
	PronunciationIssues []string  `json:"pronunciation_issues,omitempty" bson:"pronunciation_issues,omitempty"`
	GrammarScore        *int      `json:"grammar_score,omitempty" bson:"grammar_score,omitempty"`
	PronScore           *int      `json:"pron_score,omitempty" bson:"pron_score,omitempty"`
	CEFR                CEFRLevel `json:"cefr,omitempty" bson:"cefr,omitempty"`
	FeedbackText        string    `json:"feedback_text" bson:"feedback_text"`
	Degraded            bool      `json:"degraded,omitempty" bson:"degraded,omitempty"`
}
