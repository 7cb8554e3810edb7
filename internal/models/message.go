package models

import "time"

// UploadMessage is published to the voice queue once per accepted upload.
type UploadMessage struct {
	ID          string    `json:"id,omitempty"`
	Filename    string    `json:"filename"`
	Size        int64     `json:"size"`
	Filepath    string    `json:"filepath,omitempty"`
	ContentType string    `json:"content_type,omitempty"`
	UploadedAt  time.Time `json:"uploaded_at"`
}

// ResultMessage is published to the feedback queue once per processed upload
// and stored verbatim by the evaluation consumer.
type ResultMessage struct {
	OriginalName  string         `json:"original_name" bson:"original_name"`
	Filepath      string         `json:"filepath" bson:"filepath"`
	Transcription string         `json:"transcription" bson:"transcription"`
	Analysis      Analysis       `json:"analysis" bson:"analysis"`
	Metadata      ResultMetadata `json:"metadata" bson:"metadata"`
}

type ResultMetadata struct {
	Size int64 `json:"size" bson:"size"`
}
