package models

import "time"

type CreateUserRequest struct {
	Email               string               `json:"email" validate:"required,email"`
	Username            string               `json:"username" validate:"required,min=3,max=50"`
	FullName            string               `json:"full_name" validate:"required,min=1,max=100"`
	Password            string               `json:"password" validate:"required,min=8"`
	LanguagePreferences []LanguagePreference `json:"language_preferences" validate:"dive"`
}

type UserResponse struct {
	ID                  string               `json:"_id"`
	Email               string               `json:"email"`
	Username            string               `json:"username"`
	FullName            string               `json:"full_name"`
	LanguagePreferences []LanguagePreference `json:"language_preferences"`
	IsActive            bool                 `json:"is_active"`
	IsVerified          bool                 `json:"is_verified"`
	CreatedAt           time.Time            `json:"created_at"`
	UpdatedAt           time.Time            `json:"updated_at"`
}

type QueuedUploadResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Detail string `json:"detail"`
}

type VoiceFeedbackResponse struct {
	Transcription string `json:"transcription"`
	Feedback      string `json:"feedback"`
}

type MessageResponse struct {
	Message string `json:"message"`
}
