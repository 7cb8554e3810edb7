package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	UsersCollection   = "users"
	UserEmailIndex    = "email_unique"
	UserUsernameIndex = "username_unique"
)

type UserLevel string

const (
	LevelBeginner     UserLevel = "beginner"
	LevelIntermediate UserLevel = "intermediate"
	LevelAdvanced     UserLevel = "advanced"
	LevelNative       UserLevel = "native"
)

type LanguagePreference struct {
	Language     string    `bson:"language" json:"language" validate:"required"`
	CurrentLevel UserLevel `bson:"current_level" json:"current_level" validate:"omitempty,oneof=beginner intermediate advanced native"`
	TargetLevel  UserLevel `bson:"target_level" json:"target_level" validate:"omitempty,oneof=beginner intermediate advanced native"`
}

// WithDefaults fills unset levels with beginner -> intermediate.
func (p LanguagePreference) WithDefaults() LanguagePreference {
	if p.CurrentLevel == "" {
		p.CurrentLevel = LevelBeginner
	}
	if p.TargetLevel == "" {
		p.TargetLevel = LevelIntermediate
	}
	return p
}

type User struct {
	ID                  primitive.ObjectID   `bson:"_id,omitempty"`
	Email               string               `bson:"email"`
	Username            string               `bson:"username"`
	FullName            string               `bson:"full_name"`
	HashedPassword      string               `bson:"hashed_password"`
	LanguagePreferences []LanguagePreference `bson:"language_preferences"`
	IsActive            bool                 `bson:"is_active"`
	IsVerified          bool                 `bson:"is_verified"`
	CreatedAt           time.Time            `bson:"created_at"`
	UpdatedAt           time.Time            `bson:"updated_at"`
}

// ToResponse strips the password hash.
func (u *User) ToResponse() UserResponse {
	prefs := u.LanguagePreferences
	if prefs == nil {
		prefs = []LanguagePreference{}
	}
	return UserResponse{
		ID:                  u.ID.Hex(),
		Email:               u.Email,
		Username:            u.Username,
		FullName:            u.FullName,
		LanguagePreferences: prefs,
		IsActive:            u.IsActive,
		IsVerified:          u.IsVerified,
		CreatedAt:           u.CreatedAt,
		UpdatedAt:           u.UpdatedAt,
	}
}
