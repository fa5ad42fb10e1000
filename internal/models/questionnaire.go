package models

import "time"

// QuestionnaireAnswer stores one onboarding questionnaire response. Question
// and Answer are stable keys mapped to preference text by the profile
// context builder, not free-form user text.
type QuestionnaireAnswer struct {
	ID        uint   `gorm:"primaryKey"`
	UserID    string `gorm:"size:128;not null;uniqueIndex:idx_answer_user_question"`
	Question  string `gorm:"size:64;not null;uniqueIndex:idx_answer_user_question"`
	Answer    string `gorm:"size:64;not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
