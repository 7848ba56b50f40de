package domain

import "time"

// OutcomeEntity is the subject a completed quiz resolves to (for example a zoo animal).
type OutcomeEntity struct {
	ID        int64  `json:"id" yaml:"id"`
	Name      string `json:"name" yaml:"name"`
	DetailURL string `json:"detailUrl" yaml:"detail_url"`
	ImageURL  string `json:"imageUrl" yaml:"image_url"`
}

// Question is an immutable reference record.
type Question struct {
	ID   int64  `json:"id" yaml:"id"`
	Text string `json:"text" yaml:"text"`
}

// Answer belongs to exactly one question and votes for zero or more outcome entities.
type Answer struct {
	ID               int64   `json:"id" yaml:"id"`
	Text             string  `json:"text" yaml:"text"`
	QuestionID       int64   `json:"questionId" yaml:"question_id"`
	OutcomeEntityIDs []int64 `json:"outcomeEntityIds" yaml:"outcomes"`
}

// QuizQuestion places a question inside a quiz. Orders are unique per quiz but may have gaps.
type QuizQuestion struct {
	Question Question `json:"question"`
	Order    int      `json:"order"`
}

// Quiz is an ordered collection of questions; at most one quiz is active at a time.
type Quiz struct {
	ID       int64  `json:"id" yaml:"id"`
	Name     string `json:"name" yaml:"name"`
	IsActive bool   `json:"isActive" yaml:"active"`
}

// UserAnswerRecord is one entry of the append-only answer ledger.
type UserAnswerRecord struct {
	TelegramUserID int64
	QuizID         int64
	QuestionID     int64
	AnswerID       int64
	CreatedAt      time.Time
}

// BotIdentity describes the bot account itself.
type BotIdentity struct {
	ID        int64
	Username  string
	FirstName string
}
