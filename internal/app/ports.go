package app

import (
	"context"

	"totem-quiz-bot/internal/domain"
)

// ReferenceStore is the source of truth for quiz definitions (Postgres, YAML catalog, etc).
type ReferenceStore interface {
	ActiveQuiz(ctx context.Context) (domain.Quiz, bool, error)
	QuestionsInOrder(ctx context.Context, quizID int64) ([]domain.QuizQuestion, error)
	Answers(ctx context.Context, questionID int64) ([]domain.Answer, error)
	OutcomeEntity(ctx context.Context, id int64) (domain.OutcomeEntity, bool, error)
}

// QuizActivator is the write path that keeps exactly one quiz active.
type QuizActivator interface {
	ActivateQuiz(ctx context.Context, quizID int64) error
}

// LedgerStore persists answers of in-progress attempts.
type LedgerStore interface {
	Append(ctx context.Context, record domain.UserAnswerRecord) error
	DeleteAll(ctx context.Context, userID, quizID int64) error
	AllFor(ctx context.Context, userID, quizID int64) ([]domain.UserAnswerRecord, error)
}

// SessionStore holds per-user session contexts. Load never fails for a missing key.
type SessionStore interface {
	Load(ctx context.Context, key domain.SessionKey) (domain.SessionContext, error)
	Save(ctx context.Context, sc domain.SessionContext) error
	Delete(ctx context.Context, key domain.SessionKey) error
}

// Platform is the outbound side of the messaging platform. Every error wraps domain.ErrPlatformRequest.
type Platform interface {
	SendText(ctx context.Context, chatID int64, text string, keyboard domain.Keyboard) (int64, error)
	SendPhoto(ctx context.Context, chatID int64, photoURL, caption string, keyboard domain.Keyboard) (int64, error)
	EditText(ctx context.Context, chatID, messageID int64, text string, keyboard domain.Keyboard) error
	DeleteMessage(ctx context.Context, chatID, messageID int64) error
	AnswerCallback(ctx context.Context, callbackID, text string) error
	Me(ctx context.Context) (domain.BotIdentity, error)
}
