package app

import (
	"context"
	"time"

	"totem-quiz-bot/internal/domain"
)

// Ledger records the answers of a user's in-progress attempt.
type Ledger struct {
	store LedgerStore
	now   func() time.Time
}

func NewLedger(store LedgerStore) *Ledger {
	return &Ledger{store: store, now: time.Now}
}

// Record appends one answer to the user's attempt.
func (l *Ledger) Record(ctx context.Context, userID, quizID, questionID, answerID int64) error {
	return l.store.Append(ctx, domain.UserAnswerRecord{
		TelegramUserID: userID,
		QuizID:         quizID,
		QuestionID:     questionID,
		AnswerID:       answerID,
		CreatedAt:      l.now().UTC(),
	})
}

// ResetAttempt discards every answer the user gave for quizID.
func (l *Ledger) ResetAttempt(ctx context.Context, userID, quizID int64) error {
	return l.store.DeleteAll(ctx, userID, quizID)
}

// Answers returns the user's answers for quizID in submission order.
func (l *Ledger) Answers(ctx context.Context, userID, quizID int64) ([]domain.UserAnswerRecord, error) {
	return l.store.AllFor(ctx, userID, quizID)
}
