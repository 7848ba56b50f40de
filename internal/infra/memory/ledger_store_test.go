package memory

import (
	"context"
	"testing"

	"totem-quiz-bot/internal/domain"
)

func TestLedgerStorePartitionsByUserAndQuiz(t *testing.T) {
	ctx := context.Background()
	store := NewLedgerStore()

	_ = store.Append(ctx, domain.UserAnswerRecord{TelegramUserID: 1, QuizID: 1, QuestionID: 1, AnswerID: 1})
	_ = store.Append(ctx, domain.UserAnswerRecord{TelegramUserID: 1, QuizID: 1, QuestionID: 2, AnswerID: 3})
	_ = store.Append(ctx, domain.UserAnswerRecord{TelegramUserID: 2, QuizID: 1, QuestionID: 1, AnswerID: 2})

	records, _ := store.AllFor(ctx, 1, 1)
	if len(records) != 2 {
		t.Fatalf("expected 2 records for user 1, got %d", len(records))
	}

	if err := store.DeleteAll(ctx, 1, 1); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if records, _ := store.AllFor(ctx, 1, 1); len(records) != 0 {
		t.Fatalf("expected empty ledger after reset, got %d", len(records))
	}
	if records, _ := store.AllFor(ctx, 2, 1); len(records) != 1 {
		t.Fatalf("reset touched another user: %d records", len(records))
	}
}
