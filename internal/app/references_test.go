package app_test

import (
	"context"
	"testing"
	"time"

	"totem-quiz-bot/internal/app"
	"totem-quiz-bot/internal/cache"
	"totem-quiz-bot/internal/domain"
	"totem-quiz-bot/internal/infra/memory"
)

type countingStore struct {
	app.ReferenceStore
	active, questions, answers, outcomes int
}

func (s *countingStore) ActiveQuiz(ctx context.Context) (domain.Quiz, bool, error) {
	s.active++
	return s.ReferenceStore.ActiveQuiz(ctx)
}

func (s *countingStore) QuestionsInOrder(ctx context.Context, quizID int64) ([]domain.QuizQuestion, error) {
	s.questions++
	return s.ReferenceStore.QuestionsInOrder(ctx, quizID)
}

func (s *countingStore) Answers(ctx context.Context, questionID int64) ([]domain.Answer, error) {
	s.answers++
	return s.ReferenceStore.Answers(ctx, questionID)
}

func (s *countingStore) OutcomeEntity(ctx context.Context, id int64) (domain.OutcomeEntity, bool, error) {
	s.outcomes++
	return s.ReferenceStore.OutcomeEntity(ctx, id)
}

func TestReferencesReadThroughWithTTL(t *testing.T) {
	inner, err := memory.NewReferenceStore(lionCatalog())
	if err != nil {
		t.Fatalf("store: %v", err)
	}
	store := &countingStore{ReferenceStore: inner}
	now := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	backend := memory.NewCacheBackendWithClock(func() time.Time { return now })
	refs := app.NewReferences(store, cache.New(backend, 5*time.Minute, nil))
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		quiz, ok, err := refs.ActiveQuiz(ctx)
		if err != nil || !ok || quiz.ID != 1 {
			t.Fatalf("active quiz: %+v ok=%v err=%v", quiz, ok, err)
		}
	}
	if store.active != 1 {
		t.Fatalf("expected one store read, got %d", store.active)
	}

	// The "no next question" answer is cached as well.
	for i := 0; i < 2; i++ {
		if _, ok, _ := refs.NextQuestion(ctx, 1, 12); ok {
			t.Fatalf("expected no question after Q2")
		}
	}
	if store.questions != 1 {
		t.Fatalf("expected one questions read, got %d", store.questions)
	}

	now = now.Add(5 * time.Minute)
	if _, _, err := refs.ActiveQuiz(ctx); err != nil {
		t.Fatalf("active quiz after ttl: %v", err)
	}
	if store.active != 2 {
		t.Fatalf("expected reload after ttl, got %d reads", store.active)
	}
}

func TestReferencesStaleUntilTTL(t *testing.T) {
	inner, _ := memory.NewReferenceStore(memory.Catalog{Quizzes: []memory.CatalogQuiz{
		{Quiz: domain.Quiz{ID: 1, IsActive: true}},
		{Quiz: domain.Quiz{ID: 2}},
	}})
	now := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	backend := memory.NewCacheBackendWithClock(func() time.Time { return now })
	refs := app.NewReferences(inner, cache.New(backend, time.Minute, nil))
	ctx := context.Background()

	if quiz, _, _ := refs.ActiveQuiz(ctx); quiz.ID != 1 {
		t.Fatalf("expected quiz 1, got %d", quiz.ID)
	}
	if err := inner.ActivateQuiz(ctx, 2); err != nil {
		t.Fatalf("activate: %v", err)
	}
	if quiz, _, _ := refs.ActiveQuiz(ctx); quiz.ID != 1 {
		t.Fatalf("expected cached quiz 1 within ttl, got %d", quiz.ID)
	}
	now = now.Add(time.Minute)
	if quiz, _, _ := refs.ActiveQuiz(ctx); quiz.ID != 2 {
		t.Fatalf("expected quiz 2 after ttl, got %d", quiz.ID)
	}
}
