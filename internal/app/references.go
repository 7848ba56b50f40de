package app

import (
	"context"
	"fmt"

	"totem-quiz-bot/internal/cache"
	"totem-quiz-bot/internal/domain"
)

// References serves quiz definitions through the read-through cache.
// Writes to the store are not propagated; readers may see data up to one TTL old.
type References struct {
	store ReferenceStore
	cache *cache.Cache
}

func NewReferences(store ReferenceStore, c *cache.Cache) *References {
	return &References{store: store, cache: c}
}

func (r *References) ActiveQuiz(ctx context.Context) (domain.Quiz, bool, error) {
	return cache.Fetch(ctx, r.cache, "active_quiz", func(ctx context.Context) (domain.Quiz, bool, error) {
		return r.store.ActiveQuiz(ctx)
	})
}

func (r *References) FirstQuestion(ctx context.Context, quizID int64) (domain.Question, bool, error) {
	key := fmt.Sprintf("quiz:%d:first", quizID)
	return cache.Fetch(ctx, r.cache, key, func(ctx context.Context) (domain.Question, bool, error) {
		placed, err := r.store.QuestionsInOrder(ctx, quizID)
		if err != nil {
			return domain.Question{}, false, err
		}
		q, ok := FirstQuestion(placed)
		return q, ok, nil
	})
}

func (r *References) NextQuestion(ctx context.Context, quizID, questionID int64) (domain.Question, bool, error) {
	key := fmt.Sprintf("quiz:%d:next:%d", quizID, questionID)
	return cache.Fetch(ctx, r.cache, key, func(ctx context.Context) (domain.Question, bool, error) {
		placed, err := r.store.QuestionsInOrder(ctx, quizID)
		if err != nil {
			return domain.Question{}, false, err
		}
		q, ok := NextQuestion(placed, questionID)
		return q, ok, nil
	})
}

func (r *References) Answers(ctx context.Context, questionID int64) ([]domain.Answer, error) {
	key := fmt.Sprintf("question:%d:answers", questionID)
	answers, _, err := cache.Fetch(ctx, r.cache, key, func(ctx context.Context) ([]domain.Answer, bool, error) {
		answers, err := r.store.Answers(ctx, questionID)
		return answers, true, err
	})
	return answers, err
}

func (r *References) OutcomeEntity(ctx context.Context, id int64) (domain.OutcomeEntity, bool, error) {
	key := fmt.Sprintf("outcome:%d", id)
	return cache.Fetch(ctx, r.cache, key, func(ctx context.Context) (domain.OutcomeEntity, bool, error) {
		return r.store.OutcomeEntity(ctx, id)
	})
}
