package memory

import (
	"context"
	"sync"

	"totem-quiz-bot/internal/domain"
)

type attemptKey struct {
	userID int64
	quizID int64
}

// LedgerStore is an in-memory answer ledger partitioned by (user, quiz).
type LedgerStore struct {
	mu      sync.Mutex
	records map[attemptKey][]domain.UserAnswerRecord
}

func NewLedgerStore() *LedgerStore {
	return &LedgerStore{records: make(map[attemptKey][]domain.UserAnswerRecord)}
}

func (s *LedgerStore) Append(_ context.Context, record domain.UserAnswerRecord) error {
	key := attemptKey{userID: record.TelegramUserID, quizID: record.QuizID}
	s.mu.Lock()
	s.records[key] = append(s.records[key], record)
	s.mu.Unlock()
	return nil
}

func (s *LedgerStore) DeleteAll(_ context.Context, userID, quizID int64) error {
	s.mu.Lock()
	delete(s.records, attemptKey{userID: userID, quizID: quizID})
	s.mu.Unlock()
	return nil
}

func (s *LedgerStore) AllFor(_ context.Context, userID, quizID int64) ([]domain.UserAnswerRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	records := s.records[attemptKey{userID: userID, quizID: quizID}]
	out := make([]domain.UserAnswerRecord, len(records))
	copy(out, records)
	return out, nil
}
