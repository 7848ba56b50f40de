package postgres

import (
	"context"

	"github.com/jackc/pgx/v4/pgxpool"

	"totem-quiz-bot/internal/domain"
)

// LedgerStore persists in-progress quiz answers in user_quiz_answers.
type LedgerStore struct {
	pool *pgxpool.Pool
}

func NewLedgerStore(pool *pgxpool.Pool) *LedgerStore {
	return &LedgerStore{pool: pool}
}

func (s *LedgerStore) Append(ctx context.Context, r domain.UserAnswerRecord) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO user_quiz_answers (telegram_user_id, quiz_id, question_id, answer_id, created_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		r.TelegramUserID, r.QuizID, r.QuestionID, r.AnswerID, r.CreatedAt,
	)
	if err != nil {
		return storageErr("append answer", err)
	}
	return nil
}

func (s *LedgerStore) DeleteAll(ctx context.Context, userID, quizID int64) error {
	_, err := s.pool.Exec(ctx,
		`DELETE FROM user_quiz_answers WHERE telegram_user_id = $1 AND quiz_id = $2`,
		userID, quizID,
	)
	if err != nil {
		return storageErr("reset attempt", err)
	}
	return nil
}

func (s *LedgerStore) AllFor(ctx context.Context, userID, quizID int64) ([]domain.UserAnswerRecord, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT telegram_user_id, quiz_id, question_id, answer_id, created_at
		 FROM user_quiz_answers
		 WHERE telegram_user_id = $1 AND quiz_id = $2
		 ORDER BY id`,
		userID, quizID,
	)
	if err != nil {
		return nil, storageErr("load answers", err)
	}
	defer rows.Close()

	var records []domain.UserAnswerRecord
	for rows.Next() {
		var r domain.UserAnswerRecord
		if err := rows.Scan(&r.TelegramUserID, &r.QuizID, &r.QuestionID, &r.AnswerID, &r.CreatedAt); err != nil {
			return nil, storageErr("scan answer record", err)
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("load answers", err)
	}
	return records, nil
}
