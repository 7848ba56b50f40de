package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"totem-quiz-bot/internal/domain"
)

// ReferenceStore reads quiz definitions from Postgres.
type ReferenceStore struct {
	pool *pgxpool.Pool
}

func NewReferenceStore(pool *pgxpool.Pool) *ReferenceStore {
	return &ReferenceStore{pool: pool}
}

func (s *ReferenceStore) ActiveQuiz(ctx context.Context) (domain.Quiz, bool, error) {
	var quiz domain.Quiz
	err := s.pool.QueryRow(ctx,
		`SELECT id, name, is_active FROM quizzes WHERE is_active ORDER BY id LIMIT 1`,
	).Scan(&quiz.ID, &quiz.Name, &quiz.IsActive)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Quiz{}, false, nil
	}
	if err != nil {
		return domain.Quiz{}, false, storageErr("load active quiz", err)
	}
	return quiz, true, nil
}

func (s *ReferenceStore) QuestionsInOrder(ctx context.Context, quizID int64) ([]domain.QuizQuestion, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT q.id, q.text, qq.position
		 FROM quiz_questions qq
		 JOIN questions q ON q.id = qq.question_id
		 WHERE qq.quiz_id = $1
		 ORDER BY qq.position`,
		quizID,
	)
	if err != nil {
		return nil, storageErr("load quiz questions", err)
	}
	defer rows.Close()

	var placed []domain.QuizQuestion
	for rows.Next() {
		var qq domain.QuizQuestion
		if err := rows.Scan(&qq.Question.ID, &qq.Question.Text, &qq.Order); err != nil {
			return nil, storageErr("scan quiz question", err)
		}
		placed = append(placed, qq)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("load quiz questions", err)
	}
	return placed, nil
}

func (s *ReferenceStore) Answers(ctx context.Context, questionID int64) ([]domain.Answer, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT a.id, a.text, a.question_id,
		        COALESCE(array_agg(ao.outcome_entity_id ORDER BY ao.outcome_entity_id)
		                 FILTER (WHERE ao.outcome_entity_id IS NOT NULL), '{}')
		 FROM answers a
		 LEFT JOIN answer_outcomes ao ON ao.answer_id = a.id
		 WHERE a.question_id = $1
		 GROUP BY a.id
		 ORDER BY a.id`,
		questionID,
	)
	if err != nil {
		return nil, storageErr("load answers", err)
	}
	defer rows.Close()

	var answers []domain.Answer
	for rows.Next() {
		var a domain.Answer
		if err := rows.Scan(&a.ID, &a.Text, &a.QuestionID, &a.OutcomeEntityIDs); err != nil {
			return nil, storageErr("scan answer", err)
		}
		answers = append(answers, a)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("load answers", err)
	}
	return answers, nil
}

func (s *ReferenceStore) OutcomeEntity(ctx context.Context, id int64) (domain.OutcomeEntity, bool, error) {
	var o domain.OutcomeEntity
	err := s.pool.QueryRow(ctx,
		`SELECT id, name, detail_url, image_url FROM outcome_entities WHERE id = $1`, id,
	).Scan(&o.ID, &o.Name, &o.DetailURL, &o.ImageURL)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.OutcomeEntity{}, false, nil
	}
	if err != nil {
		return domain.OutcomeEntity{}, false, storageErr("load outcome entity", err)
	}
	return o, true, nil
}

// ActivateQuiz deactivates every other quiz and activates quizID in one transaction.
// The partial unique index on quizzes(is_active) rejects any path that skips this.
func (s *ReferenceStore) ActivateQuiz(ctx context.Context, quizID int64) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return storageErr("begin activation", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `UPDATE quizzes SET is_active = FALSE WHERE is_active AND id <> $1`, quizID); err != nil {
		return storageErr("deactivate quizzes", err)
	}
	tag, err := tx.Exec(ctx, `UPDATE quizzes SET is_active = TRUE WHERE id = $1`, quizID)
	if err != nil {
		return storageErr("activate quiz", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrQuizNotFound
	}
	if err := tx.Commit(ctx); err != nil {
		return storageErr("commit activation", err)
	}
	return nil
}

func storageErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", domain.ErrStorage, op, err)
}
