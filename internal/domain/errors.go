package domain

import "errors"

var (
	// ErrNoActiveQuiz is returned when no quiz is marked active in the reference store.
	ErrNoActiveQuiz = errors.New("no active quiz")
	// ErrQuizNotFound indicates the quiz could not be loaded.
	ErrQuizNotFound = errors.New("quiz not found")
	// ErrQuizHasNoQuestions is returned when the active quiz has an empty question list.
	ErrQuizHasNoQuestions = errors.New("quiz has no questions")
	// ErrQuestionHasNoAnswers is returned when a question cannot be shown because it has no answers.
	ErrQuestionHasNoAnswers = errors.New("question has no answers")
	// ErrResultUndetermined is returned when the answer ledger yields no winning outcome.
	ErrResultUndetermined = errors.New("result could not be determined")
	// ErrPlatformRequest wraps every failed call to the messaging platform.
	ErrPlatformRequest = errors.New("platform request failed")
	// ErrMessageGone marks a delete of a message that no longer exists; callers treat it as success.
	ErrMessageGone = errors.New("message already gone")
	// ErrStorage wraps failures of the reference store or the answer ledger.
	ErrStorage = errors.New("storage failure")
	// ErrMalformedCallback indicates an unparseable or inconsistent callback payload.
	ErrMalformedCallback = errors.New("malformed callback payload")
)
