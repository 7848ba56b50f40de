package domain

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	// CallbackStartQuiz is the payload of the "start the quiz" button.
	CallbackStartQuiz = "start_quiz"

	quizCallbackPrefix    = "quiz:"
	contactCallbackPrefix = "contact_guardianship:"
)

// AnswerCallback is the decoded form of a quiz answer button.
type AnswerCallback struct {
	QuizID     int64
	QuestionID int64
	AnswerID   int64
}

// EncodeAnswerCallback renders "quiz:<quiz>|<question>|<answer>".
func EncodeAnswerCallback(quizID, questionID, answerID int64) string {
	return fmt.Sprintf("%s%d|%d|%d", quizCallbackPrefix, quizID, questionID, answerID)
}

// IsAnswerCallback reports whether data has the quiz answer prefix.
func IsAnswerCallback(data string) bool {
	return strings.HasPrefix(data, quizCallbackPrefix)
}

// ParseAnswerCallback decodes a quiz answer payload.
func ParseAnswerCallback(data string) (AnswerCallback, error) {
	if !IsAnswerCallback(data) {
		return AnswerCallback{}, fmt.Errorf("%w: %q", ErrMalformedCallback, data)
	}
	parts := strings.Split(strings.TrimPrefix(data, quizCallbackPrefix), "|")
	if len(parts) != 3 {
		return AnswerCallback{}, fmt.Errorf("%w: %q", ErrMalformedCallback, data)
	}
	ids := make([]int64, 0, 3)
	for _, p := range parts {
		id, err := strconv.ParseInt(p, 10, 64)
		if err != nil || id <= 0 {
			return AnswerCallback{}, fmt.Errorf("%w: %q", ErrMalformedCallback, data)
		}
		ids = append(ids, id)
	}
	return AnswerCallback{QuizID: ids[0], QuestionID: ids[1], AnswerID: ids[2]}, nil
}

// EncodeContactCallback renders "contact_guardianship:<outcomeEntityID>".
func EncodeContactCallback(outcomeEntityID int64) string {
	return contactCallbackPrefix + strconv.FormatInt(outcomeEntityID, 10)
}

// IsContactCallback reports whether data has the contact entry prefix.
func IsContactCallback(data string) bool {
	return strings.HasPrefix(data, contactCallbackPrefix)
}

// ParseContactCallback decodes the outcome entity id of a contact entry payload.
func ParseContactCallback(data string) (int64, error) {
	if !IsContactCallback(data) {
		return 0, fmt.Errorf("%w: %q", ErrMalformedCallback, data)
	}
	id, err := strconv.ParseInt(strings.TrimPrefix(data, contactCallbackPrefix), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: %q", ErrMalformedCallback, data)
	}
	return id, nil
}
