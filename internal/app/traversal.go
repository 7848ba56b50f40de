package app

import "totem-quiz-bot/internal/domain"

// FirstQuestion returns the question with the smallest order value.
func FirstQuestion(placed []domain.QuizQuestion) (domain.Question, bool) {
	var (
		first domain.QuizQuestion
		found bool
	)
	for _, qq := range placed {
		if !found || qq.Order < first.Order {
			first, found = qq, true
		}
	}
	return first.Question, found
}

// NextQuestion returns the question with the smallest order strictly greater than
// the order of questionID. It reports false when questionID is the last question
// or is not part of placed at all.
func NextQuestion(placed []domain.QuizQuestion, questionID int64) (domain.Question, bool) {
	current, ok := orderOf(placed, questionID)
	if !ok {
		return domain.Question{}, false
	}
	var (
		next  domain.QuizQuestion
		found bool
	)
	for _, qq := range placed {
		if qq.Order <= current {
			continue
		}
		if !found || qq.Order < next.Order {
			next, found = qq, true
		}
	}
	return next.Question, found
}

func orderOf(placed []domain.QuizQuestion, questionID int64) (int, bool) {
	for _, qq := range placed {
		if qq.Question.ID == questionID {
			return qq.Order, true
		}
	}
	return 0, false
}
