package app

import (
	"context"
	"math/rand"
	"sort"

	"totem-quiz-bot/internal/domain"
)

// ResultCalculator turns a user's ledger into a single outcome entity.
type ResultCalculator struct {
	ledger *Ledger
	refs   *References
	pick   func(n int) int
}

func NewResultCalculator(ledger *Ledger, refs *References) *ResultCalculator {
	return &ResultCalculator{ledger: ledger, refs: refs, pick: rand.Intn}
}

// NewResultCalculatorWithPicker is test-only for deterministic tie-breaks.
func NewResultCalculatorWithPicker(ledger *Ledger, refs *References, pick func(n int) int) *ResultCalculator {
	return &ResultCalculator{ledger: ledger, refs: refs, pick: pick}
}

// Resolve tallies one vote per linked outcome of every chosen answer and returns
// a uniformly random pick among the outcomes sharing the highest count.
// It reports false when the user has no answers or no answer links any outcome.
func (c *ResultCalculator) Resolve(ctx context.Context, userID, quizID int64) (domain.OutcomeEntity, bool, error) {
	records, err := c.ledger.Answers(ctx, userID, quizID)
	if err != nil {
		return domain.OutcomeEntity{}, false, err
	}
	if len(records) == 0 {
		return domain.OutcomeEntity{}, false, nil
	}

	votes := make(map[int64]int)
	for _, r := range records {
		answers, err := c.refs.Answers(ctx, r.QuestionID)
		if err != nil {
			return domain.OutcomeEntity{}, false, err
		}
		for _, a := range answers {
			if a.ID != r.AnswerID {
				continue
			}
			for _, id := range a.OutcomeEntityIDs {
				votes[id]++
			}
			break
		}
	}

	tied := leaders(votes)
	if len(tied) == 0 {
		return domain.OutcomeEntity{}, false, nil
	}
	return c.refs.OutcomeEntity(ctx, tied[c.pick(len(tied))])
}

// leaders returns the ids with the maximum vote count in ascending order.
func leaders(votes map[int64]int) []int64 {
	max := 0
	for _, n := range votes {
		if n > max {
			max = n
		}
	}
	var tied []int64
	for id, n := range votes {
		if n == max && n > 0 {
			tied = append(tied, id)
		}
	}
	sort.Slice(tied, func(i, j int) bool { return tied[i] < tied[j] })
	return tied
}
