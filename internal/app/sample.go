package app

import (
	"math/rand"

	"ctg-quiz-service/internal/domain"
)

// SamplePlan selects questions for one attempt: a Fisher-Yates shuffle of the
// whole bank truncated to min(count, len(bank)). A non-positive count selects
// the full bank. Returns ErrEmptyBank when there is nothing to sample.
func SamplePlan(bank []domain.Question, count int, rnd *rand.Rand) ([]domain.Question, error) {
	if len(bank) == 0 {
		return nil, domain.ErrEmptyBank
	}
	shuffled := make([]domain.Question, len(bank))
	copy(shuffled, bank)
	rnd.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	if count <= 0 || count > len(shuffled) {
		count = len(shuffled)
	}
	return shuffled[:count], nil
}
