package app_test

import (
	"errors"
	"math/rand"
	"testing"

	"ctg-quiz-service/internal/app"
	"ctg-quiz-service/internal/domain"
)

func TestSamplePlanTruncatesToBankSize(t *testing.T) {
	rnd := rand.New(rand.NewSource(1))
	bank := makeBank(5)

	plan, err := app.SamplePlan(bank, 20, rnd)
	if err != nil {
		t.Fatalf("sample: %v", err)
	}
	if len(plan) != 5 {
		t.Fatalf("expected plan of 5, got %d", len(plan))
	}

	plan, err = app.SamplePlan(bank, 3, rnd)
	if err != nil {
		t.Fatalf("sample: %v", err)
	}
	if len(plan) != 3 {
		t.Fatalf("expected plan of 3, got %d", len(plan))
	}
}

func TestSamplePlanSelectsWithoutReplacement(t *testing.T) {
	rnd := rand.New(rand.NewSource(42))
	bank := makeBank(10)

	plan, err := app.SamplePlan(bank, 10, rnd)
	if err != nil {
		t.Fatalf("sample: %v", err)
	}

	seen := make(map[string]bool, len(plan))
	for _, q := range plan {
		if seen[q.QuestionText] {
			t.Fatalf("question %q sampled twice", q.QuestionText)
		}
		seen[q.QuestionText] = true
	}
	if len(seen) != len(bank) {
		t.Fatalf("expected a permutation of the bank, got %d distinct questions", len(seen))
	}
}

func TestSamplePlanEmptyBank(t *testing.T) {
	rnd := rand.New(rand.NewSource(1))
	if _, err := app.SamplePlan(nil, 5, rnd); !errors.Is(err, domain.ErrEmptyBank) {
		t.Fatalf("expected ErrEmptyBank, got %v", err)
	}
}

func TestSamplePlanDoesNotMutateBank(t *testing.T) {
	rnd := rand.New(rand.NewSource(7))
	bank := makeBank(6)
	first := bank[0].QuestionText
	for i := 0; i < 20; i++ {
		if _, err := app.SamplePlan(bank, 6, rnd); err != nil {
			t.Fatalf("sample: %v", err)
		}
	}
	if bank[0].QuestionText != first {
		t.Fatalf("bank order changed by sampling")
	}
}
