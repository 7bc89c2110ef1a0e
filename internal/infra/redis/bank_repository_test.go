package redis

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"ctg-quiz-service/internal/domain"
)

func TestBankRepositoryCachesInRedis(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	client := newClient(mr)
	loader := &countingLoader{bank: sampleBank()}
	repo := NewBankRepository(client, loader, time.Minute)

	bank, err := repo.GetBank(context.Background())
	if err != nil {
		t.Fatalf("get bank: %v", err)
	}
	if len(bank) != 1 || bank[0].CorrectAnswerIndex != 1 {
		t.Fatalf("unexpected bank %+v", bank)
	}
	if loader.calls != 1 {
		t.Fatalf("expected loader called once, got %d", loader.calls)
	}
	if !mr.Exists("quiz:bank") {
		t.Fatalf("expected bank cached in redis")
	}

	// Second call should hit the cache, loader not incremented.
	if _, err := repo.GetBank(context.Background()); err != nil {
		t.Fatalf("get bank 2: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected cache hit, loader calls=%d", loader.calls)
	}
}

func TestBankRepositoryReloadsAfterExpiry(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	client := newClient(mr)
	loader := &countingLoader{bank: sampleBank()}
	repo := NewBankRepository(client, loader, time.Minute)

	if _, err := repo.GetBank(context.Background()); err != nil {
		t.Fatalf("get bank: %v", err)
	}
	mr.FastForward(2 * time.Minute)

	if _, err := repo.GetBank(context.Background()); err != nil {
		t.Fatalf("get bank after expiry: %v", err)
	}
	if loader.calls != 2 {
		t.Fatalf("expected reload after expiry, loader calls=%d", loader.calls)
	}
}

type countingLoader struct {
	bank  []domain.Question
	calls int
}

func (l *countingLoader) LoadBank(_ context.Context) ([]domain.Question, error) {
	l.calls++
	if len(l.bank) == 0 {
		return nil, domain.ErrBankUnavailable
	}
	return l.bank, nil
}

func sampleBank() []domain.Question {
	return []domain.Question{
		{
			QuestionText:       "What is 2 + 2?",
			Options:            []string{"3", "4", "5"},
			CorrectAnswerIndex: 1,
		},
	}
}

func newClient(mr *miniredis.Miniredis) *redis.Client {
	return redis.NewClient(&redis.Options{Addr: mr.Addr()})
}
