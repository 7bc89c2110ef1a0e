package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v4/pgxpool"

	"ctg-quiz-service/internal/domain"
)

// ResultArchive persists finished attempts for later reporting.
type ResultArchive struct {
	pool *pgxpool.Pool
}

func NewResultArchive(pool *pgxpool.Pool) *ResultArchive {
	return &ResultArchive{pool: pool}
}

func (a *ResultArchive) SaveAttempt(ctx context.Context, result domain.Result) error {
	_, err := a.pool.Exec(ctx, `
		INSERT INTO attempts (session_id, candidate_name, score, total_questions, percentage, passed, completed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		result.SessionID,
		result.CandidateName,
		result.Score,
		result.TotalQuestions,
		result.Percentage,
		result.Passed,
		result.CompletedAt,
	)
	if err != nil {
		return fmt.Errorf("save attempt: %w", err)
	}
	return nil
}
