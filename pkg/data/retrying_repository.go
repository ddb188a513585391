package data

import (
	"context"

	"github.com/ducminhle1904/crypto-wfo-analyzer/internal/recovery"
	"github.com/ducminhle1904/crypto-wfo-analyzer/pkg/walkforward"
)

// RetryingRepository repeats failed candidate fetches that are categorized as transient.
// It sits at the data boundary; the analysis engine itself never retries.
type RetryingRepository struct {
	repository walkforward.CandidateRepository
	name       string
	handler    *recovery.RecoveryHandler
}

// NewRetryingRepository wraps repository with handler's retry policy
func NewRetryingRepository(repository walkforward.CandidateRepository, name string, handler *recovery.RecoveryHandler) *RetryingRepository {
	return &RetryingRepository{
		repository: repository,
		name:       name,
		handler:    handler,
	}
}

// Handler exposes the retry handler and its error statistics
func (r *RetryingRepository) Handler() *recovery.RecoveryHandler {
	return r.handler
}

// GetCandidates implements walkforward.CandidateRepository
func (r *RetryingRepository) GetCandidates(ctx context.Context, labID string, window walkforward.Window) ([]walkforward.Candidate, error) {
	var candidates []walkforward.Candidate
	err := r.handler.ExecuteWithRecovery(ctx, r.name, "get_candidates", func(ctx context.Context) error {
		var err error
		candidates, err = r.repository.GetCandidates(ctx, labID, window)
		return err
	})
	if err != nil {
		return nil, err
	}
	return candidates, nil
}
