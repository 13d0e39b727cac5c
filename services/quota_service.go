package services

import (
	"context"

	"actuarial-runner-server/models"
)

// QuotaGate is the usage-quota capability consumed around dispatch.
type QuotaGate interface {
	CanExecute(ctx context.Context, identity string) (bool, error)
	RecordExecution(ctx context.Context, identity string) error
}

// QuotaService enforces a per-identity monthly execution limit over the
// account_usage table.
type QuotaService struct {
	db    *DBService
	limit int
}

func NewQuotaService(db *DBService, limit int) *QuotaService {
	return &QuotaService{db: db, limit: limit}
}

func (q *QuotaService) CanExecute(ctx context.Context, identity string) (bool, error) {
	usage, err := q.db.GetUsage(ctx, identity, q.limit)
	if err != nil {
		return false, err
	}
	return usage.Executions < q.limit, nil
}

func (q *QuotaService) RecordExecution(ctx context.Context, identity string) error {
	return q.db.IncrementUsage(ctx, identity)
}

// Usage returns the full quota state for the account endpoint.
func (q *QuotaService) Usage(ctx context.Context, identity string) (*models.AccountUsage, error) {
	return q.db.GetUsage(ctx, identity, q.limit)
}
