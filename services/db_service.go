package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"actuarial-runner-server/models"

	_ "github.com/lib/pq"
)

type DBService struct {
	db *sql.DB
}

func NewDBService(host string, port int, user, password, dbname string) (*DBService, error) {
	connStr := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		host, port, user, password, dbname)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}

	if err := db.Ping(); err != nil {
		return nil, err
	}

	return &DBService{db: db}, nil
}

func (s *DBService) Close() error {
	return s.db.Close()
}

// InitSchema creates tables if they don't exist
func (s *DBService) InitSchema(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS model_runs (
		id BIGSERIAL PRIMARY KEY,
		execution_id UUID NOT NULL UNIQUE,
		identity VARCHAR(255) NOT NULL,
		model_type VARCHAR(100) NOT NULL,
		category VARCHAR(100) NOT NULL,
		input_rows INTEGER NOT NULL,
		parameters JSONB,
		status VARCHAR(20) NOT NULL,
		result JSONB,
		error_kind VARCHAR(50),
		error_message TEXT,
		duration_ms INTEGER,
		started_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	);

	CREATE TABLE IF NOT EXISTS account_usage (
		identity VARCHAR(255) NOT NULL,
		period_start DATE NOT NULL,
		executions INTEGER NOT NULL DEFAULT 0,
		PRIMARY KEY (identity, period_start)
	);

	CREATE INDEX IF NOT EXISTS idx_model_runs_identity ON model_runs(identity);
	CREATE INDEX IF NOT EXISTS idx_model_runs_started_at ON model_runs(started_at DESC);
	`

	_, err := s.db.ExecContext(ctx, schema)
	return err
}

// CreateRun inserts a new pending run record
func (s *DBService) CreateRun(ctx context.Context, run *models.ModelRun) (*models.ModelRun, error) {
	parametersJSON, _ := json.Marshal(run.Parameters)

	var id int64
	var startedAt, createdAt time.Time
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO model_runs (execution_id, identity, model_type, category, input_rows, parameters, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, started_at, created_at
	`, run.ExecutionID, run.Identity, run.ModelType, run.Category, run.InputRows, parametersJSON, run.Status).
		Scan(&id, &startedAt, &createdAt)
	if err != nil {
		return nil, err
	}

	run.ID = id
	run.StartedAt = startedAt
	run.CreatedAt = createdAt

	return run, nil
}

// UpdateRunResult updates the run with its terminal outcome
func (s *DBService) UpdateRunResult(ctx context.Context, executionID, status string, result map[string]interface{}, errorKind, errorMessage string, durationMs int) error {
	resultJSON, _ := json.Marshal(result)

	_, err := s.db.ExecContext(ctx, `
		UPDATE model_runs
		SET status = $2, result = $3, error_kind = $4, error_message = $5, duration_ms = $6
		WHERE execution_id = $1
	`, executionID, status, resultJSON, errorKind, errorMessage, durationMs)

	return err
}

// GetRun retrieves a run by execution ID, scoped to the owning identity
func (s *DBService) GetRun(ctx context.Context, identity, executionID string) (*models.ModelRun, error) {
	run := &models.ModelRun{}
	var parametersJSON, resultJSON []byte
	var errorKind, errorMessage sql.NullString
	var durationMs sql.NullInt32

	err := s.db.QueryRowContext(ctx, `
		SELECT id, execution_id, identity, model_type, category, input_rows, parameters, status, result, error_kind, error_message, duration_ms, started_at, created_at
		FROM model_runs WHERE identity = $1 AND execution_id = $2
	`, identity, executionID).
		Scan(&run.ID, &run.ExecutionID, &run.Identity, &run.ModelType, &run.Category, &run.InputRows,
			&parametersJSON, &run.Status, &resultJSON, &errorKind, &errorMessage, &durationMs, &run.StartedAt, &run.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if parametersJSON != nil {
		json.Unmarshal(parametersJSON, &run.Parameters)
	}
	if resultJSON != nil {
		json.Unmarshal(resultJSON, &run.Result)
	}
	if errorKind.Valid {
		run.ErrorKind = errorKind.String
	}
	if errorMessage.Valid {
		run.ErrorMsg = errorMessage.String
	}
	if durationMs.Valid {
		run.DurationMs = int(durationMs.Int32)
	}

	return run, nil
}

// ListRuns returns recent runs for an identity
func (s *DBService) ListRuns(ctx context.Context, identity string, limit int) ([]models.RunListItem, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, execution_id, model_type, category, status, error_kind, duration_ms, started_at
		FROM model_runs
		WHERE identity = $1
		ORDER BY started_at DESC
		LIMIT $2
	`, identity, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []models.RunListItem
	for rows.Next() {
		var run models.RunListItem
		var errorKind sql.NullString
		var durationMs sql.NullInt32

		err := rows.Scan(&run.ID, &run.ExecutionID, &run.ModelType, &run.Category, &run.Status, &errorKind, &durationMs, &run.StartedAt)
		if err != nil {
			return nil, err
		}

		if errorKind.Valid {
			run.ErrorKind = errorKind.String
		}
		if durationMs.Valid {
			run.DurationMs = int(durationMs.Int32)
		}

		runs = append(runs, run)
	}

	return runs, nil
}

// GetUsage returns the current-period usage row for an identity, creating
// it lazily on first read.
func (s *DBService) GetUsage(ctx context.Context, identity string, limit int) (*models.AccountUsage, error) {
	periodStart := currentPeriodStart()

	var executions int
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO account_usage (identity, period_start, executions)
		VALUES ($1, $2, 0)
		ON CONFLICT (identity, period_start) DO UPDATE SET executions = account_usage.executions
		RETURNING executions
	`, identity, periodStart).Scan(&executions)
	if err != nil {
		return nil, err
	}

	remaining := limit - executions
	if remaining < 0 {
		remaining = 0
	}

	return &models.AccountUsage{
		Identity:    identity,
		PeriodStart: periodStart,
		Executions:  executions,
		Limit:       limit,
		Remaining:   remaining,
	}, nil
}

// IncrementUsage bumps the execution counter for the current period.
// The upsert is a single statement, so concurrent dispatches never lose
// an increment.
func (s *DBService) IncrementUsage(ctx context.Context, identity string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO account_usage (identity, period_start, executions)
		VALUES ($1, $2, 1)
		ON CONFLICT (identity, period_start) DO UPDATE SET executions = account_usage.executions + 1
	`, identity, currentPeriodStart())
	return err
}

func currentPeriodStart() time.Time {
	now := time.Now().UTC()
	return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
}
