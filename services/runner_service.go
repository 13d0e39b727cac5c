package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"actuarial-runner-server/models"
)

// RunStore persists run history. Implemented by DBService.
type RunStore interface {
	CreateRun(ctx context.Context, run *models.ModelRun) (*models.ModelRun, error)
	UpdateRunResult(ctx context.Context, executionID, status string, result map[string]interface{}, errorKind, errorMessage string, durationMs int) error
}

// ResultCache holds enriched results for fast re-reads. Implemented by
// RedisService.
type ResultCache interface {
	CacheResult(ctx context.Context, executionID string, result map[string]interface{}) error
}

// RunnerService is the single entry point for model execution. It
// orchestrates resolution, validation, workspace allocation, subprocess
// execution, output decoding and enrichment, and guarantees the temp file
// pair is released on every exit path.
type RunnerService struct {
	catalog   *CatalogService
	validator *ValidatorService
	workspace *WorkspaceService
	executor  *ExecutorService
	decoder   *DecoderService
	enricher  *EnricherService

	// Collaborators outside the execution core. Any of these may be nil,
	// in which case the concern is skipped.
	quota   QuotaGate
	store   RunStore
	cache   ResultCache
	archive StorageService
}

func NewRunnerService(catalog *CatalogService, validator *ValidatorService, workspace *WorkspaceService, executor *ExecutorService, decoder *DecoderService, enricher *EnricherService) *RunnerService {
	return &RunnerService{
		catalog:   catalog,
		validator: validator,
		workspace: workspace,
		executor:  executor,
		decoder:   decoder,
		enricher:  enricher,
	}
}

// WithCollaborators attaches the quota gate, run store, result cache and
// artifact archive.
func (s *RunnerService) WithCollaborators(quota QuotaGate, store RunStore, cache ResultCache, archive StorageService) *RunnerService {
	s.quota = quota
	s.store = store
	s.cache = cache
	s.archive = archive
	return s
}

// Dispatch runs one model execution request end to end. It is synchronous:
// the caller waits out the subprocess. Failures come back as a typed
// DispatchError, never as leaked temp files or a partial result.
func (s *RunnerService) Dispatch(ctx context.Context, identity, modelType string, req *models.RunRequest) (*models.RunResponse, *models.DispatchError) {
	entry, ok := s.catalog.Entry(modelType)
	if !ok {
		return nil, &models.DispatchError{
			Kind:    models.KindScriptUnresolved,
			Message: fmt.Sprintf("unknown model type: %s", modelType),
		}
	}

	if s.quota != nil {
		allowed, err := s.quota.CanExecute(ctx, identity)
		if err != nil {
			return nil, &models.DispatchError{
				Kind:    models.KindInternal,
				Message: "quota check failed",
				Details: err.Error(),
			}
		}
		if !allowed {
			return nil, &models.DispatchError{
				Kind:    models.KindQuotaExceeded,
				Message: "execution quota exhausted for current period",
			}
		}
	}

	scriptPath, ok := s.catalog.Resolve(modelType)
	if !ok {
		return nil, &models.DispatchError{
			Kind:    models.KindScriptUnresolved,
			Message: fmt.Sprintf("no script available for model type: %s", modelType),
		}
	}

	if violations := s.validator.Validate(entry, req.Dataset, req.Parameters); len(violations) > 0 {
		return nil, &models.DispatchError{
			Kind:       models.KindValidationFailed,
			Message:    strings.Join(violations, "; "),
			Violations: violations,
		}
	}

	dataset := req.Dataset
	if entry.Family == models.FamilyLifeTable && len(dataset) == 0 {
		// Life-table construction can run from its built-in reference
		// table; the runtime only needs a record to anchor the request.
		dataset = []map[string]interface{}{{"synthetic": true}}
	}

	executionID := uuid.New().String()
	startedAt := time.Now().UTC()

	if s.store != nil {
		_, err := s.store.CreateRun(ctx, &models.ModelRun{
			ExecutionID: executionID,
			Identity:    identity,
			ModelType:   modelType,
			Category:    entry.Category,
			InputRows:   len(req.Dataset),
			Parameters:  req.Parameters,
			Status:      models.StatusPending,
		})
		if err != nil {
			log.Printf("runner: failed to create run record %s: %v", executionID, err)
		}
	}

	inputPath, outputPath := s.workspace.Allocate(executionID)
	defer s.workspace.Release(inputPath, outputPath)

	envelope := &models.ExecutionEnvelope{
		ExecutionID: executionID,
		ModelType:   modelType,
		Dataset:     dataset,
		Parameters:  req.Parameters,
		SubmittedAt: startedAt,
	}

	spec := s.catalog.FamilySpec(entry.Family)
	execResult, err := s.executor.Execute(envelope, scriptPath, inputPath, outputPath, spec.Timeout)
	if err != nil {
		return nil, s.reject(ctx, executionID, &models.DispatchError{
			Kind:    models.KindProcessFailed,
			Message: "failed to start model script",
			Details: err.Error(),
		}, 0)
	}

	durationMs := int(execResult.Duration.Milliseconds())

	if s.quota != nil {
		// The subprocess ran; it counts against the quota whatever the
		// outcome.
		if err := s.quota.RecordExecution(ctx, identity); err != nil {
			log.Printf("runner: failed to record execution for %s: %v", identity, err)
		}
	}

	if execResult.TimedOut {
		return nil, s.reject(ctx, executionID, &models.DispatchError{
			Kind:    models.KindTimedOut,
			Message: fmt.Sprintf("model execution exceeded the %s budget for family %s", spec.Timeout, entry.Family),
		}, durationMs)
	}
	if !execResult.ExitedCleanly {
		return nil, s.reject(ctx, executionID, &models.DispatchError{
			Kind:    models.KindProcessFailed,
			Message: "model script exited with an error",
			Details: execResult.Stderr,
		}, durationMs)
	}

	payload, derr := s.decoder.Decode(outputPath, entry.Family)
	if derr != nil {
		return nil, s.reject(ctx, executionID, derr, durationMs)
	}

	enriched := s.enricher.Enrich(entry, payload, models.ResultMetadata{
		ExecutionID: executionID,
		ProcessedAt: time.Now().UTC(),
		Category:    entry.Category,
		InputRows:   len(req.Dataset),
		Parameters:  req.Parameters,
		DurationMs:  durationMs,
	})

	if s.store != nil {
		if err := s.store.UpdateRunResult(ctx, executionID, models.StatusAccepted, enriched, "", "", durationMs); err != nil {
			log.Printf("runner: failed to update run record %s: %v", executionID, err)
		}
	}
	if s.cache != nil {
		if err := s.cache.CacheResult(ctx, executionID, enriched); err != nil {
			log.Printf("runner: failed to cache result %s: %v", executionID, err)
		}
	}
	s.archiveRun(ctx, executionID, envelope, enriched)

	return &models.RunResponse{
		Status:      models.StatusAccepted,
		ExecutionID: executionID,
		ModelType:   modelType,
		Result:      enriched,
		DurationMs:  durationMs,
		LoggedAt:    startedAt,
	}, nil
}

// reject records the terminal failure on the run record and passes the
// error through. The deferred workspace release in Dispatch covers the
// temp files.
func (s *RunnerService) reject(ctx context.Context, executionID string, derr *models.DispatchError, durationMs int) *models.DispatchError {
	if s.store != nil {
		if err := s.store.UpdateRunResult(ctx, executionID, models.StatusRejected, nil, string(derr.Kind), derr.Message, durationMs); err != nil {
			log.Printf("runner: failed to update run record %s: %v", executionID, err)
		}
	}
	if derr.Kind == models.KindSimulatedData {
		// Correctness gate, not a soft warning: make it stand out in logs.
		log.Printf("runner: SIMULATED DATA rejected for execution %s", executionID)
	}
	return derr
}

// archiveRun stores the envelope and enriched result for audit. Best
// effort: archive failures never fail the run.
func (s *RunnerService) archiveRun(ctx context.Context, executionID string, envelope *models.ExecutionEnvelope, result map[string]interface{}) {
	if s.archive == nil {
		return
	}
	if data, err := json.Marshal(envelope); err == nil {
		if err := s.archive.SaveArtifact(ctx, EnvelopeArtifactKey(executionID), data); err != nil {
			log.Printf("runner: failed to archive envelope %s: %v", executionID, err)
		}
	}
	if data, err := json.Marshal(result); err == nil {
		if err := s.archive.SaveArtifact(ctx, ResultArtifactKey(executionID), data); err != nil {
			log.Printf("runner: failed to archive result %s: %v", executionID, err)
		}
	}
}
