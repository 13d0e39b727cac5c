package services_test

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"actuarial-runner-server/models"
	"actuarial-runner-server/services"

	"github.com/stretchr/testify/require"
)

// stubQuota is an in-memory quota gate.
type stubQuota struct {
	mu       sync.Mutex
	allowed  bool
	recorded int
}

func (q *stubQuota) CanExecute(ctx context.Context, identity string) (bool, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.allowed, nil
}

func (q *stubQuota) RecordExecution(ctx context.Context, identity string) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.recorded++
	return nil
}

type runnerHarness struct {
	runner       *services.RunnerService
	scriptsDir   string
	workspaceDir string
	quota        *stubQuota
}

// newRunnerHarness assembles the execution core against temp directories,
// the sh interpreter and short family budgets, with a permissive quota.
func newRunnerHarness(t *testing.T) *runnerHarness {
	t.Helper()

	scriptsDir := t.TempDir()
	workspaceDir := t.TempDir()

	specs := map[models.ModelFamily]models.FamilySpec{
		models.FamilyRegression:      {MinObservations: 3, Timeout: 5 * time.Second},
		models.FamilyRiskSimulation:  {MinObservations: 10, Timeout: 500 * time.Millisecond},
		models.FamilyStateTransition: {MinObservations: 20, Timeout: 5 * time.Second},
		models.FamilyCredibility:     {MinObservations: 15, Timeout: 5 * time.Second},
		models.FamilyLifeTable:       {MinObservations: 0, Timeout: 5 * time.Second},
	}

	catalog := services.NewCatalogService(scriptsDir, services.DefaultCatalog()).WithFamilySpecs(specs)
	workspace, err := services.NewWorkspaceService(workspaceDir)
	require.NoError(t, err)

	quota := &stubQuota{allowed: true}
	runner := services.NewRunnerService(
		catalog,
		services.NewValidatorService(catalog),
		workspace,
		services.NewExecutorService("sh"),
		services.NewDecoderService(workspace),
		services.NewEnricherService(),
	).WithCollaborators(quota, nil, nil, nil)

	return &runnerHarness{
		runner:       runner,
		scriptsDir:   scriptsDir,
		workspaceDir: workspaceDir,
		quota:        quota,
	}
}

func (h *runnerHarness) requireWorkspaceEmpty(t *testing.T) {
	t.Helper()
	entries, err := os.ReadDir(h.workspaceDir)
	require.NoError(t, err)
	require.Empty(t, entries, "workspace must hold no files after dispatch returns")
}

const acceptedScript = `#!/bin/sh
cat > "$2" <<'JSON'
{"success": true, "coeficientes": {"x": 1.7, "intercept": 0.3}, "metrics": {"aic": 152.3}}
JSON
`

func TestDispatchAccepted(t *testing.T) {
	t.Parallel()
	h := newRunnerHarness(t)
	writeScript(t, h.scriptsDir, "regressao/glm.R", acceptedScript)

	resp, derr := h.runner.Dispatch(context.Background(), "user-1", "glm", &models.RunRequest{
		Dataset:    records(5, nil),
		Parameters: map[string]interface{}{"family": "poisson"},
	})
	require.Nil(t, derr)
	require.Equal(t, models.StatusAccepted, resp.Status)
	require.NotEmpty(t, resp.ExecutionID)

	// Runtime fields plus the metadata block
	require.Contains(t, resp.Result, "coeficientes")
	meta := resp.Result["metadata"].(map[string]interface{})
	require.Equal(t, resp.ExecutionID, meta["execution_id"])
	require.Equal(t, "regressao", meta["category"])
	require.Equal(t, 5, meta["input_rows"])

	require.Equal(t, 1, h.quota.recorded)
	h.requireWorkspaceEmpty(t)
}

func TestDispatchValidationFailedBeforeExecution(t *testing.T) {
	t.Parallel()
	h := newRunnerHarness(t)
	// The script records whether it was ever invoked.
	writeScript(t, h.scriptsDir, "regressao/glm.R", `#!/bin/sh
touch "$(dirname "$0")/invoked"
`)

	_, derr := h.runner.Dispatch(context.Background(), "user-1", "glm", &models.RunRequest{
		Dataset: records(2, nil),
	})
	require.NotNil(t, derr)
	require.Equal(t, models.KindValidationFailed, derr.Kind)
	require.NotEmpty(t, derr.Violations)

	require.NoFileExists(t, h.scriptsDir+"/regressao/invoked")
	require.Equal(t, 0, h.quota.recorded)
	h.requireWorkspaceEmpty(t)
}

func TestDispatchSimulationBoundsRejected(t *testing.T) {
	t.Parallel()
	h := newRunnerHarness(t)
	writeScript(t, h.scriptsDir, "simulacao/monte_carlo.R", acceptedScript)

	_, derr := h.runner.Dispatch(context.Background(), "user-1", "monte_carlo", &models.RunRequest{
		Dataset: records(10, nil),
		Parameters: map[string]interface{}{
			"frequency_model": "poisson",
			"severity_model":  "gamma",
			"n_sim":           float64(50000),
		},
	})
	require.NotNil(t, derr)
	require.Equal(t, models.KindValidationFailed, derr.Kind)
	h.requireWorkspaceEmpty(t)
}

func TestDispatchUnknownModelType(t *testing.T) {
	t.Parallel()
	h := newRunnerHarness(t)

	_, derr := h.runner.Dispatch(context.Background(), "user-1", "prophet", &models.RunRequest{
		Dataset: records(5, nil),
	})
	require.NotNil(t, derr)
	require.Equal(t, models.KindScriptUnresolved, derr.Kind)
}

func TestDispatchScriptMissingOnDisk(t *testing.T) {
	t.Parallel()
	h := newRunnerHarness(t)
	// glm is in the catalog but no script file was deployed.

	_, derr := h.runner.Dispatch(context.Background(), "user-1", "glm", &models.RunRequest{
		Dataset: records(5, nil),
	})
	require.NotNil(t, derr)
	require.Equal(t, models.KindScriptUnresolved, derr.Kind)
}

func TestDispatchQuotaExceeded(t *testing.T) {
	t.Parallel()
	h := newRunnerHarness(t)
	writeScript(t, h.scriptsDir, "regressao/glm.R", acceptedScript)
	h.quota.allowed = false

	_, derr := h.runner.Dispatch(context.Background(), "user-1", "glm", &models.RunRequest{
		Dataset: records(5, nil),
	})
	require.NotNil(t, derr)
	require.Equal(t, models.KindQuotaExceeded, derr.Kind)
	require.Equal(t, 0, h.quota.recorded)
}

func TestDispatchTimeout(t *testing.T) {
	t.Parallel()
	h := newRunnerHarness(t)
	// Starts writing the output, then hangs past the risk-simulation
	// budget. The partial output must not survive.
	writeScript(t, h.scriptsDir, "simulacao/monte_carlo.R", `#!/bin/sh
echo '{"partial":' > "$2"
sleep 5
`)

	_, derr := h.runner.Dispatch(context.Background(), "user-1", "monte_carlo", &models.RunRequest{
		Dataset: records(10, nil),
		Parameters: map[string]interface{}{
			"frequency_model": "poisson",
			"severity_model":  "gamma",
		},
	})
	require.NotNil(t, derr)
	require.Equal(t, models.KindTimedOut, derr.Kind)
	h.requireWorkspaceEmpty(t)
}

func TestDispatchProcessFailed(t *testing.T) {
	t.Parallel()
	h := newRunnerHarness(t)
	writeScript(t, h.scriptsDir, "regressao/glm.R", `#!/bin/sh
echo "object 'x' not found" >&2
exit 1
`)

	_, derr := h.runner.Dispatch(context.Background(), "user-1", "glm", &models.RunRequest{
		Dataset: records(5, nil),
	})
	require.NotNil(t, derr)
	require.Equal(t, models.KindProcessFailed, derr.Kind)
	require.Contains(t, derr.Details, "object 'x' not found")
	h.requireWorkspaceEmpty(t)
}

func TestDispatchSimulatedDataRejected(t *testing.T) {
	t.Parallel()
	h := newRunnerHarness(t)
	writeScript(t, h.scriptsDir, "regressao/glm.R", `#!/bin/sh
cat > "$2" <<'JSON'
{"success": true, "simulacao": true, "coeficientes": {"x": 1.0}}
JSON
`)

	_, derr := h.runner.Dispatch(context.Background(), "user-1", "glm", &models.RunRequest{
		Dataset: records(5, nil),
	})
	require.NotNil(t, derr)
	require.Equal(t, models.KindSimulatedData, derr.Kind)
	h.requireWorkspaceEmpty(t)
}

func TestDispatchExitZeroWithoutOutput(t *testing.T) {
	t.Parallel()
	h := newRunnerHarness(t)
	writeScript(t, h.scriptsDir, "regressao/glm.R", `#!/bin/sh
exit 0
`)

	_, derr := h.runner.Dispatch(context.Background(), "user-1", "glm", &models.RunRequest{
		Dataset: records(5, nil),
	})
	require.NotNil(t, derr)
	require.Equal(t, models.KindOutputMissing, derr.Kind)
	h.requireWorkspaceEmpty(t)
}

func TestDispatchLifeTableRunsWithoutData(t *testing.T) {
	t.Parallel()
	h := newRunnerHarness(t)
	writeScript(t, h.scriptsDir, "demografia/tabua_vida.R", `#!/bin/sh
cat > "$2" <<'JSON'
{"success": true, "life_expectancy": 76.4}
JSON
`)

	resp, derr := h.runner.Dispatch(context.Background(), "user-1", "tabua_vida", &models.RunRequest{})
	require.Nil(t, derr)
	require.Equal(t, models.StatusAccepted, resp.Status)
	summary := resp.Result["summary"].(map[string]interface{})
	require.Equal(t, 76.4, summary["life_expectancy"])
	h.requireWorkspaceEmpty(t)
}

func TestDispatchConcurrentRunsAreIsolated(t *testing.T) {
	t.Parallel()
	h := newRunnerHarness(t)
	writeScript(t, h.scriptsDir, "regressao/glm.R", acceptedScript)

	const n = 8
	ids := make([]string, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			resp, derr := h.runner.Dispatch(context.Background(), "user-1", "glm", &models.RunRequest{
				Dataset: records(5, nil),
			})
			if derr == nil {
				ids[i] = resp.ExecutionID
			}
		}(i)
	}
	wg.Wait()

	seen := make(map[string]struct{}, n)
	for _, id := range ids {
		require.NotEmpty(t, id)
		_, dup := seen[id]
		require.False(t, dup, "execution IDs must be unique across concurrent runs")
		seen[id] = struct{}{}
	}
	h.requireWorkspaceEmpty(t)
}
