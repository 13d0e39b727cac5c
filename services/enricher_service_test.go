package services_test

import (
	"testing"
	"time"

	"actuarial-runner-server/models"
	"actuarial-runner-server/services"

	"github.com/stretchr/testify/require"
)

func testMeta() models.ResultMetadata {
	return models.ResultMetadata{
		ExecutionID: "exec-1",
		ProcessedAt: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
		Category:    "regressao",
		InputRows:   5,
		Parameters:  map[string]interface{}{"family": "poisson"},
		DurationMs:  840,
	}
}

func TestEnrichAddsMetadataWithoutMutation(t *testing.T) {
	t.Parallel()

	enricher := services.NewEnricherService()
	entry := models.CatalogEntry{ModelType: "glm", Category: "regressao", Family: models.FamilyRegression}
	payload := map[string]interface{}{
		"success":      true,
		"coeficientes": map[string]interface{}{"x": 1.2},
	}

	enriched := enricher.Enrich(entry, payload, testMeta())

	// Original fields survive untouched, original map is not mutated.
	require.Equal(t, true, enriched["success"])
	require.Contains(t, enriched, "coeficientes")
	require.NotContains(t, payload, "metadata")

	meta, ok := enriched["metadata"].(map[string]interface{})
	require.True(t, ok)
	require.Equal(t, "exec-1", meta["execution_id"])
	require.Equal(t, "regressao", meta["category"])
	require.Equal(t, 5, meta["input_rows"])
	require.Equal(t, 840, meta["duration_ms"])

	summary, ok := enriched["summary"].(map[string]interface{})
	require.True(t, ok)
	require.Equal(t, true, summary["has_coefficients"])
	require.Equal(t, false, summary["has_metrics"])
}

func TestEnrichIsIdempotent(t *testing.T) {
	t.Parallel()

	enricher := services.NewEnricherService()
	entry := models.CatalogEntry{ModelType: "monte_carlo", Category: "simulacao", Family: models.FamilyRiskSimulation}
	payload := map[string]interface{}{
		"success":      true,
		"risk_metrics": map[string]interface{}{"var_995": 1.2e6},
	}
	meta := testMeta()

	once := enricher.Enrich(entry, payload, meta)
	twice := enricher.Enrich(entry, once, meta)
	require.Equal(t, once, twice)
}

func TestEnrichFamilySummaries(t *testing.T) {
	t.Parallel()
	enricher := services.NewEnricherService()
	meta := testMeta()

	t.Run("transition matrix presence", func(t *testing.T) {
		entry := models.CatalogEntry{Family: models.FamilyStateTransition}
		enriched := enricher.Enrich(entry, map[string]interface{}{
			"success":           true,
			"transition_matrix": []interface{}{[]interface{}{0.9, 0.1}},
		}, meta)
		summary := enriched["summary"].(map[string]interface{})
		require.Equal(t, true, summary["transition_matrix_available"])
	})

	t.Run("missing life expectancy is unavailable", func(t *testing.T) {
		entry := models.CatalogEntry{Family: models.FamilyLifeTable}
		enriched := enricher.Enrich(entry, map[string]interface{}{"success": true}, meta)
		summary := enriched["summary"].(map[string]interface{})
		require.Equal(t, "unavailable", summary["life_expectancy"])
	})

	t.Run("credibility factor range", func(t *testing.T) {
		entry := models.CatalogEntry{Family: models.FamilyCredibility}
		enriched := enricher.Enrich(entry, map[string]interface{}{
			"success": true,
			"credibility_factors": map[string]interface{}{
				"sul":   0.42,
				"norte": 0.77,
				"leste": 0.55,
			},
		}, meta)
		summary := enriched["summary"].(map[string]interface{})
		require.Equal(t, []float64{0.42, 0.77}, summary["credibility_factor_range"])
	})

	t.Run("credibility factors malformed", func(t *testing.T) {
		entry := models.CatalogEntry{Family: models.FamilyCredibility}
		enriched := enricher.Enrich(entry, map[string]interface{}{
			"success":             true,
			"credibility_factors": "not-a-map",
		}, meta)
		summary := enriched["summary"].(map[string]interface{})
		require.Equal(t, "unavailable", summary["credibility_factor_range"])
	})
}
