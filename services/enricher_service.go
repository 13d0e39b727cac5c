package services

import (
	"actuarial-runner-server/models"
)

// EnricherService attaches the metadata block and per-family summary
// fields to an accepted payload. Enrichment is additive and idempotent:
// the runtime's own fields are never altered or removed, and running it
// twice yields the same result as running it once.
type EnricherService struct{}

func NewEnricherService() *EnricherService {
	return &EnricherService{}
}

// Enrich returns a copy of the payload with metadata and family summary
// attached under fixed keys.
func (e *EnricherService) Enrich(entry models.CatalogEntry, payload map[string]interface{}, meta models.ResultMetadata) map[string]interface{} {
	enriched := make(map[string]interface{}, len(payload)+2)
	for k, v := range payload {
		enriched[k] = v
	}

	enriched["metadata"] = map[string]interface{}{
		"execution_id": meta.ExecutionID,
		"processed_at": meta.ProcessedAt,
		"category":     meta.Category,
		"input_rows":   meta.InputRows,
		"parameters":   meta.Parameters,
		"duration_ms":  meta.DurationMs,
	}
	enriched["summary"] = familySummary(entry.Family, payload)

	return enriched
}

// familySummary reports which result sections the runtime produced.
// Missing sub-fields yield "unavailable" markers, never a panic: the
// payload shape is owned by the external runtime.
func familySummary(family models.ModelFamily, payload map[string]interface{}) map[string]interface{} {
	switch family {
	case models.FamilyRiskSimulation:
		return map[string]interface{}{
			"has_risk_metrics":      sectionPresent(payload, "risk_metrics"),
			"has_premium_breakdown": sectionPresent(payload, "premium"),
		}
	case models.FamilyStateTransition:
		return map[string]interface{}{
			"transition_matrix_available": sectionPresent(payload, "transition_matrix"),
		}
	case models.FamilyLifeTable:
		return map[string]interface{}{
			"life_expectancy": scalarOrUnavailable(payload, "life_expectancy"),
		}
	case models.FamilyCredibility:
		return map[string]interface{}{
			"credibility_factor_range": credibilityRange(payload),
		}
	default:
		return map[string]interface{}{
			"has_coefficients": sectionPresent(payload, "coeficientes"),
			"has_metrics":      sectionPresent(payload, "metrics"),
		}
	}
}

func sectionPresent(payload map[string]interface{}, key string) bool {
	val, ok := payload[key]
	return ok && val != nil
}

func scalarOrUnavailable(payload map[string]interface{}, key string) interface{} {
	if val, ok := payload[key]; ok && val != nil {
		return val
	}
	return "unavailable"
}

// credibilityRange extracts the [min, max] of the per-group credibility
// factors when present.
func credibilityRange(payload map[string]interface{}) interface{} {
	raw, ok := payload["credibility_factors"]
	if !ok {
		return "unavailable"
	}
	factors, ok := raw.(map[string]interface{})
	if !ok || len(factors) == 0 {
		return "unavailable"
	}

	var min, max float64
	first := true
	for _, v := range factors {
		f, ok := v.(float64)
		if !ok {
			continue
		}
		if first {
			min, max = f, f
			first = false
			continue
		}
		if f < min {
			min = f
		}
		if f > max {
			max = f
		}
	}
	if first {
		return "unavailable"
	}
	return []float64{min, max}
}
