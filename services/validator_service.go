package services

import (
	"fmt"

	"actuarial-runner-server/models"
)

// ValidatorService runs the structural checks a request must pass before
// any file is allocated or subprocess spawned. Violations are collected,
// not short-circuited, so the caller sees every problem at once.
type ValidatorService struct {
	catalog *CatalogService
}

func NewValidatorService(catalog *CatalogService) *ValidatorService {
	return &ValidatorService{catalog: catalog}
}

// Validate returns the list of violations for a request. Empty means valid.
func (v *ValidatorService) Validate(entry models.CatalogEntry, dataset []map[string]interface{}, params map[string]interface{}) []string {
	var violations []string

	spec := v.catalog.FamilySpec(entry.Family)

	// The life-table family may run without data; everything else needs at
	// least the family minimum.
	if len(dataset) == 0 && entry.Family != models.FamilyLifeTable {
		violations = append(violations, "dataset must not be empty")
	} else if len(dataset) < spec.MinObservations {
		violations = append(violations,
			fmt.Sprintf("dataset has %d observations, family %s requires at least %d",
				len(dataset), entry.Family, spec.MinObservations))
	}

	for _, name := range entry.RequiredParameters {
		if _, ok := params[name]; !ok {
			violations = append(violations, fmt.Sprintf("missing required parameter: %s", name))
		}
	}

	switch entry.Family {
	case models.FamilyRiskSimulation:
		violations = append(violations, validateSimulation(params)...)
	case models.FamilyStateTransition:
		violations = append(violations, validateTransition(params)...)
	case models.FamilyCredibility:
		violations = append(violations, validateCredibility(dataset, params)...)
	}

	return violations
}

func validateSimulation(params map[string]interface{}) []string {
	var violations []string
	if n, ok := numericParam(params, "n_sim"); ok {
		if n < 100 || n > 10000 {
			violations = append(violations,
				fmt.Sprintf("n_sim must be between 100 and 10000, got %.0f", n))
		}
	}
	return violations
}

func validateTransition(params map[string]interface{}) []string {
	var violations []string
	if n, ok := numericParam(params, "n_states"); ok {
		if n < 2 || n > 5 {
			violations = append(violations,
				fmt.Sprintf("n_states must be between 2 and 5, got %.0f", n))
		}
	}
	return violations
}

func validateCredibility(dataset []map[string]interface{}, params map[string]interface{}) []string {
	var violations []string

	groupField, ok := params["group_field"].(string)
	if !ok || groupField == "" {
		// Missing group_field is already reported by the required-parameter
		// check; nothing to count groups against.
		return violations
	}

	groups := make(map[string]struct{})
	for _, record := range dataset {
		if val, ok := record[groupField]; ok {
			groups[fmt.Sprintf("%v", val)] = struct{}{}
		}
	}
	if len(groups) < 2 {
		violations = append(violations,
			fmt.Sprintf("credibility models require at least 2 distinct groups under %q, found %d", groupField, len(groups)))
	}

	return violations
}

// numericParam reads a numeric option regardless of how the JSON decoder
// typed it.
func numericParam(params map[string]interface{}, name string) (float64, bool) {
	raw, ok := params[name]
	if !ok {
		return 0, false
	}
	switch n := raw.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}
