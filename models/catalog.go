package models

import "time"

// ModelFamily groups model types that share validation thresholds,
// timeout budgets and enrichment logic.
type ModelFamily string

const (
	FamilyRegression      ModelFamily = "regression"
	FamilyRiskSimulation  ModelFamily = "risk_simulation"
	FamilyStateTransition ModelFamily = "state_transition"
	FamilyCredibility     ModelFamily = "credibility"
	FamilyLifeTable       ModelFamily = "life_table"
)

// CatalogEntry maps a model type to its script and family configuration.
// Script existence is re-checked on every resolve, not cached: scripts are
// deployed independently of this process.
type CatalogEntry struct {
	ModelType          string      `json:"model_type"`
	ScriptPath         string      `json:"script_path,omitempty"`
	Category           string      `json:"category"`
	Family             ModelFamily `json:"family"`
	RequiredParameters []string    `json:"required_parameters,omitempty"`
}

// FamilySpec carries the per-family execution limits.
type FamilySpec struct {
	MinObservations int           `json:"min_observations"`
	Timeout         time.Duration `json:"timeout"`
}

// CatalogListItem is the catalog view returned by the API.
type CatalogListItem struct {
	ModelType          string      `json:"model_type"`
	Category           string      `json:"category"`
	Family             ModelFamily `json:"family"`
	RequiredParameters []string    `json:"required_parameters,omitempty"`
	MinObservations    int         `json:"min_observations"`
	TimeoutSeconds     int         `json:"timeout_seconds"`
}
