package services

import (
	"os"
	"path/filepath"
	"sort"
	"time"

	"actuarial-runner-server/models"
)

// categoryFallbackOrder is probed in order when a model type has no direct
// script path configured.
var categoryFallbackOrder = []string{
	"regressao",
	"series_temporais",
	"simulacao",
	"credibilidade",
	"demografia",
	"machine_learning",
}

// defaultFamilySpecs is the canonical per-family limits table. The limits
// live here, not scattered through the components, so each request looks
// its family up exactly once.
var defaultFamilySpecs = map[models.ModelFamily]models.FamilySpec{
	models.FamilyRegression:      {MinObservations: 3, Timeout: 60 * time.Second},
	models.FamilyRiskSimulation:  {MinObservations: 10, Timeout: 180 * time.Second},
	models.FamilyStateTransition: {MinObservations: 20, Timeout: 120 * time.Second},
	models.FamilyCredibility:     {MinObservations: 15, Timeout: 90 * time.Second},
	models.FamilyLifeTable:       {MinObservations: 0, Timeout: 60 * time.Second},
}

// DefaultCatalog returns the static model catalog. Script paths are
// relative to the scripts directory.
func DefaultCatalog() []models.CatalogEntry {
	return []models.CatalogEntry{
		{ModelType: "glm", ScriptPath: "regressao/glm.R", Category: "regressao", Family: models.FamilyRegression},
		{ModelType: "linear_regression", ScriptPath: "regressao/linear_regression.R", Category: "regressao", Family: models.FamilyRegression},
		{ModelType: "arima", ScriptPath: "series_temporais/arima.R", Category: "series_temporais", Family: models.FamilyRegression},
		{ModelType: "random_forest", ScriptPath: "machine_learning/random_forest.R", Category: "machine_learning", Family: models.FamilyRegression},
		{ModelType: "gradient_boosting", ScriptPath: "machine_learning/gradient_boosting.R", Category: "machine_learning", Family: models.FamilyRegression},
		{ModelType: "monte_carlo", ScriptPath: "simulacao/monte_carlo.R", Category: "simulacao", Family: models.FamilyRiskSimulation,
			RequiredParameters: []string{"frequency_model", "severity_model"}},
		{ModelType: "markov_chain", ScriptPath: "simulacao/markov_chain.R", Category: "simulacao", Family: models.FamilyStateTransition},
		{ModelType: "a_posteriori", ScriptPath: "credibilidade/a_posteriori.R", Category: "credibilidade", Family: models.FamilyCredibility,
			RequiredParameters: []string{"group_field", "time_field", "claim_count_field", "claim_cost_field"}},
		{ModelType: "tabua_vida", ScriptPath: "demografia/tabua_vida.R", Category: "demografia", Family: models.FamilyLifeTable},
	}
}

// CatalogService owns the modelType -> entry table and resolves entries to
// script files on disk.
type CatalogService struct {
	scriptsDir string
	entries    map[string]models.CatalogEntry
	families   map[models.ModelFamily]models.FamilySpec
}

func NewCatalogService(scriptsDir string, entries []models.CatalogEntry) *CatalogService {
	byType := make(map[string]models.CatalogEntry, len(entries))
	for _, e := range entries {
		byType[e.ModelType] = e
	}
	return &CatalogService{
		scriptsDir: scriptsDir,
		entries:    byType,
		families:   defaultFamilySpecs,
	}
}

// WithFamilySpecs overrides the per-family limits table. Used for
// deployments with non-default budgets and for tests that need short
// timeouts.
func (s *CatalogService) WithFamilySpecs(specs map[models.ModelFamily]models.FamilySpec) *CatalogService {
	s.families = specs
	return s
}

// Entry returns the catalog entry for a model type.
func (s *CatalogService) Entry(modelType string) (models.CatalogEntry, bool) {
	e, ok := s.entries[modelType]
	return e, ok
}

// FamilySpec returns the limits for a family. Unknown families get the
// regression defaults.
func (s *CatalogService) FamilySpec(family models.ModelFamily) models.FamilySpec {
	if spec, ok := s.families[family]; ok {
		return spec
	}
	return s.families[models.FamilyRegression]
}

// Resolve maps a model type to a script file on disk. The direct catalog
// path is tried first, then the category subdirectories in fallback order
// for <modelType>.R. Existence is checked per call: scripts can be
// deployed or removed while the server is running.
func (s *CatalogService) Resolve(modelType string) (string, bool) {
	if entry, ok := s.entries[modelType]; ok && entry.ScriptPath != "" {
		path := filepath.Join(s.scriptsDir, entry.ScriptPath)
		if fileExists(path) {
			return path, true
		}
	}

	for _, category := range categoryFallbackOrder {
		path := filepath.Join(s.scriptsDir, category, modelType+".R")
		if fileExists(path) {
			return path, true
		}
	}

	return "", false
}

// List returns the catalog entries with their family limits, sorted by
// model type for a stable API response.
func (s *CatalogService) List() []models.CatalogListItem {
	items := make([]models.CatalogListItem, 0, len(s.entries))
	for _, e := range s.entries {
		spec := s.FamilySpec(e.Family)
		items = append(items, models.CatalogListItem{
			ModelType:          e.ModelType,
			Category:           e.Category,
			Family:             e.Family,
			RequiredParameters: e.RequiredParameters,
			MinObservations:    spec.MinObservations,
			TimeoutSeconds:     int(spec.Timeout.Seconds()),
		})
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ModelType < items[j].ModelType })
	return items
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
