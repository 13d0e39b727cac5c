package services

import (
	"encoding/json"
	"fmt"
	"os"

	"actuarial-runner-server/models"
)

// DecoderService parses and guards the runtime's output file. Whatever
// the outcome, the output file is deleted before Decode returns.
type DecoderService struct {
	workspace *WorkspaceService
}

func NewDecoderService(workspace *WorkspaceService) *DecoderService {
	return &DecoderService{workspace: workspace}
}

// Decode reads the output file and either returns the accepted payload or
// a typed rejection. The simulated-data check runs before the success
// check and cannot be overridden by it: a runtime that reports simulated
// output is a hard failure no matter what else it claims.
func (d *DecoderService) Decode(outputPath string, family models.ModelFamily) (map[string]interface{}, *models.DispatchError) {
	defer d.workspace.Release(outputPath)

	data, err := os.ReadFile(outputPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &models.DispatchError{
				Kind:    models.KindOutputMissing,
				Message: "model script completed without producing an output file",
			}
		}
		return nil, &models.DispatchError{
			Kind:    models.KindOutputMissing,
			Message: "model output file could not be read",
			Details: err.Error(),
		}
	}

	var payload map[string]interface{}
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, &models.DispatchError{
			Kind:    models.KindOutputUnparseable,
			Message: "model output is not valid JSON",
			Details: err.Error(),
		}
	}

	if simulated, _ := payload["simulacao"].(bool); simulated {
		return nil, &models.DispatchError{
			Kind:    models.KindSimulatedData,
			Message: "model runtime returned simulated placeholder data",
		}
	}

	if success, _ := payload["success"].(bool); !success {
		errMsg := "model execution failed"
		if msg, ok := payload["error"].(string); ok && msg != "" {
			errMsg = msg
		}
		return nil, &models.DispatchError{
			Kind:            models.KindModelExecutionFailed,
			Message:         errMsg,
			Recommendations: familyRecommendations(family),
		}
	}

	return payload, nil
}

// familyRecommendations gives the caller actionable hints when the
// runtime itself rejected the model fit.
func familyRecommendations(family models.ModelFamily) []string {
	switch family {
	case models.FamilyRiskSimulation:
		return []string{
			"reduce n_sim and retry with a smaller simulation count",
			"verify the frequency and severity model choices match the data",
		}
	case models.FamilyStateTransition:
		return []string{
			"check that the observed state sequence covers every declared state",
			"reduce n_states if some states are rarely observed",
		}
	case models.FamilyCredibility:
		return []string{
			"ensure each group has enough claim history for a credible estimate",
			"check the group, time, claim count and claim cost field mappings",
		}
	case models.FamilyLifeTable:
		return []string{
			"verify the age and mortality columns cover a contiguous age range",
		}
	default:
		return []string{
			"check the dataset for missing or non-numeric values in model fields",
			fmt.Sprintf("review the parameters accepted by the %s family", family),
		}
	}
}
