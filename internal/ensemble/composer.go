package ensemble

import (
	"fmt"
	"time"

	"gavl-predictor/internal/models"
)

// EnsembleResult is the full outcome of one prediction call.
type EnsembleResult struct {
	Outcome     Outcome           `json:"outcome"`
	Probability float64           `json:"probability"`
	Confidence  float64           `json:"confidence"`
	Agreement   float64           `json:"agreement"`
	Agreeing    int               `json:"agreeing_models"`
	Predictions []ModelPrediction `json:"model_predictions"`
	Reasoning   string            `json:"reasoning"`
}

// NewResult attaches the per-model predictions and reasoning to a consensus.
func NewResult(c Consensus, preds []ModelPrediction) EnsembleResult {
	cp := make([]ModelPrediction, len(preds))
	copy(cp, preds)
	return EnsembleResult{
		Outcome:     c.Outcome,
		Probability: c.Probability,
		Confidence:  c.Confidence,
		Agreement:   c.Agreement,
		Agreeing:    c.AgreeingModels,
		Predictions: cp,
		Reasoning:   Reasoning(c.Outcome, c.Confidence, c.AgreeingModels),
	}
}

// Reasoning renders the human-readable summary paragraph.
func Reasoning(outcome Outcome, confidence float64, agreeing int) string {
	return fmt.Sprintf(
		"The %d-model ensemble analyzed your case and predicts %s with %.1f%% confidence. "+
			"%d out of %d models agreed on this outcome. "+
			"The prediction is based on analysis of case facts, evidence strength, legal precedents, "+
			"and likely judicial reasoning patterns.",
		ModelCount, outcome.Phrase(), confidence*100, agreeing, ModelCount,
	)
}

// RequestID derives the request identifier from the case id and a wall-clock instant.
func RequestID(caseID string, at time.Time) string {
	return fmt.Sprintf("%s_%d", caseID, at.UnixMilli())
}

// ComposeResponse builds the transport-neutral output record.
func ComposeResponse(in models.CaseInput, r EnsembleResult, requestID string) *models.PredictionResponse {
	records := make([]models.ModelPredictionRecord, 0, len(r.Predictions))
	for _, p := range r.Predictions {
		records = append(records, models.ModelPredictionRecord{
			ModelName:   p.Model.String(),
			Outcome:     p.Outcome.String(),
			Probability: p.Probability,
			Confidence:  p.Confidence,
		})
	}

	return &models.PredictionResponse{
		CaseID:           in.CaseID,
		CaseName:         in.CaseName,
		IssueArea:        in.IssueArea,
		PredictedOutcome: r.Outcome.String(),
		Probability:      r.Probability,
		Confidence:       r.Confidence,
		ModelAgreement:   r.Agreement,
		AgreeingModels:   r.Agreeing,
		ModelPredictions: records,
		Reasoning:        r.Reasoning,
		RequestID:        requestID,
	}
}
