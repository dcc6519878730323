// internal/models/prediction.go
package models

type PredictionResponse struct {
	CaseID           string                  `json:"case_id"`
	CaseName         string                  `json:"case_name"`
	IssueArea        string                  `json:"issue_area"`
	PredictedOutcome string                  `json:"predicted_outcome"`
	Probability      float64                 `json:"probability"`
	Confidence       float64                 `json:"confidence"`
	ModelAgreement   float64                 `json:"model_agreement"`
	AgreeingModels   int                     `json:"agreeing_models"`
	ModelPredictions []ModelPredictionRecord `json:"model_predictions"`
	Reasoning        string                  `json:"reasoning"`
	RequestID        string                  `json:"request_id"`

	// Set by the transport after the prediction returns.
	ProcessingTimeMs float64 `json:"processing_time_ms,omitempty"`
	Timestamp        string  `json:"timestamp,omitempty"`
}

type ModelPredictionRecord struct {
	ModelName   string  `json:"model_name"`
	Outcome     string  `json:"outcome"`
	Probability float64 `json:"probability"`
	Confidence  float64 `json:"confidence"`
}
