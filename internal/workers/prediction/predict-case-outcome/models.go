// internal/workers/prediction/predict-case-outcome/models.go
package predictcaseoutcome

import "gavl-predictor/internal/models"

// Input is the job variable payload.
type Input struct {
	models.CaseRequest
}

// Output is merged into the process instance variables.
type Output struct {
	Prediction *models.PredictionResponse `json:"prediction"`
}
