package ensemble

import (
	"fmt"
	"math"

	apperrors "gavl-predictor/internal/common/errors"
)

const (
	// fallbackProbability is used when every weighted score is zero.
	fallbackProbability = 0.5
	// fallbackConfidence is used when no model agrees with the winner.
	fallbackConfidence = 0.70
)

// Consensus is the weighted vote across all sub-models.
type Consensus struct {
	Outcome        Outcome `json:"outcome"`
	Probability    float64 `json:"probability"`
	Confidence     float64 `json:"confidence"`
	Agreement      float64 `json:"agreement"`
	AgreeingModels int     `json:"agreeing_models"`
}

// Aggregate combines exactly one prediction per sub-model into a Consensus
// using the fixed ensemble weights. Structurally invalid input is rejected
// with INVALID_PREDICTION_INPUT or UNKNOWN_MODEL.
func Aggregate(preds []ModelPrediction) (Consensus, error) {
	return aggregate(preds, DefaultWeights())
}

func aggregate(preds []ModelPrediction, w Weights) (Consensus, error) {
	ordered, err := orderPredictions(preds)
	if err != nil {
		return Consensus{}, err
	}

	// Outcomes are recorded in first-seen model order; ties keep the earlier one.
	var (
		seen   []Outcome
		scores = make(map[Outcome]float64, 2)
		total  float64
	)
	for _, p := range ordered {
		if _, ok := scores[p.Outcome]; !ok {
			seen = append(seen, p.Outcome)
		}
		s := w[p.Model] * p.Probability * (1 + p.Confidence)
		scores[p.Outcome] += s
		total += s
	}

	winner := seen[0]
	for _, o := range seen[1:] {
		if scores[o] > scores[winner] {
			winner = o
		}
	}

	probability := fallbackProbability
	if total > 0 {
		probability = scores[winner] / total
	}

	var (
		agreeing int
		confSum  float64
	)
	for _, p := range ordered {
		if p.Outcome == winner {
			agreeing++
			confSum += p.Confidence
		}
	}
	confidence := fallbackConfidence
	if agreeing > 0 {
		confidence = confSum / float64(agreeing)
	}

	return Consensus{
		Outcome:        winner,
		Probability:    probability,
		Confidence:     confidence,
		Agreement:      float64(agreeing) / float64(ModelCount),
		AgreeingModels: agreeing,
	}, nil
}

// orderPredictions validates preds and returns them in model order.
func orderPredictions(preds []ModelPrediction) ([ModelCount]ModelPrediction, error) {
	var (
		ordered [ModelCount]ModelPrediction
		filled  [ModelCount]bool
	)

	if len(preds) != ModelCount {
		return ordered, apperrors.NewInvalidPredictionInputError(
			fmt.Sprintf("expected %d model predictions, got %d", ModelCount, len(preds)))
	}

	for _, p := range preds {
		if !p.Model.Valid() {
			return ordered, apperrors.NewUnknownModelError(p.Model.String())
		}
		if filled[p.Model] {
			return ordered, apperrors.NewInvalidPredictionInputError(
				fmt.Sprintf("duplicate prediction for model %s", p.Model))
		}
		if !p.Outcome.Valid() {
			return ordered, apperrors.NewInvalidPredictionInputError(
				fmt.Sprintf("model %s: unknown outcome %q", p.Model, string(p.Outcome)))
		}
		if !unitInterval(p.Probability) {
			return ordered, apperrors.NewInvalidPredictionInputError(
				fmt.Sprintf("model %s: probability %v outside [0,1]", p.Model, p.Probability))
		}
		if !unitInterval(p.Confidence) {
			return ordered, apperrors.NewInvalidPredictionInputError(
				fmt.Sprintf("model %s: confidence %v outside [0,1]", p.Model, p.Confidence))
		}
		ordered[p.Model] = p
		filled[p.Model] = true
	}

	return ordered, nil
}

func unitInterval(v float64) bool {
	return !math.IsNaN(v) && v >= 0 && v <= 1
}
